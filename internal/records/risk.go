package records

import "strings"

// RiskLevel is the categorical outcome of a screening.
type RiskLevel string

const (
	RiskUnknown  RiskLevel = ""
	RiskHigh     RiskLevel = "High"
	RiskModerate RiskLevel = "Moderate"
	RiskLow      RiskLevel = "Low"
)

// RiskLevels lists the known levels in display order.
var RiskLevels = []RiskLevel{RiskHigh, RiskModerate, RiskLow}

var riskAliases = map[string]RiskLevel{
	"alto":     RiskHigh,
	"high":     RiskHigh,
	"moderado": RiskModerate,
	"moderate": RiskModerate,
	"baixo":    RiskLow,
	"low":      RiskLow,
}

// ParseRisk maps a wire label onto a RiskLevel. Unrecognized labels
// resolve to RiskUnknown.
func ParseRisk(s string) RiskLevel {
	return riskAliases[strings.ToLower(strings.TrimSpace(s))]
}

// Known reports whether r is one of the three scored levels.
func (r RiskLevel) Known() bool {
	return r == RiskHigh || r == RiskModerate || r == RiskLow
}

// Label returns the upstream (Portuguese) label for r.
func (r RiskLevel) Label() string {
	switch r {
	case RiskHigh:
		return "Alto"
	case RiskModerate:
		return "Moderado"
	case RiskLow:
		return "Baixo"
	default:
		return ""
	}
}

// Color is the chart color for r.
func (r RiskLevel) Color() string {
	switch r {
	case RiskHigh:
		return "#e34d4d"
	case RiskModerate:
		return "#f0ad4e"
	case RiskLow:
		return "#2ea97d"
	default:
		return "#94a3b8"
	}
}
