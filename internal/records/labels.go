package records

import "strings"

var testNames = map[string]string{
	"mchat": "M-CHAT-R/F",
	"assq":  "ASSQ",
	"aq10":  "AQ-10",
	"ados2": "ADOS-2",
	"adir":  "ADI-R",
}

// TestLabel returns the display name of a questionnaire identifier.
func TestLabel(testType string) string {
	if testType == "" {
		return "Test"
	}
	if name, ok := testNames[strings.ToLower(testType)]; ok {
		return name
	}
	return strings.ToUpper(testType)
}

// Guidance is the follow-up text shown next to a patient's result.
type Guidance struct {
	Highlight string   `json:"highlight"`
	Body      string   `json:"body"`
	Steps     []string `json:"steps"`
}

var guidance = map[RiskLevel]Guidance{
	RiskHigh: {
		Highlight: "HIGH RISK - urgent diagnostic evaluation recommended",
		Body:      "The screening points to a high risk of signs associated with ASD. A diagnostic evaluation with a specialist should be scheduled as soon as possible.",
		Steps: []string{
			"Scheduling: our team will contact you within 24 business hours to book the diagnostic evaluation.",
			"Documents: gather previous medical and school reports to share at the appointment.",
		},
	},
	RiskModerate: {
		Highlight: "MODERATE RISK - follow-up and complementary evaluation required",
		Body:      "The screening points to a moderate risk of signs associated with ASD. A complementary evaluation and active monitoring of development are recommended.",
		Steps: []string{
			"Active monitoring: our team will contact you within 48 business hours to decide between a diagnostic evaluation and quarterly monitoring.",
			"Questions: contact us if behaviour changes or new concerns come up.",
		},
	},
	RiskLow: {
		Highlight: "LOW RISK - no consistent signs at the moment",
		Body:      "The score indicates a low risk of signs associated with ASD. No consistent signs that justify a diagnostic evaluation were found.",
		Steps: []string{
			"Surveillance: keep routine paediatric and neurological appointments.",
			"Follow-up: our team will reach out in 6 months for a new check.",
			"Alert: contact us immediately if new developmental concerns appear.",
		},
	},
}

// GuidanceFor returns the guidance for a known risk level.
func GuidanceFor(r RiskLevel) (Guidance, bool) {
	g, ok := guidance[r]
	return g, ok
}
