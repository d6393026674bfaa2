package records

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NotInformed is the age-group bucket for records without one.
const NotInformed = "Não informado"

var (
	riskKeys     = []string{"risco", "risk"}
	ageGroupKeys = []string{"Faixa etária", "faixa_etaria", "faixaEtaria", "faixa", "age_group", "ageGroup"}
	regionKeys   = []string{"Região/Bairro", "bairro", "regiao_bairro", "regiaoBairro", "region"}
	dateKeys     = []string{"data", "created_at", "date"}
	testTypeKeys = []string{"teste", "teste_tipo", "testType", "test_type"}
	nameKeys     = []string{"nome", "nome_completo", "name"}
	contactKeys  = []string{"contato", "contato_principal", "contact"}
)

// ScreeningRecord is one triage result as delivered by the upstream API.
// Every field is optional.
type ScreeningRecord struct {
	Name     string    `json:"nome,omitempty"`
	Contact  string    `json:"contato,omitempty"`
	Risk     RiskLevel `json:"-"`
	RawRisk  string    `json:"risco,omitempty"`
	AgeGroup string    `json:"faixa_etaria,omitempty"`
	Region   string    `json:"regiao_bairro,omitempty"`
	Date     string    `json:"data,omitempty"`
	TestType string    `json:"teste,omitempty"`
}

// UnmarshalJSON accepts any of the known spellings for each field,
// matching keys case-insensitively.
func (r *ScreeningRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode screening record: %w", err)
	}
	*r = FromMap(raw)
	return nil
}

// FromMap builds a record from a decoded JSON object. For each field the
// known spellings are tried in order; an exact key wins over its case
// variants, and case variants are tried in sorted order.
func FromMap(raw map[string]any) ScreeningRecord {
	folded := make(map[string][]string, len(raw))
	for k := range raw {
		fk := strings.ToLower(k)
		folded[fk] = append(folded[fk], k)
	}
	for _, variants := range folded {
		sort.Strings(variants)
	}
	fields := fieldSource{raw: raw, folded: folded}

	rawRisk := fields.lookup(riskKeys)
	return ScreeningRecord{
		Name:     fields.lookup(nameKeys),
		Contact:  fields.lookup(contactKeys),
		Risk:     ParseRisk(rawRisk),
		RawRisk:  rawRisk,
		AgeGroup: fields.lookup(ageGroupKeys),
		Region:   fields.lookup(regionKeys),
		Date:     fields.lookup(dateKeys),
		TestType: fields.lookup(testTypeKeys),
	}
}

// AgeGroupOrDefault returns the age group or the NotInformed bucket.
func (r ScreeningRecord) AgeGroupOrDefault() string {
	if r.AgeGroup == "" {
		return NotInformed
	}
	return r.AgeGroup
}

type fieldSource struct {
	raw    map[string]any
	folded map[string][]string
}

// lookup returns the first non-empty value among keys.
func (f fieldSource) lookup(keys []string) string {
	for _, k := range keys {
		if s := stringify(f.raw[k]); s != "" {
			return s
		}
		for _, variant := range f.folded[strings.ToLower(k)] {
			if variant == k {
				continue
			}
			if s := stringify(f.raw[variant]); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
