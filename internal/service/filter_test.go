package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plataa/triagedash/internal/records"
)

func filterFixture() []records.ScreeningRecord {
	return []records.ScreeningRecord{
		rec(map[string]any{"nome": "a", "risco": "Alto", "regiao_bairro": "Centro", "teste": "mchat", "data": "01/03/2024"}),
		rec(map[string]any{"nome": "b", "risco": "Baixo", "regiao_bairro": "centro", "teste": "AQ10", "data": "2024-03-05T23:59:00"}),
		rec(map[string]any{"nome": "c", "risco": "Moderado", "regiao_bairro": "Norte", "teste": "mchat", "data": "10/03/2024"}),
		rec(map[string]any{"nome": "d", "risco": "Alto", "regiao_bairro": "Norte", "teste": "assq", "data": "not a date"}),
	}
}

func names(rows []records.ScreeningRecord) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	rows := filterFixture()

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"no filters passes everything", Filters{}, []string{"a", "b", "c", "d"}},
		{"region ignores case", Filters{Region: "CENTRO"}, []string{"a", "b"}},
		{"test type ignores case", Filters{TestType: "aq10"}, []string{"b"}},
		{"risk", Filters{Risk: records.RiskHigh}, []string{"a", "d"}},
		{"start is inclusive", Filters{Start: "2024-03-05"}, []string{"b", "c"}},
		{"end covers the whole day", Filters{End: "2024-03-05"}, []string{"a", "b"}},
		{"range", Filters{Start: "02/03/2024", End: "09/03/2024"}, []string{"b"}},
		{"unparsable bound is ignored", Filters{Start: "soon", Region: "Norte"}, []string{"c", "d"}},
		{"combined", Filters{Region: "norte", Risk: records.RiskModerate, End: "2024-12-31"}, []string{"c"}},
		{"row limit alone is not a predicate", Filters{RowLimit: 1}, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(rows, tt.filters)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApplyFilters_ReturnsFreshSlice(t *testing.T) {
	rows := filterFixture()

	got := ApplyFilters(rows, Filters{})
	require.Len(t, got, len(rows))
	got[0].Name = "changed"

	assert.Equal(t, "a", rows[0].Name)
}

func TestApplyFilters_Deterministic(t *testing.T) {
	rows := filterFixture()
	f := Filters{Region: "centro", Start: "01/03/2024"}

	assert.Equal(t, ApplyFilters(rows, f), ApplyFilters(rows, f))
}

func TestFilters_IsEmpty(t *testing.T) {
	assert.True(t, Filters{}.IsEmpty())
	assert.True(t, Filters{RowLimit: 10}.IsEmpty())
	assert.False(t, Filters{Risk: records.RiskLow}.IsEmpty())
	assert.False(t, Filters{End: "2024-01-01"}.IsEmpty())
}

func TestLimitRows(t *testing.T) {
	rows := filterFixture()

	assert.Len(t, LimitRows(rows, 0), 4)
	assert.Len(t, LimitRows(rows, 2), 2)
	assert.Len(t, LimitRows(rows, 10), 4)
	assert.Len(t, LimitRows(nil, 10), 0)
}
