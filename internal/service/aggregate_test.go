package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plataa/triagedash/internal/records"
)

func rec(fields map[string]any) records.ScreeningRecord {
	return records.FromMap(fields)
}

func TestAggregate_Scenario(t *testing.T) {
	rows := []records.ScreeningRecord{
		rec(map[string]any{"risk": "Alto", "ageGroup": "0-3", "region": "Centro", "date": "01/03/2024"}),
		rec(map[string]any{"risk": "Alto", "region": "Centro", "date": "02/03/2024"}),
		rec(map[string]any{"risk": "Baixo", "date": "bad-date"}),
	}

	got := Aggregate(rows)

	assert.Equal(t, RiskCounts{High: 2, Moderate: 0, Low: 1}, got.RiskCounts)
	assert.Equal(t, []RegionCount{{Region: "Centro", HighRiskCount: 2}}, got.TopRegions)
	assert.Equal(t, []TrendPoint{
		{Date: "2024-03-01", TotalCount: 1, HighRiskCount: 1},
		{Date: "2024-03-02", TotalCount: 1, HighRiskCount: 1},
	}, got.Trend)
	assert.Equal(t, []AgeGroupRisk{
		{AgeGroup: "0-3", RiskCounts: RiskCounts{High: 1}},
		{AgeGroup: records.NotInformed, RiskCounts: RiskCounts{High: 1, Low: 1}},
	}, got.AgeGroups)
}

func TestAggregate_Empty(t *testing.T) {
	for name, rows := range map[string][]records.ScreeningRecord{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			got := Aggregate(rows)

			assert.Equal(t, RiskCounts{}, got.RiskCounts)
			assert.NotNil(t, got.AgeGroups)
			assert.NotNil(t, got.TopRegions)
			assert.NotNil(t, got.Trend)
			assert.Empty(t, got.AgeGroups)
			assert.Empty(t, got.TopRegions)
			assert.Empty(t, got.Trend)
		})
	}
}

func TestAggregate_UnknownRiskCountsNowhereButTrend(t *testing.T) {
	rows := []records.ScreeningRecord{
		rec(map[string]any{"risco": "Indefinido", "regiao_bairro": "Norte", "data": "2024-05-01"}),
	}

	got := Aggregate(rows)

	assert.Equal(t, 0, got.RiskCounts.Total())
	assert.Empty(t, got.TopRegions)
	require.Len(t, got.Trend, 1)
	assert.Equal(t, TrendPoint{Date: "2024-05-01", TotalCount: 1}, got.Trend[0])
	require.Len(t, got.AgeGroups, 1)
	assert.Equal(t, 0, got.AgeGroups[0].Total())
}

func TestAggregate_TopRegions(t *testing.T) {
	var rows []records.ScreeningRecord
	add := func(region string, n int) {
		for i := 0; i < n; i++ {
			rows = append(rows, rec(map[string]any{"risco": "Alto", "regiao_bairro": region}))
		}
	}
	add("A", 1)
	add("B", 3)
	add("C", 2)
	add("D", 3)
	add("E", 1)
	add("F", 4)
	add("G", 1)
	rows = append(rows, rec(map[string]any{"risco": "Baixo", "regiao_bairro": "H"}))

	got := Aggregate(rows)

	assert.Equal(t, []RegionCount{
		{Region: "F", HighRiskCount: 4},
		{Region: "B", HighRiskCount: 3},
		{Region: "D", HighRiskCount: 3},
		{Region: "C", HighRiskCount: 2},
		{Region: "A", HighRiskCount: 1},
	}, got.TopRegions)
}

func TestAggregate_Properties(t *testing.T) {
	risks := []string{"Alto", "Moderado", "Baixo", "", "??"}
	regions := []string{"Centro", "Norte", "Sul", "Leste", "Oeste", "Ilha", ""}
	dates := []string{"01/03/2024", "2024-03-01", "2024-03-02T23:30:00Z", "31/02/2024", "", "15/01/2024", "Mar 3, 2024"}

	for n := 0; n < 60; n += 7 {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			rows := make([]records.ScreeningRecord, 0, n)
			allKnown := true
			for i := 0; i < n; i++ {
				risk := risks[(i*3)%len(risks)]
				if !records.ParseRisk(risk).Known() {
					allKnown = false
				}
				rows = append(rows, rec(map[string]any{
					"risco":         risk,
					"regiao_bairro": regions[(i*5)%len(regions)],
					"data":          dates[(i*2)%len(dates)],
				}))
			}

			got := Aggregate(rows)

			assert.LessOrEqual(t, got.RiskCounts.Total(), len(rows))
			if allKnown {
				assert.Equal(t, len(rows), got.RiskCounts.Total())
			}

			assert.LessOrEqual(t, len(got.TopRegions), TopRegionLimit)
			for i := 1; i < len(got.TopRegions); i++ {
				assert.GreaterOrEqual(t, got.TopRegions[i-1].HighRiskCount, got.TopRegions[i].HighRiskCount)
			}

			for i := 1; i < len(got.Trend); i++ {
				assert.Less(t, got.Trend[i-1].Date, got.Trend[i].Date)
			}
		})
	}
}

func TestAggregate_DoesNotModifyInput(t *testing.T) {
	rows := []records.ScreeningRecord{
		rec(map[string]any{"risco": "Alto", "regiao_bairro": "B", "data": "02/03/2024"}),
		rec(map[string]any{"risco": "Alto", "regiao_bairro": "A", "data": "01/03/2024"}),
	}
	before := append([]records.ScreeningRecord(nil), rows...)

	Aggregate(rows)

	assert.Equal(t, before, rows)
}
