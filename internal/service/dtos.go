package service

import "github.com/plataa/triagedash/internal/records"

// RiskCounts holds the number of records per known risk level.
type RiskCounts struct {
	High     int `json:"high"`
	Moderate int `json:"moderate"`
	Low      int `json:"low"`
}

// Total returns the sum across all levels.
func (c RiskCounts) Total() int {
	return c.High + c.Moderate + c.Low
}

// Get returns the count for level, zero for unknown levels.
func (c RiskCounts) Get(level records.RiskLevel) int {
	switch level {
	case records.RiskHigh:
		return c.High
	case records.RiskModerate:
		return c.Moderate
	case records.RiskLow:
		return c.Low
	}
	return 0
}

func (c *RiskCounts) add(level records.RiskLevel) {
	switch level {
	case records.RiskHigh:
		c.High++
	case records.RiskModerate:
		c.Moderate++
	case records.RiskLow:
		c.Low++
	}
}

type AgeGroupRisk struct {
	AgeGroup string `json:"age_group"`
	RiskCounts
}

type RegionCount struct {
	Region        string `json:"region"`
	HighRiskCount int    `json:"high_risk_count"`
}

type TrendPoint struct {
	Date          string `json:"date"`
	TotalCount    int    `json:"total_count"`
	HighRiskCount int    `json:"high_risk_count"`
}

// AggregationResult is the full set of derived dashboard views.
type AggregationResult struct {
	RiskCounts RiskCounts     `json:"risk_counts"`
	AgeGroups  []AgeGroupRisk `json:"age_groups"`
	TopRegions []RegionCount  `json:"top_regions"`
	Trend      []TrendPoint   `json:"trend"`
}

// SpecialistDashboard is the specialist feed: raw rows plus totals the
// server already computed.
type SpecialistDashboard struct {
	Records []records.ScreeningRecord `json:"records"`
	Totals  RiskCounts                `json:"totals"`
}

type PatientResult struct {
	TestType  string            `json:"test_type"`
	TestLabel string            `json:"test_label"`
	Date      string            `json:"date"`
	Risk      records.RiskLevel `json:"risk"`
	Score     *float64          `json:"score,omitempty"`
	Note      string            `json:"note,omitempty"`
	Guidance  *records.Guidance `json:"guidance,omitempty"`
}

type PatientSummary struct {
	Name    string          `json:"name"`
	CPF     string          `json:"cpf"`
	Region  string          `json:"region,omitempty"`
	Results []PatientResult `json:"results"`
}

type RegionSummary struct {
	TotalPopulation  int64 `json:"total_population"`
	TotalAutismCases int64 `json:"total_autism_cases"`
}

type GenderDistribution struct {
	MalePercentage   float64 `json:"male_percentage"`
	FemalePercentage float64 `json:"female_percentage"`
	MaleCases        int64   `json:"total_male_cases"`
	FemaleCases      int64   `json:"total_female_cases"`
}

type RaceBreakdown struct {
	Race   string `json:"race"`
	Total  int64  `json:"total"`
	Autism int64  `json:"autism"`
}
