package service

import (
	"sort"

	"github.com/plataa/triagedash/internal/dates"
	"github.com/plataa/triagedash/internal/records"
)

// TopRegionLimit caps the high-risk region ranking.
const TopRegionLimit = 5

// Aggregate derives every dashboard view from rows in a single pass.
// Missing or unrecognized fields only remove a row from the views that
// need them; empty input yields zeroed, non-nil results.
func Aggregate(rows []records.ScreeningRecord) AggregationResult {
	var counts RiskCounts

	ageIndex := make(map[string]int)
	ageGroups := make([]AgeGroupRisk, 0)

	regionIndex := make(map[string]int)
	regions := make([]RegionCount, 0)

	dayIndex := make(map[string]int)
	trend := make([]TrendPoint, 0)

	for _, r := range rows {
		counts.add(r.Risk)

		age := r.AgeGroupOrDefault()
		i, ok := ageIndex[age]
		if !ok {
			i = len(ageGroups)
			ageIndex[age] = i
			ageGroups = append(ageGroups, AgeGroupRisk{AgeGroup: age})
		}
		ageGroups[i].add(r.Risk)

		if r.Risk == records.RiskHigh && r.Region != "" {
			j, ok := regionIndex[r.Region]
			if !ok {
				j = len(regions)
				regionIndex[r.Region] = j
				regions = append(regions, RegionCount{Region: r.Region})
			}
			regions[j].HighRiskCount++
		}

		if key, ok := dates.NormalizeDayKey(r.Date); ok {
			k, seen := dayIndex[key]
			if !seen {
				k = len(trend)
				dayIndex[key] = k
				trend = append(trend, TrendPoint{Date: key})
			}
			trend[k].TotalCount++
			if r.Risk == records.RiskHigh {
				trend[k].HighRiskCount++
			}
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].HighRiskCount > regions[j].HighRiskCount
	})
	if len(regions) > TopRegionLimit {
		regions = regions[:TopRegionLimit]
	}

	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Date < trend[j].Date
	})

	return AggregationResult{
		RiskCounts: counts,
		AgeGroups:  ageGroups,
		TopRegions: regions,
		Trend:      trend,
	}
}
