package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/plataa/triagedash/internal/geo"
	"github.com/plataa/triagedash/internal/repository/models"
	"github.com/plataa/triagedash/internal/upstream"
)

const (
	dbTimeout = 1 * time.Second
)

// Races lists the races shown by the ethnicity chart, in display order.
var Races = []string{"Branca", "Preta", "Amarela", "Parda"}

// RegionService keeps the IBGE region statistics and derives the map
// metric, the summary cards and the demographic charts from them.
type RegionService struct {
	client  UpstreamClient
	storage RegionStatsRepository
	logger  *zap.Logger
}

// NewRegionService creates a new RegionService instance.
func NewRegionService(client UpstreamClient, storage RegionStatsRepository, logger *zap.Logger) *RegionService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if client == nil {
		panic("client must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &RegionService{
		client:  client,
		storage: storage,
		logger:  logger,
	}
}

// ImportResult reports how many rows each import replaced.
type ImportResult struct {
	RegionStats int `json:"region_stats"`
	StudentRace int `json:"student_race"`
	ResidentSex int `json:"resident_sex"`
}

// ImportRegionStats pulls the IBGE feeds from the platform and replaces the
// local tables. residentSex, when non-nil, replaces the resident table too;
// the platform has no feed for it.
func (s *RegionService) ImportRegionStats(ctx context.Context, residentSex []models.ResidentSex) (ImportResult, error) {
	stats, err := s.client.RegionStats(ctx)
	if err != nil {
		return ImportResult{}, upstreamErr(err)
	}
	raceRows, err := s.client.StudentsByRace(ctx)
	if err != nil {
		return ImportResult{}, upstreamErr(err)
	}

	rows := make([]models.RegionStat, 0, len(stats))
	for _, st := range stats {
		loc := strings.TrimSpace(st.Location)
		if loc == "" || strings.HasPrefix(loc, "Fonte") {
			continue
		}
		rows = append(rows, models.RegionStat{
			Location:         loc,
			Population:       st.Population,
			AutismCount:      st.AutismCount,
			AutismPercentage: st.AutismPercentage,
		})
	}
	race := flattenRace(raceRows)

	imp := models.RegionImport{RegionStats: rows, StudentRace: race, ResidentSex: residentSex}
	if err := s.storage.ReplaceImport(ctx, imp); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	result := ImportResult{RegionStats: len(rows), StudentRace: len(race), ResidentSex: len(residentSex)}

	s.logger.Info("imported region statistics",
		zap.Int("region_stats", result.RegionStats),
		zap.Int("student_race", result.StudentRace),
		zap.Int("resident_sex", result.ResidentSex))

	return result, nil
}

// RegionMetrics returns the autism percentage per normalized location.
func (s *RegionService) RegionMetrics(ctx context.Context) (geo.RegionMetric, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	stats, err := s.storage.ListRegionStats(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	metric := make(geo.RegionMetric, len(stats))
	for _, st := range stats {
		metric.Set(st.Location, st.AutismPercentage)
	}
	return metric, nil
}

// RegionSummary returns the summary card totals; an empty table yields zeros.
func (s *RegionService) RegionSummary(ctx context.Context) (RegionSummary, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	totals, err := s.storage.Totals(dbCtx)
	if err != nil {
		return RegionSummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return RegionSummary{
		TotalPopulation:  totals.Population,
		TotalAutismCases: totals.AutismCases,
	}, nil
}

// GenderDistribution returns each sex's share of all resident autism cases.
func (s *RegionService) GenderDistribution(ctx context.Context) (GenderDistribution, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	totals, err := s.storage.SexTotals(dbCtx)
	if err != nil {
		return GenderDistribution{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	all := totals.MaleCases + totals.FemaleCases
	if all == 0 {
		return GenderDistribution{}, ErrNoRegionData
	}

	return GenderDistribution{
		MalePercentage:   round2(float64(totals.MaleCases) / float64(all) * 100),
		FemalePercentage: round2(float64(totals.FemaleCases) / float64(all) * 100),
		MaleCases:        totals.MaleCases,
		FemaleCases:      totals.FemaleCases,
	}, nil
}

// RaceBreakdown returns the student totals of one location per race, in
// display order. Races missing from the table read as zero.
func (s *RegionService) RaceBreakdown(ctx context.Context, location string) ([]RaceBreakdown, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.StudentRace(dbCtx, strings.TrimSpace(location))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRegionData
	}

	byRace := make(map[string]models.StudentRace, len(rows))
	for _, r := range rows {
		byRace[r.Race] = r
	}

	out := make([]RaceBreakdown, 0, len(Races))
	for _, race := range Races {
		r := byRace[race]
		out = append(out, RaceBreakdown{Race: race, Total: r.Total, Autism: r.Autism})
	}
	return out, nil
}

func flattenRace(in []upstream.StudentRaceRow) []models.StudentRace {
	out := make([]models.StudentRace, 0, len(in)*len(Races))
	for _, row := range in {
		loc := strings.TrimSpace(row.Location)
		if loc == "" {
			continue
		}
		cells := [][2]*float64{
			{row.WhiteTotal, row.WhiteAutism},
			{row.BlackTotal, row.BlackAutism},
			{row.YellowTotal, row.YellowAutism},
			{row.BrownTotal, row.BrownAutism},
		}
		for i, c := range cells {
			out = append(out, models.StudentRace{
				Location: loc,
				Race:     Races[i],
				Total:    count(c[0]),
				Autism:   count(c[1]),
			})
		}
	}
	return out
}

func count(v *float64) int64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return int64(math.Round(*v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
