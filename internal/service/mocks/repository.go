package mocks

import (
	"context"
	"errors"

	"github.com/plataa/triagedash/internal/repository/models"
)

// MockRegionStatsRepository is a mock implementation of the
// RegionStatsRepository interface for testing the service layer.
type MockRegionStatsRepository struct {
	ReplaceImportFunc   func(ctx context.Context, imp models.RegionImport) error
	ListRegionStatsFunc func(ctx context.Context) ([]models.RegionStat, error)
	TotalsFunc          func(ctx context.Context) (models.RegionTotals, error)
	SexTotalsFunc       func(ctx context.Context) (models.SexTotals, error)
	StudentRaceFunc     func(ctx context.Context, location string) ([]models.StudentRace, error)
}

func (m *MockRegionStatsRepository) ReplaceImport(ctx context.Context, imp models.RegionImport) error {
	if m.ReplaceImportFunc != nil {
		return m.ReplaceImportFunc(ctx, imp)
	}
	return errors.New("ReplaceImportFunc not implemented")
}

func (m *MockRegionStatsRepository) ListRegionStats(ctx context.Context) ([]models.RegionStat, error) {
	if m.ListRegionStatsFunc != nil {
		return m.ListRegionStatsFunc(ctx)
	}
	return nil, errors.New("ListRegionStatsFunc not implemented")
}

func (m *MockRegionStatsRepository) Totals(ctx context.Context) (models.RegionTotals, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx)
	}
	return models.RegionTotals{}, errors.New("TotalsFunc not implemented")
}

func (m *MockRegionStatsRepository) SexTotals(ctx context.Context) (models.SexTotals, error) {
	if m.SexTotalsFunc != nil {
		return m.SexTotalsFunc(ctx)
	}
	return models.SexTotals{}, errors.New("SexTotalsFunc not implemented")
}

func (m *MockRegionStatsRepository) StudentRace(ctx context.Context, location string) ([]models.StudentRace, error) {
	if m.StudentRaceFunc != nil {
		return m.StudentRaceFunc(ctx, location)
	}
	return nil, errors.New("StudentRaceFunc not implemented")
}
