package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plataa/triagedash/internal/repository/models"
	"github.com/plataa/triagedash/internal/service/mocks"
	"github.com/plataa/triagedash/internal/upstream"
)

func f64(v float64) *float64 { return &v }

func TestNewRegionService(t *testing.T) {
	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewRegionService(&mocks.MockUpstreamClient{}, nil, zap.NewNop())
		})
	})

	t.Run("nil client panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewRegionService(nil, &mocks.MockRegionStatsRepository{}, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		svc := NewRegionService(&mocks.MockUpstreamClient{}, &mocks.MockRegionStatsRepository{}, nil)
		assert.NotNil(t, svc.logger)
	})
}

func TestRegionService_ImportRegionStats(t *testing.T) {
	ctx := context.Background()

	client := &mocks.MockUpstreamClient{
		RegionStatsFunc: func(ctx context.Context) ([]upstream.RegionStat, error) {
			return []upstream.RegionStat{
				{Location: " São Paulo ", Population: 1000, AutismCount: 12, AutismPercentage: 1.2},
				{Location: "Fonte: IBGE, Censo 2022"},
				{Location: ""},
			}, nil
		},
		StudentsByRaceFunc: func(ctx context.Context) ([]upstream.StudentRaceRow, error) {
			return []upstream.StudentRaceRow{
				{Location: "Brasil", WhiteTotal: f64(900), WhiteAutism: f64(9), BrownTotal: f64(800.4)},
			}, nil
		},
	}

	t.Run("replaces every table", func(t *testing.T) {
		var imp models.RegionImport
		calls := 0
		repo := &mocks.MockRegionStatsRepository{
			ReplaceImportFunc: func(ctx context.Context, in models.RegionImport) error {
				calls++
				imp = in
				return nil
			},
		}
		svc := NewRegionService(client, repo, zap.NewNop())

		got, err := svc.ImportRegionStats(ctx, []models.ResidentSex{{Location: "Brasil", MaleCases: 3, FemaleCases: 1}})
		require.NoError(t, err)
		assert.Equal(t, ImportResult{RegionStats: 1, StudentRace: 4, ResidentSex: 1}, got)

		assert.Equal(t, 1, calls, "every table goes through one write")

		require.Len(t, imp.RegionStats, 1)
		assert.Equal(t, "São Paulo", imp.RegionStats[0].Location)

		require.Len(t, imp.StudentRace, 4)
		assert.Equal(t, models.StudentRace{Location: "Brasil", Race: "Branca", Total: 900, Autism: 9}, imp.StudentRace[0])
		assert.Equal(t, models.StudentRace{Location: "Brasil", Race: "Preta"}, imp.StudentRace[1])
		assert.Equal(t, int64(800), imp.StudentRace[3].Total)

		assert.Len(t, imp.ResidentSex, 1)
	})

	t.Run("resident table untouched without rows", func(t *testing.T) {
		var imp models.RegionImport
		repo := &mocks.MockRegionStatsRepository{
			ReplaceImportFunc: func(ctx context.Context, in models.RegionImport) error { imp = in; return nil },
		}
		svc := NewRegionService(client, repo, zap.NewNop())

		got, err := svc.ImportRegionStats(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, got.ResidentSex)
		assert.Nil(t, imp.ResidentSex)
	})

	t.Run("upstream failure stores nothing", func(t *testing.T) {
		failing := &mocks.MockUpstreamClient{
			RegionStatsFunc: func(ctx context.Context) ([]upstream.RegionStat, error) {
				return nil, errors.New("timeout")
			},
		}
		svc := NewRegionService(failing, &mocks.MockRegionStatsRepository{}, zap.NewNop())

		_, err := svc.ImportRegionStats(ctx, nil)
		assert.ErrorIs(t, err, ErrUpstreamFailure)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := &mocks.MockRegionStatsRepository{
			ReplaceImportFunc: func(ctx context.Context, _ models.RegionImport) error { return errors.New("disk full") },
		}
		svc := NewRegionService(client, repo, zap.NewNop())

		_, err := svc.ImportRegionStats(ctx, nil)
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestRegionService_RegionMetrics(t *testing.T) {
	repo := &mocks.MockRegionStatsRepository{
		ListRegionStatsFunc: func(ctx context.Context) ([]models.RegionStat, error) {
			return []models.RegionStat{
				{Location: "sao paulo", AutismPercentage: 1.2},
				{Location: "Pará", AutismPercentage: 0},
			}, nil
		},
	}
	svc := NewRegionService(&mocks.MockUpstreamClient{}, repo, zap.NewNop())

	metric, err := svc.RegionMetrics(context.Background())
	require.NoError(t, err)

	v, ok := metric.Lookup("São Paulo")
	assert.True(t, ok)
	assert.Equal(t, 1.2, v)

	v, ok = metric.Lookup("PARA")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestRegionService_RegionSummary(t *testing.T) {
	repo := &mocks.MockRegionStatsRepository{
		TotalsFunc: func(ctx context.Context) (models.RegionTotals, error) {
			return models.RegionTotals{Population: 1500, AutismCases: 15}, nil
		},
	}
	svc := NewRegionService(&mocks.MockUpstreamClient{}, repo, zap.NewNop())

	got, err := svc.RegionSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RegionSummary{TotalPopulation: 1500, TotalAutismCases: 15}, got)
}

func TestRegionService_GenderDistribution(t *testing.T) {
	tests := []struct {
		name    string
		totals  models.SexTotals
		want    GenderDistribution
		wantErr error
	}{
		{
			name:   "thirds round to two decimals",
			totals: models.SexTotals{MaleCases: 2, FemaleCases: 1},
			want:   GenderDistribution{MalePercentage: 66.67, FemalePercentage: 33.33, MaleCases: 2, FemaleCases: 1},
		},
		{
			name:   "zero share is a value",
			totals: models.SexTotals{MaleCases: 5},
			want:   GenderDistribution{MalePercentage: 100, FemalePercentage: 0, MaleCases: 5},
		},
		{
			name:    "no cases",
			totals:  models.SexTotals{},
			wantErr: ErrNoRegionData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockRegionStatsRepository{
				SexTotalsFunc: func(ctx context.Context) (models.SexTotals, error) { return tt.totals, nil },
			}
			svc := NewRegionService(&mocks.MockUpstreamClient{}, repo, zap.NewNop())

			got, err := svc.GenderDistribution(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegionService_RaceBreakdown(t *testing.T) {
	t.Run("fixed order with missing races as zero", func(t *testing.T) {
		repo := &mocks.MockRegionStatsRepository{
			StudentRaceFunc: func(ctx context.Context, location string) ([]models.StudentRace, error) {
				assert.Equal(t, "Brasil", location)
				return []models.StudentRace{
					{Race: "Parda", Total: 800, Autism: 7},
					{Race: "Branca", Total: 900, Autism: 9},
				}, nil
			},
		}
		svc := NewRegionService(&mocks.MockUpstreamClient{}, repo, zap.NewNop())

		got, err := svc.RaceBreakdown(context.Background(), " Brasil ")
		require.NoError(t, err)
		assert.Equal(t, []RaceBreakdown{
			{Race: "Branca", Total: 900, Autism: 9},
			{Race: "Preta"},
			{Race: "Amarela"},
			{Race: "Parda", Total: 800, Autism: 7},
		}, got)
	})

	t.Run("no rows", func(t *testing.T) {
		repo := &mocks.MockRegionStatsRepository{
			StudentRaceFunc: func(ctx context.Context, location string) ([]models.StudentRace, error) {
				return []models.StudentRace{}, nil
			},
		}
		svc := NewRegionService(&mocks.MockUpstreamClient{}, repo, zap.NewNop())

		_, err := svc.RaceBreakdown(context.Background(), "")
		assert.ErrorIs(t, err, ErrNoRegionData)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := &mocks.MockRegionStatsRepository{
			StudentRaceFunc: func(ctx context.Context, location string) ([]models.StudentRace, error) {
				return nil, errors.New("locked")
			},
		}
		svc := NewRegionService(&mocks.MockUpstreamClient{}, repo, zap.NewNop())

		_, err := svc.RaceBreakdown(context.Background(), "")
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}
