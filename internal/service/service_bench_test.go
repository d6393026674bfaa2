package service

import (
	"context"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/repository"
	"github.com/plataa/triagedash/internal/repository/models"
	"github.com/plataa/triagedash/internal/service/mocks"
	dbbuilder "github.com/plataa/triagedash/pkg/database"
)

func benchRows(n int) []records.ScreeningRecord {
	risks := []string{"Alto", "Moderado", "Baixo", ""}
	ages := []string{"0-3", "4-6", "7-10", ""}
	rows := make([]records.ScreeningRecord, n)
	for i := range rows {
		raw := risks[i%len(risks)]
		rows[i] = records.ScreeningRecord{
			RawRisk:  raw,
			Risk:     records.ParseRisk(raw),
			AgeGroup: ages[i%len(ages)],
			Region:   fmt.Sprintf("Bairro %d", i%37),
			Date:     fmt.Sprintf("2024-03-%02dT10:00:00", i%28+1),
			TestType: "mchat",
		}
	}
	return rows
}

func BenchmarkAggregate(b *testing.B) {
	rows := benchRows(10000)

	b.ReportAllocs()

	for b.Loop() {
		_ = Aggregate(rows)
	}
}

func BenchmarkApplyFilters(b *testing.B) {
	rows := benchRows(10000)
	f := Filters{Risk: records.RiskHigh, Start: "2024-03-05", End: "2024-03-20"}

	b.ReportAllocs()

	for b.Loop() {
		_ = ApplyFilters(rows, f)
	}
}

func BenchmarkRegionMetrics(b *testing.B) {
	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithSchema(repository.Schema...),
	)
	if err != nil {
		b.Fatalf("failed to create db pool via builder: %v", err)
	}
	b.Cleanup(func() { db.Close() })

	repo := repository.NewRegionStatsRepository(db)
	stats := make([]models.RegionStat, 27)
	for i := range stats {
		stats[i] = models.RegionStat{Location: fmt.Sprintf("Estado %d", i), Population: 1000, AutismCount: int64(i), AutismPercentage: float64(i) / 10}
	}
	if err := repo.ReplaceRegionStats(context.Background(), stats); err != nil {
		b.Fatalf("failed to seed db: %v", err)
	}

	svc := NewRegionService(&mocks.MockUpstreamClient{}, repo, zap.NewNop())

	b.ReportAllocs()

	for b.Loop() {
		_, _ = svc.RegionMetrics(context.Background())
	}
}
