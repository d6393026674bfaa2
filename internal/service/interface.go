package service

import (
	"context"

	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/repository/models"
	"github.com/plataa/triagedash/internal/upstream"
)

// UpstreamClient defines the screening platform calls the services need.
type UpstreamClient interface {
	SpecialistDashboard(ctx context.Context) (upstream.SpecialistPayload, error)
	ResponsibleResults(ctx context.Context) ([]upstream.PatientPayload, error)
	RegionStats(ctx context.Context) ([]upstream.RegionStat, error)
	StudentsByRace(ctx context.Context) ([]upstream.StudentRaceRow, error)
	SendContact(ctx context.Context, msg records.ContactMessage) error
	Login(ctx context.Context, email, password string) (upstream.LoginResponse, error)
}

// RegionStatsRepository defines the database operations for region statistics.
type RegionStatsRepository interface {
	ReplaceImport(ctx context.Context, imp models.RegionImport) error
	ListRegionStats(ctx context.Context) ([]models.RegionStat, error)
	Totals(ctx context.Context) (models.RegionTotals, error)
	SexTotals(ctx context.Context) (models.SexTotals, error)
	StudentRace(ctx context.Context, location string) ([]models.StudentRace, error)
}
