package grpc

import (
	"context"

	"github.com/plataa/triagedash/internal/dashboard"
	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/repository/models"
	"github.com/plataa/triagedash/internal/service"
	"github.com/plataa/triagedash/internal/session"
)

type DashboardService interface {
	Login(ctx context.Context, email, password string) (session.Profile, error)
	Logout()
	PatientResults(ctx context.Context) ([]service.PatientSummary, error)
	SubmitContact(ctx context.Context, msg records.ContactMessage) error
}

type RegionService interface {
	ImportRegionStats(ctx context.Context, residentSex []models.ResidentSex) (service.ImportResult, error)
	RegionSummary(ctx context.Context) (service.RegionSummary, error)
	GenderDistribution(ctx context.Context) (service.GenderDistribution, error)
	RaceBreakdown(ctx context.Context, location string) ([]service.RaceBreakdown, error)
}

// DashboardStore is the filtered dashboard state.
type DashboardStore interface {
	Reload(ctx context.Context) error
	Reset()
	SetFilters(f service.Filters)
	Snapshot() dashboard.Snapshot
}

type MapLoader interface {
	Load(ctx context.Context) (dashboard.MapView, error)
	Invalidate(ctx context.Context)
}

// ImportObserver is told how many region rows are stored after an import.
type ImportObserver interface {
	SetRegionRows(n int)
}
