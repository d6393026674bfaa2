package mocks

import (
	"context"
	"errors"

	"github.com/plataa/triagedash/internal/dashboard"
	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/repository/models"
	"github.com/plataa/triagedash/internal/service"
	"github.com/plataa/triagedash/internal/session"
)

// MockDashboardService is a function-field mock of the handler's
// DashboardService dependency.
type MockDashboardService struct {
	LoginFunc          func(ctx context.Context, email, password string) (session.Profile, error)
	LogoutFunc         func()
	PatientResultsFunc func(ctx context.Context) ([]service.PatientSummary, error)
	SubmitContactFunc  func(ctx context.Context, msg records.ContactMessage) error
}

func (m *MockDashboardService) Login(ctx context.Context, email, password string) (session.Profile, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return session.Profile{}, errors.New("LoginFunc not implemented")
}

func (m *MockDashboardService) Logout() {
	if m.LogoutFunc != nil {
		m.LogoutFunc()
	}
}

func (m *MockDashboardService) PatientResults(ctx context.Context) ([]service.PatientSummary, error) {
	if m.PatientResultsFunc != nil {
		return m.PatientResultsFunc(ctx)
	}
	return nil, errors.New("PatientResultsFunc not implemented")
}

func (m *MockDashboardService) SubmitContact(ctx context.Context, msg records.ContactMessage) error {
	if m.SubmitContactFunc != nil {
		return m.SubmitContactFunc(ctx, msg)
	}
	return errors.New("SubmitContactFunc not implemented")
}

// MockRegionService is a function-field mock of RegionService.
type MockRegionService struct {
	ImportRegionStatsFunc  func(ctx context.Context, residentSex []models.ResidentSex) (service.ImportResult, error)
	RegionSummaryFunc      func(ctx context.Context) (service.RegionSummary, error)
	GenderDistributionFunc func(ctx context.Context) (service.GenderDistribution, error)
	RaceBreakdownFunc      func(ctx context.Context, location string) ([]service.RaceBreakdown, error)
}

func (m *MockRegionService) ImportRegionStats(ctx context.Context, residentSex []models.ResidentSex) (service.ImportResult, error) {
	if m.ImportRegionStatsFunc != nil {
		return m.ImportRegionStatsFunc(ctx, residentSex)
	}
	return service.ImportResult{}, errors.New("ImportRegionStatsFunc not implemented")
}

func (m *MockRegionService) RegionSummary(ctx context.Context) (service.RegionSummary, error) {
	if m.RegionSummaryFunc != nil {
		return m.RegionSummaryFunc(ctx)
	}
	return service.RegionSummary{}, errors.New("RegionSummaryFunc not implemented")
}

func (m *MockRegionService) GenderDistribution(ctx context.Context) (service.GenderDistribution, error) {
	if m.GenderDistributionFunc != nil {
		return m.GenderDistributionFunc(ctx)
	}
	return service.GenderDistribution{}, errors.New("GenderDistributionFunc not implemented")
}

func (m *MockRegionService) RaceBreakdown(ctx context.Context, location string) ([]service.RaceBreakdown, error) {
	if m.RaceBreakdownFunc != nil {
		return m.RaceBreakdownFunc(ctx, location)
	}
	return nil, service.ErrNoRegionData
}

// MockDashboardStore records the calls made against the dashboard state.
type MockDashboardStore struct {
	ReloadFunc   func(ctx context.Context) error
	SnapshotFunc func() dashboard.Snapshot

	Resets  int
	Filters []service.Filters
}

func (m *MockDashboardStore) Reload(ctx context.Context) error {
	if m.ReloadFunc != nil {
		return m.ReloadFunc(ctx)
	}
	return nil
}

func (m *MockDashboardStore) Reset() {
	m.Resets++
}

func (m *MockDashboardStore) SetFilters(f service.Filters) {
	m.Filters = append(m.Filters, f)
}

func (m *MockDashboardStore) Snapshot() dashboard.Snapshot {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	return dashboard.Snapshot{}
}

// MockMapLoader is a function-field mock of MapLoader.
type MockMapLoader struct {
	LoadFunc func(ctx context.Context) (dashboard.MapView, error)

	Invalidations int
}

func (m *MockMapLoader) Load(ctx context.Context) (dashboard.MapView, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return dashboard.MapView{}, errors.New("LoadFunc not implemented")
}

func (m *MockMapLoader) Invalidate(ctx context.Context) {
	m.Invalidations++
}
