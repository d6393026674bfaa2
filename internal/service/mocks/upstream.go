package mocks

import (
	"context"
	"errors"

	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/upstream"
)

// MockUpstreamClient is a mock implementation of the UpstreamClient interface.
type MockUpstreamClient struct {
	SpecialistDashboardFunc func(ctx context.Context) (upstream.SpecialistPayload, error)
	ResponsibleResultsFunc  func(ctx context.Context) ([]upstream.PatientPayload, error)
	RegionStatsFunc         func(ctx context.Context) ([]upstream.RegionStat, error)
	StudentsByRaceFunc      func(ctx context.Context) ([]upstream.StudentRaceRow, error)
	SendContactFunc         func(ctx context.Context, msg records.ContactMessage) error
	LoginFunc               func(ctx context.Context, email, password string) (upstream.LoginResponse, error)
}

func (m *MockUpstreamClient) SpecialistDashboard(ctx context.Context) (upstream.SpecialistPayload, error) {
	if m.SpecialistDashboardFunc != nil {
		return m.SpecialistDashboardFunc(ctx)
	}
	return upstream.SpecialistPayload{}, errors.New("SpecialistDashboardFunc not implemented")
}

func (m *MockUpstreamClient) ResponsibleResults(ctx context.Context) ([]upstream.PatientPayload, error) {
	if m.ResponsibleResultsFunc != nil {
		return m.ResponsibleResultsFunc(ctx)
	}
	return nil, errors.New("ResponsibleResultsFunc not implemented")
}

func (m *MockUpstreamClient) RegionStats(ctx context.Context) ([]upstream.RegionStat, error) {
	if m.RegionStatsFunc != nil {
		return m.RegionStatsFunc(ctx)
	}
	return nil, errors.New("RegionStatsFunc not implemented")
}

func (m *MockUpstreamClient) StudentsByRace(ctx context.Context) ([]upstream.StudentRaceRow, error) {
	if m.StudentsByRaceFunc != nil {
		return m.StudentsByRaceFunc(ctx)
	}
	return nil, errors.New("StudentsByRaceFunc not implemented")
}

func (m *MockUpstreamClient) SendContact(ctx context.Context, msg records.ContactMessage) error {
	if m.SendContactFunc != nil {
		return m.SendContactFunc(ctx, msg)
	}
	return errors.New("SendContactFunc not implemented")
}

func (m *MockUpstreamClient) Login(ctx context.Context, email, password string) (upstream.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return upstream.LoginResponse{}, errors.New("LoginFunc not implemented")
}
