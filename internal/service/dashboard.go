package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/session"
	"github.com/plataa/triagedash/internal/upstream"
)

var (
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrStorageFailure  = errors.New("storage failure")
	ErrNoRegionData    = errors.New("no region data")
)

// DashboardService serves the specialist and guardian views and the
// account operations that feed the session.
type DashboardService struct {
	client  UpstreamClient
	session *session.Session
	logger  *zap.Logger
}

// NewDashboardService creates a new DashboardService instance.
func NewDashboardService(client UpstreamClient, sess *session.Session, logger *zap.Logger) *DashboardService {
	if client == nil {
		panic("client must not be nil")
	}
	if sess == nil {
		panic("session must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &DashboardService{
		client:  client,
		session: sess,
		logger:  logger,
	}
}

// Login authenticates upstream and stores the token and profile in the
// session.
func (s *DashboardService) Login(ctx context.Context, email, password string) (session.Profile, error) {
	resp, err := s.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return session.Profile{}, upstreamErr(err)
	}
	s.session.Login(resp.AccessToken, resp.Profile)

	s.logger.Info("session started",
		zap.String("role", resp.Profile.Role),
		zap.Time("expires_at", s.session.ExpiresAt()))

	return resp.Profile, nil
}

// Logout clears the session.
func (s *DashboardService) Logout() {
	s.session.Logout()
	s.logger.Info("session ended")
}

// SpecialistDashboard fetches every screening row together with the
// totals computed by the platform. Totals are reported as received.
func (s *DashboardService) SpecialistDashboard(ctx context.Context) (SpecialistDashboard, error) {
	if !s.session.Authenticated() {
		return SpecialistDashboard{}, session.ErrNotAuthenticated
	}

	payload, err := s.client.SpecialistDashboard(ctx)
	if err != nil {
		return SpecialistDashboard{}, upstreamErr(err)
	}

	out := SpecialistDashboard{
		Records: payload.Records,
		Totals:  totalsFromWire(payload.Totals),
	}

	s.logger.Debug("fetched specialist dashboard",
		zap.Int("records", len(out.Records)),
		zap.Int("total", out.Totals.Total()))

	return out, nil
}

// PatientResults fetches the guardian's patients with labeled results and
// follow-up guidance.
func (s *DashboardService) PatientResults(ctx context.Context) ([]PatientSummary, error) {
	if !s.session.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}

	patients, err := s.client.ResponsibleResults(ctx)
	if err != nil {
		return nil, upstreamErr(err)
	}

	out := make([]PatientSummary, 0, len(patients))
	for _, p := range patients {
		summary := PatientSummary{
			Name:    p.Name,
			CPF:     p.CPF,
			Region:  p.Region,
			Results: make([]PatientResult, 0, len(p.Results)),
		}
		for _, r := range p.Results {
			risk := records.ParseRisk(r.Risk)
			result := PatientResult{
				TestType:  r.TestType,
				TestLabel: records.TestLabel(r.TestType),
				Date:      r.Date,
				Risk:      risk,
				Score:     r.Score,
				Note:      r.Note,
			}
			if g, ok := records.GuidanceFor(risk); ok {
				result.Guidance = &g
			}
			summary.Results = append(summary.Results, result)
		}
		out = append(out, summary)
	}
	return out, nil
}

// SubmitContact validates the form and forwards it. No session is needed.
func (s *DashboardService) SubmitContact(ctx context.Context, msg records.ContactMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := s.client.SendContact(ctx, msg); err != nil {
		return upstreamErr(err)
	}
	s.logger.Info("contact message forwarded")
	return nil
}

// totalsFromWire maps the platform's Portuguese (or English) keys onto
// RiskCounts. Missing keys read as zero.
func totalsFromWire(in map[string]int) RiskCounts {
	var out RiskCounts
	for k, v := range in {
		switch records.ParseRisk(k) {
		case records.RiskHigh:
			out.High += v
		case records.RiskModerate:
			out.Moderate += v
		case records.RiskLow:
			out.Low += v
		}
	}
	return out
}

// upstreamErr keeps context and credential errors intact so transports can
// tell them apart from generic failures.
func upstreamErr(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, upstream.ErrUnauthorized):
		return err
	}
	return fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
}
