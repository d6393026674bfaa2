package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/plataa/triagedash/internal/dashboard"
	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/repository/models"
	"github.com/plataa/triagedash/internal/service"
	"github.com/plataa/triagedash/internal/session"
	"github.com/plataa/triagedash/internal/upstream"
	"github.com/plataa/triagedash/pkg/cache"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

const cacheKeyRegionBreakdown = "grpc:region_breakdown"

var errBadRequest = errors.New("bad request")

type GRPCHandlers struct {
	dashboard DashboardService
	regions   RegionService
	store     DashboardStore
	maps      MapLoader
	imports   ImportObserver
	cache     cache.Store
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// Deps groups the collaborators of GRPCHandlers. Imports and Cache may be nil.
type Deps struct {
	Dashboard DashboardService
	Regions   RegionService
	Store     DashboardStore
	Maps      MapLoader
	Imports   ImportObserver
	Cache     cache.Store
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(deps Deps, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if deps.Dashboard == nil || deps.Regions == nil || deps.Store == nil || deps.Maps == nil {
		panic("NewGRPCHandlers: dashboard, regions, store and maps are required")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		dashboard: deps.Dashboard,
		regions:   deps.Regions,
		store:     deps.Store,
		maps:      deps.Maps,
		imports:   deps.Imports,
		cache:     deps.Cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
	}
}

var _ DashboardServer = (*GRPCHandlers)(nil)

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, records.ErrInvalidContact):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, upstream.ErrUnauthorized):
		s.logger.Info("not authenticated", zap.String("op", op))
		return status.Error(codes.Unauthenticated, dashboard.ErrorMessage(err))
	case errors.Is(err, service.ErrNoRegionData):
		return status.Error(codes.NotFound, "no region data imported yet")
	case errors.Is(err, dashboard.ErrStale):
		return status.Error(codes.Aborted, "superseded by a newer reload")
	case errors.Is(err, service.ErrUpstreamFailure):
		s.logger.Error("upstream failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, dashboard.ErrorMessage(err))
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(req, &in); err != nil {
		return nil, s.handleError(ctx, "Login", err)
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	profile, err := s.dashboard.Login(ctx, in.Email, in.Password)
	if err != nil {
		return nil, s.handleError(ctx, "Login", err)
	}
	// A new user never sees the previous user's rows.
	s.store.Reset()

	return s.encode(ctx, "Login", map[string]any{"profile": profile})
}

func (s *GRPCHandlers) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.dashboard.Logout()
	s.store.Reset()
	return &structpb.Struct{}, nil
}

// Refresh reloads the screening rows and returns the new snapshot.
func (s *GRPCHandlers) Refresh(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.store.Reload(ctx); err != nil {
		return nil, s.handleError(ctx, "Refresh", err)
	}
	return s.encode(ctx, "Refresh", s.store.Snapshot())
}

func (s *GRPCHandlers) SetFilters(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := decodeFilters(req)
	if err != nil {
		return nil, s.handleError(ctx, "SetFilters", err)
	}
	s.store.SetFilters(f)
	return s.encode(ctx, "SetFilters", s.store.Snapshot())
}

func (s *GRPCHandlers) GetDashboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.encode(ctx, "GetDashboard", s.store.Snapshot())
}

func (s *GRPCHandlers) GetPatientResults(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	patients, err := s.dashboard.PatientResults(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "GetPatientResults", err)
	}
	return s.encode(ctx, "GetPatientResults", map[string]any{"patients": patients})
}

func (s *GRPCHandlers) GetRegionMap(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	view, err := s.maps.Load(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "GetRegionMap", err)
	}
	return s.encode(ctx, "GetRegionMap", view)
}

type regionBreakdown struct {
	Summary service.RegionSummary      `json:"summary"`
	Gender  service.GenderDistribution `json:"gender"`
}

// GetGenderDistribution returns the national totals, the sex split and
// the race breakdown of one location (the first imported by default).
func (s *GRPCHandlers) GetGenderDistribution(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Location string `json:"location"`
	}
	if err := decode(req, &in); err != nil {
		return nil, s.handleError(ctx, "GetGenderDistribution", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	breakdown, err := cache.FindAndCache(ctx, s.cache, &s.sfGroup, cacheKeyRegionBreakdown, s.cacheTTL, s.logger, func(fetchCtx context.Context) (regionBreakdown, error) {
		summary, err := s.regions.RegionSummary(fetchCtx)
		if err != nil {
			return regionBreakdown{}, err
		}
		gender, err := s.regions.GenderDistribution(fetchCtx)
		if err != nil {
			return regionBreakdown{}, err
		}
		return regionBreakdown{Summary: summary, Gender: gender}, nil
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetGenderDistribution", err)
	}

	race, err := s.regions.RaceBreakdown(ctx, strings.TrimSpace(in.Location))
	if err != nil && !errors.Is(err, service.ErrNoRegionData) {
		return nil, s.handleError(ctx, "GetGenderDistribution", err)
	}
	if race == nil {
		race = []service.RaceBreakdown{}
	}

	return s.encode(ctx, "GetGenderDistribution", map[string]any{
		"summary": breakdown.Summary,
		"gender":  breakdown.Gender,
		"race":    race,
	})
}

// ImportRegionStats refreshes the stored IBGE tables and drops every
// cached view derived from them.
func (s *GRPCHandlers) ImportRegionStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ResidentSex []struct {
			Location    string `json:"location"`
			MaleCases   int64  `json:"male_cases"`
			FemaleCases int64  `json:"female_cases"`
		} `json:"resident_sex"`
	}
	if err := decode(req, &in); err != nil {
		return nil, s.handleError(ctx, "ImportRegionStats", err)
	}

	var residents []models.ResidentSex
	if in.ResidentSex != nil {
		residents = make([]models.ResidentSex, 0, len(in.ResidentSex))
		for _, r := range in.ResidentSex {
			if r.MaleCases < 0 || r.FemaleCases < 0 {
				return nil, status.Errorf(codes.InvalidArgument, "negative case count for %q", r.Location)
			}
			residents = append(residents, models.ResidentSex{
				Location:    r.Location,
				MaleCases:   r.MaleCases,
				FemaleCases: r.FemaleCases,
			})
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	result, err := s.regions.ImportRegionStats(ctx, residents)
	if errors.Is(err, service.ErrStorageFailure) {
		// The write may have partly reached the database before failing.
		s.dropRegionViews(ctx)
	}
	if err != nil {
		return nil, s.handleError(ctx, "ImportRegionStats", err)
	}

	s.dropRegionViews(ctx)
	if s.imports != nil {
		s.imports.SetRegionRows(result.RegionStats)
	}

	return s.encode(ctx, "ImportRegionStats", result)
}

// dropRegionViews discards the cached map and breakdown so the next read goes
// to storage.
func (s *GRPCHandlers) dropRegionViews(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.maps.Invalidate(ctx)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyRegionBreakdown); err != nil {
		s.logger.Warn("failed to drop cached breakdown", zap.Error(err))
	}
}

func (s *GRPCHandlers) SubmitContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var msg records.ContactMessage
	if err := decode(req, &msg); err != nil {
		return nil, s.handleError(ctx, "SubmitContact", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.dashboard.SubmitContact(ctx, msg); err != nil {
		return nil, s.handleError(ctx, "SubmitContact", err)
	}
	return s.encode(ctx, "SubmitContact", map[string]any{"sent": true})
}

func (s *GRPCHandlers) encode(ctx context.Context, op string, v any) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

// encode converts v to a Struct through its JSON form.
func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return structpb.NewStruct(m)
}

// decode fills dst from the JSON form of req. A nil req leaves dst as is.
func decode(req *structpb.Struct, dst any) error {
	if req == nil {
		return nil
	}
	raw, err := json.Marshal(req.AsMap())
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// decodeFilters reads filter fields, accepting either the Portuguese or
// the English risk label.
func decodeFilters(req *structpb.Struct) (service.Filters, error) {
	var in struct {
		Region   string `json:"region"`
		TestType string `json:"test_type"`
		Risk     string `json:"risk"`
		Start    string `json:"start"`
		End      string `json:"end"`
		RowLimit int    `json:"row_limit"`
	}
	if err := decode(req, &in); err != nil {
		return service.Filters{}, err
	}
	if in.RowLimit < 0 {
		return service.Filters{}, fmt.Errorf("%w: row_limit must not be negative", errBadRequest)
	}

	f := service.Filters{
		Region:   strings.TrimSpace(in.Region),
		TestType: strings.TrimSpace(in.TestType),
		Start:    strings.TrimSpace(in.Start),
		End:      strings.TrimSpace(in.End),
		RowLimit: in.RowLimit,
	}
	if risk := strings.TrimSpace(in.Risk); risk != "" {
		f.Risk = records.ParseRisk(risk)
		if f.Risk == records.RiskUnknown {
			return service.Filters{}, fmt.Errorf("%w: unknown risk %q", errBadRequest, risk)
		}
	}
	return f, nil
}
