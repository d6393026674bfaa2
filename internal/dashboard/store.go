package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/service"
	"github.com/plataa/triagedash/internal/session"
	"github.com/plataa/triagedash/internal/upstream"
)

// ErrStale is returned by Reload when a newer reload started while it was
// in flight; its result was discarded.
var ErrStale = errors.New("reload superseded")

// Reload outcomes reported to the observer.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

// Fetcher loads the specialist feed.
type Fetcher interface {
	SpecialistDashboard(ctx context.Context) (service.SpecialistDashboard, error)
}

// ReloadObserver receives the outcome and duration of every reload.
type ReloadObserver interface {
	ObserveReload(outcome string, d time.Duration)
}

// Snapshot is a point-in-time copy of the dashboard state. Callers own it.
type Snapshot struct {
	Loading      bool                      `json:"loading"`
	Error        string                    `json:"error,omitempty"`
	Loaded       bool                      `json:"loaded"`
	Filters      service.Filters           `json:"filters"`
	Totals       service.RiskCounts        `json:"totals"`
	Aggregates   service.AggregationResult `json:"aggregates"`
	Rows         []records.ScreeningRecord `json:"rows"`
	FilteredRows int                       `json:"filtered_rows"`
	TotalRows    int                       `json:"total_rows"`
	UpdatedAt    time.Time                 `json:"updated_at,omitempty"`
}

type derived struct {
	generation uint64
	filters    service.Filters
	rows       []records.ScreeningRecord
	aggregates service.AggregationResult
}

// Store holds the dashboard records and filters and the state derived from
// them. Only the latest Reload may commit; earlier ones are discarded.
type Store struct {
	fetcher  Fetcher
	observer ReloadObserver
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	generation uint64
	committed  uint64
	records    []records.ScreeningRecord
	totals     service.RiskCounts
	filters    service.Filters
	loading    bool
	errMsg     string
	updatedAt  time.Time
	cache      *derived
}

// NewStore creates a Store. observer may be nil.
func NewStore(fetcher Fetcher, observer ReloadObserver, logger *zap.Logger) *Store {
	if fetcher == nil {
		panic("fetcher must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fetcher:  fetcher,
		observer: observer,
		logger:   logger.Named("dashboard"),
		now:      time.Now,
		records:  []records.ScreeningRecord{},
	}
}

// Reload fetches the records and replaces the current set wholesale. On
// failure the previous records stay, loading is cleared and a message is
// kept for display.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	start := s.now()
	data, err := s.fetcher.SpecialistDashboard(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.observe(OutcomeStale, start)
		s.logger.Debug("discarded stale reload", zap.Uint64("generation", gen))
		return ErrStale
	}

	s.loading = false
	if err != nil {
		s.errMsg = ErrorMessage(err)
		s.observe(OutcomeError, start)
		s.logger.Warn("dashboard reload failed", zap.Error(err))
		return err
	}

	s.records = data.Records
	if s.records == nil {
		s.records = []records.ScreeningRecord{}
	}
	s.totals = data.Totals
	s.committed = gen
	s.updatedAt = s.now()
	s.deriveLocked()
	s.observe(OutcomeOK, start)

	s.logger.Info("dashboard reloaded",
		zap.Int("records", len(s.records)),
		zap.Uint64("generation", gen))

	return nil
}

// Reset drops every record and filter and discards reloads still in flight.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.committed = s.generation
	s.records = []records.ScreeningRecord{}
	s.totals = service.RiskCounts{}
	s.filters = service.Filters{}
	s.loading = false
	s.errMsg = ""
	s.updatedAt = time.Time{}
	s.cache = nil
}

// SetFilters replaces the filters and recomputes the derived state.
func (s *Store) SetFilters(f service.Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = f
	s.deriveLocked()
}

// Filters returns the current filters.
func (s *Store) Filters() service.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.deriveLocked()
	limited := service.LimitRows(d.rows, s.filters.RowLimit)

	return Snapshot{
		Loading:      s.loading,
		Error:        s.errMsg,
		Loaded:       !s.updatedAt.IsZero(),
		Filters:      s.filters,
		Totals:       s.totals,
		Aggregates:   cloneAggregates(d.aggregates),
		Rows:         append([]records.ScreeningRecord{}, limited...),
		FilteredRows: len(d.rows),
		TotalRows:    len(s.records),
		UpdatedAt:    s.updatedAt,
	}
}

// deriveLocked returns the memoized derived state, recomputing it when the
// committed records or the filters changed.
func (s *Store) deriveLocked() *derived {
	if s.cache != nil && s.cache.generation == s.committed && s.cache.filters == s.filters {
		return s.cache
	}
	rows := service.ApplyFilters(s.records, s.filters)
	s.cache = &derived{
		generation: s.committed,
		filters:    s.filters,
		rows:       rows,
		aggregates: service.Aggregate(rows),
	}
	return s.cache
}

func (s *Store) observe(outcome string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveReload(outcome, s.now().Sub(start))
	}
}

func cloneAggregates(a service.AggregationResult) service.AggregationResult {
	return service.AggregationResult{
		RiskCounts: a.RiskCounts,
		AgeGroups:  append([]service.AgeGroupRisk{}, a.AgeGroups...),
		TopRegions: append([]service.RegionCount{}, a.TopRegions...),
		Trend:      append([]service.TrendPoint{}, a.Trend...),
	}
}

// ErrorMessage turns a fetch failure into the text shown to the user.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, upstream.ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The screening service took too long to answer. Try again."
	case errors.Is(err, context.Canceled):
		return "Loading was interrupted."
	default:
		return "Could not load the dashboard data: " + err.Error()
	}
}
