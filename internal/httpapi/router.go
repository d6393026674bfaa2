// Package httpapi serves the rendered charts, health and metrics over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plataa/triagedash/internal/dashboard"
	"github.com/plataa/triagedash/internal/render"
	"github.com/plataa/triagedash/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	svgContentType  = "image/svg+xml"
	chartTimeout    = 10 * time.Second
)

type SnapshotSource interface {
	Snapshot() dashboard.Snapshot
}

type MapSource interface {
	Load(ctx context.Context) (dashboard.MapView, error)
}

type RegionSource interface {
	GenderDistribution(ctx context.Context) (service.GenderDistribution, error)
	RaceBreakdown(ctx context.Context, location string) ([]service.RaceBreakdown, error)
}

// ChartCounter counts rendered charts by name.
type ChartCounter interface {
	ChartRendered(chart string)
}

// Deps are the collaborators of the router. Metrics and Charts may be nil.
type Deps struct {
	Dashboard SnapshotSource
	Maps      MapSource
	Regions   RegionSource
	Metrics   http.Handler
	Charts    ChartCounter
}

type handler struct {
	deps   Deps
	logger *zap.Logger
}

// NewRouter wires the public endpoints.
func NewRouter(deps Deps, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{deps: deps, logger: logger.Named("http")}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.accessLog)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.healthz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/charts", func(r chi.Router) {
		r.Use(chimw.Timeout(chartTimeout))
		r.Get("/risk.svg", h.chart("risk", func(w io.Writer, _ *http.Request) error {
			render.RiskDonut(w, h.deps.Dashboard.Snapshot().Aggregates.RiskCounts)
			return nil
		}))
		r.Get("/age.svg", h.chart("age", func(w io.Writer, _ *http.Request) error {
			render.AgeBars(w, h.deps.Dashboard.Snapshot().Aggregates.AgeGroups)
			return nil
		}))
		r.Get("/regions.svg", h.chart("regions", func(w io.Writer, _ *http.Request) error {
			render.RegionBars(w, h.deps.Dashboard.Snapshot().Aggregates.TopRegions)
			return nil
		}))
		r.Get("/trend.svg", h.chart("trend", func(w io.Writer, _ *http.Request) error {
			render.Trend(w, h.deps.Dashboard.Snapshot().Aggregates.Trend)
			return nil
		}))
		r.Get("/map.svg", h.chart("map", h.renderMap))
		r.Get("/gender.svg", h.chart("gender", h.renderGender))
		r.Get("/ethnicity.svg", h.chart("ethnicity", h.renderEthnicity))
	})

	return r
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

// chart renders into a buffer first so a failure never leaves a half
// written SVG behind.
func (h *handler) chart(name string, draw func(w io.Writer, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := draw(&buf, r); err != nil {
			code := http.StatusBadGateway
			if errors.Is(err, context.DeadlineExceeded) {
				code = http.StatusGatewayTimeout
			}
			h.logger.Warn("chart failed",
				zap.String("chart", name),
				zap.String("request_id", w.Header().Get(requestIDHeader)),
				zap.Error(err))
			http.Error(w, dashboard.ErrorMessage(err), code)
			return
		}

		if h.deps.Charts != nil {
			h.deps.Charts.ChartRendered(name)
		}
		w.Header().Set("Content-Type", svgContentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	}
}

func (h *handler) renderMap(w io.Writer, r *http.Request) error {
	view, err := h.deps.Maps.Load(r.Context())
	if err != nil {
		return err
	}
	render.ChoroplethMap(w, view.Features)
	return nil
}

// renderGender draws the empty state when nothing has been imported.
func (h *handler) renderGender(w io.Writer, r *http.Request) error {
	g, err := h.deps.Regions.GenderDistribution(r.Context())
	if err != nil && !errors.Is(err, service.ErrNoRegionData) {
		return err
	}
	render.GenderPie(w, g)
	return nil
}

func (h *handler) renderEthnicity(w io.Writer, r *http.Request) error {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	rows, err := h.deps.Regions.RaceBreakdown(r.Context(), location)
	if err != nil && !errors.Is(err, service.ErrNoRegionData) {
		return err
	}
	render.EthnicityBars(w, rows)
	return nil
}

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (h *handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", w.Header().Get(requestIDHeader)))
	})
}
