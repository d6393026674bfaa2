package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/plataa/triagedash/internal/geo"
	"github.com/plataa/triagedash/pkg/cache"
)

const (
	metricsCacheKey    = "region:metrics"
	boundariesCacheKey = "geo:boundaries"
	defaultCacheTTL    = 10 * time.Minute
)

// MetricSource yields the per-region percentage shown on the map.
type MetricSource interface {
	RegionMetrics(ctx context.Context) (geo.RegionMetric, error)
}

// GeoFetcher downloads the raw boundary document.
type GeoFetcher interface {
	GeoBoundaries(ctx context.Context, url string) ([]byte, error)
}

// MapView is the shaded map, ready to render.
type MapView struct {
	Features []geo.ShadedFeature `json:"features"`
	Matched  int                 `json:"matched"`
}

// MapLoader fetches the region metric and the boundary feed concurrently
// and shades the map only once both have arrived. Both feeds go through
// the read-through cache when one is configured.
type MapLoader struct {
	metrics    MetricSource
	geo        GeoFetcher
	url        string
	choropleth geo.Choropleth
	cache      cache.Store
	ttl        time.Duration
	sf         singleflight.Group
	logger     *zap.Logger
}

// NewMapLoader creates a MapLoader. store may be nil to disable caching.
func NewMapLoader(metrics MetricSource, fetcher GeoFetcher, url string, store cache.Store, ttl time.Duration, logger *zap.Logger) *MapLoader {
	if metrics == nil || fetcher == nil {
		panic("metrics and geo fetcher must not be nil")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapLoader{
		metrics:    metrics,
		geo:        fetcher,
		url:        url,
		choropleth: geo.DefaultChoropleth(),
		cache:      store,
		ttl:        ttl,
		logger:     logger.Named("map"),
	}
}

// Load returns the shaded map. Either feed failing fails the whole load;
// a malformed boundary document yields a map with no features.
func (l *MapLoader) Load(ctx context.Context) (MapView, error) {
	var (
		metric   geo.RegionMetric
		features []geo.Feature
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := cache.FindAndCache(gctx, l.cache, &l.sf, metricsCacheKey, l.ttl, l.logger, l.metrics.RegionMetrics)
		if err != nil {
			return fmt.Errorf("region metrics: %w", err)
		}
		metric = m
		return nil
	})
	g.Go(func() error {
		// The boundary document is large and third-party; refetch only on expiry.
		f, err := cache.FindAndCache(gctx, l.cache, &l.sf, boundariesCacheKey, l.ttl, l.logger, l.boundaries,
			cache.WithoutRefreshAhead())
		if err != nil {
			return fmt.Errorf("geo boundaries: %w", err)
		}
		features = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return MapView{}, err
	}

	shaded := l.choropleth.Shade(features, metric)
	matched := 0
	for _, f := range shaded {
		if f.HasValue {
			matched++
		}
	}
	if matched == 0 && len(shaded) > 0 {
		l.logger.Warn("no boundary matched a region metric", zap.Int("features", len(shaded)))
	}

	return MapView{Features: shaded, Matched: matched}, nil
}

// Invalidate drops the cached region metric, e.g. after an import.
func (l *MapLoader) Invalidate(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, metricsCacheKey); err != nil {
		l.logger.Warn("failed to invalidate region metrics", zap.Error(err))
	}
}

func (l *MapLoader) boundaries(ctx context.Context) ([]geo.Feature, error) {
	raw, err := l.geo.GeoBoundaries(ctx, l.url)
	if err != nil {
		return nil, err
	}
	features, err := geo.DecodeFeatures(raw)
	if err != nil {
		l.logger.Warn("malformed boundary feed, rendering no features", zap.Error(err))
	}
	return features, nil
}
