package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/plataa/triagedash/internal/config"
	"github.com/plataa/triagedash/internal/dashboard"
	handler "github.com/plataa/triagedash/internal/grpc"
	"github.com/plataa/triagedash/internal/httpapi"
	"github.com/plataa/triagedash/internal/metrics"
	"github.com/plataa/triagedash/internal/repository"
	"github.com/plataa/triagedash/internal/service"
	"github.com/plataa/triagedash/internal/session"
	"github.com/plataa/triagedash/internal/upstream"
	"github.com/plataa/triagedash/pkg/cache"
	dbbuilder "github.com/plataa/triagedash/pkg/database"
	grpcsrv "github.com/plataa/triagedash/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *http.Server
	httpLis    net.Listener
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithSchema(repository.Schema...),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	// The cache is optional: without redis every read goes straight to
	// the source.
	var (
		cacheClient *cache.Cache
		cacheStore  cache.Store
	)
	if cfg.CacheEnabled() {
		cacheClient, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
		)
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			cacheClient = nil
		} else {
			cacheStore = cacheClient
			logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
		}
	}

	m := metrics.New()

	sess := session.New()
	if cfg.UpstreamToken != "" {
		sess.Login(cfg.UpstreamToken, session.Profile{Role: session.RoleSpecialist})
		logger.Info("session seeded from UPSTREAM_TOKEN")
	}

	client := upstream.New(nil, sess, upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
	}, logger)

	regionRepo := repository.NewRegionStatsRepository(dbPool)
	if stats, err := regionRepo.ListRegionStats(ctx); err == nil {
		m.SetRegionRows(len(stats))
	}

	dashboardService := service.NewDashboardService(client, sess, logger)
	regionService := service.NewRegionService(client, regionRepo, logger)

	store := dashboard.NewStore(dashboardService, m, logger)
	mapLoader := dashboard.NewMapLoader(regionService, client, cfg.GeoBoundaryURL, cacheStore, cfg.CacheTTL, logger)

	grpcHandlers := handler.NewGRPCHandlers(handler.Deps{
		Dashboard: dashboardService,
		Regions:   regionService,
		Store:     store,
		Maps:      mapLoader,
		Imports:   m,
		Cache:     cacheStore,
	}, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithMetrics(m),
	)
	if err != nil {
		_ = dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterDashboardServer(s, grpcHandlers)
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Dashboard: store,
		Maps:      mapLoader,
		Regions:   regionService,
		Metrics:   m.Handler(),
		Charts:    m,
	}, logger)

	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = grpcServer.Shutdown(ctx)
		_ = dbPool.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddr, err)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		httpLis: httpLis,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve runs both servers until ctx is done or the HTTP server fails,
// then shuts everything down.
func (a *App) Serve(ctx context.Context) error {
	a.logger.Info("application starting",
		zap.String("grpc_addr", a.grpcServer.Addr().String()),
		zap.String("http_addr", a.httpLis.Addr().String()))

	a.grpcServer.Start()

	httpErr := make(chan error, 1)
	go func() {
		if err := a.httpServer.Serve(a.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
		close(httpErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-httpErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("grpc shutdown error", zap.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")
	_ = a.logger.Sync()
	return runErr
}

// GRPCAddr is the address the gRPC server listens on.
func (a *App) GRPCAddr() net.Addr {
	return a.grpcServer.Addr()
}

// HTTPAddr is the address the HTTP server listens on.
func (a *App) HTTPAddr() net.Addr {
	return a.httpLis.Addr()
}
