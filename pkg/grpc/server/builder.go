// Package server builds the gRPC server shared by every transport of the
// dashboard: recovery, optional metrics and access logging, the standard
// health service and optional reflection.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

type Option func(*config)

type config struct {
	port       int
	logger     *zap.Logger
	reflection bool
	logCalls   bool
	observer   RPCObserver
}

// WithPort sets the TCP port. 0 picks a free one; see Server.Addr.
func WithPort(port int) Option {
	return func(c *config) { c.port = port }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func WithReflection(enabled bool) Option {
	return func(c *config) { c.reflection = enabled }
}

// WithLogging logs every unary call with its code and latency.
func WithLogging(enabled bool) Option {
	return func(c *config) { c.logCalls = enabled }
}

// WithMetrics reports every unary call to observer.
func WithMetrics(observer RPCObserver) Option {
	return func(c *config) { c.observer = observer }
}

type Server struct {
	grpcServer *grpc.Server
	lis        net.Listener
	logger     *zap.Logger
	health     *health.Server

	mu       sync.Mutex
	services []string
}

// New listens on the configured port and assembles the interceptor chain.
// Recovery always runs outermost so a panic still gets counted and logged.
func New(opts ...Option) (*Server, error) {
	cfg := config{port: defaultPort}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if cfg.port < 0 || cfg.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", cfg.port)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.port, err)
	}

	chain := []grpc.UnaryServerInterceptor{RecoveryInterceptor(cfg.logger)}
	if cfg.observer != nil {
		chain = append(chain, MetricsInterceptor(cfg.observer))
	}
	if cfg.logCalls {
		chain = append(chain, LoggingInterceptor(cfg.logger))
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	if cfg.reflection {
		reflection.Register(grpcServer)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer: grpcServer,
		lis:        lis,
		logger:     cfg.logger.Named("grpc-server"),
		health:     hs,
	}, nil
}

// RegisterServiceWithHealth registers a service and reports it SERVING
// until Shutdown.
func (s *Server) RegisterServiceWithHealth(serviceName string, register func(*grpc.Server)) {
	register(s.grpcServer)
	if serviceName == "" {
		return
	}

	s.mu.Lock()
	s.services = append(s.services, serviceName)
	s.mu.Unlock()

	s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("registered service with health check", zap.String("service", serviceName))
}

// Start serves in the background and returns immediately.
func (s *Server) Start() {
	s.logger.Info("gRPC server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
}

// Shutdown reports every service NOT_SERVING, then drains in-flight calls.
// When ctx ends first the remaining calls are cut off.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")

	s.mu.Lock()
	services := append([]string{""}, s.services...)
	s.mu.Unlock()
	for _, name := range services {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

// Addr returns the listening address, useful with WithPort(0).
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
