package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type observerSpy struct {
	mu    sync.Mutex
	calls []string
}

func (o *observerSpy) ObserveRPC(method, code string, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, method+":"+code)
}

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/triagedash.v1.Dashboard/GetDashboard"}

func TestLoggingInterceptor(t *testing.T) {
	interceptor := LoggingInterceptor(zaptest.NewLogger(t))

	t.Run("successful request", func(t *testing.T) {
		ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}})
		ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("x-request-id", "abc"))

		resp, err := interceptor(ctx, "req", testInfo, func(ctx context.Context, req any) (any, error) {
			return "success", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	})

	t.Run("error request", func(t *testing.T) {
		_, err := interceptor(context.Background(), "req", testInfo, func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.InvalidArgument, "test error")
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestMetricsInterceptor(t *testing.T) {
	spy := &observerSpy{}
	interceptor := MetricsInterceptor(spy)

	_, _ = interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	_, _ = interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})

	assert.Equal(t, []string{"GetDashboard:OK", "GetDashboard:Unavailable"}, spy.calls)
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))

	resp, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestNew_InvalidPort(t *testing.T) {
	_, err := New(WithPort(70000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestServerBuilderWithLogging(t *testing.T) {
	spy := &observerSpy{}
	server, err := New(
		WithPort(0),
		WithLogger(zaptest.NewLogger(t)),
		WithLogging(true),
		WithMetrics(spy),
	)
	require.NoError(t, err)
	defer func() {
		if err := server.Shutdown(context.Background()); err != nil {
			t.Logf("Server shutdown error: %v", err)
		}
	}()

	require.NotNil(t, server.grpcServer)
	require.NotNil(t, server.health)

	server.Start()

	conn, err := grpc.NewClient(fmt.Sprintf("localhost:%d", server.Addr().(*net.TCPAddr).Port), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	spy.mu.Lock()
	defer spy.mu.Unlock()
	assert.Equal(t, []string{"Check:OK"}, spy.calls)
}

func TestShutdownReportsServicesNotServing(t *testing.T) {
	server, err := New(WithPort(0))
	require.NoError(t, err)

	server.RegisterServiceWithHealth("triagedash.v1.Dashboard", func(*grpc.Server) {})
	server.Start()

	ctx := context.Background()
	req := &healthpb.HealthCheckRequest{Service: "triagedash.v1.Dashboard"}
	resp, err := server.health.Check(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	require.NoError(t, server.Shutdown(ctx))

	resp, err = server.health.Check(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	resp, err = server.health.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
