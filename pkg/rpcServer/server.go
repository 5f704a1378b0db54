// Package rpcServer exposes the gatekeeper over gRPC health checks and an HTTP JSON gateway.
package rpcServer

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Layr-Labs/txguard/internal/metrics"
	"github.com/Layr-Labs/txguard/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/txguard/pkg/addressBook"
	"github.com/Layr-Labs/txguard/pkg/gatekeeper"
	"github.com/Layr-Labs/txguard/pkg/verdictStore"
	"github.com/ethereum/go-ethereum/common"
	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_zap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_ctxtags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const maxRequestBodyBytes = 1 << 20

type VerdictReader interface {
	GetVerdictById(id string) (*verdictStore.Verdict, error)
	ListVerdictsForSender(sender common.Address, chainId uint64, limit int) ([]*verdictStore.Verdict, error)
}

type RpcServerConfig struct {
	GrpcPort       int
	HttpPort       int
	AllowedOrigins []string
}

type RpcServer struct {
	Logger      *zap.Logger
	config      *RpcServerConfig
	gatekeeper  *gatekeeper.Gatekeeper
	addressBook addressBook.AddressBook
	// nil when persistence is disabled
	verdicts     VerdictReader
	metricsSink  *metrics.MetricsSink
	healthServer *health.Server
	grpcServer   *grpc.Server
	mux          *runtime.ServeMux
}

func NewRpcServer(
	cfg *RpcServerConfig,
	gk *gatekeeper.Gatekeeper,
	book addressBook.AddressBook,
	verdicts VerdictReader,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) (*RpcServer, error) {
	server := &RpcServer{
		Logger:       l,
		config:       cfg,
		gatekeeper:   gk,
		addressBook:  book,
		verdicts:     verdicts,
		metricsSink:  ms,
		healthServer: health.NewServer(),
		mux:          runtime.NewServeMux(),
	}

	server.grpcServer = grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpc_ctxtags.UnaryServerInterceptor(),
			grpc_zap.UnaryServerInterceptor(l),
			grpc_recovery.UnaryServerInterceptor(),
		)),
		grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
			grpc_ctxtags.StreamServerInterceptor(),
			grpc_zap.StreamServerInterceptor(l),
			grpc_recovery.StreamServerInterceptor(),
		)),
	)
	grpc_health_v1.RegisterHealthServer(server.grpcServer, server.healthServer)
	server.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	if err := server.registerRoutes(); err != nil {
		l.Sugar().Errorw("Failed to register http routes", zap.Error(err))
		return nil, err
	}
	return server, nil
}

func (rpc *RpcServer) registerRoutes() error {
	routes := []struct {
		method  string
		pattern string
		handler handlerFunc
	}{
		{http.MethodPost, "/v1/decode", rpc.Decode},
		{http.MethodPost, "/v1/validate", rpc.Validate},
		{http.MethodPost, "/v1/simulation/validate", rpc.ValidateSimulation},
		{http.MethodPost, "/v1/authorize", rpc.Authorize},
		{http.MethodGet, "/v1/verdicts", rpc.ListVerdicts},
		{http.MethodGet, "/v1/verdicts/{id}", rpc.GetVerdict},
		{http.MethodGet, "/v1/chains", rpc.ListChains},
		{http.MethodGet, "/v1/health", rpc.Health},
	}
	for _, route := range routes {
		if err := rpc.mux.HandlePath(route.method, route.pattern, rpc.wrap(route.pattern, route.handler)); err != nil {
			return errors.Wrapf(err, "failed to register %s %s", route.method, route.pattern)
		}
	}
	return nil
}

// HttpHandler is the gateway mux wrapped with CORS.
func (rpc *RpcServer) HttpHandler() http.Handler {
	origins := rpc.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(rpc.mux)
}

func (rpc *RpcServer) GrpcServer() *grpc.Server {
	return rpc.grpcServer
}

// Start serves gRPC and HTTP until a value arrives on gracefulShutdown.
func (rpc *RpcServer) Start(gracefulShutdown chan bool) error {
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", rpc.config.GrpcPort))
	if err != nil {
		return errors.Wrapf(err, "failed to listen on grpc port %d", rpc.config.GrpcPort)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", rpc.config.HttpPort),
		Handler:           rpc.HttpHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		rpc.Logger.Sugar().Infow("Starting grpc server", zap.Int("port", rpc.config.GrpcPort))
		if err := rpc.grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			rpc.Logger.Sugar().Errorw("grpc server stopped", zap.Error(err))
		}
	}()
	go func() {
		rpc.Logger.Sugar().Infow("Starting http server", zap.Int("port", rpc.config.HttpPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rpc.Logger.Sugar().Errorw("http server stopped", zap.Error(err))
		}
	}()
	go func() {
		for range gracefulShutdown {
			rpc.Logger.Sugar().Info("Shutting down rpc servers")
			rpc.healthServer.Shutdown()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := httpServer.Shutdown(ctx); err != nil {
				rpc.Logger.Sugar().Errorw("Failed to shutdown http server", zap.Error(err))
			}
			cancel()
			rpc.grpcServer.GracefulStop()
			return
		}
	}()
	return nil
}

func (rpc *RpcServer) recordRequest(pattern string, status int, duration time.Duration) {
	_ = rpc.metricsSink.Incr(metricsTypes.Metric_Incr_HttpRequest, []metricsTypes.MetricsLabel{
		{Name: "path", Value: pattern},
		{Name: "status", Value: strconv.Itoa(status)},
	}, 1)
	_ = rpc.metricsSink.Timing(metricsTypes.Metric_Timing_HttpDuration, duration, []metricsTypes.MetricsLabel{
		{Name: "path", Value: pattern},
	})
}
