package worker

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

// RuntimeConfig controls syncworker startup, dependencies, and loop
// behavior.
type RuntimeConfig struct {
	Port         int
	DBPath       string
	BaseURL      string
	PollInterval time.Duration
	SinceDays    int
	MaxMatches   int
}

const (
	defaultWorkerPort = 8090
	defaultWorkerDB   = "data/tracker.db"
)

// Run starts syncworker runtime dependencies and the background sync loop.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultWorkerPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultWorkerDB
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create tracker storage dir: %w", err)
		}
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open tracker sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close tracker sqlite store: %v", closeErr)
		}
	}()

	client := deadlock.New(deadlock.Config{BaseURL: cfg.BaseURL})
	syncWorker := New(client, store, Config{
		PollInterval: cfg.PollInterval,
		SinceDays:    cfg.SinceDays,
		MaxMatches:   cfg.MaxMatches,
	}, log.Default())

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on syncworker port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("syncworker.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("syncworker health server listening at %v", listener.Addr())
	return syncWorker.Run(ctx)
}
