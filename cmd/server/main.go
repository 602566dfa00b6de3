// Package main provides the panchanga API HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go.ngs.io/panchanga-api/internal/app"
	"go.ngs.io/panchanga-api/internal/config"
	httpHandler "go.ngs.io/panchanga-api/internal/http"
	"go.ngs.io/panchanga-api/internal/logging"
	"go.ngs.io/panchanga-api/internal/observability"
)

const version = "0.1.0"

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", os.Getenv("PANCHANGA_CONFIG"), "Path to YAML configuration file")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("panchanga-api version %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		log.Fatal("failed to listen", zap.String("port", cfg.Server.Port), zap.Error(err))
	}

	if err := run(ctx, cfg, log, lis); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

// run serves the API on lis until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, lis net.Listener) error {
	log.Info("starting panchanga API server",
		zap.String("version", version),
		zap.String("addr", lis.Addr().String()),
		zap.String("ephemeris", cfg.Ephemeris.Source))

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	var collector *observability.Collector
	if cfg.Metrics.Enabled {
		collector, err = observability.NewCollector(prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	svc, err := app.NewService(cfg, log, collector)
	if err != nil {
		return err
	}

	router := httpHandler.SetupRouter(svc, httpHandler.RouterOptions{
		Server:  cfg.Server,
		Logger:  log,
		Metrics: collector,
	})

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()
	log.Info("server listening",
		zap.String("addr", lis.Addr().String()),
		zap.String("source", svc.Source()),
		zap.String("rules_version", svc.RuleTable().Version()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Panchanga API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  panchanga-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -config PATH   YAML configuration file (default: $PANCHANGA_CONFIG)")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                         Server port (default: 8080)")
	fmt.Println("  CORS_ALLOWED_ORIGINS         Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  REQUEST_TIMEOUT              Per-request calculation timeout (default: 30s)")
	fmt.Println("  EPHEMERIS_SOURCE             analytic, netcdf or csv (default: analytic)")
	fmt.Println("  EPHEMERIS_PATH               Table file for netcdf and csv sources")
	fmt.Println("  AYANAMSA                     lahiri, fagan_bradley or raman (default: lahiri)")
	fmt.Println("  NODE_MODE                    true or mean lunar node (default: true)")
	fmt.Println("  YOGA_RULES_PATH              Yoga rule table YAML (default: built-in table)")
	fmt.Println("  LOG_LEVEL                    debug, info, warn, error (default: info)")
	fmt.Println("  LOG_FORMAT                   json or console (default: json)")
	fmt.Println("  TRACING_ENABLED              Enable OpenTelemetry tracing (default: false)")
	fmt.Println("  TRACING_EXPORTER             stdout or otlp (default: stdout)")
	fmt.Println("  OTLP_ENDPOINT                OTLP gRPC endpoint (default: localhost:4317)")
	fmt.Println("  METRICS_ENABLED              Serve Prometheus metrics (default: true)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  panchanga-api")
	fmt.Println()
	fmt.Println("  # Serve from a NetCDF table on a custom port")
	fmt.Println("  PORT=3000 EPHEMERIS_SOURCE=netcdf EPHEMERIS_PATH=./data/ephemeris.nc panchanga-api")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                   Health check")
	fmt.Println("  GET /metrics                  Prometheus metrics (if enabled)")
	fmt.Println("  GET /v1/panchanga             Panchanga elements at an instant")
	fmt.Println("  GET /v1/panchanga/windows     Element transitions over a civil day")
	fmt.Println("  GET /v1/positions             Sidereal body positions")
	fmt.Println("  GET /v1/motion                Motion states")
	fmt.Println("  GET /v1/motion/stations       Retrograde and direct stations")
	fmt.Println("  GET /v1/yogas                 Yogas active at an instant")
	fmt.Println("  GET /v1/yogas/range           Yogas per civil day over a range")
	fmt.Println("  GET /v1/yogas/rules           Loaded yoga rule table")
	fmt.Println("  GET /v1/navatara              Tara cycle of a birth nakshatra")
	fmt.Println()
}
