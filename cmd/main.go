package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/UnknownOlympus/nearby/internal/config"
	"github.com/UnknownOlympus/nearby/internal/geocoding"
	"github.com/UnknownOlympus/nearby/internal/location"
	"github.com/UnknownOlympus/nearby/internal/metrics"
	"github.com/UnknownOlympus/nearby/internal/models"
	"github.com/UnknownOlympus/nearby/internal/render"
	"github.com/UnknownOlympus/nearby/internal/repository"
	"github.com/UnknownOlympus/nearby/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const (
	// defaultHistoryLimit is the number of searches returned by /history without a limit parameter.
	defaultHistoryLimit = 20
	// googleRateLimit is the request budget per second for the Google provider.
	googleRateLimit = 10
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// The search history is optional and only enabled when a database host is configured.
	var (
		dtb     *pgxpool.Pool
		repo    *repository.Repository
		history repository.Interface
	)
	if cfg.Database.Enabled() {
		var err error
		dtb, err = repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()

		repo = repository.NewRepository(dtb, logger)
		if err = repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare search history: %v", err)
		}
		history = repo
		logger.InfoContext(ctx, "Search history enabled", "host", cfg.Database.Host)
	}

	// Create search provider using factory pattern based on configuration
	providerConfig := geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.ProviderType),
		APIKey:    cfg.APIKey,
		RateLimit: googleRateLimit,
		Logger:    logger,
	}

	searchProvider, err := geocoding.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create search provider: %v", err)
	}
	logger.InfoContext(ctx, "Search provider initialized", "type", cfg.ProviderType)

	positionProvider, err := location.NewPositionProvider(
		location.SourceType(cfg.Location.Source),
		models.GeoPoint{Latitude: cfg.Location.Latitude, Longitude: cfg.Location.Longitude},
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create position provider: %v", err)
	}

	permissions := location.NewConsentPermission(cfg.Location.Consent, isTerminal(os.Stdin), os.Stdin, os.Stderr, logger)
	acquirer := location.NewAcquirer(logger, permissions, positionProvider, location.DefaultPositionOptions())

	nearbyService := service.NewNearbyService(
		logger,
		acquirer,
		searchProvider,
		cfg.ProviderType, // Provider name for metrics
		appMetrics,
		history,
	)

	nearbyService.Start(ctx)

	if err = render.Text(os.Stdout, render.Build(nearbyService.State())); err != nil {
		logger.ErrorContext(ctx, "Failed to render screen", "error", err)
	}

	if !cfg.Serve {
		return
	}

	server := newMonitoringServer(ctx, logger, reg, dtb, repo, nearbyService, cfg.Port)
	go func() {
		logger.InfoContext(ctx, "Starting monitoring server", "port", cfg.Port)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Monitoring server failed", "error", errServe)
		}
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "Monitoring server shutdown failed", "error", err)
	}

	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
}

// isTerminal reports whether f is attached to a character device, so a consent prompt can be answered.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// newMonitoringServer builds an HTTP server that provides health, metrics and screen state endpoints.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - dtb: A pgxpool connector for database methods (ping), nil when history is disabled.
// - repo: The search history repository, nil when history is disabled.
// - svc: The service holding the screen state.
// - port: The port number on which the server will listen.
func newMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	repo *repository.Repository,
	svc *service.NearbyService,
	port int,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if dtb != nil {
			if err := dtb.Ping(req.Context()); err != nil {
				status, body = http.StatusServiceUnavailable, "DB ping failed"
			}
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/state", func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(ctx, log, writer, render.Build(svc.State()))
	})
	if repo != nil {
		mux.HandleFunc("/history", func(writer http.ResponseWriter, req *http.Request) {
			limit := defaultHistoryLimit
			if raw := req.URL.Query().Get("limit"); raw != "" {
				parsed, err := strconv.Atoi(raw)
				if err != nil || parsed <= 0 {
					http.Error(writer, "invalid limit", http.StatusBadRequest)
					return
				}
				limit = parsed
			}

			records, err := repo.RecentSearches(req.Context(), limit)
			if err != nil {
				log.ErrorContext(ctx, "Failed to load search history", "error", err)
				http.Error(writer, "history unavailable", http.StatusServiceUnavailable)
				return
			}
			writeJSON(ctx, log, writer, records)
		})
	}

	readTimeout := 5
	writeTimeout := 10
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
}

func writeJSON(ctx context.Context, log *slog.Logger, writer http.ResponseWriter, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
// Logs go to stderr because stdout carries the rendered screen.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
