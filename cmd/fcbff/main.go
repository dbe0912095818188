package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/config"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/handler"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/cache"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/credentials"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/fincore"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/resilience"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("backend_url", cfg.BackendURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("scan_timeout", cfg.ScanTimeout),
		zap.Duration("reference_ttl", cfg.ReferenceTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_scan_uploads", cfg.MaxScanUploads),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "fc-webapp-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	referenceCache := cache.New[any](cfg.ReferenceTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("fincore")
	scanBulkhead := resilience.NewBulkhead(cfg.MaxScanUploads)

	// --- Credentials ---
	if cfg.BackendToken == "" {
		logger.Warn("BACKEND_TOKEN not set, backend calls will be unauthenticated")
	}
	tokens := credentials.NewStaticProvider(cfg.BackendToken, logger)

	// --- Backend clients ---
	// Scans run through the backend OCR model and need a longer timeout
	// than ordinary API calls.
	apiClient := fincore.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.BackendURL, tokens, cb, resilienceCfg, logger)
	scanClient := fincore.NewClient(&http.Client{Timeout: cfg.ScanTimeout}, cfg.BackendURL, tokens, cb, resilienceCfg, logger)

	// --- Services ---
	refSvc := service.NewReferenceService(apiClient, referenceCache, metrics, logger)
	entrySvc := service.NewEntryService(apiClient, refSvc, metrics, logger)
	receiptSvc := service.NewReceiptService(apiClient, scanClient, scanBulkhead, metrics, logger)
	adminSvc := service.NewAdminService(apiClient, apiClient, refSvc, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(refSvc, entrySvc, receiptSvc, adminSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
