package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/spacesedan/storyguard/config"
	"github.com/spacesedan/storyguard/internal/api"
	"github.com/spacesedan/storyguard/internal/audit"
	"github.com/spacesedan/storyguard/internal/clients"
	"github.com/spacesedan/storyguard/internal/db"
	"github.com/spacesedan/storyguard/internal/logging"
	"github.com/spacesedan/storyguard/internal/metrics"
	"github.com/spacesedan/storyguard/internal/moderation"
	"github.com/spacesedan/storyguard/internal/monitoring"
	"github.com/spacesedan/storyguard/internal/validationlog"
)

func main() {
	env := config.AppEnv()
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		slog.Error("[Main] Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := []moderation.Option{
		moderation.WithMetrics(m),
		moderation.WithAuditRunner(audit.NewRunner(cfg.Audit.FlagThreshold, cfg.Audit.Workers)),
		moderation.WithPageLimit(cfg.Audit.PageLimit),
	}
	deps := map[string]*atomic.Bool{}

	validationLog, osClient, err := validationlog.FromConfig(ctx, env, cfg.OpenSearch)
	if err != nil {
		slog.Error("[Main] Validation log unavailable, continuing without it",
			slog.String("error", err.Error()))
	}
	logDone := make(chan struct{})
	if validationLog != nil {
		opts = append(opts, moderation.WithRecorder(validationLog))
		go func() {
			validationLog.Run(ctx)
			close(logDone)
		}()

		opensearchHealthy := &atomic.Bool{}
		deps["opensearch"] = opensearchHealthy
		go monitoring.MonitorDependency(ctx, "opensearch", monitoring.HEALTHCHECK_INTERVAL,
			func(ctx context.Context) bool { return clients.IsOpensearchHealthy(ctx, osClient) },
			opensearchHealthy)
	} else {
		close(logDone)
	}

	service := moderation.NewService(store, opts...)

	if env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		Handler:      api.NewHandler(service),
		Metrics:      m,
		Gatherer:     reg,
		Dependencies: deps,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("[Main] HTTP server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] HTTP server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] HTTP shutdown failed", slog.String("error", err.Error()))
	}
	<-logDone
}
