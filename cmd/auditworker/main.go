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
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/storyguard/config"
	"github.com/spacesedan/storyguard/internal/audit"
	"github.com/spacesedan/storyguard/internal/clients"
	"github.com/spacesedan/storyguard/internal/clients/kafka_client"
	"github.com/spacesedan/storyguard/internal/consumers"
	"github.com/spacesedan/storyguard/internal/logging"
	"github.com/spacesedan/storyguard/internal/metrics"
)

func main() {
	env := config.AppEnv()
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var producer *kafka_client.Producer
	for {
		var err error
		producer, err = kafka_client.NewProducer(cfg.Kafka, "storyguard-auditworker-"+uuid.NewString())
		if err == nil {
			break
		}
		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	var tracker consumers.ProcessedTracker
	valkey, err := clients.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("[Main] Valkey unavailable, duplicate requests will be re-audited",
			slog.String("error", err.Error()))
	} else {
		defer valkey.Close()
		tracker = valkey
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	consumerHealthy := &atomic.Bool{}
	go serveOps(ctx, cfg.HTTPAddr, reg, consumerHealthy)

	runner := audit.NewRunner(cfg.Audit.FlagThreshold, cfg.Audit.Workers)
	requestConsumer := consumers.NewAuditRequestConsumer(runner, producer, tracker, m, cfg.Kafka.ResultsTopic)

	kafka_client.RegisterConsumer(cfg.Kafka.RequestTopic,
		consumers.WrapConsumer(requestConsumer.Start).WithHealthCheck(consumerHealthy).Handler())

	if err := kafka_client.StartConsumer(ctx, cfg.Kafka); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// serveOps exposes /healthz and /metrics for the worker.
func serveOps(ctx context.Context, addr string, reg *prometheus.Registry, healthy *atomic.Bool) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/healthz", func(c *gin.Context) {
		if !healthy.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "consumer not running"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("[Main] Ops server failed", slog.String("error", err.Error()))
	}
}
