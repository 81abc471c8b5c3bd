// Package metrics exposes Prometheus metrics for comment validation and
// audits.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacesedan/storyguard/internal/models"
)

var (
	// ConfidenceBuckets follow the decision thresholds (0.1 accept, 0.3
	// flag, 0.5 no-keyword default).
	ConfidenceBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1.0}

	HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5}
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailOpen = "fail_open"
)

type Metrics struct {
	// ValidationsTotal counts validations by outcome and call site.
	ValidationsTotal *prometheus.CounterVec

	// Confidence tracks the confidence of every scored comment.
	Confidence prometheus.Histogram

	AuditRunsTotal prometheus.Counter

	// AuditFlaggedRatio is the flagged share of the last audit run.
	AuditFlaggedRatio prometheus.Gauge

	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storyguard_comment_validations_total",
				Help: "Total comment validations",
			},
			[]string{"outcome", "path"},
		),
		Confidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storyguard_comment_confidence",
				Help:    "Relevance confidence of validated comments",
				Buckets: ConfidenceBuckets,
			},
		),
		AuditRunsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "storyguard_audit_runs_total",
				Help: "Total comment audit runs",
			},
		),
		AuditFlaggedRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "storyguard_audit_flagged_ratio",
				Help: "Share of flagged comments in the most recent audit (0-1)",
			},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storyguard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: HTTPLatencyBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(
		m.ValidationsTotal,
		m.Confidence,
		m.AuditRunsTotal,
		m.AuditFlaggedRatio,
		m.HTTPRequestDuration,
	)

	for _, path := range []models.ValidationPath{models.ValidationPathSubmission, models.ValidationPathRelevance, models.ValidationPathStream} {
		m.ValidationsTotal.WithLabelValues(OutcomeAccepted, string(path))
		m.ValidationsTotal.WithLabelValues(OutcomeRejected, string(path))
	}

	return m
}

func (m *Metrics) ObserveValidation(path models.ValidationPath, result models.ValidationResult, failOpen bool) {
	outcome := OutcomeRejected
	switch {
	case failOpen:
		outcome = OutcomeFailOpen
	case result.IsValid:
		outcome = OutcomeAccepted
	}
	m.ValidationsTotal.WithLabelValues(outcome, string(path)).Inc()
	if !failOpen {
		m.Confidence.Observe(result.Confidence)
	}
}

func (m *Metrics) ObserveAudit(summary models.AuditSummary) {
	m.AuditRunsTotal.Inc()
	m.AuditFlaggedRatio.Set(summary.FlaggedPercentage / 100)
}

// GinMiddleware records request durations by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
