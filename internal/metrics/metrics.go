package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
	"github.com/botifyai2-sketch/buildmon/internal/drift"
	"github.com/botifyai2-sketch/buildmon/internal/history"
)

// Metrics holds all Prometheus metrics for buildmon
type Metrics struct {
	// Per-run build metrics
	BuildAttempts *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	BuildErrors   *prometheus.CounterVec

	// History-derived gauges, recomputed before every export
	HistoryBuilds       *prometheus.GaugeVec
	SuccessRate         prometheus.Gauge
	AverageDuration     prometheus.Gauge
	LastBuildSuccess    prometheus.Gauge
	LastBuildTimestamp  prometheus.Gauge
	LastSuccessfulBuild prometheus.Gauge

	// Drift and alert gauges
	DriftChanges *prometheus.GaugeVec
	ActiveAlerts *prometheus.GaugeVec
	AlertsRaised *prometheus.CounterVec

	// Health score
	HealthScore prometheus.Gauge

	// Type check metrics
	TypeCheckDuration    prometheus.Histogram
	TypeCheckDiagnostics prometheus.Gauge

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		BuildAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildmon_build_attempts_total",
				Help: "Build attempts recorded by this run",
			},
			[]string{"phase", "success"},
		),
		BuildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildmon_build_duration_seconds",
				Help:    "Build duration in seconds",
				Buckets: []float64{10, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"phase"},
		),
		BuildErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildmon_build_errors_total",
				Help: "Error messages attached to recorded builds",
			},
			[]string{"phase"},
		),

		HistoryBuilds: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "buildmon_history_builds",
				Help: "Builds retained in the history by outcome",
			},
			[]string{"result"},
		),
		SuccessRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buildmon_history_success_rate",
			Help: "Fraction of retained builds that succeeded",
		}),
		AverageDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buildmon_history_average_duration_seconds",
			Help: "Mean duration of retained timed builds in seconds",
		}),
		LastBuildSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buildmon_last_build_success",
			Help: "1 if the most recent build succeeded, 0 otherwise",
		}),
		LastBuildTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buildmon_last_build_timestamp_seconds",
			Help: "Unix time of the most recent build",
		}),
		LastSuccessfulBuild: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buildmon_last_successful_build_timestamp_seconds",
			Help: "Unix time of the most recent successful build",
		}),

		DriftChanges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "buildmon_drift_changes",
				Help: "Configuration changes since the last successful build by severity",
			},
			[]string{"severity"},
		),
		ActiveAlerts: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "buildmon_active_alerts",
				Help: "Active alerts by severity",
			},
			[]string{"severity"},
		),
		AlertsRaised: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildmon_alerts_raised_total",
				Help: "Alerts raised by this run",
			},
			[]string{"type", "severity"},
		),

		HealthScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buildmon_health_score",
			Help: "Composite build health score (0-100)",
		}),

		TypeCheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "buildmon_typecheck_duration_seconds",
			Help:    "TypeScript type check duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		TypeCheckDiagnostics: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buildmon_typecheck_diagnostics",
			Help: "Diagnostics reported by the last type check",
		}),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildmon_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code"},
		),
	}
}

// ObserveBuild records one build attempt
func (m *Metrics) ObserveBuild(r domain.BuildRecord) {
	phase := string(r.Phase)
	if phase == "" {
		phase = string(domain.PhaseUnknown)
	}
	m.BuildAttempts.WithLabelValues(phase, strconv.FormatBool(r.Success)).Inc()
	if r.Duration > 0 {
		m.BuildDuration.WithLabelValues(phase).Observe(r.DurationValue().Seconds())
	}
	if len(r.Errors) > 0 {
		m.BuildErrors.WithLabelValues(phase).Add(float64(len(r.Errors)))
	}
}

// ObserveHistory sets the history-derived gauges
func (m *Metrics) ObserveHistory(h *history.History) {
	if h == nil {
		return
	}
	stats := h.Statistics
	m.HistoryBuilds.WithLabelValues("success").Set(float64(stats.SuccessfulBuilds))
	m.HistoryBuilds.WithLabelValues("failure").Set(float64(stats.FailedBuilds))
	m.SuccessRate.Set(stats.SuccessRate)
	m.AverageDuration.Set(stats.AverageDuration / 1000)

	if stats.LastSuccessfulBuild != nil {
		m.LastSuccessfulBuild.Set(float64(stats.LastSuccessfulBuild.Unix()))
	}
	if latest, ok := h.Latest(); ok {
		m.LastBuildTimestamp.Set(float64(latest.Timestamp.Unix()))
		if latest.Success {
			m.LastBuildSuccess.Set(1)
		} else {
			m.LastBuildSuccess.Set(0)
		}
	}
}

// ObserveDrift sets the drift gauges from a report
func (m *Metrics) ObserveDrift(r *drift.Report) {
	var s drift.Summary
	if r != nil {
		s = r.Summary()
	}
	m.DriftChanges.WithLabelValues(domain.SeverityHigh.String()).Set(float64(s.High))
	m.DriftChanges.WithLabelValues(domain.SeverityMedium.String()).Set(float64(s.Medium))
	m.DriftChanges.WithLabelValues(domain.SeverityLow.String()).Set(float64(s.Low))
}

// ObserveAlerts sets the active alert gauges
func (m *Metrics) ObserveAlerts(counts map[domain.Severity]int) {
	for _, sev := range []domain.Severity{domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow} {
		m.ActiveAlerts.WithLabelValues(sev.String()).Set(float64(counts[sev]))
	}
}

// AlertRaised counts a newly raised alert
func (m *Metrics) AlertRaised(kind string, sev domain.Severity) {
	m.AlertsRaised.WithLabelValues(kind, sev.String()).Inc()
}

// ObserveError counts an error by code
func (m *Metrics) ObserveError(code string) {
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(code).Inc()
}
