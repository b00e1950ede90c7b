package output

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

// RunMetrics collects the counters of one pipeline run on a private registry.
//
// A batch run has no scrape endpoint, so the registry is exported once at
// the end: to a node-exporter textfile, to a Pushgateway, or both.
type RunMetrics struct {
	registry *prometheus.Registry

	linesRead      prometheus.Counter
	recordsParsed  prometheus.Counter
	linesSkipped   prometheus.Counter
	stageErrors    *prometheus.CounterVec
	failedLoginIPs prometheus.Gauge
	threatEntries  prometheus.Gauge
	matchedThreats prometheus.Gauge
	runDuration    prometheus.Gauge
	lastRun        prometheus.Gauge
}

// MetricsExportConfig selects where Export sends the metrics. Empty fields disable a target.
type MetricsExportConfig struct {
	Textfile       string
	PushgatewayURL string
	Job            string
	Instance       string // grouping label, usually the host name
}

func NewRunMetrics(namespace string) *RunMetrics {
	if namespace == "" {
		namespace = "logintel"
	}

	m := &RunMetrics{registry: prometheus.NewRegistry()}

	m.linesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_read_total",
		Help:      "Total number of log lines read",
	})

	m.recordsParsed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_parsed_total",
		Help:      "Total number of log lines parsed into records",
	})

	m.linesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_skipped_total",
		Help:      "Total number of log lines that did not match the access log format",
	})

	m.stageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_errors_total",
		Help:      "Total contained stage failures by stage",
	}, []string{"stage"})

	m.failedLoginIPs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "failed_login_ips",
		Help:      "Number of IPs at or above the failed login threshold",
	})

	m.threatEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "threat_entries",
		Help:      "Number of entries in the fetched threat map",
	})

	m.matchedThreats = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "matched_threats",
		Help:      "Number of log records whose IP is in the threat map",
	})

	m.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run",
	})

	m.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})

	m.registry.MustRegister(
		m.linesRead, m.recordsParsed, m.linesSkipped, m.stageErrors,
		m.failedLoginIPs, m.threatEntries, m.matchedThreats,
		m.runDuration, m.lastRun,
	)

	return m
}

func (m *RunMetrics) ObserveParse(linesRead, recordsParsed int) {
	m.linesRead.Add(float64(linesRead))
	m.recordsParsed.Add(float64(recordsParsed))
	if skipped := linesRead - recordsParsed; skipped > 0 {
		m.linesSkipped.Add(float64(skipped))
	}
}

func (m *RunMetrics) ObserveStageError(stage string) {
	m.stageErrors.WithLabelValues(stage).Inc()
}

func (m *RunMetrics) ObserveOutcome(failedIPs, threatEntries, matchedThreats int) {
	m.failedLoginIPs.Set(float64(failedIPs))
	m.threatEntries.Set(float64(threatEntries))
	m.matchedThreats.Set(float64(matchedThreats))
}

// ObserveRunEnd records the duration and completion time of the run.
func (m *RunMetrics) ObserveRunEnd(duration time.Duration, finished time.Time) {
	m.runDuration.Set(duration.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry in text exposition format.
// The file is replaced atomically.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Push replaces the job's metrics on the Pushgateway.
func (m *RunMetrics) Push(ctx context.Context, url, job string, grouping map[string]string) error {
	pusher := push.New(url, job).Gatherer(m.registry)
	for name, value := range grouping {
		pusher = pusher.Grouping(name, value)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

// Export sends the metrics to every configured target. Failures are logged
// and never affect the run result.
func (m *RunMetrics) Export(ctx context.Context, config MetricsExportConfig) {
	if config.Textfile != "" {
		if err := m.WriteTextfile(config.Textfile); err != nil {
			log.Error().Err(err).Msg("Failed to write metrics textfile")
		} else {
			log.Debug().Str("file", config.Textfile).Msg("Metrics textfile written")
		}
	}

	if config.PushgatewayURL != "" {
		job := config.Job
		if job == "" {
			job = "logintel"
		}
		var grouping map[string]string
		if config.Instance != "" {
			grouping = map[string]string{"instance": config.Instance}
		}
		if err := m.Push(ctx, config.PushgatewayURL, job, grouping); err != nil {
			log.Error().Err(err).Msg("Failed to push metrics")
		} else {
			log.Debug().Str("url", config.PushgatewayURL).Str("job", job).Msg("Metrics pushed")
		}
	}
}
