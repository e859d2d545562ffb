package metrics

import (
	"net/http"

	"github.com/mrlokans/airspace/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "airspace_publisher"

// Metrics exposes pipeline run statistics on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	targetsTotal  *prometheus.CounterVec
	features      prometheus.Gauge
	payloadBytes  prometheus.Gauge
	lastSuccessTS prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Pipeline runs by final status and failed stage",
	}, []string{"status", "stage"})
	m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a pipeline run",
		Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300},
	})
	m.targetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publish_targets_total",
		Help:      "Per-target publish outcomes",
	}, []string{"directory", "status"})
	m.features = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "airspaces",
		Help:      "Number of airspace features produced by the last conversion",
	})
	m.payloadBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "payload_bytes",
		Help:      "Size of the last published GeoJSON payload",
	})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last fully successful run",
	})

	m.registry.MustRegister(
		m.runsTotal, m.runDuration, m.targetsTotal,
		m.features, m.payloadBytes, m.lastSuccessTS,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(summary *pipeline.Summary, err error) {
	if summary == nil {
		return
	}

	m.runsTotal.WithLabelValues(string(summary.Status), string(summary.FailedAt)).Inc()
	if !summary.FinishedAt.IsZero() {
		m.runDuration.Observe(summary.Duration().Seconds())
	}

	if summary.FailedAt != pipeline.StageFetch && summary.FailedAt != pipeline.StageConvert {
		m.features.Set(float64(summary.Features))
	}

	if summary.Publish != nil {
		m.payloadBytes.Set(float64(summary.Publish.PayloadBytes))
		for _, t := range summary.Publish.Targets {
			m.targetsTotal.WithLabelValues(t.Target.Directory, string(t.Status)).Inc()
		}
	}

	if summary.Status == pipeline.StatusSuccess {
		m.lastSuccessTS.Set(float64(summary.FinishedAt.Unix()))
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
