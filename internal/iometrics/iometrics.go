// Package iometrics collects Prometheus metrics of builds and exports
// them in the text exposition format, ready for the node exporter
// textfile collector.
package iometrics

import (
	"time"

	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability of the build pipeline.
// Every instance has its own registry, so builds in one process
// do not share global state.
type Metrics struct {
	reg *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SourceRecords   *prometheus.GaugeVec
	SourceStatus    *prometheus.GaugeVec
	Builds          *prometheus.CounterVec
	Countries       prometheus.Gauge
	BuildDuration   prometheus.Gauge
	LastSuccess     prometheus.Gauge
}

// New creates a Metrics instance with all build metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "factbook_source_requests_total",
			Help: "HTTP requests to data sources by outcome",
		}, []string{"source", "outcome"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factbook_source_request_duration_seconds",
			Help:    "Duration of HTTP requests to data sources",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"source"}),
		SourceRecords: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "factbook_source_records",
			Help: "Records returned by a data source in the last build",
		}, []string{"source"}),
		SourceStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "factbook_source_status",
			Help: "Status of a data source in the last build (1 for the current status)",
		}, []string{"source", "status"}),
		Builds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "factbook_builds_total",
			Help: "Finished builds by final state",
		}, []string{"state"}),
		Countries: f.NewGauge(prometheus.GaugeOpts{
			Name: "factbook_countries",
			Help: "Countries written by the last build",
		}),
		BuildDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "factbook_build_duration_seconds",
			Help: "Duration of the last build",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "factbook_last_success_timestamp_seconds",
			Help: "Unix time of the last successful build",
		}),
	}
}

// Registry returns the registry of the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObserveRequest records the outcome of one HTTP call.
func (m *Metrics) ObserveRequest(
	src pipeline.SourceID,
	outcome string,
	dur time.Duration,
) {
	m.Requests.WithLabelValues(string(src), outcome).Inc()
	m.RequestDuration.WithLabelValues(string(src)).Observe(dur.Seconds())
}

var statuses = []pipeline.Status{
	pipeline.StatusOK,
	pipeline.StatusDegraded,
	pipeline.StatusUnavailable,
}

// ObserveReport records the outcome of a build.
func (m *Metrics) ObserveReport(r *pipeline.Report) {
	m.Builds.WithLabelValues(r.State.String()).Inc()
	m.BuildDuration.Set(r.FinishedAt.Sub(r.StartedAt).Seconds())

	for _, s := range r.Sources {
		src := string(s.Source)
		m.SourceRecords.WithLabelValues(src).Set(float64(s.Records))
		for _, st := range statuses {
			var v float64
			if st == s.Status {
				v = 1
			}
			m.SourceStatus.WithLabelValues(src, string(st)).Set(v)
		}
	}

	if r.Succeeded() {
		m.Countries.Set(float64(r.Countries))
		m.LastSuccess.Set(float64(r.FinishedAt.Unix()))
	}
}

// WriteFile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return WriteError(path, err)
	}
	return nil
}
