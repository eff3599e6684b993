// Package metrics records compiler runs in a private Prometheus registry
// and writes them in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pdlgen"

// Recorder owns one registry. The zero value is not usable; call New.
type Recorder struct {
	registry *prometheus.Registry

	compiles      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	domains       prometheus.Gauge
	types         prometheus.Gauge
	commands      prometheus.Gauge
	events        prometheus.Gauge
	warnings      prometheus.Gauge
}

// New returns a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		compiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compiles_total",
				Help:      "Compiler runs by result.",
			},
			[]string{"result"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "duration_seconds",
				Help:      "Pipeline stage duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		stageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "errors_total",
				Help:      "Pipeline stage failures.",
			},
			[]string{"stage"},
		),
		domains:  gauge("domains", "Domains in the last compiled protocol."),
		types:    gauge("types", "Types in the last compiled protocol."),
		commands: gauge("commands", "Commands in the last compiled protocol."),
		events:   gauge("events", "Events in the last compiled protocol."),
		warnings: gauge("warnings", "Warnings reported by the last run."),
	}
	r.registry.MustRegister(r.compiles, r.stageDuration, r.stageErrors,
		r.domains, r.types, r.commands, r.events, r.warnings)
	return r
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "protocol",
		Name:      name,
		Help:      help,
	})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveStage has the signature of a compiler stage hook.
func (r *Recorder) ObserveStage(stage string, d time.Duration, err error) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		r.stageErrors.WithLabelValues(stage).Inc()
	}
}

// Counts summarizes one compiled protocol.
type Counts struct {
	Domains, Types, Commands, Events, Warnings int
}

// RecordCompile counts a run; c is ignored when err is non-nil.
func (r *Recorder) RecordCompile(c Counts, err error) {
	if err != nil {
		r.compiles.WithLabelValues("failure").Inc()
		return
	}
	r.compiles.WithLabelValues("success").Inc()
	r.domains.Set(float64(c.Domains))
	r.types.Set(float64(c.Types))
	r.commands.Set(float64(c.Commands))
	r.events.Set(float64(c.Events))
	r.warnings.Set(float64(c.Warnings))
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
