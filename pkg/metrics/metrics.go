// Package metrics tracks sorer row and phase statistics with Prometheus
// collectors.
//
// All collectors live in Registry rather than the default registry, so a
// library user can expose or ignore them without clashing with their own.
//
//	metrics.ObserveInference(inferStats)
//	metrics.ObserveBuild(buildStats, inputBytes)
//	metrics.WriteText(os.Stderr)
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/schema"
)

// Phase label values
const (
	PhaseLoad   = "load"
	PhaseInfer  = "infer"
	PhaseBuild  = "build"
	PhaseExport = "export"
)

// Drop reason label values
const (
	ReasonWidth     = "width"
	ReasonType      = "type"
	ReasonMalformed = "malformed"
	ReasonEmpty     = "empty"
)

// Registry holds every sorer collector
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// RowsScanned counts rows tokenized, per phase
	RowsScanned = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sorer_rows_scanned_total",
			Help: "Total number of rows tokenized",
		},
		[]string{"phase"},
	)

	// RowsAccepted counts rows stored in columns
	RowsAccepted = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "sorer_rows_accepted_total",
			Help: "Total number of rows stored in columns",
		},
	)

	// RowsDropped counts rows rejected by the builder, per reason
	RowsDropped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sorer_rows_dropped_total",
			Help: "Total number of rows rejected during column building",
		},
		[]string{"reason"},
	)

	// BytesProcessed counts input bytes handed to the builder
	BytesProcessed = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "sorer_bytes_processed_total",
			Help: "Total number of input bytes built into columns",
		},
	)

	// SchemaWidth is the width of the last inferred schema
	SchemaWidth = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "sorer_schema_width",
			Help: "Number of columns in the last inferred schema",
		},
	)

	// PhaseDuration tracks how long each phase takes
	PhaseDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sorer_phase_duration_seconds",
			Help:    "Duration of sorer processing phases",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs .. ~26s
		},
		[]string{"phase"},
	)
)

// ObserveInference records one inference pass
func ObserveInference(stats schema.Stats) {
	RowsScanned.WithLabelValues(PhaseInfer).Add(float64(stats.RowsSampled))
	SchemaWidth.Set(float64(stats.Width))
	PhaseDuration.WithLabelValues(PhaseInfer).Observe(stats.Duration.Seconds())
}

// ObserveBuild records one build over bytes input bytes
func ObserveBuild(stats columnar.BuildStats, bytes int) {
	RowsScanned.WithLabelValues(PhaseBuild).Add(float64(stats.RowsScanned))
	RowsAccepted.Add(float64(stats.RowsAccepted))
	RowsDropped.WithLabelValues(ReasonWidth).Add(float64(stats.DroppedWidth))
	RowsDropped.WithLabelValues(ReasonType).Add(float64(stats.DroppedType))
	RowsDropped.WithLabelValues(ReasonMalformed).Add(float64(stats.DroppedMalformed))
	RowsDropped.WithLabelValues(ReasonEmpty).Add(float64(stats.EmptyRows))
	BytesProcessed.Add(float64(bytes))
	PhaseDuration.WithLabelValues(PhaseBuild).Observe(stats.Duration.Seconds())
}

// Timer measures a phase and records it in PhaseDuration
type Timer struct {
	start time.Time
	phase string
}

// NewTimer starts timing phase
func NewTimer(phase string) *Timer {
	return &Timer{start: time.Now(), phase: phase}
}

// Stop records and returns the elapsed time. Each call records again.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	PhaseDuration.WithLabelValues(t.phase).Observe(d.Seconds())
	return d
}

// WriteText writes every collector in the Prometheus text exposition format
func WriteText(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
