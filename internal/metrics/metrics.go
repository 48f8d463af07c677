// Package metrics provides Prometheus metrics for fill runs.
//
// A CLI run is short-lived, so nothing is scraped. The registry is written
// once at the end of the run to a node-exporter textfile when a path is
// configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FillMetrics holds the counters of one run.
type FillMetrics struct {
	registry *prometheus.Registry

	// ItemsRead counts the material items extracted from the table.
	ItemsRead prometheus.Counter

	// RowsDropped counts table entries dropped for non-numeric values.
	RowsDropped prometheus.Counter

	// ItemsPlaced counts items written to the sheet, per section.
	ItemsPlaced *prometheus.CounterVec

	// ItemsSkipped counts items that found no free row, per section.
	ItemsSkipped *prometheus.CounterVec

	// RunsTotal counts runs by outcome.
	RunsTotal *prometheus.CounterVec

	// RunDuration is the wall time of the last run.
	RunDuration prometheus.Gauge

	// LastRunTimestamp is the completion time of the last run.
	LastRunTimestamp prometheus.Gauge
}

// New creates the run metrics on a fresh registry.
func New() *FillMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &FillMetrics{
		registry: registry,
		ItemsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "bomfill_items_read_total",
			Help: "Total number of material items read from the table",
		}),
		RowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "bomfill_rows_dropped_total",
			Help: "Total number of table entries dropped for invalid numbers",
		}),
		ItemsPlaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bomfill_items_placed_total",
				Help: "Total number of items written to the takeoff sheet",
			},
			[]string{"section"},
		),
		ItemsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bomfill_items_skipped_total",
				Help: "Total number of items with no free row left in their section",
			},
			[]string{"section"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bomfill_runs_total",
				Help: "Total number of fill runs",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bomfill_run_duration_seconds",
			Help: "Duration of the last fill run",
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bomfill_last_run_timestamp_seconds",
			Help: "Unix time at which the last fill run finished",
		}),
	}
}

// RecordPlaced records one item written to section.
func (m *FillMetrics) RecordPlaced(section string) {
	m.ItemsPlaced.WithLabelValues(section).Inc()
}

// RecordSkipped records one item that could not be placed in section.
func (m *FillMetrics) RecordSkipped(section string) {
	m.ItemsSkipped.WithLabelValues(section).Inc()
}

// RecordRun records the outcome and duration of a run.
func (m *FillMetrics) RecordRun(status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Set(duration.Seconds())
	m.LastRunTimestamp.SetToCurrentTime()
}

// WriteTextfile writes the registry in the text exposition format, for the
// node exporter textfile collector. The write is atomic.
func (m *FillMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
