// Package metrics exposes compiler run counters for Prometheus.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Translation outcomes
const (
	ResultSuccess         = "success"
	ResultValidationError = "validation_error"
	ResultGenerationError = "generation_error"
	ResultFileSystemError = "filesystem_error"
)

// File outcomes of a save
const (
	FileWritten   = "written"
	FileUnchanged = "unchanged"
)

// CompilerMetrics contains all Prometheus metrics for the intent compiler
type CompilerMetrics struct {
	registry *prometheus.Registry

	// Translation metrics
	Translations *prometheus.CounterVec

	// Resource metrics
	ResourcesGenerated *prometheus.CounterVec
	TargetSites        prometheus.Gauge

	// Persistence metrics
	Files *prometheus.CounterVec

	// Non-fatal findings
	Diagnostics *prometheus.CounterVec
}

// NewCompilerMetrics registers the compiler metrics on a private registry
func NewCompilerMetrics() *CompilerMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &CompilerMetrics{
		registry: registry,

		Translations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intent_compiler_translations_total",
				Help: "Total number of intent translations by result",
			},
			[]string{"result"},
		),

		ResourcesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intent_compiler_resources_generated_total",
				Help: "Total number of KRM resources generated",
			},
			[]string{"site", "kind"},
		),

		TargetSites: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "intent_compiler_target_sites",
				Help: "Number of sites targeted by the last translation",
			},
		),

		Files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intent_compiler_files_total",
				Help: "Total number of output files by write outcome",
			},
			[]string{"outcome"},
		),

		Diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intent_compiler_diagnostics_total",
				Help: "Total number of non-fatal diagnostics by code",
			},
			[]string{"code"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *CompilerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile exports the current values in the node_exporter textfile
// format.
func (m *CompilerMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// WriteText encodes the current values in the text exposition format
func (m *CompilerMetrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
