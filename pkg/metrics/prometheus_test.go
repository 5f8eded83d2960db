package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreIndependentPerInstance(t *testing.T) {
	a := NewCompilerMetrics()
	b := NewCompilerMetrics()

	a.Translations.WithLabelValues(ResultSuccess).Inc()
	a.Files.WithLabelValues(FileWritten).Add(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Translations.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 4.0, testutil.ToFloat64(a.Files.WithLabelValues(FileWritten)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Translations.WithLabelValues(ResultSuccess)))
}

func TestWriteTextfile(t *testing.T) {
	m := NewCompilerMetrics()
	m.ResourcesGenerated.WithLabelValues("edge1", "ConfigMap").Inc()
	m.TargetSites.Set(2)

	path := filepath.Join(t.TempDir(), "intent_compiler.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `intent_compiler_resources_generated_total{kind="ConfigMap",site="edge1"} 1`)
	assert.Contains(t, string(data), "intent_compiler_target_sites 2")

	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}

func TestWriteTextSkipsUnobservedVectors(t *testing.T) {
	m := NewCompilerMetrics()
	m.Diagnostics.WithLabelValues("UNKNOWN_SERVICE_TYPE").Inc()

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, `intent_compiler_diagnostics_total{code="UNKNOWN_SERVICE_TYPE"} 1`)
	assert.Contains(t, out, "intent_compiler_target_sites 0")
	assert.NotContains(t, out, "intent_compiler_files_total")
}
