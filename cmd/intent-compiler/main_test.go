package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const embbIntent = `{
  "intentId": "embb-001",
  "serviceType": "enhanced-mobile-broadband",
  "targetSite": "edge1",
  "sla": {"availability": 99.99, "latency": 10, "throughput": 1000}
}`

func fixedNow() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func writeIntent(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intent.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOG_LEVEL", "INTENT_COMPILER_OUTPUT_DIR", "INTENT_COMPILER_ENABLE_CACHING",
		"INTENT_COMPILER_VERIFY", "INTENT_COMPILER_CATALOG", "INTENT_COMPILER_DEFAULT_SLICE_TYPE",
		"SOURCE_DATE_EPOCH", "INTENT_COMPILER_METRICS_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")
}

func TestRunWritesSitePackages(t *testing.T) {
	clearEnv(t)
	out := filepath.Join(t.TempDir(), "krm")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-o", out, writeIntent(t, embbIntent)}, &stdout, &stderr, fixedNow)
	require.Equal(t, exitOK, code, stderr.String())

	for _, name := range []string{
		"manifest.json",
		"edge1/kustomization.yaml",
		"edge1/embb-001-edge1-provisioning-request.yaml",
		"edge1/intent-embb-001-edge1-config-map.yaml",
		"edge1/slice-embb-001-edge1-network-slice.yaml",
	} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.Contains(t, stdout.String(), "Generated 4 resources for 1 sites (5 written, 0 unchanged)")

	stdout.Reset()
	code = run([]string{"--output", out, writeIntent(t, embbIntent)}, &stdout, &stderr, fixedNow)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "(0 written, 5 unchanged)")
}

func TestRunDryRunWritesNothing(t *testing.T) {
	clearEnv(t)
	out := filepath.Join(t.TempDir(), "krm")
	var stdout, stderr bytes.Buffer

	code := run([]string{"--dry-run", "-o", out, writeIntent(t, embbIntent)}, &stdout, &stderr, fixedNow)
	require.Equal(t, exitOK, code, stderr.String())

	assert.NoDirExists(t, out)
	assert.Contains(t, stdout.String(), "# edge1/slice-embb-001-edge1-network-slice.yaml")
	assert.Contains(t, stdout.String(), "kind: ProvisioningRequest")
	assert.Contains(t, stdout.String(), "edge1/NetworkSlice/slice-embb-001-edge1: ")
}

func TestRunChecksumsOnlyIsSortedAndStable(t *testing.T) {
	clearEnv(t)
	intentPath := writeIntent(t, strings.Replace(embbIntent, `"edge1"`, `"both"`, 1))

	var first, second, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"--checksums-only", intentPath}, &first, &stderr, fixedNow))
	require.Equal(t, exitOK, run([]string{"--checksums-only", intentPath}, &second, &stderr, fixedNow))

	assert.Equal(t, first.String(), second.String())

	lines := strings.Split(strings.TrimSpace(first.String()), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "edge1/ConfigMap/intent-embb-001-edge1: "))
	assert.True(t, strings.HasPrefix(lines[7], "edge2/ProvisioningRequest/embb-001-edge2: "))
}

func TestRunRejectsInvalidIntent(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--dry-run", writeIntent(t, `{"serviceType": "x"}`)}, &stdout, &stderr, fixedNow)
	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout.String())
}

func TestRunUsageErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no intent", nil},
		{"two intents", []string{"a.json", "b.json"}},
		{"unknown flag", []string{"--bogus", "a.json"}},
		{"bad timestamp", []string{"--timestamp", "yesterday", "a.json"}},
		{"catalog extension", []string{"--catalog", "sites.json", "a.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, exitUsage, run(tt.args, &stdout, &stderr, fixedNow))
		})
	}
}

func TestRunWritesMetricsTextfile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "compiler.prom")
	var stdout, stderr bytes.Buffer

	code := run([]string{
		"--dry-run",
		"--metrics-file", metricsFile,
		"--timestamp", "2025-01-01T00:00:00Z",
		writeIntent(t, embbIntent),
	}, &stdout, &stderr, fixedNow)
	require.Equal(t, exitOK, code, stderr.String())

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "intent_compiler_translations_total")
}

func TestRunHonoursSourceDateEpoch(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	out := filepath.Join(t.TempDir(), "krm")
	intentPath := writeIntent(t, embbIntent)
	var stdout, stderr bytes.Buffer

	require.Equal(t, exitOK, run([]string{"-o", out, intentPath}, &stdout, &stderr, time.Now))

	data, err := os.ReadFile(filepath.Join(out, "manifest.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp": "2023-11-14T22:13:20Z"`)
}
