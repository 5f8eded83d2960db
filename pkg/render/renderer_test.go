package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/kustomize/kyaml/filesys"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/intent"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/krm"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/sites"
)

func writeSite(t *testing.T, fs filesys.FileSystem, doc string) {
	t.Helper()
	registry := sites.Default()
	in, err := intent.Parse([]byte(doc), registry)
	require.NoError(t, err)
	site, _ := registry.Lookup("edge1")

	resources, _, err := krm.NewGenerator("2025-01-01T00:00:00Z").GenerateSite(in, site)
	require.NoError(t, err)

	require.NoError(t, fs.MkdirAll("/out/edge1"))
	for _, r := range resources {
		data, err := r.YAML()
		require.NoError(t, err)
		require.NoError(t, fs.WriteFile("/out/edge1/"+r.Filename, data))
	}
}

func TestVerifyBuildsGeneratedSite(t *testing.T) {
	fs := filesys.MakeFsInMemory()
	writeSite(t, fs, `{"intentId": "abc", "targetSite": "edge1", "sla": {"latency": 5}}`)

	results, err := NewRenderer(fs).Verify("/out", []string{"edge1"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.True(t, result.Success)
	assert.True(t, result.ValidationResult.Valid)
	assert.Equal(t, 3, result.ValidationResult.Summary.TotalResources)
	require.Len(t, result.Resources, 3)

	kinds := map[string]RenderedResource{}
	for _, r := range result.Resources {
		kinds[r.Kind] = r
		assert.Equal(t, "edge1", r.Namespace)
		assert.Len(t, r.Checksum, 64)
	}
	assert.Equal(t, "abc-edge1", kinds["ProvisioningRequest"].Name)
	assert.Equal(t, "intent-abc-edge1", kinds["ConfigMap"].Name)
	assert.Equal(t, "slice-abc-edge1", kinds["NetworkSlice"].Name)
}

func TestValidateFilesFlagsMissingHeader(t *testing.T) {
	fs := filesys.MakeFsInMemory()
	writeSite(t, fs, `{"intentId": "abc", "targetSite": "edge1"}`)
	require.NoError(t, fs.WriteFile("/out/edge1/stray.yaml", []byte("kind: Thing\nmetadata: {}\n")))

	result, err := ValidateFiles(fs, "/out/edge1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, 1, result.Summary.InvalidResources)
	assert.Equal(t, 2, result.Summary.ErrorCount)
	assert.Equal(t, "stray.yaml", result.Errors[0].File)

	rendered, err := NewRenderer(fs).RenderSite("/out/edge1")
	assert.Error(t, err)
	assert.False(t, rendered.Success)
}

func TestRenderSiteReportsKustomizeFailure(t *testing.T) {
	fs := filesys.MakeFsInMemory()
	writeSite(t, fs, `{"intentId": "abc", "targetSite": "edge1"}`)
	require.NoError(t, fs.RemoveAll("/out/edge1/abc-edge1-provisioning-request.yaml"))

	result, err := NewRenderer(fs).RenderSite("/out/edge1")
	require.Error(t, err)
	assert.NotEmpty(t, result.Errors)
}

func TestVerifyMissingSite(t *testing.T) {
	_, err := NewRenderer(filesys.MakeFsInMemory()).Verify("/out", []string{"edge9"})
	assert.Error(t, err)
}
