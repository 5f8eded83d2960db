package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{"edge1", "edge2", "both"}, r.Targets())
	assert.True(t, r.IsValidTarget("both"))
	assert.False(t, r.IsValidTarget("edge3"))
}

func TestDeriveSite(t *testing.T) {
	s := DeriveSite("edge2", 2)

	assert.Equal(t, "edge-cluster-02", s.ClusterID)
	assert.Equal(t, "edge2", s.Namespace)
	assert.Equal(t, PLMN{MCC: "001", MNC: "02"}, s.PLMN)
	assert.Equal(t, "00102", s.PLMN.ID())
	assert.Equal(t, "00002", s.GNBID)
	assert.Equal(t, "0002", s.TAC)
}

func TestResolve(t *testing.T) {
	r := Default()

	tests := []struct {
		target string
		want   []string
	}{
		{"edge1", []string{"edge1"}},
		{"edge2", []string{"edge2"}},
		{"both", []string{"edge1", "edge2"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			resolved, err := r.Resolve(tt.target)
			require.NoError(t, err)

			var names []string
			for _, s := range resolved {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestResolveExplicitAliasKeepsMemberOrder(t *testing.T) {
	r, err := NewRegistry(
		[]Site{{Name: "edge1"}, {Name: "edge2"}, {Name: "edge3"}},
		map[string][]string{"pair": {"edge3", "edge1"}, "all": nil},
	)
	require.NoError(t, err)

	resolved, err := r.Resolve("pair")
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "edge3", resolved[0].Name)
	assert.Equal(t, 3, resolved[0].Index)
	assert.Equal(t, "edge1", resolved[1].Name)

	all, err := r.Resolve("all")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestResolveDanglingAliasIsGenerationError(t *testing.T) {
	r, err := NewRegistry(
		[]Site{{Name: "edge1"}},
		map[string][]string{"both": {"edge1", "edge2"}},
	)
	require.NoError(t, err)
	require.True(t, r.IsValidTarget("both"))

	_, err = r.Resolve("both")
	require.Error(t, err)
	assert.True(t, cerrors.IsResourceGeneration(err))
	assert.Contains(t, err.Error(), "edge2")

	_, err = r.Resolve("nowhere")
	assert.True(t, cerrors.IsResourceGeneration(err))
}

func TestNewRegistryKeepsExplicitSiteData(t *testing.T) {
	r, err := NewRegistry([]Site{{Name: "edge7", Index: 7, ClusterID: "lab-cluster", PLMN: PLMN{MCC: "999"}}}, nil)
	require.NoError(t, err)

	s, ok := r.Lookup("edge7")
	require.True(t, ok)
	assert.Equal(t, "lab-cluster", s.ClusterID)
	assert.Equal(t, PLMN{MCC: "999", MNC: "07"}, s.PLMN)
	assert.Equal(t, "00007", s.GNBID)
}

func TestNewRegistryRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		sites   []Site
		aliases map[string][]string
	}{
		{"empty", nil, nil},
		{"duplicate site", []Site{{Name: "edge1"}, {Name: "edge1"}}, nil},
		{"invalid name", []Site{{Name: "Edge_1"}}, nil},
		{"alias shadows site", []Site{{Name: "edge1"}}, map[string][]string{"edge1": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.sites, tt.aliases)
			assert.Error(t, err)
		})
	}
}
