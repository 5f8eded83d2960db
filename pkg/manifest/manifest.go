// Package manifest computes resource checksums and the run manifest.
package manifest

import (
	"fmt"
	"path"
	"sort"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/canonical"
	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/krm"
)

// Filename is the manifest's fixed name inside the output directory
const Filename = "manifest.json"

// Manifest records everything one compilation produced
type Manifest struct {
	IntentID          string               `json:"intentId"`
	Timestamp         string               `json:"timestamp"`
	ChecksumAlgorithm string               `json:"checksumAlgorithm"`
	TargetSites       []string             `json:"targetSites"`
	ResourceCounts    map[string]int       `json:"resourceCounts"`
	GeneratedFiles    map[string]FileEntry `json:"generatedFiles"`
	Summary           Summary              `json:"summary"`
}

// FileEntry describes one generated file, keyed by its path relative to
// the output directory.
type FileEntry struct {
	Checksum     string `json:"checksum"`
	SizeBytes    int    `json:"sizeBytes"`
	ResourceKind string `json:"resourceKind"`
	ResourceID   string `json:"resourceId"`
}

type Summary struct {
	TotalFiles     int `json:"totalFiles"`
	TotalSites     int `json:"totalSites"`
	TotalResources int `json:"totalResources"`
}

// RelativePath is where a resource lives below the output directory
func RelativePath(r krm.Resource) string {
	return path.Join(r.Site, r.Filename)
}

// Checksums maps each resource identity "{site}/{kind}/{name}" to the
// SHA-256 of its canonical YAML.
func Checksums(resources []krm.Resource) (map[string]string, error) {
	out := make(map[string]string, len(resources))
	for _, r := range resources {
		data, err := r.YAML()
		if err != nil {
			return nil, cerrors.NewResourceGenerationError("manifest",
				fmt.Sprintf("cannot serialize %s", r.ID()), err)
		}
		if _, dup := out[r.ID()]; dup {
			return nil, cerrors.NewResourceGenerationError("manifest",
				fmt.Sprintf("duplicate resource %s", r.ID()), nil)
		}
		out[r.ID()] = canonical.Checksum(data)
	}
	return out, nil
}

// Build assembles the manifest from in-memory resources. It reads no clock
// and touches no filesystem: timestamp is supplied by the caller.
func Build(intentID, timestamp string, targetSites []string, resources []krm.Resource) (*Manifest, error) {
	m := &Manifest{
		IntentID:          intentID,
		Timestamp:         timestamp,
		ChecksumAlgorithm: canonical.Algorithm,
		TargetSites:       append([]string{}, targetSites...),
		ResourceCounts:    make(map[string]int, len(targetSites)),
		GeneratedFiles:    make(map[string]FileEntry, len(resources)),
	}
	for _, s := range targetSites {
		m.ResourceCounts[s] = 0
	}

	ids := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		if _, ok := m.ResourceCounts[r.Site]; !ok {
			return nil, cerrors.NewResourceGenerationError("manifest",
				fmt.Sprintf("resource %s belongs to site %s which is not a target", r.ID(), r.Site), nil)
		}
		if _, dup := ids[r.ID()]; dup {
			return nil, cerrors.NewResourceGenerationError("manifest",
				fmt.Sprintf("duplicate resource %s", r.ID()), nil)
		}
		ids[r.ID()] = struct{}{}

		rel := RelativePath(r)
		if _, dup := m.GeneratedFiles[rel]; dup {
			return nil, cerrors.NewResourceGenerationError("manifest",
				fmt.Sprintf("two resources map to file %s", rel), nil)
		}

		data, err := r.YAML()
		if err != nil {
			return nil, cerrors.NewResourceGenerationError("manifest",
				fmt.Sprintf("cannot serialize %s", r.ID()), err)
		}
		m.GeneratedFiles[rel] = FileEntry{
			Checksum:     canonical.Checksum(data),
			SizeBytes:    len(data),
			ResourceKind: string(r.Kind),
			ResourceID:   r.ID(),
		}
		m.ResourceCounts[r.Site]++
	}

	m.Summary = Summary{
		TotalFiles:     len(m.GeneratedFiles),
		TotalSites:     len(m.TargetSites),
		TotalResources: len(resources),
	}
	return m, nil
}

// JSON returns the canonical encoding written to manifest.json
func (m *Manifest) JSON() ([]byte, error) {
	data, err := canonical.JSON(m)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Paths lists the generated file paths in sorted order
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.GeneratedFiles))
	for p := range m.GeneratedFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
