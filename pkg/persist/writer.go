// Package persist writes compiled resources to an output directory, touching
// only files whose content changed.
package persist

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-logr/logr"
	"sigs.k8s.io/kustomize/kyaml/filesys"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/canonical"
	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/krm"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/manifest"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/security"
)

// Options configures a Writer
type Options struct {
	OutputDir string
	// EnableCaching skips writes whose content hash matches the file on disk
	EnableCaching bool
	// FileSystem defaults to the real disk
	FileSystem filesys.FileSystem
	Logger     logr.Logger
}

// Writer persists resources and manifests. It does not lock the output
// directory; callers serialize writers sharing one.
type Writer struct {
	fs            filesys.FileSystem
	outputDir     string
	enableCaching bool
	log           logr.Logger
}

// Report lists what a Save call did, paths relative to the output directory
type Report struct {
	Written      []string
	Unchanged    []string
	ManifestPath string
}

// NewWriter creates a writer from opts
func NewWriter(opts Options) *Writer {
	fs := opts.FileSystem
	if fs == nil {
		fs = filesys.MakeFsOnDisk()
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Writer{
		fs:            fs,
		outputDir:     opts.OutputDir,
		enableCaching: opts.EnableCaching,
		log:           log,
	}
}

// OutputDir returns the directory the writer targets
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// Save writes every resource to {outputDir}/{site}/{filename} and then the
// manifest to {outputDir}/manifest.json.
func (w *Writer) Save(resources []krm.Resource, m *manifest.Manifest) (*Report, error) {
	report := &Report{}

	if err := w.fs.MkdirAll(w.outputDir); err != nil {
		return nil, cerrors.NewFileSystemError("create directory", w.outputDir, err)
	}

	ordered := append([]krm.Resource(nil), resources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return manifest.RelativePath(ordered[i]) < manifest.RelativePath(ordered[j])
	})

	created := map[string]bool{}
	for _, r := range ordered {
		target, err := security.SecureJoinPath(w.outputDir, r.Site, r.Filename)
		if err != nil {
			return nil, cerrors.NewFileSystemError("write", r.ID(), err)
		}
		dir := filepath.Dir(target)
		if !created[dir] {
			if err := w.fs.MkdirAll(dir); err != nil {
				return nil, cerrors.NewFileSystemError("create directory", dir, err)
			}
			created[dir] = true
		}

		data, err := r.YAML()
		if err != nil {
			return nil, cerrors.NewResourceGenerationError("persist",
				fmt.Sprintf("cannot serialize %s", r.ID()), err)
		}
		if err := w.record(report, manifest.RelativePath(r), target, data); err != nil {
			return nil, err
		}
	}

	data, err := m.JSON()
	if err != nil {
		return nil, cerrors.NewResourceGenerationError("persist", "cannot encode manifest", err)
	}
	manifestPath := filepath.Join(w.outputDir, manifest.Filename)
	if err := w.record(report, manifest.Filename, manifestPath, data); err != nil {
		return nil, err
	}
	report.ManifestPath = manifestPath
	return report, nil
}

func (w *Writer) record(report *Report, rel, path string, data []byte) error {
	written, err := w.WriteIfChanged(path, data)
	if err != nil {
		return err
	}
	if written {
		report.Written = append(report.Written, rel)
	} else {
		report.Unchanged = append(report.Unchanged, rel)
	}
	return nil
}

// WriteIfChanged writes data to path unless caching is enabled and the file
// already holds content with the same hash. It reports whether it wrote.
func (w *Writer) WriteIfChanged(path string, data []byte) (bool, error) {
	if w.fs.IsDir(path) {
		return false, cerrors.NewFileSystemError("write", path, fmt.Errorf("path is a directory"))
	}

	if w.enableCaching && w.fs.Exists(path) {
		existing, err := w.fs.ReadFile(path)
		if err != nil {
			return false, cerrors.NewFileSystemError("read", path, err)
		}
		if canonical.Checksum(existing) == canonical.Checksum(data) {
			w.log.V(1).Info("Unchanged, skipping write", "path", path)
			return false, nil
		}
	}

	if err := w.fs.WriteFile(path, data); err != nil {
		return false, cerrors.NewFileSystemError("write", path, err)
	}
	w.log.V(1).Info("Wrote file", "path", path, "bytes", len(data))
	return true, nil
}
