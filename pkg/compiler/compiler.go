// Package compiler turns an intent document into per-site KRM resources and
// a manifest, and persists them idempotently.
package compiler

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/kustomize/kyaml/filesys"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/catalog"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/diag"
	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/intent"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/krm"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/manifest"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/metrics"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/persist"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/render"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/security"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/sites"
)

// DefaultOutputDir is where resources land when no directory is configured
const DefaultOutputDir = "rendered/krm"

// Options configures a Compiler
type Options struct {
	OutputDir string
	// Timestamp is recorded in the manifest and ProvisioningRequest
	// annotations. The compiler never reads the clock; the zero value
	// stands for the Unix epoch.
	Timestamp     time.Time
	EnableCaching bool
	// Catalog defaults to the built in two-site registry when nil
	Catalog    *catalog.Resolved
	FileSystem filesys.FileSystem
	Logger     logr.Logger
	Metrics    *metrics.CompilerMetrics
}

// Compiler translates intents. A Compiler holds no per-call state and may
// be reused; concurrent Save calls must target distinct output directories.
type Compiler struct {
	registry  *sites.Registry
	generator *krm.Generator
	writer    *persist.Writer
	renderer  *render.Renderer
	timestamp string
	log       logr.Logger
	metrics   *metrics.CompilerMetrics
}

// Result is everything one translation produced, in registry order
type Result struct {
	Intent      *intent.Intent
	Sites       []sites.Site
	Resources   map[string][]krm.Resource
	Diagnostics diag.List
	Manifest    *manifest.Manifest
}

// New creates a compiler from opts
func New(opts Options) (*Compiler, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if err := security.ValidateOutputDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	resolved := opts.Catalog
	if resolved == nil {
		var err error
		if resolved, err = (&catalog.Catalog{}).Resolve(""); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewCompilerMetrics()
	}
	fs := opts.FileSystem
	if fs == nil {
		fs = filesys.MakeFsOnDisk()
	}

	timestamp := opts.Timestamp.UTC().Format(time.RFC3339)
	if opts.Timestamp.IsZero() {
		timestamp = time.Unix(0, 0).UTC().Format(time.RFC3339)
	}

	return &Compiler{
		registry: resolved.Registry,
		generator: &krm.Generator{
			Profiles:   resolved.Profiles,
			SliceTypes: resolved.SliceTypes,
			Timestamp:  timestamp,
		},
		writer: persist.NewWriter(persist.Options{
			OutputDir:     opts.OutputDir,
			EnableCaching: opts.EnableCaching,
			FileSystem:    fs,
			Logger:        log.WithName("persist"),
		}),
		renderer:  render.NewRenderer(fs),
		timestamp: timestamp,
		log:       log,
		metrics:   m,
	}, nil
}

// Registry returns the site registry targets are resolved against
func (c *Compiler) Registry() *sites.Registry {
	return c.registry
}

// Timestamp returns the formatted timestamp stamped into the output
func (c *Compiler) Timestamp() string {
	return c.timestamp
}

// Metrics returns the metrics the compiler records into
func (c *Compiler) Metrics() *metrics.CompilerMetrics {
	return c.metrics
}

// Translate loads the intent at path and generates its resources
func (c *Compiler) Translate(path string) (*Result, error) {
	if err := security.ValidateFilePath(path); err != nil {
		err = cerrors.NewFileSystemError("read intent file", security.SanitizeForLog(path), err)
		c.recordFailure(err)
		return nil, err
	}

	c.log.Info("Loading intent", "path", security.SanitizeForLog(path))
	in, err := intent.Load(path, c.registry)
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}
	return c.translate(in)
}

// TranslateBytes generates resources from a raw intent document
func (c *Compiler) TranslateBytes(data []byte) (*Result, error) {
	in, err := intent.Parse(data, c.registry)
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}
	return c.translate(in)
}

func (c *Compiler) translate(in *intent.Intent) (*Result, error) {
	targets, err := c.registry.Resolve(in.TargetSite)
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	c.log.Info("Translating intent",
		"intentId", security.SanitizeForLog(in.IntentID),
		"serviceType", security.SanitizeForLog(in.ServiceType),
		"targetSite", in.TargetSite,
		"sites", len(targets))

	result := &Result{
		Intent:    in,
		Sites:     targets,
		Resources: make(map[string][]krm.Resource, len(targets)),
	}

	var all []krm.Resource
	for _, site := range targets {
		resources, diags, err := c.generator.GenerateSite(in, site)
		if err != nil {
			c.recordFailure(err)
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}
		result.Resources[site.Name] = resources
		result.Diagnostics = append(result.Diagnostics, diags...)
		all = append(all, resources...)

		c.log.V(1).Info("Generated site resources", "site", site.Name, "count", len(resources))
		for _, r := range resources {
			c.metrics.ResourcesGenerated.WithLabelValues(site.Name, string(r.Kind)).Inc()
		}
	}

	result.Manifest, err = manifest.Build(in.IntentID, c.timestamp, result.SiteNames(), all)
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	for _, d := range result.Diagnostics {
		c.metrics.Diagnostics.WithLabelValues(string(d.Code)).Inc()
	}
	c.metrics.TargetSites.Set(float64(len(targets)))
	c.metrics.Translations.WithLabelValues(metrics.ResultSuccess).Inc()
	return result, nil
}

// Save persists the result and writes manifest.json last. Files whose
// content is unchanged are left untouched when caching is enabled.
func (c *Compiler) Save(result *Result) (*persist.Report, error) {
	report, err := c.writer.Save(result.All(), result.Manifest)
	if err != nil {
		return nil, err
	}

	c.metrics.Files.WithLabelValues(metrics.FileWritten).Add(float64(len(report.Written)))
	c.metrics.Files.WithLabelValues(metrics.FileUnchanged).Add(float64(len(report.Unchanged)))
	c.log.Info("Saved resources",
		"outputDir", security.SanitizeForLog(c.writer.OutputDir()),
		"written", len(report.Written),
		"unchanged", len(report.Unchanged),
		"manifest", security.SanitizeForLog(report.ManifestPath))
	return report, nil
}

// Verify builds every saved site directory with kustomize
func (c *Compiler) Verify(result *Result) ([]*render.RenderResult, error) {
	return c.renderer.Verify(c.writer.OutputDir(), result.SiteNames())
}

func (c *Compiler) recordFailure(err error) {
	label := metrics.ResultGenerationError
	switch {
	case cerrors.IsValidation(err):
		label = metrics.ResultValidationError
	case cerrors.IsFileSystem(err):
		label = metrics.ResultFileSystemError
	}
	c.metrics.Translations.WithLabelValues(label).Inc()
}

// SiteNames lists the target sites in registry order
func (r *Result) SiteNames() []string {
	names := make([]string, len(r.Sites))
	for i, s := range r.Sites {
		names[i] = s.Name
	}
	return names
}

// All returns every resource, site by site in registry order
func (r *Result) All() []krm.Resource {
	var all []krm.Resource
	for _, s := range r.Sites {
		all = append(all, r.Resources[s.Name]...)
	}
	return all
}

// Checksums maps resource identities to their content hashes
func (r *Result) Checksums() (map[string]string, error) {
	return manifest.Checksums(r.All())
}
