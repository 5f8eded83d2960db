package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/catalog"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/compiler"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/security"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/src/config"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

type cliOptions struct {
	outputDir        string
	dryRun           bool
	noCache          bool
	verbose          bool
	checksumsOnly    bool
	catalogPath      string
	defaultSliceType string
	timestamp        string
	verify           bool
	metricsFile      string
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	fs := flag.NewFlagSet("intent-compiler", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: intent-compiler [flags] <intent.json>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var cli cliOptions
	fs.StringVar(&cli.outputDir, "output", cfg.OutputDir, "Output directory for generated KRM resources")
	fs.StringVar(&cli.outputDir, "o", cfg.OutputDir, "Shorthand for --output")
	fs.BoolVar(&cli.dryRun, "dry-run", false, "Print resources and checksums without writing files")
	fs.BoolVar(&cli.noCache, "no-cache", !cfg.EnableCaching, "Rewrite every file even when its content is unchanged")
	fs.BoolVar(&cli.verbose, "v", false, "Enable verbose logging")
	fs.BoolVar(&cli.checksumsOnly, "checksums-only", false, "Print resource checksums only")
	fs.StringVar(&cli.catalogPath, "catalog", cfg.CatalogPath, "YAML catalog of sites, aliases, profiles and service types")
	fs.StringVar(&cli.defaultSliceType, "default-slice-type", cfg.DefaultSliceType, "Slice type used for unknown service types")
	fs.StringVar(&cli.timestamp, "timestamp", "", "RFC3339 timestamp recorded in the output (default SOURCE_DATE_EPOCH or now)")
	fs.BoolVar(&cli.verify, "verify", cfg.Verify, "Build every written site directory with kustomize")
	fs.StringVar(&cli.metricsFile, "metrics-file", cfg.MetricsFile, "Write run metrics to this Prometheus textfile (- for stdout)")

	opts := zap.Options{
		DestWriter: stderr,
	}
	opts.BindFlags(fs)

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	intentFile := fs.Arg(0)

	cfg.OutputDir = cli.outputDir
	cfg.EnableCaching = !cli.noCache
	cfg.Verify = cli.verify
	cfg.CatalogPath = cli.catalogPath
	cfg.DefaultSliceType = cli.defaultSliceType
	cfg.MetricsFile = cli.metricsFile
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	if opts.Level == nil {
		opts.Level = cfg.GetLogLevel()
		if cli.verbose {
			opts.Level = zapcore.DebugLevel
		}
	}
	log := zap.New(zap.UseFlagOptions(&opts)).WithName("intent-compiler")
	cfg.PrintConfig(log.V(1))

	timestamp := cfg.Timestamp(now)
	if cli.timestamp != "" {
		if timestamp, err = time.Parse(time.RFC3339, cli.timestamp); err != nil {
			fmt.Fprintf(stderr, "error: invalid --timestamp: %v\n", err)
			return exitUsage
		}
	}

	var cat *catalog.Catalog
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			log.Error(err, "Failed to load catalog", "path", security.SanitizeForLog(cfg.CatalogPath))
			return exitError
		}
	}
	resolved, err := cat.Resolve(cfg.DefaultSliceType)
	if err != nil {
		log.Error(err, "Invalid catalog")
		return exitError
	}

	c, err := compiler.New(compiler.Options{
		OutputDir:     cfg.OutputDir,
		Timestamp:     timestamp,
		EnableCaching: cfg.EnableCaching,
		Catalog:       resolved,
		Logger:        log,
	})
	if err != nil {
		log.Error(err, "Failed to create compiler")
		return exitUsage
	}

	code := compile(c, intentFile, cli, stdout, log)

	if cfg.MetricsFile != "" {
		if err := writeMetrics(c, cfg.MetricsFile, stdout); err != nil {
			log.Error(err, "Failed to write metrics")
			if code == exitOK {
				code = exitError
			}
		}
	}
	return code
}

func compile(c *compiler.Compiler, intentFile string, cli cliOptions, stdout io.Writer, log logr.Logger) int {
	result, err := c.Translate(intentFile)
	if err != nil {
		log.Error(err, "Translation failed", "intent", security.SanitizeForLog(intentFile))
		return exitError
	}
	for _, d := range result.Diagnostics {
		log.Info("Diagnostic", "severity", d.Severity, "code", d.Code, "site", d.Site, "message", security.SanitizeForLog(d.Message))
	}

	if cli.checksumsOnly {
		if err := printChecksums(stdout, result); err != nil {
			log.Error(err, "Failed to compute checksums")
			return exitError
		}
		return exitOK
	}

	if cli.dryRun {
		if err := printResources(stdout, result); err != nil {
			log.Error(err, "Failed to render resources")
			return exitError
		}
		if err := printChecksums(stdout, result); err != nil {
			log.Error(err, "Failed to compute checksums")
			return exitError
		}
		return exitOK
	}

	report, err := c.Save(result)
	if err != nil {
		log.Error(err, "Failed to save resources")
		return exitError
	}
	fmt.Fprintf(stdout, "Generated %d resources for %d sites (%d written, %d unchanged)\n",
		result.Manifest.Summary.TotalResources, result.Manifest.Summary.TotalSites,
		len(report.Written), len(report.Unchanged))
	fmt.Fprintf(stdout, "Manifest: %s\n", report.ManifestPath)

	if cli.verify {
		rendered, err := c.Verify(result)
		for _, r := range rendered {
			for _, msg := range r.Errors {
				log.Info("Render check failed", "package", r.PackagePath, "error", security.SanitizeForLog(msg))
			}
		}
		if err != nil {
			log.Error(err, "Verification failed")
			return exitError
		}
		fmt.Fprintf(stdout, "Verified %d site packages with kustomize\n", len(rendered))
	}
	return exitOK
}

func writeMetrics(c *compiler.Compiler, path string, stdout io.Writer) error {
	if path == "-" {
		return c.Metrics().WriteText(stdout)
	}
	return c.Metrics().WriteTextfile(path)
}

func printResources(w io.Writer, result *compiler.Result) error {
	for _, r := range result.All() {
		data, err := r.YAML()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "---\n# %s/%s\n%s", r.Site, r.Filename, data)
	}
	return nil
}

func printChecksums(w io.Writer, result *compiler.Result) error {
	sums, err := result.Checksums()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "%s: %s\n", id, sums[id])
	}
	return nil
}
