// Package render checks that a written output directory builds with
// kustomize and that every resource file honours the KRM header contract.
package render

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"sigs.k8s.io/kustomize/api/krusty"
	"sigs.k8s.io/kustomize/api/types"
	"sigs.k8s.io/kustomize/kyaml/filesys"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
	"sigs.k8s.io/yaml"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/canonical"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/krm"
)

// Renderer runs in-process kustomize builds over site directories
type Renderer struct {
	fs filesys.FileSystem
}

// RenderResult represents the result of rendering one site directory
type RenderResult struct {
	Success          bool               `json:"success"`
	PackagePath      string             `json:"packagePath"`
	Resources        []RenderedResource `json:"resources"`
	ValidationResult *ValidationResult  `json:"validationResult,omitempty"`
	Errors           []string           `json:"errors,omitempty"`
	Warnings         []string           `json:"warnings,omitempty"`
}

// RenderedResource represents a resource emitted by kustomize
type RenderedResource struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Namespace  string `json:"namespace,omitempty"`
	Size       int    `json:"size"`
	Checksum   string `json:"checksum"`
}

// ValidationResult represents validation results
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Summary ValidationSummary `json:"summary"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
}

// ValidationSummary represents validation summary
type ValidationSummary struct {
	TotalResources   int `json:"totalResources"`
	ValidResources   int `json:"validResources"`
	InvalidResources int `json:"invalidResources"`
	ErrorCount       int `json:"errorCount"`
}

// resourceHeader is the part of a rendered resource we report on
type resourceHeader struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Metadata   struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	} `json:"metadata"`
}

// NewRenderer creates a renderer over fs, the real disk when nil
func NewRenderer(fs filesys.FileSystem) *Renderer {
	if fs == nil {
		fs = filesys.MakeFsOnDisk()
	}
	return &Renderer{fs: fs}
}

// Verify renders every site directory below outputDir
func (r *Renderer) Verify(outputDir string, sites []string) ([]*RenderResult, error) {
	results := make([]*RenderResult, 0, len(sites))
	var failed []string
	for _, site := range sites {
		result, err := r.RenderSite(filepath.Join(outputDir, site))
		results = append(results, result)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", site, err))
		}
	}
	if len(failed) > 0 {
		return results, fmt.Errorf("render verification failed: %s", strings.Join(failed, "; "))
	}
	return results, nil
}

// RenderSite validates the resource files of one site and builds its
// kustomization with plugins disabled and loading restricted to the site.
func (r *Renderer) RenderSite(sitePath string) (*RenderResult, error) {
	result := &RenderResult{PackagePath: sitePath}

	validation, err := ValidateFiles(r.fs, sitePath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result, err
	}
	result.ValidationResult = validation
	if !validation.Valid {
		for _, e := range validation.Errors {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", e.File, e.Message))
		}
		return result, fmt.Errorf("%d resource files violate the KRM contract", validation.Summary.InvalidResources)
	}

	options := krusty.MakeDefaultOptions()
	options.LoadRestrictions = types.LoadRestrictionsRootOnly
	options.PluginConfig = types.DisabledPluginConfig()

	k := krusty.MakeKustomizer(options)
	resMap, err := k.Run(r.fs, sitePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Kustomize build failed: %v", err))
		return result, fmt.Errorf("kustomize build failed: %w", err)
	}

	for _, res := range resMap.Resources() {
		yamlContent, err := res.AsYAML()
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Failed to convert resource to YAML: %v", err))
			continue
		}

		var header resourceHeader
		if err := yaml.Unmarshal(yamlContent, &header); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Failed to unmarshal resource: %v", err))
			continue
		}

		result.Resources = append(result.Resources, RenderedResource{
			APIVersion: header.APIVersion,
			Kind:       header.Kind,
			Name:       header.Metadata.Name,
			Namespace:  header.Metadata.Namespace,
			Size:       len(yamlContent),
			Checksum:   canonical.Checksum(yamlContent),
		})
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

// ValidateFiles parses every resource file in dir and checks it carries
// apiVersion, kind and metadata.name. The kustomization is metadata, not a
// deployable resource, and is skipped.
func ValidateFiles(fs filesys.FileSystem, dir string) (*ValidationResult, error) {
	if !fs.IsDir(dir) {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(entries)

	result := &ValidationResult{}
	for _, name := range entries {
		if name == krm.KustomizationFilename || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		path := filepath.Join(dir, name)
		result.Summary.TotalResources++

		problems, err := checkFile(fs, path)
		if err != nil {
			return nil, err
		}
		if len(problems) == 0 {
			result.Summary.ValidResources++
			continue
		}
		result.Summary.InvalidResources++
		for _, p := range problems {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "krm-contract",
				Severity: "error",
				Message:  p,
				File:     name,
			})
		}
	}

	result.Summary.ErrorCount = len(result.Errors)
	result.Valid = result.Summary.ErrorCount == 0
	return result, nil
}

func checkFile(fs filesys.FileSystem, path string) ([]string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	node, err := kyaml.Parse(string(data))
	if err != nil {
		return []string{fmt.Sprintf("not valid YAML: %v", err)}, nil
	}

	var problems []string
	if node.GetApiVersion() == "" {
		problems = append(problems, "missing apiVersion")
	}
	if node.GetKind() == "" {
		problems = append(problems, "missing kind")
	}
	if node.GetName() == "" {
		problems = append(problems, "missing metadata.name")
	}
	return problems, nil
}
