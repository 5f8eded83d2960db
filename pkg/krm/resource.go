// Package krm builds the KRM resources an intent compiles to.
package krm

import (
	"fmt"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/canonical"
	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
)

// Kind is the closed set of resource kinds the compiler emits
type Kind string

const (
	KindProvisioningRequest Kind = "ProvisioningRequest"
	KindConfigMap           Kind = "ConfigMap"
	KindNetworkSlice        Kind = "NetworkSlice"
	KindKustomization       Kind = "Kustomization"
)

// KustomizationFilename is the fixed file name of every site kustomization
const KustomizationFilename = "kustomization.yaml"

var filenameSuffix = map[Kind]string{
	KindProvisioningRequest: "-provisioning-request.yaml",
	KindConfigMap:           "-config-map.yaml",
	KindNetworkSlice:        "-network-slice.yaml",
}

// Filename returns the file a resource of the given kind and name is stored in
func Filename(kind Kind, name string) (string, error) {
	if kind == KindKustomization {
		return KustomizationFilename, nil
	}
	suffix, ok := filenameSuffix[kind]
	if !ok {
		return "", fmt.Errorf("unknown resource kind %q", kind)
	}
	return name + suffix, nil
}

// Resource is one generated object together with its placement. Object is
// the normalized tree every serializer and checksum works from.
type Resource struct {
	Site     string
	Kind     Kind
	Name     string
	Filename string
	Object   canonical.Map
}

// NewResource normalizes obj and checks the KRM header every resource must
// carry: apiVersion, kind matching the tag, and metadata.name.
func NewResource(site string, kind Kind, obj interface{}) (Resource, error) {
	normalized, err := canonical.Normalize(obj)
	if err != nil {
		return Resource{}, cerrors.NewResourceGenerationError("krm",
			fmt.Sprintf("cannot normalize %s for site %s", kind, site), err)
	}
	tree, ok := normalized.(canonical.Map)
	if !ok {
		return Resource{}, cerrors.NewResourceGenerationError("krm",
			fmt.Sprintf("%s for site %s is not an object", kind, site), nil)
	}

	r := Resource{Site: site, Kind: kind, Object: tree}

	var missing []string
	if s, _ := r.stringAt("apiVersion"); s == "" {
		missing = append(missing, "apiVersion")
	}
	if s, _ := r.stringAt("kind"); s != string(kind) {
		missing = append(missing, "kind")
	}
	name, _ := r.stringAt("metadata", "name")
	if name == "" {
		missing = append(missing, "metadata.name")
	}
	if len(missing) > 0 {
		return Resource{}, cerrors.NewResourceGenerationError("krm",
			fmt.Sprintf("%s for site %s has missing or invalid %v", kind, site, missing), nil)
	}

	r.Name = name
	r.Filename, err = Filename(kind, name)
	if err != nil {
		return Resource{}, cerrors.NewResourceGenerationError("krm", err.Error(), nil)
	}
	return r, nil
}

// ID is the manifest identity "{site}/{kind}/{metadata.name}"
func (r Resource) ID() string {
	return fmt.Sprintf("%s/%s/%s", r.Site, r.Kind, r.Name)
}

// YAML returns the canonical serialization of the resource
func (r Resource) YAML() ([]byte, error) {
	return canonical.YAML(r.Object)
}

// Lookup walks the object along path
func (r Resource) Lookup(path ...string) (interface{}, bool) {
	var cur interface{} = r.Object
	for _, key := range path {
		m, ok := cur.(canonical.Map)
		if !ok {
			return nil, false
		}
		if cur, ok = m.Get(key); !ok {
			return nil, false
		}
	}
	return cur, true
}

func (r Resource) stringAt(path ...string) (string, bool) {
	v, ok := r.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
