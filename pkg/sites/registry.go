// Package sites resolves intent targets to concrete edge sites.
package sites

import (
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"

	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
)

const (
	// DefaultMCC is the test network country code shared by every site
	DefaultMCC = "001"

	// AliasBoth targets every site of the default registry
	AliasBoth = "both"
)

// PLMN identifies the mobile network a site belongs to
type PLMN struct {
	MCC string `json:"mcc"`
	MNC string `json:"mnc"`
}

// ID returns the concatenated PLMN identity, e.g. "00101"
func (p PLMN) ID() string {
	return p.MCC + p.MNC
}

// Site is a deployment target
type Site struct {
	Name      string
	Index     int
	ClusterID string
	Namespace string
	PLMN      PLMN
	GNBID     string
	TAC       string
}

// DeriveSite fills in the registry data of the site at the given 1-based
// position.
func DeriveSite(name string, index int) Site {
	return Site{
		Name:      name,
		Index:     index,
		ClusterID: fmt.Sprintf("edge-cluster-%02d", index),
		Namespace: name,
		PLMN:      PLMN{MCC: DefaultMCC, MNC: fmt.Sprintf("%02d", index)},
		GNBID:     fmt.Sprintf("%05d", index),
		TAC:       fmt.Sprintf("%04d", index),
	}
}

// withDefaults derives any field the caller left empty
func (s Site) withDefaults(position int) Site {
	if s.Index == 0 {
		s.Index = position
	}
	derived := DeriveSite(s.Name, s.Index)
	if s.ClusterID == "" {
		s.ClusterID = derived.ClusterID
	}
	if s.Namespace == "" {
		s.Namespace = derived.Namespace
	}
	if s.PLMN.MCC == "" {
		s.PLMN.MCC = derived.PLMN.MCC
	}
	if s.PLMN.MNC == "" {
		s.PLMN.MNC = derived.PLMN.MNC
	}
	if s.GNBID == "" {
		s.GNBID = derived.GNBID
	}
	if s.TAC == "" {
		s.TAC = derived.TAC
	}
	return s
}

// Registry is an ordered, static set of sites plus named aliases. An alias
// without members stands for every site in registry order.
type Registry struct {
	sites   []Site
	byName  map[string]int
	aliases map[string][]string
}

// NewRegistry validates and indexes the given sites and aliases. Alias
// members are not checked here; a dangling member surfaces from Resolve.
func NewRegistry(sites []Site, aliases map[string][]string) (*Registry, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("registry needs at least one site")
	}

	r := &Registry{
		byName:  make(map[string]int, len(sites)),
		aliases: make(map[string][]string, len(aliases)),
	}

	var problems []string
	for i, s := range sites {
		if errs := validation.IsDNS1123Label(s.Name); len(errs) > 0 {
			problems = append(problems, fmt.Sprintf("site %q: %s", s.Name, strings.Join(errs, ", ")))
			continue
		}
		if _, dup := r.byName[s.Name]; dup {
			problems = append(problems, fmt.Sprintf("site %q registered twice", s.Name))
			continue
		}
		r.byName[s.Name] = len(r.sites)
		r.sites = append(r.sites, s.withDefaults(i+1))
	}

	for name, members := range aliases {
		if _, clash := r.byName[name]; clash {
			problems = append(problems, fmt.Sprintf("alias %q shadows a site", name))
			continue
		}
		if name == "" {
			problems = append(problems, "alias with empty name")
			continue
		}
		r.aliases[name] = append([]string(nil), members...)
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, fmt.Errorf("invalid site registry: %s", strings.Join(problems, "; "))
	}
	return r, nil
}

// Default returns the two-site registry used when no catalog is supplied
func Default() *Registry {
	r, err := NewRegistry(
		[]Site{{Name: "edge1"}, {Name: "edge2"}},
		map[string][]string{AliasBoth: nil},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Sites returns every registered site in registry order
func (r *Registry) Sites() []Site {
	return append([]Site(nil), r.sites...)
}

// Lookup returns the named site
func (r *Registry) Lookup(name string) (Site, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Site{}, false
	}
	return r.sites[i], true
}

// Targets lists every accepted targetSite value: site names in registry
// order followed by alias names in sorted order.
func (r *Registry) Targets() []string {
	targets := make([]string, 0, len(r.sites)+len(r.aliases))
	for _, s := range r.sites {
		targets = append(targets, s.Name)
	}
	aliases := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		aliases = append(aliases, name)
	}
	sort.Strings(aliases)
	return append(targets, aliases...)
}

// IsValidTarget reports whether name is a site or an alias
func (r *Registry) IsValidTarget(name string) bool {
	if _, ok := r.byName[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Resolve expands a target into the ordered list of sites it covers
func (r *Registry) Resolve(target string) ([]Site, error) {
	if s, ok := r.Lookup(target); ok {
		return []Site{s}, nil
	}

	members, ok := r.aliases[target]
	if !ok {
		return nil, cerrors.NewResourceGenerationError("sites",
			fmt.Sprintf("target %q is not registered", target), nil)
	}
	if len(members) == 0 {
		return r.Sites(), nil
	}

	resolved := make([]Site, 0, len(members))
	for _, name := range members {
		s, ok := r.Lookup(name)
		if !ok {
			return nil, cerrors.NewResourceGenerationError("sites",
				fmt.Sprintf("alias %q references unregistered site %q", target, name), nil)
		}
		resolved = append(resolved, s)
	}
	return resolved, nil
}
