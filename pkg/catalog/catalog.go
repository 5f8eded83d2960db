// Package catalog loads site, alias, profile and service type definitions
// from a YAML file layered over the built in defaults.
package catalog

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/krm"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/qos"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/security"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/sites"
)

// Catalog is the on-disk form
type Catalog struct {
	// Sites replace the built in registry when non-empty; order is the
	// registry order and so drives the derived site data.
	Sites []SiteEntry `json:"sites,omitempty"`
	// Aliases are added to the built in "both" alias. A null or empty
	// member list stands for every site.
	Aliases          map[string][]string    `json:"aliases,omitempty"`
	Profiles         map[string]krm.Profile `json:"profiles,omitempty"`
	ServiceTypes     map[string]string      `json:"serviceTypes,omitempty"`
	DefaultSliceType string                 `json:"defaultSliceType,omitempty"`
}

// SiteEntry overrides the derived data of one site
type SiteEntry struct {
	Name      string `json:"name"`
	ClusterID string `json:"clusterId,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	MCC       string `json:"mcc,omitempty"`
	MNC       string `json:"mnc,omitempty"`
	GNBID     string `json:"gnbId,omitempty"`
	TAC       string `json:"tac,omitempty"`
}

// Resolved is a catalog merged with the defaults and ready to use
type Resolved struct {
	Registry   *sites.Registry
	Profiles   krm.Profiles
	SliceTypes *qos.SliceTypes
}

// Load reads a catalog file
func Load(path string) (*Catalog, error) {
	if err := security.ValidateFilePathAndExtension(path, []string{".yaml", ".yml"}); err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog YAML, rejecting unknown fields
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

// Resolve merges c over the built in defaults. A nil catalog yields the
// defaults. defaultSliceType, when set, wins over the catalog's own.
func (c *Catalog) Resolve(defaultSliceType string) (*Resolved, error) {
	if c == nil {
		c = &Catalog{}
	}

	siteList := []sites.Site{{Name: "edge1"}, {Name: "edge2"}}
	if len(c.Sites) > 0 {
		siteList = make([]sites.Site, 0, len(c.Sites))
		for _, e := range c.Sites {
			siteList = append(siteList, sites.Site{
				Name:      e.Name,
				ClusterID: e.ClusterID,
				Namespace: e.Namespace,
				PLMN:      sites.PLMN{MCC: e.MCC, MNC: e.MNC},
				GNBID:     e.GNBID,
				TAC:       e.TAC,
			})
		}
	}

	aliases := map[string][]string{sites.AliasBoth: nil}
	for name, members := range c.Aliases {
		aliases[name] = members
	}
	registry, err := sites.NewRegistry(siteList, aliases)
	if err != nil {
		return nil, err
	}

	profiles := krm.DefaultProfiles()
	for name, p := range c.Profiles {
		profiles[name] = p
	}
	if err := profiles.Validate(); err != nil {
		return nil, err
	}

	table := qos.DefaultSliceTable()
	for serviceType, sliceType := range c.ServiceTypes {
		if sliceType == "" {
			return nil, fmt.Errorf("service type %q maps to an empty slice type", serviceType)
		}
		table[serviceType] = sliceType
	}
	fallback := c.DefaultSliceType
	if defaultSliceType != "" {
		fallback = defaultSliceType
	}

	return &Resolved{
		Registry:   registry,
		Profiles:   profiles,
		SliceTypes: qos.NewSliceTypes(table, fallback),
	}, nil
}
