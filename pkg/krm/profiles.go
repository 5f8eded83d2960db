package krm

import (
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/diag"
	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
)

// Resource profile names
const (
	ProfileMinimal         = "minimal"
	ProfileStandard        = "standard"
	ProfileHighPerformance = "high-performance"
)

// Profile is the compute footprint requested for a site
type Profile struct {
	CPU     string `json:"cpu"`
	Memory  string `json:"memory"`
	Storage string `json:"storage"`
}

// Profiles is a named set of resource profiles
type Profiles map[string]Profile

// DefaultProfiles returns the built in profiles
func DefaultProfiles() Profiles {
	return Profiles{
		ProfileMinimal:         {CPU: "4", Memory: "8Gi", Storage: "50Gi"},
		ProfileStandard:        {CPU: "8", Memory: "16Gi", Storage: "100Gi"},
		ProfileHighPerformance: {CPU: "16", Memory: "32Gi", Storage: "200Gi"},
	}
}

// Validate checks every quantity parses as a Kubernetes resource quantity
func (p Profiles) Validate() error {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		profile := p[name]
		for field, value := range map[string]string{"cpu": profile.CPU, "memory": profile.Memory, "storage": profile.Storage} {
			if _, err := resource.ParseQuantity(value); err != nil {
				problems = append(problems, fmt.Sprintf("%s.%s %q: %v", name, field, value, err))
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid resource profiles: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Resolve returns the named profile. Unknown names fall back to the
// standard profile with a warning; a missing standard profile is a
// configuration defect.
func (p Profiles) Resolve(name string) (Profile, *diag.Diagnostic, error) {
	if profile, ok := p[name]; ok {
		return profile, nil, nil
	}
	standard, ok := p[ProfileStandard]
	if !ok {
		return Profile{}, nil, cerrors.NewResourceGenerationError("krm",
			fmt.Sprintf("resource profile %q is unknown and no %q fallback is configured", name, ProfileStandard), nil)
	}
	d := diag.Warningf(diag.CodeUnknownResourceProfile, "resourceProfile",
		"unknown resource profile %q, using %s", name, ProfileStandard)
	return standard, &d, nil
}
