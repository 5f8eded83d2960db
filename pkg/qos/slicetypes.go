package qos

import (
	"sort"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/diag"
)

// Slice type identifiers
const (
	SliceEMBB  = "eMBB"
	SliceURLLC = "URLLC"
	SliceMMTC  = "mMTC"
)

// SliceTypes maps service types to slice types with a fallback for unknown
// service types.
type SliceTypes struct {
	table    map[string]string
	fallback string
}

// DefaultSliceTable is the built in service type table. The short slice
// identifiers map to themselves.
func DefaultSliceTable() map[string]string {
	return map[string]string{
		"enhanced-mobile-broadband":  SliceEMBB,
		"ultra-reliable-low-latency": SliceURLLC,
		"massive-machine-type":       SliceMMTC,
		SliceEMBB:                    SliceEMBB,
		SliceURLLC:                   SliceURLLC,
		SliceMMTC:                    SliceMMTC,
	}
}

// NewSliceTypes copies table. An empty fallback means eMBB.
func NewSliceTypes(table map[string]string, fallback string) *SliceTypes {
	if fallback == "" {
		fallback = SliceEMBB
	}
	copied := make(map[string]string, len(table))
	for k, v := range table {
		copied[k] = v
	}
	return &SliceTypes{table: copied, fallback: fallback}
}

// DefaultSliceTypes returns the built in table with eMBB as fallback
func DefaultSliceTypes() *SliceTypes {
	return NewSliceTypes(DefaultSliceTable(), SliceEMBB)
}

// Fallback returns the slice type used for unknown service types
func (s *SliceTypes) Fallback() string {
	return s.fallback
}

// ServiceTypes returns the known service types, sorted
func (s *SliceTypes) ServiceTypes() []string {
	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the slice type for serviceType. Unknown service types
// resolve to the fallback and return a warning diagnostic.
func (s *SliceTypes) Lookup(serviceType string) (string, *diag.Diagnostic) {
	if sliceType, ok := s.table[serviceType]; ok {
		return sliceType, nil
	}
	d := diag.Warningf(diag.CodeUnknownServiceType, "serviceType",
		"unknown service type %q, using slice type %s", serviceType, s.fallback)
	return s.fallback, &d
}
