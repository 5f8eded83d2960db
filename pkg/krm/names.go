package krm

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/canonical"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/diag"
)

// checkNames reports names and label values a cluster would refuse. They
// are warnings: the files are still written.
func checkNames(r Resource) diag.List {
	var out diag.List
	if errs := validation.IsDNS1123Subdomain(r.Name); len(errs) > 0 {
		out = append(out, diag.Warningf(diag.CodeInvalidResourceName, "metadata.name",
			"%s name %q: %s", r.Kind, r.Name, strings.Join(errs, "; ")))
	}

	labelPath := []string{"metadata", "labels"}
	if r.Kind == KindKustomization {
		labelPath = []string{"commonLabels"}
	}
	labels, ok := r.Lookup(labelPath...)
	if !ok {
		return out
	}
	m, _ := labels.(canonical.Map)
	for _, p := range m {
		value, _ := p.Value.(string)
		if errs := validation.IsValidLabelValue(value); len(errs) > 0 {
			out = append(out, diag.Warningf(diag.CodeInvalidLabelValue, strings.Join(labelPath, ".")+"."+p.Key,
				"%s label %s=%q: %s", r.Kind, p.Key, value, strings.Join(errs, "; ")))
		}
	}
	return out
}
