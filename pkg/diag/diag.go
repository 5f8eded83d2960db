// Package diag carries non-fatal findings produced while compiling an intent.
package diag

import "fmt"

// Severity of a diagnostic
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Code identifies the condition a diagnostic reports
type Code string

const (
	CodeUnknownServiceType     Code = "UNKNOWN_SERVICE_TYPE"
	CodeUnknownResourceProfile Code = "UNKNOWN_RESOURCE_PROFILE"
	CodeInvalidResourceName    Code = "INVALID_RESOURCE_NAME"
	CodeInvalidLabelValue      Code = "INVALID_LABEL_VALUE"
)

// Diagnostic is a finding that does not stop translation
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Field    string   `json:"field,omitempty"`
	Site     string   `json:"site,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Site != "" {
		return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.Site, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
}

// Warningf builds a warning diagnostic
func Warningf(code Code, field, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	}
}

// List is an ordered collection of diagnostics
type List []Diagnostic

// HasCode reports whether any diagnostic carries code
func (l List) HasCode(code Code) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}

// WithSite stamps site onto every diagnostic that does not carry one yet
func (l List) WithSite(site string) List {
	out := make(List, len(l))
	for i, d := range l {
		if d.Site == "" {
			d.Site = site
		}
		out[i] = d
	}
	return out
}

// Dedupe drops repeated diagnostics, keeping the first occurrence
func (l List) Dedupe() List {
	seen := make(map[Diagnostic]struct{}, len(l))
	out := make(List, 0, len(l))
	for _, d := range l {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
