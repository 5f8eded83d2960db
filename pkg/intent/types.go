package intent

import "encoding/json"

const (
	// DefaultServiceType is applied when serviceType is absent
	DefaultServiceType = "enhanced-mobile-broadband"
	// DefaultTargetSite is applied when targetSite is absent
	DefaultTargetSite = "both"
	// DefaultResourceProfile is applied when resourceProfile is absent
	DefaultResourceProfile = "standard"
)

// Intent is a validated, defaulted service request
type Intent struct {
	IntentID        string                 `json:"intentId"`
	ServiceType     string                 `json:"serviceType"`
	TargetSite      string                 `json:"targetSite"`
	ResourceProfile string                 `json:"resourceProfile"`
	SLA             *SLA                   `json:"sla,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`

	raw map[string]interface{}
}

// SLA holds the service level requirements. Each value keeps the literal
// text it had in the input document.
type SLA struct {
	Availability *json.Number `json:"availability,omitempty"`
	Latency      *json.Number `json:"latency,omitempty"`
	Throughput   *json.Number `json:"throughput,omitempty"`
	Connections  *json.Number `json:"connections,omitempty"`
	Reliability  *json.Number `json:"reliability,omitempty"`
}

// HasSLA reports whether the intent carried an sla object
func (i *Intent) HasSLA() bool {
	return i.SLA != nil
}

// Raw returns the full input document with defaults applied, including
// keys the compiler does not interpret. Callers must not modify it.
func (i *Intent) Raw() map[string]interface{} {
	return i.raw
}

// TargetSet is the enum targetSite is validated against
type TargetSet interface {
	IsValidTarget(name string) bool
	Targets() []string
}
