// Package qos maps intent SLA requirements to O2IMS and 5G QoS parameters.
package qos

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/intent"
)

// 5QI values selected by the latency ladder
const (
	FiveQIURLLC      = 1
	FiveQILowLatency = 5
	FiveQIVoice      = 7
	FiveQIBestEffort = 9
)

// latencyStep is one rung of the ladder: latency <= maxLatency selects fiveQI
type latencyStep struct {
	maxLatency float64
	fiveQI     int
}

var latencyLadder = []latencyStep{
	{maxLatency: 1, fiveQI: FiveQIURLLC},
	{maxLatency: 10, fiveQI: FiveQILowLatency},
	{maxLatency: 50, fiveQI: FiveQIVoice},
}

// ConvertSLA renders the SLA as O2IMS requirement strings. Absent fields are
// omitted; present values keep their literal input text.
func ConvertSLA(sla *intent.SLA) map[string]interface{} {
	out := map[string]interface{}{}
	if sla == nil {
		return out
	}
	set := func(key string, v *json.Number, suffix string) {
		if v != nil {
			out[key] = v.String() + suffix
		}
	}
	set("availability", sla.Availability, "%")
	set("maxLatency", sla.Latency, "ms")
	set("minThroughput", sla.Throughput, "Mbps")
	set("maxConnections", sla.Connections, "")
	set("reliability", sla.Reliability, "%")
	return out
}

// ConvertSLAToQoS selects the 5QI from latency and sets the guaranteed flow
// bit rate from throughput when present.
func ConvertSLAToQoS(sla *intent.SLA) map[string]interface{} {
	out := map[string]interface{}{"5qi": FiveQIBestEffort}
	if sla == nil {
		return out
	}
	if sla.Latency != nil {
		out["5qi"] = FiveQIForLatency(*sla.Latency)
	}
	if sla.Throughput != nil {
		out["gfbr"] = sla.Throughput.String() + "Mbps"
	}
	return out
}

// FiveQIForLatency walks the ladder, first match wins. Boundaries are
// inclusive.
func FiveQIForLatency(latency json.Number) int {
	v, err := strconv.ParseFloat(latency.String(), 64)
	// ErrRange still yields ±Inf, which the ladder handles. Any other error
	// means text that is not a number, only possible for an SLA built in code.
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return FiveQIBestEffort
	}
	for _, step := range latencyLadder {
		if v <= step.maxLatency {
			return step.fiveQI
		}
	}
	return FiveQIBestEffort
}
