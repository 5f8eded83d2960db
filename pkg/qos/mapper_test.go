package qos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/diag"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/intent"
)

func num(s string) *json.Number {
	n := json.Number(s)
	return &n
}

func TestLatencyLadderBoundaries(t *testing.T) {
	tests := []struct {
		latency *json.Number
		want    int
	}{
		{num("0.5"), 1},
		{num("1"), 1},
		{num("1.0001"), 5},
		{num("10"), 5},
		{num("11"), 7},
		{num("50"), 7},
		{num("50.0"), 7},
		{num("51"), 9},
		{num("1e400"), 9},
		{num("-1e400"), 1},
		{num("1e-400"), 1},
		{num("fast"), 9},
		{nil, 9},
	}

	for _, tt := range tests {
		name := "absent"
		if tt.latency != nil {
			name = tt.latency.String()
		}
		t.Run(name, func(t *testing.T) {
			qos := ConvertSLAToQoS(&intent.SLA{Latency: tt.latency})
			assert.Equal(t, tt.want, qos["5qi"])
		})
	}
}

func TestConvertSLAToQoSThroughput(t *testing.T) {
	qos := ConvertSLAToQoS(&intent.SLA{Latency: num("10"), Throughput: num("1000")})
	assert.Equal(t, map[string]interface{}{"5qi": 5, "gfbr": "1000Mbps"}, qos)

	qos = ConvertSLAToQoS(&intent.SLA{})
	assert.Equal(t, map[string]interface{}{"5qi": 9}, qos)
	assert.NotContains(t, qos, "gfbr")
}

func TestConvertSLA(t *testing.T) {
	sla := &intent.SLA{
		Availability: num("99.99"),
		Latency:      num("10"),
		Throughput:   num("100.0"),
		Connections:  num("1000"),
		Reliability:  num("99.999"),
	}

	assert.Equal(t, map[string]interface{}{
		"availability":   "99.99%",
		"maxLatency":     "10ms",
		"minThroughput":  "100.0Mbps",
		"maxConnections": "1000",
		"reliability":    "99.999%",
	}, ConvertSLA(sla))
}

func TestConvertSLAOmitsAbsentFields(t *testing.T) {
	out := ConvertSLA(&intent.SLA{Latency: num("5")})

	assert.Equal(t, map[string]interface{}{"maxLatency": "5ms"}, out)
	assert.Empty(t, ConvertSLA(nil))
}

func TestSliceTypesLookup(t *testing.T) {
	st := DefaultSliceTypes()

	tests := []struct {
		serviceType string
		want        string
	}{
		{"enhanced-mobile-broadband", SliceEMBB},
		{"ultra-reliable-low-latency", SliceURLLC},
		{"massive-machine-type", SliceMMTC},
		{"URLLC", SliceURLLC},
	}
	for _, tt := range tests {
		got, d := st.Lookup(tt.serviceType)
		assert.Equal(t, tt.want, got, tt.serviceType)
		assert.Nil(t, d, tt.serviceType)
	}
}

func TestSliceTypesUnknownFallsBack(t *testing.T) {
	st := NewSliceTypes(DefaultSliceTable(), SliceMMTC)

	got, d := st.Lookup("holographic-telepresence")
	assert.Equal(t, SliceMMTC, got)
	if assert.NotNil(t, d) {
		assert.Equal(t, diag.CodeUnknownServiceType, d.Code)
		assert.Equal(t, diag.SeverityWarning, d.Severity)
		assert.Equal(t, "serviceType", d.Field)
		assert.Contains(t, d.Message, "holographic-telepresence")
	}
}

func TestNewSliceTypesDefaultsFallback(t *testing.T) {
	st := NewSliceTypes(nil, "")

	assert.Equal(t, SliceEMBB, st.Fallback())
	assert.Empty(t, st.ServiceTypes())
}
