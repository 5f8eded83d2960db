// Package canonical produces byte-stable encodings of JSON-like trees.
//
// Every map is rewritten into a Map whose entries are ordered by the Unicode
// code points of their keys. Sequences keep their order. The YAML and JSON
// encoders in this package only ever see normalized values, so their output
// does not depend on how the input was assembled.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Pair is a single entry of a normalized map
type Pair struct {
	Key   string
	Value interface{}
}

// Map is an object whose entries are held in key order
type Map []Pair

// Get returns the value stored under key
func (m Map) Get(key string) (interface{}, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys of m in order
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Key
	}
	return keys
}

// MarshalJSON writes the entries in their stored order
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSONValue(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := encodeJSONValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", p.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSONValue(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Normalize returns a copy of v in which every map has become a Map with
// sorted keys. Values that are not plain JSON trees (typed structs, typed
// maps) are first converted through their JSON encoding.
func Normalize(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil, string, bool, json.Number,
		float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val, nil
	case Map:
		return normalizePairs(val)
	case map[string]interface{}:
		pairs := make(Map, 0, len(val))
		for k, item := range val {
			pairs = append(pairs, Pair{Key: k, Value: item})
		}
		return normalizePairs(pairs)
	case map[string]string:
		pairs := make(Map, 0, len(val))
		for k, item := range val {
			pairs = append(pairs, Pair{Key: k, Value: item})
		}
		return normalizePairs(pairs)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			n, err := Normalize(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	default:
		tree, err := ToTree(val)
		if err != nil {
			return nil, err
		}
		return Normalize(tree)
	}
}

func normalizePairs(pairs Map) (Map, error) {
	out := make(Map, len(pairs))
	for i, p := range pairs {
		n, err := Normalize(p.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", p.Key, err)
		}
		out[i] = Pair{Key: p.Key, Value: n}
	}
	// Go compares strings byte-wise over UTF-8, which matches code point order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ToTree converts any JSON-encodable value into a generic tree of
// map[string]interface{}, []interface{} and scalars. Numbers are kept as
// json.Number so their literal text survives.
func ToTree(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return DecodeTree(data)
}

// DecodeTree decodes a single JSON document into a generic tree
func DecodeTree(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level JSON value")
	}
	return tree, nil
}
