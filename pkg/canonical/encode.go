package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Algorithm is the name recorded next to every checksum
const Algorithm = "sha256"

const indent = 2

// YAML returns the canonical YAML encoding of v
func YAML(v interface{}) ([]byte, error) {
	normalized, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	node, err := toNode(normalized)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON returns the canonical, indented JSON encoding of v without a
// trailing newline
func JSON(v interface{}) ([]byte, error) {
	normalized, err := Normalize(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Checksum returns the hex SHA-256 digest of data
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sum returns the canonical YAML of v together with its checksum
func Sum(v interface{}) (string, []byte, error) {
	data, err := YAML(v)
	if err != nil {
		return "", nil, err
	}
	return Checksum(data), data, nil
}

func toNode(v interface{}) (*yaml.Node, error) {
	switch val := v.(type) {
	case Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range val {
			child, err := toNode(p.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, stringNode(p.Key), child)
		}
		return node, nil
	case []interface{}:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case nil:
		return scalarNode("!!null", "null"), nil
	case string:
		return stringNode(val), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(val)), nil
	case json.Number:
		if _, err := strconv.ParseInt(string(val), 10, 64); err == nil {
			return scalarNode("!!int", string(val)), nil
		}
		return scalarNode("!!float", string(val)), nil
	case float64:
		return scalarNode("!!float", strconv.FormatFloat(val, 'g', -1, 64)), nil
	case float32:
		return scalarNode("!!float", strconv.FormatFloat(float64(val), 'g', -1, 32)), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return scalarNode("!!int", fmt.Sprint(val)), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T in normalized tree", v)
	}
}

func stringNode(s string) *yaml.Node {
	return scalarNode("!!str", s)
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
