// Package intent loads and validates service intents.
package intent

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/canonical"
	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/security"
)

//go:embed intent.schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Load reads and validates the intent stored at path
func Load(path string, targets TargetSet) (*Intent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.NewFileSystemError("read intent file", path, err)
	}
	return Parse(data, targets)
}

// Parse validates a raw intent document and applies defaults. Every schema
// violation is reported in a single error.
func Parse(data []byte, targets TargetSet) (*Intent, error) {
	tree, err := canonical.DecodeTree(data)
	if err != nil {
		return nil, cerrors.NewMalformedJSONError(err)
	}
	obj, ok := tree.(map[string]interface{})
	if !ok {
		return nil, cerrors.NewValidationError(fmt.Sprintf("intent must be a JSON object, got %s", jsonKind(tree)))
	}

	if err := validateSchema(data); err != nil {
		return nil, err
	}

	applyDefaults(obj)

	id := obj["intentId"].(string)
	if err := security.ValidatePathComponent(id); err != nil {
		verr := cerrors.NewValidationError(
			fmt.Sprintf("invalid intentId '%s': must not contain '/', '\\' or '..'", security.SanitizeForLog(id)),
			"intentId",
		)
		verr.Value = id
		verr.Cause = err
		return nil, verr
	}

	target := obj["targetSite"].(string)
	if targets != nil && !targets.IsValidTarget(target) {
		allowed := append([]string(nil), targets.Targets()...)
		sort.Strings(allowed)
		return nil, cerrors.NewInvalidValueError("targetSite", target, allowed)
	}

	encoded, err := json.Marshal(obj)
	if err != nil {
		return nil, cerrors.NewValidationError(fmt.Sprintf("intent cannot be re-encoded: %v", err))
	}
	intent := &Intent{raw: obj}
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	if err := dec.Decode(intent); err != nil {
		return nil, cerrors.NewValidationError(fmt.Sprintf("intent does not match the expected structure: %v", err))
	}
	return intent, nil
}

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return cerrors.NewMalformedJSONError(err)
	}
	if result.Valid() {
		return nil
	}

	var missing, invalid, problems []string
	for _, resultErr := range result.Errors() {
		field := fieldPath(resultErr.Field())
		if resultErr.Type() == "required" {
			if property, ok := resultErr.Details()["property"].(string); ok {
				missing = append(missing, joinField(field, property))
				continue
			}
		}
		invalid = append(invalid, field)
		problems = append(problems, fmt.Sprintf("%s: %s", field, resultErr.Description()))
	}
	sort.Strings(missing)
	sort.Strings(invalid)
	sort.Strings(problems)

	if len(invalid) == 0 {
		return cerrors.NewMissingFieldsError(missing)
	}

	var message []string
	if len(missing) > 0 {
		message = append(message, fmt.Sprintf("missing required fields: [%s]", strings.Join(missing, ", ")))
	}
	message = append(message, fmt.Sprintf("invalid fields: %s", strings.Join(problems, "; ")))
	return cerrors.NewValidationError(strings.Join(message, "; "), append(missing, invalid...)...)
}

func applyDefaults(obj map[string]interface{}) {
	defaults := map[string]string{
		"serviceType":     DefaultServiceType,
		"targetSite":      DefaultTargetSite,
		"resourceProfile": DefaultResourceProfile,
	}
	for key, value := range defaults {
		if _, ok := obj[key]; !ok {
			obj[key] = value
		}
	}
}

func fieldPath(field string) string {
	if field == "(root)" {
		return ""
	}
	return field
}

func joinField(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case []interface{}:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
