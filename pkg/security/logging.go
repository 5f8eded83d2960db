// Copyright 2024 O-RAN Intent MANO Project
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxLogValueLength bounds a single sanitized value
const maxLogValueLength = 512

// SanitizeForLog escapes control characters in caller supplied strings
// (intent ids, paths, service types) before they reach a log line.
func SanitizeForLog(input string) string {
	if input == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(input))

	for _, r := range input {
		switch {
		case r == '\n':
			result.WriteString("\\n")
		case r == '\r':
			result.WriteString("\\r")
		case r == '\t':
			result.WriteString("\\t")
		case r == 0x1b: // ESC starts ANSI sequences
			result.WriteString("\\e")
		case unicode.IsControl(r):
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		default:
			result.WriteRune(r)
		}
	}

	sanitized := result.String()
	if len(sanitized) > maxLogValueLength {
		cut := maxLogValueLength - 3
		for cut > 0 && !utf8.RuneStart(sanitized[cut]) {
			cut--
		}
		sanitized = sanitized[:cut] + "..."
	}
	return sanitized
}

// SanitizeErrorForLog safely formats error messages for logging
func SanitizeErrorForLog(err error) string {
	if err == nil {
		return "<nil>"
	}
	return SanitizeForLog(err.Error())
}
