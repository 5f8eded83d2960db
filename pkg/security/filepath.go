// Copyright 2024 O-RAN Intent MANO Project
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxPathLength is the longest path accepted from users
const maxPathLength = 4096

// ValidateFilePath rejects empty, overlong and null byte carrying paths
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if len(path) > maxPathLength {
		return fmt.Errorf("file path too long: %d characters (max: %d)", len(path), maxPathLength)
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null byte")
	}
	return nil
}

// ValidateFilePathAndExtension validates both path and file extension
func ValidateFilePathAndExtension(path string, allowedExts []string) error {
	if err := ValidateFilePath(path); err != nil {
		return err
	}
	if len(allowedExts) == 0 {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, allowedExt := range allowedExts {
		if ext == strings.ToLower(allowedExt) {
			return nil
		}
	}
	return fmt.Errorf("file extension %q not allowed, allowed extensions: %v", ext, allowedExts)
}

// ValidateOutputDir checks a directory the compiler will write into. The
// filesystem root is refused.
func ValidateOutputDir(dir string) error {
	if err := ValidateFilePath(dir); err != nil {
		return err
	}
	if filepath.Clean(dir) == string(filepath.Separator) {
		return fmt.Errorf("refusing to write into the filesystem root")
	}
	return nil
}

// ValidatePathComponent accepts a single file or directory name: no
// separators, no parent references and no null bytes.
func ValidatePathComponent(component string) error {
	if component == "" || component == "." {
		return fmt.Errorf("path component cannot be empty")
	}
	if strings.Contains(component, "\x00") {
		return fmt.Errorf("path component contains null byte")
	}
	if strings.Contains(component, "..") || strings.ContainsAny(component, `/\`) {
		return fmt.Errorf("invalid path component: %s", component)
	}
	return nil
}

// SecureJoinPath joins components onto base and fails if the result would
// leave base.
func SecureJoinPath(base string, components ...string) (string, error) {
	if err := ValidateFilePath(base); err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	for _, component := range components {
		if err := ValidatePathComponent(component); err != nil {
			return "", err
		}
	}

	result := filepath.Join(append([]string{base}, components...)...)
	relPath, err := filepath.Rel(filepath.Clean(base), result)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %s", result)
	}
	return result, nil
}
