// Package security checks user-supplied names before they reach the
// filesystem.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePathWithinDirectory checks if a file path is within a safe directory.
// It prevents path traversal by ensuring the resolved path doesn't escape the
// safe directory, including through symlinks. Neither path needs to exist.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	canonicalPath, err := canonicalize(filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	canonicalSafeDir, err := canonicalize(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	relPath, err := filepath.Rel(canonicalSafeDir, canonicalPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}
	return nil
}

// canonicalize returns the absolute form of path with symlinks resolved. For
// a path that does not exist yet, the nearest existing ancestor is resolved
// and the remaining components are appended to it, so a link such as
// safe/evil -> /etc is followed even when safe/evil/newfile is not there.
func canonicalize(path string) (string, error) {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved, nil
	}

	checkPath := absPath
	for {
		parentDir := filepath.Dir(checkPath)
		if parentDir == checkPath {
			return absPath, nil
		}
		if resolved, err := filepath.EvalSymlinks(parentDir); err == nil {
			relToParent, err := filepath.Rel(parentDir, absPath)
			if err != nil {
				return "", err
			}
			return filepath.Join(resolved, relToParent), nil
		}
		checkPath = parentDir
	}
}

// ValidatePrefix checks that an output prefix names files inside outDir. A
// prefix may include subdirectories, as in "results/movie1", but must be
// relative and must not climb out of outDir. An empty outDir means the
// working directory.
func ValidatePrefix(outDir, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("output prefix is empty")
	}
	if strings.ContainsRune(prefix, 0) {
		return fmt.Errorf("output prefix %q contains a NUL byte", prefix)
	}
	if filepath.IsAbs(prefix) {
		return fmt.Errorf("output prefix %q must be relative to the output directory", prefix)
	}
	if outDir == "" {
		outDir = "."
	}
	if err := ValidatePathWithinDirectory(filepath.Join(outDir, prefix), outDir); err != nil {
		return fmt.Errorf("output prefix %q: %w", prefix, err)
	}
	return nil
}
