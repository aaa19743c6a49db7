// Package security validates user-supplied file paths for CLI import and export.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath     = errors.New("file path cannot be empty")
	ErrForbiddenChar = errors.New("file path contains a forbidden character")
)

// shell metacharacters rejected in paths
const forbiddenChars = ";&|$`(){}<>!\n\r"

// ValidateFilePath cleans path, makes it absolute and resolves symlinks
// when the file exists.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("%w %q: %s", ErrForbiddenChar, path[i], path)
	}

	clean, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return clean, nil
		}
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}

// SafeReadFile reads a validated path.
func SafeReadFile(path string) ([]byte, error) {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(clean)
}

// SafeWriteFile writes data to a validated path with mode 0o600.
func SafeWriteFile(path string, data []byte) (string, error) {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(clean, data, 0o600); err != nil {
		return "", err
	}
	return clean, nil
}
