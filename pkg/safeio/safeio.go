// Package safeio reads and writes migration targets without escaping the
// migration root or clobbering file permissions.
package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a path resolves outside its base directory.
var ErrOutsideBase = errors.New("file path is outside base directory")

// Contained reports whether filePath resolves to a location within baseDir
// and returns its absolute form.
func Contained(baseDir, filePath string) (string, error) {
	baseDirAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	filePathAbs, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	rel, err := filepath.Rel(baseDirAbs, filePathAbs)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("%s: %w", filePath, ErrOutsideBase)
	}
	return filePathAbs, nil
}

// ReadFileContained reads a file only if it is contained within baseDir.
// Read failures are returned unwrapped so callers can inspect *fs.PathError.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	abs, err := Contained(baseDir, filePath)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- abs has been verified to be contained within baseDir
	return os.ReadFile(abs)
}

// WriteFilePreservePerms writes data to path preserving existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return os.WriteFile(path, data, mode)
}
