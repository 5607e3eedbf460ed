// Package ignore provides gitignore-based file filtering using go-git
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the repo-level ignore file read in addition to .gitignore.
const FileName = ".catmigrateignore"

// Matcher provides gitignore-based file filtering relative to a root directory
type Matcher struct {
	root    string
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher for paths under root, layered as:
// 1. built-in defaults (.git, node_modules)
// 2. .gitignore files under root
// 3. root/.catmigrateignore
// 4. extra patterns (typically from configuration)
func NewMatcher(root string, extra ...string) (*Matcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var patterns []gitignore.Pattern
	for _, p := range []string{".git/", "node_modules/"} {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	// ReadPatterns walks root and collects every nested .gitignore
	if gitPatterns, err := gitignore.ReadPatterns(osfs.New(absRoot), nil); err == nil {
		patterns = append(patterns, gitPatterns...)
	}

	if filePatterns, err := readIgnoreFile(filepath.Join(absRoot, FileName)); err == nil {
		for _, p := range filePatterns {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
	}

	for _, p := range extra {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
	}

	return &Matcher{root: absRoot, matcher: gitignore.NewMatcher(patterns)}, nil
}

// readIgnoreFile reads patterns from a gitignore-syntax text file
func readIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- fixed name under the migration root
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// IsIgnored checks if a file path should be ignored
func (m *Matcher) IsIgnored(path string) bool {
	return m.match(path, false)
}

// IsIgnoredDir checks if a directory should be skipped during traversal
func (m *Matcher) IsIgnoredDir(path string) bool {
	return m.match(path, true)
}

func (m *Matcher) match(path string, isDir bool) bool {
	if m == nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(m.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	parts := splitPath(filepath.ToSlash(rel))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return []string{}
	}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
