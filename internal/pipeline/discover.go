package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Sentinel errors for project directory validation. Both are fatal: they
// abort the run before any unit is processed.
var (
	ErrProjectNotFound = errors.New("project directory does not exist")
	ErrNotADirectory   = errors.New("project path is not a directory")
)

// Discover resolves pattern against projectDir and returns the matching
// regular files, sorted lexicographically so repeated runs over an unchanged
// directory group frames identically. Patterns use doublestar semantics, so
// "GridSquare_*/Data/*.mrc" and "**/*.tif" both work. An empty match is not
// an error.
func Discover(projectDir, pattern string) ([]string, error) {
	fi, err := os.Stat(projectDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectDir)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, projectDir)
	}

	matches, err := doublestar.Glob(os.DirFS(projectDir), pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		full := filepath.Join(projectDir, m)
		if fi, err := os.Stat(full); err == nil && fi.Mode().IsRegular() {
			files = append(files, full)
		}
	}
	sort.Strings(files)
	return files, nil
}
