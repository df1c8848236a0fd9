package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob expands a doublestar pattern (e.g. "assets/**/*.png") into Path
// sources for regular files, in lexical order. A pattern without wildcards is
// returned as a single Path source.
func Glob(pattern string) ([]Source, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []Source{Path(pattern)}, nil
	}

	base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
	matches, err := doublestar.Glob(os.DirFS(base), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expand pattern %s: %w", pattern, err)
	}

	sort.Strings(matches)

	sources := make([]Source, 0, len(matches))
	for _, match := range matches {
		sources = append(sources, Path(filepath.Join(base, filepath.FromSlash(match))))
	}
	return sources, nil
}
