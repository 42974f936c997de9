package layer

import (
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultFiles returns the TypeScript source patterns given to unscoped layers.
func DefaultFiles() []string {
	return []string{"*.ts", "*.tsx", "*.mts", "*.cts"}
}

// AddFiles returns a copy of l scoped to defaults when l carries no file
// scope. Layers that already declare files, including an explicit empty
// (global) list, are returned unchanged. The input is never mutated.
func AddFiles(l Layer, defaults ...string) Layer {
	out := l.Clone()
	if out.Files != nil {
		return out
	}
	if len(defaults) == 0 {
		defaults = DefaultFiles()
	}
	out.Files = slices.Clone(defaults)
	return out
}

// AddFilesAll applies AddFiles to every layer of a sequence.
func AddFilesAll(layers []Layer, defaults ...string) []Layer {
	out := make([]Layer, len(layers))
	for i := range layers {
		out[i] = AddFiles(layers[i], defaults...)
	}
	return out
}

// SameFiles reports whether two file scopes hold the same patterns,
// irrespective of order and duplicates. A global scope only equals another
// global scope.
func SameFiles(a, b []string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return slices.Equal(normalizePatterns(a), normalizePatterns(b))
}

func normalizePatterns(patterns []string) []string {
	out := slices.Clone(patterns)
	slices.Sort(out)
	return slices.Compact(out)
}

// FilesKey returns a stable identity for a file scope.
func FilesKey(files []string) string {
	if files == nil {
		return "<unscoped>"
	}
	if len(files) == 0 {
		return "<global>"
	}
	return strings.Join(normalizePatterns(files), "\x00")
}

// MatchFile reports whether a file path falls inside a layer scope.
//
// An unscoped or global scope matches everything. Patterns without a slash
// match the base name in any directory. A pattern prefixed with "!" removes
// previously matched paths; the last matching pattern wins.
func MatchFile(files []string, file string) bool {
	if len(files) == 0 {
		return true
	}
	file = strings.TrimPrefix(path.Clean(strings.ReplaceAll(file, "\\", "/")), "./")
	matched := false
	for _, pattern := range files {
		negate := strings.HasPrefix(pattern, "!")
		pattern = strings.TrimPrefix(pattern, "!")
		if matchPattern(pattern, file) {
			matched = !negate
		}
	}
	return matched
}

func matchPattern(pattern, file string) bool {
	pattern = strings.TrimPrefix(pattern, "./")
	if !strings.Contains(pattern, "/") {
		ok, err := doublestar.Match(pattern, path.Base(file))
		return err == nil && ok
	}
	ok, err := doublestar.Match(pattern, file)
	return err == nil && ok
}

// ValidPattern reports whether a file pattern is well formed.
func ValidPattern(pattern string) bool {
	pattern = strings.TrimPrefix(pattern, "!")
	if pattern == "" {
		return false
	}
	return doublestar.ValidatePattern(pattern)
}

// NormalizeGroups applies AddFiles to every layer of every group, keeping the
// group structure.
func NormalizeGroups(groups [][]Layer, defaults ...string) [][]Layer {
	out := make([][]Layer, len(groups))
	for i := range groups {
		out[i] = AddFilesAll(groups[i], defaults...)
	}
	return out
}
