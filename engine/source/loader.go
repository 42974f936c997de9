// Package source loads provider exports from YAML, TOML or JSON files.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format is a provider file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported provider file format")

// ParseError reports a document that could not be decoded.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s provider %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DetectFormat infers the encoding from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Loader reads provider documents from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader over fs; nil means the OS filesystem.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

// Load reads and decodes one provider document into generic values.
// Missing files are reported with an error matching os.ErrNotExist.
func (l *Loader) Load(path string) (any, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading provider file %s: %w", path, err)
	}
	return Parse(format, path, data)
}

// Parse decodes data in the given format.
func Parse(format Format, path string, data []byte) (any, error) {
	var raw any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		var doc map[string]any
		err = toml.Unmarshal(data, &doc)
		if doc != nil {
			raw = doc
		}
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}
	return raw, nil
}

// Expand resolves glob patterns against the filesystem, keeping the order of
// patterns and sorting the matches of each one. Patterns use doublestar
// syntax, so "**" spans directories. Plain paths are kept as given so that
// missing files surface when the provider is resolved.
func (l *Loader) Expand(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[{") {
			out = appendPath(out, p)
			continue
		}
		matches, err := l.glob(filepath.ToSlash(p))
		if err != nil {
			return nil, fmt.Errorf("expanding provider pattern %q: %w", p, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			out = appendPath(out, m)
		}
	}
	return out, nil
}

// glob matches pattern below its static prefix, which may be absolute or
// relative to the working directory.
func (l *Loader) glob(pattern string) ([]string, error) {
	base, rest := doublestar.SplitPattern(pattern)
	fsys := l.fs
	if base != "." {
		fsys = afero.NewBasePathFs(l.fs, filepath.FromSlash(base))
	}
	matches, err := doublestar.Glob(afero.NewIOFS(fsys), rest, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = filepath.FromSlash(path.Join(base, m))
	}
	return matches, nil
}

func appendPath(list []string, p string) []string {
	if slices.Contains(list, p) {
		return list
	}
	return append(list, p)
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
