package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/compozy/lintcompose/engine/catalog"
)

// FileProvider is a provider backed by a document on disk. Its name is the
// file name without extension.
type FileProvider struct {
	loader   *Loader
	path     string
	required bool
}

// Provider returns an optional provider for path.
func (l *Loader) Provider(path string) *FileProvider {
	return &FileProvider{loader: l, path: path}
}

// RequiredProvider returns a provider for path that must exist and yield layers.
func (l *Loader) RequiredProvider(path string) *FileProvider {
	return &FileProvider{loader: l, path: path, required: true}
}

func (p *FileProvider) Name() string {
	base := filepath.Base(p.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (p *FileProvider) Required() bool { return p.required }

func (p *FileProvider) Path() string { return p.path }

func (p *FileProvider) Export() (catalog.Export, error) {
	raw, err := p.loader.Load(p.path)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
		}
		return nil, err
	}
	return catalog.DecodeExport(raw)
}

// Providers expands patterns and returns one provider per file, in order.
func (l *Loader) Providers(patterns []string, required bool) ([]catalog.Provider, error) {
	paths, err := l.Expand(patterns)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Provider, 0, len(paths))
	for _, p := range paths {
		fp := l.Provider(p)
		fp.required = required
		out = append(out, fp)
	}
	return out, nil
}
