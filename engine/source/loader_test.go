package source

import (
	"context"
	"testing"

	"github.com/compozy/lintcompose/engine/catalog"
	"github.com/compozy/lintcompose/engine/core"
	"github.com/compozy/lintcompose/engine/layer"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlProvider = `
name: team/rules
files: ["src/**/*.ts"]
rules:
  eqeqeq: [error, always]
  no-console: 1
`

const tomlProvider = `
[[layers]]
name = "first"
[layers.rules]
curly = "error"

[[layers]]
name = "second"
files = ["*.spec.ts"]
[layers.rules]
curly = 0
`

const jsonProvider = `[
  {"rules": {"no-var": 2}},
  {"files": [], "linterOptions": {"reportUnusedDisableDirectives": "warn"}}
]`

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestDetectFormat(t *testing.T) {
	t.Run("Should map extensions to formats", func(t *testing.T) {
		for path, want := range map[string]Format{
			"a.yaml": FormatYAML,
			"a.YML":  FormatYAML,
			"a.toml": FormatTOML,
			"a.json": FormatJSON,
		} {
			got, err := DetectFormat(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("Should reject unknown extensions", func(t *testing.T) {
		_, err := DetectFormat("rules.ini")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestFileProvider(t *testing.T) {
	fs := newFs(t, map[string]string{
		"providers/team.yaml":  yamlProvider,
		"providers/split.toml": tomlProvider,
		"providers/env.json":   jsonProvider,
		"providers/bad.yaml":   "rules: [unclosed",
	})
	loader := NewLoader(fs)

	t.Run("Should load a YAML single-layer export", func(t *testing.T) {
		p := loader.RequiredProvider("providers/team.yaml")
		assert.Equal(t, "team", p.Name())
		assert.True(t, p.Required())
		export, err := p.Export()
		require.NoError(t, err)
		layers := export.Layers()
		require.Len(t, layers, 1)
		assert.Equal(t, "team/rules", layers[0].Name)
		assert.Equal(t, []string{"src/**/*.ts"}, layers[0].Files)
		assert.Equal(t, layer.Rule(layer.SeverityError, "always"), layers[0].Rules["eqeqeq"])
		assert.Equal(t, layer.SeverityWarn, layers[0].Rules["no-console"].Severity)
	})

	t.Run("Should load a TOML layers sequence", func(t *testing.T) {
		export, err := loader.Provider("providers/split.toml").Export()
		require.NoError(t, err)
		layers := export.Layers()
		require.Len(t, layers, 2)
		assert.Nil(t, layers[0].Files)
		assert.Equal(t, layer.SeverityError, layers[0].Rules["curly"].Severity)
		assert.Equal(t, []string{"*.spec.ts"}, layers[1].Files)
		assert.Equal(t, layer.SeverityOff, layers[1].Rules["curly"].Severity)
	})

	t.Run("Should load a JSON array export", func(t *testing.T) {
		export, err := loader.Provider("providers/env.json").Export()
		require.NoError(t, err)
		layers := export.Layers()
		require.Len(t, layers, 2)
		assert.Equal(t, layer.SeverityError, layers[0].Rules["no-var"].Severity)
		assert.True(t, layers[1].IsGlobal())
	})

	t.Run("Should report missing files as unavailable", func(t *testing.T) {
		_, err := loader.Provider("providers/missing.yaml").Export()
		assert.ErrorIs(t, err, catalog.ErrUnavailable)
	})

	t.Run("Should report parse errors", func(t *testing.T) {
		_, err := loader.Provider("providers/bad.yaml").Export()
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, FormatYAML, perr.Format)
	})

	t.Run("Should feed the catalog builder", func(t *testing.T) {
		providers := []catalog.Provider{
			loader.RequiredProvider("providers/team.yaml"),
			loader.Provider("providers/missing.yaml"),
			loader.Provider("providers/split.toml"),
		}
		groups, err := catalog.BuildCatalog(context.Background(), providers)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, 3, catalog.Count(groups))
	})

	t.Run("Should fail the build for a missing required file", func(t *testing.T) {
		_, err := catalog.BuildCatalog(context.Background(), []catalog.Provider{
			loader.RequiredProvider("providers/missing.yaml"),
		})
		cfgErr, ok := core.AsConfigurationError(err)
		require.True(t, ok)
		assert.Equal(t, core.ErrCodeMissingProvider, cfgErr.Code)
	})
}

func TestLoaderProviders(t *testing.T) {
	fs := newFs(t, map[string]string{
		"p/b.yaml": "rules: {a: warn}",
		"p/a.yaml": "rules: {a: error}",
		"p/c.json": `{"rules": {"a": "off"}}`,
	})
	loader := NewLoader(fs)

	t.Run("Should expand globs in sorted order and keep pattern order", func(t *testing.T) {
		providers, err := loader.Providers([]string{"p/c.json", "p/*.yaml"}, false)
		require.NoError(t, err)
		names := make([]string, len(providers))
		for i, p := range providers {
			names[i] = p.Name()
		}
		assert.Equal(t, []string{"c", "a", "b"}, names)
	})

	t.Run("Should not repeat files matched twice", func(t *testing.T) {
		providers, err := loader.Providers([]string{"p/a.yaml", "p/*.yaml"}, true)
		require.NoError(t, err)
		assert.Len(t, providers, 2)
		assert.True(t, providers[0].Required())
	})

	t.Run("Should match nested directories with a double star", func(t *testing.T) {
		nested := NewLoader(newFs(t, map[string]string{
			"rules/a.yaml":       "rules: {a: warn}",
			"rules/team/b.yaml":  "rules: {b: warn}",
			"rules/team/x/c.yml": "rules: {c: warn}",
			"rules/notes.txt":    "",
		}))
		paths, err := nested.Expand([]string{"rules/**/*.yaml"})
		require.NoError(t, err)
		assert.Equal(t, []string{"rules/a.yaml", "rules/team/b.yaml"}, paths)
	})

	t.Run("Should expand brace alternatives", func(t *testing.T) {
		paths, err := loader.Expand([]string{"p/*.{json,yaml}"})
		require.NoError(t, err)
		assert.Equal(t, []string{"p/a.yaml", "p/b.yaml", "p/c.json"}, paths)
	})
}
