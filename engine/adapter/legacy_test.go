package adapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/compozy/lintcompose/engine/catalog"
	"github.com/compozy/lintcompose/engine/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleFiles = []string{
	"index.ts",
	"src/app.tsx",
	"src/lib/util.mts",
	"scripts/build.cts",
	"src/app.spec.ts",
	"test/fixtures/data.ts",
	"a.js",
	"lib/x.mjs",
	"docs/README.md",
}

func rules(kv ...any) layer.Rules {
	out := layer.Rules{}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = layer.Rule(kv[i+1].(layer.Severity))
	}
	return out
}

func toLegacy(t *testing.T, seq []layer.Layer) *LegacyConfig {
	t.Helper()
	cfg, err := ToLegacy(seq)
	require.NoError(t, err)
	return cfg
}

func requireEquivalent(t *testing.T, seq []layer.Layer, cfg *LegacyConfig) {
	t.Helper()
	for _, f := range sampleFiles {
		assert.Equal(t, ResolveLayered(seq, f), ResolveLegacy(cfg, f), "file %s", f)
	}
}

func TestToLegacy(t *testing.T) {
	t.Run("Should take the latest severity for a repeated global rule", func(t *testing.T) {
		seq := []layer.Layer{
			{Files: []string{}, Rules: rules("eqeqeq", layer.SeverityOff)},
			{Files: []string{}, Rules: rules("eqeqeq", layer.SeverityError)},
		}
		cfg := toLegacy(t, seq)
		assert.Equal(t, layer.SeverityError, cfg.Rules["eqeqeq"].Severity)
		assert.Empty(t, cfg.Overrides)
		requireEquivalent(t, seq, cfg)
	})

	t.Run("Should coalesce repeated default-scoped rules into one override", func(t *testing.T) {
		seq := layer.AddFilesAll([]layer.Layer{
			{Rules: rules("eqeqeq", layer.SeverityOff)},
			{Rules: rules("eqeqeq", layer.SeverityError)},
		})
		cfg := toLegacy(t, seq)
		assert.Empty(t, cfg.Rules)
		require.Len(t, cfg.Overrides, 1)
		assert.Equal(t, []string{"*.cts", "*.mts", "*.ts", "*.tsx"}, cfg.Overrides[0].Files)
		assert.Equal(t, layer.SeverityError, cfg.Overrides[0].Rules["eqeqeq"].Severity)
		requireEquivalent(t, seq, cfg)
	})

	t.Run("Should collect presets and plugins in order without duplicates", func(t *testing.T) {
		seq := []layer.Layer{
			{Preset: "eslint:recommended"},
			{Preset: "plugin:import/recommended", Plugins: map[string]string{"import": "eslint-plugin-import"}},
			{Preset: "plugin:import/recommended", Plugins: map[string]string{"import": "eslint-plugin-import"}},
			{Plugins: map[string]string{"promise": "eslint-plugin-promise", "@typescript-eslint": "x"}},
		}
		cfg := toLegacy(t, seq)
		assert.Equal(t, []string{"eslint:recommended", "plugin:import/recommended"}, cfg.Extends)
		assert.Equal(t, []string{"import", "@typescript-eslint", "promise"}, cfg.Plugins)
	})

	t.Run("Should deep merge settings without aliasing inputs", func(t *testing.T) {
		first := layer.Layer{Settings: map[string]any{"import/resolver": map[string]any{"node": true}}}
		second := layer.Layer{Settings: map[string]any{"import/resolver": map[string]any{"typescript": true}}}
		cfg := toLegacy(t, []layer.Layer{first, second})
		assert.Equal(t,
			map[string]any{"import/resolver": map[string]any{"node": true, "typescript": true}},
			cfg.Settings,
		)
		assert.Equal(t, map[string]any{"node": true}, first.Settings["import/resolver"])
	})

	t.Run("Should take the parser from the latest global layer assigning one", func(t *testing.T) {
		seq := []layer.Layer{
			{LanguageOptions: &layer.LanguageOptions{Parser: "espree", SourceType: "module"}},
			{LanguageOptions: &layer.LanguageOptions{
				Parser:        "@typescript-eslint/parser",
				ParserOptions: map[string]any{"projectService": true},
			}},
		}
		cfg := toLegacy(t, seq)
		assert.Equal(t, "@typescript-eslint/parser", cfg.Parser)
		assert.Equal(t, true, cfg.ParserOptions["projectService"])
		assert.Equal(t, "module", cfg.ParserOptions["sourceType"])
		assert.Empty(t, cfg.Overrides)
	})

	t.Run("Should keep a scoped parser inside its override", func(t *testing.T) {
		seq := []layer.Layer{
			{Files: []string{"*.js"}, LanguageOptions: &layer.LanguageOptions{Parser: "espree", EcmaVersion: "2020"}},
		}
		cfg := toLegacy(t, seq)
		assert.Empty(t, cfg.Parser)
		assert.Empty(t, cfg.ParserOptions)
		require.Len(t, cfg.Overrides, 1)
		assert.Equal(t, "espree", cfg.Overrides[0].Parser)
		assert.Equal(t, "2020", cfg.Overrides[0].ParserOptions["ecmaVersion"])
	})

	t.Run("Should scope a global parser to all files after a scoped parser", func(t *testing.T) {
		seq := []layer.Layer{
			{Files: []string{"*.js"}, LanguageOptions: &layer.LanguageOptions{Parser: "espree"}},
			{Files: []string{}, LanguageOptions: &layer.LanguageOptions{Parser: "@typescript-eslint/parser"}},
		}
		cfg := toLegacy(t, seq)
		assert.Empty(t, cfg.Parser)
		require.Len(t, cfg.Overrides, 2)
		assert.Equal(t, AllFiles, cfg.Overrides[1].Files)
		assert.Equal(t, "@typescript-eslint/parser", cfg.Overrides[1].Parser)
	})

	t.Run("Should map the unused directive severity to a flag", func(t *testing.T) {
		seq := []layer.Layer{{LinterOptions: &layer.LinterOptions{ReportUnusedDisableDirectives: layer.SeverityWarn}}}
		assert.True(t, toLegacy(t, seq).ReportUnusedDisableDirectives)
		seq = append(seq, layer.Layer{LinterOptions: &layer.LinterOptions{ReportUnusedDisableDirectives: layer.SeverityOff}})
		assert.False(t, toLegacy(t, seq).ReportUnusedDisableDirectives)
	})

	t.Run("Should turn scoped layers into overrides in order", func(t *testing.T) {
		seq := layer.AddFilesAll([]layer.Layer{
			{Rules: rules("eqeqeq", layer.SeverityWarn)},
			{Files: []string{"*.ts"}, Rules: rules("eqeqeq", layer.SeverityError)},
		})
		cfg := toLegacy(t, seq)
		assert.Empty(t, cfg.Rules)
		require.Len(t, cfg.Overrides, 2)
		assert.Equal(t, []string{"*.ts"}, cfg.Overrides[1].Files)
		assert.Equal(t, layer.SeverityError, ResolveLegacy(cfg, "src/a.ts")["eqeqeq"].Severity)
		assert.Equal(t, layer.SeverityWarn, ResolveLegacy(cfg, "src/a.tsx")["eqeqeq"].Severity)
		requireEquivalent(t, seq, cfg)
	})

	t.Run("Should not apply default-scoped rules to other files", func(t *testing.T) {
		seq := layer.AddFilesAll([]layer.Layer{
			{Rules: rules("eqeqeq", layer.SeverityWarn)},
			{Files: []string{"*.js"}, Rules: rules("curly", layer.SeverityError)},
		})
		cfg := toLegacy(t, seq)
		assert.Equal(t, rules("curly", layer.SeverityError), ResolveLegacy(cfg, "a.js"))
		assert.Empty(t, ResolveLegacy(cfg, "docs/README.md"))
		requireEquivalent(t, seq, cfg)
	})

	t.Run("Should let a later global layer win over an earlier override everywhere", func(t *testing.T) {
		seq := []layer.Layer{
			{Files: []string{"*.js"}, Rules: rules("R", layer.SeverityError)},
			{Files: []string{}, Rules: rules("R", layer.SeverityOff, "S", layer.SeverityWarn)},
		}
		cfg := toLegacy(t, seq)
		assert.Equal(t, rules("S", layer.SeverityWarn), cfg.Rules)
		require.Len(t, cfg.Overrides, 2)
		assert.Equal(t, AllFiles, cfg.Overrides[1].Files)
		assert.Equal(t, layer.SeverityOff, ResolveLegacy(cfg, "a.js")["R"].Severity)
		assert.Equal(t, layer.SeverityOff, ResolveLegacy(cfg, "lib/x.mjs")["R"].Severity)
		requireEquivalent(t, seq, cfg)
	})

	t.Run("Should keep a later global rule ahead of an earlier override", func(t *testing.T) {
		seq := []layer.Layer{
			{Files: []string{}, Rules: rules("R", layer.SeverityOff)},
			{Files: []string{"**/*.spec.ts"}, Rules: rules("R", layer.SeverityError)},
			{Files: []string{}, Rules: rules("R", layer.SeverityWarn, "S", layer.SeverityError)},
			{Files: []string{"**/*.spec.ts"}, Rules: rules("R", layer.SeverityError)},
		}
		cfg := toLegacy(t, seq)
		assert.Equal(t, layer.SeverityOff, cfg.Rules["R"].Severity)
		assert.Equal(t, layer.SeverityError, cfg.Rules["S"].Severity)
		require.Len(t, cfg.Overrides, 3)
		assert.Equal(t, layer.SeverityWarn, ResolveLegacy(cfg, "src/a.ts")["R"].Severity)
		assert.Equal(t, layer.SeverityWarn, ResolveLegacy(cfg, "a.js")["R"].Severity)
		assert.Equal(t, layer.SeverityError, ResolveLegacy(cfg, "src/app.spec.ts")["R"].Severity)
		requireEquivalent(t, seq, cfg)
	})

	t.Run("Should scope shadowed globals to all files", func(t *testing.T) {
		seq := []layer.Layer{
			{Files: []string{"*.js"}, LanguageOptions: &layer.LanguageOptions{
				Globals: map[string]layer.GlobalAccess{"window": layer.GlobalWritable},
			}},
			{Files: []string{}, LanguageOptions: &layer.LanguageOptions{
				Globals: map[string]layer.GlobalAccess{"window": layer.GlobalOff, "process": layer.GlobalReadonly},
			}},
		}
		cfg := toLegacy(t, seq)
		assert.Equal(t, map[string]layer.GlobalAccess{"process": layer.GlobalReadonly}, cfg.Globals)
		require.Len(t, cfg.Overrides, 2)
		assert.Equal(t, map[string]layer.GlobalAccess{"window": layer.GlobalOff}, cfg.Overrides[1].Globals)
	})

	t.Run("Should coalesce consecutive overrides with the same scope", func(t *testing.T) {
		seq := []layer.Layer{
			{Files: []string{"*.tsx", "*.ts"}, Rules: rules("A", layer.SeverityWarn)},
			{Files: []string{"*.ts", "*.tsx"}, Rules: rules("A", layer.SeverityError, "B", layer.SeverityWarn)},
		}
		cfg := toLegacy(t, seq)
		require.Len(t, cfg.Overrides, 1)
		assert.Equal(t, rules("A", layer.SeverityError, "B", layer.SeverityWarn), cfg.Overrides[0].Rules)
		requireEquivalent(t, seq, cfg)
	})

	t.Run("Should express negated patterns as excluded files", func(t *testing.T) {
		seq := []layer.Layer{
			{Files: []string{}, Rules: rules("A", layer.SeverityOff)},
			{Files: []string{"**/*.ts", "!**/*.spec.ts"}, Rules: rules("A", layer.SeverityError)},
		}
		cfg := toLegacy(t, seq)
		require.Len(t, cfg.Overrides, 1)
		assert.Equal(t, []string{"**/*.ts"}, cfg.Overrides[0].Files)
		assert.Equal(t, []string{"**/*.spec.ts"}, cfg.Overrides[0].ExcludedFiles)
		requireEquivalent(t, seq, cfg)
	})

	t.Run("Should always emit extends and rules", func(t *testing.T) {
		data, err := json.Marshal(toLegacy(t, nil))
		require.NoError(t, err)
		assert.JSONEq(t, `{"extends":[],"rules":{}}`, string(data))
	})
}

func TestLegacyEquivalence(t *testing.T) {
	t.Run("Should resolve the built-in catalog identically in both shapes", func(t *testing.T) {
		groups, err := catalog.BuildCatalog(context.Background(), catalog.Defaults(catalog.DefaultOptions()))
		require.NoError(t, err)
		var seq []layer.Layer
		for _, g := range layer.NormalizeGroups(groups) {
			seq = append(seq, g...)
		}
		env, err := LookupEnvironment("node")
		require.NoError(t, err)
		layered := ToLayered(seq, env)
		cfg := toLegacy(t, layered)
		requireEquivalent(t, layered, cfg)

		resolved := ResolveLegacy(cfg, "src/index.ts")
		assert.Equal(t, layer.SeverityWarn, resolved["eqeqeq"].Severity)
		assert.Equal(t, layer.SeverityError, resolved["curly"].Severity)
		assert.Equal(t, layer.SeverityOff, resolved["no-undef"].Severity)
		assert.Equal(t, layer.GlobalReadonly, cfg.Globals["process"])
		assert.Empty(t, cfg.Parser)
		var parser LegacyOverride
		for _, o := range cfg.Overrides {
			if o.Parser != "" {
				parser = o
			}
		}
		assert.Equal(t, "@typescript-eslint/parser", parser.Parser)
		assert.Equal(t, true, parser.ParserOptions["projectService"])
		assert.Contains(t, cfg.Extends, "plugin:@typescript-eslint/strict-type-checked")
		assert.Equal(t, []string{"@typescript-eslint", "import", "sonarjs", "prettier", "promise"}, cfg.Plugins)
	})
}
