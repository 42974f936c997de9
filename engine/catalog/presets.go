package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/compozy/lintcompose/engine/layer"
	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Built-in provider names, in their default declaration order.
const (
	ProviderESLintRecommended      = "eslint/recommended"
	ProviderTSStylisticTypeChecked = "typescript-eslint/stylistic-type-checked"
	ProviderTSStrictTypeChecked    = "typescript-eslint/strict-type-checked"
	ProviderImportRecommended      = "import/recommended"
	ProviderImportTypeScript       = "import/typescript"
	ProviderSonarJSRecommended     = "sonarjs/recommended"
	ProviderPrettierRecommended    = "prettier/recommended"
	ProviderProjectOverrides       = "project/overrides"
	ProviderProjectSettings        = "project/settings"
)

// ParserOptions configures the parser assignment of the project layer.
type ParserOptions struct {
	Module          string
	ProjectService  bool
	TsconfigRootDir string
}

// Options tunes the built-in provider set.
type Options struct {
	// Files is the default scope given to the import/typescript layer.
	Files  []string
	Parser ParserOptions
	// Exclude drops optional built-in providers by name.
	Exclude []string
}

// DefaultOptions mirrors the reference project configuration.
func DefaultOptions() Options {
	return Options{
		Files: layer.DefaultFiles(),
		Parser: ParserOptions{
			Module:          "@typescript-eslint/parser",
			ProjectService:  true,
			TsconfigRootDir: "./tsconfig.json",
		},
	}
}

type presetProvider struct {
	name     string
	file     string
	required bool
	patch    func([]layer.Layer) []layer.Layer
}

func (p *presetProvider) Name() string   { return p.name }
func (p *presetProvider) Required() bool { return p.required }

func (p *presetProvider) Export() (Export, error) {
	raw, err := LoadPreset(p.file)
	if err != nil {
		return nil, err
	}
	export, err := DecodeExport(raw)
	if err != nil || export == nil || p.patch == nil {
		return export, err
	}
	return Sequence(p.patch(export.Layers())), nil
}

// Defaults returns the built-in providers in declaration order: base rules
// first, project overrides last.
func Defaults(opts Options) []Provider {
	all := []*presetProvider{
		{name: ProviderESLintRecommended, file: "eslint-recommended.yaml", required: true},
		{name: ProviderTSStylisticTypeChecked, file: "typescript-eslint-stylistic-type-checked.yaml"},
		{name: ProviderTSStrictTypeChecked, file: "typescript-eslint-strict-type-checked.yaml"},
		{name: ProviderImportRecommended, file: "import-recommended.yaml"},
		{name: ProviderImportTypeScript, file: "import-typescript.yaml", patch: scopeToFiles(opts.Files)},
		{name: ProviderSonarJSRecommended, file: "sonarjs-recommended.yaml"},
		{name: ProviderPrettierRecommended, file: "prettier-recommended.yaml"},
		{
			name:     ProviderProjectOverrides,
			file:     "project-overrides.yaml",
			required: true,
			patch:    assignParser(opts.Parser),
		},
		{name: ProviderProjectSettings, file: "project-settings.yaml"},
	}
	out := make([]Provider, 0, len(all))
	for _, p := range all {
		if !p.required && excluded(opts.Exclude, p.name) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func excluded(names []string, name string) bool {
	id := ProviderID(name)
	for _, n := range names {
		if ProviderID(n) == id {
			return true
		}
	}
	return false
}

func scopeToFiles(files []string) func([]layer.Layer) []layer.Layer {
	return func(layers []layer.Layer) []layer.Layer {
		return layer.AddFilesAll(layers, files...)
	}
}

func assignParser(opts ParserOptions) func([]layer.Layer) []layer.Layer {
	return func(layers []layer.Layer) []layer.Layer {
		for i := range layers {
			lo := layers[i].LanguageOptions
			if lo == nil || lo.Parser == "" {
				continue
			}
			if opts.Module != "" {
				lo.Parser = opts.Module
			}
			if lo.ParserOptions == nil {
				lo.ParserOptions = map[string]any{}
			}
			lo.ParserOptions["projectService"] = opts.ProjectService
			if opts.TsconfigRootDir != "" {
				lo.ParserOptions["tsconfigRootDir"] = opts.TsconfigRootDir
			}
		}
		return layers
	}
}

// LoadPreset decodes an embedded preset document into generic YAML values.
func LoadPreset(file string) (any, error) {
	data, err := presetFS.ReadFile(path.Join("presets", file))
	if err != nil {
		return nil, fmt.Errorf("%w: preset %s: %w", ErrUnavailable, file, err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", file, err)
	}
	return raw, nil
}

// PresetFiles lists the embedded preset documents.
func PresetFiles() ([]string, error) {
	entries, err := fs.ReadDir(presetFS, "presets")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
