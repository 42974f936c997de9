// Package layer defines the configuration layer, the unit the composer orders
// and the adapters emit.
//
// A layer scopes rule severities, parser assignment and plugin bindings to a
// set of file patterns. Files == nil means "not yet scoped"; a non-nil empty
// Files slice means the layer applies to every file.
package layer

import (
	"maps"
	"slices"

	"github.com/compozy/lintcompose/engine/core"
)

// GlobalAccess describes how a global identifier may be used.
type GlobalAccess string

const (
	GlobalReadonly GlobalAccess = "readonly"
	GlobalWritable GlobalAccess = "writable"
	GlobalOff      GlobalAccess = "off"
)

// Layer is one scoped configuration block.
type Layer struct {
	// Name is a diagnostic label, emitted as the flat-config `name`.
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	// Preset is the named preset the layer was taken from; it feeds legacy `extends`.
	Preset          string            `json:"-"                         yaml:"-"                         mapstructure:"preset"`
	Files           []string          `json:"files,omitempty"           yaml:"files,omitempty"           mapstructure:"files"           validate:"omitempty,dive,required,glob"`
	Rules           Rules             `json:"rules,omitempty"           yaml:"rules,omitempty"           mapstructure:"rules"           validate:"dive"`
	LanguageOptions *LanguageOptions  `json:"languageOptions,omitempty" yaml:"languageOptions,omitempty" mapstructure:"languageOptions" validate:"omitempty"`
	LinterOptions   *LinterOptions    `json:"linterOptions,omitempty"   yaml:"linterOptions,omitempty"   mapstructure:"linterOptions"   validate:"omitempty"`
	Plugins         map[string]string `json:"plugins,omitempty"         yaml:"plugins,omitempty"         mapstructure:"plugins"         validate:"dive,required"`
	Settings        map[string]any    `json:"settings,omitempty"        yaml:"settings,omitempty"        mapstructure:"settings"`
}

// LanguageOptions carries the parser assignment of a layer.
type LanguageOptions struct {
	Parser        string                  `json:"parser,omitempty"        yaml:"parser,omitempty"        mapstructure:"parser"`
	ParserOptions map[string]any          `json:"parserOptions,omitempty" yaml:"parserOptions,omitempty" mapstructure:"parserOptions"`
	SourceType    string                  `json:"sourceType,omitempty"    yaml:"sourceType,omitempty"    mapstructure:"sourceType"    validate:"omitempty,oneof=module script commonjs"`
	EcmaVersion   string                  `json:"ecmaVersion,omitempty"   yaml:"ecmaVersion,omitempty"   mapstructure:"ecmaVersion"`
	Globals       map[string]GlobalAccess `json:"globals,omitempty"       yaml:"globals,omitempty"       mapstructure:"globals"       validate:"dive,oneof=readonly writable off"`
}

// LinterOptions are engine-level reporting options.
type LinterOptions struct {
	ReportUnusedDisableDirectives Severity `json:"reportUnusedDisableDirectives,omitempty" yaml:"reportUnusedDisableDirectives,omitempty" mapstructure:"reportUnusedDisableDirectives" validate:"omitempty,severity"`
}

// Clone returns a deep copy of the layer.
func (l Layer) Clone() Layer {
	return core.MustDeepCopy(l)
}

// HasParser reports whether the layer assigns a parser.
func (l *Layer) HasParser() bool {
	return l.LanguageOptions != nil && l.LanguageOptions.Parser != ""
}

// IsGlobal reports whether the layer was explicitly left unscoped.
func (l *Layer) IsGlobal() bool {
	return l.Files != nil && len(l.Files) == 0
}

// IsScoped reports whether the layer carries a file scope, global or not.
func (l *Layer) IsScoped() bool {
	return l.Files != nil
}

// PluginNames returns the bound plugin names in sorted order.
func (l *Layer) PluginNames() []string {
	return slices.Sorted(maps.Keys(l.Plugins))
}

// CloneAll deep-copies a sequence of layers.
func CloneAll(layers []Layer) []Layer {
	if layers == nil {
		return nil
	}
	out := make([]Layer, len(layers))
	for i := range layers {
		out[i] = layers[i].Clone()
	}
	return out
}
