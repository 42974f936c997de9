package adapter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/compozy/lintcompose/engine/core"
	"github.com/compozy/lintcompose/engine/layer"
)

// LegacyConfig is the single-object configuration shape (.eslintrc).
type LegacyConfig struct {
	Parser                        string                        `json:"parser,omitempty"                        yaml:"parser,omitempty"`
	ParserOptions                 map[string]any                `json:"parserOptions,omitempty"                 yaml:"parserOptions,omitempty"`
	Plugins                       []string                      `json:"plugins,omitempty"                       yaml:"plugins,omitempty"`
	Extends                       []string                      `json:"extends"                                 yaml:"extends"`
	Globals                       map[string]layer.GlobalAccess `json:"globals,omitempty"                       yaml:"globals,omitempty"`
	Settings                      map[string]any                `json:"settings,omitempty"                      yaml:"settings,omitempty"`
	ReportUnusedDisableDirectives bool                          `json:"reportUnusedDisableDirectives,omitempty" yaml:"reportUnusedDisableDirectives,omitempty"`
	Rules                         layer.Rules                   `json:"rules"                                   yaml:"rules"`
	Overrides                     []LegacyOverride              `json:"overrides,omitempty"                     yaml:"overrides,omitempty"`
}

// LegacyOverride is a file-scoped block of the legacy shape.
type LegacyOverride struct {
	Files         []string                      `json:"files"                   yaml:"files"`
	ExcludedFiles []string                      `json:"excludedFiles,omitempty" yaml:"excludedFiles,omitempty"`
	Parser        string                        `json:"parser,omitempty"        yaml:"parser,omitempty"`
	ParserOptions map[string]any                `json:"parserOptions,omitempty" yaml:"parserOptions,omitempty"`
	Globals       map[string]layer.GlobalAccess `json:"globals,omitempty"       yaml:"globals,omitempty"`
	Rules         layer.Rules                   `json:"rules"                   yaml:"rules"`
}

// AllFiles is the override scope used for global settings that must win over
// an earlier override.
var AllFiles = []string{"**"}

// ToLegacy reduces an ordered layer sequence into one legacy object with the
// same effective precedence as the sequence for every file.
//
// Global layers fold into the top-level object. Every scoped layer becomes an
// override in sequence order, with consecutive layers of identical scope
// coalesced. A global rule, global or parser setting that an earlier override
// already set is emitted as an override matching all files at its position,
// so it still wins over that override.
func ToLegacy(seq []layer.Layer) (*LegacyConfig, error) {
	b := &legacyBuilder{
		cfg: &LegacyConfig{
			Extends: []string{},
			Rules:   layer.Rules{},
		},
		rules:   map[string]bool{},
		globals: map[string]bool{},
	}
	for i := range seq {
		if err := b.add(&seq[i]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return b.cfg, nil
}

type legacyBuilder struct {
	cfg *LegacyConfig
	// keys already set by an emitted override
	rules   map[string]bool
	globals map[string]bool
	parser  bool
}

// scopedPart is what a layer contributes to an override.
type scopedPart struct {
	rules         layer.Rules
	globals       map[string]layer.GlobalAccess
	parser        string
	parserOptions map[string]any
}

func (p *scopedPart) empty() bool {
	return len(p.rules) == 0 && len(p.globals) == 0 && p.parser == "" && len(p.parserOptions) == 0
}

func partOf(l *layer.Layer) scopedPart {
	part := scopedPart{rules: l.Rules}
	lo := l.LanguageOptions
	if lo == nil {
		return part
	}
	part.globals = lo.Globals
	part.parser = lo.Parser
	opts := map[string]any{}
	maps.Copy(opts, core.CopyMap(lo.ParserOptions))
	if lo.SourceType != "" {
		opts["sourceType"] = lo.SourceType
	}
	if lo.EcmaVersion != "" {
		opts["ecmaVersion"] = lo.EcmaVersion
	}
	if len(opts) > 0 {
		part.parserOptions = opts
	}
	return part
}

func (b *legacyBuilder) add(l *layer.Layer) error {
	b.collectPreset(l)
	b.collectPlugins(l)
	if err := b.collectSettings(l); err != nil {
		return err
	}
	if l.LinterOptions != nil && l.LinterOptions.ReportUnusedDisableDirectives != "" {
		b.cfg.ReportUnusedDisableDirectives = l.LinterOptions.ReportUnusedDisableDirectives.Enabled()
	}

	part := partOf(l)
	if len(l.Files) == 0 {
		b.foldGlobal(part)
		return nil
	}
	if part.empty() {
		return nil
	}
	b.appendOverride(l.Files, part)
	for id := range part.rules {
		b.rules[id] = true
	}
	for name := range part.globals {
		b.globals[name] = true
	}
	if part.parser != "" || len(part.parserOptions) > 0 {
		b.parser = true
	}
	return nil
}

// foldGlobal merges a global layer into the top-level object, moving keys an
// earlier override shadows into an override over all files.
func (b *legacyBuilder) foldGlobal(part scopedPart) {
	var shadowed scopedPart
	for _, id := range part.rules.Keys() {
		entry := core.MustDeepCopy(part.rules[id])
		if b.rules[id] {
			if shadowed.rules == nil {
				shadowed.rules = layer.Rules{}
			}
			shadowed.rules[id] = entry
			continue
		}
		b.cfg.Rules[id] = entry
	}
	for name, access := range part.globals {
		if b.globals[name] {
			if shadowed.globals == nil {
				shadowed.globals = map[string]layer.GlobalAccess{}
			}
			shadowed.globals[name] = access
			continue
		}
		if b.cfg.Globals == nil {
			b.cfg.Globals = map[string]layer.GlobalAccess{}
		}
		b.cfg.Globals[name] = access
	}
	if b.parser {
		shadowed.parser = part.parser
		shadowed.parserOptions = part.parserOptions
	} else {
		if part.parser != "" {
			b.cfg.Parser = part.parser
		}
		if len(part.parserOptions) > 0 {
			if b.cfg.ParserOptions == nil {
				b.cfg.ParserOptions = map[string]any{}
			}
			maps.Copy(b.cfg.ParserOptions, part.parserOptions)
		}
	}
	if !shadowed.empty() {
		b.appendOverride(AllFiles, shadowed)
	}
}

func (b *legacyBuilder) appendOverride(files []string, part scopedPart) {
	include, exclude := splitPatterns(files)
	n := len(b.cfg.Overrides)
	if n > 0 {
		last := &b.cfg.Overrides[n-1]
		if slices.Equal(last.Files, include) && slices.Equal(last.ExcludedFiles, exclude) {
			mergeOverride(last, part)
			return
		}
	}
	o := LegacyOverride{
		Files:         include,
		ExcludedFiles: exclude,
		Rules:         layer.Rules{},
	}
	mergeOverride(&o, part)
	b.cfg.Overrides = append(b.cfg.Overrides, o)
}

func mergeOverride(o *LegacyOverride, part scopedPart) {
	maps.Copy(o.Rules, core.MustDeepCopy(part.rules))
	if len(part.globals) > 0 {
		if o.Globals == nil {
			o.Globals = map[string]layer.GlobalAccess{}
		}
		maps.Copy(o.Globals, part.globals)
	}
	if part.parser != "" {
		o.Parser = part.parser
	}
	if len(part.parserOptions) > 0 {
		if o.ParserOptions == nil {
			o.ParserOptions = map[string]any{}
		}
		maps.Copy(o.ParserOptions, core.CopyMap(part.parserOptions))
	}
}

// splitPatterns separates positive patterns from "!" exclusions, sorted so
// that identical scopes compare equal.
func splitPatterns(files []string) ([]string, []string) {
	var include, exclude []string
	for _, f := range files {
		if neg, ok := strings.CutPrefix(f, "!"); ok {
			exclude = append(exclude, neg)
			continue
		}
		include = append(include, f)
	}
	slices.Sort(include)
	slices.Sort(exclude)
	return slices.Compact(include), slices.Compact(exclude)
}

func (b *legacyBuilder) collectPreset(l *layer.Layer) {
	if l.Preset != "" && !slices.Contains(b.cfg.Extends, l.Preset) {
		b.cfg.Extends = append(b.cfg.Extends, l.Preset)
	}
}

func (b *legacyBuilder) collectPlugins(l *layer.Layer) {
	for _, name := range l.PluginNames() {
		if !slices.Contains(b.cfg.Plugins, name) {
			b.cfg.Plugins = append(b.cfg.Plugins, name)
		}
	}
}

func (b *legacyBuilder) collectSettings(l *layer.Layer) error {
	if len(l.Settings) == 0 {
		return nil
	}
	if b.cfg.Settings == nil {
		b.cfg.Settings = map[string]any{}
	}
	// mergo keeps references to src maps for absent keys, so merge a copy.
	if err := mergo.Merge(&b.cfg.Settings, core.CopyMap(l.Settings), mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge settings: %w", err)
	}
	return nil
}

// ResolveLegacy returns the rules in effect for file: the top-level rules,
// then every matching override in order.
func ResolveLegacy(cfg *LegacyConfig, file string) layer.Rules {
	out := layer.Rules{}
	if cfg == nil {
		return out
	}
	maps.Copy(out, cfg.Rules)
	for i := range cfg.Overrides {
		o := &cfg.Overrides[i]
		if !overrideMatches(o, file) {
			continue
		}
		maps.Copy(out, o.Rules)
	}
	return out
}

func overrideMatches(o *LegacyOverride, file string) bool {
	included := false
	for _, p := range o.Files {
		if layer.MatchFile([]string{p}, file) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range o.ExcludedFiles {
		if layer.MatchFile([]string{p}, file) {
			return false
		}
	}
	return true
}
