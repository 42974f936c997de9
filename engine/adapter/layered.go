// Package adapter turns a composed layer sequence into the two emitted
// shapes: the ordered-layer config and the legacy single-object config.
package adapter

import (
	"maps"
	"slices"

	"github.com/compozy/lintcompose/engine/layer"
)

// EnvironmentLayerPrefix names the trailing layer added by ToLayered.
const EnvironmentLayerPrefix = "environment/"

// ToLayered returns a copy of seq followed by one layer carrying the
// environment globals and reporting options. The trailing layer is global
// unless env.Files scopes it. Nothing is appended for an empty environment.
func ToLayered(seq []layer.Layer, env Environment) []layer.Layer {
	out := layer.CloneAll(seq)
	if env.IsZero() {
		return out
	}
	name := env.Name
	if name == "" {
		name = "default"
	}
	trailing := layer.Layer{
		Name:  EnvironmentLayerPrefix + name,
		Files: []string{},
	}
	if env.Files != nil {
		trailing.Files = slices.Clone(env.Files)
	}
	if len(env.Globals) > 0 {
		trailing.LanguageOptions = &layer.LanguageOptions{Globals: maps.Clone(env.Globals)}
	}
	if env.ReportUnusedDisableDirectives != "" {
		trailing.LinterOptions = &layer.LinterOptions{
			ReportUnusedDisableDirectives: env.ReportUnusedDisableDirectives,
		}
	}
	return append(out, trailing)
}

// ResolveLayered returns the rules in effect for file under last-wins
// precedence: every layer whose scope matches contributes in order.
func ResolveLayered(seq []layer.Layer, file string) layer.Rules {
	out := layer.Rules{}
	for i := range seq {
		if !layer.MatchFile(seq[i].Files, file) {
			continue
		}
		maps.Copy(out, seq[i].Rules)
	}
	return out
}
