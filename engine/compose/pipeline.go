package compose

import (
	"context"
	"fmt"

	"github.com/compozy/lintcompose/engine/adapter"
	"github.com/compozy/lintcompose/engine/catalog"
	"github.com/compozy/lintcompose/engine/core"
	"github.com/compozy/lintcompose/engine/layer"
	"github.com/compozy/lintcompose/pkg/logger"
)

// Options configures a pipeline run.
type Options struct {
	// DefaultFiles scopes layers that declare no files. Defaults to
	// layer.DefaultFiles().
	DefaultFiles    []string
	Environment     adapter.Environment
	DetectConflicts bool
}

// Result is the artifact of one pipeline run. Layers is the composed
// sequence before adaptation; Fingerprint is a content hash of Layered.
type Result struct {
	Layers      []layer.Layer
	Layered     []layer.Layer
	Legacy      *adapter.LegacyConfig
	Warnings    []PatternConflictWarning
	Fingerprint string
}

// Pipeline runs Catalog -> Normalize -> Compose -> Adapt.
type Pipeline struct {
	opts Options
}

func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

func (p *Pipeline) defaultFiles() []string {
	if len(p.opts.DefaultFiles) > 0 {
		return p.opts.DefaultFiles
	}
	return layer.DefaultFiles()
}

// Run builds the catalog from providers and emits both output shapes.
// Identical inputs produce deep-equal results.
func (p *Pipeline) Run(ctx context.Context, providers []catalog.Provider) (*Result, error) {
	log := logger.FromContext(ctx)
	groups, err := catalog.BuildCatalog(ctx, providers)
	if err != nil {
		return nil, fmt.Errorf("failed to build layer catalog: %w", err)
	}
	files := p.defaultFiles()
	seq := Compose(layer.NormalizeGroups(groups, files...))
	log.Debug("Layers composed", "providers", len(groups), "layers", len(seq))

	var warnings []PatternConflictWarning
	if p.opts.DetectConflicts {
		warnings = DetectConflicts(seq)
		for i := range warnings {
			w := &warnings[i]
			log.Warn("Pattern conflict",
				"rule", w.Rule,
				"earlier", w.Earlier,
				"earlier_severity", w.EarlierSeverity,
				"later", w.Later,
				"later_severity", w.LaterSeverity,
			)
		}
	}

	layered := adapter.ToLayered(seq, p.opts.Environment)
	legacy, err := adapter.ToLegacy(layered)
	if err != nil {
		return nil, fmt.Errorf("failed to build legacy configuration: %w", err)
	}
	fingerprint, err := core.Fingerprint(layered)
	if err != nil {
		return nil, err
	}
	log.Debug("Configuration adapted",
		"fingerprint", fingerprint,
		"layered", len(layered),
		"legacy_rules", len(legacy.Rules),
		"legacy_overrides", len(legacy.Overrides),
	)
	return &Result{
		Layers:      seq,
		Layered:     layered,
		Legacy:      legacy,
		Warnings:    warnings,
		Fingerprint: fingerprint,
	}, nil
}
