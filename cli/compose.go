package cli

import (
	"context"
	"fmt"

	"github.com/compozy/lintcompose/engine/adapter"
	"github.com/compozy/lintcompose/engine/catalog"
	"github.com/compozy/lintcompose/engine/compose"
	"github.com/compozy/lintcompose/engine/layer"
	"github.com/compozy/lintcompose/engine/source"
	"github.com/compozy/lintcompose/pkg/config"
	"github.com/compozy/lintcompose/pkg/logger"
	"github.com/spf13/afero"
)

// composeRequest carries what a command needs to run the pipeline.
type composeRequest struct {
	cfg       *config.Config
	fs        afero.Fs
	noBuiltin bool
}

func runPipeline(ctx context.Context, req composeRequest) (*compose.Result, error) {
	providers, err := buildProviders(ctx, req)
	if err != nil {
		return nil, err
	}
	env, err := buildEnvironment(req.cfg)
	if err != nil {
		return nil, err
	}
	return compose.NewPipeline(compose.Options{
		DefaultFiles:    req.cfg.Files.Default,
		Environment:     env,
		DetectConflicts: req.cfg.Compose.DetectConflicts,
	}).Run(ctx, providers)
}

// buildProviders lists the built-in providers followed by the configured
// provider files. Provider files are required.
func buildProviders(ctx context.Context, req composeRequest) ([]catalog.Provider, error) {
	cfg := req.cfg
	var providers []catalog.Provider
	if !req.noBuiltin {
		providers = catalog.Defaults(catalog.Options{
			Files: cfg.Files.Default,
			Parser: catalog.ParserOptions{
				Module:          cfg.Parser.Module,
				ProjectService:  cfg.Parser.ProjectService,
				TsconfigRootDir: cfg.Parser.TsconfigRootDir,
			},
			Exclude: cfg.Compose.Exclude,
		})
	}
	if len(cfg.Compose.Providers) > 0 {
		files, err := source.NewLoader(req.fs).Providers(cfg.Compose.Providers, true)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve provider files: %w", err)
		}
		logger.FromContext(ctx).Debug("Resolved provider files", "count", len(files))
		providers = append(providers, files...)
	}
	return providers, nil
}

func buildEnvironment(cfg *config.Config) (adapter.Environment, error) {
	if len(cfg.Environment.Names) == 0 {
		return adapter.Environment{}, nil
	}
	env, err := adapter.LookupEnvironment(cfg.Environment.Names...)
	if err != nil {
		return adapter.Environment{}, err
	}
	env.ReportUnusedDisableDirectives = layer.Severity(cfg.Environment.ReportUnusedDisableDirectives)
	return env, nil
}
