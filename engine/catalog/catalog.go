// Package catalog gathers the ordered groups of configuration layers
// contributed by providers.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/lintcompose/engine/core"
	"github.com/compozy/lintcompose/engine/layer"
	"github.com/compozy/lintcompose/pkg/logger"
)

// BuildCatalog resolves every provider in declaration order and returns one
// group per contributing provider. Optional providers that contribute nothing
// are skipped. Any structural problem aborts the build with a
// *core.ConfigurationError.
func BuildCatalog(ctx context.Context, providers []Provider) ([][]layer.Layer, error) {
	log := logger.FromContext(ctx)
	if len(providers) == 0 {
		return nil, core.NewConfigError(core.ErrCodeMissingProvider, "", "no providers declared")
	}
	seen := make(map[string]string, len(providers))
	groups := make([][]layer.Layer, 0, len(providers))
	for i, p := range providers {
		if p == nil {
			return nil, core.NewConfigError(core.ErrCodeMissingProvider, "", "provider at position %d is nil", i)
		}
		name := p.Name()
		id := ProviderID(name)
		if id == "" {
			return nil, core.NewConfigError(
				core.ErrCodeMalformedProvider, name, "provider at position %d has no usable name", i,
			)
		}
		if _, dup := seen[id]; dup {
			return nil, core.NewDuplicateProviderError(name)
		}
		seen[id] = name

		group, err := resolve(p)
		if err != nil {
			return nil, err
		}
		if len(group) == 0 {
			log.Debug("Skipping provider without layers", "provider", name)
			continue
		}
		log.Debug("Provider resolved", "provider", name, "layers", len(group))
		groups = append(groups, group)
	}
	return groups, nil
}

func resolve(p Provider) ([]layer.Layer, error) {
	name := p.Name()
	export, err := p.Export()
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			if p.Required() {
				e := core.NewMissingProviderError(name)
				e.Cause = err
				return nil, e
			}
			return nil, nil
		}
		return nil, core.NewMalformedProviderError(name, err)
	}
	if export == nil {
		if p.Required() {
			return nil, core.NewMissingProviderError(name)
		}
		return nil, nil
	}
	layers := export.Layers()
	if len(layers) == 0 {
		if p.Required() {
			return nil, core.NewEmptyProviderError(name)
		}
		return nil, nil
	}
	for i := range layers {
		if err := layers[i].Validate(); err != nil {
			return nil, core.NewInvalidLayerError(name, i, err)
		}
		if layers[i].Name == "" {
			layers[i].Name = defaultLayerName(name, i, len(layers))
		}
	}
	return layers, nil
}

func defaultLayerName(provider string, index, total int) string {
	if total == 1 {
		return provider
	}
	return fmt.Sprintf("%s[%d]", provider, index)
}

// Count returns the total number of layers across groups.
func Count(groups [][]layer.Layer) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}
