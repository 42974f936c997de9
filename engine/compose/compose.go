// Package compose flattens provider groups into the ordered layer sequence
// and drives the build pipeline.
package compose

import "github.com/compozy/lintcompose/engine/layer"

// Compose concatenates groups in group order, then intra-group order. It
// never sorts or deduplicates; precedence is left to the consumer's last-wins
// rule. The result holds copies of the input layers.
func Compose(groups [][]layer.Layer) []layer.Layer {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]layer.Layer, 0, total)
	for _, g := range groups {
		for i := range g {
			out = append(out, g[i].Clone())
		}
	}
	return out
}
