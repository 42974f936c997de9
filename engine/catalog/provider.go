package catalog

import (
	"errors"
	"fmt"

	"github.com/compozy/lintcompose/engine/layer"
	"github.com/gosimple/slug"
)

// ErrUnavailable marks a provider whose source is not present. Optional
// providers returning it are skipped; required ones fail the build.
var ErrUnavailable = errors.New("provider unavailable")

// Export is what a provider contributes: one layer or an ordered sequence.
type Export interface {
	Layers() []layer.Layer
}

// Single is an export made of exactly one layer.
type Single layer.Layer

func (s Single) Layers() []layer.Layer {
	return []layer.Layer{layer.Layer(s).Clone()}
}

// Sequence is an ordered export; its order encodes the provider's own precedence.
type Sequence []layer.Layer

func (s Sequence) Layers() []layer.Layer {
	return layer.CloneAll(s)
}

// Provider is a named source of configuration layers.
type Provider interface {
	Name() string
	Required() bool
	Export() (Export, error)
}

// ProviderID returns the normalized identifier used to detect duplicates.
func ProviderID(name string) string {
	return slug.Make(name)
}

// -----------------------------------------------------------------------------
// Static provider
// -----------------------------------------------------------------------------

// StaticProvider serves an export that is already resident in memory.
type StaticProvider struct {
	ProviderName string
	IsRequired   bool
	Value        Export
	Err          error
}

// NewProvider builds an optional provider for an in-memory export.
func NewProvider(name string, export Export) *StaticProvider {
	return &StaticProvider{ProviderName: name, Value: export}
}

// NewRequiredProvider builds a required provider for an in-memory export.
func NewRequiredProvider(name string, export Export) *StaticProvider {
	return &StaticProvider{ProviderName: name, IsRequired: true, Value: export}
}

func (p *StaticProvider) Name() string   { return p.ProviderName }
func (p *StaticProvider) Required() bool { return p.IsRequired }

func (p *StaticProvider) Export() (Export, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Value, nil
}

// -----------------------------------------------------------------------------
// Raw provider
// -----------------------------------------------------------------------------

// RawProvider serves a generic decoded document (YAML, TOML or JSON) and
// converts it with DecodeExport on demand.
type RawProvider struct {
	ProviderName string
	IsRequired   bool
	Raw          any
}

func (p *RawProvider) Name() string   { return p.ProviderName }
func (p *RawProvider) Required() bool { return p.IsRequired }

func (p *RawProvider) Export() (Export, error) {
	return DecodeExport(p.Raw)
}

// DecodeExport converts a decoded document into an export. An array becomes
// a Sequence, an object holding only a "layers" array becomes a Sequence and
// any other object becomes a Single. A nil document yields a nil export.
func DecodeExport(raw any) (Export, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case Export:
		return val, nil
	case layer.Layer:
		return Single(val), nil
	case []layer.Layer:
		return Sequence(val), nil
	case []any:
		return decodeSequence(val)
	case []map[string]any:
		items := make([]any, len(val))
		for i := range val {
			items[i] = val[i]
		}
		return decodeSequence(items)
	case map[string]any:
		if items, ok := layersOnly(val); ok {
			return decodeSequence(items)
		}
		l, err := layer.Decode(val)
		if err != nil {
			return nil, err
		}
		return Single(l), nil
	default:
		return nil, fmt.Errorf("export must be an object or a sequence, got %T", raw)
	}
}

func layersOnly(doc map[string]any) ([]any, bool) {
	if len(doc) != 1 {
		return nil, false
	}
	switch items := doc["layers"].(type) {
	case []any:
		return items, true
	case []map[string]any:
		out := make([]any, len(items))
		for i := range items {
			out[i] = items[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func decodeSequence(items []any) (Export, error) {
	layers, err := layer.DecodeAll(items)
	if err != nil {
		return nil, err
	}
	return Sequence(layers), nil
}
