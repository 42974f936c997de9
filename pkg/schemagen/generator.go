// Package schemagen builds JSON schemas for provider documents and the
// application configuration.
package schemagen

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"

	"github.com/compozy/lintcompose/engine/layer"
	"github.com/compozy/lintcompose/pkg/config"
	"github.com/compozy/lintcompose/pkg/logger"
	"github.com/invopop/jsonschema"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// Definition names one generated schema.
type Definition struct {
	Name   string
	Title  string
	Source any
	// FieldTag selects the struct tag that names properties; empty means json.
	FieldTag string
}

func (d Definition) fileName() string {
	return d.Name + ".json"
}

// Definitions lists the schemas lintcompose publishes.
func Definitions() []Definition {
	return []Definition{
		{Name: "layer", Title: "lintcompose configuration layer", Source: &layer.Layer{}},
		{Name: "layers", Title: "lintcompose layer sequence", Source: &[]layer.Layer{}},
		{Name: "config", Title: "lintcompose settings", Source: &config.Config{}, FieldTag: "koanf"},
	}
}

type SchemaGenerator struct {
	fs          afero.Fs
	definitions []Definition
}

func NewSchemaGenerator(fs afero.Fs) *SchemaGenerator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &SchemaGenerator{fs: fs, definitions: Definitions()}
}

// Names returns the available schema names in declaration order.
func (g *SchemaGenerator) Names() []string {
	out := make([]string, len(g.definitions))
	for i, d := range g.definitions {
		out[i] = d.Name
	}
	return out
}

// Build renders the named schema as indented JSON.
func (g *SchemaGenerator) Build(name string) ([]byte, error) {
	idx := slices.IndexFunc(g.definitions, func(d Definition) bool { return d.Name == name })
	if idx < 0 {
		return nil, fmt.Errorf("unknown schema %q (available: %v)", name, g.Names())
	}
	return g.buildSchema(g.definitions[idx])
}

// Generate writes every schema into outDir.
func (g *SchemaGenerator) Generate(ctx context.Context, outDir string) error {
	log := logger.FromContext(ctx)
	log.Info("Generating JSON schemas", "dir", outDir)
	if err := g.fs.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for _, definition := range g.definitions {
		group.Go(func() error {
			schemaJSON, err := g.buildSchema(definition)
			if err != nil {
				return fmt.Errorf("failed to build schema for %s: %w", definition.Name, err)
			}
			filePath := filepath.Join(outDir, definition.fileName())
			if err := afero.WriteFile(g.fs, filePath, schemaJSON, 0o644); err != nil {
				return fmt.Errorf("failed to write schema to %s: %w", filePath, err)
			}
			log.Debug("Generated schema", "file", filePath)
			return nil
		})
	}
	return group.Wait()
}

func (g *SchemaGenerator) buildSchema(definition Definition) ([]byte, error) {
	reflector := newJSONSchemaReflector(definition.FieldTag)
	schema := reflector.Reflect(definition.Source)
	schema.ID = jsonschema.ID(definition.fileName())
	schema.Version = draft07
	if definition.Title != "" {
		schema.Title = definition.Title
	}
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return schemaJSON, nil
}

func newJSONSchemaReflector(fieldTag string) *jsonschema.Reflector {
	return &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  false,
		FieldNameTag:               fieldTag,
		Mapper:                     mapLayerTypes,
	}
}

var (
	severityType     = reflect.TypeOf(layer.Severity(""))
	ruleEntryType    = reflect.TypeOf(layer.RuleEntry{})
	globalAccessType = reflect.TypeOf(layer.GlobalAccess(""))
)

// mapLayerTypes describes the values that decode from shorthand forms.
func mapLayerTypes(t reflect.Type) *jsonschema.Schema {
	switch t {
	case severityType:
		return severitySchema()
	case ruleEntryType:
		return &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				severitySchema(),
				{
					Type:        "array",
					PrefixItems: []*jsonschema.Schema{severitySchema()},
					MinItems:    ptr(uint64(1)),
				},
			},
		}
	case globalAccessType:
		return &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				{Type: "string", Enum: []any{"readonly", "writable", "off", "readable", "writeable"}},
				{Type: "boolean"},
			},
		}
	}
	return nil
}

func severitySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Enum: []any{"off", "warn", "error", "0", "1", "2"}},
			{Type: "integer", Enum: []any{0, 1, 2}},
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
