package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when --config is not given.
const DefaultFile = "lintcompose.yaml"

// FlagPaths maps CLI flag names to configuration paths.
var FlagPaths = map[string]string{
	"files":            "files.default",
	"env":              "environment.names",
	"provider":         "compose.providers",
	"exclude":          "compose.exclude",
	"detect-conflicts": "compose.detect_conflicts",
	"format":           "output.format",
	"output":           "output.encoding",
	"parser":           "parser.module",
	"log-level":        "runtime.log_level",
	"log-json":         "runtime.log_json",
}

// cliProvider implements Source interface for CLI flags.
type cliProvider struct {
	flags map[string]any
}

// NewCLIProvider creates a configuration source from changed CLI flags keyed
// by flag name. Unknown flags are ignored.
func NewCLIProvider(flags map[string]any) Source {
	return &cliProvider{
		flags: flags,
	}
}

// Load returns the CLI flags as configuration data.
func (c *cliProvider) Load() (map[string]any, error) {
	config := make(map[string]any)
	for key, value := range c.flags {
		path, ok := FlagPaths[key]
		if !ok {
			continue
		}
		if err := setNested(config, path, value); err != nil {
			return nil, fmt.Errorf("failed to set CLI flag %s: %w", key, err)
		}
	}
	return config, nil
}

// Type returns the source type identifier.
func (c *cliProvider) Type() SourceType {
	return SourceCLI
}

// setNested sets a value in a nested map structure using dot notation.
// It returns an error if a path conflict is encountered.
func setNested(m map[string]any, path string, value any) error {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return fmt.Errorf("configuration conflict: key %q is not a map", strings.Join(parts[:i+1], "."))
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// yamlProvider implements Source interface for YAML files.
type yamlProvider struct {
	fs       afero.Fs
	path     string
	optional bool
}

// NewYAMLProvider creates a YAML file configuration source that must exist.
func NewYAMLProvider(fs afero.Fs, path string) Source {
	return newYAMLProvider(fs, path, false)
}

// NewOptionalYAMLProvider creates a YAML source that yields nothing when the
// file is missing.
func NewOptionalYAMLProvider(fs afero.Fs, path string) Source {
	return newYAMLProvider(fs, path, true)
}

func newYAMLProvider(fs afero.Fs, path string, optional bool) *yamlProvider {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &yamlProvider{fs: fs, path: path, optional: optional}
}

// Load reads configuration from a YAML file.
func (y *yamlProvider) Load() (map[string]any, error) {
	data, err := afero.ReadFile(y.fs, y.path)
	if err != nil {
		if y.optional && os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return filterNilValues(config), nil
}

// filterNilValues recursively removes nil values from a map
// This prevents koanf from overriding existing values with nil
func filterNilValues(m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		if nestedMap, ok := v.(map[string]any); ok {
			filtered := filterNilValues(nestedMap)
			if len(filtered) > 0 {
				result[k] = filtered
			}
		} else {
			result[k] = v
		}
	}
	return result
}

// Type returns the source type identifier.
func (y *yamlProvider) Type() SourceType {
	return SourceYAML
}
