package adapter

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/compozy/lintcompose/engine/layer"
	"gopkg.in/yaml.v3"
)

//go:embed envs/*.yaml
var envFS embed.FS

// Environment describes the trailing layer appended for a target runtime.
type Environment struct {
	Name                          string
	Globals                       map[string]layer.GlobalAccess
	ReportUnusedDisableDirectives layer.Severity
	// Files scopes the environment layer; nil leaves it global.
	Files []string
}

// IsZero reports whether the environment contributes nothing.
func (e Environment) IsZero() bool {
	return len(e.Globals) == 0 && e.ReportUnusedDisableDirectives == ""
}

type envDocument struct {
	Globals map[string]layer.GlobalAccess `yaml:"globals"`
}

// LookupEnvironment merges the named global sets in order. Later sets win
// on identifiers they share.
func LookupEnvironment(names ...string) (Environment, error) {
	env := Environment{Name: strings.Join(names, "+")}
	for _, name := range names {
		globals, err := loadGlobals(name)
		if err != nil {
			return Environment{}, err
		}
		if env.Globals == nil {
			env.Globals = make(map[string]layer.GlobalAccess, len(globals))
		}
		maps.Copy(env.Globals, globals)
	}
	return env, nil
}

func loadGlobals(name string) (map[string]layer.GlobalAccess, error) {
	data, err := envFS.ReadFile(path.Join("envs", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown environment %q (available: %s)", name, strings.Join(EnvironmentNames(), ", "))
	}
	var doc envDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse environment %q: %w", name, err)
	}
	return doc.Globals, nil
}

// EnvironmentNames lists the embedded environments in sorted order.
func EnvironmentNames() []string {
	entries, err := fs.ReadDir(envFS, "envs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}
