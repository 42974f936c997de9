package config

import (
	"context"
	"time"

	"github.com/compozy/lintcompose/engine/layer"
)

// EnvPrefix is prepended to every environment variable read by the loader.
const EnvPrefix = "LINTCOMPOSE_"

// Config represents the complete lintcompose configuration.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Files       FilesConfig       `koanf:"files"       validate:"required"`
	Environment EnvironmentConfig `koanf:"environment"`
	Parser      ParserConfig      `koanf:"parser"      validate:"required"`
	Compose     ComposeConfig     `koanf:"compose"`
	Output      OutputConfig      `koanf:"output"      validate:"required"`
	Runtime     RuntimeConfig     `koanf:"runtime"     validate:"required"`
}

// FilesConfig controls the default scope given to unscoped layers.
type FilesConfig struct {
	Default []string `koanf:"default" validate:"required,min=1,dive,required,glob" env:"LINTCOMPOSE_FILES_DEFAULT"`
}

// EnvironmentConfig selects the environment layer appended to the layered output.
type EnvironmentConfig struct {
	Names                         []string `koanf:"names"                            validate:"dive,environment"                env:"LINTCOMPOSE_ENVIRONMENT_NAMES"`
	ReportUnusedDisableDirectives string   `koanf:"report_unused_disable_directives" validate:"omitempty,oneof=off warn error" env:"LINTCOMPOSE_ENVIRONMENT_REPORT_UNUSED_DISABLE_DIRECTIVES"`
}

// ParserConfig is assigned to the project layer that declares a parser.
type ParserConfig struct {
	Module          string `koanf:"module"            validate:"required" env:"LINTCOMPOSE_PARSER_MODULE"`
	ProjectService  bool   `koanf:"project_service"                       env:"LINTCOMPOSE_PARSER_PROJECT_SERVICE"`
	TsconfigRootDir string `koanf:"tsconfig_root_dir"                     env:"LINTCOMPOSE_PARSER_TSCONFIG_ROOT_DIR"`
}

// ComposeConfig tunes the composition pipeline.
type ComposeConfig struct {
	DetectConflicts bool `koanf:"detect_conflicts" env:"LINTCOMPOSE_COMPOSE_DETECT_CONFLICTS"`
	// Providers are extra provider files appended after the built-in set.
	Providers []string `koanf:"providers" validate:"dive,required" env:"LINTCOMPOSE_COMPOSE_PROVIDERS"`
	// Exclude drops optional built-in providers by name.
	Exclude []string `koanf:"exclude" validate:"dive,required" env:"LINTCOMPOSE_COMPOSE_EXCLUDE"`
}

// OutputConfig selects the emitted shape and encoding.
type OutputConfig struct {
	Format   string `koanf:"format"   validate:"required,oneof=layered legacy" env:"LINTCOMPOSE_OUTPUT_FORMAT"`
	Encoding string `koanf:"encoding" validate:"required,oneof=yaml json"      env:"LINTCOMPOSE_OUTPUT_ENCODING"`
}

// RuntimeConfig contains process-level settings.
type RuntimeConfig struct {
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error disabled" env:"LINTCOMPOSE_RUNTIME_LOG_LEVEL"`
	LogJSON  bool   `koanf:"log_json"                                                         env:"LINTCOMPOSE_RUNTIME_LOG_JSON"`
}

const (
	FormatLayered = "layered"
	FormatLegacy  = "legacy"

	EncodingYAML = "yaml"
	EncodingJSON = "json"
)

// Service defines the configuration loading service.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns which source provided the value of key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads configuration using the default service.
func Load() (*Config, error) {
	return NewService().Load(context.Background())
}

// Default returns the configuration that reproduces the reference project setup.
func Default() *Config {
	return &Config{
		Files: FilesConfig{
			Default: layer.DefaultFiles(),
		},
		Environment: EnvironmentConfig{
			Names: []string{},
		},
		Parser: ParserConfig{
			Module:          "@typescript-eslint/parser",
			ProjectService:  true,
			TsconfigRootDir: "./tsconfig.json",
		},
		Compose: ComposeConfig{
			Providers: []string{},
			Exclude:   []string{},
		},
		Output: OutputConfig{
			Format:   FormatLayered,
			Encoding: EncodingYAML,
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
		},
	}
}
