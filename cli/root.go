package cli

import (
	"context"
	"fmt"

	"github.com/compozy/lintcompose/pkg/config"
	"github.com/compozy/lintcompose/pkg/logger"
	"github.com/compozy/lintcompose/pkg/version"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lintcompose",
		Short:         "Compose layered lint rule configurations",
		Long:          "Assemble built-in and file-based rule providers into one flat or legacy lint configuration.",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", config.DefaultFile, "Path to the config file")
	flags.String("env-file", ".env", "Path to the environment variables file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Output logs in JSON format")
	flags.Bool("log-source", false, "Include source file and line in logs")

	root.AddCommand(
		BuildCmd(),
		ExplainCmd(),
		SchemaCmd(),
	)

	return root
}

// SetupGlobalConfig loads the env file and configuration, configures the
// logger and stores both in the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	sources, err := configSources(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.NewService().Load(commandContext(cmd), sources...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	_, _, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.SetupLogger(cmd.ErrOrStderr(), cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, logSource)
	ctx := config.ContextWithConfig(commandContext(cmd), cfg)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	log.Debug("Configuration loaded", "format", cfg.Output.Format, "encoding", cfg.Output.Encoding)
	return nil
}

// configSources returns the YAML file and CLI flag sources in precedence order.
// A config path given explicitly must exist.
func configSources(cmd *cobra.Command) ([]config.Source, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	fs := afero.NewOsFs()
	var sources []config.Source
	switch {
	case path == "":
	case cmd.Flags().Changed("config"):
		sources = append(sources, config.NewYAMLProvider(fs, path))
	default:
		sources = append(sources, config.NewOptionalYAMLProvider(fs, path))
	}
	flags := make(map[string]any)
	extractCLIFlags(cmd, flags)
	return append(sources, config.NewCLIProvider(flags)), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
