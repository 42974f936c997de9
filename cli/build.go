package cli

import (
	"fmt"

	"github.com/compozy/lintcompose/pkg/config"
	"github.com/compozy/lintcompose/pkg/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// addComposeFlags registers the flags shared by commands that run the pipeline.
func addComposeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSlice("provider", nil, "Provider files or globs appended after the built-in providers")
	flags.StringSlice("exclude", nil, "Optional built-in providers to drop")
	flags.StringArray("files", nil, "Default file pattern for unscoped layers (repeatable)")
	flags.StringSlice("env", nil, "Environment global sets to append (node, browser, es2021, jest)")
	flags.String("parser", "", "Parser module assigned to the project layer")
	flags.Bool("detect-conflicts", false, "Report rules whose severity changes between overlapping layers")
	flags.Bool("no-builtin", false, "Compose only the given provider files")
}

func BuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compose providers and print the resulting configuration",
		Args:  cobra.NoArgs,
		RunE:  runBuild,
	}
	addComposeFlags(cmd)
	cmd.Flags().String("format", config.FormatLayered, "Output shape (layered, legacy)")
	cmd.Flags().StringP("output", "o", config.EncodingYAML, "Output encoding (yaml, json)")
	cmd.Flags().String("query", "", "gjson path selecting part of the output")
	cmd.Flags().Bool("fingerprint", false, "Print only the content hash of the layered output")
	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg := config.FromContext(ctx)
	log := logger.FromContext(ctx)
	noBuiltin, err := cmd.Flags().GetBool("no-builtin")
	if err != nil {
		return fmt.Errorf("failed to get no-builtin flag: %w", err)
	}
	query, err := cmd.Flags().GetString("query")
	if err != nil {
		return fmt.Errorf("failed to get query flag: %w", err)
	}
	res, err := runPipeline(ctx, composeRequest{cfg: cfg, fs: afero.NewOsFs(), noBuiltin: noBuiltin})
	if err != nil {
		return err
	}
	log.Info("Configuration composed",
		"layers", len(res.Layers),
		"warnings", len(res.Warnings),
		"fingerprint", res.Fingerprint,
	)
	if fingerprint, _ := cmd.Flags().GetBool("fingerprint"); fingerprint {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Fingerprint)
		return err
	}
	var doc any = res.Layered
	if cfg.Output.Format == config.FormatLegacy {
		doc = res.Legacy
	}
	return NewOutputWriter(cmd.OutOrStdout(), cfg.Output.Encoding).WriteData(doc, query)
}
