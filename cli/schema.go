package cli

import (
	"fmt"

	"github.com/compozy/lintcompose/pkg/schemagen"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func SchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [name]",
		Short: "Print the JSON schema of provider documents or the settings file",
		Long:  "Print one schema (layer, layers, config) or write all of them with --out.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSchema,
	}
	cmd.Flags().String("out", "", "Directory receiving every schema")
	return cmd
}

func runSchema(cmd *cobra.Command, args []string) error {
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	gen := schemagen.NewSchemaGenerator(afero.NewOsFs())
	if out != "" {
		if len(args) > 0 {
			return fmt.Errorf("--out writes every schema and takes no name")
		}
		return gen.Generate(commandContext(cmd), out)
	}
	name := "layer"
	if len(args) > 0 {
		name = args[0]
	}
	data, err := gen.Build(name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
