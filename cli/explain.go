package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/compozy/lintcompose/engine/adapter"
	"github.com/compozy/lintcompose/engine/compose"
	"github.com/compozy/lintcompose/engine/layer"
	"github.com/compozy/lintcompose/pkg/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func ExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the effective rules for a file and the layers that set them",
		Args:  cobra.NoArgs,
		RunE:  runExplain,
	}
	addComposeFlags(cmd)
	cmd.Flags().String("file", "", "File path, relative to the project root")
	cmd.Flags().String("rule", "", "Limit the report to one rule")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// RuleOrigin is the effective setting of one rule for one file.
type RuleOrigin struct {
	Rule  string
	Entry layer.RuleEntry
	// Layer names the last matching layer that set the rule.
	Layer string
	// Legacy is the setting resolved through the legacy output.
	Legacy layer.RuleEntry
}

func runExplain(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	noBuiltin, err := cmd.Flags().GetBool("no-builtin")
	if err != nil {
		return fmt.Errorf("failed to get no-builtin flag: %w", err)
	}
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("failed to get file flag: %w", err)
	}
	rule, err := cmd.Flags().GetString("rule")
	if err != nil {
		return fmt.Errorf("failed to get rule flag: %w", err)
	}
	res, err := runPipeline(ctx, composeRequest{
		cfg:       config.FromContext(ctx),
		fs:        afero.NewOsFs(),
		noBuiltin: noBuiltin,
	})
	if err != nil {
		return err
	}
	origins := Explain(res, file)
	if rule != "" {
		origins = filterRule(origins, rule)
		if len(origins) == 0 {
			return fmt.Errorf("rule %q is not configured for %s", rule, file)
		}
	}
	return writeOrigins(cmd.OutOrStdout(), origins)
}

// Explain resolves every rule that applies to file, in rule id order.
func Explain(res *compose.Result, file string) []RuleOrigin {
	origin := map[string]string{}
	for i := range res.Layered {
		l := &res.Layered[i]
		if !layer.MatchFile(l.Files, file) {
			continue
		}
		for id := range l.Rules {
			origin[id] = layerLabel(l, i)
		}
	}
	effective := adapter.ResolveLayered(res.Layered, file)
	legacy := adapter.ResolveLegacy(res.Legacy, file)
	out := make([]RuleOrigin, 0, len(effective))
	for _, id := range effective.Keys() {
		out = append(out, RuleOrigin{
			Rule:   id,
			Entry:  effective[id],
			Layer:  origin[id],
			Legacy: legacy[id],
		})
	}
	return out
}

func layerLabel(l *layer.Layer, idx int) string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("#%d", idx)
}

func filterRule(origins []RuleOrigin, rule string) []RuleOrigin {
	for _, o := range origins {
		if o.Rule == rule {
			return []RuleOrigin{o}
		}
	}
	return nil
}

func writeOrigins(w io.Writer, origins []RuleOrigin) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tSEVERITY\tOPTIONS\tLAYER\tLEGACY")
	for _, o := range origins {
		legacy := "same"
		switch {
		case o.Legacy.Severity == "":
			legacy = "missing"
		case o.Legacy.Severity != o.Entry.Severity:
			legacy = string(o.Legacy.Severity)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", o.Rule, o.Entry.Severity, len(o.Entry.Options), o.Layer, legacy)
	}
	return tw.Flush()
}
