package cli

import (
	"github.com/spf13/cobra"
)

// convertCommand creates the convert command for translating between dialects.
func (c *CLI) convertCommand() *cobra.Command {
	var vo viewOptions

	cmd := &cobra.Command{
		Use:   "convert FILE --to FORMAT",
		Short: "Convert a diagram to another dialect",
		Long: `Convert a diagram to another dialect without filtering it.

Mermaid has no references, dividers or spacers. They are written as "%%@"
comments, which Mermaid renderers ignore and polagram reads back.`,
		Example: `  polagram convert checkout.mmd --to plantuml
  polagram convert checkout.puml --to mermaid -o checkout.mmd`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), cmd.OutOrStdout(), args[0], vo)
		},
	}

	cmd.Flags().StringVar(&vo.from, "from", "", "input dialect: mermaid, plantuml (default: detect)")
	cmd.Flags().StringVarP(&vo.to, "to", "t", "", "output format: mermaid, plantuml, json, dot, svg")
	cmd.Flags().StringVarP(&vo.output, "output", "o", "", "output file (default: stdout)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
