package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polagram/pkg/ast"
	polaio "github.com/matzehuels/polagram/pkg/io"
)

// parseCommand creates the parse command for turning a diagram into its JSON tree.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		from    string
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a diagram into its JSON tree",
		Long: `Parse a Mermaid or PlantUML sequence diagram into its JSON tree.

The input dialect is detected from the file extension or the content unless
--from is given. Use "-" to read from standard input. The tree is written to
standard output unless -o names a file.`,
		Example: `  polagram parse checkout.mmd
  polagram parse checkout.puml -o checkout.json
  cat diagram.txt | polagram parse - --from mermaid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), cmd.OutOrStdout(), args[0], from, output, refresh)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input dialect: mermaid, plantuml (default: detect)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	return cmd
}

// runParse parses the input and writes the JSON tree.
func (c *CLI) runParse(ctx context.Context, w io.Writer, input, from, output string, refresh bool) error {
	opts, err := sourceOptions(input, from)
	if err != nil {
		return err
	}
	opts.Refresh = refresh

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	root, cached, err := runner.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	data, err := polaio.Marshal(root)
	if err != nil {
		return err
	}
	written, err := writeOutput(w, data, output)
	if err != nil {
		return err
	}
	if written {
		printSuccess("Parsed %s", input)
		printStats(len(root.Participants), ast.CountEvents(root.Events), cached)
		printFile(output)
		printNextStep("Derive a view", "polagram view "+input+" --layer remove:participant[name=...]")
	}
	return nil
}
