package cli

import (
	"github.com/spf13/cobra"

	polaio "github.com/matzehuels/polagram/pkg/io"
)

// schemaCommand creates the schema command that prints the JSON Schema of
// the tree written by parse.
func (c *CLI) schemaCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of parsed diagram trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := polaio.Schema()
			if err != nil {
				return err
			}
			written, err := writeOutput(cmd.OutOrStdout(), data, output)
			if written {
				printFile(output)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
