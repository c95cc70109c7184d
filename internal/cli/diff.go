package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polagram/pkg/ast"
	polaio "github.com/matzehuels/polagram/pkg/io"
	"github.com/matzehuels/polagram/pkg/pipeline"
)

// diffCommand creates the diff command that compares two diagram trees.
func (c *CLI) diffCommand() *cobra.Command {
	var (
		lensName string
		layers   []string
	)

	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Print the JSON patch between two diagrams",
		Long: `Print the RFC 6902 JSON patch that turns diagram A into diagram B.

Inputs are JSON trees written by 'parse' (.json) or diagram sources. Source
positions are ignored. With --lens or --layer both inputs are compared
through the same lens.`,
		Example: `  polagram diff before.json after.json
  polagram diff checkout.mmd checkout.puml --lens public`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiff(cmd.OutOrStdout(), args[0], args[1], lensName, layers)
		},
	}

	cmd.Flags().StringVarP(&lensName, "lens", "l", "", "named lens applied to both inputs")
	cmd.Flags().StringArrayVar(&layers, "layer", nil, "ad-hoc layer action:selector (repeatable)")

	return cmd
}

// runDiff loads both inputs, applies the lens and prints the patch.
func (c *CLI) runDiff(w io.Writer, a, b, lensName string, layers []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	l, err := resolveLens(cfg, lensName, layers)
	if err != nil {
		return err
	}

	filtered := lensName != "" || len(layers) > 0

	var trees [2]*ast.Root
	for i, path := range []string{a, b} {
		root, err := loadTree(path)
		if err != nil {
			return err
		}
		if filtered {
			if root, err = pipeline.ApplyLens(root, l); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		trees[i] = root
	}

	patch, err := polaio.DiffRoots(trees[0], trees[1])
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		printSuccess("No differences")
		return nil
	}
	data, err := json.MarshalIndent(patch, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// loadTree reads a JSON tree or parses a diagram source.
func loadTree(path string) (*ast.Root, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return polaio.ImportJSON(path)
	}
	opts, err := sourceOptions(path, "")
	if err != nil {
		return nil, err
	}
	return pipeline.Parse(opts)
}
