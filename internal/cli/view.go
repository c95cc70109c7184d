package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polagram/pkg/config"
	"github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/lens"
	"github.com/matzehuels/polagram/pkg/pipeline"
)

// adhocLens names the lens built from --layer flags alone.
const adhocLens = "adhoc"

// viewOptions holds the flags shared by view and convert.
type viewOptions struct {
	from     string
	lensName string
	layers   []string
	to       string
	output   string
	detailed bool
	refresh  bool
}

// viewCommand creates the view command for deriving one view of a diagram.
func (c *CLI) viewCommand() *cobra.Command {
	var vo viewOptions

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Derive a view of a diagram through a lens",
		Long: `Derive a view of a diagram through a lens.

The lens is either a named lens from the project file (--lens), a list of
ad-hoc layers (--layer action:selector, repeatable), or both, in which case
the ad-hoc layers run after the named ones. Without either the diagram only
goes through cleanup: empty blocks and participants that nothing refers to
are dropped.

Actions: focus, remove, resolve (alias unwrap), hideParticipant (alias hide).
Selectors: kind[key=value,...] with kind one of participant, message,
fragment, group, note and keys name, text, from, to, operator. Text values
may be regex (/re/ or regex:re) or glob (glob:pattern) patterns.`,
		Example: `  polagram view checkout.mmd --lens public
  polagram view checkout.mmd --layer remove:participant[name=Logger] --layer resolve:fragment[text=Success]
  polagram view checkout.puml --lens public --to svg -o public.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), cmd.OutOrStdout(), args[0], vo)
		},
	}

	cmd.Flags().StringVar(&vo.from, "from", "", "input dialect: mermaid, plantuml (default: detect)")
	cmd.Flags().StringVarP(&vo.lensName, "lens", "l", "", "named lens from the project file")
	cmd.Flags().StringArrayVar(&vo.layers, "layer", nil, "ad-hoc layer action:selector (repeatable)")
	cmd.Flags().StringVarP(&vo.to, "to", "t", "", "output format: mermaid, plantuml, json, dot, svg (default: input dialect)")
	cmd.Flags().StringVarP(&vo.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&vo.detailed, "detailed", false, "label graph edges with message texts (dot, svg)")
	cmd.Flags().BoolVar(&vo.refresh, "refresh", false, "ignore cached results")

	return cmd
}

// runView executes the pipeline for one input and writes the single artifact.
func (c *CLI) runView(ctx context.Context, w io.Writer, input string, vo viewOptions) error {
	opts, err := sourceOptions(input, vo.from)
	if err != nil {
		return err
	}
	if vo.to != "" {
		if err := pipeline.ValidateFormat(vo.to); err != nil {
			return err
		}
		opts.Formats = []string{vo.to}
	}
	opts.Detailed = vo.detailed
	opts.Refresh = vo.refresh

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts.Lens, err = resolveLens(cfg, vo.lensName, vo.layers)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	for format, data := range result.Artifacts {
		written, err := writeOutput(w, data, vo.output)
		if err != nil {
			return err
		}
		if written {
			printSuccess("Derived %s view of %s as %s", opts.Lens.Name, input, format)
			printStats(result.Stats.Participants, result.Stats.Events, result.CacheInfo.GenerateHit)
			printFile(vo.output)
		}
	}
	return nil
}

// resolveLens combines a named lens with ad-hoc layers. With neither it
// returns the identity lens.
func resolveLens(cfg *config.Config, name string, layers []string) (lens.Lens, error) {
	var l lens.Lens
	switch {
	case name != "":
		named, err := cfg.Lens(name)
		if err != nil {
			return lens.Lens{}, err
		}
		l = named
	case len(layers) > 0:
		l = lens.Lens{Name: adhocLens}
	default:
		return lens.Identity, nil
	}
	for i, expr := range layers {
		layer, err := lens.ParseLayer(expr)
		if err != nil {
			return lens.Lens{}, errors.Wrap(errors.ErrCodeInvalidLens, err, "--layer %d", i+1)
		}
		l.Layers = append(l.Layers, layer)
	}
	return l, nil
}
