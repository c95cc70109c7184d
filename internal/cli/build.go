package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polagram/pkg/config"
	"github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/lens"
	"github.com/matzehuels/polagram/pkg/pipeline"
)

// buildOptions holds the flags of the build command.
type buildOptions struct {
	lenses   []string
	formats  string
	outDir   string
	jobs     int
	detailed bool
	refresh  bool
}

// buildCommand creates the build command for writing every view of a project.
func (c *CLI) buildCommand() *cobra.Command {
	var bo buildOptions

	cmd := &cobra.Command{
		Use:   "build FILE...",
		Short: "Write every lens of the project for each diagram",
		Long: `Write every lens of the project file for each diagram, in every
configured output format.

Views are written to the output directory as <name>.<lens><ext>, for example
views/checkout.public.puml. Without lenses in the project file each diagram
is written through the identity lens. Jobs run concurrently.`,
		Example: `  polagram build diagrams/*.mmd
  polagram build checkout.mmd --lens public --to plantuml,svg --out site/views`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args, bo)
		},
	}

	cmd.Flags().StringSliceVarP(&bo.lenses, "lens", "l", nil, "only build these lenses (default: all)")
	cmd.Flags().StringVarP(&bo.formats, "to", "t", "", "output formats, comma-separated (default: from project file)")
	cmd.Flags().StringVar(&bo.outDir, "out", "", "output directory (default: from project file)")
	cmd.Flags().IntVarP(&bo.jobs, "jobs", "j", 0, "concurrent jobs (default: number of CPUs)")
	cmd.Flags().BoolVar(&bo.detailed, "detailed", false, "label graph edges with message texts (dot, svg)")
	cmd.Flags().BoolVar(&bo.refresh, "refresh", false, "ignore cached results")

	return cmd
}

// runBuild runs one job per input and lens and writes the artifacts.
func (c *CLI) runBuild(ctx context.Context, inputs []string, bo buildOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	lenses, err := selectLenses(cfg, bo.lenses)
	if err != nil {
		return err
	}
	formats := parseFormats(bo.formats)
	if len(formats) == 0 {
		formats = cfg.Output.Formats
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	outDir := bo.outDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	var jobs []pipeline.Options
	for _, input := range inputs {
		if input == stdio {
			return errors.New(errors.ErrCodeInvalidInput, "build reads files, not standard input")
		}
		opts, err := sourceOptions(input, "")
		if err != nil {
			return err
		}
		for _, l := range lenses {
			job := opts
			job.Lens = l
			job.Formats = formats
			job.Detailed = bo.detailed
			job.Refresh = bo.refresh
			jobs = append(jobs, job)
		}
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Building views", len(jobs))
	runner.OnJobDone = spinner.Advance
	spinner.Start()

	results, err := runner.Batch(ctx, jobs, bo.jobs)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	var written []string
	for i, res := range results {
		job := jobs[i]
		for _, format := range slices.Sorted(maps.Keys(res.Artifacts)) {
			path := viewPath(outDir, job.Filename, job.Lens.Name, format)
			if _, err := writeOutput(nil, res.Artifacts[format], path); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}

	printSuccess("Built %d views from %d diagrams", len(results), len(inputs))
	for _, path := range written {
		printFile(path)
	}
	prog.done(fmt.Sprintf("Wrote %d files", len(written)))
	return nil
}

// selectLenses returns the named lenses, every configured lens, or the
// identity lens when the project defines none.
func selectLenses(cfg *config.Config, names []string) ([]lens.Lens, error) {
	if len(names) > 0 {
		out := make([]lens.Lens, 0, len(names))
		for _, name := range names {
			l, err := cfg.Lens(name)
			if err != nil {
				return nil, err
			}
			out = append(out, l)
		}
		return out, nil
	}
	lenses, err := cfg.AllLenses()
	if err != nil {
		return nil, err
	}
	if len(lenses) == 0 {
		return []lens.Lens{lens.Identity}, nil
	}
	return lenses, nil
}
