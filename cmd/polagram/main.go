package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polagram/internal/cli"
	perrors "github.com/matzehuels/polagram/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.Logger.Error(err)
	}
	return err
}

// exitCode maps errors to process exit codes: 130 for interrupts (the shell
// convention for SIGINT), 2 for problems with the user's input and 1 for
// everything else.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	switch perrors.GetCode(err) {
	case "", perrors.ErrCodeInternal:
		return 1
	}
	return 2
}
