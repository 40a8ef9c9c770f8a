// Command hofstadter computes band structures, topological invariants and
// Hofstadter butterflies of tight-binding lattices in a magnetic field.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qmatter/hofstadter/internal/cli"
	herrors "github.com/qmatter/hofstadter/pkg/errors"
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
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", herrors.UserMessage(err))
	}
	return err
}

// exitCode maps an error to the process status: 130 after an interrupt
// (the shell convention for SIGINT), 2 for bad input or configuration.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case herrors.IsConfiguration(err):
		return 2
	}
	return 1
}
