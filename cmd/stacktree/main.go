package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/internal/cli"
	"github.com/matzehuels/stacktree/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

func newRoot() *cobra.Command {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true // exitCode prints them
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log cache and pipeline details")

	// Runs after flag parsing, before any command's PreRun.
	cobra.OnInitialize(func() {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
	})
	return root
}

// exitCode prints err and maps it to a process status: 130 for an
// interrupted run, 2 for a rejected tree document or options file.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return 130
	}
	fmt.Fprintln(os.Stderr, "stacktree:", err)
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidTree, errors.ErrCodeParentMismatch, errors.ErrCodeInvalidConfig:
		return 2
	}
	return 1
}
