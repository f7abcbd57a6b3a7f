// Package cmd provides the command-line interface of tlbsim.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCmd creates the tlbsim command with all its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tlbsim",
		Short: "tlbsim replays memory access traces through a shared TLB.",
		Long: `tlbsim replays memory access traces through a fully ` +
			`associative TLB with LRU replacement. Every task of the trace ` +
			`runs in its own goroutine and all the tasks share the TLB.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newReportCmd(),
		newParseSizeCmd(),
	)

	return rootCmd
}

// Execute runs the root command. Interrupting the process stops the running
// tasks. The exit handlers registered with atexit run before the process
// exits with an error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		stop()
		atexit.Exit(1)
	}
}
