// Package cmd defines the ankigen CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ankigen",
		Short:         "Generate Anki decks from your WaniKani subjects",
		Long:          "ankigen runs a four-stage pipeline: fetch subjects from the WaniKani API (or reuse a cached payload), normalize them, load them into the database, and render Anki-importable deck files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	RegisterCommands(rootCmd)
	return rootCmd
}

// RegisterCommands adds all available commands to the root command
func RegisterCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewCacheCommand())
	rootCmd.AddCommand(NewHistoryCommand())
}

// Execute runs the CLI and maps the outcome to a process exit code:
// 0 done, 1 pipeline failed, 2 rejected before the pipeline started.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		// A bare ExitError means the command already reported itself (the
		// run summary carries the failure); don't repeat it.
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// Cobra-level failures: unknown command or flag, bad flag value.
	return 2
}
