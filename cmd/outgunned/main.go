// Command outgunned runs the Outgunned Discord dice bot and builds or runs
// its deployment unit.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// childExitCode carries the `run` child's exit status out to main, so the
// deployment unit's exit code passes through unchanged.
var childExitCode int

// Signal handling is per command: serve shuts down through its own signal
// context, run leaves SIGINT/SIGTERM to the Runner's forwarding loop. A
// process-wide signal context here would double-deliver to run's child.
func main() {
	root := newRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
	os.Exit(childExitCode)
}

func newRootCommand() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:          "outgunned",
		Short:        "Outgunned dice bot for Discord",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", defaultConfigDir(), "configuration directory")

	root.AddCommand(
		newServeCommand(&configDir),
		newBuildCommand(),
		newRunCommand(),
	)
	return root
}

func defaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "outgunned"
	}
	return filepath.Join(base, "outgunned")
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
