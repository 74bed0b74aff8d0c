package main

import (
	"github.com/spf13/cobra"

	"github.com/dicemill/outgunned/deploy"
)

func newRunCommand() *cobra.Command {
	var runtime string

	cmd := &cobra.Command{
		Use:   "run [-- entrypoint args...]",
		Short: "Run the deployment unit entrypoint in the foreground",
		Long:  "Starts the entrypoint as the sole foreground child, forwards SIGINT and SIGTERM, and exits with the child's exit code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := args
			if len(argv) == 0 {
				argv = deploy.BuildConfig{Runtime: runtime}.Entrypoint()
			}

			code, err := deploy.NewRunner(newLogger()).Run(cmd.Context(), argv)
			if err != nil {
				return err
			}
			childExitCode = code
			return nil
		},
	}

	cmd.Flags().StringVar(&runtime, "runtime", deploy.DefaultRuntime, "runtime interpreter for the default entrypoint")
	return cmd
}
