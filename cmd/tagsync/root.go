package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose    bool
	watch      bool
	configPath string
}

func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "tagsync",
		Short:         "tagsync replicates tag-management entities between workspaces",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.watch, "watch", false, "Show a live progress view while the run executes")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a session config YAML file (defaults to built-in defaults)")

	cmd.AddCommand(newReplicateCmd(flags, app))
	cmd.AddCommand(newValidateCmd(flags, app))
	cmd.AddCommand(newResumeCmd(flags, app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
