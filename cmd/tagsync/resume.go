package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tagsync/internal/application/orchestrate"
)

func newResumeCmd(root *rootFlags, app *AppContext) *cobra.Command {
	var (
		sessionID    string
		dryRun       bool
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Re-run a previously started, unfinished session from the analyze phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, logger := app.CommandContext(cmd, "command.resume")

			st, ok := app.Orchestrator.Get(sessionID)
			if !ok {
				return fmt.Errorf("no session %q to resume", sessionID)
			}

			bopts, err := buildOptionsFor(st.TargetWorkspace, root.configPath)
			if err != nil {
				return fmt.Errorf("loading session config: %w", err)
			}
			opts := orchestrate.Options{
				DryRun:       dryRun,
				SkipExisting: skipExisting,
				BuildOptions: bopts,
			}

			resumed, err := app.Orchestrator.Resume(ctx, sessionID, opts)
			if err != nil {
				if logger != nil {
					logger.Error(ctx, "resume failed", "session_id", sessionID, "error", err)
				}
				return err
			}
			printSummary(resumed)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session-id", "default", "Session identifier to resume")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the remaining phases without creating anything")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "Skip entities whose exact name already exists in the target")

	return cmd
}
