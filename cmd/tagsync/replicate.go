package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tagsync/internal/adapters/memory"
	"github.com/alexisbeaulieu97/tagsync/internal/application/orchestrate"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/session"
	"github.com/alexisbeaulieu97/tagsync/internal/ports"
	"github.com/alexisbeaulieu97/tagsync/internal/tui/progress"
)

type replicateOptions struct {
	SourceExport    string
	TargetExport    string
	SourceWorkspace string
	TargetWorkspace string
	SessionID       string
	DryRun          bool
	SkipExisting    bool
}

func newReplicateCmd(root *rootFlags, app *AppContext) *cobra.Command {
	opts := replicateOptions{}

	cmd := &cobra.Command{
		Use:   "replicate",
		Short: "Replicate tags, triggers, variables, and templates from one workspace export into another",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, logger := app.CommandContext(cmd, "command.replicate")

			if err := loadExport(app.Backend, opts.SourceWorkspace, opts.SourceExport); err != nil {
				return fmt.Errorf("loading source export: %w", err)
			}
			if opts.TargetExport != "" {
				if err := loadExport(app.Backend, opts.TargetWorkspace, opts.TargetExport); err != nil {
					return fmt.Errorf("loading target export: %w", err)
				}
			}

			bopts, err := buildOptionsFor(opts.TargetWorkspace, root.configPath)
			if err != nil {
				return fmt.Errorf("loading session config: %w", err)
			}
			runOpts := orchestrate.Options{
				DryRun:       opts.DryRun,
				SkipExisting: opts.SkipExisting,
				BuildOptions: bopts,
			}

			if root.watch {
				return runWatched(app, opts, runOpts)
			}

			st, err := app.Orchestrator.Start(ctx, opts.SessionID, opts.SourceWorkspace, opts.TargetWorkspace, runOpts)
			if err != nil {
				if logger != nil {
					logger.Error(ctx, "replication failed", "session_id", opts.SessionID, "error", err)
				}
				return err
			}
			printSummary(st)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.SourceExport, "source-export", "", "Path to the source workspace JSON export")
	cmd.Flags().StringVar(&opts.TargetExport, "target-export", "", "Path to the target workspace JSON export (optional; defaults to empty)")
	cmd.Flags().StringVar(&opts.SourceWorkspace, "source-workspace", "source", "Source workspace identifier")
	cmd.Flags().StringVar(&opts.TargetWorkspace, "target-workspace", "target", "Target workspace identifier")
	cmd.Flags().StringVar(&opts.SessionID, "session-id", "default", "Session identifier, used to resume later")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Plan the replication without creating anything")
	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", true, "Skip entities whose exact name already exists in the target")
	cmd.MarkFlagRequired("source-export") //nolint:errcheck

	return cmd
}

func loadExport(backend *memory.Adapter, workspace, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := memory.DecodeSnapshot(f)
	if err != nil {
		return err
	}
	backend.Seed(workspace, snap)
	return nil
}

func printSummary(st *session.State) {
	fmt.Printf("session %s finished in phase %s\n", st.SessionID, st.Phase)
	fmt.Printf("created: %d entities\n", len(st.Created))
	for _, w := range st.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	for _, e := range st.Errors {
		fmt.Printf("  error: %v\n", e)
	}
	if st.Validation != nil {
		fmt.Println(validationOneLine(*st.Validation))
	}
}

func runWatched(app *AppContext, opts replicateOptions, runOpts orchestrate.Options) error {
	model := progress.NewModel()
	program := tea.NewProgram(model)

	unsub := bridgeEvents(app, program)
	defer unsub()

	done := make(chan struct{})
	var runErr error
	go func() {
		defer close(done)
		ctx, _ := app.CommandContext(nil, "command.replicate")
		_, runErr = app.Orchestrator.Start(ctx, opts.SessionID, opts.SourceWorkspace, opts.TargetWorkspace, runOpts)
		program.Send(progress.DoneMsg{Err: runErr})
	}()

	if _, err := program.Run(); err != nil {
		return err
	}
	<-done
	return runErr
}

// bridgeEvents subscribes to the orchestrator's published events and
// translates each into a Bubbletea message for the --watch view, returning
// a func that unsubscribes all of them.
func bridgeEvents(app *AppContext, program *tea.Program) func() {
	var subs []ports.Subscription

	on := func(eventType string, handler ports.EventHandler) {
		sub, err := app.Events.Subscribe(eventType, handler)
		if err == nil && sub != nil {
			subs = append(subs, sub)
		}
	}

	on(ports.EventPhaseChanged, func(ctx context.Context, evt ports.DomainEvent) error {
		payload, _ := evt.Payload().(map[string]interface{})
		if phase, ok := payload["phase"].(session.Phase); ok {
			program.Send(progress.PhaseChangedMsg{Phase: phase})
		}
		return nil
	})
	on(ports.EventEntityCreated, func(ctx context.Context, evt ports.DomainEvent) error {
		sendEntityMsg(program, evt, "created")
		return nil
	})
	on(ports.EventEntitySkipped, func(ctx context.Context, evt ports.DomainEvent) error {
		sendEntityMsg(program, evt, "skipped")
		return nil
	})
	on(ports.EventEntityFailed, func(ctx context.Context, evt ports.DomainEvent) error {
		sendEntityMsg(program, evt, "failed")
		return nil
	})
	on(ports.EventProgressUpdated, func(ctx context.Context, evt ports.DomainEvent) error {
		payload, _ := evt.Payload().(map[string]interface{})
		if p, ok := payload["progress"].(session.Progress); ok {
			program.Send(progress.ProgressMsg{Progress: p})
		}
		return nil
	})

	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}

func sendEntityMsg(program *tea.Program, evt ports.DomainEvent, status string) {
	payload, _ := evt.Payload().(map[string]interface{})
	kind, _ := payload["kind"].(entity.Kind)
	name, _ := payload["name"].(string)
	program.Send(progress.EntityMsg{Kind: string(kind), Name: name, Status: status})
}
