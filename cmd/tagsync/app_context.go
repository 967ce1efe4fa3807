package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tagsync/internal/adapters/memory"
	"github.com/alexisbeaulieu97/tagsync/internal/application/orchestrate"
	"github.com/alexisbeaulieu97/tagsync/internal/ports"
)

// AppContext bundles the long-lived services built once at startup.
type AppContext struct {
	Logger       ports.Logger
	Events       ports.EventPublisher
	Backend      *memory.Adapter
	Orchestrator *orchestrate.Orchestrator
}

// CommandContext returns the command's context (falling back to Background)
// together with a component-scoped logger.
func (a *AppContext) CommandContext(cmd *cobra.Command, component string) (context.Context, ports.Logger) {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	return ctx, a.LoggerFor(component)
}

// LoggerFor derives a child logger scoped to component.
func (a *AppContext) LoggerFor(component string) ports.Logger {
	if a == nil || a.Logger == nil {
		return nil
	}
	return a.Logger.With("component", component)
}
