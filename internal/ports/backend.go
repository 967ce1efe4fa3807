// Package ports declares the boundary interfaces application code depends
// on, kept free of any concrete infrastructure. The shape - small,
// context-first, error-classified interfaces - mirrors the teacher's
// internal/ports/execution.go and registry.go.
package ports

import (
	"context"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

// ListOptions controls list calls against the Backend Adapter. Refresh
// forces the adapter to bypass any response cache, per spec.md §6 "{refresh?}".
type ListOptions struct {
	Refresh bool
}

// BackendAdapter is the Backend Adapter port (spec.md §6): the single
// interface the rest of the domain uses to read a workspace's entities and
// to create/delete entities in the target workspace. All errors returned
// are *entity.ReplicationError with a classified Kind (rate_limit,
// duplicate_name, not_found, transport, or unknown).
type BackendAdapter interface {
	GetTag(ctx context.Context, workspace, id string) (entity.Tag, error)
	GetTrigger(ctx context.Context, workspace, id string) (entity.Trigger, error)
	GetVariable(ctx context.Context, workspace, id string) (entity.Variable, error)
	GetTemplate(ctx context.Context, workspace, id string) (entity.Template, error)

	ListTags(ctx context.Context, workspace string, opts ListOptions) ([]entity.Tag, error)
	ListTriggers(ctx context.Context, workspace string, opts ListOptions) ([]entity.Trigger, error)
	ListVariables(ctx context.Context, workspace string, opts ListOptions) ([]entity.Variable, error)
	ListTemplates(ctx context.Context, workspace string, opts ListOptions) ([]entity.Template, error)

	FindTagByName(ctx context.Context, workspace, name string) (entity.Tag, bool, error)
	FindTriggerByName(ctx context.Context, workspace, name string) (entity.Trigger, bool, error)
	FindVariableByName(ctx context.Context, workspace, name string) (entity.Variable, bool, error)
	FindTemplateByName(ctx context.Context, workspace, name string) (entity.Template, bool, error)

	CreateTag(ctx context.Context, workspace string, payload map[string]interface{}) (entity.Tag, error)
	CreateTrigger(ctx context.Context, workspace string, payload map[string]interface{}) (entity.Trigger, error)
	CreateVariable(ctx context.Context, workspace string, payload map[string]interface{}) (entity.Variable, error)
	CreateTemplate(ctx context.Context, workspace string, payload map[string]interface{}) (entity.Template, error)

	DeleteTag(ctx context.Context, workspace, id string) error
	DeleteTrigger(ctx context.Context, workspace, id string) error
	DeleteVariable(ctx context.Context, workspace, id string) error
	DeleteTemplate(ctx context.Context, workspace, id string) error

	// Snapshot loads a full workspace snapshot in one call, honoring
	// ListOptions for cache bypass. The Orchestrator uses this once per
	// phase boundary instead of issuing four separate list calls.
	Snapshot(ctx context.Context, workspace string, opts ListOptions) (entity.Snapshot, error)
}
