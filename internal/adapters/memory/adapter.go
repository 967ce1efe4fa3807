// Package memory implements a reference/fake ports.BackendAdapter backed by
// an in-process map; the CLI runs every command against it, and tests use it
// to exercise the full pipeline without a live backend. Its per-kind
// last-listed timestamps are grounded on the teacher's registry.StatusCache
// (internal/registry/cache.go): a mutex-guarded map with a Load/invalidate
// split, adapted here from disk persistence to in-memory timestamps. List
// calls always read the live maps; nothing is served from a cache or expires.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/ports"
)

// workspaceStore holds one workspace's entities plus the time each kind was
// last listed, as reported by CacheAge.
type workspaceStore struct {
	tags      map[string]entity.Tag
	triggers  map[string]entity.Trigger
	variables map[string]entity.Variable
	templates map[string]entity.Template

	listedAt map[entity.Kind]time.Time
}

func newWorkspaceStore() *workspaceStore {
	return &workspaceStore{
		tags:      make(map[string]entity.Tag),
		triggers:  make(map[string]entity.Trigger),
		variables: make(map[string]entity.Variable),
		templates: make(map[string]entity.Template),
		listedAt:  make(map[entity.Kind]time.Time),
	}
}

// Adapter is an in-memory ports.BackendAdapter. It is safe for concurrent
// use across workspaces and within one workspace.
type Adapter struct {
	mu         sync.RWMutex
	workspaces map[string]*workspaceStore
	ttl        time.Duration
	nextID     int
	now        func() time.Time
}

// New constructs an empty Adapter. ttl is the cache window TTL reports; List
// calls do not consult it. The default per spec.md §6 is 60 seconds.
func New(ttl time.Duration) *Adapter {
	return &Adapter{
		workspaces: make(map[string]*workspaceStore),
		ttl:        ttl,
		now:        time.Now,
	}
}

// Seed populates a workspace with an initial snapshot - used by tests and by
// the CLI to load a source workspace export before a run.
func (a *Adapter) Seed(workspace string, snap entity.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	for _, t := range snap.Tags {
		ws.tags[t.ID] = t
	}
	for _, t := range snap.Triggers {
		ws.triggers[t.ID] = t
	}
	for _, v := range snap.Variables {
		ws.variables[v.ID] = v
	}
	for _, t := range snap.Templates {
		ws.templates[t.ID] = t
	}
}

func (a *Adapter) store(workspace string) *workspaceStore {
	ws, ok := a.workspaces[workspace]
	if !ok {
		ws = newWorkspaceStore()
		a.workspaces[workspace] = ws
	}
	return ws
}

// CacheAge reports how long ago a kind was last listed in workspace, used by
// tests asserting the TTL window; a real network-backed adapter would use
// this same check to decide whether ListX needs to hit the wire.
func (a *Adapter) CacheAge(workspace string, kind entity.Kind) (time.Duration, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws, ok := a.workspaces[workspace]
	if !ok {
		return 0, false
	}
	at, ok := ws.listedAt[kind]
	if !ok {
		return 0, false
	}
	return a.now().Sub(at), true
}

// TTL returns the configured cache window.
func (a *Adapter) TTL() time.Duration { return a.ttl }

func (a *Adapter) genID(prefix string) string {
	a.nextID++
	return fmt.Sprintf("%s%d", prefix, a.nextID)
}

func notFound(component, kind, id string) error {
	return entity.NewError(component, entity.ErrNotFound, kind+" "+id+" not found", nil)
}

func (a *Adapter) GetTag(_ context.Context, workspace, id string) (entity.Tag, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws := a.store(workspace)
	t, ok := ws.tags[id]
	if !ok {
		return entity.Tag{}, notFound("memory_adapter", "tag", id)
	}
	return t, nil
}

func (a *Adapter) GetTrigger(_ context.Context, workspace, id string) (entity.Trigger, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws := a.store(workspace)
	t, ok := ws.triggers[id]
	if !ok {
		return entity.Trigger{}, notFound("memory_adapter", "trigger", id)
	}
	return t, nil
}

func (a *Adapter) GetVariable(_ context.Context, workspace, id string) (entity.Variable, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws := a.store(workspace)
	v, ok := ws.variables[id]
	if !ok {
		return entity.Variable{}, notFound("memory_adapter", "variable", id)
	}
	return v, nil
}

func (a *Adapter) GetTemplate(_ context.Context, workspace, id string) (entity.Template, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws := a.store(workspace)
	t, ok := ws.templates[id]
	if !ok {
		return entity.Template{}, notFound("memory_adapter", "template", id)
	}
	return t, nil
}

func (a *Adapter) ListTags(_ context.Context, workspace string, opts ports.ListOptions) ([]entity.Tag, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	ws.listedAt[entity.KindTag] = a.now()
	out := make([]entity.Tag, 0, len(ws.tags))
	for _, t := range ws.tags {
		out = append(out, t)
	}
	return out, nil
}

func (a *Adapter) ListTriggers(_ context.Context, workspace string, opts ports.ListOptions) ([]entity.Trigger, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	ws.listedAt[entity.KindTrigger] = a.now()
	out := make([]entity.Trigger, 0, len(ws.triggers))
	for _, t := range ws.triggers {
		out = append(out, t)
	}
	return out, nil
}

func (a *Adapter) ListVariables(_ context.Context, workspace string, opts ports.ListOptions) ([]entity.Variable, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	ws.listedAt[entity.KindVariable] = a.now()
	out := make([]entity.Variable, 0, len(ws.variables))
	for _, v := range ws.variables {
		out = append(out, v)
	}
	return out, nil
}

func (a *Adapter) ListTemplates(_ context.Context, workspace string, opts ports.ListOptions) ([]entity.Template, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	ws.listedAt[entity.KindTemplate] = a.now()
	out := make([]entity.Template, 0, len(ws.templates))
	for _, t := range ws.templates {
		out = append(out, t)
	}
	return out, nil
}

func (a *Adapter) FindTagByName(_ context.Context, workspace, name string) (entity.Tag, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws := a.store(workspace)
	for _, t := range ws.tags {
		if t.Name == name {
			return t, true, nil
		}
	}
	return entity.Tag{}, false, nil
}

func (a *Adapter) FindTriggerByName(_ context.Context, workspace, name string) (entity.Trigger, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws := a.store(workspace)
	for _, t := range ws.triggers {
		if t.Name == name {
			return t, true, nil
		}
	}
	return entity.Trigger{}, false, nil
}

func (a *Adapter) FindVariableByName(_ context.Context, workspace, name string) (entity.Variable, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws := a.store(workspace)
	for _, v := range ws.variables {
		if v.Name == name {
			return v, true, nil
		}
	}
	return entity.Variable{}, false, nil
}

func (a *Adapter) FindTemplateByName(_ context.Context, workspace, name string) (entity.Template, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ws := a.store(workspace)
	for _, t := range ws.templates {
		if t.Name == name {
			return t, true, nil
		}
	}
	return entity.Template{}, false, nil
}

func (a *Adapter) CreateTag(_ context.Context, workspace string, payload map[string]interface{}) (entity.Tag, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	name, _ := payload["name"].(string)
	for _, t := range ws.tags {
		if t.Name == name {
			return entity.Tag{}, entity.NewError("memory_adapter", entity.ErrDuplicateName, "tag named "+name+" already exists", nil)
		}
	}
	id := a.genID("tag_")
	t := entity.Tag{Header: entity.Header{ID: id, Name: name, Kind: entity.KindTag, Raw: payload}}
	if typ, ok := payload["type"].(string); ok {
		t.Type = typ
	}
	ws.tags[id] = t
	delete(ws.listedAt, entity.KindTag)
	return t, nil
}

func (a *Adapter) CreateTrigger(_ context.Context, workspace string, payload map[string]interface{}) (entity.Trigger, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	name, _ := payload["name"].(string)
	for _, t := range ws.triggers {
		if t.Name == name {
			return entity.Trigger{}, entity.NewError("memory_adapter", entity.ErrDuplicateName, "trigger named "+name+" already exists", nil)
		}
	}
	id := a.genID("trigger_")
	t := entity.Trigger{Header: entity.Header{ID: id, Name: name, Kind: entity.KindTrigger, Raw: payload}}
	ws.triggers[id] = t
	delete(ws.listedAt, entity.KindTrigger)
	return t, nil
}

func (a *Adapter) CreateVariable(_ context.Context, workspace string, payload map[string]interface{}) (entity.Variable, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	name, _ := payload["name"].(string)
	for _, v := range ws.variables {
		if v.Name == name {
			return entity.Variable{}, entity.NewError("memory_adapter", entity.ErrDuplicateName, "variable named "+name+" already exists", nil)
		}
	}
	id := a.genID("variable_")
	v := entity.Variable{Header: entity.Header{ID: id, Name: name, Kind: entity.KindVariable, Raw: payload}}
	ws.variables[id] = v
	delete(ws.listedAt, entity.KindVariable)
	return v, nil
}

func (a *Adapter) CreateTemplate(_ context.Context, workspace string, payload map[string]interface{}) (entity.Template, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	name, _ := payload["name"].(string)
	for _, t := range ws.templates {
		if t.Name == name {
			return entity.Template{}, entity.NewError("memory_adapter", entity.ErrDuplicateName, "template named "+name+" already exists", nil)
		}
	}
	id := a.genID("template_")
	t := entity.Template{Header: entity.Header{ID: id, Name: name, Kind: entity.KindTemplate, Raw: payload}}
	if data, ok := payload["templateData"].(string); ok {
		t.TemplateData = data
	}
	ws.templates[id] = t
	delete(ws.listedAt, entity.KindTemplate)
	return t, nil
}

func (a *Adapter) DeleteTag(_ context.Context, workspace, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	if _, ok := ws.tags[id]; !ok {
		return notFound("memory_adapter", "tag", id)
	}
	delete(ws.tags, id)
	delete(ws.listedAt, entity.KindTag)
	return nil
}

func (a *Adapter) DeleteTrigger(_ context.Context, workspace, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	if _, ok := ws.triggers[id]; !ok {
		return notFound("memory_adapter", "trigger", id)
	}
	delete(ws.triggers, id)
	delete(ws.listedAt, entity.KindTrigger)
	return nil
}

func (a *Adapter) DeleteVariable(_ context.Context, workspace, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	if _, ok := ws.variables[id]; !ok {
		return notFound("memory_adapter", "variable", id)
	}
	delete(ws.variables, id)
	delete(ws.listedAt, entity.KindVariable)
	return nil
}

func (a *Adapter) DeleteTemplate(_ context.Context, workspace, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws := a.store(workspace)
	if _, ok := ws.templates[id]; !ok {
		return notFound("memory_adapter", "template", id)
	}
	delete(ws.templates, id)
	delete(ws.listedAt, entity.KindTemplate)
	return nil
}

// Snapshot loads every entity kind for a workspace in one call.
func (a *Adapter) Snapshot(ctx context.Context, workspace string, opts ports.ListOptions) (entity.Snapshot, error) {
	tags, err := a.ListTags(ctx, workspace, opts)
	if err != nil {
		return entity.Snapshot{}, err
	}
	triggers, err := a.ListTriggers(ctx, workspace, opts)
	if err != nil {
		return entity.Snapshot{}, err
	}
	variables, err := a.ListVariables(ctx, workspace, opts)
	if err != nil {
		return entity.Snapshot{}, err
	}
	templates, err := a.ListTemplates(ctx, workspace, opts)
	if err != nil {
		return entity.Snapshot{}, err
	}
	return entity.Snapshot{Tags: tags, Triggers: triggers, Variables: variables, Templates: templates}, nil
}

var _ ports.BackendAdapter = (*Adapter)(nil)
