// Package orchestrate implements the Orchestrator (spec.md §4.9): it drives
// one replication run through its five fixed phases - Analyze, Name, Plan,
// Build, Validate - checking for cancellation at each phase boundary,
// publishing progress events, and keeping an in-memory session registry so
// a run can be inspected or resumed by id.
//
// The process-wide, lock-protected session map is grounded on the teacher's
// registry.Registry (internal/registry/registry.go), adapted from disk
// persistence to in-memory-only storage: spec.md §3 scopes WorkflowState to
// one process's lifetime, with no cross-restart durability requirement.
package orchestrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/tagsync/internal/application/build"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/graph"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/match"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/naming"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/plan"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/session"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/validate"
	"github.com/alexisbeaulieu97/tagsync/internal/ports"
)

// Options configures one replication run.
type Options struct {
	DryRun       bool
	SkipExisting bool
	BuildOptions build.Options
}

// Orchestrator drives sessions end to end and keeps an in-memory registry
// of them, keyed by session id.
type Orchestrator struct {
	backend ports.BackendAdapter
	logger  ports.Logger
	events  ports.EventPublisher
	builder *build.Builder

	mu       sync.RWMutex
	sessions map[string]*session.State
}

// New constructs an Orchestrator.
func New(backend ports.BackendAdapter, logger ports.Logger, events ports.EventPublisher) *Orchestrator {
	return &Orchestrator{
		backend:  backend,
		logger:   logger,
		events:   events,
		builder:  build.New(backend, logger, events),
		sessions: make(map[string]*session.State),
	}
}

// Start begins a new session replicating sourceWorkspace into
// targetWorkspace and runs it to completion (or to the first fatal error).
// The returned State is also retained in the registry under its SessionID
// so Resume/Get can find it later.
func (o *Orchestrator) Start(ctx context.Context, sessionID, sourceWorkspace, targetWorkspace string, opts Options) (*session.State, error) {
	st := session.New(sessionID, sourceWorkspace, targetWorkspace)
	o.register(st)

	o.publish(ctx, ports.EventWorkflowStarted, map[string]interface{}{"session_id": sessionID})
	o.run(ctx, st, opts)
	return st, firstFatal(st)
}

// Resume runs a previously started session again - spec.md's supplemented
// "resumable sessions" feature. A completed session is returned unchanged.
// Otherwise a session in the error phase is reset to idle (its errors and
// warnings are kept) and run() executes every phase again from Analyze:
// both snapshots are reloaded from the backend and the naming map and plan
// are rebuilt. The session's Identifier Mapper keeps the bindings made by
// the earlier attempt.
func (o *Orchestrator) Resume(ctx context.Context, sessionID string, opts Options) (*session.State, error) {
	st, ok := o.Get(sessionID)
	if !ok {
		return nil, entity.NewError("orchestrator", entity.ErrNotFound, "no session "+sessionID, nil)
	}
	if st.Phase == session.PhaseCompleted {
		return st, nil
	}
	if st.Phase == session.PhaseError {
		st.Phase = session.PhaseIdle // allow a fresh attempt; errors/warnings history is kept
	}
	o.run(ctx, st, opts)
	return st, firstFatal(st)
}

// Get returns a registered session by id.
func (o *Orchestrator) Get(sessionID string) (*session.State, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	st, ok := o.sessions[sessionID]
	return st, ok
}

func (o *Orchestrator) register(st *session.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions[st.SessionID] = st
}

func (o *Orchestrator) run(ctx context.Context, st *session.State, opts Options) {
	phases := []func(context.Context, *session.State, Options) error{
		o.analyze,
		o.name,
		o.buildPlan,
		o.build,
		o.validate,
	}

	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			st.Fail(entity.NewError("orchestrator", entity.ErrWorkflowAborted, "context cancelled", err))
			o.publish(ctx, ports.EventWorkflowFailed, map[string]interface{}{"session_id": st.SessionID, "error": err.Error()})
			return
		}
		if err := phase(ctx, st, opts); err != nil {
			st.Fail(err)
			o.publish(ctx, ports.EventWorkflowFailed, map[string]interface{}{"session_id": st.SessionID, "error": err.Error()})
			return
		}
	}

	_ = st.Advance(session.PhaseCompleted)
	o.publish(ctx, ports.EventWorkflowCompleted, map[string]interface{}{"session_id": st.SessionID})
}

func (o *Orchestrator) analyze(ctx context.Context, st *session.State, opts Options) error {
	if err := st.Advance(session.PhaseAnalyzing); err != nil {
		return err
	}
	o.publishPhase(ctx, st)

	source, err := o.backend.Snapshot(ctx, st.SourceWorkspace, ports.ListOptions{})
	if err != nil {
		return entity.NewError("orchestrator", entity.ErrAnalysisFailed, "loading source snapshot", err)
	}
	st.SourceSnapshot = source

	target, err := o.backend.Snapshot(ctx, st.TargetWorkspace, ports.ListOptions{Refresh: true})
	if err != nil {
		return entity.NewError("orchestrator", entity.ErrAnalysisFailed, "loading target snapshot", err)
	}
	st.TargetSnapshot = target

	result, err := graph.Analyze(source)
	if err != nil {
		return entity.NewError("orchestrator", entity.ErrAnalysisFailed, "dependency analysis", err)
	}
	st.Analysis = result
	for _, w := range result.Warnings {
		st.Warn(w)
	}
	return nil
}

func (o *Orchestrator) name(ctx context.Context, st *session.State, opts Options) error {
	if err := st.Advance(session.PhaseNaming); err != nil {
		return err
	}
	o.publishPhase(ctx, st)

	byKind := map[entity.Kind][]string{}
	for _, e := range st.SourceSnapshot.Entities() {
		byKind[e.Kind] = append(byKind[e.Kind], e.Name())
	}
	for kind, names := range byKind {
		st.Patterns[kind] = naming.InferPattern(names)
	}

	matcher := match.New(st.TargetSnapshot)
	for _, e := range st.SourceSnapshot.Entities() {
		if similar, ok := findSimilar(matcher, e); ok {
			st.Warn(fmt.Sprintf("%s %q resembles existing target entity %q (score %.0f)", e.Kind, e.Name(), similar.Tag.Name, similar.Combined))
		}
		st.NamingMap[e.ID()] = e.Name()
	}
	return nil
}

func findSimilar(m *match.Matcher, e entity.Entity) (match.ScoredSimilarTag, bool) {
	if e.Kind != entity.KindTag || e.Tag == nil {
		return match.ScoredSimilarTag{}, false
	}
	results := m.FindSimilarTags(*e.Tag, match.SimilarOptions{Threshold: 85})
	if len(results) == 0 {
		return match.ScoredSimilarTag{}, false
	}
	return results[0], true
}

func (o *Orchestrator) buildPlan(ctx context.Context, st *session.State, opts Options) error {
	if err := st.Advance(session.PhasePlanning); err != nil {
		return err
	}
	o.publishPhase(ctx, st)

	p := plan.Build(st.Analysis, st.SourceSnapshot, st.TargetSnapshot, plan.Options{
		SkipExisting: opts.SkipExisting,
		NewNames:     st.NamingMap,
	})
	st.Plan = p
	for _, w := range p.Warnings {
		st.Warn(w)
	}
	return nil
}

func (o *Orchestrator) build(ctx context.Context, st *session.State, opts Options) error {
	if err := st.Advance(session.PhaseBuilding); err != nil {
		return err
	}
	o.publishPhase(ctx, st)

	if opts.DryRun {
		return nil
	}

	bopts := opts.BuildOptions
	if bopts.TargetWorkspace == "" {
		bopts = build.DefaultOptions(st.TargetWorkspace)
	}
	bopts.Progress = func(currentStep, totalSteps int) {
		o.publishProgress(ctx, st, currentStep, totalSteps)
	}

	outcomes, err := o.builder.Run(ctx, st.Plan, st.Mapper, bopts)
	for _, oc := range outcomes {
		if oc.Created {
			st.Created = append(st.Created, session.CreatedEntity{
				SourceID: oc.Step.SourceID,
				TargetID: oc.TargetID,
				Kind:     oc.Step.Kind,
				Name:     oc.Step.NewName,
			})
		}
	}
	if err != nil {
		rollback := o.builder.Rollback(ctx, st.TargetWorkspace, outcomes)
		st.Warn(fmt.Sprintf("build aborted, rollback attempted=%d succeeded=%d failed=%d", rollback.Attempted, rollback.Succeeded, rollback.Failed))
		return entity.NewError("orchestrator", entity.ErrCreationFailed, "build phase failed", err)
	}
	return nil
}

func (o *Orchestrator) validate(ctx context.Context, st *session.State, opts Options) error {
	if err := st.Advance(session.PhaseValidating); err != nil {
		return err
	}
	o.publishPhase(ctx, st)

	if opts.DryRun {
		return nil
	}

	finalTarget, err := o.backend.Snapshot(ctx, st.TargetWorkspace, ports.ListOptions{Refresh: true})
	if err != nil {
		return entity.NewError("orchestrator", entity.ErrValidationFailed, "loading final target snapshot", err)
	}
	report := validate.PostValidate(st.SourceSnapshot, finalTarget, st.Mapper)
	st.Validation = &report
	if !report.Success {
		st.Warn("post-build validation reported " + fmt.Sprint(report.Summary.MissingCount) + " missing entities")
	}
	return nil
}

func (o *Orchestrator) publishPhase(ctx context.Context, st *session.State) {
	o.publish(ctx, ports.EventPhaseChanged, map[string]interface{}{"session_id": st.SessionID, "phase": st.Phase})
}

func (o *Orchestrator) publishProgress(ctx context.Context, st *session.State, currentStep, totalSteps int) {
	p := st.ComputeProgress(currentStep, totalSteps, string(st.Phase))
	o.publish(ctx, ports.EventProgressUpdated, map[string]interface{}{
		"session_id": st.SessionID,
		"progress":   p,
	})
}

func (o *Orchestrator) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if o.events == nil {
		return
	}
	_ = o.events.Publish(ctx, ports.NewEvent(eventType, payload))
}

func firstFatal(st *session.State) error {
	if st.Phase != session.PhaseError || len(st.Errors) == 0 {
		return nil
	}
	return st.Errors[len(st.Errors)-1]
}
