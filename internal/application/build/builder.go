// Package build implements the Builder (spec.md §4.8): it walks a Plan in
// order, applies the Config Transformer to each CREATE step, submits it to
// the Backend Adapter under a fixed inter-request delay and an exponential
// retry/backoff policy, binds the result into the Identifier Mapper, and can
// roll a partially-built run back on abort.
//
// The per-step dispatch/timeout/retry shape is grounded on the teacher's
// engine.executeStep (internal/engine/executor.go): evaluate-then-act,
// context-aware waiting, and a typed result per step. The rate limiter and
// backoff schedule are new to this domain (the teacher has no analog -
// dotfile plugins are not subject to an API rate limit).
package build

import (
	"context"
	"math"
	"time"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/idmap"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/plan"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/transform"
	"github.com/alexisbeaulieu97/tagsync/internal/ports"
)

// Options configures the Builder's pacing and retry policy, spec.md §4.8.
type Options struct {
	TargetWorkspace   string
	InterRequestDelay time.Duration // default 4s; no delay before the first CREATE
	MaxRetries        int           // default 3
	BackoffBase       time.Duration // default 1s
	BackoffCap        time.Duration // default 60s
	TransformOptions  transform.Options

	// Progress, when set, is called after every step (CREATE or SKIP) with
	// the 1-based step cursor and the plan's total step count, letting a
	// caller (the Orchestrator) surface live progress without the Builder
	// knowing anything about sessions or events.
	Progress func(currentStep, totalSteps int)
}

// DefaultOptions returns spec.md §4.8's documented defaults.
func DefaultOptions(targetWorkspace string) Options {
	return Options{
		TargetWorkspace:   targetWorkspace,
		InterRequestDelay: 4 * time.Second,
		MaxRetries:        3,
		BackoffBase:       time.Second,
		BackoffCap:        60 * time.Second,
	}
}

// StepOutcome records what happened to one plan step.
type StepOutcome struct {
	Step     plan.Step
	Created  bool
	TargetID string
	Err      error
}

// RollbackResult summarizes a rollback sweep, spec.md §4.8.
type RollbackResult struct {
	Attempted int
	Succeeded int
	Failed    int
}

// IsPartial reports whether any delete failed during rollback, leaving the
// target workspace in a mixed state the operator must reconcile by hand.
func (r RollbackResult) IsPartial() bool {
	return r.Failed > 0
}

// Builder executes a Plan against a ports.BackendAdapter.
type Builder struct {
	backend     ports.BackendAdapter
	transformer *transform.Transformer
	logger      ports.Logger
	events      ports.EventPublisher
	clock       func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// New constructs a Builder. logger/events may be nil.
func New(backend ports.BackendAdapter, logger ports.Logger, events ports.EventPublisher) *Builder {
	return &Builder{
		backend:     backend,
		transformer: transform.New(),
		logger:      logger,
		events:      events,
		clock:       time.Now,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes every step of p in order against mapper, returning the
// outcomes in step order. It stops at the first CREATE failure (a rate_limit
// failure once its retries are exhausted, any other error at once) and
// returns the error alongside the partial outcome list, so callers can
// decide whether to roll back.
func (b *Builder) Run(ctx context.Context, p plan.Plan, mapper *idmap.Mapper, opts Options) ([]StepOutcome, error) {
	var outcomes []StepOutcome
	firstCreate := true
	total := len(p.Steps)

	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		switch step.Action {
		case plan.ActionSkip:
			if step.TargetID != "" {
				_ = mapper.Bind(step.SourceID, step.TargetID, step.Kind, step.NewName)
			}
			if step.Kind == entity.KindTemplate && step.TemplateTypeRemap != nil {
				b.registerTemplateType(mapper, step)
			}
			b.emit(ctx, ports.EventEntitySkipped, step)
			outcomes = append(outcomes, StepOutcome{Step: step, Created: false, TargetID: step.TargetID})
			b.reportProgress(opts, i+1, total)
			continue
		case plan.ActionCreate:
			if !firstCreate {
				if err := b.sleep(ctx, opts.InterRequestDelay); err != nil {
					return outcomes, err
				}
			}
			firstCreate = false

			targetID, err := b.createWithRetry(ctx, step, mapper, opts)
			if err != nil {
				b.emitFailure(ctx, step, err)
				outcomes = append(outcomes, StepOutcome{Step: step, Err: err})
				return outcomes, err
			}

			if err := mapper.Bind(step.SourceID, targetID, step.Kind, step.NewName); err != nil {
				outcomes = append(outcomes, StepOutcome{Step: step, Err: err})
				return outcomes, err
			}
			if step.Kind == entity.KindTemplate {
				created := step
				created.TargetID = targetID
				if created.TemplateTypeRemap == nil && step.Entity.Template != nil {
					hint := &plan.TemplateTypeHint{SourceContainerScoped: step.Entity.Template.TypeString()}
					if candidates := transform.ExtractGalleryCandidates(step.Entity.Template.TemplateData); len(candidates) > 0 {
						hint.SourceGalleryForm = candidates[0]
					}
					created.TemplateTypeRemap = hint
				}
				b.registerTemplateType(mapper, created)
			}
			b.emit(ctx, ports.EventEntityCreated, step)
			outcomes = append(outcomes, StepOutcome{Step: step, Created: true, TargetID: targetID})
			b.reportProgress(opts, i+1, total)
		}
	}

	return outcomes, nil
}

func (b *Builder) reportProgress(opts Options, currentStep, totalSteps int) {
	if opts.Progress != nil {
		opts.Progress(currentStep, totalSteps)
	}
}

func (b *Builder) registerTemplateType(mapper *idmap.Mapper, step plan.Step) {
	if step.TemplateTypeRemap == nil || step.TargetID == "" {
		return
	}
	targetType := "cvt_" + step.TargetID
	mapper.BindTemplateType(step.TemplateTypeRemap.SourceContainerScoped, targetType)
	if candidate := step.TemplateTypeRemap.SourceGalleryForm; candidate != "" && candidate != transform.GallerySentinel() {
		mapper.BindTemplateType(candidate, targetType)
	}
}

// createWithRetry transforms the step's entity and submits it, retrying on
// rate_limit errors with exponential backoff capped at opts.BackoffCap, up
// to opts.MaxRetries attempts beyond the first, per spec.md §4.8.
func (b *Builder) createWithRetry(ctx context.Context, step plan.Step, mapper *idmap.Mapper, opts Options) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(opts.BackoffBase, opts.BackoffCap, attempt-1)
			if b.logger != nil {
				b.logger.Warn(ctx, "retrying create after rate limit", "source_id", step.SourceID, "attempt", attempt, "delay", delay)
			}
			if err := b.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		targetID, err := b.createOnce(ctx, step, mapper, opts)
		if err == nil {
			return targetID, nil
		}
		lastErr = err

		var repErr *entity.ReplicationError
		if !asReplicationError(err, &repErr) || repErr.Kind != entity.ErrRateLimit {
			return "", err
		}
	}
	return "", lastErr
}

func asReplicationError(err error, target **entity.ReplicationError) bool {
	re, ok := err.(*entity.ReplicationError)
	if !ok {
		return false
	}
	*target = re
	return true
}

func backoffDelay(base, capDur time.Duration, attempt int) time.Duration {
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > capDur {
		return capDur
	}
	return d
}

func (b *Builder) createOnce(ctx context.Context, step plan.Step, mapper *idmap.Mapper, opts Options) (string, error) {
	e := step.Entity
	topts := opts.TransformOptions
	if topts.NameOverride == "" {
		topts.NameOverride = step.NewName
	}
	workspace := opts.TargetWorkspace

	switch step.Kind {
	case entity.KindTag:
		payload, _ := b.transformer.TransformTag(*e.Tag, mapper, topts)
		created, err := b.backend.CreateTag(ctx, workspace, payload)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	case entity.KindTrigger:
		payload := b.transformer.TransformTrigger(*e.Trigger, topts)
		created, err := b.backend.CreateTrigger(ctx, workspace, payload)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	case entity.KindVariable:
		payload := b.transformer.TransformVariable(*e.Variable, topts)
		created, err := b.backend.CreateVariable(ctx, workspace, payload)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	case entity.KindTemplate:
		payload := b.transformer.TransformTemplate(*e.Template, topts)
		created, err := b.backend.CreateTemplate(ctx, workspace, payload)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	}
	return "", entity.NewError("builder", entity.ErrInvalidInput, "unknown entity kind", nil)
}

func (b *Builder) emit(ctx context.Context, eventType string, step plan.Step) {
	if b.events == nil {
		return
	}
	_ = b.events.Publish(ctx, ports.NewEvent(eventType, map[string]interface{}{
		"source_id": step.SourceID,
		"kind":      step.Kind,
		"name":      step.NewName,
	}))
}

func (b *Builder) emitFailure(ctx context.Context, step plan.Step, err error) {
	if b.logger != nil {
		b.logger.Error(ctx, "create failed", "source_id", step.SourceID, "kind", step.Kind, "error", err)
	}
	if b.events == nil {
		return
	}
	_ = b.events.Publish(ctx, ports.NewEvent(ports.EventEntityFailed, map[string]interface{}{
		"source_id": step.SourceID,
		"kind":      step.Kind,
		"error":     err.Error(),
	}))
}

// Rollback deletes every entity this run created, in reverse creation order
// (dependents before dependencies), per spec.md §4.8.
func (b *Builder) Rollback(ctx context.Context, workspace string, outcomes []StepOutcome) RollbackResult {
	var result RollbackResult
	for i := len(outcomes) - 1; i >= 0; i-- {
		o := outcomes[i]
		if !o.Created || o.TargetID == "" {
			continue
		}
		result.Attempted++

		var err error
		switch o.Step.Kind {
		case entity.KindTag:
			err = b.backend.DeleteTag(ctx, workspace, o.TargetID)
		case entity.KindTrigger:
			err = b.backend.DeleteTrigger(ctx, workspace, o.TargetID)
		case entity.KindVariable:
			err = b.backend.DeleteVariable(ctx, workspace, o.TargetID)
		case entity.KindTemplate:
			err = b.backend.DeleteTemplate(ctx, workspace, o.TargetID)
		}

		if err != nil {
			result.Failed++
			if b.logger != nil {
				b.logger.Error(ctx, "rollback delete failed", "target_id", o.TargetID, "kind", o.Step.Kind, "error", err)
			}
			continue
		}
		result.Succeeded++
	}
	return result
}
