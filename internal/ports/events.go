package ports

import "context"

// Workflow event types, spec.md §4.9 / §7: emitted at phase boundaries and
// per-step during the build phase so a CLI or TUI subscriber can render
// live progress without polling session state.
const (
	EventWorkflowStarted   = "workflow.started"
	EventWorkflowCompleted = "workflow.completed"
	EventWorkflowFailed    = "workflow.failed"
	EventPhaseChanged      = "workflow.phase_changed"
	EventEntityCreated     = "entity.created"
	EventEntitySkipped     = "entity.skipped"
	EventEntityFailed      = "entity.failed"
	EventProgressUpdated   = "workflow.progress_updated"
)

// DomainEvent represents a significant occurrence within the domain or
// application layer. Events carry structured payloads that downstream
// subscribers can use for logging, UI updates, or integrations.
type DomainEvent interface {
	EventType() string
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous—Publish blocks until all handlers run—ensuring observability
// signals appear before the process exits. Handlers may spawn goroutines for
// async processing if work should continue in the background. Implementations
// must be thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type. Handlers should avoid
// panicking; failures should be surfaced via returned errors so publishers can
// log diagnostics and continue delivering to remaining subscribers.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler. Callers must invoke
// Unsubscribe to stop receiving events and release resources.
type Subscription interface {
	Unsubscribe()
}

// baseEvent is the concrete DomainEvent the orchestrate package builds its
// emitted events from.
type baseEvent struct {
	eventType string
	payload   interface{}
}

// NewEvent constructs a DomainEvent carrying an arbitrary payload.
func NewEvent(eventType string, payload interface{}) DomainEvent {
	return baseEvent{eventType: eventType, payload: payload}
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Payload() interface{} { return e.payload }
