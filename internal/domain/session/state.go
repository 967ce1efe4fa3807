// Package session holds the WorkflowState shared value (spec.md §3) that
// the Orchestrator owns and threads through the five pipeline stages.
package session

import (
	"time"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/graph"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/idmap"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/naming"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/plan"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/validate"
)

// Phase is the workflow phase, advancing monotonically except for Error,
// which is absorbing within a run - spec.md §3.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseNaming     Phase = "naming"
	PhasePlanning   Phase = "planning"
	PhaseBuilding   Phase = "building"
	PhaseValidating Phase = "validating"
	PhaseCompleted  Phase = "completed"
	PhaseError      Phase = "error"
)

// phaseRank defines the monotonic ordering phases must advance through.
var phaseRank = map[Phase]int{
	PhaseIdle:       0,
	PhaseAnalyzing:  1,
	PhaseNaming:     2,
	PhasePlanning:   3,
	PhaseBuilding:   4,
	PhaseValidating: 5,
	PhaseCompleted:  6,
}

// CreatedEntity records one successful creation during the build phase, in
// chronological order - spec.md §3 "Created-entity list is append-only".
type CreatedEntity struct {
	SourceID string
	TargetID string
	Kind     entity.Kind
	Name     string
}

// State is the single mutable value a session's Orchestrator owns and
// threads through Analyze -> Name -> Plan -> Build -> Validate. Per
// spec.md §3 Ownership: the source snapshot is read-only after analysis,
// the target snapshot is read-only after planning, and the id mapping is
// owned exclusively by the Builder during its phase.
type State struct {
	SessionID string
	Phase     Phase

	SourceWorkspace string
	TargetWorkspace string

	SourceSnapshot entity.Snapshot
	TargetSnapshot entity.Snapshot

	Analysis   *graph.AnalysisResult
	NamingMap  map[string]string // sourceID -> new name
	Patterns   map[entity.Kind]naming.Pattern
	Plan       plan.Plan
	Mapper     *idmap.Mapper
	Created    []CreatedEntity
	Validation *validate.Report

	Errors   []error
	Warnings []string

	StartedAt time.Time
}

// New creates an idle State for a fresh session.
func New(sessionID, sourceWorkspace, targetWorkspace string) *State {
	return &State{
		SessionID:       sessionID,
		Phase:           PhaseIdle,
		SourceWorkspace: sourceWorkspace,
		TargetWorkspace: targetWorkspace,
		Mapper:          idmap.New(),
		NamingMap:       make(map[string]string),
		Patterns:        make(map[entity.Kind]naming.Pattern),
		StartedAt:       time.Now(),
	}
}

// Advance moves the state to the next phase, enforcing the monotonic
// invariant. Advancing to PhaseError is always allowed (absorbing).
func (s *State) Advance(next Phase) error {
	if next == PhaseError {
		s.Phase = PhaseError
		return nil
	}
	if s.Phase == PhaseError {
		return entity.NewError("session", entity.ErrStateInvalid, "cannot advance out of error state", nil)
	}
	if phaseRank[next] < phaseRank[s.Phase] {
		return entity.NewError("session", entity.ErrStateInvalid, "phase must advance monotonically", nil)
	}
	s.Phase = next
	return nil
}

// Fail records a fatal error and transitions to PhaseError.
func (s *State) Fail(err error) {
	s.Errors = append(s.Errors, err)
	s.Phase = PhaseError
}

// Warn records a non-fatal warning.
func (s *State) Warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// Progress is the computed progress view, spec.md §4.9.
type Progress struct {
	Phase       Phase
	CurrentStep int
	TotalSteps  int
	Description string
	Percentage  float64
}

// phaseWeight is the fixed weighting of each phase used to compute overall
// percentage - phases earlier in the pipeline are cheaper than Build, which
// dominates wall-clock due to the rate limit.
var phaseWeight = map[Phase]float64{
	PhaseIdle:       0,
	PhaseAnalyzing:  0.10,
	PhaseNaming:     0.15,
	PhasePlanning:   0.25,
	PhaseBuilding:   0.85,
	PhaseValidating: 0.95,
	PhaseCompleted:  1.0,
	PhaseError:      1.0,
}

// ComputeProgress derives a Progress view from the current state and the
// Builder's own step cursor (currentStep/totalSteps), non-blocking and
// read-only.
func (s *State) ComputeProgress(currentStep, totalSteps int, description string) Progress {
	base := phaseWeight[s.Phase]
	pct := base * 100
	if s.Phase == PhaseBuilding && totalSteps > 0 {
		buildSpan := phaseWeight[PhaseValidating] - phaseWeight[PhasePlanning]
		pct = phaseWeight[PhasePlanning]*100 + buildSpan*100*float64(currentStep)/float64(totalSteps)
	}
	return Progress{
		Phase:       s.Phase,
		CurrentStep: currentStep,
		TotalSteps:  totalSteps,
		Description: description,
		Percentage:  pct,
	}
}
