// Package entity defines the tagged-variant data model shared by every
// stage of the replication pipeline: Tag, Trigger, Variable, and Template,
// plus the recursive parameter tree they embed.
//
// Rather than a virtual class hierarchy, entities are a tagged variant
// (Kind + kind-specific payload struct) the way the teacher pipeline models
// Step/StepType (internal/domain/pipeline/step.go): a small header carries
// the fields every component needs (ID, Name, Kind); the payload lives in
// one pointer field per kind, exactly one of which is set for a given Kind.
package entity

import "fmt"

// Kind is the closed set of entity kinds spec.md §3 defines.
type Kind string

const (
	KindTag      Kind = "tag"
	KindTrigger  Kind = "trigger"
	KindVariable Kind = "variable"
	KindTemplate Kind = "template"
)

// ParamKind enumerates the parameter-tree node kinds.
type ParamKind string

const (
	ParamTemplate ParamKind = "template"
	ParamBoolean  ParamKind = "boolean"
	ParamList     ParamKind = "list"
	ParamMap      ParamKind = "map"
)

// MaxParamDepth is the maximum nesting depth a parameter tree may reach.
// Depth 3 is accepted; depth 4 is rejected (spec.md §8 boundary case).
const MaxParamDepth = 3

// Param is one node of the recursive parameter tree. Value may contain
// "{{variable-name}}" substitutions, which are left intact verbatim by every
// stage of replication - they are resolved by name at runtime in the target
// workspace, not rewritten during replication.
type Param struct {
	Kind  ParamKind
	Key   string
	Value string
	List  []Param
	Map   []Param
}

// Depth returns the maximum nesting depth reached by this subtree, where a
// leaf node (no List/Map children) has depth 1.
func (p Param) Depth() int {
	maxChild := 0
	for _, child := range p.List {
		if d := child.Depth(); d > maxChild {
			maxChild = d
		}
	}
	for _, child := range p.Map {
		if d := child.Depth(); d > maxChild {
			maxChild = d
		}
	}
	return 1 + maxChild
}

// Validate rejects parameter trees deeper than MaxParamDepth.
func (p Param) Validate() error {
	if d := p.Depth(); d > MaxParamDepth {
		return NewError("entity", ErrInvalidInput, fmt.Sprintf("parameter tree depth %d exceeds maximum %d", d, MaxParamDepth), nil)
	}
	return nil
}

// Header carries the fields common to every entity kind. Raw holds the
// entity's full backend payload (as the Backend Adapter returned it),
// including server-assigned metadata fields the Config Transformer must
// strip before resubmission - keeping Raw alongside the typed convenience
// fields lets the transformer operate generically (walk-and-filter a
// map) the way spec.md §4.3 describes it, without a duplicate struct
// per kind for "the same data, minus five fields".
type Header struct {
	ID   string
	Name string
	Kind Kind
	Raw  map[string]interface{}
}

// Tag is a firing unit. FiringTriggerIDs/BlockingTriggerIDs reference
// Triggers by id. SetupTagRef/TeardownTagRef reference a Tag either by id or
// by name (IsID distinguishes the two forms, per spec.md §4.3's
// name-vs-id preservation rule). ConfigTagID is the "configTagId" parameter
// value, when present, referencing a Tag by id.
type Tag struct {
	Header
	Type              string
	Params            []Param
	FiringTriggerIDs  []string
	BlockingTriggerIDs []string
	SetupTagRef       *EntityRef
	TeardownTagRef    *EntityRef
	ConfigTagID       string
}

// EntityRef is a reference that may be expressed either as an id or as a
// name, mirroring the teacher's tagged-union approach applied to a single
// field instead of a whole entity.
type EntityRef struct {
	IsID  bool
	Value string
}

// Trigger is a firing condition. Filter/AutoEventFilter/CustomEventFilter
// hold parameter subtrees whose literal Value strings may embed
// "{{variable-name}}" references; EventName is the custom-event name this
// trigger listens for, when Type is a custom-event trigger.
type Trigger struct {
	Header
	Type               string
	Params             []Param
	Filter             []Param
	AutoEventFilter    []Param
	CustomEventFilter  []Param
	EventName          string
}

// Variable is a value producer. Params may embed "{{name}}" references to
// other variables, including inside a JavaScript-style code body carried as
// a literal Value string.
type Variable struct {
	Header
	Type   string
	Params []Param
}

// Template is a reusable tag/variable type definition. TemplateData is an
// opaque blob that may itself embed a gallery id (a "cvt_*" literal distinct
// from the template's own container-scoped type string).
type Template struct {
	Header
	TemplateData string
	ContainerID  string
}

// TypeString returns the derived "cvt_<containerId>_<templateId>" type
// string tags reference by way of their Type field.
func (t Template) TypeString() string {
	return fmt.Sprintf("cvt_%s_%s", t.ContainerID, t.ID)
}

// Entity is the tagged-variant wrapper: exactly one of Tag/Trigger/Variable/
// Template is non-nil, selected by Kind.
type Entity struct {
	Kind     Kind
	Tag      *Tag
	Trigger  *Trigger
	Variable *Variable
	Template *Template
}

// ID returns the wrapped entity's identifier regardless of kind.
func (e Entity) ID() string {
	switch e.Kind {
	case KindTag:
		return e.Tag.ID
	case KindTrigger:
		return e.Trigger.ID
	case KindVariable:
		return e.Variable.ID
	case KindTemplate:
		return e.Template.ID
	}
	return ""
}

// Name returns the wrapped entity's name regardless of kind.
func (e Entity) Name() string {
	switch e.Kind {
	case KindTag:
		return e.Tag.Name
	case KindTrigger:
		return e.Trigger.Name
	case KindVariable:
		return e.Variable.Name
	case KindTemplate:
		return e.Template.Name
	}
	return ""
}

// KindPriority orders kinds for tie-breaking during topological sort, per
// spec.md §4.1: "Template < Variable < Trigger < Tag".
func KindPriority(k Kind) int {
	switch k {
	case KindTemplate:
		return 0
	case KindVariable:
		return 1
	case KindTrigger:
		return 2
	case KindTag:
		return 3
	}
	return 99
}

// TagEntity wraps a Tag into an Entity.
func TagEntity(t *Tag) Entity { return Entity{Kind: KindTag, Tag: t} }

// TriggerEntity wraps a Trigger into an Entity.
func TriggerEntity(t *Trigger) Entity { return Entity{Kind: KindTrigger, Trigger: t} }

// VariableEntity wraps a Variable into an Entity.
func VariableEntity(v *Variable) Entity { return Entity{Kind: KindVariable, Variable: v} }

// TemplateEntity wraps a Template into an Entity.
func TemplateEntity(t *Template) Entity { return Entity{Kind: KindTemplate, Template: t} }

// Snapshot is a read-only collection of entities of every kind, as returned
// by a Backend Adapter list operation or held as the source/target snapshot
// in WorkflowState.
type Snapshot struct {
	Tags      []Tag
	Triggers  []Trigger
	Variables []Variable
	Templates []Template
}

// Entities flattens the snapshot into the tagged-variant form the
// Dependency Resolver and Planner consume.
func (s Snapshot) Entities() []Entity {
	out := make([]Entity, 0, len(s.Tags)+len(s.Triggers)+len(s.Variables)+len(s.Templates))
	for i := range s.Templates {
		out = append(out, TemplateEntity(&s.Templates[i]))
	}
	for i := range s.Variables {
		out = append(out, VariableEntity(&s.Variables[i]))
	}
	for i := range s.Triggers {
		out = append(out, TriggerEntity(&s.Triggers[i]))
	}
	for i := range s.Tags {
		out = append(out, TagEntity(&s.Tags[i]))
	}
	return out
}

// FindTagByName returns the first tag with an exact name match.
func (s Snapshot) FindTagByName(name string) (*Tag, bool) {
	for i := range s.Tags {
		if s.Tags[i].Name == name {
			return &s.Tags[i], true
		}
	}
	return nil, false
}

// FindTriggerByName returns the first trigger with an exact name match.
func (s Snapshot) FindTriggerByName(name string) (*Trigger, bool) {
	for i := range s.Triggers {
		if s.Triggers[i].Name == name {
			return &s.Triggers[i], true
		}
	}
	return nil, false
}

// FindVariableByName returns the first variable with an exact name match.
func (s Snapshot) FindVariableByName(name string) (*Variable, bool) {
	for i := range s.Variables {
		if s.Variables[i].Name == name {
			return &s.Variables[i], true
		}
	}
	return nil, false
}

// FindTemplateByName returns the first template with an exact name match.
func (s Snapshot) FindTemplateByName(name string) (*Template, bool) {
	for i := range s.Templates {
		if s.Templates[i].Name == name {
			return &s.Templates[i], true
		}
	}
	return nil, false
}
