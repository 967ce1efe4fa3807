package graph

import (
	"regexp"
	"strings"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

// varRefPattern matches "{{name}}" style references embedded in literal
// parameter values, including inside JavaScript-variable code bodies -
// spec.md §4.1 requires the same syntactic match there, without parsing
// code semantically.
var varRefPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.\-]*)\s*\}\}`)

// KnownTemplateEvents is the curated KNOWN-TEMPLATE-EVENTS table (spec.md
// §4.1): tag type -> name of the parameter holding the pushed custom event
// name, for well-known tag types that push events without declaring an
// explicit "eventName" parameter. Implementations may register additional
// entries (spec.md §9 Open Questions) via RegisterKnownTemplateEvent.
var KnownTemplateEvents = map[string]string{
	"gaawe": "eventName",
	"ua":    "eventCategory",
}

// RegisterKnownTemplateEvent adds or overrides an entry in the curated
// KNOWN-TEMPLATE-EVENTS table. This is the extension point spec.md §9 calls
// out for implementations that need to cover additional tag types.
func RegisterKnownTemplateEvent(tagType, eventParam string) {
	KnownTemplateEvents[tagType] = eventParam
}

// AnalysisResult is the output of the Dependency Resolver: the graph, the
// topological order, and any non-fatal warnings collected while extracting
// edges (e.g. an unresolved "{{name}}" reference).
type AnalysisResult struct {
	Graph    *Graph
	Order    []string
	Warnings []string
}

// Analyze builds the dependency graph for the given snapshot and computes
// its topological order. It returns a *CycleError (wrapped) when a same-kind
// cycle makes the source un-orderable.
func Analyze(snapshot entity.Snapshot) (*AnalysisResult, error) {
	g := New()
	for _, e := range snapshot.Entities() {
		if err := g.AddNode(e); err != nil {
			return nil, entity.NewError("resolver", entity.ErrAnalysisFailed, "failed to add node", err)
		}
	}

	res := &AnalysisResult{Graph: g}

	templatesByType := make(map[string]*entity.Template, len(snapshot.Templates))
	for i := range snapshot.Templates {
		tpl := &snapshot.Templates[i]
		templatesByType[tpl.TypeString()] = tpl
	}

	for i := range snapshot.Tags {
		res.resolveTagEdges(g, &snapshot.Tags[i], snapshot, templatesByType)
	}
	for i := range snapshot.Triggers {
		res.resolveTriggerEdges(g, &snapshot.Triggers[i], snapshot)
	}
	for i := range snapshot.Variables {
		res.resolveVariableEdges(g, &snapshot.Variables[i], snapshot)
	}

	if err := g.TopologicalSort(); err != nil {
		return res, entity.NewError("resolver", entity.ErrCircularDependency, err.Error(), err)
	}
	res.Order = g.Order
	return res, nil
}

func (r *AnalysisResult) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *AnalysisResult) resolveTagEdges(g *Graph, tag *entity.Tag, snap entity.Snapshot, templatesByType map[string]*entity.Template) {
	for _, triggerID := range tag.FiringTriggerIDs {
		if !g.AddEdge(tag.ID, triggerID, EdgeTagTrigger) {
			r.warn("tag " + tag.ID + " references unknown firing trigger " + triggerID)
		}
	}
	for _, triggerID := range tag.BlockingTriggerIDs {
		if !g.AddEdge(tag.ID, triggerID, EdgeTagTrigger) {
			r.warn("tag " + tag.ID + " references unknown blocking trigger " + triggerID)
		}
	}
	if tag.SetupTagRef != nil && tag.SetupTagRef.IsID {
		if !g.AddEdge(tag.ID, tag.SetupTagRef.Value, EdgeTagSetupTag) {
			r.warn("tag " + tag.ID + " references unknown setup tag " + tag.SetupTagRef.Value)
		}
	}
	if tag.TeardownTagRef != nil && tag.TeardownTagRef.IsID {
		if !g.AddEdge(tag.ID, tag.TeardownTagRef.Value, EdgeTagTeardownTag) {
			r.warn("tag " + tag.ID + " references unknown teardown tag " + tag.TeardownTagRef.Value)
		}
	}
	if tag.ConfigTagID != "" {
		if !g.AddEdge(tag.ID, tag.ConfigTagID, EdgeTagConfigTag) {
			r.warn("tag " + tag.ID + " references unknown config tag " + tag.ConfigTagID)
		}
	}

	// Tag -> Template: exact container-scoped form first, then the first
	// template whose templateData contains the tag's type string.
	if strings.HasPrefix(tag.Type, "cvt_") {
		if tpl, ok := templatesByType[tag.Type]; ok {
			g.AddEdge(tag.ID, tpl.ID, EdgeTagTemplate)
		} else if tpl := findTemplateByShortForm(tag.Type, snap); tpl != nil {
			g.AddEdge(tag.ID, tpl.ID, EdgeTagTemplate)
		} else {
			r.warn("tag " + tag.ID + " references unresolved template type " + tag.Type)
		}
	}

	r.resolveParamVariableRefs(g, tag.ID, tag.Params, snap, EdgeTagVariable)

	// trigger -> tag custom-event edges: this tag may push a custom event
	// that some trigger's filter listens for.
	eventName := paramString(tag.Params, "eventName")
	if eventName == "" {
		if paramKey, ok := KnownTemplateEvents[tag.Type]; ok {
			eventName = paramString(tag.Params, paramKey)
		}
	}
	if eventName != "" {
		for i := range snap.Triggers {
			trig := &snap.Triggers[i]
			if triggerListensForEvent(trig, eventName) {
				g.AddEdge(trig.ID, tag.ID, EdgeTriggerCustomEvent)
			}
		}
	}
}

func (r *AnalysisResult) resolveTriggerEdges(g *Graph, trig *entity.Trigger, snap entity.Snapshot) {
	r.resolveParamVariableRefs(g, trig.ID, trig.Filter, snap, EdgeTriggerVariable)
	r.resolveParamVariableRefs(g, trig.ID, trig.AutoEventFilter, snap, EdgeTriggerVariable)
	r.resolveParamVariableRefs(g, trig.ID, trig.CustomEventFilter, snap, EdgeTriggerVariable)
	r.resolveParamVariableRefs(g, trig.ID, trig.Params, snap, EdgeTriggerVariable)
}

func (r *AnalysisResult) resolveVariableEdges(g *Graph, v *entity.Variable, snap entity.Snapshot) {
	r.resolveParamVariableRefs(g, v.ID, v.Params, snap, EdgeVariableVariable)
	if strings.HasPrefix(v.Type, "cvt_") {
		for i := range snap.Templates {
			if snap.Templates[i].TypeString() == v.Type {
				g.AddEdge(v.ID, snap.Templates[i].ID, EdgeVariableTemplate)
			}
		}
	}
}

// resolveParamVariableRefs walks a parameter subtree looking for "{{name}}"
// references, resolving each to a variable by exact name lookup. Unresolved
// names are recorded as warnings, not fatal errors, per spec.md §4.1.
func (r *AnalysisResult) resolveParamVariableRefs(g *Graph, fromID string, params []entity.Param, snap entity.Snapshot, kind EdgeKind) {
	for _, p := range params {
		for _, name := range varRefPattern.FindAllStringSubmatch(p.Value, -1) {
			varName := name[1]
			if v, ok := snap.FindVariableByName(varName); ok {
				g.AddEdge(fromID, v.ID, kind)
			} else {
				r.warn(fromID + " references unresolved variable name " + varName)
			}
		}
		r.resolveParamVariableRefs(g, fromID, p.List, snap, kind)
		r.resolveParamVariableRefs(g, fromID, p.Map, snap, kind)
	}
}

func paramString(params []entity.Param, key string) string {
	for _, p := range params {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

func triggerListensForEvent(trig *entity.Trigger, event string) bool {
	if trig.EventName == event {
		return true
	}
	for _, p := range trig.CustomEventFilter {
		if p.Key == "eventName" && p.Value == event {
			return true
		}
	}
	return false
}

func findTemplateByShortForm(tagType string, snap entity.Snapshot) *entity.Template {
	// tagType is already a cvt_ form; fall back to scanning for the first
	// template whose templateData contains it (a gallery-style form embedded
	// in the template body).
	for i := range snap.Templates {
		tpl := &snap.Templates[i]
		if strings.Contains(tpl.TemplateData, tagType) {
			return tpl
		}
	}
	return nil
}
