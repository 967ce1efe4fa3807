// Package plan implements the Planner (spec.md §4.7): for each source
// entity in topological order, emit a CREATE or SKIP step.
package plan

import (
	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/graph"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/match"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/transform"
)

// Action is the outcome the Builder executes for a step.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionSkip   Action = "SKIP"
)

// Step is one plan entry, spec.md §3.
type Step struct {
	Ordinal      int
	Action       Action
	Kind         entity.Kind
	SourceID     string
	SourceName   string
	NewName      string
	Dependencies []string
	Entity       entity.Entity
	TargetID     string // set for SKIP when an existing target entity was matched by name

	// TemplateTypeRemap is populated for a SKIP'd template step so the
	// Builder can register the template-type mapping even though no
	// create call happens - spec.md §4.7: "the planner also annotates the
	// step so that the Builder can register the appropriate templateType
	// remapping entries".
	TemplateTypeRemap *TemplateTypeHint
}

// TemplateTypeHint carries the source type-string forms a SKIP'd template
// should remap, once its target id is known.
type TemplateTypeHint struct {
	SourceContainerScoped string
	SourceGalleryForm     string // "" if none was found in templateData
}

// Options configures Planner.Build.
type Options struct {
	SkipExisting bool
	NewNames     map[string]string // sourceID -> new name override
}

// Plan is the full ordered creation plan plus collected warnings.
type Plan struct {
	Steps    []Step
	Warnings []string
}

// Build consumes the analysis result, the pre-loaded target snapshot, and
// naming overrides, and emits the ordered plan.
func Build(analysis *graph.AnalysisResult, source entity.Snapshot, target entity.Snapshot, opts Options) Plan {
	matcher := match.New(target)
	byID := make(map[string]entity.Entity, len(analysis.Graph.Nodes))
	for id, node := range analysis.Graph.Nodes {
		byID[id] = node.Entity
	}

	var p Plan
	for i, id := range analysis.Order {
		e, ok := byID[id]
		if !ok {
			p.Warnings = append(p.Warnings, "plan: missing node info for "+id)
			continue
		}

		newName := e.Name()
		if opts.NewNames != nil {
			if override, ok := opts.NewNames[id]; ok {
				newName = override
			}
		}

		step := Step{
			Ordinal:      i,
			Kind:         e.Kind,
			SourceID:     id,
			SourceName:   e.Name(),
			NewName:      newName,
			Dependencies: append([]string(nil), analysis.Graph.Nodes[id].DependsOn...),
			Entity:       e,
		}

		if opts.SkipExisting {
			if targetID, matched := matchExisting(matcher, e); matched {
				step.Action = ActionSkip
				step.TargetID = targetID
				if e.Kind == entity.KindTemplate {
					step.TemplateTypeRemap = buildTemplateHint(e.Template)
				}
				p.Warnings = append(p.Warnings, "skipping "+string(e.Kind)+" "+e.Name()+": exact name match found in target")
				p.Steps = append(p.Steps, step)
				continue
			}
		}

		step.Action = ActionCreate
		p.Steps = append(p.Steps, step)
	}

	return p
}

func matchExisting(matcher *match.Matcher, e entity.Entity) (string, bool) {
	switch e.Kind {
	case entity.KindTag:
		if t, ok := matcher.FindTagByExactName(e.Name()); ok {
			return t.ID, true
		}
	case entity.KindTrigger:
		if t, ok := matcher.FindTriggerByExactName(e.Name()); ok {
			return t.ID, true
		}
	case entity.KindVariable:
		if v, ok := matcher.FindVariableByExactName(e.Name()); ok {
			return v.ID, true
		}
	case entity.KindTemplate:
		if t, ok := matcher.FindTemplateByExactName(e.Name()); ok {
			return t.ID, true
		}
	}
	return "", false
}

func buildTemplateHint(tpl *entity.Template) *TemplateTypeHint {
	hint := &TemplateTypeHint{SourceContainerScoped: tpl.TypeString()}
	for _, candidate := range transform.ExtractGalleryCandidates(tpl.TemplateData) {
		hint.SourceGalleryForm = candidate
		break
	}
	return hint
}
