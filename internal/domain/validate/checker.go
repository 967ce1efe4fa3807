// Package validate implements the Validation Checker (spec.md §4.6):
// pre-creation name-conflict checks, post-creation completeness and
// reference-integrity checks, and a standalone integrity walk.
package validate

import (
	"time"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/idmap"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/match"
	"github.com/alexisbeaulieu97/tagsync/pkg/diff"
)

// Stub is an about-to-be-created entity considered during pre-validation.
type Stub struct {
	Kind entity.Kind
	Name string
}

// Conflict describes a name collision found during pre-validation.
type Conflict struct {
	Kind   entity.Kind
	Name   string
	Reason string
}

// PreValidate checks intended names against the target snapshot for
// same-kind collisions.
func PreValidate(stubs []Stub, target entity.Snapshot) (bool, []Conflict) {
	matcher := match.New(target)
	var conflicts []Conflict
	for _, s := range stubs {
		switch s.Kind {
		case entity.KindTag:
			if _, ok := matcher.FindTagByExactName(s.Name); ok {
				conflicts = append(conflicts, Conflict{Kind: s.Kind, Name: s.Name, Reason: "tag name already exists in target"})
			}
		case entity.KindTrigger:
			if _, ok := matcher.FindTriggerByExactName(s.Name); ok {
				conflicts = append(conflicts, Conflict{Kind: s.Kind, Name: s.Name, Reason: "trigger name already exists in target"})
			}
		case entity.KindVariable:
			if _, ok := matcher.FindVariableByExactName(s.Name); ok {
				conflicts = append(conflicts, Conflict{Kind: s.Kind, Name: s.Name, Reason: "variable name already exists in target"})
			}
		case entity.KindTemplate:
			if _, ok := matcher.FindTemplateByExactName(s.Name); ok {
				conflicts = append(conflicts, Conflict{Kind: s.Kind, Name: s.Name, Reason: "template name already exists in target"})
			}
		}
	}
	return len(conflicts) == 0, conflicts
}

// Report is the post-creation validation report, spec.md §4.6.
type Report struct {
	Success          bool
	Summary          Summary
	Missing          []MissingEntity
	BrokenReferences []BrokenReference
	Warnings         []string
	Timestamp        time.Time
}

// Summary carries the aggregate counts for Report.
type Summary struct {
	ExpectedCount   int
	ActualCount     int
	MissingCount    int
	BrokenRefCount  int
}

// MissingEntity is a source entity whose mapped target is absent from the
// fresh target snapshot.
type MissingEntity struct {
	SourceID string
	Kind     entity.Kind
	Name     string
}

// BrokenReference is a target entity referring to an id absent from the
// target.
type BrokenReference struct {
	Kind       entity.Kind
	Name       string
	IssueType  string
	Details    string
}

// PostValidate compares the fresh target snapshot against the source
// snapshot and id mapping, producing a completeness/integrity report.
func PostValidate(source, target entity.Snapshot, mapper *idmap.Mapper) Report {
	report := Report{Success: true, Timestamp: time.Now()}

	sourceEntities := source.Entities()
	report.Summary.ExpectedCount = len(sourceEntities)

	targetIDs := make(map[string]struct{})
	for _, e := range target.Entities() {
		targetIDs[e.ID()] = struct{}{}
	}
	report.Summary.ActualCount = len(targetIDs)

	for _, e := range sourceEntities {
		entry, bound := mapper.LookupID(e.ID())
		if !bound {
			report.Missing = append(report.Missing, MissingEntity{SourceID: e.ID(), Kind: e.Kind, Name: e.Name()})
			continue
		}
		if _, exists := targetIDs[entry.TargetID]; !exists {
			report.Missing = append(report.Missing, MissingEntity{SourceID: e.ID(), Kind: e.Kind, Name: e.Name()})
		}
	}
	report.Summary.MissingCount = len(report.Missing)

	integrityIssues := CheckIntegrity(target)
	for _, issue := range integrityIssues {
		report.BrokenReferences = append(report.BrokenReferences, BrokenReference{
			Kind: issue.Kind, Name: issue.Name, IssueType: issue.IssueType, Details: issue.Details,
		})
	}
	report.Summary.BrokenRefCount = len(report.BrokenReferences)

	report.Success = report.Summary.MissingCount == 0 && report.Summary.BrokenRefCount == 0
	return report
}

// IntegrityIssue is one problem found while walking the target snapshot.
type IntegrityIssue struct {
	Kind      entity.Kind
	Name      string
	IssueType string
	Details   string
}

const (
	IssueMissingTrigger  = "missing_trigger"
	IssueMissingVariable = "missing_variable"
)

// CheckIntegrity walks the target snapshot standalone: every tag's firing
// triggers must exist, and every "{{name}}" reference in any parameter must
// resolve to an existing variable in the target.
func CheckIntegrity(target entity.Snapshot) []IntegrityIssue {
	var issues []IntegrityIssue

	triggerIDs := make(map[string]struct{}, len(target.Triggers))
	for _, t := range target.Triggers {
		triggerIDs[t.ID] = struct{}{}
	}
	variableNames := make(map[string]struct{}, len(target.Variables))
	for _, v := range target.Variables {
		variableNames[v.Name] = struct{}{}
	}

	for _, tag := range target.Tags {
		for _, triggerID := range tag.FiringTriggerIDs {
			if _, ok := triggerIDs[triggerID]; !ok {
				issues = append(issues, IntegrityIssue{
					Kind: entity.KindTag, Name: tag.Name, IssueType: IssueMissingTrigger,
					Details: "firing trigger " + triggerID + " not found in target",
				})
			}
		}
		issues = append(issues, checkParamVariableRefs(entity.KindTag, tag.Name, tag.Params, variableNames)...)
	}
	for _, trig := range target.Triggers {
		issues = append(issues, checkParamVariableRefs(entity.KindTrigger, trig.Name, trig.Params, variableNames)...)
		issues = append(issues, checkParamVariableRefs(entity.KindTrigger, trig.Name, trig.Filter, variableNames)...)
	}
	for _, v := range target.Variables {
		issues = append(issues, checkParamVariableRefs(entity.KindVariable, v.Name, v.Params, variableNames)...)
	}

	return issues
}

func checkParamVariableRefs(kind entity.Kind, name string, params []entity.Param, variableNames map[string]struct{}) []IntegrityIssue {
	var issues []IntegrityIssue
	for _, p := range params {
		for _, ref := range extractVarRefs(p.Value) {
			if _, ok := variableNames[ref]; !ok {
				issues = append(issues, IntegrityIssue{
					Kind: kind, Name: name, IssueType: IssueMissingVariable,
					Details: "reference to undefined variable " + ref,
				})
			}
		}
		issues = append(issues, checkParamVariableRefs(kind, name, p.List, variableNames)...)
		issues = append(issues, checkParamVariableRefs(kind, name, p.Map, variableNames)...)
	}
	return issues
}

// DriftCheck renders a unified diff between a SKIP step's matched target
// payload and the source payload it would otherwise have created, letting
// an operator see whether the reused target entity actually matches the
// source - spec.md §9 Open Questions: "If the domain requires drift
// detection, a post-SKIP diff check should be added." The engine itself
// never runs this automatically; it is exposed for callers that opt in.
func DriftCheck(sourcePayload, targetPayload []byte) string {
	return diff.GenerateUnifiedDiff(sourcePayload, targetPayload, "source", "target")
}

func extractVarRefs(value string) []string {
	return varRefNames(value)
}
