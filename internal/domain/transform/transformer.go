// Package transform implements the Config Transformer (spec.md §4.3): given
// a source entity, the Identifier Mapper, and a target name, it produces the
// payload submitted to the backend on CREATE.
//
// It is grounded on the teacher's Pipeline.Clone (internal/domain/pipeline/
// pipeline.go) for the "deep-copy then selectively rewrite" shape, applied
// here to a generic map[string]interface{} payload instead of a typed step.
package transform

import (
	"regexp"
	"strings"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/idmap"
)

// serverAssignedFields are stripped from every payload before resubmission,
// per spec.md §4.3.
var serverAssignedFields = []string{
	"accountId", "containerId", "workspaceId",
	"tagId", "triggerId", "variableId", "templateId",
	"fingerprint", "path", "tagManagerUrl", "parentFolderId",
}

// gallerySentinel is the literal gallery id that must never be remapped -
// spec.md §4.8: "but only when the gallery id is neither the literal
// sentinel cvt_temp_public_id nor already equal to the target form".
const gallerySentinel = "cvt_temp_public_id"

// Transformer is purely a function of its inputs (payload, mapper snapshot,
// naming options) - spec.md §8 property 5. It holds no mutable state.
type Transformer struct{}

// New constructs a Transformer.
func New() *Transformer { return &Transformer{} }

// Options control name resolution precedence (spec.md §4.3): explicit
// override > prefix+source-name+suffix > source-name unchanged.
type Options struct {
	NameOverride string
	NamePrefix   string
	NameSuffix   string
}

// ResolveName applies the naming precedence rule.
func (o Options) ResolveName(sourceName string) string {
	if o.NameOverride != "" {
		return o.NameOverride
	}
	if o.NamePrefix != "" || o.NameSuffix != "" {
		return o.NamePrefix + sourceName + o.NameSuffix
	}
	return sourceName
}

// TransformTag produces the target payload for a tag.
func (t *Transformer) TransformTag(tag entity.Tag, mapper *idmap.Mapper, opts Options) (map[string]interface{}, []string) {
	var warnings []string
	payload := cloneAndStrip(tag.Raw)

	firing, allResolved := mapper.RemapIDList(tag.FiringTriggerIDs)
	if !allResolved {
		warnings = append(warnings, "tag "+tag.ID+": not every firing trigger id was resolved")
	}
	payload["firingTriggerId"] = firing

	blocking, allResolved := mapper.RemapIDList(tag.BlockingTriggerIDs)
	if !allResolved && len(tag.BlockingTriggerIDs) > 0 {
		warnings = append(warnings, "tag "+tag.ID+": not every blocking trigger id was resolved")
	}
	if len(blocking) > 0 {
		payload["blockingTriggerId"] = blocking
	}

	if tag.ConfigTagID != "" {
		if entry, ok := mapper.LookupID(tag.ConfigTagID); ok {
			setParam(payload, "configTagId", entry.TargetID)
		} else {
			warnings = append(warnings, "tag "+tag.ID+": configTagId "+tag.ConfigTagID+" not resolved")
		}
	}

	if ref, rewritten := rewriteTagRef(tag.SetupTagRef, mapper); rewritten {
		payload["setupTag"] = ref
	}
	if ref, rewritten := rewriteTagRef(tag.TeardownTagRef, mapper); rewritten {
		payload["teardownTag"] = ref
	}

	if strings.HasPrefix(tag.Type, "cvt_") {
		if target, ok := mapper.ResolveTemplateType(tag.Type); ok {
			payload["type"] = target
		} else {
			payload["type"] = tag.Type
			warnings = append(warnings, "tag "+tag.ID+": no target type mapping for "+tag.Type+"; preserving original")
		}
	}

	payload["name"] = opts.ResolveName(tag.Name)
	payload["parameter"] = cloneParams(tag.Params)
	return payload, warnings
}

// rewriteTagRef converts a setup/teardown tag reference to the form the
// target expects: a source name-form reference is preserved as a name; a
// source id-form reference is converted to the mapped entity's name.
func rewriteTagRef(ref *entity.EntityRef, mapper *idmap.Mapper) (map[string]interface{}, bool) {
	if ref == nil {
		return nil, false
	}
	if !ref.IsID {
		return map[string]interface{}{"tagName": ref.Value}, true
	}
	if entry, ok := mapper.LookupID(ref.Value); ok {
		return map[string]interface{}{"tagName": entry.FinalName}, true
	}
	return map[string]interface{}{"tagId": ref.Value}, true
}

// TransformTrigger deep-clones a trigger's filter structures - they
// reference variables by embedded name only, so no id rewrite is needed.
func (t *Transformer) TransformTrigger(trig entity.Trigger, opts Options) map[string]interface{} {
	payload := cloneAndStrip(trig.Raw)
	payload["name"] = opts.ResolveName(trig.Name)
	payload["parameter"] = cloneParams(trig.Params)
	payload["filter"] = cloneParams(trig.Filter)
	payload["autoEventFilter"] = cloneParams(trig.AutoEventFilter)
	payload["customEventFilter"] = cloneParams(trig.CustomEventFilter)
	return payload
}

// TransformVariable deep-clones a variable's parameter tree; names embedded
// in "{{name}}" references are preserved unchanged.
func (t *Transformer) TransformVariable(v entity.Variable, opts Options) map[string]interface{} {
	payload := cloneAndStrip(v.Raw)
	payload["name"] = opts.ResolveName(v.Name)
	payload["parameter"] = cloneParams(v.Params)
	return payload
}

// TransformTemplate strips server metadata and any gallery-reference block;
// templateData itself is carried through unchanged (the Builder rewrites
// gallery ids inside it only in the Identifier Mapper, not in the
// outgoing payload - spec.md never asks the transformer to rewrite
// templateData, only the Builder to derive a mapping from it).
func (t *Transformer) TransformTemplate(tpl entity.Template, opts Options) map[string]interface{} {
	payload := cloneAndStrip(tpl.Raw)
	delete(payload, "galleryReference")
	payload["name"] = opts.ResolveName(tpl.Name)
	payload["templateData"] = tpl.TemplateData
	return payload
}

func cloneAndStrip(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for _, field := range serverAssignedFields {
		delete(out, field)
	}
	return out
}

func cloneParams(params []entity.Param) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(params))
	for _, p := range params {
		node := map[string]interface{}{
			"type": string(p.Kind),
			"key":  p.Key,
		}
		if p.Value != "" {
			node["value"] = p.Value
		}
		if len(p.List) > 0 {
			node["list"] = cloneParams(p.List)
		}
		if len(p.Map) > 0 {
			node["map"] = cloneParams(p.Map)
		}
		out = append(out, node)
	}
	return out
}

func setParam(payload map[string]interface{}, key, value string) {
	payload[key] = value
}

// GallerySentinel exposes the literal sentinel gallery id for callers (the
// Builder) deciding whether a discovered gallery id warrants a remap.
func GallerySentinel() string { return gallerySentinel }

var galleryIDPattern = regexp.MustCompile(`cvt_[A-Za-z0-9_]+`)

// ExtractGalleryCandidates scans a template's templateData blob for
// embedded "cvt_*" id literals - the secondary gallery-id form spec.md
// §3/§4.8 describes, distinct from the template's own container-scoped
// type string. The sentinel literal is excluded, since it is never a real
// target-workspace reference.
func ExtractGalleryCandidates(templateData string) []string {
	matches := galleryIDPattern.FindAllString(templateData, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if m == gallerySentinel {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
