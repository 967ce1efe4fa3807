package memory

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

// exportDocument is the on-disk shape of a workspace export: a flat JSON
// object keyed by entity kind, each a list of raw API-shaped objects. This
// mirrors how a tag-management backend's list endpoints serialize entities,
// so Raw can be kept byte-for-byte and replayed through the Config
// Transformer unchanged.
type exportDocument struct {
	Tags      []map[string]interface{} `json:"tag"`
	Triggers  []map[string]interface{} `json:"trigger"`
	Variables []map[string]interface{} `json:"variable"`
	Templates []map[string]interface{} `json:"customTemplate"`
}

// DecodeSnapshot parses a workspace export document into a Snapshot,
// deriving the typed convenience fields each domain package needs from the
// raw payload while keeping Raw intact.
func DecodeSnapshot(r io.Reader) (entity.Snapshot, error) {
	var doc exportDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return entity.Snapshot{}, fmt.Errorf("decode workspace export: %w", err)
	}

	var snap entity.Snapshot
	for _, raw := range doc.Tags {
		snap.Tags = append(snap.Tags, decodeTag(raw))
	}
	for _, raw := range doc.Triggers {
		snap.Triggers = append(snap.Triggers, decodeTrigger(raw))
	}
	for _, raw := range doc.Variables {
		snap.Variables = append(snap.Variables, decodeVariable(raw))
	}
	for _, raw := range doc.Templates {
		snap.Templates = append(snap.Templates, decodeTemplate(raw))
	}
	return snap, nil
}

func header(raw map[string]interface{}, kind entity.Kind) entity.Header {
	return entity.Header{
		ID:   stringField(raw, "tagId", "triggerId", "variableId", "templateId"),
		Name: stringField(raw, "name"),
		Kind: kind,
		Raw:  raw,
	}
}

func stringField(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func stringSliceField(raw map[string]interface{}, key string) []string {
	v, ok := raw[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, item := range v {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func decodeParams(raw map[string]interface{}, key string) []entity.Param {
	v, ok := raw[key].([]interface{})
	if !ok {
		return nil
	}
	return decodeParamList(v)
}

func decodeParamList(items []interface{}) []entity.Param {
	out := make([]entity.Param, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		p := entity.Param{
			Kind: entity.ParamKind(stringField(m, "type")),
			Key:  stringField(m, "key"),
		}
		if v, ok := m["value"].(string); ok {
			p.Value = v
		}
		if list, ok := m["list"].([]interface{}); ok {
			p.List = decodeParamList(list)
		}
		if mp, ok := m["map"].([]interface{}); ok {
			p.Map = decodeParamList(mp)
		}
		out = append(out, p)
	}
	return out
}

func decodeEntityRef(raw map[string]interface{}, idKey, nameKey string) *entity.EntityRef {
	if name, ok := raw[nameKey].(string); ok && name != "" {
		return &entity.EntityRef{IsID: false, Value: name}
	}
	if id, ok := raw[idKey].(string); ok && id != "" {
		return &entity.EntityRef{IsID: true, Value: id}
	}
	return nil
}

func decodeTag(raw map[string]interface{}) entity.Tag {
	t := entity.Tag{
		Header:             header(raw, entity.KindTag),
		Type:               stringField(raw, "type"),
		Params:             decodeParams(raw, "parameter"),
		FiringTriggerIDs:   stringSliceField(raw, "firingTriggerId"),
		BlockingTriggerIDs: stringSliceField(raw, "blockingTriggerId"),
		ConfigTagID:        stringField(raw, "configTagId"),
	}
	if setup, ok := raw["setupTag"].(map[string]interface{}); ok {
		t.SetupTagRef = decodeEntityRef(setup, "tagId", "tagName")
	}
	if teardown, ok := raw["teardownTag"].(map[string]interface{}); ok {
		t.TeardownTagRef = decodeEntityRef(teardown, "tagId", "tagName")
	}
	return t
}

func decodeTrigger(raw map[string]interface{}) entity.Trigger {
	return entity.Trigger{
		Header:            header(raw, entity.KindTrigger),
		Type:              stringField(raw, "type"),
		Params:            decodeParams(raw, "parameter"),
		Filter:            decodeParams(raw, "filter"),
		AutoEventFilter:   decodeParams(raw, "autoEventFilter"),
		CustomEventFilter: decodeParams(raw, "customEventFilter"),
		EventName:         stringField(raw, "eventName", "customEventFilter"),
	}
}

func decodeVariable(raw map[string]interface{}) entity.Variable {
	return entity.Variable{
		Header: header(raw, entity.KindVariable),
		Type:   stringField(raw, "type"),
		Params: decodeParams(raw, "parameter"),
	}
}

func decodeTemplate(raw map[string]interface{}) entity.Template {
	return entity.Template{
		Header:       header(raw, entity.KindTemplate),
		TemplateData: stringField(raw, "templateData"),
		ContainerID:  stringField(raw, "containerId"),
	}
}
