// Package idmap implements the Identifier Mapper (spec.md §4.2): a
// thread-safe sourceId->targetId map plus a parallel
// templateTypeString map, owned exclusively by the Builder during a build
// phase (spec.md §3 Ownership).
package idmap

import (
	"sync"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

// Entry is one bound identifier mapping.
type Entry struct {
	SourceID  string
	TargetID  string
	Kind      entity.Kind
	FinalName string
}

// Mapper is the Identifier Mapper. The zero value is not usable; use New.
type Mapper struct {
	mu       sync.RWMutex
	byID     map[string]Entry
	byType   map[string]string
}

// New creates an empty Mapper.
func New() *Mapper {
	return &Mapper{
		byID:   make(map[string]Entry),
		byType: make(map[string]string),
	}
}

// Bind records sourceID -> targetID. Re-binding the same sourceID to an
// identical tuple is a no-op (idempotent); re-binding to a different tuple
// is an error, per spec.md §4.2.
func (m *Mapper) Bind(sourceID, targetID string, kind entity.Kind, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byID[sourceID]; ok {
		if existing.TargetID == targetID && existing.Kind == kind && existing.FinalName == name {
			return nil
		}
		return entity.NewError("idmap", entity.ErrStateInvalid, "conflicting rebind for id "+sourceID, nil)
	}
	m.byID[sourceID] = Entry{SourceID: sourceID, TargetID: targetID, Kind: kind, FinalName: name}
	return nil
}

// LookupID returns the bound entry for a source id, if any.
func (m *Mapper) LookupID(sourceID string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[sourceID]
	return e, ok
}

// RemapIDList substitutes mapped ids in order, leaving unknown ids
// unchanged. The bool return reports whether every id in the list resolved
// to a binding (false means at least one was left unchanged - callers
// should surface that as a warning).
func (m *Mapper) RemapIDList(ids []string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(ids))
	allResolved := true
	for i, id := range ids {
		if e, ok := m.byID[id]; ok {
			out[i] = e.TargetID
		} else {
			out[i] = id
			allResolved = false
		}
	}
	return out, allResolved
}

// BindTemplateType records a source->target template-type-string mapping
// (the container-scoped form and, separately, any embedded gallery form).
// Same conflict discipline as Bind.
func (m *Mapper) BindTemplateType(source, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byType[source]; ok {
		if existing == target {
			return nil
		}
		return entity.NewError("idmap", entity.ErrStateInvalid, "conflicting template type rebind for "+source, nil)
	}
	m.byType[source] = target
	return nil
}

// ResolveTemplateType looks up a target type string for a source type
// string (container-scoped or gallery form).
func (m *Mapper) ResolveTemplateType(source string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.byType[source]
	return t, ok
}

// Entries returns a defensive snapshot of all bound id entries, for
// read-only consumption by components outside the Builder's ownership
// window (spec.md §3 Ownership: "reads by other components must occur
// before or after build").
func (m *Mapper) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.byID))
	for _, e := range m.byID {
		out = append(out, e)
	}
	return out
}

// TemplateTypeEntries returns a defensive snapshot of the template-type map.
func (m *Mapper) TemplateTypeEntries() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.byType))
	for k, v := range m.byType {
		out[k] = v
	}
	return out
}
