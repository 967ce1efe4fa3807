// Package graph implements the Dependency Resolver (spec.md §4.1): it builds
// a dependency DAG from heterogeneous entities and computes a deterministic
// topological creation order.
//
// The sort itself is grounded directly on the teacher's
// internal/engine/dag.go Graph.TopologicalSort, which is already Kahn's
// algorithm with sorted tie-breaking; this package generalizes the
// tie-break key from a bare step id to (kind priority, source name) and
// extends cycle handling to distinguish same-kind (fatal) from cross-kind
// (breakable) cycles, per spec.md §4.1.
package graph

import (
	"sort"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

// EdgeKind is a diagnostic hint attached to each dependency edge; it does
// not affect ordering, only error messages and introspection.
type EdgeKind string

const (
	EdgeTagTrigger        EdgeKind = "TAG_TRIGGER"
	EdgeTagSetupTag       EdgeKind = "TAG_SETUP_TAG"
	EdgeTagTeardownTag    EdgeKind = "TAG_TEARDOWN_TAG"
	EdgeTagConfigTag      EdgeKind = "TAG_CONFIG_TAG"
	EdgeTagVariable       EdgeKind = "TAG_VARIABLE"
	EdgeTagTemplate       EdgeKind = "TAG_TEMPLATE"
	EdgeTriggerVariable   EdgeKind = "TRIGGER_VARIABLE"
	EdgeTriggerCustomEvent EdgeKind = "TRIGGER_CUSTOM_EVENT"
	EdgeVariableVariable  EdgeKind = "VARIABLE_VARIABLE"
	EdgeVariableTemplate  EdgeKind = "VARIABLE_TEMPLATE"
)

// Edge records one dependency: From depends on To.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

// Node is one vertex of the dependency graph.
type Node struct {
	ID         string
	EntityKind entity.Kind
	Name       string
	Entity     entity.Entity
	DependsOn  []string // ids this node depends on
	Dependents []string // ids that depend on this node
}

// Graph is the dependency DAG over a set of entities.
type Graph struct {
	Nodes       map[string]*Node
	Edges       []Edge
	Order       []string // topological order, populated by TopologicalSort
	BrokenEdges []Edge   // cross-kind edges demoted to break a cycle
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode inserts an entity as a vertex. Duplicate ids are an error.
func (g *Graph) AddNode(e entity.Entity) error {
	id := e.ID()
	if id == "" {
		return entity.NewError("graph", entity.ErrInvalidInput, "entity missing id", nil)
	}
	if g.Nodes == nil {
		g.Nodes = make(map[string]*Node)
	}
	if _, exists := g.Nodes[id]; exists {
		return entity.NewError("graph", entity.ErrInvalidInput, "duplicate entity id "+id, nil)
	}
	g.Nodes[id] = &Node{ID: id, EntityKind: e.Kind, Name: e.Name(), Entity: e}
	return nil
}

// AddEdge records that `from` depends on `to`. Edges referencing unknown
// nodes are recorded as warnings by the caller (the resolver), not errors
// here - AddEdge itself is a pure graph-structure primitive.
func (g *Graph) AddEdge(from, to string, kind EdgeKind) bool {
	fromNode, ok := g.Nodes[from]
	if !ok {
		return false
	}
	toNode, ok := g.Nodes[to]
	if !ok {
		return false
	}
	if from == to {
		return false
	}
	for _, existing := range fromNode.DependsOn {
		if existing == to {
			return true // already recorded
		}
	}
	fromNode.DependsOn = append(fromNode.DependsOn, to)
	toNode.Dependents = append(toNode.Dependents, from)
	g.Edges = append(g.Edges, Edge{From: from, To: to, Kind: kind})
	return true
}

// CycleError describes a same-kind cycle detected during sort; it is fatal
// per spec.md §4.1.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "circular dependency detected: " + joinArrow(e.Path)
}

func joinArrow(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}

// TopologicalSort computes a deterministic creation order via Kahn's
// algorithm. Ties are broken by (kind priority, name) as spec.md §4.1
// requires: "among nodes with equal in-degree, sort by (kind priority,
// source-name)". A cycle confined to a single kind is fatal and returned as
// a *CycleError; a cycle crossing kinds is broken by dropping, for each
// unplaced node in stable order, its first dependency edge whose target is
// also unplaced, recording each dropped edge in g.BrokenEdges for
// diagnostics, and sorting again.
func (g *Graph) TopologicalSort() error {
	// indegree counts how many entities this node depends on that have not
	// yet been placed.
	indegree := make(map[string]int, len(g.Nodes))
	for id, node := range g.Nodes {
		indegree[id] = len(node.DependsOn)
	}

	ready := make([]string, 0)
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sortByPriorityThenName(g, ready)

	var order []string
	placed := make(map[string]bool, len(g.Nodes))

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		if placed[id] {
			continue
		}
		placed[id] = true
		order = append(order, id)

		node := g.Nodes[id]
		var unlocked []string
		for _, dependentID := range node.Dependents {
			indegree[dependentID]--
			if indegree[dependentID] == 0 {
				unlocked = append(unlocked, dependentID)
			}
		}
		sortByPriorityThenName(g, unlocked)
		ready = mergeSorted(g, ready, unlocked)
	}

	if len(order) == len(g.Nodes) {
		g.Order = order
		return nil
	}

	// Not everything was placed: a cycle exists among the remaining nodes.
	remaining := make([]string, 0)
	for id := range g.Nodes {
		if !placed[id] {
			remaining = append(remaining, id)
		}
	}
	sort.Strings(remaining)

	if sameKind(g, remaining) {
		cyclePath := findCyclePath(g, remaining)
		return &CycleError{Path: cyclePath}
	}

	// Cross-kind cycle: break it by demoting the back-edge(s) among the
	// remaining nodes - drop one dependency edge per remaining node (the
	// edge whose target is also unresolved) and re-run. We pick, for each
	// remaining node in stable order, its first unresolved dependency and
	// remove that edge, logging it as broken.
	stillBlocked := make(map[string]bool, len(remaining))
	for _, id := range remaining {
		stillBlocked[id] = true
	}
	for _, id := range remaining {
		node := g.Nodes[id]
		for i, dep := range node.DependsOn {
			if stillBlocked[dep] {
				g.BrokenEdges = append(g.BrokenEdges, Edge{From: id, To: dep, Kind: "BROKEN"})
				node.DependsOn = append(node.DependsOn[:i], node.DependsOn[i+1:]...)
				depNode := g.Nodes[dep]
				for j, d := range depNode.Dependents {
					if d == id {
						depNode.Dependents = append(depNode.Dependents[:j], depNode.Dependents[j+1:]...)
						break
					}
				}
				break
			}
		}
	}

	return g.TopologicalSort()
}

func sameKind(g *Graph, ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	k := g.Nodes[ids[0]].EntityKind
	for _, id := range ids {
		if g.Nodes[id].EntityKind != k {
			return false
		}
	}
	return true
}

// findCyclePath walks DependsOn edges among the given (already-known-cyclic)
// remaining nodes to produce a human-readable cycle, e.g. [A, B, A].
func findCyclePath(g *Graph, remaining []string) []string {
	if len(remaining) == 0 {
		return nil
	}
	start := remaining[0]
	visited := map[string]bool{}
	var path []string
	cur := start
	for !visited[cur] {
		visited[cur] = true
		path = append(path, cur)
		node := g.Nodes[cur]
		next := ""
		for _, dep := range node.DependsOn {
			for _, r := range remaining {
				if r == dep {
					next = dep
					break
				}
			}
			if next != "" {
				break
			}
		}
		if next == "" {
			break
		}
		cur = next
	}
	path = append(path, cur)
	return path
}

func sortByPriorityThenName(g *Graph, ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := g.Nodes[ids[i]], g.Nodes[ids[j]]
		pi, pj := entity.KindPriority(ni.EntityKind), entity.KindPriority(nj.EntityKind)
		if pi != pj {
			return pi < pj
		}
		if ni.Name != nj.Name {
			return ni.Name < nj.Name
		}
		return ni.ID < nj.ID
	})
}

// mergeSorted merges newly-unlocked ids into the ready queue, keeping the
// overall queue ordered by (kind priority, name) so that ties resolve
// deterministically regardless of discovery order - this is what makes
// TopologicalSort byte-identical across runs (spec.md §8 property 4).
func mergeSorted(g *Graph, ready, unlocked []string) []string {
	if len(unlocked) == 0 {
		return ready
	}
	merged := append(append([]string(nil), ready...), unlocked...)
	sortByPriorityThenName(g, merged)
	return merged
}
