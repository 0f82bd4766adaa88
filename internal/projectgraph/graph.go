// Package projectgraph builds and topologically sorts the dependency graph
// of discovered projects, grounded on the teacher's
// pkg/depsgraph/{builder,graph}.go (two-pass construction, Kahn's algorithm).
package projectgraph

import (
	"fmt"
	"sort"

	"github.com/ilblu/belaf/internal/repopath"
)

// ID is a dense index into a Graph's node arena, per the "dense index, not
// owning pointers" design note.
type ID int

// Node is one discovered project.
type Node struct {
	ID        ID
	Name      string
	Ecosystem string
	Path      repopath.Path
}

// Graph is a directed dependency graph over discovered projects: an edge
// from A to B means A depends on B.
type Graph struct {
	nodes     []Node
	nameToID  map[string]ID
	edges     map[ID][]ID // dependencies
	revEdges  map[ID][]ID // dependents
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		nameToID: make(map[string]ID),
		edges:    make(map[ID][]ID),
		revEdges: make(map[ID][]ID),
	}
}

// AddNode registers a project and returns its ID. Adding the same name
// twice is a caller error surfaced as belerr.DuplicateProject by the
// release planner's Discover, which calls this; Graph itself just returns
// the existing ID idempotently.
func (g *Graph) AddNode(name, ecosystem string, path repopath.Path) ID {
	if id, ok := g.nameToID[name]; ok {
		return id
	}
	id := ID(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Name: name, Ecosystem: ecosystem, Path: path})
	g.nameToID[name] = id
	return id
}

// Lookup finds a node's ID by name.
func (g *Graph) Lookup(name string) (ID, bool) {
	id, ok := g.nameToID[name]
	return id, ok
}

// Node returns the Node for id.
func (g *Graph) Node(id ID) Node {
	return g.nodes[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// AddEdge records that `from` depends on `to`.
func (g *Graph) AddEdge(from, to ID) {
	g.edges[from] = append(g.edges[from], to)
	g.revEdges[to] = append(g.revEdges[to], from)
}

// Dependencies returns the IDs id directly depends on.
func (g *Graph) Dependencies(id ID) []ID {
	return g.edges[id]
}

// Dependents returns the IDs that directly depend on id (reverse edges),
// used by the cascade-bump step.
func (g *Graph) Dependents(id ID) []ID {
	return g.revEdges[id]
}

// Toposorted returns node IDs in dependency order (a project always appears
// after everything it depends on), using Kahn's algorithm as in the
// teacher's TopologicalSortWithFilter, flattened from level-groups into one
// ordering since this engine's ReleasePlanner processes projects serially
// rather than in parallel release "levels". Within a level, nodes are
// ordered by insertion order for determinism.
func (g *Graph) Toposorted() ([]ID, error) {
	inDegree := make([]int, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n.ID] = len(g.edges[n.ID])
	}

	var frontier []ID
	for _, n := range g.nodes {
		if inDegree[n.ID] == 0 {
			frontier = append(frontier, n.ID)
		}
	}
	sort.Slice(frontier, func(i, j int) bool { return frontier[i] < frontier[j] })

	order := make([]ID, 0, len(g.nodes))
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		order = append(order, id)

		var newlyReady []ID
		for _, dependent := range g.revEdges[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				newlyReady = append(newlyReady, dependent)
			}
		}
		sort.Slice(newlyReady, func(i, j int) bool { return newlyReady[i] < newlyReady[j] })
		frontier = append(frontier, newlyReady...)
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("projectgraph: dependency cycle detected among remaining projects")
	}
	return order, nil
}
