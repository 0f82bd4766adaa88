package projectgraph

import (
	"testing"

	"github.com/ilblu/belaf/internal/repopath"
)

func TestToposortedLinear(t *testing.T) {
	g := New()
	a := g.AddNode("a", "go", repopath.MustNew("a"))
	b := g.AddNode("b", "go", repopath.MustNew("b"))
	c := g.AddNode("c", "go", repopath.MustNew("c"))
	// c depends on b depends on a
	g.AddEdge(c, b)
	g.AddEdge(b, a)

	order, err := g.Toposorted()
	if err != nil {
		t.Fatalf("Toposorted: %v", err)
	}
	pos := indexPos(order)
	if pos[a] > pos[b] || pos[b] > pos[c] {
		t.Errorf("expected order a, b, c; got %v", namesOf(g, order))
	}
}

func TestToposortedIndependent(t *testing.T) {
	g := New()
	g.AddNode("a", "go", repopath.MustNew("a"))
	g.AddNode("b", "go", repopath.MustNew("b"))

	order, err := g.Toposorted()
	if err != nil {
		t.Fatalf("Toposorted: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(order))
	}
}

func TestToposortedDetectsCycle(t *testing.T) {
	g := New()
	a := g.AddNode("a", "go", repopath.MustNew("a"))
	b := g.AddNode("b", "go", repopath.MustNew("b"))
	g.AddEdge(a, b)
	g.AddEdge(b, a)

	if _, err := g.Toposorted(); err == nil {
		t.Fatal("expected cycle detection error")
	}
}

func indexPos(order []ID) map[ID]int {
	m := make(map[ID]int, len(order))
	for i, id := range order {
		m[id] = i
	}
	return m
}

func namesOf(g *Graph, order []ID) []string {
	names := make([]string, len(order))
	for i, id := range order {
		names[i] = g.Node(id).Name
	}
	return names
}
