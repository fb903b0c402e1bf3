package graphs

import (
	"errors"
	"testing"
)

func TestGenerators(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (*EdgeList, error)
		vertices  int
		edges     int
		firstEdge [2]int
		lastEdge  [2]int
	}{
		{"path", func() (*EdgeList, error) { return Path(4, true) }, 4, 3, [2]int{0, 1}, [2]int{2, 3}},
		{"ring", func() (*EdgeList, error) { return Ring(5, false) }, 5, 5, [2]int{0, 1}, [2]int{4, 0}},
		{"star", func() (*EdgeList, error) { return Star(4, false) }, 4, 3, [2]int{0, 1}, [2]int{0, 3}},
		{"complete", func() (*EdgeList, error) { return Complete(4, false) }, 4, 6, [2]int{0, 1}, [2]int{2, 3}},
		{"grid", func() (*EdgeList, error) { return Grid(2, 3, false) }, 6, 7, [2]int{0, 1}, [2]int{4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.build()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if g.NumVertices() != tt.vertices {
				t.Errorf("expected %d vertices, got %d", tt.vertices, g.NumVertices())
			}
			if g.NumEdges() != tt.edges {
				t.Fatalf("expected %d edges, got %d", tt.edges, g.NumEdges())
			}
			if s, d := g.Edge(0); [2]int{s, d} != tt.firstEdge {
				t.Errorf("first edge = (%d, %d), want %v", s, d, tt.firstEdge)
			}
			if s, d := g.Edge(g.NumEdges() - 1); [2]int{s, d} != tt.lastEdge {
				t.Errorf("last edge = (%d, %d), want %v", s, d, tt.lastEdge)
			}
		})
	}
}

func TestGeneratorErrors(t *testing.T) {
	if _, err := Ring(2, false); !errors.Is(err, ErrTooFewVertices) {
		t.Errorf("Ring(2): expected ErrTooFewVertices, got %v", err)
	}
	if _, err := Grid(0, 3, false); !errors.Is(err, ErrTooFewVertices) {
		t.Errorf("Grid(0,3): expected ErrTooFewVertices, got %v", err)
	}
	if _, err := ErdosRenyi(5, 1.5, 1, false); !errors.Is(err, ErrInvalidProbability) {
		t.Errorf("ErdosRenyi p=1.5: expected ErrInvalidProbability, got %v", err)
	}
	if _, err := FromPairs(2, true, [2]int{0, 2}); !errors.Is(err, ErrVertexOutOfRange) {
		t.Errorf("FromPairs: expected ErrVertexOutOfRange, got %v", err)
	}
}

func TestErdosRenyiDeterministic(t *testing.T) {
	a, err := ErdosRenyi(20, 0.3, 42, false)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ErdosRenyi(20, 0.3, 42, false)
	if a.NumEdges() != b.NumEdges() {
		t.Fatalf("same seed produced %d and %d edges", a.NumEdges(), b.NumEdges())
	}
	for j := 0; j < a.NumEdges(); j++ {
		as, ad := a.Edge(j)
		bs, bd := b.Edge(j)
		if as != bs || ad != bd {
			t.Fatalf("edge %d differs: (%d,%d) vs (%d,%d)", j, as, ad, bs, bd)
		}
		if as >= ad {
			t.Fatalf("edge %d not ordered: (%d,%d)", j, as, ad)
		}
	}

	full, _ := ErdosRenyi(6, 1, 7, false)
	if full.NumEdges() != 15 {
		t.Errorf("p=1 should give complete graph, got %d edges", full.NumEdges())
	}
}

func TestDegreeAndBidirected(t *testing.T) {
	g, err := FromPairs(3, true, [2]int{0, 1}, [2]int{1, 1}, [2]int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if d := g.Degree(1); d != 4 {
		t.Errorf("Degree(1) = %d, want 4 (two parallel edges + self-loop)", d)
	}
	if d := g.Degree(2); d != 0 {
		t.Errorf("Degree(2) = %d, want 0", d)
	}

	b := g.Bidirected()
	if !b.Directed() || b.NumEdges() != 6 {
		t.Fatalf("Bidirected: directed=%v edges=%d", b.Directed(), b.NumEdges())
	}
	if s, d := b.Edge(1); s != 1 || d != 0 {
		t.Errorf("reverse arc = (%d, %d), want (1, 0)", s, d)
	}
}
