package experiment

import (
	"testing"

	"github.com/san-kum/netdyn/internal/config"
)

func TestBuildGraph(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.GraphConfig
		vertices  int
		edges     int
		expectErr bool
	}{
		{"path", config.GraphConfig{Type: "path", Vertices: 5}, 5, 4, false},
		{"ring", config.GraphConfig{Type: "ring", Vertices: 5}, 5, 5, false},
		{"star", config.GraphConfig{Type: "star", Vertices: 5}, 5, 4, false},
		{"complete", config.GraphConfig{Type: "complete", Vertices: 5}, 5, 10, false},
		{"grid", config.GraphConfig{Type: "grid", Rows: 2, Cols: 3}, 6, 7, false},
		{"explicit", config.GraphConfig{Type: "explicit", Vertices: 3, Edges: [][]int{{0, 1}, {1, 1}, {2, 0}}}, 3, 3, false},
		{"explicit out of range", config.GraphConfig{Type: "explicit", Vertices: 2, Edges: [][]int{{0, 2}}}, 0, 0, true},
		{"explicit malformed", config.GraphConfig{Type: "explicit", Vertices: 2, Edges: [][]int{{0}}}, 0, 0, true},
		{"ring too small", config.GraphConfig{Type: "ring", Vertices: 2}, 0, 0, true},
		{"unknown", config.GraphConfig{Type: "hypercube", Vertices: 8}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildGraph(tt.cfg)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if g.NumVertices() != tt.vertices || g.NumEdges() != tt.edges {
				t.Errorf("got %d vertices, %d edges; want %d, %d", g.NumVertices(), g.NumEdges(), tt.vertices, tt.edges)
			}
		})
	}
}

func TestBuildGraphRandomIsSeeded(t *testing.T) {
	cfg := config.GraphConfig{Type: "random", Vertices: 30, P: 0.2, Seed: 4}
	a, err := BuildGraph(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildGraph(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if a.NumEdges() != b.NumEdges() {
		t.Fatalf("edge counts differ: %d vs %d", a.NumEdges(), b.NumEdges())
	}
	for j := 0; j < a.NumEdges(); j++ {
		as, ad := a.Edge(j)
		bs, bd := b.Edge(j)
		if as != bs || ad != bd {
			t.Fatalf("edge %d differs", j)
		}
	}
}
