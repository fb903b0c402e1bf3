// Package graphs provides edge-list graphs for the network engine.
//
// Edges are enumerated in insertion order and always report a source and a
// destination. For undirected graphs those roles are artificial: generators
// emit the lower-numbered endpoint as the source.
package graphs

import (
	"errors"
	"fmt"
)

var (
	ErrTooFewVertices     = errors.New("graphs: too few vertices")
	ErrInvalidProbability = errors.New("graphs: probability outside [0, 1]")
	ErrVertexOutOfRange   = errors.New("graphs: vertex out of range")
)

// EdgeList is a static graph stored as an ordered list of endpoint pairs.
type EdgeList struct {
	n        int
	pairs    [][2]int
	directed bool
}

// New returns an empty graph over n vertices.
func New(n int, directed bool) *EdgeList {
	return &EdgeList{n: n, directed: directed}
}

// FromPairs builds a graph from explicit (source, destination) pairs.
func FromPairs(n int, directed bool, pairs ...[2]int) (*EdgeList, error) {
	g := New(n, directed)
	for _, p := range pairs {
		if _, err := g.AddEdge(p[0], p[1]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddEdge appends an edge and returns its index.
func (g *EdgeList) AddEdge(src, dst int) (int, error) {
	if src < 0 || src >= g.n || dst < 0 || dst >= g.n {
		return 0, fmt.Errorf("%w: (%d, %d) with %d vertices", ErrVertexOutOfRange, src, dst, g.n)
	}
	g.pairs = append(g.pairs, [2]int{src, dst})
	return len(g.pairs) - 1, nil
}

func (g *EdgeList) NumVertices() int { return g.n }
func (g *EdgeList) NumEdges() int { return len(g.pairs) }
func (g *EdgeList) Directed() bool { return g.directed }

// Edge returns the endpoints of edge j.
func (g *EdgeList) Edge(j int) (src, dst int) {
	p := g.pairs[j]
	return p[0], p[1]
}

// Degree counts edge endpoints at vertex i; a self-loop counts twice.
func (g *EdgeList) Degree(i int) int {
	d := 0
	for _, p := range g.pairs {
		if p[0] == i {
			d++
		}
		if p[1] == i {
			d++
		}
	}
	return d
}

// Bidirected returns a directed graph with both arcs for every edge. Arcs
// for edge j sit at 2j (original orientation) and 2j+1 (reversed).
func (g *EdgeList) Bidirected() *EdgeList {
	out := &EdgeList{n: g.n, directed: true, pairs: make([][2]int, 0, 2*len(g.pairs))}
	for _, p := range g.pairs {
		out.pairs = append(out.pairs, p, [2]int{p[1], p[0]})
	}
	return out
}
