package network

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dynamo"
)

// Graph is the structure the engine needs from a graph: a vertex count and a
// stable enumeration of edges as (source, destination) vertex indices.
// Undirected graphs still report a source and a destination for each edge.
type Graph interface {
	NumVertices() int
	NumEdges() int
	Edge(j int) (src, dst int)
}

// Topology is the incidence index derived from a Graph once at assembly.
// Per-vertex edge lists are stored contiguously; within each list edges keep
// the order of the graph's enumeration.
type Topology struct {
	nv     int
	src    []int
	dst    []int
	inOff  []int
	inIdx  []int
	outOff []int
	outIdx []int
}

// BuildTopology indexes g. Edges referencing a vertex outside [0, NumVertices)
// fail with ErrIndexOutOfRange. Self-loops and parallel edges are kept.
func BuildTopology(g Graph) (*Topology, error) {
	nv, ne := g.NumVertices(), g.NumEdges()
	if nv < 0 || ne < 0 {
		return nil, fmt.Errorf("%w: %d vertices, %d edges", dynamo.ErrIndexOutOfRange, nv, ne)
	}

	t := &Topology{
		nv:     nv,
		src:    make([]int, ne),
		dst:    make([]int, ne),
		inOff:  make([]int, nv+1),
		inIdx:  make([]int, ne),
		outOff: make([]int, nv+1),
		outIdx: make([]int, ne),
	}

	for j := 0; j < ne; j++ {
		s, d := g.Edge(j)
		if s < 0 || s >= nv || d < 0 || d >= nv {
			return nil, fmt.Errorf("%w: edge %d (%d -> %d) with %d vertices", dynamo.ErrIndexOutOfRange, j, s, d, nv)
		}
		t.src[j], t.dst[j] = s, d
		t.outOff[s+1]++
		t.inOff[d+1]++
	}

	for i := 0; i < nv; i++ {
		t.outOff[i+1] += t.outOff[i]
		t.inOff[i+1] += t.inOff[i]
	}

	outFill := make([]int, nv)
	inFill := make([]int, nv)
	for j := 0; j < ne; j++ {
		s, d := t.src[j], t.dst[j]
		t.outIdx[t.outOff[s]+outFill[s]] = j
		outFill[s]++
		t.inIdx[t.inOff[d]+inFill[d]] = j
		inFill[d]++
	}

	return t, nil
}

func (t *Topology) NumVertices() int { return t.nv }
func (t *Topology) NumEdges() int { return len(t.src) }

// Source returns the source vertex of edge j.
func (t *Topology) Source(j int) int { return t.src[j] }

// Dest returns the destination vertex of edge j.
func (t *Topology) Dest(j int) int { return t.dst[j] }

// InEdges returns the edges whose destination is vertex i. The slice is
// shared with the index and must not be modified.
func (t *Topology) InEdges(i int) []int { return t.inIdx[t.inOff[i]:t.inOff[i+1]:t.inOff[i+1]] }

// OutEdges returns the edges whose source is vertex i. The slice is shared
// with the index and must not be modified.
func (t *Topology) OutEdges(i int) []int { return t.outIdx[t.outOff[i]:t.outOff[i+1]:t.outOff[i+1]] }

// Degree counts incident edge slots; a self-loop counts twice.
func (t *Topology) Degree(i int) int {
	return (t.inOff[i+1] - t.inOff[i]) + (t.outOff[i+1] - t.outOff[i])
}
