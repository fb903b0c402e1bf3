package network_test

import (
	"github.com/san-kum/netdyn/internal/network"
)

// diffusionEdge carries src - dst.
func diffusionEdge(e, src, dst []float64, _ any, _ float64) error {
	e[0] = src[0] - dst[0]
	return nil
}

// diffusionVertex is the sum of incoming minus the sum of outgoing edge values.
func diffusionVertex(dx, _ []float64, in, out [][]float64, _ any, _ float64) error {
	dx[0] = 0
	for _, e := range in {
		dx[0] += e[0]
	}
	for _, e := range out {
		dx[0] -= e[0]
	}
	return nil
}

func mustODEVertex(dim int, f network.VertexFunc, opts ...network.SpecOption) network.VertexSpec {
	s, err := network.NewODEVertex(dim, f, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func mustStaticVertex(dim int, f network.StaticVertexFunc, opts ...network.SpecOption) network.VertexSpec {
	s, err := network.NewStaticVertex(dim, f, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func mustStaticEdge(dim int, f network.StaticEdgeFunc, opts ...network.SpecOption) network.EdgeSpec {
	s, err := network.NewStaticEdge(dim, f, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func mustODEEdge(dim int, f network.EdgeFunc, opts ...network.SpecOption) network.EdgeSpec {
	s, err := network.NewODEEdge(dim, f, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// pairGraph is a minimal Graph for tests that need hand-written edge lists.
type pairGraph struct {
	n     int
	pairs [][2]int
}

func (g pairGraph) NumVertices() int { return g.n }
func (g pairGraph) NumEdges() int { return len(g.pairs) }
func (g pairGraph) Edge(j int) (int, int) { return g.pairs[j][0], g.pairs[j][1] }
