package integrators

import (
	"testing"

	"github.com/san-kum/netdyn/internal/graphs"
	"github.com/san-kum/netdyn/internal/network"
)

func oscillatorVertex(dx, x []float64, _, _ [][]float64, _ any, _ float64) error {
	dx[0] = x[1]
	dx[1] = -x[0]
	return nil
}

func decayVertex(dx, x []float64, _, _ [][]float64, _ any, _ float64) error {
	dx[0] = -x[0]
	return nil
}

// harmonicOscillator is a single two-component vertex with no edges.
func harmonicOscillator(tb testing.TB, opts ...network.SpecOption) *network.System {
	tb.Helper()
	v, err := network.NewODEVertex(2, oscillatorVertex, opts...)
	if err != nil {
		tb.Fatal(err)
	}
	sys, err := network.Assemble([]network.VertexSpec{v}, nil, graphs.New(1, false))
	if err != nil {
		tb.Fatal(err)
	}
	return sys
}

func energy(x []float64) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}
