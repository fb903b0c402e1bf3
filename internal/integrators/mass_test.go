package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/graphs"
	"github.com/san-kum/netdyn/internal/network"
)

func networkVertex(f network.VertexFunc, mass float64) (*network.System, error) {
	v, err := network.NewODEVertex(1, f, network.WithMass(network.DiagonalMass(mass)))
	if err != nil {
		return nil, err
	}
	return network.Assemble([]network.VertexSpec{v}, nil, graphs.New(1, false))
}

func TestMassSolverDense(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
		b    []float64
		want []float64
	}{
		{"upper triangular", [][]float64{{2, 1}, {0, 3}}, []float64{5, 6}, []float64{1.5, 2}},
		{"needs pivoting", [][]float64{{0, 1}, {1, 0}}, []float64{3, 4}, []float64{4, 3}},
		{"full 3x3", [][]float64{{4, 1, 0}, {1, 3, 1}, {0, 1, 2}}, []float64{5, 5, 3}, []float64{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := network.NewODEVertex(len(tt.rows), decayVertex, network.WithMass(network.DenseMass(tt.rows)))
			if err != nil {
				t.Fatal(err)
			}
			sys, err := network.Assemble([]network.VertexSpec{v}, nil, graphs.New(1, false))
			if err != nil {
				t.Fatal(err)
			}
			solver, err := newMassSolver(sys.MassMatrix())
			if err != nil {
				t.Fatal(err)
			}

			b := append([]float64(nil), tt.b...)
			solver.apply(b)
			for i := range tt.want {
				if math.Abs(b[i]-tt.want[i]) > 1e-12 {
					t.Errorf("x[%d] = %v, want %v", i, b[i], tt.want[i])
				}
			}
		})
	}
}

func TestMassSolverIdentity(t *testing.T) {
	sys := harmonicOscillator(t)
	solver, err := newMassSolver(sys.MassMatrix())
	if err != nil || solver != nil {
		t.Errorf("identity mass should need no solver, got %v, %v", solver, err)
	}
}

func TestSingularMass(t *testing.T) {
	tests := []struct {
		name string
		mass network.MassMatrix
	}{
		{"zero diagonal entry", network.DiagonalMass(1, 0)},
		{"rank deficient dense", network.DenseMass([][]float64{{1, 2}, {2, 4}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := harmonicOscillator(t, network.WithMass(tt.mass))
			err := NewRK4().Step(sys, []float64{1, 0}, nil, 0, 0.1)
			if !errors.Is(err, dynamo.ErrSingularMassMatrix) {
				t.Errorf("expected ErrSingularMassMatrix, got %v", err)
			}
		})
	}
}

func slackVertex(x []float64, _, _ [][]float64, _ any, _ float64) error {
	x[0] = 2
	return nil
}

func pullVertex(dx, x []float64, in, _ [][]float64, _ any, _ float64) error {
	dx[0] = 0
	for _, e := range in {
		dx[0] += e[0]
	}
	return nil
}

func differenceEdge(e, src, dst []float64, _ any, _ float64) error {
	e[0] = src[0] - dst[0]
	return nil
}

func TestAlgebraicProjection(t *testing.T) {
	slack, _ := network.NewStaticVertex(1, slackVertex)
	follower, _ := network.NewODEVertex(1, pullVertex)
	edge, _ := network.NewStaticEdge(1, differenceEdge)
	g, _ := graphs.FromPairs(2, true, [2]int{0, 1})

	sys, err := network.Assemble([]network.VertexSpec{slack, follower}, []network.EdgeSpec{edge}, g)
	if err != nil {
		t.Fatal(err)
	}

	integrators := map[string]Integrator{"euler": NewEuler(), "rk4": NewRK4(), "rk45": NewRK45()}
	for name, integ := range integrators {
		t.Run(name, func(t *testing.T) {
			x := []float64{0, 0}
			for i := 0; i < 200; i++ {
				if err := integ.Step(sys, x, nil, float64(i)*0.05, 0.05); err != nil {
					t.Fatal(err)
				}
			}
			if x[0] != 2 {
				t.Errorf("algebraic slot = %v, want the slack value 2", x[0])
			}
			if math.Abs(x[1]-2) > 1e-3 {
				t.Errorf("follower = %v, want it relaxed to 2", x[1])
			}
		})
	}
}
