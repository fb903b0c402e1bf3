package integrators

import (
	"github.com/san-kum/netdyn/internal/network"
)

// RHS is an assembled right-hand side M·dx/dt = f(x, p, t). *network.System
// satisfies it.
type RHS interface {
	Evaluate(du, u []float64, p any, t float64) error
	StateDim() int
	MassMatrix() *network.GlobalMassMatrix
	Algebraic() []network.Segment
}

// Integrator advances x in place by one step of size dt. Integrators keep
// scratch buffers between calls and are not safe for concurrent use.
type Integrator interface {
	Step(sys RHS, x []float64, p any, t, dt float64) error
}

// AdaptiveIntegrator chooses its own step. It returns the step it took and
// the one it suggests next.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys RHS, x []float64, p any, t, dt, tol float64) (taken, next float64, err error)
}

// rhsState turns evaluations into time derivatives for explicit schemes by
// solving the mass matrix. Static vertices have zero rate, so after each step
// the algebraic segments are refreshed by one evaluation at the new state.
type rhsState struct {
	mass   *network.GlobalMassMatrix
	solver *massSolver
	alg    []network.Segment
}

func (r *rhsState) bind(sys RHS) error {
	m := sys.MassMatrix()
	if m != r.mass {
		solver, err := newMassSolver(m)
		if err != nil {
			return err
		}
		r.mass, r.solver = m, solver
	}
	r.alg = sys.Algebraic()
	return nil
}

func (r *rhsState) derive(sys RHS, du, u []float64, p any, t float64) error {
	if err := sys.Evaluate(du, u, p, t); err != nil {
		return err
	}
	if r.solver != nil {
		r.solver.apply(du)
	}
	return nil
}

// project evaluates at x so static vertices write their values into it.
func (r *rhsState) project(sys RHS, x, scratch []float64, p any, t float64) error {
	if len(r.alg) == 0 {
		return nil
	}
	return sys.Evaluate(scratch, x, p, t)
}

func grow(buf []float64, n int) []float64 {
	if len(buf) != n {
		return make([]float64, n)
	}
	return buf
}
