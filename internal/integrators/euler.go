package integrators

type Euler struct {
	rhsState
	dx []float64
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys RHS, x []float64, p any, t, dt float64) error {
	if err := e.bind(sys); err != nil {
		return err
	}
	e.dx = grow(e.dx, len(x))

	if err := e.derive(sys, e.dx, x, p, t); err != nil {
		return err
	}
	for i := range x {
		x[i] += dt * e.dx[i]
	}
	return e.project(sys, x, e.dx, p, t+dt)
}
