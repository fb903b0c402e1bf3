package integrators

type RK4 struct {
	rhsState
	k1, k2, k3, k4 []float64
	scratch        []float64
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.scratch = make([]float64, n)
	}
}

func (r *RK4) Step(sys RHS, x []float64, p any, t, dt float64) error {
	if err := r.bind(sys); err != nil {
		return err
	}
	n := len(x)
	r.ensureScratch(n)

	if err := r.derive(sys, r.k1, x, p, t); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	if err := r.derive(sys, r.k2, r.scratch, p, t+dt*0.5); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	if err := r.derive(sys, r.k3, r.scratch, p, t+dt*0.5); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	if err := r.derive(sys, r.k4, r.scratch, p, t+dt); err != nil {
		return err
	}

	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		x[i] += dt6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
	return r.project(sys, x, r.scratch, p, t+dt)
}
