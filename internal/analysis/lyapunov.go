package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/integrators"
)

// LyapunovExponent estimates the largest Lyapunov exponent from the
// separation of two nearby trajectories. A positive value indicates chaos;
// a synchronizing network gives a negative one.
//
// The perturbed trajectory is pulled back to distance perturbation after
// every step, and the logs of the stretch factors are averaged:
//
//	lambda ≈ 1/(N dt) * sum ln(|dx_k| / d0)
//
// newIntegrator is called twice since integrators carry scratch state.
// Perturbations are applied outside algebraic segments only.
func LyapunovExponent(
	sys integrators.RHS,
	newIntegrator func() integrators.Integrator,
	x0 dynamo.State,
	p any,
	dt, duration float64,
	perturbation float64,
) (float64, error) {
	if len(x0) != sys.StateDim() {
		return 0, fmt.Errorf("%w: state has %d entries, system needs %d", dynamo.ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if dt <= 0 || duration <= 0 || perturbation <= 0 {
		return 0, fmt.Errorf("lyapunov: dt, duration and perturbation must be positive")
	}

	free := freeComponents(sys)
	if len(free) == 0 {
		return 0, nil
	}

	x := x0.Clone()
	xp := x0.Clone()
	direction := 1 / math.Sqrt(float64(len(free)))
	for _, k := range free {
		xp[k] += perturbation * direction
	}

	integ, integP := newIntegrator(), newIntegrator()
	steps := int(math.Round(duration / dt))

	sumLog := 0.0
	count := 0
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		if err := integ.Step(sys, x, p, t, dt); err != nil {
			return 0, err
		}
		if err := integP.Step(sys, xp, p, t, dt); err != nil {
			return 0, err
		}

		sep := separation(x, xp, free)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}
		sumLog += math.Log(sep / perturbation)
		count++

		scale := perturbation / sep
		for _, k := range free {
			xp[k] = x[k] + (xp[k]-x[k])*scale
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}

func separation(x, xp dynamo.State, free []int) float64 {
	sum := 0.0
	for _, k := range free {
		d := xp[k] - x[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// freeComponents lists the state indices that are integrated rather than
// assigned algebraically.
func freeComponents(sys integrators.RHS) []int {
	algebraic := make([]bool, sys.StateDim())
	for _, seg := range sys.Algebraic() {
		for k := seg.Offset; k < seg.End(); k++ {
			algebraic[k] = true
		}
	}
	free := make([]int, 0, len(algebraic))
	for k, a := range algebraic {
		if !a {
			free = append(free, k)
		}
	}
	return free
}
