package sim

import (
	"errors"
	"math"
	"time"

	"github.com/san-kum/netdyn/internal/network"
)

// decaySystem is dx/dt = -x in one component.
type decaySystem struct{}

func (decaySystem) Evaluate(du, u []float64, _ any, _ float64) error {
	du[0] = -u[0]
	return nil
}
func (decaySystem) StateDim() int { return 1 }
func (decaySystem) MassMatrix() *network.GlobalMassMatrix { return nil }
func (decaySystem) Algebraic() []network.Segment { return nil }

// blowupSystem returns NaN once t passes at.
type blowupSystem struct {
	decaySystem
	at float64
}

func (b blowupSystem) Evaluate(du, u []float64, _ any, t float64) error {
	du[0] = -u[0]
	if t >= b.at {
		du[0] = math.NaN()
	}
	return nil
}

var errRule = errors.New("rule failed")

type failingSystem struct{ decaySystem }

func (failingSystem) Evaluate(_, _ []float64, _ any, _ float64) error { return errRule }

type countingRecorder struct {
	steps int
	runs  map[string]int
}

func (c *countingRecorder) RecordStep(time.Duration, float64) { c.steps++ }
func (c *countingRecorder) RecordRun(status string, _ time.Duration) {
	if c.runs == nil {
		c.runs = make(map[string]int)
	}
	c.runs[status]++
}
