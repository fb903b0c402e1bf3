package metrics

import (
	"math"

	"github.com/san-kum/netdyn/internal/dynamo"
)

// ConservedDrift tracks the largest relative change of the sum over the given
// components against the first observed state. Diffusive networks keep it at
// rounding level.
type ConservedDrift struct {
	name     string
	indices  []int
	initial  float64
	maxDrift float64
	samples  int
}

func NewConservedDrift(indices []int) *ConservedDrift {
	return &ConservedDrift{
		name:    "conserved_drift",
		indices: append([]int(nil), indices...),
	}
}

func (c *ConservedDrift) Name() string { return c.name }

func (c *ConservedDrift) Observe(x dynamo.State, _ float64) {
	total := 0.0
	for _, i := range c.indices {
		total += x[i]
	}

	if c.samples == 0 {
		c.initial = total
	}
	c.samples++

	scale := math.Max(math.Abs(c.initial), 1e-12)
	if drift := math.Abs(total-c.initial) / scale; drift > c.maxDrift {
		c.maxDrift = drift
	}
}

func (c *ConservedDrift) Value() float64 { return c.maxDrift }

func (c *ConservedDrift) Reset() {
	c.initial = 0
	c.maxDrift = 0
	c.samples = 0
}
