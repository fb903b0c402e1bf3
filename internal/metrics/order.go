package metrics

import (
	"math"

	"github.com/san-kum/netdyn/internal/dynamo"
)

// OrderParameter is the Kuramoto order parameter r = |mean(exp(i·theta))|
// over the phase components at the given state indices. Value is the mean
// over the run; Last is the most recent sample.
type OrderParameter struct {
	name    string
	indices []int
	sum     float64
	last    float64
	samples int
}

func NewOrderParameter(indices []int) *OrderParameter {
	return &OrderParameter{
		name:    "order_parameter",
		indices: append([]int(nil), indices...),
	}
}

func (o *OrderParameter) Name() string { return o.name }

func (o *OrderParameter) Observe(x dynamo.State, _ float64) {
	if len(o.indices) == 0 {
		return
	}
	o.last = Coherence(x, o.indices)
	o.sum += o.last
	o.samples++
}

func (o *OrderParameter) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return o.sum / float64(o.samples)
}

func (o *OrderParameter) Last() float64 { return o.last }

func (o *OrderParameter) Reset() {
	o.sum = 0
	o.last = 0
	o.samples = 0
}

// Coherence computes r for one state.
func Coherence(x dynamo.State, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var re, im float64
	for _, i := range indices {
		re += math.Cos(x[i])
		im += math.Sin(x[i])
	}
	n := float64(len(indices))
	return math.Hypot(re/n, im/n)
}
