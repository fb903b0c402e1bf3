package rules

import "github.com/san-kum/netdyn/internal/network"

// FitzHughNagumo is an excitable neuron model with diffusive coupling on the
// membrane potential.
// State: [v, w]
//
//	dv/dt = v - v³/3 - w + current + sum(incoming flow) - sum(outgoing flow)
//	dw/dt = epsilon (v + a - b w)
type FitzHughNagumo struct {
	a, b    float64
	epsilon float64 // time-scale separation
	current float64 // external drive
}

func NewFitzHughNagumo() *FitzHughNagumo {
	return &FitzHughNagumo{a: 0.7, b: 0.8, epsilon: 0.08, current: 0.5}
}

func (f *FitzHughNagumo) VertexSpec() (network.VertexSpec, error) {
	return network.NewODEVertex(2, f.vertex, network.WithLabels("v", "w"))
}

func (f *FitzHughNagumo) vertex(dx, x []float64, in, out [][]float64, _ any, _ float64) error {
	v, w := x[0], x[1]
	dx[0] = v - v*v*v/3 - w + f.current + netFlow(in, out, 0)
	dx[1] = f.epsilon * (v + f.a - f.b*w)
	return nil
}

// GetParams implements dynamo.Configurable
func (f *FitzHughNagumo) GetParams() map[string]float64 {
	return map[string]float64{
		"a":       f.a,
		"b":       f.b,
		"epsilon": f.epsilon,
		"current": f.current,
	}
}

// SetParam implements dynamo.Configurable
func (f *FitzHughNagumo) SetParam(name string, value float64) error {
	switch name {
	case "a":
		f.a = value
	case "b":
		f.b = value
	case "epsilon":
		if value <= 0 {
			return outOfBounds("fitzhugh-nagumo", name, value)
		}
		f.epsilon = value
	case "current":
		f.current = value
	default:
		return unknownParam("fitzhugh-nagumo", name)
	}
	return nil
}
