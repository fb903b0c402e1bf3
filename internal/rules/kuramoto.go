package rules

import (
	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/network"
)

// Kuramoto is a network of phase oscillators.
//
//	flow_ij    = k sin(theta_i - theta_j)
//	dtheta_i/dt = omega + sum(incoming flow) - sum(outgoing flow)
//
// Sines come from the shared lookup table.
type Kuramoto struct {
	omega float64 // natural frequency
	k     float64 // coupling strength
}

func NewKuramoto() *Kuramoto {
	return &Kuramoto{omega: 1.0, k: 0.5}
}

func (m *Kuramoto) VertexSpec() (network.VertexSpec, error) {
	return network.NewODEVertex(1, m.vertex, network.WithLabels("theta"))
}

func (m *Kuramoto) EdgeSpec() (network.EdgeSpec, error) {
	return network.NewStaticEdge(1, m.edge, network.WithLabels("coupling"))
}

func (m *Kuramoto) vertex(dx, _ []float64, in, out [][]float64, _ any, _ float64) error {
	dx[0] = m.omega + netFlow(in, out, 0)
	return nil
}

func (m *Kuramoto) edge(e, src, dst []float64, _ any, _ float64) error {
	e[0] = m.k * dynamo.FastSin(src[0]-dst[0])
	return nil
}

// GetParams implements dynamo.Configurable
func (m *Kuramoto) GetParams() map[string]float64 {
	return map[string]float64{"omega": m.omega, "k": m.k}
}

// SetParam implements dynamo.Configurable
func (m *Kuramoto) SetParam(name string, value float64) error {
	switch name {
	case "omega":
		m.omega = value
	case "k":
		m.k = value
	default:
		return unknownParam("kuramoto", name)
	}
	return nil
}
