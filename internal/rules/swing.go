package rules

import (
	"math"

	"github.com/san-kum/netdyn/internal/network"
)

// Swing is the swing equation of a power-grid node.
// State: [phi, omega]
//
//	dphi/dt           = omega
//	inertia domega/dt = power - damping omega + sum(incoming flow) - sum(outgoing flow)
//
// The inertia sits in the mass matrix; an inertia of zero turns the node into
// a first-order (algebraic frequency) node. Lines carry k sin(phi_i - phi_j).
type Swing struct {
	inertia float64
	damping float64
	power   float64
	k       float64 // line capacity
}

func NewSwing() *Swing {
	return &Swing{inertia: 1.0, damping: 0.1, power: 1.0, k: 6.0}
}

func (s *Swing) VertexSpec() (network.VertexSpec, error) {
	return network.NewODEVertex(2, s.vertex,
		network.WithLabels("phi", "omega"),
		network.WithMass(network.DiagonalMass(1, s.inertia)),
	)
}

func (s *Swing) EdgeSpec() (network.EdgeSpec, error) {
	return network.NewStaticEdge(1, s.edge, network.WithLabels("line"))
}

func (s *Swing) vertex(dx, x []float64, in, out [][]float64, _ any, _ float64) error {
	omega := x[1]
	dx[0] = omega
	dx[1] = s.power - s.damping*omega + netFlow(in, out, 0)
	return nil
}

func (s *Swing) edge(e, src, dst []float64, _ any, _ float64) error {
	e[0] = s.k * math.Sin(src[0]-dst[0])
	return nil
}

// GetParams implements dynamo.Configurable
func (s *Swing) GetParams() map[string]float64 {
	return map[string]float64{
		"inertia": s.inertia,
		"damping": s.damping,
		"power":   s.power,
		"k":       s.k,
	}
}

// SetParam implements dynamo.Configurable. The inertia is captured when the
// vertex spec is built.
func (s *Swing) SetParam(name string, value float64) error {
	switch name {
	case "inertia":
		if value < 0 {
			return outOfBounds("swing", name, value)
		}
		s.inertia = value
	case "damping":
		s.damping = value
	case "power":
		s.power = value
	case "k":
		s.k = value
	default:
		return unknownParam("swing", name)
	}
	return nil
}
