package rules

import "github.com/san-kum/netdyn/internal/network"

// Slack is an algebraic vertex pinned to a reference value: its first
// component is value, the rest are zero. In a swing network it is the
// infinite bus holding phase and frequency.
type Slack struct {
	value float64
	dim   int
}

func NewSlack() *Slack {
	return &Slack{value: 0, dim: 1}
}

func (s *Slack) VertexSpec() (network.VertexSpec, error) {
	return network.NewStaticVertex(s.dim, s.vertex)
}

func (s *Slack) vertex(x []float64, _, _ [][]float64, _ any, _ float64) error {
	x[0] = s.value
	for k := 1; k < len(x); k++ {
		x[k] = 0
	}
	return nil
}

// GetParams implements dynamo.Configurable
func (s *Slack) GetParams() map[string]float64 {
	return map[string]float64{"value": s.value, "dim": float64(s.dim)}
}

// SetParam implements dynamo.Configurable
func (s *Slack) SetParam(name string, value float64) error {
	switch name {
	case "value":
		s.value = value
	case "dim":
		if value < 1 || value != float64(int(value)) {
			return outOfBounds("slack", name, value)
		}
		s.dim = int(value)
	default:
		return unknownParam("slack", name)
	}
	return nil
}
