package rules

import "github.com/san-kum/netdyn/internal/network"

// LowPass is a lagged coupling: the edge relaxes towards k (x_i - x_j) with
// time constant tau, which is carried as the edge's mass.
//
//	tau de/dt = k (x_i - x_j) - e
type LowPass struct {
	tau float64
	k   float64
}

func NewLowPass() *LowPass {
	return &LowPass{tau: 1.0, k: 1.0}
}

func (l *LowPass) EdgeSpec() (network.EdgeSpec, error) {
	return network.NewODEEdge(1, l.edge,
		network.WithLabels("flow"),
		network.WithMass(network.DiagonalMass(l.tau)),
	)
}

func (l *LowPass) edge(de, e, src, dst []float64, _ any, _ float64) error {
	de[0] = l.k*(src[0]-dst[0]) - e[0]
	return nil
}

// GetParams implements dynamo.Configurable
func (l *LowPass) GetParams() map[string]float64 {
	return map[string]float64{"tau": l.tau, "k": l.k}
}

// SetParam implements dynamo.Configurable
func (l *LowPass) SetParam(name string, value float64) error {
	switch name {
	case "tau":
		if value <= 0 {
			return outOfBounds("lowpass", name, value)
		}
		l.tau = value
	case "k":
		l.k = value
	default:
		return unknownParam("lowpass", name)
	}
	return nil
}
