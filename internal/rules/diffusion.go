package rules

import "github.com/san-kum/netdyn/internal/network"

// Diffusion is linear transport between neighbouring vertices.
//
//	flow_ij = k (x_i - x_j)
//	dx_i/dt = sum(incoming flow) - sum(outgoing flow)
type Diffusion struct {
	k float64 // conductance
}

func NewDiffusion() *Diffusion {
	return &Diffusion{k: 1.0}
}

func (d *Diffusion) VertexSpec() (network.VertexSpec, error) {
	return network.NewODEVertex(1, d.vertex, network.WithLabels("x"))
}

func (d *Diffusion) EdgeSpec() (network.EdgeSpec, error) {
	return network.NewStaticEdge(1, d.edge, network.WithLabels("flow"))
}

func (d *Diffusion) vertex(dx, _ []float64, in, out [][]float64, _ any, _ float64) error {
	dx[0] = netFlow(in, out, 0)
	return nil
}

func (d *Diffusion) edge(e, src, dst []float64, _ any, _ float64) error {
	e[0] = d.k * (src[0] - dst[0])
	return nil
}

// GetParams implements dynamo.Configurable
func (d *Diffusion) GetParams() map[string]float64 {
	return map[string]float64{"k": d.k}
}

// SetParam implements dynamo.Configurable
func (d *Diffusion) SetParam(name string, value float64) error {
	switch name {
	case "k":
		d.k = value
	default:
		return unknownParam("diffusion", name)
	}
	return nil
}
