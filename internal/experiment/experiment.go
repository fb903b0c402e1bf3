package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/san-kum/netdyn/internal/config"
	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/graphs"
	"github.com/san-kum/netdyn/internal/metrics"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/sim"
)

const parallelMinChunk = 64

// Experiment is a config turned into an assembled system and its initial state.
type Experiment struct {
	Config *config.Config
	Graph  *graphs.EdgeList
	System *network.System
	X0     dynamo.State

	registry *Registry
}

// Build assembles the network cfg describes. Extra options are passed to
// network.Assemble after the ones the config implies.
func Build(cfg *config.Config, reg *Registry, opts ...network.Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g, err := BuildGraph(cfg.Graph)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	vertices, vertexInit, err := expandGroups(cfg.Vertices, g.NumVertices(), "vertex", reg.VertexSpec)
	if err != nil {
		return nil, err
	}
	edges, edgeInit, err := expandGroups(cfg.Edges, g.NumEdges(), "edge", reg.EdgeSpec)
	if err != nil {
		return nil, err
	}

	if cfg.Parallel {
		workers := cfg.Workers
		if workers == 0 {
			workers = dynamo.DefaultWorkers
		}
		opts = append([]network.Option{network.WithParallel(workers, parallelMinChunk)}, opts...)
	}

	sys, err := network.Assemble(vertices, edges, g, opts...)
	if err != nil {
		return nil, err
	}

	e := &Experiment{Config: cfg, Graph: g, System: sys, registry: reg}
	if e.X0, err = e.initialState(vertexInit, edgeInit); err != nil {
		return nil, err
	}
	return e, nil
}

// expandGroups hands out consecutive entities to each group. A group with
// count 0 takes everything left.
func expandGroups[S interface{ Dim() int }](
	groups []config.GroupConfig, n int, entity string,
	build func(string, map[string]float64) (S, error),
) ([]S, [][]float64, error) {
	specs := make([]S, 0, n)
	inits := make([][]float64, 0, n)

	for gi, grp := range groups {
		spec, err := build(grp.Rule, grp.Params)
		if err != nil {
			return nil, nil, fmt.Errorf("%s group %d (%s): %w", entity, gi, grp.Rule, err)
		}
		if len(grp.Init) > 0 && len(grp.Init) != spec.Dim() {
			return nil, nil, fmt.Errorf("%s group %d (%s): %w: init has %d values, rule has dimension %d",
				entity, gi, grp.Rule, dynamo.ErrDimensionMismatch, len(grp.Init), spec.Dim())
		}

		count := grp.Count
		if count == 0 {
			count = n - len(specs)
		}
		if len(specs)+count > n {
			return nil, nil, fmt.Errorf("%w: %s groups cover more than %d entities", dynamo.ErrDimensionMismatch, entity, n)
		}
		for k := 0; k < count; k++ {
			specs = append(specs, spec)
			inits = append(inits, grp.Init)
		}
	}

	if len(specs) != n {
		return nil, nil, fmt.Errorf("%w: %d of %d %ss have a rule", dynamo.ErrDimensionMismatch, len(specs), n, entity)
	}
	return specs, inits, nil
}

// initialState lays out the configured initial values and adds uniform
// jitter in [-jitter, jitter] to every integrated component. Algebraic
// components are then set consistent with the rest of the state.
func (e *Experiment) initialState(vertexInit, edgeInit [][]float64) (dynamo.State, error) {
	sys := e.System
	layout := sys.Layout()
	x0 := make(dynamo.State, sys.StateDim())

	for i, init := range vertexInit {
		copy(layout.Vertices[i].Slice(x0), init)
	}
	for j, init := range edgeInit {
		if seg, ok := layout.EdgeStateSegment(j); ok {
			copy(seg.Slice(x0), init)
		}
	}

	if e.Config.Jitter > 0 {
		rng := rand.New(rand.NewSource(e.Config.Seed))
		algebraic := make([]bool, len(x0))
		for _, seg := range sys.Algebraic() {
			for k := seg.Offset; k < seg.End(); k++ {
				algebraic[k] = true
			}
		}
		for k := range x0 {
			if !algebraic[k] {
				x0[k] += e.Config.Jitter * (2*rng.Float64() - 1)
			}
		}
	}

	if len(sys.Algebraic()) > 0 {
		du := make([]float64, len(x0))
		if err := sys.Evaluate(du, x0, nil, 0); err != nil {
			return nil, fmt.Errorf("initial state: %w", err)
		}
	}
	return x0, nil
}

func (e *Experiment) SimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Dt = e.Config.Dt
	cfg.Duration = e.Config.Duration
	cfg.Adaptive = e.Config.Adaptive
	if e.Config.Tolerance > 0 {
		cfg.Tolerance = e.Config.Tolerance
	}
	cfg.SaveEvery = e.Config.SaveEvery
	cfg.Seed = e.Config.Seed
	return cfg
}

// Simulator pairs the system with a fresh instance of the configured
// integrator.
func (e *Experiment) Simulator(opts ...sim.Option) (*sim.Simulator, error) {
	integ, err := e.registry.GetIntegrator(e.Config.Integrator)
	if err != nil {
		return nil, err
	}
	s := sim.New(e.System, integ, opts...)
	for _, m := range e.DefaultMetrics() {
		s.AddMetric(m)
	}
	return s, nil
}

func (e *Experiment) Run(ctx context.Context, logger *slog.Logger, rec sim.Recorder) (*sim.Result, error) {
	opts := []sim.Option{sim.WithLogger(logger)}
	if rec != nil {
		opts = append(opts, sim.WithRecorder(rec))
	}
	s, err := e.Simulator(opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, e.X0, e.SimConfig())
}

// PhaseIndices lists the state components labelled as phases.
func (e *Experiment) PhaseIndices() []int {
	return e.indicesWithLabel("theta", "phi")
}

// DefaultMetrics picks the trajectory metrics that make sense for the
// labels present in the state vector.
func (e *Experiment) DefaultMetrics() []sim.Metric {
	ms := []sim.Metric{metrics.NewStability(1e6)}
	if phases := e.PhaseIndices(); len(phases) > 0 {
		ms = append(ms, metrics.NewOrderParameter(phases))
	}
	if xs := e.indicesWithLabel("x"); len(xs) > 0 {
		ms = append(ms, metrics.NewConservedDrift(xs))
	}
	return ms
}

func (e *Experiment) indicesWithLabel(labels ...string) []int {
	var out []int
	for k, sym := range e.System.Symbols() {
		label := sym[:strings.LastIndexByte(sym, '_')]
		for _, l := range labels {
			if label == l {
				out = append(out, k)
				break
			}
		}
	}
	return out
}
