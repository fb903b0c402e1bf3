package network

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/netdyn/internal/dynamo"
)

// EvalObserver is told about every completed evaluation.
type EvalObserver interface {
	ObserveEvaluation(d time.Duration, err error)
}

// Option configures assembly.
type Option func(*options)

type options struct {
	parallel bool
	workers  int
	minChunk int
	logger   *slog.Logger
	observer EvalObserver
}

// WithParallel spreads each phase over up to workers goroutines, in chunks of
// at least minChunk entities. Rules must then only write their own output.
func WithParallel(workers, minChunk int) Option {
	return func(o *options) {
		o.parallel = true
		o.workers = workers
		o.minChunk = minChunk
	}
}

// WithLogger receives a debug summary at assembly. Nothing is logged per call.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver reports each evaluation's duration and outcome.
func WithObserver(obs EvalObserver) Option {
	return func(o *options) { o.observer = obs }
}

// System is an assembled network right-hand side. It is immutable and safe
// for concurrent use; all mutable data lives in the caller's buffers.
type System struct {
	vertices  []VertexSpec
	edges     []EdgeSpec
	topo      *Topology
	layout    *Layout
	mass      *GlobalMassMatrix
	algebraic []Segment
	opts      options
	pool      *workspacePool
}

// Assemble builds a System from one spec per graph vertex and one spec per
// graph edge, matched by position.
func Assemble(vertices []VertexSpec, edges []EdgeSpec, g Graph, opts ...Option) (*System, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(vertices) != g.NumVertices() {
		return nil, fmt.Errorf("%w: %d vertex specs for %d vertices", dynamo.ErrDimensionMismatch, len(vertices), g.NumVertices())
	}
	if len(edges) != g.NumEdges() {
		return nil, fmt.Errorf("%w: %d edge specs for %d edges", dynamo.ErrDimensionMismatch, len(edges), g.NumEdges())
	}

	topo, err := BuildTopology(g)
	if err != nil {
		return nil, err
	}

	for i := range vertices {
		if err := vertices[i].validate(); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	for j := range edges {
		if err := edges[j].validate(); err != nil {
			return nil, fmt.Errorf("edge %d: %w", j, err)
		}
	}

	s := &System{
		vertices: append([]VertexSpec(nil), vertices...),
		edges:    append([]EdgeSpec(nil), edges...),
		topo:     topo,
		opts:     o,
	}
	s.layout = PlanLayout(s.vertices, s.edges)
	s.mass = buildMassMatrix(s.vertices, s.edges, s.layout)
	s.pool = newWorkspacePool(s.layout.EdgeDim, len(s.edges))

	for i := range s.vertices {
		if s.vertices[i].kind == Static {
			s.algebraic = append(s.algebraic, s.layout.Vertices[i])
		}
	}

	if o.logger != nil {
		o.logger.Debug("network assembled",
			"vertices", topo.NumVertices(),
			"edges", topo.NumEdges(),
			"state_dim", s.layout.StateDim,
			"edge_dim", s.layout.EdgeDim,
			"identity_mass", s.mass.IsIdentity(),
			"algebraic_segments", len(s.algebraic),
			"parallel", o.parallel,
		)
	}

	return s, nil
}

// Evaluate computes du from u in place. Both buffers must have length
// StateDim. Static edge outputs go to a pooled edge buffer. A static vertex
// writes its value into its segment of u and gets zero rate in du, so the
// edges of the next call see the updated value.
func (s *System) Evaluate(du, u []float64, p any, t float64) error {
	if err := s.checkState(du, u); err != nil {
		return err
	}
	ws := s.pool.Get()
	err := s.observe(du, u, ws.edges, ws, p, t)
	s.pool.Put(ws)
	return err
}

// EvaluateWithEdges is Evaluate with a caller-owned edge vector of length
// EdgeDim. After the call it holds every edge's output, differential edges
// included.
func (s *System) EvaluateWithEdges(du, u, edges []float64, p any, t float64) error {
	if err := s.checkState(du, u); err != nil {
		return err
	}
	if len(edges) != s.layout.EdgeDim {
		return fmt.Errorf("%w: edge buffer has %d entries, layout needs %d", dynamo.ErrBufferSizeMismatch, len(edges), s.layout.EdgeDim)
	}
	ws := s.pool.Get()
	err := s.observe(du, u, edges, ws, p, t)
	s.pool.Put(ws)
	return err
}

// EdgeValues fills edges with every edge's output for state u without
// evaluating the vertices.
func (s *System) EdgeValues(edges, u []float64, p any, t float64) error {
	if len(u) != s.layout.StateDim {
		return fmt.Errorf("%w: state has %d entries, layout needs %d", dynamo.ErrBufferSizeMismatch, len(u), s.layout.StateDim)
	}
	if len(edges) != s.layout.EdgeDim {
		return fmt.Errorf("%w: edge buffer has %d entries, layout needs %d", dynamo.ErrBufferSizeMismatch, len(edges), s.layout.EdgeDim)
	}
	for j := range s.edges {
		spec := &s.edges[j]
		out := s.layout.Edges[j].Slice(edges)
		if seg, ok := s.layout.EdgeStateSegment(j); ok {
			copy(out, seg.Slice(u))
			continue
		}
		src := s.layout.Vertices[s.topo.src[j]].Slice(u)
		dst := s.layout.Vertices[s.topo.dst[j]].Slice(u)
		if err := spec.static(out, src, dst, p, t); err != nil {
			return &dynamo.EntityError{Entity: "edge", Index: j, Time: t, Wrapped: err}
		}
	}
	return nil
}

func (s *System) checkState(du, u []float64) error {
	if len(du) != s.layout.StateDim {
		return fmt.Errorf("%w: derivative buffer has %d entries, layout needs %d", dynamo.ErrBufferSizeMismatch, len(du), s.layout.StateDim)
	}
	if len(u) != s.layout.StateDim {
		return fmt.Errorf("%w: state buffer has %d entries, layout needs %d", dynamo.ErrBufferSizeMismatch, len(u), s.layout.StateDim)
	}
	return nil
}

func (s *System) observe(du, u, edges []float64, ws *workspace, p any, t float64) error {
	if s.opts.observer == nil {
		return s.run(du, u, edges, ws, p, t)
	}
	start := time.Now()
	err := s.run(du, u, edges, ws, p, t)
	s.opts.observer.ObserveEvaluation(time.Since(start), err)
	return err
}

// run executes slice, edge phase and vertex phase. The edge phase completes
// before any vertex rule starts.
func (s *System) run(du, u, edges []float64, ws *workspace, p any, t float64) error {
	s.bind(ws, u, edges)

	if !s.opts.parallel {
		if err := s.edgeRange(0, len(s.edges), du, u, edges, p, t); err != nil {
			return err
		}
		return s.vertexRange(0, len(s.vertices), du, u, ws, p, t)
	}

	err := dynamo.ParallelFor(len(s.edges), s.opts.minChunk, s.opts.workers, func(start, end int) error {
		return s.edgeRange(start, end, du, u, edges, p, t)
	})
	if err != nil {
		return err
	}
	return dynamo.ParallelFor(len(s.vertices), s.opts.minChunk, s.opts.workers, func(start, end int) error {
		return s.vertexRange(start, end, du, u, ws, p, t)
	})
}

// bind points every edge view at its output for this call: the edge vector
// for static edges, the caller's state for differential ones.
func (s *System) bind(ws *workspace, u, edges []float64) {
	for j := range s.edges {
		if seg, ok := s.layout.EdgeStateSegment(j); ok {
			view := seg.Slice(u)
			copy(s.layout.Edges[j].Slice(edges), view)
			ws.edgeViews[j] = view
			continue
		}
		ws.edgeViews[j] = s.layout.Edges[j].Slice(edges)
	}
	for k, j := range s.topo.inIdx {
		ws.inViews[k] = ws.edgeViews[j]
	}
	for k, j := range s.topo.outIdx {
		ws.outViews[k] = ws.edgeViews[j]
	}
}

func (s *System) edgeRange(start, end int, du, u, edges []float64, p any, t float64) error {
	for j := start; j < end; j++ {
		spec := &s.edges[j]
		src := s.layout.Vertices[s.topo.src[j]].Slice(u)
		dst := s.layout.Vertices[s.topo.dst[j]].Slice(u)

		var err error
		switch spec.kind {
		case Static:
			err = spec.static(s.layout.Edges[j].Slice(edges), src, dst, p, t)
		case Differential:
			seg := s.layout.edgeState[j]
			err = spec.ode(seg.Slice(du), seg.Slice(u), src, dst, p, t)
		}
		if err != nil {
			return &dynamo.EntityError{Entity: "edge", Index: j, Time: t, Wrapped: err}
		}
	}
	return nil
}

func (s *System) vertexRange(start, end int, du, u []float64, ws *workspace, p any, t float64) error {
	for i := start; i < end; i++ {
		seg := s.layout.Vertices[i]
		in := ws.inViews[s.topo.inOff[i]:s.topo.inOff[i+1]:s.topo.inOff[i+1]]
		out := ws.outViews[s.topo.outOff[i]:s.topo.outOff[i+1]:s.topo.outOff[i+1]]

		if err := s.vertices[i].evaluate(seg.Slice(du), seg.Slice(u), in, out, p, t); err != nil {
			return &dynamo.EntityError{Entity: "vertex", Index: i, Time: t, Wrapped: err}
		}
	}
	return nil
}

func (s *System) Topology() *Topology { return s.topo }
func (s *System) Layout() *Layout { return s.layout }
func (s *System) MassMatrix() *GlobalMassMatrix { return s.mass }
func (s *System) StateDim() int { return s.layout.StateDim }
func (s *System) EdgeDim() int { return s.layout.EdgeDim }
func (s *System) NumVertices() int { return len(s.vertices) }
func (s *System) NumEdges() int { return len(s.edges) }
func (s *System) Vertex(i int) VertexSpec { return s.vertices[i] }
func (s *System) Edge(j int) EdgeSpec { return s.edges[j] }

// Algebraic lists the state segments owned by static vertices. Evaluate
// assigns them in u and leaves their rate at zero.
func (s *System) Algebraic() []Segment { return s.algebraic }

// VertexState is the view of vertex i inside u.
func (s *System) VertexState(u []float64, i int) []float64 {
	return s.layout.Vertices[i].Slice(u)
}

// EdgeState is the view of edge j inside an edge vector.
func (s *System) EdgeState(edges []float64, j int) []float64 {
	return s.layout.Edges[j].Slice(edges)
}
