package network

import (
	"fmt"
	"strconv"

	"github.com/san-kum/netdyn/internal/dynamo"
)

// VertexFunc is a differential vertex rule. It writes dx from its own state x
// and the views of its incoming and outgoing edges. Views are valid only for
// the duration of the call.
type VertexFunc func(dx, x []float64, in, out [][]float64, p any, t float64) error

// StaticVertexFunc is an algebraic vertex rule. It writes its value into x,
// the vertex's own view of the state vector.
type StaticVertexFunc func(x []float64, in, out [][]float64, p any, t float64) error

// EdgeFunc is a differential edge rule. It writes de from its own state e and
// the states of its source and destination vertices.
type EdgeFunc func(de, e, src, dst []float64, p any, t float64) error

// StaticEdgeFunc is an algebraic edge rule. It writes its value into e.
type StaticEdgeFunc func(e, src, dst []float64, p any, t float64) error

// SpecOption customizes a vertex or edge spec.
type SpecOption func(*specOptions)

type specOptions struct {
	mass   MassMatrix
	labels []string
}

// WithMass sets the mass matrix. Only differential specs accept a
// non-identity matrix.
func WithMass(m MassMatrix) SpecOption {
	return func(o *specOptions) { o.mass = m }
}

// WithLabels names the state components. The count must equal the dimension.
func WithLabels(labels ...string) SpecOption {
	return func(o *specOptions) {
		o.labels = make([]string, len(labels))
		copy(o.labels, labels)
	}
}

// VertexSpec is the immutable description of one vertex's local rule.
type VertexSpec struct {
	kind   Kind
	dim    int
	mass   MassMatrix
	labels []string
	static StaticVertexFunc
	ode    VertexFunc
}

// NewStaticVertex describes an algebraic vertex of the given dimension.
func NewStaticVertex(dim int, f StaticVertexFunc, opts ...SpecOption) (VertexSpec, error) {
	o := applyOptions(opts)
	s := VertexSpec{kind: Static, dim: dim, mass: o.mass, labels: o.labels, static: f}
	if s.labels == nil {
		s.labels = defaultLabels("v", dim)
	}
	if err := s.validate(); err != nil {
		return VertexSpec{}, err
	}
	return s, nil
}

// NewODEVertex describes a differential vertex of the given dimension.
func NewODEVertex(dim int, f VertexFunc, opts ...SpecOption) (VertexSpec, error) {
	o := applyOptions(opts)
	s := VertexSpec{kind: Differential, dim: dim, mass: o.mass, labels: o.labels, ode: f}
	if s.labels == nil {
		s.labels = defaultLabels("v", dim)
	}
	if err := s.validate(); err != nil {
		return VertexSpec{}, err
	}
	return s, nil
}

func (s VertexSpec) Kind() Kind { return s.kind }
func (s VertexSpec) Dim() int { return s.dim }
func (s VertexSpec) Mass() MassMatrix { return s.mass }
func (s VertexSpec) Labels() []string { return append([]string(nil), s.labels...) }

func (s VertexSpec) validate() error {
	hasRule := (s.kind == Static && s.static != nil) || (s.kind == Differential && s.ode != nil)
	return validateShape(s.kind, s.dim, s.mass, s.labels, hasRule)
}

// evaluate dispatches on the kind. A differential vertex writes its
// derivative into dx. A static vertex writes its value into its own state x
// and has zero rate.
func (s *VertexSpec) evaluate(dx, x []float64, in, out [][]float64, p any, t float64) error {
	switch s.kind {
	case Static:
		clear(dx)
		return s.static(x, in, out, p, t)
	case Differential:
		return s.ode(dx, x, in, out, p, t)
	}
	return fmt.Errorf("vertex: unknown %v", s.kind)
}

// EdgeSpec is the immutable description of one edge's local rule.
type EdgeSpec struct {
	kind   Kind
	dim    int
	mass   MassMatrix
	labels []string
	static StaticEdgeFunc
	ode    EdgeFunc
}

// NewStaticEdge describes an algebraic edge of the given dimension.
func NewStaticEdge(dim int, f StaticEdgeFunc, opts ...SpecOption) (EdgeSpec, error) {
	o := applyOptions(opts)
	s := EdgeSpec{kind: Static, dim: dim, mass: o.mass, labels: o.labels, static: f}
	if s.labels == nil {
		s.labels = defaultLabels("e", dim)
	}
	if err := s.validate(); err != nil {
		return EdgeSpec{}, err
	}
	return s, nil
}

// NewODEEdge describes a differential edge of the given dimension. Its state
// is integrated together with the vertex states.
func NewODEEdge(dim int, f EdgeFunc, opts ...SpecOption) (EdgeSpec, error) {
	o := applyOptions(opts)
	s := EdgeSpec{kind: Differential, dim: dim, mass: o.mass, labels: o.labels, ode: f}
	if s.labels == nil {
		s.labels = defaultLabels("e", dim)
	}
	if err := s.validate(); err != nil {
		return EdgeSpec{}, err
	}
	return s, nil
}

func (s EdgeSpec) Kind() Kind { return s.kind }
func (s EdgeSpec) Dim() int { return s.dim }
func (s EdgeSpec) Mass() MassMatrix { return s.mass }
func (s EdgeSpec) Labels() []string { return append([]string(nil), s.labels...) }

func (s EdgeSpec) validate() error {
	hasRule := (s.kind == Static && s.static != nil) || (s.kind == Differential && s.ode != nil)
	return validateShape(s.kind, s.dim, s.mass, s.labels, hasRule)
}

// RepeatVertex returns n copies of one vertex spec.
func RepeatVertex(s VertexSpec, n int) []VertexSpec {
	out := make([]VertexSpec, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// RepeatEdge returns n copies of one edge spec.
func RepeatEdge(s EdgeSpec, n int) []EdgeSpec {
	out := make([]EdgeSpec, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func applyOptions(opts []SpecOption) specOptions {
	var o specOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validateShape(kind Kind, dim int, mass MassMatrix, labels []string, hasRule bool) error {
	if dim < 1 {
		return fmt.Errorf("%w: got %d", dynamo.ErrInvalidDimension, dim)
	}
	if kind != Static && kind != Differential {
		return fmt.Errorf("%w: unknown %v", dynamo.ErrMissingRule, kind)
	}
	if kind == Static && !mass.IsIdentity() {
		return dynamo.ErrInvalidMassMatrixForStaticKind
	}
	if err := mass.validate(dim); err != nil {
		return err
	}
	if len(labels) != dim {
		return fmt.Errorf("%w: %d labels for dimension %d", dynamo.ErrDimensionMismatch, len(labels), dim)
	}
	if !hasRule {
		return dynamo.ErrMissingRule
	}
	return nil
}

func defaultLabels(prefix string, dim int) []string {
	if dim < 1 {
		return nil
	}
	if dim == 1 {
		return []string{prefix}
	}
	labels := make([]string, dim)
	for i := range labels {
		labels[i] = prefix + strconv.Itoa(i+1)
	}
	return labels
}
