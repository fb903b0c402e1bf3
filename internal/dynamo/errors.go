package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for assembly and evaluation.
var (
	// ErrInvalidDimension indicates a vertex or edge declared with fewer than one state component.
	ErrInvalidDimension = errors.New("dynamo: dimension must be at least 1")

	// ErrInvalidMassMatrixForStaticKind indicates a non-identity mass matrix on a static relation.
	ErrInvalidMassMatrixForStaticKind = errors.New("dynamo: mass matrix given for static kind")

	// ErrDimensionMismatch indicates spec counts or matrix shapes that do not match what they describe.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrIndexOutOfRange indicates an edge endpoint or lookup outside the vertex range.
	ErrIndexOutOfRange = errors.New("dynamo: index out of range")

	// ErrBufferSizeMismatch indicates a caller-supplied buffer whose length differs from the layout.
	ErrBufferSizeMismatch = errors.New("dynamo: buffer size mismatch")

	// ErrSingularMassMatrix indicates a mass matrix an explicit scheme cannot invert.
	ErrSingularMassMatrix = errors.New("dynamo: singular mass matrix")

	// ErrInvalidState indicates a state vector holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrMissingRule indicates a spec constructed without a local rule.
	ErrMissingRule = errors.New("dynamo: local rule is nil")

	// ErrUnknownParameter indicates a parameter name a rule does not define.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")
)

// EntityError wraps a local-rule failure with the entity that raised it.
type EntityError struct {
	Entity  string // "vertex" or "edge"
	Index   int
	Time    float64
	Wrapped error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %d (t=%.4f): %v", e.Entity, e.Index, e.Time, e.Wrapped)
}

func (e *EntityError) Unwrap() error {
	return e.Wrapped
}
