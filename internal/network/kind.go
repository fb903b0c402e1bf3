package network

import "fmt"

// Kind selects between an algebraic and a differential local relation.
type Kind uint8

const (
	// Static relations recompute their output from the current inputs on every call.
	Static Kind = iota + 1
	// Differential relations produce a rate of change for an integrator.
	Differential
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Differential:
		return "differential"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}
