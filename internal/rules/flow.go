package rules

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dynamo"
)

// netFlow is the sum of component k over incoming edges minus the sum over
// outgoing edges.
func netFlow(in, out [][]float64, k int) float64 {
	sum := 0.0
	for _, e := range in {
		sum += e[k]
	}
	for _, e := range out {
		sum -= e[k]
	}
	return sum
}

func unknownParam(rule, name string) error {
	return fmt.Errorf("%w: %s has no %q", dynamo.ErrUnknownParameter, rule, name)
}

func outOfBounds(rule, name string, value float64) error {
	return fmt.Errorf("%w: %s.%s = %g", dynamo.ErrParameterBounds, rule, name, value)
}
