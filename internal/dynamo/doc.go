// Package dynamo provides the numeric primitives shared by the network
// engine, the integrators and the simulation loop.
//
//   - [State]: flat state vector
//   - sentinel errors for assembly-time and call-time failures
//   - [EntityError]: annotates a local-rule failure with the vertex or edge
//     that raised it
//   - [ParallelFor]: chunked fan-out with a completion barrier
//
// # Example
//
//	err := dynamo.ParallelFor(len(edges), 64, 4, func(start, end int) error {
//		for j := start; j < end; j++ {
//			// evaluate edge j
//		}
//		return nil
//	})
package dynamo
