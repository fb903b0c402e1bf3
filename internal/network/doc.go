// Package network assembles one global right-hand side from a graph and
// per-vertex / per-edge local rules.
//
// Every vertex and every edge carries a [VertexSpec] or [EdgeSpec]: its
// [Kind] (Static or Differential), dimension, mass matrix and labels.
// [Assemble] derives the [Topology] index, the [Layout] of the flat state
// vector and the [GlobalMassMatrix] once. The resulting [System] evaluates
//
//	du = F(u, p, t)
//
// in place, as many times as an integrator needs, without allocating on the
// serial path.
//
// # State vector layout
//
// The integrated vector holds every vertex segment in declaration order,
// followed by the segments of Differential edges in edge declaration order.
// Static edges are not integrated; their outputs live in a separate edge
// vector that is recomputed on every call.
//
// A Static vertex writes its algebraic value into its own segment of u and
// zeroes its segment of du, so the identity mass marker holds for any
// integrator. Such segments are listed by [System.Algebraic]; the integrators
// here evaluate once more after each step to refresh them.
//
// # Edge orientation
//
// Every edge is treated as directed from its source to its destination, even
// when the graph is conceptually undirected. The roles come from the order in
// which the graph reports the endpoints.
//
// # Evaluation order
//
// One call runs two phases. All edges are evaluated first, reading the
// current vertex states. Every vertex is then evaluated, reading the views of
// its incoming and outgoing edges. No ordering holds inside a phase, so both
// phases may be spread across goroutines with [WithParallel].
package network
