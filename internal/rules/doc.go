// Package rules provides local vertex and edge rules for network systems.
//
// Each rule is a small parameter struct with a constructor holding classic
// defaults. Its VertexSpec or EdgeSpec method returns a descriptor bound to
// the struct, so parameters changed later through SetParam are seen by every
// system assembled from it:
//
//	k := rules.NewKuramoto()
//	v, _ := k.VertexSpec()
//	e, _ := k.EdgeSpec()
//	sys, _ := network.Assemble(network.RepeatVertex(v, n), network.RepeatEdge(e, m), g)
//
// Edges carry a flow from source to destination. Vertex rules add incoming
// flows and subtract outgoing ones, so a graph enumerated once per undirected
// pair couples both endpoints symmetrically.
package rules
