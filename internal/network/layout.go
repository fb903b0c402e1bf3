package network

// Segment is a contiguous range of a flat vector.
type Segment struct {
	Offset int
	Length int
}

// End is one past the last index of the segment.
func (s Segment) End() int { return s.Offset + s.Length }

// Slice returns the segment's view of buf. The capacity is clipped so a rule
// appending to its view cannot spill into a neighbour.
func (s Segment) Slice(buf []float64) []float64 {
	return buf[s.Offset:s.End():s.End()]
}

// Layout assigns every vertex and edge its segment. It is derived once from
// the declared dimensions by running prefix sums in declaration order.
//
// The integrated state vector is the vertex vector followed by the states of
// differential edges. The edge vector holds every edge, static or not.
type Layout struct {
	// Vertices indexes the integrated state vector; vertex segments come first.
	Vertices []Segment
	// Edges indexes the edge vector.
	Edges []Segment

	VertexDim int
	EdgeDim   int
	StateDim  int

	edgeState         []Segment // Offset -1 for static edges
	differentialEdges int
}

// PlanLayout computes offsets for the given specs.
func PlanLayout(vertices []VertexSpec, edges []EdgeSpec) *Layout {
	l := &Layout{
		Vertices:  make([]Segment, len(vertices)),
		Edges:     make([]Segment, len(edges)),
		edgeState: make([]Segment, len(edges)),
	}

	off := 0
	for i := range vertices {
		l.Vertices[i] = Segment{Offset: off, Length: vertices[i].dim}
		off += vertices[i].dim
	}
	l.VertexDim = off

	eoff := 0
	for j := range edges {
		l.Edges[j] = Segment{Offset: eoff, Length: edges[j].dim}
		eoff += edges[j].dim

		if edges[j].kind == Differential {
			l.edgeState[j] = Segment{Offset: off, Length: edges[j].dim}
			off += edges[j].dim
			l.differentialEdges++
		} else {
			l.edgeState[j] = Segment{Offset: -1}
		}
	}
	l.EdgeDim = eoff
	l.StateDim = off

	return l
}

// EdgeStateSegment returns the segment of edge j inside the integrated state
// vector. ok is false for static edges.
func (l *Layout) EdgeStateSegment(j int) (seg Segment, ok bool) {
	seg = l.edgeState[j]
	return seg, seg.Offset >= 0
}

// DifferentialEdges counts the edges whose state is integrated.
func (l *Layout) DifferentialEdges() int { return l.differentialEdges }
