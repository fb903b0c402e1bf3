package network

import "strconv"

// Symbols names every component of the integrated state vector as
// label_index, where index is the vertex or edge number. Labels carry no
// meaning for evaluation.
func (s *System) Symbols() []string {
	out := make([]string, s.layout.StateDim)
	for i := range s.vertices {
		seg := s.layout.Vertices[i]
		for k, label := range s.vertices[i].labels {
			out[seg.Offset+k] = label + "_" + strconv.Itoa(i)
		}
	}
	for j := range s.edges {
		seg, ok := s.layout.EdgeStateSegment(j)
		if !ok {
			continue
		}
		for k, label := range s.edges[j].labels {
			out[seg.Offset+k] = label + "_" + strconv.Itoa(j)
		}
	}
	return out
}

// EdgeSymbols names every component of the edge vector.
func (s *System) EdgeSymbols() []string {
	out := make([]string, s.layout.EdgeDim)
	for j := range s.edges {
		seg := s.layout.Edges[j]
		for k, label := range s.edges[j].labels {
			out[seg.Offset+k] = label + "_" + strconv.Itoa(j)
		}
	}
	return out
}
