package network

import (
	"fmt"
	"sort"

	"github.com/san-kum/netdyn/internal/dynamo"
)

// MassMatrix describes the left-hand side M of M·dx/dt = f for one entity.
// The zero value is the identity of whatever dimension the entity has.
type MassMatrix struct {
	n     int
	diag  []float64
	dense []float64 // row-major n*n
}

// IdentityMass returns the default mass matrix.
func IdentityMass() MassMatrix { return MassMatrix{} }

// DiagonalMass returns a diagonal mass matrix. A zero entry marks an
// algebraic component of a differential relation.
func DiagonalMass(d ...float64) MassMatrix {
	diag := make([]float64, len(d))
	copy(diag, d)
	return MassMatrix{n: len(d), diag: diag}
}

// DenseMass returns a full mass matrix from its rows. Ragged or non-square
// input yields a descriptor that fails validation against any dimension.
func DenseMass(rows [][]float64) MassMatrix {
	n := len(rows)
	dense := make([]float64, 0, n*n)
	for _, row := range rows {
		if len(row) != n {
			return MassMatrix{n: -1}
		}
		dense = append(dense, row...)
	}
	return MassMatrix{n: n, dense: dense}
}

// Size is the declared dimension, or 0 for the implicit identity.
func (m MassMatrix) Size() int { return m.n }

// IsIdentity reports whether m is the identity, explicitly or by default.
func (m MassMatrix) IsIdentity() bool {
	switch {
	case m.n == 0:
		return true
	case m.diag != nil:
		for _, v := range m.diag {
			if v != 1 {
				return false
			}
		}
		return true
	case m.dense != nil:
		for i := 0; i < m.n; i++ {
			for j := 0; j < m.n; j++ {
				want := 0.0
				if i == j {
					want = 1
				}
				if m.dense[i*m.n+j] != want {
					return false
				}
			}
		}
		return true
	}
	return false
}

// IsDiagonal reports whether every off-diagonal entry is zero.
func (m MassMatrix) IsDiagonal() bool {
	if m.n == 0 || m.diag != nil {
		return true
	}
	if m.dense == nil {
		return false
	}
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i != j && m.dense[i*m.n+j] != 0 {
				return false
			}
		}
	}
	return true
}

// At returns entry (i, j). Callers keep i and j inside the entity dimension.
func (m MassMatrix) At(i, j int) float64 {
	switch {
	case m.diag != nil:
		if i == j {
			return m.diag[i]
		}
		return 0
	case m.dense != nil:
		return m.dense[i*m.n+j]
	}
	if i == j {
		return 1
	}
	return 0
}

func (m MassMatrix) validate(dim int) error {
	if m.n == 0 {
		return nil
	}
	if m.n != dim {
		return fmt.Errorf("%w: mass matrix is %dx%d, dimension is %d", dynamo.ErrDimensionMismatch, m.n, m.n, dim)
	}
	return nil
}

// MassBlock places one entity's mass matrix on the diagonal of the global matrix.
type MassBlock struct {
	Offset int
	Size   int
	Mass   MassMatrix
}

// GlobalMassMatrix is either the identity marker or a block-diagonal matrix
// over the integrated state vector. It is computed once at assembly.
type GlobalMassMatrix struct {
	n        int
	identity bool
	blocks   []MassBlock
}

// IsIdentity reports the fast path: no matrix is materialized.
func (g *GlobalMassMatrix) IsIdentity() bool { return g.identity }

// Size is the dimension of the integrated state vector.
func (g *GlobalMassMatrix) Size() int { return g.n }

// Blocks returns the diagonal blocks, ordered by offset. Nil for the identity marker.
func (g *GlobalMassMatrix) Blocks() []MassBlock { return g.blocks }

// IsDiagonal reports whether every block is diagonal.
func (g *GlobalMassMatrix) IsDiagonal() bool {
	for _, b := range g.blocks {
		if !b.Mass.IsDiagonal() {
			return false
		}
	}
	return true
}

// At returns entry (i, j) of the global matrix.
func (g *GlobalMassMatrix) At(i, j int) (float64, error) {
	if i < 0 || j < 0 || i >= g.n || j >= g.n {
		return 0, fmt.Errorf("%w: (%d, %d) outside %dx%d mass matrix", dynamo.ErrIndexOutOfRange, i, j, g.n, g.n)
	}
	if g.identity {
		if i == j {
			return 1, nil
		}
		return 0, nil
	}

	k := sort.Search(len(g.blocks), func(k int) bool {
		return g.blocks[k].Offset+g.blocks[k].Size > i
	})
	b := g.blocks[k]
	if j < b.Offset || j >= b.Offset+b.Size {
		return 0, nil
	}
	return b.Mass.At(i-b.Offset, j-b.Offset), nil
}

// Dense materializes the full matrix row by row.
func (g *GlobalMassMatrix) Dense() [][]float64 {
	out := make([][]float64, g.n)
	for i := range out {
		out[i] = make([]float64, g.n)
	}
	if g.identity {
		for i := range out {
			out[i][i] = 1
		}
		return out
	}
	for _, b := range g.blocks {
		for i := 0; i < b.Size; i++ {
			for j := 0; j < b.Size; j++ {
				out[b.Offset+i][b.Offset+j] = b.Mass.At(i, j)
			}
		}
	}
	return out
}

// buildMassMatrix returns the identity marker unless some differential spec
// carries a non-identity mass matrix.
func buildMassMatrix(vertices []VertexSpec, edges []EdgeSpec, layout *Layout) *GlobalMassMatrix {
	g := &GlobalMassMatrix{n: layout.StateDim, identity: true}

	for i := range vertices {
		if vertices[i].kind == Differential && !vertices[i].mass.IsIdentity() {
			g.identity = false
			break
		}
	}
	if g.identity {
		for j := range edges {
			if edges[j].kind == Differential && !edges[j].mass.IsIdentity() {
				g.identity = false
				break
			}
		}
	}
	if g.identity {
		return g
	}

	g.blocks = make([]MassBlock, 0, len(vertices)+layout.differentialEdges)
	for i := range vertices {
		seg := layout.Vertices[i]
		g.blocks = append(g.blocks, MassBlock{Offset: seg.Offset, Size: seg.Length, Mass: vertices[i].mass})
	}
	for j := range edges {
		seg, ok := layout.EdgeStateSegment(j)
		if !ok {
			continue
		}
		g.blocks = append(g.blocks, MassBlock{Offset: seg.Offset, Size: seg.Length, Mass: edges[j].mass})
	}
	return g
}
