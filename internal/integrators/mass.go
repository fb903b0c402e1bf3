package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/network"
)

const singularPivot = 1e-14

// massSolver applies M⁻¹ block by block. Identity blocks are skipped,
// diagonal blocks are scaled and dense blocks use a cached LU factorization.
type massSolver struct {
	blocks []solveBlock
}

type solveBlock struct {
	offset int
	size   int
	inv    []float64 // diagonal blocks
	lu     []float64 // dense blocks, row-major with unit lower triangle implied
	piv    []int
	tmp    []float64
}

// newMassSolver returns nil for the identity marker. A block an explicit
// scheme cannot invert fails with ErrSingularMassMatrix.
func newMassSolver(m *network.GlobalMassMatrix) (*massSolver, error) {
	if m == nil || m.IsIdentity() {
		return nil, nil
	}

	s := &massSolver{}
	for _, b := range m.Blocks() {
		if b.Mass.IsIdentity() {
			continue
		}
		sb := solveBlock{offset: b.Offset, size: b.Size}

		if b.Mass.IsDiagonal() {
			sb.inv = make([]float64, b.Size)
			for i := range sb.inv {
				d := b.Mass.At(i, i)
				if math.Abs(d) < singularPivot {
					return nil, fmt.Errorf("%w: zero mass at state index %d", dynamo.ErrSingularMassMatrix, b.Offset+i)
				}
				sb.inv[i] = 1 / d
			}
		} else {
			sb.lu = make([]float64, b.Size*b.Size)
			for i := 0; i < b.Size; i++ {
				for j := 0; j < b.Size; j++ {
					sb.lu[i*b.Size+j] = b.Mass.At(i, j)
				}
			}
			piv, err := factorLU(sb.lu, b.Size)
			if err != nil {
				return nil, fmt.Errorf("%w: block at state index %d", err, b.Offset)
			}
			sb.piv = piv
			sb.tmp = make([]float64, b.Size)
		}
		s.blocks = append(s.blocks, sb)
	}
	return s, nil
}

func (s *massSolver) apply(du []float64) {
	for i := range s.blocks {
		b := &s.blocks[i]
		seg := du[b.offset : b.offset+b.size]
		if b.inv != nil {
			for k := range seg {
				seg[k] *= b.inv[k]
			}
			continue
		}
		solveLU(b.lu, b.piv, seg, b.tmp)
	}
}

// factorLU overwrites a with its LU factors using partial pivoting.
func factorLU(a []float64, n int) ([]int, error) {
	piv := make([]int, n)
	for i := range piv {
		piv[i] = i
	}

	for k := 0; k < n; k++ {
		p, maxAbs := k, math.Abs(a[k*n+k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(a[i*n+k]); v > maxAbs {
				p, maxAbs = i, v
			}
		}
		if maxAbs < singularPivot {
			return nil, dynamo.ErrSingularMassMatrix
		}
		if p != k {
			for j := 0; j < n; j++ {
				a[k*n+j], a[p*n+j] = a[p*n+j], a[k*n+j]
			}
			piv[k], piv[p] = piv[p], piv[k]
		}

		for i := k + 1; i < n; i++ {
			f := a[i*n+k] / a[k*n+k]
			a[i*n+k] = f
			for j := k + 1; j < n; j++ {
				a[i*n+j] -= f * a[k*n+j]
			}
		}
	}
	return piv, nil
}

// solveLU solves in place: b becomes A⁻¹b.
func solveLU(lu []float64, piv []int, b, tmp []float64) {
	n := len(b)
	for i := 0; i < n; i++ {
		tmp[i] = b[piv[i]]
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			tmp[i] -= lu[i*n+j] * tmp[j]
		}
	}
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			tmp[i] -= lu[i*n+j] * tmp[j]
		}
		tmp[i] /= lu[i*n+i]
	}
	copy(b, tmp)
}
