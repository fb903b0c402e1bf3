package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/netdyn/internal/dynamo"
)

func TestGlobalMassMatrix_IdentityMarker(t *testing.T) {
	v, err := NewODEVertex(2, noopODEVertex, WithMass(DiagonalMass(1, 1)))
	require.NoError(t, err)
	s, err := NewStaticVertex(1, noopStaticVertex)
	require.NoError(t, err)
	e, err := NewODEEdge(1, noopODEEdge)
	require.NoError(t, err)

	sys, err := Assemble([]VertexSpec{v, s}, []EdgeSpec{e}, edgePairs{n: 2, pairs: [][2]int{{0, 1}}})
	require.NoError(t, err)

	m := sys.MassMatrix()
	assert.True(t, m.IsIdentity())
	assert.Nil(t, m.Blocks())
	assert.Equal(t, 4, m.Size())

	one, err := m.At(3, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, one)
	zero, err := m.At(0, 3)
	require.NoError(t, err)
	assert.Zero(t, zero)
}

func TestGlobalMassMatrix_Blocks(t *testing.T) {
	swing, err := NewODEVertex(2, noopODEVertex, WithMass(DiagonalMass(1, 0.5)))
	require.NoError(t, err)
	plain, err := NewODEVertex(1, noopODEVertex)
	require.NoError(t, err)
	lag, err := NewODEEdge(2, noopODEEdge, WithMass(DenseMass([][]float64{{2, 1}, {0, 3}})))
	require.NoError(t, err)
	flow, err := NewStaticEdge(1, noopStaticEdge)
	require.NoError(t, err)

	g := edgePairs{n: 2, pairs: [][2]int{{0, 1}, {1, 0}}}
	sys, err := Assemble([]VertexSpec{swing, plain}, []EdgeSpec{flow, lag}, g)
	require.NoError(t, err)

	m := sys.MassMatrix()
	require.False(t, m.IsIdentity())
	assert.False(t, m.IsDiagonal())
	assert.Equal(t, 5, m.Size())
	assert.Equal(t, []MassBlock{
		{Offset: 0, Size: 2, Mass: swing.Mass()},
		{Offset: 2, Size: 1, Mass: plain.Mass()},
		{Offset: 3, Size: 2, Mass: lag.Mass()},
	}, m.Blocks())

	assert.Equal(t, [][]float64{
		{1, 0, 0, 0, 0},
		{0, 0.5, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 2, 1},
		{0, 0, 0, 0, 3},
	}, m.Dense())

	v, err := m.At(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	v, err = m.At(1, 3)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = m.At(5, 0)
	assert.ErrorIs(t, err, dynamo.ErrIndexOutOfRange)
	_, err = m.At(0, -1)
	assert.ErrorIs(t, err, dynamo.ErrIndexOutOfRange)
}

func TestMassMatrix_Predicates(t *testing.T) {
	tests := []struct {
		name     string
		m        MassMatrix
		identity bool
		diagonal bool
	}{
		{"default", IdentityMass(), true, true},
		{"unit diagonal", DiagonalMass(1, 1, 1), true, true},
		{"singular diagonal", DiagonalMass(1, 0), false, true},
		{"dense identity", DenseMass([][]float64{{1, 0}, {0, 1}}), true, true},
		{"dense diagonal", DenseMass([][]float64{{2, 0}, {0, 1}}), false, true},
		{"dense coupled", DenseMass([][]float64{{1, 1}, {0, 1}}), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.identity, tt.m.IsIdentity())
			assert.Equal(t, tt.diagonal, tt.m.IsDiagonal())
		})
	}
}
