package graphs

import (
	"fmt"
	"math/rand"
)

// Path connects 0-1-2-...-(n-1).
func Path(n int, directed bool) (*EdgeList, error) {
	if n < 1 {
		return nil, fmt.Errorf("path: n=%d: %w", n, ErrTooFewVertices)
	}
	g := New(n, directed)
	for i := 0; i+1 < n; i++ {
		g.pairs = append(g.pairs, [2]int{i, i + 1})
	}
	return g, nil
}

// Ring is a path closed by the edge (n-1, 0).
func Ring(n int, directed bool) (*EdgeList, error) {
	if n < 3 {
		return nil, fmt.Errorf("ring: n=%d (need at least 3): %w", n, ErrTooFewVertices)
	}
	g, _ := Path(n, directed)
	g.pairs = append(g.pairs, [2]int{n - 1, 0})
	return g, nil
}

// Star connects the hub 0 to every other vertex.
func Star(n int, directed bool) (*EdgeList, error) {
	if n < 2 {
		return nil, fmt.Errorf("star: n=%d: %w", n, ErrTooFewVertices)
	}
	g := New(n, directed)
	for i := 1; i < n; i++ {
		g.pairs = append(g.pairs, [2]int{0, i})
	}
	return g, nil
}

// Complete connects every unordered pair i<j once.
func Complete(n int, directed bool) (*EdgeList, error) {
	if n < 1 {
		return nil, fmt.Errorf("complete: n=%d: %w", n, ErrTooFewVertices)
	}
	g := New(n, directed)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.pairs = append(g.pairs, [2]int{i, j})
		}
	}
	return g, nil
}

// Grid is a rows x cols lattice in row-major order. Each cell links to its
// right neighbour, then its bottom neighbour.
func Grid(rows, cols int, directed bool) (*EdgeList, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("grid: %dx%d: %w", rows, cols, ErrTooFewVertices)
	}
	g := New(rows*cols, directed)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := r*cols + c
			if c+1 < cols {
				g.pairs = append(g.pairs, [2]int{v, v + 1})
			}
			if r+1 < rows {
				g.pairs = append(g.pairs, [2]int{v, v + cols})
			}
		}
	}
	return g, nil
}

// ErdosRenyi includes every unordered pair i<j independently with
// probability p. Trials run in (i, j) order so a seed fixes the graph.
func ErdosRenyi(n int, p float64, seed int64, directed bool) (*EdgeList, error) {
	if n < 1 {
		return nil, fmt.Errorf("erdos-renyi: n=%d: %w", n, ErrTooFewVertices)
	}
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("erdos-renyi: p=%.4f: %w", p, ErrInvalidProbability)
	}
	rng := rand.New(rand.NewSource(seed))
	g := New(n, directed)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				g.pairs = append(g.pairs, [2]int{i, j})
			}
		}
	}
	return g, nil
}
