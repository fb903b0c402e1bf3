package dynamo

import "math"

// SinTable approximates sin by linear interpolation over a fixed grid on
// [0, 2π). Coupling rules that evaluate sin once per edge per call use it
// when exactness below ~1e-6 is not needed.
type SinTable struct {
	values []float64
	scale  float64
}

// DefaultSinTable has 4096 entries (~0.0015 rad resolution).
var DefaultSinTable = NewSinTable(4096)

// NewSinTable builds a table with n grid points. n must be positive.
func NewSinTable(n int) *SinTable {
	t := &SinTable{
		values: make([]float64, n+1),
		scale:  float64(n) / (2 * math.Pi),
	}
	for i := 0; i <= n; i++ {
		t.values[i] = math.Sin(float64(i) / t.scale)
	}
	return t
}

// Sin returns the interpolated sine of x, or NaN when x is not finite.
func (t *SinTable) Sin(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return math.NaN()
	}
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	idx := x * t.scale
	i := int(idx)
	if i < 0 {
		i = 0
	}
	if i >= len(t.values)-1 {
		i = len(t.values) - 2
	}
	frac := idx - float64(i)

	return t.values[i]*(1-frac) + t.values[i+1]*frac
}

// Cos returns the interpolated cosine of x.
func (t *SinTable) Cos(x float64) float64 {
	return t.Sin(x + math.Pi/2)
}

// FastSin uses the default table.
func FastSin(x float64) float64 {
	return DefaultSinTable.Sin(x)
}
