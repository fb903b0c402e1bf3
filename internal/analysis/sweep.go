package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/integrators"
)

// SweepPoint is what one parameter value settled into.
type SweepPoint struct {
	Param  float64
	Mean   float64   // mean of the observable over the recording window
	Values []float64 // distinct observed values, quantized to 1e-3
}

// BuildFunc assembles the system and initial state for one parameter value.
type BuildFunc func(param float64) (integrators.RHS, dynamo.State, error)

// Observable reduces a state to the scalar a sweep records.
type Observable func(x dynamo.State) float64

// SweepConfig controls the time stepping at each parameter value.
type SweepConfig struct {
	Dt        float64
	Transient float64 // discarded
	Record    float64
	Workers   int
}

// Sweep runs one simulation per parameter value and records the observable
// after the transient has died out. Parameter values are independent and run
// concurrently.
func Sweep(ctx context.Context, params []float64, build BuildFunc, newIntegrator func() integrators.Integrator, observe Observable, cfg SweepConfig) ([]SweepPoint, error) {
	if cfg.Dt <= 0 || cfg.Record <= 0 || cfg.Transient < 0 {
		return nil, fmt.Errorf("sweep: dt and record must be positive, transient non-negative")
	}

	points := make([]SweepPoint, len(params))
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}

	for i, param := range params {
		g.Go(func() error {
			pt, err := sweepOne(ctx, param, build, newIntegrator(), observe, cfg)
			if err != nil {
				return fmt.Errorf("param %g: %w", param, err)
			}
			points[i] = pt
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func sweepOne(ctx context.Context, param float64, build BuildFunc, integ integrators.Integrator, observe Observable, cfg SweepConfig) (SweepPoint, error) {
	sys, x0, err := build(param)
	if err != nil {
		return SweepPoint{}, err
	}
	x := x0.Clone()

	transient := int(math.Round(cfg.Transient / cfg.Dt))
	record := int(math.Round(cfg.Record / cfg.Dt))

	pt := SweepPoint{Param: param, Values: make([]float64, 0, 16)}
	seen := make(map[int64]bool)
	sum := 0.0

	for i := 0; i < transient+record; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return SweepPoint{}, ctx.Err()
		}
		if err := integ.Step(sys, x, nil, float64(i)*cfg.Dt, cfg.Dt); err != nil {
			return SweepPoint{}, err
		}
		if i < transient {
			continue
		}

		val := observe(x)
		sum += val
		key := int64(math.Round(val * 1000))
		if !seen[key] {
			seen[key] = true
			pt.Values = append(pt.Values, val)
		}
	}

	if record > 0 {
		pt.Mean = sum / float64(record)
	}
	return pt, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// SweepToASCII draws every distinct value of every sweep point on a
// width x height character grid, parameter on the horizontal axis.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := newCanvas(width, height)
	for i, p := range data {
		col := i * width / len(data)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			canvas.set(row, col, '•')
		}
	}
	return canvas.String()
}

type canvas [][]rune

func newCanvas(width, height int) canvas {
	c := make(canvas, height)
	for i := range c {
		c[i] = []rune(strings.Repeat(" ", width))
	}
	return c
}

func (c canvas) set(row, col int, r rune) {
	if row >= 0 && row < len(c) && col >= 0 && col < len(c[row]) {
		c[row][col] = r
	}
}

func (c canvas) get(row, col int) rune {
	if row >= 0 && row < len(c) && col >= 0 && col < len(c[row]) {
		return c[row][col]
	}
	return 0
}

func (c canvas) String() string {
	var sb strings.Builder
	for _, row := range c {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
