package analysis

import (
	"fmt"
)

type Point struct{ X, Y float64 }

// PhasePortrait pairs two components of a recorded trajectory.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

func NewPhasePortrait(states [][]float64, xIdx, yIdx int) (*PhasePortrait, error) {
	portrait := &PhasePortrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, 0, len(states))}
	for i, x := range states {
		if xIdx < 0 || yIdx < 0 || xIdx >= len(x) || yIdx >= len(x) {
			return nil, fmt.Errorf("phase portrait: components (%d, %d) outside state %d of length %d", xIdx, yIdx, i, len(x))
		}
		portrait.Points = append(portrait.Points, Point{x[xIdx], x[yIdx]})
	}
	return portrait, nil
}

// PoincareSection records (x[recordX], x[recordY]) wherever x[crossIdx]
// crosses threshold upwards, linearly interpolated between samples.
func PoincareSection(states [][]float64, crossIdx int, threshold float64, recordX, recordY int) ([]Point, error) {
	var points []Point
	for i := 1; i < len(states); i++ {
		prev, curr := states[i-1], states[i]
		for _, k := range []int{crossIdx, recordX, recordY} {
			if k < 0 || k >= len(curr) || k >= len(prev) {
				return nil, fmt.Errorf("poincare: component %d outside state %d", k, i)
			}
		}

		a, b := prev[crossIdx], curr[crossIdx]
		if a >= threshold || b < threshold {
			continue
		}
		frac := (threshold - a) / (b - a)
		points = append(points, Point{
			X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
			Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
		})
	}
	return points, nil
}

// PointsToASCII scatters points onto a width x height grid with 10% padding
// and draws the axes where they are visible.
func PointsToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width <= 1 || height <= 1 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	toCol := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	toRow := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	c := newCanvas(width, height)
	for _, p := range points {
		c.set(toRow(p.Y), toCol(p.X), '•')
	}

	if minX <= 0 && minX+rangeX >= 0 {
		col := toCol(0)
		for row := 0; row < height; row++ {
			if c.get(row, col) == ' ' {
				c.set(row, col, '│')
			}
		}
	}
	if minY <= 0 && minY+rangeY >= 0 {
		row := toRow(0)
		for col := 0; col < width; col++ {
			if c.get(row, col) == ' ' {
				c.set(row, col, '─')
			}
		}
	}
	return c.String()
}
