package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"

	"github.com/san-kum/netdyn/internal/analysis"
)

// Series is one polyline of a plot.
type Series struct {
	Name   string
	Points []analysis.Point
}

// TimeSeries pairs each value with its sample time.
func TimeSeries(name string, times, values []float64) Series {
	n := min(len(times), len(values))
	s := Series{Name: name, Points: make([]analysis.Point, n)}
	for i := 0; i < n; i++ {
		s.Points[i] = analysis.Point{X: times[i], Y: values[i]}
	}
	return s
}

var palette = []string{"#00ff88", "#00ccff", "#ff00ff", "#ffcc00", "#ff4444", "#8888ff"}

type bounds struct{ minX, minY, rangeX, rangeY float64 }

// common bounds over every point, padded by 10% on each side.
func fit(series []Series) (bounds, bool) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return bounds{}, false
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return bounds{
		minX:   minX - rangeX*0.1,
		minY:   minY - rangeY*0.1,
		rangeX: rangeX * 1.2,
		rangeY: rangeY * 1.2,
	}, true
}

// WriteSVG draws every series as a polyline on shared axes with a legend.
// Series with fewer than two points are skipped.
func WriteSVG(w io.Writer, series []Series, width, height int) error {
	b, ok := fit(series)
	if !ok {
		return fmt.Errorf("export: nothing to plot")
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		color := palette[i%len(palette)]
		fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		for k, p := range s.Points {
			x := (p.X - b.minX) / b.rangeX * float64(width)
			y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
			if k == 0 {
				fmt.Fprintf(bw, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			}
		}
		bw.WriteString("\"/>\n")
		fmt.Fprintf(bw, `<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 20+16*i, color, html.EscapeString(s.Name))
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
