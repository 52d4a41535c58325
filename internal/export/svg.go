package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/sparse"
)

// SeriesToSVG creates an SVG line plot from a time series. NaN samples
// break the path so gaps stay visible.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	// Find bounds over valid samples
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range xs {
		if math.IsNaN(ys[i]) {
			continue
		}
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	if math.IsInf(minX, 1) {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, strokeColor))

	pen := "M"
	for i := range xs {
		if math.IsNaN(ys[i]) {
			pen = "M"
			continue
		}
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", pen, x, y))
		pen = "L"
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// GridToSVG renders a 2-D array as a greyscale cell map, row zero at
// the bottom so the image matches the grid's y axis. NaN cells are
// left unfilled.
func GridToSVG(a *sparse.DenseArray, cellPx int) string {
	if a == nil || len(a.Shape) != 2 {
		return ""
	}
	ny, nx := a.Shape[0], a.Shape[1]

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range a.Elements {
		if math.IsNaN(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	span := max - min
	if span == 0 {
		span = 1
	}

	width := nx * cellPx
	height := ny * cellPx

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := a.Get(j, i)
			if math.IsNaN(v) {
				continue
			}
			shade := int(255 * (v - min) / span)
			x := i * cellPx
			y := (ny - 1 - j) * cellPx
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="#%02x%02x%02x"/>
`, x, y, cellPx, cellPx, shade, shade, shade))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
