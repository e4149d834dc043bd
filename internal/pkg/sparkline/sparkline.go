// Package sparkline turns a short numeric history into a minimal SVG
// polyline for the trend cell of the dashboard table.
package sparkline

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultWidth and DefaultHeight are the fixed box the points are
	// normalized into.
	DefaultWidth  = 100
	DefaultHeight = 30

	uptrendColor   = "#10b981"
	downtrendColor = "#f43f5e"
)

// Polyline is the renderable trend line: SVG coordinate pairs inside a
// Width x Height box, with a fixed color per trend direction.
type Polyline struct {
	Points string `json:"points"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Up     bool   `json:"up"`
	Color  string `json:"color"`
}

// Parse accepts a numeric sequence or a comma-separated numeric string
// and returns the usable points. Non-numeric entries are dropped.
func Parse(data any) []float64 {
	switch v := data.(type) {
	case nil:
		return nil
	case []float64:
		return v
	case string:
		parts := strings.Split(v, ",")
		points := make([]float64, 0, len(parts))
		for _, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				continue
			}
			points = append(points, f)
		}
		return points
	case []any:
		points := make([]float64, 0, len(v))
		for _, item := range v {
			if f, ok := item.(float64); ok {
				points = append(points, f)
			}
		}
		return points
	default:
		return nil
	}
}

// Render normalizes the points into a width x height box. Fewer than two
// points produce nothing. A degenerate flat series (max == min) uses a
// range of 1 to avoid dividing by zero.
func Render(points []float64, width, height int) (Polyline, bool) {
	if len(points) < 2 {
		return Polyline{}, false
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	min, max := points[0], points[0]
	for _, p := range points[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	rng := max - min
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for i, p := range points {
		x := float64(i) / float64(len(points)-1) * float64(width)
		// SVG y axis grows downward.
		y := float64(height) - (p-min)/rng*float64(height)
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(coord(x))
		b.WriteByte(',')
		b.WriteString(coord(y))
	}

	up := points[len(points)-1] >= points[0]
	color := downtrendColor
	if up {
		color = uptrendColor
	}
	return Polyline{
		Points: b.String(),
		Width:  width,
		Height: height,
		Up:     up,
		Color:  color,
	}, true
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SVG renders the polyline as a standalone SVG element.
func (p Polyline) SVG() string {
	return fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d"><polyline points="%s" fill="none" stroke="%s" stroke-width="1" stroke-linecap="round" stroke-linejoin="round"/></svg>`,
		p.Width, p.Height, p.Width, p.Height, p.Points, p.Color,
	)
}
