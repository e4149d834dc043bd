package sparkline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CommaSeparatedString(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 3}, Parse("1, 2.5,3"))
}

func TestParse_DropsNonNumericEntries(t *testing.T) {
	assert.Equal(t, []float64{1, 3}, Parse("1,abc,3"))
	assert.Equal(t, []float64{1, 2}, Parse([]any{1.0, "x", 2.0}))
}

func TestParse_NilAndUnknownShapes(t *testing.T) {
	assert.Nil(t, Parse(nil))
	assert.Nil(t, Parse(42))
}

func TestRender_TooFewPoints(t *testing.T) {
	_, ok := Render(nil, DefaultWidth, DefaultHeight)
	assert.False(t, ok)

	_, ok = Render([]float64{5}, DefaultWidth, DefaultHeight)
	assert.False(t, ok)
}

func TestRender_FlatSeries(t *testing.T) {
	line, ok := Render([]float64{5, 5, 5}, DefaultWidth, DefaultHeight)
	require.True(t, ok)
	assert.NotContains(t, line.Points, "NaN")
	// A flat series counts as non-decreasing.
	assert.True(t, line.Up)
	assert.Equal(t, uptrendColor, line.Color)
}

func TestRender_TrendColors(t *testing.T) {
	up, ok := Render([]float64{1, 2, 3}, DefaultWidth, DefaultHeight)
	require.True(t, ok)
	assert.Equal(t, uptrendColor, up.Color)

	down, ok := Render([]float64{3, 2, 1}, DefaultWidth, DefaultHeight)
	require.True(t, ok)
	assert.Equal(t, downtrendColor, down.Color)
}

func TestRender_NormalizesIntoBox(t *testing.T) {
	line, ok := Render([]float64{0, 10}, 100, 30)
	require.True(t, ok)
	// First point sits at the bottom-left, last at the top-right.
	assert.Equal(t, "0.00,30.00 100.00,0.00", line.Points)
}

func TestSVG(t *testing.T) {
	line, ok := Render([]float64{1, 2}, DefaultWidth, DefaultHeight)
	require.True(t, ok)

	svg := line.SVG()
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, line.Points)
	assert.Contains(t, svg, line.Color)
}
