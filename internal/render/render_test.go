package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/hdiview/internal/assembly"
	"github.com/KaramelBytes/hdiview/internal/store"
)

func panel(metric string) assembly.Panel {
	return assembly.Panel{
		Metric: metric,
		XLabel: "Year",
		YLabel: metric,
		Overlays: []assembly.SeriesRecord{
			{Label: "Kerala", Group: "Female", Overlay: true, Points: store.Series{{X: 1990, Y: 80}, {X: 2000, Y: 90}}},
		},
		Primaries: []assembly.SeriesRecord{
			{Label: "India", Group: "Female", Points: store.Series{{X: 1990, Y: 40}, {X: 2000, Y: 60}}},
			{Label: "Chile", Points: store.Series{{X: 1995, Y: 70}}},
		},
	}
}

func TestPNG_HorizontalGrid(t *testing.T) {
	c := assembly.Chart{Panels: []assembly.Panel{panel("A"), panel("B")}, Grid: 2}
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, c, Options{Width: 300, Height: 200}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestPNG_VerticalGrid(t *testing.T) {
	c := assembly.Chart{Panels: []assembly.Panel{panel("A"), panel("B"), panel("C")}, Grid: 3, Vertical: true}
	img, err := Image(c, Options{Width: 300, Height: 200})
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestPNG_NoPanels(t *testing.T) {
	img, err := Image(assembly.Chart{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().Width, img.Bounds().Dx())
}

func TestPanel_SeriesOrderAndStyles(t *testing.T) {
	ch := Panel(panel("Primary Education"), Options{})
	require.Len(t, ch.Series, 3)
	assert.Equal(t, "Primary Education", ch.Title)

	overlay := ch.Series[0].(chart.ContinuousSeries)
	assert.Equal(t, "Kerala (Female)", overlay.Name)
	assert.NotEmpty(t, overlay.Style.StrokeDashArray)

	primary := ch.Series[1].(chart.ContinuousSeries)
	assert.Equal(t, "India (Female)", primary.Name)
	assert.Empty(t, primary.Style.StrokeDashArray)

	single := ch.Series[2].(chart.ContinuousSeries)
	assert.Len(t, single.XValues, 2)
	assert.Equal(t, 4.0, single.Style.DotWidth)
}

func TestWiden(t *testing.T) {
	r := widen(5, 5, 1)
	assert.Equal(t, 4.0, r.Min)
	assert.Equal(t, 6.0, r.Max)
	b := newBounds()
	assert.Equal(t, 1.0, b.yRange().Max)
}
