// Package render draws an assembled chart as a PNG, one go-chart canvas per
// panel composed into a single row or column.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/hdiview/internal/assembly"
)

// Options sizes each panel.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions matches the dashboard's panel size.
func DefaultOptions() Options { return Options{Width: 640, Height: 420} }

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

// PNG renders every panel and writes the composed image. A chart without
// panels renders as a single blank canvas.
func PNG(w io.Writer, c assembly.Chart, opt Options) error {
	img, err := Image(c, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Image renders the chart into memory.
func Image(c assembly.Chart, opt Options) (image.Image, error) {
	opt = opt.normalized()
	n := len(c.Panels)
	if n == 0 {
		return blank(opt.Width, opt.Height), nil
	}
	cols, rows := n, 1
	if c.Vertical {
		cols, rows = 1, n
	}
	out := image.NewRGBA(image.Rect(0, 0, cols*opt.Width, rows*opt.Height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for i, p := range c.Panels {
		img, err := panelImage(p, opt)
		if err != nil {
			return nil, fmt.Errorf("render panel %q: %w", p.Metric, err)
		}
		at := image.Pt(i*opt.Width, 0)
		if c.Vertical {
			at = image.Pt(0, i*opt.Height)
		}
		draw.Draw(out, image.Rectangle{Min: at, Max: at.Add(img.Bounds().Size())}, img, img.Bounds().Min, draw.Over)
	}
	return out, nil
}

func panelImage(p assembly.Panel, opt Options) (image.Image, error) {
	ch := Panel(p, opt)
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode panel png: %w", err)
	}
	return img, nil
}

// Panel builds the go-chart definition for one panel. Comparison overlays
// are drawn dashed; every series keeps the color of its position so
// overlays and primaries stay distinguishable.
func Panel(p assembly.Panel, opt Options) chart.Chart {
	opt = opt.normalized()
	records := p.Series()
	series := make([]chart.Series, 0, len(records))
	b := newBounds()
	for i, r := range records {
		xs := make([]float64, len(r.Points))
		ys := make([]float64, len(r.Points))
		for j, pt := range r.Points {
			xs[j], ys[j] = float64(pt.X), pt.Y
			b.add(xs[j], ys[j])
		}
		// a single observation is drawn as a dot
		if len(xs) == 1 {
			xs = append(xs, xs[0])
			ys = append(ys, ys[0])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    r.Legend(),
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(chart.GetDefaultColor(i), r.Overlay, len(r.Points) == 1),
		})
	}
	ch := chart.Chart{
		Title:      p.Metric,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           p.XLabel,
			Range:          b.xRange(),
			ValueFormatter: yearFormatter,
		},
		YAxis:  chart.YAxis{Name: p.YLabel, Range: b.yRange()},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.LegendThin(&ch)}
	return ch
}

func seriesStyle(col drawing.Color, overlay, dot bool) chart.Style {
	st := chart.Style{StrokeColor: col, StrokeWidth: 2}
	if overlay {
		st.StrokeDashArray = []float64{6, 4}
	}
	if dot {
		st.StrokeWidth = 0
		st.DotWidth = 4
		st.DotColor = col
	}
	return st
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%d", int(math.Round(f)))
	}
	return ""
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func newBounds() *bounds {
	return &bounds{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
}

func (b *bounds) add(x, y float64) {
	b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
	b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
}

// go-chart rejects zero-width ranges, so degenerate axes are widened.
func widen(lo, hi, pad float64) *chart.ContinuousRange {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if hi-lo == 0 {
		return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func (b *bounds) xRange() *chart.ContinuousRange { return widen(b.minX, b.maxX, 1) }

func (b *bounds) yRange() *chart.ContinuousRange {
	pad := math.Abs(b.maxY) * 0.1
	if pad == 0 {
		pad = 1
	}
	return widen(b.minY, b.maxY, pad)
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}
