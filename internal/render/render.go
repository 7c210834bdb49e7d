// Package render draws volcano plots as PNG images with go-chart.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/spatial/r2"

	"volcanoweb/internal/declutter"
	"volcanoweb/internal/volcano"
)

const (
	DefaultWidth  = 1000
	DefaultHeight = 600
	DefaultTitle  = "Volcano Plot"

	labelFontSize  = 8
	legendFontSize = 9
	dotWidth       = 3
)

// EmptyMessage is drawn when no row survived cleaning.
const EmptyMessage = "No rows with a valid p-value and fold change"

var palette = map[volcano.Category]drawing.Color{
	volcano.Downregulated:  {R: 0, G: 0, B: 255, A: 178},
	volcano.Upregulated:    {R: 255, G: 0, B: 0, A: 178},
	volcano.NotSignificant: {R: 128, G: 128, B: 128, A: 178},
}

var (
	sigGuideColor = drawing.Color{R: 0, G: 0, B: 255, A: 255}
	fcGuideColor  = drawing.Color{R: 255, G: 0, B: 0, A: 255}
	guideDash     = []float64{5, 4}
)

// Options configures a Renderer.
type Options struct {
	Width     int
	Height    int
	Title     string
	Declutter declutter.Declutterer
}

type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Declutter == nil {
		opts.Declutter = declutter.NewRings()
	}
	return &Renderer{opts: opts}
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    dotWidth,
		DotColor:    col,
	}
}

// Render writes res as a PNG.
func (rn *Renderer) Render(w io.Writer, res *volcano.Result) error {
	if len(res.Points) == 0 {
		return writePlaceholder(w, rn.opts.Width, rn.opts.Height, EmptyMessage)
	}
	ch := rn.Chart(res)
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Chart builds the go-chart definition for res. res must have at least one point.
func (rn *Renderer) Chart(res *volcano.Result) chart.Chart {
	th := res.Thresholds
	minX, maxX := -th.FoldChange, th.FoldChange
	minY, maxY := 0.0, th.Significance
	for _, p := range res.Points {
		minX, maxX = math.Min(minX, p.FoldChange), math.Max(maxX, p.FoldChange)
		minY, maxY = math.Min(minY, p.NegLog10P), math.Max(maxY, p.NegLog10P)
	}
	xTicks := axisTicks(minX, maxX, 8)
	yTicks := axisTicks(minY, maxY, 6)
	x0, x1 := tickRange(xTicks)
	y0, y1 := tickRange(yTicks)

	var series []chart.Series
	for _, cat := range volcano.Categories {
		var xs, ys []float64
		for _, p := range res.Points {
			if p.Category == cat {
				xs = append(xs, p.FoldChange)
				ys = append(ys, p.NegLog10P)
			}
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    cat.String(),
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(palette[cat]),
		})
	}

	ch := chart.Chart{
		Title:      rn.opts.Title,
		Width:      rn.opts.Width,
		Height:     rn.opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Log2 Fold Change",
			Range: &chart.ContinuousRange{Min: x0, Max: x1},
			Ticks: xTicks,
		},
		YAxis: chart.YAxis{
			Name:  "-Log10(p-value)",
			Range: &chart.ContinuousRange{Min: y0, Max: y1},
			Ticks: yTicks,
		},
		Series: series,
	}
	pl := plane{x0: x0, x1: x1, y0: y0, y1: y1}
	ch.Elements = []chart.Renderable{
		guides(pl, th),
		rn.labels(pl, res),
	}
	if entries := LegendEntries(res); len(entries) > 0 {
		ch.Elements = append(ch.Elements, legend(entries))
	}
	return ch
}

// plane maps data coordinates to pixels the same way go-chart places series.
type plane struct {
	x0, x1, y0, y1 float64
}

func (pl plane) project(canvas chart.Box) func(x, y float64) (int, int) {
	xr := chart.ContinuousRange{Min: pl.x0, Max: pl.x1, Domain: canvas.Width()}
	yr := chart.ContinuousRange{Min: pl.y0, Max: pl.y1, Domain: canvas.Height()}
	return func(x, y float64) (int, int) {
		return canvas.Left + xr.Translate(x), canvas.Bottom - yr.Translate(y)
	}
}

// guides draws the dashed threshold lines.
func guides(pl plane, th volcano.Thresholds) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, _ chart.Style) {
		at := pl.project(canvas)
		r.SetStrokeWidth(1)
		r.SetStrokeDashArray(guideDash)

		r.SetStrokeColor(sigGuideColor)
		x0, y := at(pl.x0, th.Significance)
		x1, _ := at(pl.x1, th.Significance)
		r.MoveTo(x0, y)
		r.LineTo(x1, y)
		r.Stroke()

		r.SetStrokeColor(fcGuideColor)
		for _, fc := range []float64{th.FoldChange, -th.FoldChange} {
			x, top := at(fc, pl.y1)
			_, bottom := at(fc, pl.y0)
			r.MoveTo(x, top)
			r.LineTo(x, bottom)
			r.Stroke()
		}
		r.SetStrokeDashArray(nil)
	}
}

// labels draws the identifiers of the ranked points, decluttered, with thin
// connectors for labels that moved away from their point.
func (rn *Renderer) labels(pl plane, res *volcano.Result) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		if len(res.Labels) == 0 {
			return
		}
		at := pl.project(canvas)
		r.SetFont(defaults.GetFont())
		r.SetFontSize(labelFontSize)
		r.SetFontColor(drawing.ColorBlack)

		points := make([]r2.Vec, len(res.Points))
		for i, p := range res.Points {
			x, y := at(p.FoldChange, p.NegLog10P)
			points[i] = r2.Vec{X: float64(x), Y: float64(y)}
		}
		cands := make([]declutter.Label, len(res.Labels))
		for i, idx := range res.Labels {
			text := res.Points[idx].ID
			tb := r.MeasureText(text)
			size := r2.Vec{X: float64(tb.Width()), Y: float64(tb.Height())}
			anchor := points[idx]
			// right-aligned, baseline on the point
			cands[i] = declutter.Label{Text: text, Anchor: anchor, Pos: r2.Sub(anchor, size), Size: size}
		}
		bounds := r2.Box{
			Min: r2.Vec{X: float64(canvas.Left), Y: float64(canvas.Top)},
			Max: r2.Vec{X: float64(canvas.Right), Y: float64(canvas.Bottom)},
		}
		placed := rn.opts.Declutter.Declutter(cands, points, bounds)

		r.SetStrokeColor(drawing.ColorBlack)
		r.SetStrokeWidth(0.5)
		for _, p := range placed {
			if !p.Connector {
				continue
			}
			end := nearestOnBox(p.Anchor, p.Box())
			r.MoveTo(int(p.Anchor.X), int(p.Anchor.Y))
			r.LineTo(int(math.Round(end.X)), int(math.Round(end.Y)))
			r.Stroke()
		}
		for _, p := range placed {
			r.Text(p.Text, int(math.Round(p.Pos.X)), int(math.Round(p.Pos.Y+p.Size.Y)))
		}
	}
}

func nearestOnBox(v r2.Vec, b r2.Box) r2.Vec {
	return r2.Vec{
		X: math.Max(b.Min.X, math.Min(v.X, b.Max.X)),
		Y: math.Max(b.Min.Y, math.Min(v.Y, b.Max.Y)),
	}
}

// LegendEntries lists the categories shown in the legend. It is empty when no
// point is significant.
func LegendEntries(res *volcano.Result) []volcano.Category {
	if !res.ShowLegend() {
		return nil
	}
	var out []volcano.Category
	for _, cat := range volcano.Categories {
		if res.Counts.Of(cat) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// legend draws a boxed key in the top-right corner of the plot area.
func legend(entries []volcano.Category) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		r.SetFont(defaults.GetFont())
		r.SetFontSize(legendFontSize)

		const pad, swatch, gap = 6, 10, 6
		title := "Category"
		width, lineH := r.MeasureText(title).Width(), r.MeasureText(title).Height()
		for _, cat := range entries {
			tb := r.MeasureText(cat.String())
			width = max(width, tb.Width()+swatch+gap)
			lineH = max(lineH, tb.Height())
		}
		rowH := lineH + 4
		boxW := width + 2*pad
		boxH := rowH*(len(entries)+1) + 2*pad
		left := canvas.Right - boxW - 8
		top := canvas.Top + 8

		r.SetFillColor(drawing.Color{R: 255, G: 255, B: 255, A: 220})
		r.SetStrokeColor(drawing.Color{R: 200, G: 200, B: 200, A: 255})
		r.SetStrokeWidth(1)
		r.MoveTo(left, top)
		r.LineTo(left+boxW, top)
		r.LineTo(left+boxW, top+boxH)
		r.LineTo(left, top+boxH)
		r.Close()
		r.FillStroke()

		r.SetFontColor(drawing.ColorBlack)
		y := top + pad + lineH
		r.Text(title, left+pad, y)
		for _, cat := range entries {
			y += rowH
			col := palette[cat]
			r.SetFillColor(col)
			r.SetStrokeColor(col)
			r.Circle(swatch/2, left+pad+swatch/2, y-lineH/2)
			r.FillStroke()
			r.SetFontColor(drawing.ColorBlack)
			r.Text(cat.String(), left+pad+swatch+gap, y)
		}
	}
}
