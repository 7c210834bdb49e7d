// Package declutter moves text labels so they do not cover each other or the
// points of a scatter plot. Coordinates are pixels with y growing downward.
package declutter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Label is a text box attached to a data point.
type Label struct {
	Text   string
	Anchor r2.Vec // the point the label describes
	Pos    r2.Vec // top-left corner of the box
	Size   r2.Vec // width, height
}

// Box returns the label's rectangle at its current position.
func (l Label) Box() r2.Box {
	return r2.Box{Min: l.Pos, Max: r2.Add(l.Pos, l.Size)}
}

// Placement is a label after layout.
type Placement struct {
	Label
	// Connector is set when the label moved far enough from its start that a
	// line back to the anchor is needed.
	Connector bool
}

// Declutterer lays out labels. points are all plotted points, bounds the area
// labels must stay in. Output order matches input order.
type Declutterer interface {
	Declutter(labels []Label, points []r2.Vec, bounds r2.Box) []Placement
}

// None leaves every label where it is.
type None struct{}

func (None) Declutter(labels []Label, _ []r2.Vec, _ r2.Box) []Placement {
	out := make([]Placement, len(labels))
	for i, l := range labels {
		out[i] = Placement{Label: l}
	}
	return out
}

// Rings places labels one at a time, in input order, at the nearest position on
// growing rings around the start position that overlaps no placed label and as
// few points as possible.
type Rings struct {
	Step         float64 // ring spacing in pixels
	MaxRings     int
	Padding      float64 // kept free around each label
	PointRadius  float64
	ConnectorMin float64 // displacement from start that earns a connector
}

// NewRings returns a Rings with defaults tuned for 8pt labels.
func NewRings() *Rings {
	return &Rings{Step: 6, MaxRings: 25, Padding: 2, PointRadius: 3, ConnectorMin: 8}
}

const (
	labelPenalty = 1000
	pointPenalty = 10
)

func (rg *Rings) Declutter(labels []Label, points []r2.Vec, bounds r2.Box) []Placement {
	grid := newPointGrid(points, math.Max(4*rg.Step, 16))
	placed := make([]r2.Box, 0, len(labels))
	out := make([]Placement, len(labels))

	for i, l := range labels {
		best := l.Pos
		bestScore, bestOverlap := math.MaxFloat64, math.MaxFloat64
		for k := 0; k <= rg.MaxRings && bestOverlap > 0; k++ {
			n := 1
			if k > 0 {
				n = 8 * k
			}
			for a := 0; a < n; a++ {
				theta := 2 * math.Pi * float64(a) / float64(n)
				off := r2.Scale(float64(k)*rg.Step, r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)})
				pos := clampInto(r2.Add(l.Pos, off), l.Size, bounds)
				overlap := rg.overlap(pos, l.Size, placed, grid)
				if score := overlap + float64(k); score < bestScore {
					best, bestScore, bestOverlap = pos, score, overlap
				}
			}
		}
		placedLabel := l
		placedLabel.Pos = best
		placed = append(placed, pad(placedLabel.Box(), rg.Padding))
		out[i] = Placement{
			Label:     placedLabel,
			Connector: r2.Norm(r2.Sub(best, l.Pos)) >= rg.ConnectorMin,
		}
	}
	return out
}

func (rg *Rings) overlap(pos, size r2.Vec, placed []r2.Box, grid *pointGrid) float64 {
	box := pad(r2.Box{Min: pos, Max: r2.Add(pos, size)}, rg.Padding)
	s := 0.0
	for _, b := range placed {
		if Overlaps(box, b) {
			s += labelPenalty
		}
	}
	grid.each(pad(box, rg.PointRadius), func(p r2.Vec) {
		if Overlaps(box, pad(r2.Box{Min: p, Max: p}, rg.PointRadius)) {
			s += pointPenalty
		}
	})
	return s
}

// Overlaps reports whether two boxes share any area. Touching edges do not count.
func Overlaps(a, b r2.Box) bool {
	ox := math.Min(a.Max.X, b.Max.X) - math.Max(a.Min.X, b.Min.X)
	oy := math.Min(a.Max.Y, b.Max.Y) - math.Max(a.Min.Y, b.Min.Y)
	return ox > 0 && oy > 0
}

func pad(b r2.Box, d float64) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: r2.Vec{X: b.Max.X + d, Y: b.Max.Y + d},
	}
}

// clampInto keeps a box of the given size inside bounds. Boxes larger than
// bounds are pinned to the top-left.
func clampInto(pos, size r2.Vec, bounds r2.Box) r2.Vec {
	pos.X = math.Max(bounds.Min.X, math.Min(pos.X, bounds.Max.X-size.X))
	pos.Y = math.Max(bounds.Min.Y, math.Min(pos.Y, bounds.Max.Y-size.Y))
	return pos
}

// pointGrid buckets points so overlap checks only visit nearby ones.
type pointGrid struct {
	cell  float64
	cells map[[2]int][]r2.Vec
}

func newPointGrid(points []r2.Vec, cell float64) *pointGrid {
	g := &pointGrid{cell: cell, cells: make(map[[2]int][]r2.Vec)}
	for _, p := range points {
		k := g.key(p)
		g.cells[k] = append(g.cells[k], p)
	}
	return g
}

func (g *pointGrid) key(p r2.Vec) [2]int {
	return [2]int{int(math.Floor(p.X / g.cell)), int(math.Floor(p.Y / g.cell))}
}

func (g *pointGrid) each(area r2.Box, fn func(r2.Vec)) {
	lo, hi := g.key(area.Min), g.key(area.Max)
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for _, p := range g.cells[[2]int{x, y}] {
				fn(p)
			}
		}
	}
}
