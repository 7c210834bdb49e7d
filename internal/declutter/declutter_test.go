package declutter

import (
	"fmt"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

var bounds = r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 600, Y: 400}}

func stacked(n int, at r2.Vec) []Label {
	labels := make([]Label, n)
	for i := range labels {
		labels[i] = Label{Text: fmt.Sprintf("L%d", i), Anchor: at, Pos: at, Size: r2.Vec{X: 40, Y: 10}}
	}
	return labels
}

func assertNoOverlap(t *testing.T, out []Placement) {
	t.Helper()
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if Overlaps(out[i].Box(), out[j].Box()) {
				t.Fatalf("labels %d and %d overlap: %+v %+v", i, j, out[i].Box(), out[j].Box())
			}
		}
	}
}

func assertInside(t *testing.T, out []Placement, b r2.Box) {
	t.Helper()
	for i, p := range out {
		box := p.Box()
		if box.Min.X < b.Min.X || box.Min.Y < b.Min.Y || box.Max.X > b.Max.X || box.Max.Y > b.Max.Y {
			t.Fatalf("label %d outside bounds: %+v", i, box)
		}
	}
}

func TestRingsSeparatesStackedLabels(t *testing.T) {
	labels := stacked(5, r2.Vec{X: 100, Y: 100})
	out := NewRings().Declutter(labels, []r2.Vec{{X: 140, Y: 110}}, bounds)
	if len(out) != len(labels) {
		t.Fatalf("got %d placements", len(out))
	}
	assertNoOverlap(t, out)
	assertInside(t, out, bounds)
	for i, p := range out {
		if p.Text != labels[i].Text || p.Anchor != labels[i].Anchor {
			t.Fatalf("placement %d lost its label identity", i)
		}
	}
}

func TestRingsCrowdedCorner(t *testing.T) {
	small := r2.Box{Min: r2.Vec{}, Max: r2.Vec{X: 300, Y: 200}}
	out := NewRings().Declutter(stacked(6, r2.Vec{}), nil, small)
	assertNoOverlap(t, out)
	assertInside(t, out, small)
}

func TestRingsManyLabelsAmongPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var labels []Label
	for i := 0; i < 30; i++ {
		at := r2.Vec{X: 200 + rng.Float64()*20 - 10, Y: 150 + rng.Float64()*20 - 10}
		labels = append(labels, Label{Text: fmt.Sprint(i), Anchor: at, Pos: at, Size: r2.Vec{X: float64(20 + rng.Intn(30)), Y: 10}})
	}
	var points []r2.Vec
	for i := 0; i < 300; i++ {
		points = append(points, r2.Vec{X: rng.Float64() * 600, Y: rng.Float64() * 400})
	}
	out := NewRings().Declutter(labels, points, bounds)
	assertNoOverlap(t, out)
	assertInside(t, out, bounds)
}

func TestRingsKeepsFreeLabels(t *testing.T) {
	labels := []Label{
		{Text: "a", Pos: r2.Vec{X: 10, Y: 10}, Size: r2.Vec{X: 30, Y: 10}},
		{Text: "b", Pos: r2.Vec{X: 300, Y: 200}, Size: r2.Vec{X: 30, Y: 10}},
	}
	out := NewRings().Declutter(labels, nil, bounds)
	for i, p := range out {
		if p.Pos != labels[i].Pos || p.Connector {
			t.Fatalf("free label %d moved: %+v", i, p)
		}
	}
}

func TestRingsConnectorOnlyWhenMovedFar(t *testing.T) {
	rg := NewRings()
	out := rg.Declutter(stacked(3, r2.Vec{X: 200, Y: 200}), nil, bounds)
	if out[0].Connector {
		t.Fatal("first label stayed put but got a connector")
	}
	moved := 0
	for _, p := range out[1:] {
		d := r2.Norm(r2.Sub(p.Pos, p.Anchor))
		if p.Connector != (d >= rg.ConnectorMin) {
			t.Fatalf("connector=%v for displacement %v", p.Connector, d)
		}
		if d > 0 {
			moved++
		}
	}
	if moved != 2 {
		t.Fatalf("moved = %d, want 2", moved)
	}
}

func TestNoneIsIdentity(t *testing.T) {
	labels := stacked(3, r2.Vec{X: 50, Y: 50})
	out := None{}.Declutter(labels, nil, bounds)
	for i, p := range out {
		if p.Pos != labels[i].Pos || p.Connector {
			t.Fatalf("None moved label %d", i)
		}
	}
}

func TestOverlapsEdges(t *testing.T) {
	a := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 10, Y: 10}}
	b := r2.Box{Min: r2.Vec{X: 10, Y: 0}, Max: r2.Vec{X: 20, Y: 10}}
	c := r2.Box{Min: r2.Vec{X: 5, Y: 5}, Max: r2.Vec{X: 15, Y: 15}}
	if Overlaps(a, b) {
		t.Error("touching boxes reported as overlapping")
	}
	if !Overlaps(a, c) {
		t.Error("intersecting boxes not reported")
	}
}
