// calculations.go
package volcano

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"volcanoweb/internal/dataset"
)

var (
	ErrColumnNotSelected = errors.New("column not selected")
	ErrUnknownColumn     = errors.New("unknown column")
)

// ValidateColumns checks that all three selections name columns of t.
func ValidateColumns(t *dataset.Table, cols Columns) error {
	for _, c := range []struct{ role, name string }{
		{"fold change", cols.FoldChange},
		{"p-value", cols.PValue},
		{"identifier", cols.ID},
	} {
		if c.name == "" {
			return fmt.Errorf("%s: %w", c.role, ErrColumnNotSelected)
		}
		if t.ColumnIndex(c.name) < 0 {
			return fmt.Errorf("%s %q: %w", c.role, c.name, ErrUnknownColumn)
		}
	}
	return nil
}

// Clean coerces the p-value column, drops rows missing either p-value or fold change
// or with p <= 0, and computes -log10(p). It returns the kept points and the drop count.
func Clean(t *dataset.Table, cols Columns) ([]Point, int, error) {
	if err := ValidateColumns(t, cols); err != nil {
		return nil, 0, err
	}
	fcIdx := t.ColumnIndex(cols.FoldChange)
	pIdx := t.ColumnIndex(cols.PValue)
	idIdx := t.ColumnIndex(cols.ID)

	points := make([]Point, 0, len(t.Rows))
	dropped := 0
	for i := range t.Rows {
		p, ok := dataset.ParseNumber(t.Cell(i, pIdx))
		if !ok {
			dropped++
			continue
		}
		fc, ok := dataset.ParseNumber(t.Cell(i, fcIdx))
		if !ok {
			dropped++
			continue
		}
		if p <= 0 {
			dropped++
			continue
		}
		nl := -math.Log10(p)
		if math.IsInf(nl, 0) || math.IsNaN(nl) {
			dropped++
			continue
		}
		points = append(points, Point{
			Row:        i,
			ID:         t.Cell(i, idIdx),
			FoldChange: fc,
			PValue:     p,
			NegLog10P:  nl,
		})
	}
	return points, dropped, nil
}

// Classify is the category of a single point. The upregulated test runs last,
// so it wins in the one case both hold (fc == 0 with a zero threshold).
func Classify(foldChange, negLog10P float64, th Thresholds) Category {
	cat := NotSignificant
	if foldChange <= -th.FoldChange && negLog10P > th.Significance {
		cat = Downregulated
	}
	if foldChange >= th.FoldChange && negLog10P > th.Significance {
		cat = Upregulated
	}
	return cat
}

// ClassifyAll sets Category on every point and returns the tallies.
func ClassifyAll(points []Point, th Thresholds) Counts {
	var c Counts
	for i := range points {
		points[i].Category = Classify(points[i].FoldChange, points[i].NegLog10P, th)
		switch points[i].Category {
		case Downregulated:
			c.Downregulated++
		case Upregulated:
			c.Upregulated++
		default:
			c.NotSignificant++
		}
	}
	return c
}

// TopSignificant returns the indices of the n points with the largest -log10(p).
// Ties keep source order.
func TopSignificant(points []Point, n int) []int {
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return points[idx[a]].NegLog10P > points[idx[b]].NegLog10P
	})
	if n < len(idx) {
		idx = idx[:n]
	}
	return idx
}

// FoldChangeLimit is the upper end of the fold-change slider: max(|min fc|, |max fc|).
func FoldChangeLimit(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	fc := make([]float64, len(points))
	for i, p := range points {
		fc[i] = p.FoldChange
	}
	return math.Max(math.Abs(floats.Min(fc)), math.Abs(floats.Max(fc)))
}

// Run executes the whole pipeline for one request. Thresholds are clamped to
// their slider ranges before classification.
func Run(t *dataset.Table, cols Columns, th Thresholds, labelCount int) (*Result, error) {
	points, dropped, err := Clean(t, cols)
	if err != nil {
		return nil, err
	}
	if labelCount <= 0 {
		labelCount = DefaultLabelCount
	}
	limit := FoldChangeLimit(points)
	th = th.Clamp(limit)
	counts := ClassifyAll(points, th)
	return &Result{
		Columns:         cols,
		Thresholds:      th,
		FoldChangeLimit: limit,
		Points:          points,
		Labels:          TopSignificant(points, labelCount),
		Dropped:         dropped,
		Counts:          counts,
		Summary:         Summarize(points),
	}, nil
}
