// stats.go
package volcano

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes one numeric series.
type Stats struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"` // sample, n-1
}

// Summary holds Stats for the two plotted axes.
type Summary struct {
	FoldChange Stats `json:"fold_change"`
	NegLog10P  Stats `json:"neg_log10_p"`
}

// Describe computes Stats for vals. An empty slice gives the zero Stats.
func Describe(vals []float64) Stats {
	if len(vals) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)

	s := Stats{
		Count: n,
		Sum:   floats.Sum(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   sorted[0],
		Max:   sorted[n-1],
	}
	if n%2 == 0 {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		s.Median = sorted[n/2]
	}
	if n > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// Summarize describes the fold changes and -log10(p) values of points.
func Summarize(points []Point) Summary {
	fc := make([]float64, len(points))
	nl := make([]float64, len(points))
	for i, p := range points {
		fc[i] = p.FoldChange
		nl[i] = p.NegLog10P
	}
	return Summary{FoldChange: Describe(fc), NegLog10P: Describe(nl)}
}
