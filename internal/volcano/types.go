// types.go
package volcano

import "fmt"

// Category is the significance class of one point.
type Category int

const (
	NotSignificant Category = iota
	Downregulated
	Upregulated
)

// Categories in legend order.
var Categories = []Category{Downregulated, Upregulated, NotSignificant}

func (c Category) String() string {
	switch c {
	case Downregulated:
		return "Downregulated"
	case Upregulated:
		return "Upregulated"
	case NotSignificant:
		return "Not significant"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Columns names the three user-selected columns. They may coincide.
type Columns struct {
	FoldChange string `json:"fold_change"`
	PValue     string `json:"p_value"`
	ID         string `json:"identifier"`
}

const (
	DefaultFoldChangeThreshold   = 2.0
	DefaultSignificanceThreshold = 1.3 // p ≈ 0.05
	MaxSignificanceThreshold     = 10.0
	ThresholdStep                = 0.1
	DefaultLabelCount            = 30
)

// Thresholds are the two slider values. Significance is on the -log10(p) scale.
type Thresholds struct {
	FoldChange   float64 `json:"fold_change"`
	Significance float64 `json:"significance"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{FoldChange: DefaultFoldChangeThreshold, Significance: DefaultSignificanceThreshold}
}

// Clamp bounds the fold-change threshold to [0, fcLimit] and significance to [0, 10].
func (t Thresholds) Clamp(fcLimit float64) Thresholds {
	return Thresholds{
		FoldChange:   clamp(t.FoldChange, 0, fcLimit),
		Significance: clamp(t.Significance, 0, MaxSignificanceThreshold),
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Point is one retained row.
type Point struct {
	Row        int      `json:"row"`
	ID         string   `json:"id"`
	FoldChange float64  `json:"fold_change"`
	PValue     float64  `json:"p_value"`
	NegLog10P  float64  `json:"neg_log10_p"`
	Category   Category `json:"category"`
}

// Counts tallies points per category.
type Counts struct {
	Downregulated  int `json:"downregulated"`
	Upregulated    int `json:"upregulated"`
	NotSignificant int `json:"not_significant"`
}

func (c Counts) Of(cat Category) int {
	switch cat {
	case Downregulated:
		return c.Downregulated
	case Upregulated:
		return c.Upregulated
	default:
		return c.NotSignificant
	}
}

// Result is one full pipeline run.
type Result struct {
	Columns         Columns    `json:"columns"`
	Thresholds      Thresholds `json:"thresholds"`
	FoldChangeLimit float64    `json:"fold_change_limit"`
	Points          []Point    `json:"points"`
	Labels          []int      `json:"labels"` // indices into Points
	Dropped         int        `json:"dropped"`
	Counts          Counts     `json:"counts"`
	Summary         Summary    `json:"summary"`
}

// ShowLegend reports whether any point is significant.
func (r *Result) ShowLegend() bool {
	return r.Counts.Downregulated > 0 || r.Counts.Upregulated > 0
}
