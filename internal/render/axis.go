package render

import (
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
)

// axisTicks returns about n evenly spaced ticks that cover [min, max] with a small
// margin. go-chart sets the axis range to the first and last tick, so the
// returned ticks also define the plotted range.
func axisTicks(min, max float64, n int) []chart.Tick {
	if n < 2 {
		n = 2
	}
	if math.IsNaN(min) || math.IsNaN(max) {
		min, max = -1, 1
	}
	// keep span, padding and tick steps finite
	min = math.Max(min, -axisLimit)
	max = math.Min(max, axisLimit)
	if max <= min {
		min, max = min-1, max+1
	}
	span := max - min
	pad := span * 0.05
	min, max = min-pad, max+pad
	span = max - min

	// Preferred tick steps: 1, 2, 2.5, 5, 10 scaled by power of 10
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	step := mag
	bestScore := math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		s := c * mag
		count := math.Ceil(span / s)
		if score := math.Abs(count - float64(n)); score < bestScore {
			bestScore = score
			step = s
		}
	}
	start := math.Floor(min/step) * step
	end := math.Ceil(max/step) * step
	if !isFinite(step) || step <= 0 || !isFinite(start) || !isFinite(end) {
		return []chart.Tick{{Value: min, Label: formatTick(min, span)}, {Value: max, Label: formatTick(max, span)}}
	}
	var ticks []chart.Tick
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v > end+step/2 || len(ticks) > maxTicks(n) {
			break
		}
		// avoid printing -0.00 from accumulated error
		if math.Abs(v) < step*1e-9 {
			v = 0
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v, step)})
	}
	return ticks
}

// axisLimit bounds plotted values so that axis arithmetic cannot overflow.
const axisLimit = math.MaxFloat64 / 8

func maxTicks(n int) int { return 4*n + 4 }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// formatTick prints v with as many decimals as the step needs.
func formatTick(v, step float64) string {
	if v == 0 {
		return "0"
	}
	if math.Abs(v) >= 1e6 {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	dec := 0
	for s := step; math.Abs(s-math.Round(s)) > 1e-9 && dec < 8; s *= 10 {
		dec++
	}
	return strconv.FormatFloat(v, 'f', dec, 64)
}

// tickRange is the range go-chart derives from ticks.
func tickRange(ticks []chart.Tick) (float64, float64) {
	return ticks[0].Value, ticks[len(ticks)-1].Value
}
