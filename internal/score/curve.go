// Package score maps trade statistics onto a composite 0-100 trader score.
package score

import "math"

// Band is one piece of a piecewise-linear curve. From Threshold upward the
// curve yields Base + Slope*(v - Threshold) until the next band starts.
type Band struct {
	Threshold float64
	Base      float64
	Slope     float64
}

// Curve awards between 0 and Max points. Bands must be ordered by ascending
// Threshold; values below the first band score 0.
type Curve struct {
	Max   float64
	Bands []Band
}

// Eval returns the points for v, clamped to [0, Max].
func (c Curve) Eval(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	idx := -1
	for i, b := range c.Bands {
		if v < b.Threshold {
			break
		}
		idx = i
	}
	if idx < 0 {
		return 0
	}

	b := c.Bands[idx]
	pts := b.Base
	if b.Slope != 0 {
		pts += b.Slope * (v - b.Threshold)
	}

	switch {
	case pts < 0:
		return 0
	case pts > c.Max:
		return c.Max
	}
	return pts
}

// Sub-score curves.
var (
	// WinRateCurve peaks on a 50-70% win rate and falls off on both sides.
	WinRateCurve = Curve{Max: 20, Bands: []Band{
		{20, 0, 0.5},
		{30, 5, 0.5},
		{40, 10, 1},
		{45, 15, 1},
		{50, 20, 0},
		{70, 20, -1},
		{75, 15, -1},
		{80, 10, -1},
		{85, 5, -1},
		{90, 0, 0},
	}}

	ProfitFactorCurve = Curve{Max: 20, Bands: []Band{
		{1.0, 0, 30},
		{1.2, 6, 20},
		{1.5, 12, 8},
		{2.0, 16, 8},
		{2.5, 20, 0},
	}}

	WinLossRatioCurve = Curve{Max: 15, Bands: []Band{
		{0.5, 0, 14},
		{1.0, 7, 8},
		{1.5, 11, 8},
		{2.0, 15, 0},
	}}

	// ConsistencyCurve scores the best-day to worst-day ratio; lower is better.
	ConsistencyCurve = Curve{Max: 15, Bands: []Band{
		{0, 15, 0},
		{2, 15, -3},
		{3, 12, -2.5},
		{5, 7, -1.4},
		{10, 0, 0},
	}}

	// DrawdownCurve scores max drawdown as a percentage of net profit.
	DrawdownCurve = Curve{Max: 15, Bands: []Band{
		{0, 15, 0},
		{10, 15, -0.5},
		{20, 10, -0.5},
		{30, 5, -0.25},
		{50, 0, 0},
	}}

	RecoveryCurve = Curve{Max: 15, Bands: []Band{
		{1, 0, 6},
		{2, 6, 4},
		{3, 10, 2.5},
		{5, 15, 0},
	}}
)
