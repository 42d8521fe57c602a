package performance

import (
	"math"
	"time"
)

// Sharpe is the mean R divided by its population standard deviation, scaled
// by the square root of the sample count. ok is false with fewer than two
// samples or zero variance.
func Sharpe(rs []float64) (float64, bool) {
	if len(rs) < 2 {
		return 0, false
	}

	m := mean(rs)
	sd := stdDev(rs, m)
	if sd == 0 {
		return 0, false
	}
	return m / sd * math.Sqrt(float64(len(rs))), true
}

// Sortino is like Sharpe but uses the standard deviation of losing R values
// only. ok is false with fewer than two samples, no losses, or zero downside
// deviation.
func Sortino(rs []float64) (float64, bool) {
	if len(rs) < 2 {
		return 0, false
	}

	var losses []float64
	for _, r := range rs {
		if r < 0 {
			losses = append(losses, r)
		}
	}
	if len(losses) == 0 {
		return 0, false
	}

	sd := stdDev(losses, mean(losses))
	if sd == 0 {
		return 0, false
	}
	return mean(rs) / sd * math.Sqrt(float64(len(rs))), true
}

// RecoveryFactor is net gain over maximum drawdown. Returns 0 when there
// was no drawdown.
func RecoveryFactor(net, maxDrawdown float64) float64 {
	dd := math.Abs(maxDrawdown)
	if dd == 0 {
		return 0
	}
	return net / dd
}

// AnnualizedReturnPct scales the return on startingBalance to a 365 day
// year. Spans shorter than a day count as one day.
func AnnualizedReturnPct(netProfit, startingBalance float64, span time.Duration) float64 {
	if startingBalance <= 0 {
		return 0
	}
	days := span.Hours() / 24
	if days < 1 {
		days = 1
	}
	return netProfit / startingBalance * 100 * 365 / days
}

// Calmar divides the annualized return percentage by the maximum drawdown
// percentage. Returns 0 when the drawdown is zero.
func Calmar(annualizedReturnPct, maxDrawdownPct float64) float64 {
	if maxDrawdownPct == 0 {
		return 0
	}
	return annualizedReturnPct / math.Abs(maxDrawdownPct)
}

// ConsistencyRatio compares the best day to the worst day in magnitude.
// Lower is steadier. A zero worst day yields 1.
func ConsistencyRatio(bestDay, worstDay float64) float64 {
	if worstDay == 0 {
		return 1
	}
	return math.Abs(bestDay) / math.Abs(worstDay)
}

// stdDev is the population standard deviation of xs around m.
func stdDev(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var variance float64
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	return math.Sqrt(variance / float64(len(xs)))
}
