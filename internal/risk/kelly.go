package risk

import (
	"math"

	"github.com/newthinker/tradejournal/internal/core"
)

// DefaultKellyMinSample is the number of closed trades needed before a
// Kelly estimate is reported.
const DefaultKellyMinSample = 10

// KellyResult holds Kelly sizing as fractions of the account.
type KellyResult struct {
	Sufficient     bool    `json:"sufficient"`
	SampleSize     int     `json:"sample_size"`
	WinProbability float64 `json:"win_probability"`
	PayoffRatio    float64 `json:"payoff_ratio"` // avg win / avg loss, 0 without losses
	Kelly          float64 `json:"kelly"`
	HalfKelly      float64 `json:"half_kelly"`
}

// Kelly estimates the Kelly fraction from closed trades. With fewer than
// minSample closed trades it returns a zero result with Sufficient unset.
// minSample <= 0 uses DefaultKellyMinSample.
func Kelly(trades []core.Trade, minSample int) KellyResult {
	if minSample <= 0 {
		minSample = DefaultKellyMinSample
	}

	var n, wins, losses int
	var sumWin, sumLoss float64
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		n++
		switch {
		case t.PnL > 0:
			wins++
			sumWin += t.PnL
		case t.PnL < 0:
			losses++
			sumLoss += -t.PnL
		}
	}

	res := KellyResult{SampleSize: n}
	if n < minSample {
		return res
	}
	res.Sufficient = true
	res.WinProbability = float64(wins) / float64(n)

	switch {
	case wins == 0:
		res.Kelly = 0
	case losses == 0:
		res.Kelly = res.WinProbability
	default:
		b := (sumWin / float64(wins)) / (sumLoss / float64(losses))
		res.PayoffRatio = b
		res.Kelly = math.Max(0, res.WinProbability-(1-res.WinProbability)/b)
	}
	res.HalfKelly = res.Kelly * 0.5

	return res
}

// SuggestedRiskPct is the half-Kelly fraction in percent, capped by the
// per-trade risk limit when one is set.
func (k KellyResult) SuggestedRiskPct(s Settings) float64 {
	pct := k.HalfKelly * 100
	if s.MaxRiskPerTradePct > 0 && pct > s.MaxRiskPerTradePct {
		return s.MaxRiskPerTradePct
	}
	return pct
}
