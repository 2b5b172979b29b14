package features

import (
	"math"
	"time"

	"CoinScope/internal/domain/models"
	"CoinScope/pkg/util"
)

const (
	// TradingDaysPerYear annualizes daily volatility.
	TradingDaysPerYear = 252
	// DefaultWindow is the rolling window used when none (or a bad one) is given.
	DefaultWindow = 30
)

// NormalizeWindow returns w when it can hold a sample std, otherwise DefaultWindow.
func NormalizeWindow(w int) int {
	if w < 2 {
		return DefaultWindow
	}
	return w
}

// ParseWindow parses a user-supplied window leniently: anything malformed
// falls back to DefaultWindow.
func ParseWindow(s string) int {
	return NormalizeWindow(util.ParseIntDefault(s, DefaultWindow))
}

// RollingStd computes the trailing N-1 standard deviation over exactly window
// samples. The output has len(xs)-window+1 values; a window containing a
// missing sample yields a missing value.
func RollingStd(xs []float64, window int) []float64 {
	if window < 2 || len(xs) < window {
		return []float64{}
	}
	out := make([]float64, 0, len(xs)-window+1)
	for end := window; end <= len(xs); end++ {
		w := xs[end-window : end]
		if hasNaN(w) {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, sampleStd(w))
	}
	return out
}

// RollingVolatility turns a decimal return series into annualized rolling
// volatility in percent: std over window × √252 × 100. The first window-1
// dates are dropped, so the result is indexed by each window's last date.
func RollingVolatility(returns models.Series, window int) models.Series {
	window = NormalizeWindow(window)
	std := RollingStd(returns.Values, window)
	out := models.Series{Name: returns.Name, Values: std}
	if len(std) == 0 {
		return out
	}
	out.Dates = append([]time.Time(nil), returns.Dates[window-1:]...)
	k := math.Sqrt(TradingDaysPerYear) * 100
	for i, v := range out.Values {
		out.Values[i] = v * k
	}
	return out
}
