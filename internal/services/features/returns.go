package features

import (
	"fmt"
	"math"
	"strings"
	"time"

	"CoinScope/internal/domain/models"
)

// ParseReturnMethod validates a return method name. Unknown names are an
// invalid parameter; unlike the rolling window there is no fallback.
func ParseReturnMethod(s string) (models.ReturnMethod, error) {
	switch m := models.ReturnMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case models.ReturnSimple, models.ReturnLog:
		return m, nil
	default:
		return "", fmt.Errorf("return method %q: %w", s, models.ErrInvalidParameter)
	}
}

// Returns computes period-over-period returns of a price series.
// Missing prices are dropped first, so the result has one sample fewer than
// the compacted input and is indexed by the later date of each pair.
// A pair with a non-positive base price yields a missing value.
func Returns(prices models.Series, method models.ReturnMethod, percent bool) (models.Series, error) {
	if method != models.ReturnSimple && method != models.ReturnLog {
		return models.Series{}, fmt.Errorf("return method %q: %w", method, models.ErrInvalidParameter)
	}
	p := prices.DropMissing()
	out := models.Series{Name: prices.Name}
	if p.Len() < 2 {
		return out, nil
	}
	scale := 1.0
	if percent {
		scale = 100
	}
	out.Dates = append(out.Dates, p.Dates[1:]...)
	out.Values = make([]float64, 0, p.Len()-1)
	for i := 1; i < p.Len(); i++ {
		prev, cur := p.Values[i-1], p.Values[i]
		var r float64
		switch {
		case prev <= 0:
			r = math.NaN()
		case method == models.ReturnLog:
			if cur <= 0 {
				r = math.NaN()
			} else {
				r = math.Log(cur / prev)
			}
		default:
			r = cur/prev - 1
		}
		out.Values = append(out.Values, r*scale)
	}
	return out, nil
}

// NormalizedLogPrice rebases a price series to ln(p / p0), where p0 is the
// first positive price, so every compared asset starts at zero.
func NormalizedLogPrice(prices models.Series) (models.Series, error) {
	p := prices.DropMissing()
	base := math.NaN()
	for _, v := range p.Values {
		if v > 0 {
			base = v
			break
		}
	}
	if math.IsNaN(base) {
		return models.Series{}, fmt.Errorf("%s has no positive price: %w", prices.Name, models.ErrInsufficientData)
	}
	out := models.Series{
		Name:   prices.Name,
		Dates:  append([]time.Time(nil), p.Dates...),
		Values: make([]float64, p.Len()),
	}
	for i, v := range p.Values {
		if v <= 0 {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = math.Log(v / base)
	}
	return out, nil
}
