package models

import (
	"math"
	"strings"
	"time"
)

// Candle represents one daily OHLCV record. Missing numeric fields hold NaN.
type Candle struct {
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Marketcap float64
}

// FullyMissing reports whether every numeric field of the candle is missing.
func (c Candle) FullyMissing() bool {
	return IsMissing(c.Open) && IsMissing(c.High) && IsMissing(c.Low) &&
		IsMissing(c.Close) && IsMissing(c.Volume) && IsMissing(c.Marketcap)
}

// Field names a numeric column of a Candle.
type Field string

const (
	FieldOpen      Field = "open"
	FieldHigh      Field = "high"
	FieldLow       Field = "low"
	FieldClose     Field = "close"
	FieldVolume    Field = "volume"
	FieldMarketcap Field = "marketcap"
)

// Value returns the candle value for field f.
func (c Candle) Value(f Field) float64 {
	switch f {
	case FieldOpen:
		return c.Open
	case FieldHigh:
		return c.High
	case FieldLow:
		return c.Low
	case FieldClose:
		return c.Close
	case FieldVolume:
		return c.Volume
	case FieldMarketcap:
		return c.Marketcap
	default:
		return Missing()
	}
}

// AssetSeries is the daily history of one asset, ascending by date with no duplicates.
type AssetSeries struct {
	Symbol  string
	Name    string
	Source  string
	Candles []Candle
}

func (a AssetSeries) Len() int { return len(a.Candles) }

// Column projects one numeric field onto a Series named after the asset.
func (a AssetSeries) Column(f Field) Series {
	s := Series{
		Name:   a.Symbol,
		Dates:  make([]time.Time, len(a.Candles)),
		Values: make([]float64, len(a.Candles)),
	}
	for i, c := range a.Candles {
		s.Dates[i] = c.Date
		s.Values[i] = c.Value(f)
	}
	return s
}

// Clone returns a deep copy.
func (a AssetSeries) Clone() AssetSeries {
	out := a
	out.Candles = append([]Candle(nil), a.Candles...)
	return out
}

// First and Last return the date bounds; zero times when empty.
func (a AssetSeries) First() time.Time {
	if len(a.Candles) == 0 {
		return time.Time{}
	}
	return a.Candles[0].Date
}

func (a AssetSeries) Last() time.Time {
	if len(a.Candles) == 0 {
		return time.Time{}
	}
	return a.Candles[len(a.Candles)-1].Date
}

// Missing returns the missing-value marker.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// CanonicalSymbol normalizes user input to the store's symbol form.
func CanonicalSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// CanonicalSymbols canonicalizes and de-duplicates a list, keeping order.
func CanonicalSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		c := CanonicalSymbol(s)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
