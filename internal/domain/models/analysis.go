package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnMethod selects how period-over-period returns are computed.
type ReturnMethod string

const (
	ReturnSimple ReturnMethod = "simple"
	ReturnLog    ReturnMethod = "log"
)

// JoinPolicy selects how date indices are combined during alignment.
type JoinPolicy string

const (
	JoinInner JoinPolicy = "inner"
	JoinOuter JoinPolicy = "outer"
)

// CorrelationMatrix is an N×N Pearson matrix. Row and column order follow Labels.
type CorrelationMatrix struct {
	Labels []string
	Values [][]float64
}

// Size returns N.
func (m CorrelationMatrix) Size() int { return len(m.Labels) }

// At returns the coefficient between labels a and b.
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, l := range m.Labels {
		if l == a {
			i = k
		}
		if l == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// Rounded returns a copy with every finite value rounded half away from zero to places decimals.
func (m CorrelationMatrix) Rounded(places int32) CorrelationMatrix {
	out := CorrelationMatrix{
		Labels: append([]string(nil), m.Labels...),
		Values: make([][]float64, len(m.Values)),
	}
	for i, row := range m.Values {
		out.Values[i] = make([]float64, len(row))
		for j, v := range row {
			out.Values[i][j] = RoundTo(v, places)
		}
	}
	return out
}

// RoundTo rounds v to places decimals; missing values pass through.
func RoundTo(v float64, places int32) float64 {
	if IsMissing(v) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Weekdays lists the week Monday first, the order every WeekdayProfile uses.
var Weekdays = [7]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// WeekdayIndex maps a weekday onto its Monday-first position.
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// WeekdayProfile is the mean log-normalized volume per weekday for one asset.
// Means[i] is missing when Counts[i] is zero.
type WeekdayProfile struct {
	Symbol string
	Means  [7]float64
	Counts [7]int
}

// Samples returns the total number of samples behind the profile.
func (p WeekdayProfile) Samples() int {
	n := 0
	for _, c := range p.Counts {
		n += c
	}
	return n
}

// SkippedInput records an input excluded from a batch and why.
type SkippedInput struct {
	Source string
	Reason string
}

// SeasonalityReport is the multi-asset weekday aggregate.
type SeasonalityReport struct {
	Profiles []WeekdayProfile
	Skipped  []SkippedInput
}

// ParseResult is the outcome of reading one ingestion input:
// either a well-formed series or the reason the input was skipped.
type ParseResult struct {
	Source string
	Series *AssetSeries
	Reason string
}

// Ok wraps a well-formed series.
func Ok(source string, s AssetSeries) ParseResult {
	return ParseResult{Source: source, Series: &s}
}

// Skipped records an input that produced no series.
func Skipped(source, reason string) ParseResult {
	return ParseResult{Source: source, Reason: reason}
}

// IsOk reports whether the input produced a series.
func (r ParseResult) IsOk() bool { return r.Series != nil }

// ReloadReport summarizes one store reload.
type ReloadReport struct {
	Loaded   []string
	Skipped  []SkippedInput
	Duration time.Duration
}
