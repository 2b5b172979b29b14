package models

import (
	"fmt"
	"strings"
	"time"
)

// Series is a named numeric series over a date index.
// Dates and Values always have the same length.
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

func (s Series) Len() int { return len(s.Values) }

// Clone returns a deep copy.
func (s Series) Clone() Series {
	return Series{
		Name:   s.Name,
		Dates:  append([]time.Time(nil), s.Dates...),
		Values: append([]float64(nil), s.Values...),
	}
}

// DropMissing returns the series without missing samples.
func (s Series) DropMissing() Series {
	out := Series{Name: s.Name, Dates: make([]time.Time, 0, len(s.Dates)), Values: make([]float64, 0, len(s.Values))}
	for i, v := range s.Values {
		if IsMissing(v) {
			continue
		}
		out.Dates = append(out.Dates, s.Dates[i])
		out.Values = append(out.Values, v)
	}
	return out
}

// FillMethod selects how missing samples are filled before computing returns.
type FillMethod string

const (
	FillNone     FillMethod = ""
	FillForward  FillMethod = "ffill"
	FillBackward FillMethod = "bfill"
)

// ParseFillMethod accepts none, ffill (pad) and bfill (backfill), case-insensitively.
func ParseFillMethod(s string) (FillMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FillNone, nil
	case "ffill", "pad":
		return FillForward, nil
	case "bfill", "backfill":
		return FillBackward, nil
	default:
		return FillNone, fmt.Errorf("unknown fill method %q (want ffill or bfill): %w", s, ErrInvalidParameter)
	}
}

// Fill replaces missing samples with the nearest earlier (ffill) or later
// (bfill) present value. Gaps with no such neighbour stay missing.
func (s Series) Fill(m FillMethod) Series {
	out := s.Clone()
	switch m {
	case FillForward:
		last := Missing()
		for i, v := range out.Values {
			if IsMissing(v) {
				out.Values[i] = last
			} else {
				last = v
			}
		}
	case FillBackward:
		next := Missing()
		for i := len(out.Values) - 1; i >= 0; i-- {
			if IsMissing(out.Values[i]) {
				out.Values[i] = next
			} else {
				next = out.Values[i]
			}
		}
	}
	return out
}

// Slice keeps samples within [from, to]. A zero bound is open.
func (s Series) Slice(from, to time.Time) Series {
	if from.IsZero() && to.IsZero() {
		return s.Clone()
	}
	out := Series{Name: s.Name}
	for i, d := range s.Dates {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Values = append(out.Values, s.Values[i])
	}
	return out
}

// Range is an optional inclusive date window.
type Range struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range is unbounded.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// AlignedSet holds N series projected onto one shared date index.
// Columns[i] belongs to Names[i] and has len(Dates) values.
type AlignedSet struct {
	Dates   []time.Time
	Names   []string
	Columns [][]float64
}

func (a AlignedSet) Len() int { return len(a.Dates) }

// Empty reports whether the shared index has no dates.
func (a AlignedSet) Empty() bool { return len(a.Dates) == 0 }

// Series returns column i as a standalone Series.
func (a AlignedSet) Series(i int) Series {
	return Series{
		Name:   a.Names[i],
		Dates:  append([]time.Time(nil), a.Dates...),
		Values: append([]float64(nil), a.Columns[i]...),
	}
}

// All returns every column as a Series, in column order.
func (a AlignedSet) All() []Series {
	out := make([]Series, len(a.Names))
	for i := range a.Names {
		out[i] = a.Series(i)
	}
	return out
}

// Column looks up a column by name.
func (a AlignedSet) Column(name string) ([]float64, bool) {
	for i, n := range a.Names {
		if n == name {
			return a.Columns[i], true
		}
	}
	return nil, false
}
