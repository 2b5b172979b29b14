package alignment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"CoinScope/internal/domain/models"
)

// ParseJoin validates a join policy name. Empty selects the inner join.
func ParseJoin(s string) (models.JoinPolicy, error) {
	switch j := models.JoinPolicy(strings.ToLower(strings.TrimSpace(s))); j {
	case "":
		return models.JoinInner, nil
	case models.JoinInner, models.JoinOuter:
		return j, nil
	default:
		return "", fmt.Errorf("join %q: %w", s, models.ErrInvalidParameter)
	}
}

// Align projects every series onto one shared, ascending date index.
//
// The inner join keeps the dates present in all series; the outer join keeps
// dates present in any series and fills gaps with the missing marker. No input,
// or an inner join with no common date, yields an empty set rather than an error.
func Align(join models.JoinPolicy, series ...models.Series) (models.AlignedSet, error) {
	switch join {
	case models.JoinInner, "":
		return Inner(series...), nil
	case models.JoinOuter:
		return Outer(series...), nil
	default:
		return models.AlignedSet{}, fmt.Errorf("join %q: %w", join, models.ErrInvalidParameter)
	}
}

// Inner aligns on the intersection of the date indices.
func Inner(series ...models.Series) models.AlignedSet {
	set := models.AlignedSet{Names: names(series), Columns: make([][]float64, len(series))}
	if len(series) == 0 {
		return set
	}
	idx := indexAll(series)
	var common []time.Time
	for _, d := range series[0].Dates {
		key := dayKey(d)
		inAll := true
		for _, m := range idx[1:] {
			if _, ok := m[key]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, d)
		}
	}
	sortDates(common)
	common = dedupe(common)
	return project(set, series, idx, common)
}

// Outer aligns on the union of the date indices.
func Outer(series ...models.Series) models.AlignedSet {
	set := models.AlignedSet{Names: names(series), Columns: make([][]float64, len(series))}
	if len(series) == 0 {
		return set
	}
	idx := indexAll(series)
	var all []time.Time
	for _, s := range series {
		all = append(all, s.Dates...)
	}
	sortDates(all)
	return project(set, series, idx, dedupe(all))
}

func project(set models.AlignedSet, series []models.Series, idx []map[int64]int, dates []time.Time) models.AlignedSet {
	set.Dates = dates
	for i, s := range series {
		col := make([]float64, len(dates))
		for k, d := range dates {
			if j, ok := idx[i][dayKey(d)]; ok {
				col[k] = s.Values[j]
			} else {
				col[k] = models.Missing()
			}
		}
		set.Columns[i] = col
	}
	return set
}

func indexAll(series []models.Series) []map[int64]int {
	idx := make([]map[int64]int, len(series))
	for i, s := range series {
		m := make(map[int64]int, len(s.Dates))
		for j, d := range s.Dates {
			m[dayKey(d)] = j
		}
		idx[i] = m
	}
	return idx
}

func names(series []models.Series) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Name
	}
	return out
}

func dayKey(t time.Time) int64 { return models.DateOf(t).Unix() }

func sortDates(ds []time.Time) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
}

func dedupe(sorted []time.Time) []time.Time {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, d := range sorted[1:] {
		if dayKey(d) != dayKey(out[len(out)-1]) {
			out = append(out, d)
		}
	}
	return out
}
