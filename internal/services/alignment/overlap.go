package alignment

import (
	"fmt"

	"CoinScope/internal/domain/models"
)

// Overlap is the number of dates two series share.
type Overlap struct {
	A      string
	B      string
	Common int
}

// Overlaps returns the pairwise common-date counts, in input order.
func Overlaps(series ...models.Series) []Overlap {
	idx := indexAll(series)
	var out []Overlap
	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			n := 0
			for k := range idx[i] {
				if _, ok := idx[j][k]; ok {
					n++
				}
			}
			out = append(out, Overlap{A: series[i].Name, B: series[j].Name, Common: n})
		}
	}
	return out
}

// ExplainEmpty returns nil when the series share at least one date. Otherwise
// it returns an insufficient-data error naming the first disjoint pair, or
// stating that every pair overlaps but no date is common to all of them.
func ExplainEmpty(series ...models.Series) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to align: %w", models.ErrInsufficientData)
	}
	if !Inner(series...).Empty() {
		return nil
	}
	for _, s := range series {
		if s.Len() == 0 {
			return fmt.Errorf("%s has no data in range: %w", s.Name, models.ErrInsufficientData)
		}
	}
	for _, o := range Overlaps(series...) {
		if o.Common == 0 {
			return fmt.Errorf("%s and %s share no dates: %w", o.A, o.B, models.ErrInsufficientData)
		}
	}
	return fmt.Errorf("no date common to all %d series: %w", len(series), models.ErrInsufficientData)
}

// Panel aligns series with the inner join and fails with an explanation when
// the common range is empty.
func Panel(series ...models.Series) (models.AlignedSet, error) {
	set := Inner(series...)
	if set.Empty() {
		return set, ExplainEmpty(series...)
	}
	return set, nil
}
