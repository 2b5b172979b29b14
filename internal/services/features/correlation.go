package features

import (
	"fmt"
	"math"

	"CoinScope/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// Pearson returns the Pearson coefficient over pairwise-complete samples of
// x and y. It returns NaN below two complete pairs or when either side has
// zero variance.
func Pearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	// clamp rounding noise
	return math.Max(-1, math.Min(1, stat.Correlation(xs, ys, nil)))
}

// CompleteRows keeps only the dates on which every column has a value.
func CompleteRows(panel models.AlignedSet) models.AlignedSet {
	out := models.AlignedSet{
		Names:   append([]string(nil), panel.Names...),
		Columns: make([][]float64, len(panel.Columns)),
	}
	for i, d := range panel.Dates {
		complete := true
		for _, col := range panel.Columns {
			if i >= len(col) || math.IsNaN(col[i]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		out.Dates = append(out.Dates, d)
		for c, col := range panel.Columns {
			out.Columns[c] = append(out.Columns[c], col[i])
		}
	}
	return out
}

// CorrelationMatrix computes the N×N Pearson matrix over the fully common
// range of an aligned panel: only dates where every column has a value
// count. The diagonal is exactly 1 and the matrix is symmetric; rows and
// columns keep the panel's column order. Fewer than two common dates is
// insufficient data.
func CorrelationMatrix(panel models.AlignedSet) (models.CorrelationMatrix, error) {
	common := CompleteRows(panel)
	if common.Len() < 2 {
		return models.CorrelationMatrix{}, fmt.Errorf("correlation over %d common dates: %w", common.Len(), models.ErrInsufficientData)
	}
	n := len(common.Names)
	m := models.CorrelationMatrix{
		Labels: common.Names,
		Values: make([][]float64, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := Pearson(common.Columns[i], common.Columns[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}
