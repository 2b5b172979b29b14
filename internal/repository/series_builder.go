package repository

import (
	"fmt"
	"sort"

	"CoinScope/internal/domain/models"
)

// buildSeries turns raw candles into a well-formed series: fully-missing
// rows are removed, dates are sorted ascending and duplicate dates keep the
// last row read. An input left with no rows is skipped.
func buildSeries(source, symbol, name string, candles []models.Candle) models.ParseResult {
	symbol = models.CanonicalSymbol(symbol)
	if symbol == "" {
		return models.Skipped(source, "missing symbol")
	}
	rows := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if c.Date.IsZero() || c.FullyMissing() {
			continue
		}
		c.Date = models.DateOf(c.Date)
		rows = append(rows, c)
	}
	if len(rows) == 0 {
		return models.Skipped(source, "no valid rows")
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	out := rows[:0]
	for _, c := range rows {
		if n := len(out); n > 0 && out[n-1].Date.Equal(c.Date) {
			out[n-1] = c
			continue
		}
		out = append(out, c)
	}
	return models.Ok(source, models.AssetSeries{
		Symbol:  symbol,
		Name:    name,
		Source:  source,
		Candles: out,
	})
}

func skippedf(source, format string, a ...any) models.ParseResult {
	return models.Skipped(source, fmt.Sprintf(format, a...))
}
