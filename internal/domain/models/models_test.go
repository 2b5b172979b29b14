package models

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2021, time.January, d, 0, 0, 0, 0, time.UTC) }

func TestCorrelationMatrixRounded(t *testing.T) {
	m := CorrelationMatrix{
		Labels: []string{"BTC", "ETH"},
		Values: [][]float64{{1, 0.98765}, {0.98765, 1}},
	}
	r := m.Rounded(2)
	assert.Equal(t, 0.99, r.Values[0][1])
	assert.Equal(t, 1.0, r.Values[1][1])
	assert.Equal(t, 0.98765, m.Values[0][1], "original must stay untouched")

	v, ok := r.At("ETH", "BTC")
	require.True(t, ok)
	assert.Equal(t, 0.99, v)
	_, ok = r.At("ETH", "DOGE")
	assert.False(t, ok)
}

func TestRoundToKeepsMissing(t *testing.T) {
	assert.True(t, math.IsNaN(RoundTo(Missing(), 2)))
	assert.Equal(t, -0.13, RoundTo(-0.125, 2))
}

func TestWeekdayIndexMondayFirst(t *testing.T) {
	for i, d := range Weekdays {
		assert.Equal(t, i, WeekdayIndex(d))
	}
	assert.Equal(t, 6, WeekdayIndex(time.Sunday))
}

func TestSeriesSliceAndDropMissing(t *testing.T) {
	s := Series{
		Name:   "BTC",
		Dates:  []time.Time{day(1), day(2), day(3), day(4)},
		Values: []float64{1, Missing(), 3, 4},
	}
	sl := s.Slice(day(2), day(3))
	assert.Equal(t, []time.Time{day(2), day(3)}, sl.Dates)

	open := s.Slice(time.Time{}, day(2))
	assert.Equal(t, 2, open.Len())

	dm := s.DropMissing()
	assert.Equal(t, []float64{1, 3, 4}, dm.Values)
	assert.Equal(t, []time.Time{day(1), day(3), day(4)}, dm.Dates)
}

func TestSeriesFill(t *testing.T) {
	nan := math.NaN()
	s := Series{Name: "A", Dates: []time.Time{day(1), day(2), day(3), day(4), day(5)}, Values: []float64{nan, 1, nan, nan, 4}}

	ff := s.Fill(FillForward)
	assert.True(t, math.IsNaN(ff.Values[0]))
	assert.Equal(t, []float64{1, 1, 1, 4}, ff.Values[1:])

	bf := s.Fill(FillBackward)
	assert.Equal(t, []float64{1, 1, 4, 4, 4}, bf.Values)

	none := s.Fill(FillNone)
	assert.True(t, math.IsNaN(none.Values[2]))
	assert.True(t, math.IsNaN(s.Values[2]), "Fill does not modify the receiver")
}

func TestParseFillMethod(t *testing.T) {
	for in, want := range map[string]FillMethod{"": FillNone, "none": FillNone, "FFILL": FillForward, "pad": FillForward, " bfill ": FillBackward, "backfill": FillBackward} {
		got, err := ParseFillMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFillMethod("linear")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestAssetSeriesColumnAndClone(t *testing.T) {
	a := AssetSeries{Symbol: "BTC", Candles: []Candle{
		{Date: day(1), Close: 10, Volume: 100},
		{Date: day(2), Close: 11, Volume: 200},
	}}
	col := a.Column(FieldVolume)
	assert.Equal(t, "BTC", col.Name)
	assert.Equal(t, []float64{100, 200}, col.Values)

	c := a.Clone()
	c.Candles[0].Close = 99
	assert.Equal(t, 10.0, a.Candles[0].Close)
	assert.Equal(t, day(1), a.First())
	assert.Equal(t, day(2), a.Last())
}

func TestCandleFullyMissing(t *testing.T) {
	nan := Missing()
	assert.True(t, Candle{Open: nan, High: nan, Low: nan, Close: nan, Volume: nan, Marketcap: nan}.FullyMissing())
	assert.False(t, Candle{Open: nan, High: nan, Low: nan, Close: 1, Volume: nan, Marketcap: nan}.FullyMissing())
}

func TestCanonicalSymbols(t *testing.T) {
	assert.Equal(t, []string{"BTC", "ETH"}, CanonicalSymbols([]string{" btc", "ETH", "Btc", ""}))
}

func TestParseResult(t *testing.T) {
	ok := Ok("coin_Bitcoin.csv", AssetSeries{Symbol: "BTC"})
	assert.True(t, ok.IsOk())
	assert.Equal(t, "BTC", ok.Series.Symbol)

	sk := Skipped("coin_Broken.csv", "missing date column")
	assert.False(t, sk.IsOk())
	assert.Equal(t, "missing date column", sk.Reason)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "not_found", ErrorKind(fmt.Errorf("load XRP: %w", ErrNotFound)))
	assert.Equal(t, "invalid_parameter", ErrorKind(fmt.Errorf("x: %w", ErrInvalidParameter)))
	assert.Equal(t, "insufficient_data", ErrorKind(ErrInsufficientData))
	assert.Equal(t, "internal", ErrorKind(errors.New("boom")))
	assert.Equal(t, "", ErrorKind(nil))
}
