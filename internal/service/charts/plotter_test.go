package charts

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinScope/internal/domain/models"
)

var pngMagic = []byte("\x89PNG")

func sampleSet() models.AlignedSet {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	set := models.AlignedSet{Names: []string{"BTC", "ETH"}, Columns: make([][]float64, 2)}
	for i := 0; i < 40; i++ {
		set.Dates = append(set.Dates, start.AddDate(0, 0, i))
		set.Columns[0] = append(set.Columns[0], 100+float64(i))
		set.Columns[1] = append(set.Columns[1], 50+math.Sin(float64(i)))
	}
	set.Columns[1][3] = models.Missing()
	return set
}

func TestPlotter_Line(t *testing.T) {
	p := NewPlotter(WithSize(600, 400))
	b, err := p.Line(&models.LineChart{Title: "prices", Kind: models.ChartLine, Set: sampleSet()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestPlotter_Bar(t *testing.T) {
	set := sampleSet()
	set.Names, set.Columns = set.Names[:1], set.Columns[:1]
	b, err := NewPlotter().Line(&models.LineChart{Title: "volume", Kind: models.ChartBar, Set: set})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestPlotter_LineEmpty(t *testing.T) {
	_, err := NewPlotter().Line(&models.LineChart{Title: "empty"})
	assert.ErrorIs(t, err, errNothingToDraw)

	set := models.AlignedSet{
		Dates:   []time.Time{time.Now()},
		Names:   []string{"X"},
		Columns: [][]float64{{models.Missing()}},
	}
	_, err = NewPlotter().Line(&models.LineChart{Title: "all missing", Set: set})
	assert.ErrorIs(t, err, errNothingToDraw)
}

func TestPlotter_Heatmap(t *testing.T) {
	h := &models.Heatmap{
		Title: "corr",
		Dates: 10,
		Matrix: models.CorrelationMatrix{
			Labels: []string{"BTC", "ETH"},
			Values: [][]float64{{1, 0.93}, {0.93, 1}},
		},
	}
	b, err := NewPlotter().Heatmap(h)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))

	_, err = NewPlotter().Heatmap(&models.Heatmap{})
	assert.ErrorIs(t, err, errNothingToDraw)
}

func TestPlotter_Seasonality(t *testing.T) {
	prof := models.WeekdayProfile{Symbol: "BTC"}
	for i := range prof.Means {
		prof.Means[i] = 0.1 * float64(i-3)
		prof.Counts[i] = 5
	}
	prof.Means[6], prof.Counts[6] = models.Missing(), 0
	s := &models.Seasonality{
		Title: "weekday",
		Report: models.SeasonalityReport{
			Profiles: []models.WeekdayProfile{prof},
			Skipped:  []models.SkippedInput{{Source: "DOGE", Reason: "no valid volume data"}},
		},
	}
	b, err := NewPlotter().Seasonality(s)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestHelpers(t *testing.T) {
	lo, hi, ok := bounds([][]float64{{1, math.NaN(), 3}})
	require.True(t, ok)
	assert.InDelta(t, 0.9, lo, 1e-9)
	assert.InDelta(t, 3.1, hi, 1e-9)

	_, _, ok = bounds([][]float64{{math.NaN()}})
	assert.False(t, ok)

	assert.Equal(t, 5, splitNumber(5))
	assert.Equal(t, maxLabels, splitNumber(3000))
	assert.Equal(t, "n/a", formatCell(math.NaN()))
	assert.Equal(t, "0.93", formatCell(0.93))

	assert.Equal(t, []float64{0, 2}, zeroMissing([][]float64{{math.NaN(), 2}})[0])
}
