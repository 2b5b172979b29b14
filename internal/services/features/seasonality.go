package features

import (
	"errors"
	"fmt"
	"math"

	"CoinScope/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// RollingMedian computes the trailing median over exactly window samples.
// The result is aligned with xs; the first window-1 positions are missing.
func RollingMedian(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range out {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = median(xs[i+1-window : i+1])
	}
	return out
}

// VolumeSignal computes ln(volume / trailing median volume) after dropping
// non-positive and non-finite volumes. Samples whose median is zero or
// whose signal is not finite are dropped.
func VolumeSignal(volume models.Series, window int) models.Series {
	window = NormalizeWindow(window)
	valid := models.Series{Name: volume.Name}
	for i, v := range volume.Values {
		if !finite(v) || v <= 0 {
			continue
		}
		valid.Dates = append(valid.Dates, volume.Dates[i])
		valid.Values = append(valid.Values, v)
	}
	med := RollingMedian(valid.Values, window)
	out := models.Series{Name: volume.Name}
	for i, v := range valid.Values {
		m := med[i]
		if math.IsNaN(m) || m == 0 {
			continue
		}
		sig := math.Log(v / m)
		if !finite(sig) {
			continue
		}
		out.Dates = append(out.Dates, valid.Dates[i])
		out.Values = append(out.Values, sig)
	}
	return out
}

// WeekdayVolumeProfile averages the volume signal per weekday, Monday first.
// Weekdays without samples carry the missing marker rather than zero.
// An asset with no valid samples at all is insufficient data.
func WeekdayVolumeProfile(volume models.Series, window int) (models.WeekdayProfile, error) {
	sig := VolumeSignal(volume, window)
	p := models.WeekdayProfile{Symbol: volume.Name}
	if sig.Len() == 0 {
		return p, fmt.Errorf("%s: no valid volume data: %w", volume.Name, models.ErrInsufficientData)
	}
	var buckets [7][]float64
	for i, v := range sig.Values {
		k := models.WeekdayIndex(sig.Dates[i].Weekday())
		buckets[k] = append(buckets[k], v)
	}
	for k, b := range buckets {
		p.Counts[k] = len(b)
		if len(b) == 0 {
			p.Means[k] = models.Missing()
			continue
		}
		p.Means[k] = stat.Mean(b, nil)
	}
	return p, nil
}

// WeekdayVolumeProfiles builds profiles for several assets. Assets without
// valid volume data are excluded and listed under Skipped.
func WeekdayVolumeProfiles(volumes []models.Series, window int) models.SeasonalityReport {
	var rep models.SeasonalityReport
	for _, v := range volumes {
		p, err := WeekdayVolumeProfile(v, window)
		if err != nil {
			reason := err.Error()
			if errors.Is(err, models.ErrInsufficientData) {
				reason = "no valid volume data"
			}
			rep.Skipped = append(rep.Skipped, models.SkippedInput{Source: v.Name, Reason: reason})
			continue
		}
		rep.Profiles = append(rep.Profiles, p)
	}
	return rep
}
