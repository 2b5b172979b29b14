package api

import (
	"math"

	"CoinScope/internal/domain/models"
)

const dateLayout = "2006-01-02"

// SeriesResponse is a LineChart on the wire. Missing values encode as null.
type SeriesResponse struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle,omitempty"`
	YLabel   string         `json:"y_label"`
	Kind     string         `json:"kind"`
	Dates    []string       `json:"dates"`
	Series   []SeriesColumn `json:"series"`
}

type SeriesColumn struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

type HeatmapResponse struct {
	Title  string       `json:"title"`
	Labels []string     `json:"labels"`
	Matrix [][]*float64 `json:"matrix"`
	Dates  int          `json:"dates"`
}

type SeasonalityResponse struct {
	Title    string            `json:"title"`
	Weekdays []string          `json:"weekdays"`
	Profiles []ProfileResponse `json:"profiles"`
	Skipped  []SkippedResponse `json:"skipped"`
}

type ProfileResponse struct {
	Symbol string     `json:"symbol"`
	Means  []*float64 `json:"means"`
	Counts []int      `json:"counts"`
}

type SkippedResponse struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

func toSeriesResponse(c *models.LineChart) SeriesResponse {
	out := SeriesResponse{
		Title:    c.Title,
		Subtitle: c.Subtitle,
		YLabel:   c.YLabel,
		Kind:     string(c.Kind),
		Dates:    make([]string, len(c.Set.Dates)),
		Series:   make([]SeriesColumn, len(c.Set.Names)),
	}
	for i, d := range c.Set.Dates {
		out.Dates[i] = d.Format(dateLayout)
	}
	for i, name := range c.Set.Names {
		out.Series[i] = SeriesColumn{Name: name, Values: nullable(c.Set.Columns[i])}
	}
	return out
}

func toHeatmapResponse(h *models.Heatmap) HeatmapResponse {
	out := HeatmapResponse{
		Title:  h.Title,
		Labels: h.Matrix.Labels,
		Matrix: make([][]*float64, len(h.Matrix.Values)),
		Dates:  h.Dates,
	}
	for i, row := range h.Matrix.Values {
		out.Matrix[i] = nullable(row)
	}
	return out
}

func toSeasonalityResponse(s *models.Seasonality) SeasonalityResponse {
	out := SeasonalityResponse{
		Title:    s.Title,
		Weekdays: make([]string, len(models.Weekdays)),
		Profiles: make([]ProfileResponse, 0, len(s.Report.Profiles)),
		Skipped:  make([]SkippedResponse, 0, len(s.Report.Skipped)),
	}
	for i, d := range models.Weekdays {
		out.Weekdays[i] = d.String()
	}
	for _, p := range s.Report.Profiles {
		out.Profiles = append(out.Profiles, ProfileResponse{
			Symbol: p.Symbol,
			Means:  nullable(p.Means[:]),
			Counts: append([]int(nil), p.Counts[:]...),
		})
	}
	for _, sk := range s.Report.Skipped {
		out.Skipped = append(out.Skipped, SkippedResponse{Symbol: sk.Source, Reason: sk.Reason})
	}
	return out
}

// nullable maps NaN and ±Inf to nil so the slice survives JSON encoding.
func nullable(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}
