package models

// ChartKind selects how a LineChart artifact is drawn.
type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
)

// LineChart is a presentation-ready set of aligned series.
type LineChart struct {
	Title    string
	Subtitle string
	YLabel   string
	Kind     ChartKind
	Set      AlignedSet
}

// Heatmap is a presentation-ready correlation matrix, rounded for display.
type Heatmap struct {
	Title  string
	Matrix CorrelationMatrix
	Dates  int
}

// Seasonality is a presentation-ready weekday profile per asset.
type Seasonality struct {
	Title  string
	Report SeasonalityReport
}
