package models

// Requests for the analysis HTTP endpoints. Defined in domain for reuse by the CLI.
// Symbols are comma-separated lists; From/To are optional YYYY-MM-DD bounds.

type SeriesRequest struct {
	Symbol string `param:"symbol" query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type CompareRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
	From    string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type ReturnsRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
	Method  string `query:"method" json:"method"`

	// Percent is empty when the configured default applies.
	Percent string `query:"percent" json:"percent" validate:"omitempty,oneof=true false 1 0"`
	Join    string `query:"join" json:"join"`
	Fill    string `query:"fill" json:"fill"`
	From    string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type VolatilityRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
	// Window stays a string so malformed input falls back to the default window.
	Window string `query:"window" json:"window"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type CorrelationRequest struct {
	Symbols string `query:"symbols" json:"symbols"`
	From    string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type SeasonalityRequest struct {
	Symbols string `query:"symbols" json:"symbols"`
	Window  string `query:"window" json:"window"`
	From    string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type ChartRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	Kind   string `param:"kind" json:"kind" default:"price" validate:"oneof=price volume"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}
