package usecase

import (
	"fmt"
	"strings"
	"time"

	"CoinScope/internal/domain/models"
	domrepo "CoinScope/internal/domain/repository"
	"CoinScope/internal/services/alignment"
	"CoinScope/internal/services/features"
	applogger "CoinScope/pkg/logger"
)

// AnalysisOptions are the configured defaults each request may override.
type AnalysisOptions struct {
	Join              models.JoinPolicy
	ReturnMethod      models.ReturnMethod
	Percent           bool
	Window            int
	SeasonalityWindow int
}

// DefaultAnalysisOptions returns inner join, simple decimal returns and 30-day windows.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Join:              models.JoinInner,
		ReturnMethod:      models.ReturnSimple,
		Window:            features.DefaultWindow,
		SeasonalityWindow: features.DefaultWindow,
	}
}

// Analyzer turns stored series into presentation-ready artifacts.
// Every comparison follows the same order: align prices, compute returns and
// rolling statistics per column, then re-align the results.
type Analyzer struct {
	store   domrepo.SeriesStore
	metrics domrepo.Metrics
	opts    AnalysisOptions
	l       *applogger.Logger
}

func NewAnalyzer(store domrepo.SeriesStore, metrics domrepo.Metrics, opts AnalysisOptions) *Analyzer {
	opts.Window = features.NormalizeWindow(opts.Window)
	opts.SeasonalityWindow = features.NormalizeWindow(opts.SeasonalityWindow)
	if opts.Join == "" {
		opts.Join = models.JoinInner
	}
	if opts.ReturnMethod == "" {
		opts.ReturnMethod = models.ReturnSimple
	}
	return &Analyzer{store: store, metrics: metrics, opts: opts}
}

// SetLogger injects a structured logger.
func (a *Analyzer) SetLogger(l *applogger.Logger) { a.l = l }

func (a *Analyzer) Options() AnalysisOptions { return a.opts }

// Symbols lists every loaded symbol.
func (a *Analyzer) Symbols() []string { return a.store.Symbols() }

type SeriesParams struct {
	Symbol string
	Range  models.Range
}

type CompareParams struct {
	Symbols []string
	Range   models.Range
}

type ReturnsParams struct {
	Symbols []string
	// Method and Join override the configured defaults when non-empty.
	Method string
	Join   string
	// Fill fills gaps in the aligned prices (ffill or bfill) before returns are taken.
	Fill    string
	Percent *bool
	Range   models.Range
}

type VolatilityParams struct {
	Symbols []string
	// Window <= 1 selects the configured window.
	Window int
	Range  models.Range
}

type CorrelationParams struct {
	// Symbols defaults to every loaded symbol.
	Symbols []string
	Range   models.Range
}

type SeasonalityParams struct {
	// Symbols defaults to every loaded symbol.
	Symbols []string
	Window  int
	Range   models.Range
}

// PriceHistory returns the close price of one asset.
func (a *Analyzer) PriceHistory(p SeriesParams) (chart *models.LineChart, err error) {
	defer a.observe("price_history", time.Now(), &err)
	s, err := a.column(p.Symbol, models.FieldClose, p.Range)
	if err != nil {
		return nil, err
	}
	return &models.LineChart{
		Title:    s.Name + " close price",
		Subtitle: span(s.Dates),
		YLabel:   "Price (USD)",
		Kind:     models.ChartLine,
		Set:      alignment.Inner(s),
	}, nil
}

// VolumeHistory returns the traded volume of one asset.
func (a *Analyzer) VolumeHistory(p SeriesParams) (chart *models.LineChart, err error) {
	defer a.observe("volume_history", time.Now(), &err)
	s, err := a.column(p.Symbol, models.FieldVolume, p.Range)
	if err != nil {
		return nil, err
	}
	return &models.LineChart{
		Title:    s.Name + " volume",
		Subtitle: span(s.Dates),
		YLabel:   "Volume",
		Kind:     models.ChartBar,
		Set:      alignment.Inner(s),
	}, nil
}

// CompareLogPrice rebases aligned close prices to ln(p/p0) so every asset starts at zero.
func (a *Analyzer) CompareLogPrice(p CompareParams) (chart *models.LineChart, err error) {
	defer a.observe("compare_log_price", time.Now(), &err)
	panel, err := a.pricePanel(p.Symbols, p.Range)
	if err != nil {
		return nil, err
	}
	out := make([]models.Series, 0, len(panel.Names))
	for i := range panel.Names {
		n, err := features.NormalizedLogPrice(panel.Series(i))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	set := alignment.Inner(out...)
	return &models.LineChart{
		Title:    "Normalized log price: " + strings.Join(set.Names, " vs "),
		Subtitle: span(set.Dates),
		YLabel:   "ln(P / P0)",
		Kind:     models.ChartLine,
		Set:      set,
	}, nil
}

// ComparePerformance returns aligned daily percent changes.
func (a *Analyzer) ComparePerformance(p CompareParams) (*models.LineChart, error) {
	pct := true
	chart, err := a.Returns(ReturnsParams{
		Symbols: p.Symbols,
		Method:  string(models.ReturnSimple),
		Join:    string(models.JoinInner),
		Percent: &pct,
		Range:   p.Range,
	})
	if err != nil {
		return nil, err
	}
	chart.Title = "Daily performance: " + strings.Join(chart.Set.Names, " vs ")
	return chart, nil
}

// Returns computes per-asset returns over an aligned price panel.
func (a *Analyzer) Returns(p ReturnsParams) (chart *models.LineChart, err error) {
	defer a.observe("returns", time.Now(), &err)
	method := a.opts.ReturnMethod
	if p.Method != "" {
		if method, err = features.ParseReturnMethod(p.Method); err != nil {
			return nil, err
		}
	}
	join := a.opts.Join
	if p.Join != "" {
		if join, err = alignment.ParseJoin(p.Join); err != nil {
			return nil, err
		}
	}
	fill, err := models.ParseFillMethod(p.Fill)
	if err != nil {
		return nil, err
	}
	percent := a.opts.Percent
	if p.Percent != nil {
		percent = *p.Percent
	}

	prices, err := a.closes(p.Symbols, p.Range)
	if err != nil {
		return nil, err
	}
	panel, err := alignment.Align(join, prices...)
	if err != nil {
		return nil, err
	}
	if panel.Empty() {
		return nil, alignment.ExplainEmpty(prices...)
	}
	rets := make([]models.Series, 0, len(panel.Names))
	for i := range panel.Names {
		r, err := features.Returns(panel.Series(i).Fill(fill), method, percent)
		if err != nil {
			return nil, err
		}
		rets = append(rets, r)
	}
	set, err := alignment.Align(join, rets...)
	if err != nil {
		return nil, err
	}
	if set.Empty() {
		return nil, fmt.Errorf("fewer than two aligned prices: %w", models.ErrInsufficientData)
	}
	unit := "decimal"
	if percent {
		unit = "%"
	}
	return &models.LineChart{
		Title:    fmt.Sprintf("%s returns: %s", method, strings.Join(set.Names, " vs ")),
		Subtitle: span(set.Dates),
		YLabel:   "Return (" + unit + ")",
		Kind:     models.ChartLine,
		Set:      set,
	}, nil
}

// CompareVolatility returns annualized rolling volatility in percent, re-aligned across assets.
func (a *Analyzer) CompareVolatility(p VolatilityParams) (chart *models.LineChart, err error) {
	defer a.observe("compare_volatility", time.Now(), &err)
	window := a.opts.Window
	if p.Window > 1 {
		window = p.Window
	}
	panel, err := a.pricePanel(p.Symbols, p.Range)
	if err != nil {
		return nil, err
	}
	vols := make([]models.Series, 0, len(panel.Names))
	for i := range panel.Names {
		r, err := features.Returns(panel.Series(i), a.opts.ReturnMethod, false)
		if err != nil {
			return nil, err
		}
		vols = append(vols, features.RollingVolatility(r, window))
	}
	set := alignment.Inner(vols...)
	if set.Empty() {
		return nil, fmt.Errorf("window %d exceeds %d aligned returns: %w", window, panel.Len()-1, models.ErrInsufficientData)
	}
	return &models.LineChart{
		Title:    fmt.Sprintf("%d-day rolling volatility: %s", window, strings.Join(set.Names, " vs ")),
		Subtitle: span(set.Dates),
		YLabel:   "Annualized volatility (%)",
		Kind:     models.ChartLine,
		Set:      set,
	}, nil
}

// Correlation computes the Pearson matrix of aligned close prices, rounded for display.
func (a *Analyzer) Correlation(p CorrelationParams) (h *models.Heatmap, err error) {
	defer a.observe("correlation", time.Now(), &err)
	symbols := p.Symbols
	if len(symbols) == 0 {
		symbols = a.store.Symbols()
	}
	panel, err := a.pricePanel(symbols, p.Range)
	if err != nil {
		return nil, err
	}
	m, err := features.CorrelationMatrix(panel)
	if err != nil {
		return nil, err
	}
	return &models.Heatmap{
		Title:  "Close price correlation (" + span(panel.Dates) + ")",
		Matrix: m.Rounded(2),
		Dates:  panel.Len(),
	}, nil
}

// WeekdaySeasonality averages log-normalized volume per weekday for each asset.
// Unknown symbols and assets without valid volume are reported as skipped.
func (a *Analyzer) WeekdaySeasonality(p SeasonalityParams) (s *models.Seasonality, err error) {
	defer a.observe("weekday_seasonality", time.Now(), &err)
	window := a.opts.SeasonalityWindow
	if p.Window > 1 {
		window = p.Window
	}
	symbols := models.CanonicalSymbols(p.Symbols)
	if len(symbols) == 0 {
		symbols = a.store.Symbols()
	}
	var volumes []models.Series
	var missing []models.SkippedInput
	for _, sym := range symbols {
		as, err := a.store.Load(sym)
		if err != nil {
			missing = append(missing, models.SkippedInput{Source: sym, Reason: "not found"})
			continue
		}
		volumes = append(volumes, as.Column(models.FieldVolume).Slice(p.Range.From, p.Range.To))
	}
	rep := features.WeekdayVolumeProfiles(volumes, window)
	rep.Skipped = append(missing, rep.Skipped...)
	if len(rep.Profiles) == 0 {
		return nil, fmt.Errorf("no asset has valid volume data (%d skipped): %w", len(rep.Skipped), models.ErrInsufficientData)
	}
	for _, sk := range rep.Skipped {
		if a.l != nil {
			a.l.Info("seasonality excluded asset",
				applogger.String("symbol", sk.Source),
				applogger.String("reason", sk.Reason),
			)
		}
	}
	return &models.Seasonality{
		Title:  fmt.Sprintf("Weekday volume seasonality (ln(volume / %d-day median))", window),
		Report: rep,
	}, nil
}

func (a *Analyzer) column(symbol string, f models.Field, r models.Range) (models.Series, error) {
	as, err := a.store.Load(models.CanonicalSymbol(symbol))
	if err != nil {
		return models.Series{}, err
	}
	s := as.Column(f).Slice(r.From, r.To).DropMissing()
	if s.Len() == 0 {
		return models.Series{}, fmt.Errorf("%s has no %s data in range: %w", as.Symbol, f, models.ErrInsufficientData)
	}
	return s, nil
}

func (a *Analyzer) closes(symbols []string, r models.Range) ([]models.Series, error) {
	symbols = models.CanonicalSymbols(symbols)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required: %w", models.ErrInvalidParameter)
	}
	out := make([]models.Series, 0, len(symbols))
	for _, sym := range symbols {
		as, err := a.store.Load(sym)
		if err != nil {
			return nil, err
		}
		out = append(out, as.Column(models.FieldClose).Slice(r.From, r.To).DropMissing())
	}
	return out, nil
}

// pricePanel inner-joins close prices and explains an empty common range.
func (a *Analyzer) pricePanel(symbols []string, r models.Range) (models.AlignedSet, error) {
	prices, err := a.closes(symbols, r)
	if err != nil {
		return models.AlignedSet{}, err
	}
	return alignment.Panel(prices...)
}

func (a *Analyzer) observe(op string, start time.Time, errp *error) {
	err := *errp
	elapsed := time.Since(start).Seconds()
	if a.metrics != nil {
		a.metrics.RecordLatency(op, elapsed)
		if err != nil {
			a.metrics.RecordError(models.ErrorKind(err))
		}
	}
	if err != nil && a.l != nil {
		a.l.Warn("analysis failed",
			applogger.String("op", op),
			applogger.String("kind", models.ErrorKind(err)),
			applogger.Float64("elapsed_s", elapsed),
			applogger.Error(err),
		)
	}
}

func span(dates []time.Time) string {
	if len(dates) == 0 {
		return ""
	}
	const layout = "2006-01-02"
	return dates[0].Format(layout) + " to " + dates[len(dates)-1].Format(layout)
}
