package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"CoinScope/internal/domain/models"
	"CoinScope/internal/domain/service"
	icache "CoinScope/internal/service/cache"
	"CoinScope/internal/service/metrics"
	"CoinScope/internal/service/ratelimit"
	"CoinScope/internal/usecase"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
	"CoinScope/pkg/util"
)

// Snapshot reports when the served dataset was loaded. Cache keys embed it
// so a reload invalidates every cached response.
type Snapshot interface {
	LoadedAt() time.Time
}

// AnalysisHandler serves the analysis endpoints over Echo.
type AnalysisHandler struct {
	analyzer *usecase.Analyzer
	plotter  service.Plotter
	snap     Snapshot
	cache    icache.BytesCache
	ttl      time.Duration
	rl       *ratelimit.Limiter
	metrics  *metrics.API
	l        *applogger.Logger
}

var _ xhttp.Handler = (*AnalysisHandler)(nil)

func NewAnalysisHandler(analyzer *usecase.Analyzer, plotter service.Plotter, snap Snapshot) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, plotter: plotter, snap: snap}
}

// SetCache enables response caching for ttl.
func (h *AnalysisHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache, h.ttl = c, ttl
}

func (h *AnalysisHandler) SetRateLimiter(rl *ratelimit.Limiter) { h.rl = rl }

func (h *AnalysisHandler) SetMetrics(m *metrics.API) { h.metrics = m }

// SetLogger injects a structured logger.
func (h *AnalysisHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.rateLimit)
	g.GET("/symbols", h.Symbols)
	g.GET("/prices/:symbol", h.Prices)
	g.GET("/volume/:symbol", h.Volume)
	g.GET("/returns", h.Returns)
	g.GET("/logprice", h.LogPrice)
	g.GET("/performance", h.Performance)
	g.GET("/volatility", h.Volatility)
	g.GET("/correlation", h.Correlation)
	g.GET("/seasonality", h.Seasonality)
	g.GET("/charts/:kind/:symbol", h.Chart)
}

func (h *AnalysisHandler) Symbols(c echo.Context) error {
	syms := h.analyzer.Symbols()
	return xhttp.ListResponse(c, syms, int64(len(syms)))
}

func (h *AnalysisHandler) Prices(c echo.Context) error {
	return h.series(c, "prices", h.analyzer.PriceHistory)
}

func (h *AnalysisHandler) Volume(c echo.Context) error {
	return h.series(c, "volume", h.analyzer.VolumeHistory)
}

func (h *AnalysisHandler) series(c echo.Context, endpoint string, run func(usecase.SeriesParams) (*models.LineChart, error)) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := dateRange(req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		chart, err := run(usecase.SeriesParams{Symbol: req.Symbol, Range: r})
		if err != nil {
			return nil, err
		}
		return toSeriesResponse(chart), nil
	})
}

func (h *AnalysisHandler) Returns(c echo.Context) error {
	const endpoint = "returns"
	req := &models.ReturnsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := dateRange(req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	var percent *bool
	if req.Percent != "" {
		v, _ := strconv.ParseBool(req.Percent)
		percent = &v
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		chart, err := h.analyzer.Returns(usecase.ReturnsParams{
			Symbols: util.SplitList(req.Symbols),
			Method:  req.Method,
			Join:    req.Join,
			Fill:    req.Fill,
			Percent: percent,
			Range:   r,
		})
		if err != nil {
			return nil, err
		}
		return toSeriesResponse(chart), nil
	})
}

func (h *AnalysisHandler) LogPrice(c echo.Context) error {
	return h.compare(c, "logprice", h.analyzer.CompareLogPrice)
}

func (h *AnalysisHandler) Performance(c echo.Context) error {
	return h.compare(c, "performance", h.analyzer.ComparePerformance)
}

func (h *AnalysisHandler) compare(c echo.Context, endpoint string, run func(usecase.CompareParams) (*models.LineChart, error)) error {
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := dateRange(req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		chart, err := run(usecase.CompareParams{Symbols: util.SplitList(req.Symbols), Range: r})
		if err != nil {
			return nil, err
		}
		return toSeriesResponse(chart), nil
	})
}

func (h *AnalysisHandler) Volatility(c echo.Context) error {
	const endpoint = "volatility"
	req := &models.VolatilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := dateRange(req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		chart, err := h.analyzer.CompareVolatility(usecase.VolatilityParams{
			Symbols: util.SplitList(req.Symbols),
			Window:  windowParam(req.Window),
			Range:   r,
		})
		if err != nil {
			return nil, err
		}
		return toSeriesResponse(chart), nil
	})
}

func (h *AnalysisHandler) Correlation(c echo.Context) error {
	const endpoint = "correlation"
	req := &models.CorrelationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := dateRange(req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		hm, err := h.analyzer.Correlation(usecase.CorrelationParams{Symbols: util.SplitList(req.Symbols), Range: r})
		if err != nil {
			return nil, err
		}
		return toHeatmapResponse(hm), nil
	})
}

func (h *AnalysisHandler) Seasonality(c echo.Context) error {
	const endpoint = "seasonality"
	req := &models.SeasonalityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := dateRange(req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		s, err := h.analyzer.WeekdaySeasonality(usecase.SeasonalityParams{
			Symbols: util.SplitList(req.Symbols),
			Window:  windowParam(req.Window),
			Range:   r,
		})
		if err != nil {
			return nil, err
		}
		return toSeasonalityResponse(s), nil
	})
}

// Chart renders the price or volume history of one symbol as PNG.
func (h *AnalysisHandler) Chart(c echo.Context) error {
	const endpoint = "chart"
	start := time.Now()
	defer func() { h.metrics.ObserveLatency(endpoint, time.Since(start).Seconds()) }()

	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := dateRange(req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	key := icache.Key(endpoint, h.generation(), req.Kind, models.CanonicalSymbol(req.Symbol), req.From, req.To)
	if b, ok := h.cacheGet(c, key); ok {
		h.metrics.IncCacheHit(endpoint)
		return xhttp.PNGResponse(c, b)
	}

	p := usecase.SeriesParams{Symbol: req.Symbol, Range: r}
	var chart *models.LineChart
	if req.Kind == "volume" {
		chart, err = h.analyzer.VolumeHistory(p)
	} else {
		chart, err = h.analyzer.PriceHistory(p)
	}
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	png, err := h.plotter.Line(chart)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.cacheSet(c, key, png)
	return xhttp.PNGResponse(c, png)
}

// cached serves a JSON envelope from cache or computes, stores and writes it.
func (h *AnalysisHandler) cached(c echo.Context, endpoint string, compute func() (interface{}, error)) error {
	start := time.Now()
	defer func() { h.metrics.ObserveLatency(endpoint, time.Since(start).Seconds()) }()

	key := icache.Key(endpoint, h.generation(), c.Path(), c.Param("symbol"), c.QueryString())
	if b, ok := h.cacheGet(c, key); ok {
		h.metrics.IncCacheHit(endpoint)
		return c.JSONBlob(http.StatusOK, b)
	}

	data, err := compute()
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	b, err := json.Marshal(xhttp.APIResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: data})
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.cacheSet(c, key, b)
	return c.JSONBlob(http.StatusOK, b)
}

func (h *AnalysisHandler) cacheGet(c echo.Context, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(c.Request().Context(), key)
	if err != nil {
		if h.l != nil {
			h.l.Warn("cache get failed", applogger.String("key", key), applogger.Error(err))
		}
		return nil, false
	}
	return b, ok
}

func (h *AnalysisHandler) cacheSet(c echo.Context, key string, b []byte) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetBytes(c.Request().Context(), key, b, h.ttl); err != nil && h.l != nil {
		h.l.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (h *AnalysisHandler) generation() int64 {
	if h.snap == nil {
		return 0
	}
	return h.snap.LoadedAt().UnixNano()
}

func (h *AnalysisHandler) fail(c echo.Context, endpoint string, err error) error {
	kind := models.ErrorKind(err)
	h.metrics.IncError(endpoint, kind)
	appErr := toAppError(err)
	if h.l != nil {
		log := h.l.Warn
		if xhttp.StatusOf(appErr) >= http.StatusInternalServerError {
			log = h.l.Error
		}
		log("analysis request failed",
			applogger.String("endpoint", endpoint),
			applogger.String("kind", kind),
			applogger.Error(err),
		)
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func (h *AnalysisHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.rl.Allow(c.RealIP()) {
			return next(c)
		}
		h.metrics.IncRateLimited()
		if h.l != nil {
			h.l.Warn("rate limited", applogger.String("remote", c.RealIP()), applogger.String("route", c.Path()))
		}
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}
}

// toAppError maps domain error kinds onto HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundError(err.Error())
	case errors.Is(err, models.ErrInvalidParameter):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.UnprocessableError(err.Error())
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}

func dateRange(from, to string) (models.Range, error) {
	f, t, err := util.ParseDateRange(from, to)
	if err != nil {
		appErr := xhttp.BadRequestError(err.Error()).WithError(models.ErrInvalidParameter)
		var de *util.DateError
		if errors.As(err, &de) {
			appErr.WithField(de.Field)
		}
		return models.Range{}, appErr
	}
	return models.Range{From: f, To: t}, nil
}

// windowParam is lenient: a malformed or too small window selects the configured default.
func windowParam(s string) int {
	if w := util.ParseIntDefault(s, 0); w > 1 {
		return w
	}
	return 0
}
