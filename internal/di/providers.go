package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"CoinScope/internal/domain/models"
	"CoinScope/internal/domain/repository"
	"CoinScope/internal/domain/service"
	"CoinScope/internal/handler/api"
	"CoinScope/internal/handler/cli"
	internalrepo "CoinScope/internal/repository"
	icache "CoinScope/internal/service/cache"
	"CoinScope/internal/service/charts"
	apimetrics "CoinScope/internal/service/metrics"
	"CoinScope/internal/service/ratelimit"
	"CoinScope/internal/usecase"
	pkgch "CoinScope/pkg/clickhouse"
	"CoinScope/pkg/config"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
	"CoinScope/pkg/metrics"
	"CoinScope/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
}

// ProvideRegistry creates the Prometheus registry shared by every collector.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.NewWithRegistry(reg)
}

// ProvideSeriesSource opens the configured dataset backend.
func ProvideSeriesSource(cfg *config.Config, l *applogger.Logger) (repository.SeriesSource, func(), error) {
	switch repository.NormalizeSourceKind(cfg.Data.Source) {
	case repository.SourceSQLite:
		db, err := internalrepo.OpenSQLite(cfg.Data.SQLitePath, cfg.Data.Table)
		if err != nil {
			return nil, nil, err
		}
		src, err := internalrepo.NewSQLSource(db, string(repository.SourceSQLite), cfg.Data.Table)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		src.SetLogger(l.With("sqlite"))
		return src, func() { _ = db.Close() }, nil

	case repository.SourceClickHouse:
		client, err := ProvideClickHouseClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		src, err := internalrepo.NewClickHouseSource(client, cfg.ClickHouse.Database+"."+cfg.Data.Table)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		src.SetLogger(l.With("clickhouse"))
		return src, func() { _ = client.Close() }, nil

	default:
		src := internalrepo.NewCSVSource(cfg.Data.Dir, cfg.Data.Pattern)
		src.SetLogger(l.With("csv"))
		return src, func() {}, nil
	}
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the candles table.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		fmt.Sprintf(internalrepo.CandlesSchemaClickHouse, cfg.ClickHouse.Database+"."+cfg.Data.Table),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideSeriesStore creates the copy-on-write series store. It is empty until the first Reload.
func ProvideSeriesStore(src repository.SeriesSource, m repository.Metrics, l *applogger.Logger) *internalrepo.SeriesStore {
	s := internalrepo.NewSeriesStore(src, m)
	s.SetLogger(l.With("store"))
	return s
}

// ProvideAnalyzer creates the analysis use case with configured defaults.
func ProvideAnalyzer(store *internalrepo.SeriesStore, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.Analyzer {
	a := usecase.NewAnalyzer(store, m, usecase.AnalysisOptions{
		Join:              models.JoinPolicy(cfg.Analysis.Join),
		ReturnMethod:      models.ReturnMethod(cfg.Analysis.ReturnMethod),
		Percent:           cfg.Analysis.Percent,
		Window:            cfg.Analysis.Window,
		SeasonalityWindow: cfg.Analysis.SeasonalityWindow,
	})
	a.SetLogger(l.With("analyzer"))
	return a
}

// ProvidePlotter creates the PNG chart renderer.
func ProvidePlotter(cfg *config.Config) service.Plotter {
	return charts.NewPlotter(charts.WithSize(cfg.Charts.Width, cfg.Charts.Height))
}

// ProvideReloader creates the cron-driven dataset reloader.
func ProvideReloader(store *internalrepo.SeriesStore, cfg *config.Config, l *applogger.Logger) (*usecase.Reloader, error) {
	r, err := usecase.NewReloader(store, cfg.Reload.Cron)
	if err != nil {
		return nil, err
	}
	r.SetLogger(l.With("reloader"))
	return r, nil
}

// ProvideMenu creates the interactive menu.
func ProvideMenu(a *usecase.Analyzer, p service.Plotter, cfg *config.Config, l *applogger.Logger) *cli.Menu {
	m := cli.NewMenu(a, p, cfg.Charts.OutputDir)
	m.SetLogger(l.With("menu"))
	return m
}

// ProvideCache creates the API response cache, or nil when disabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	redisCfg := icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	}
	c, err := icache.New(cfg.Cache.Backend, redisCfg,
		icache.WithMemoryMaxSize(cfg.Cache.MaxEntries),
		icache.WithMemoryCleanup(cfg.Cache.CleanupInterval),
	)
	if err != nil {
		return nil, nil, err
	}
	switch cc := c.(type) {
	case *icache.RedisCache:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cc.Ping(ctx); err != nil {
			l.Warn("redis cache unreachable, responses will not be cached", applogger.Error(err))
		}
		return cc, func() { _ = cc.Close() }, nil
	case *icache.TTLCache:
		return cc, func() { _ = cc.Close() }, nil
	}
	return c, func() {}, nil
}

// ProvideAnalysisHandler creates the Echo analysis handler.
func ProvideAnalysisHandler(
	a *usecase.Analyzer,
	p service.Plotter,
	store *internalrepo.SeriesStore,
	c icache.BytesCache,
	reg *prometheus.Registry,
	cfg *config.Config,
	l *applogger.Logger,
) *api.AnalysisHandler {
	h := api.NewAnalysisHandler(a, p, store)
	if c != nil {
		h.SetCache(c, cfg.Cache.TTL)
	}
	h.SetRateLimiter(ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec))
	h.SetMetrics(apimetrics.NewAPI(reg))
	h.SetLogger(l.With("api"))
	return h
}

// ProvideHTTPServer creates the Echo server with every handler registered.
func ProvideHTTPServer(h *api.AnalysisHandler, reg *prometheus.Registry, cfg *config.Config, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithLogger(l.With("http")),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer([]xhttp.Handler{h}, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	store *internalrepo.SeriesStore,
	reloader *usecase.Reloader,
	menu *cli.Menu,
	httpServer *xhttp.Server,
) *server.App {
	return server.New(cfg, l, store, reloader, menu, httpServer)
}
