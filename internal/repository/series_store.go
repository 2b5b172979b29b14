package repository

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"CoinScope/internal/domain/models"
	domrepo "CoinScope/internal/domain/repository"
	applogger "CoinScope/pkg/logger"
)

type snapshot struct {
	series   map[string]models.AssetSeries
	symbols  []string
	loadedAt time.Time
}

// SeriesStore holds one immutable snapshot of every loaded series.
// Readers never lock; Reload builds a new snapshot and swaps it in whole.
type SeriesStore struct {
	src     domrepo.SeriesSource
	metrics domrepo.Metrics
	l       *applogger.Logger
	snap    atomic.Pointer[snapshot]
}

var (
	_ domrepo.SeriesStore = (*SeriesStore)(nil)
	_ domrepo.Reloadable  = (*SeriesStore)(nil)
)

func NewSeriesStore(src domrepo.SeriesSource, metrics domrepo.Metrics) *SeriesStore {
	s := &SeriesStore{src: src, metrics: metrics}
	s.snap.Store(&snapshot{series: map[string]models.AssetSeries{}})
	return s
}

// SetLogger injects a structured logger.
func (s *SeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

// Reload reads every input from the source and replaces the snapshot.
// Skipped inputs are reported, never fatal; a source failure keeps the
// previous snapshot.
func (s *SeriesStore) Reload(ctx context.Context) (models.ReloadReport, error) {
	start := time.Now()
	results, err := s.src.LoadAll(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordError("reload")
		}
		if s.l != nil {
			s.l.Error("series store reload failed",
				applogger.String("source", s.src.Name()),
				applogger.Error(err),
			)
		}
		return models.ReloadReport{}, fmt.Errorf("reload %s: %w", s.src.Name(), err)
	}

	next := &snapshot{series: make(map[string]models.AssetSeries, len(results)), loadedAt: time.Now()}
	var rep models.ReloadReport
	for _, r := range results {
		if !r.IsOk() {
			rep.Skipped = append(rep.Skipped, models.SkippedInput{Source: r.Source, Reason: r.Reason})
			continue
		}
		sym := r.Series.Symbol
		if prev, dup := next.series[sym]; dup {
			rep.Skipped = append(rep.Skipped, models.SkippedInput{
				Source: r.Source,
				Reason: fmt.Sprintf("duplicate symbol %s (already loaded from %s)", sym, prev.Source),
			})
			continue
		}
		next.series[sym] = r.Series.Clone()
		next.symbols = append(next.symbols, sym)
	}
	sort.Strings(next.symbols)
	rep.Loaded = append([]string(nil), next.symbols...)
	rep.Duration = time.Since(start)

	s.snap.Store(next)

	for _, sk := range rep.Skipped {
		if s.metrics != nil {
			s.metrics.RecordDatasetSkipped(s.src.Name())
		}
		if s.l != nil {
			s.l.Warn("dataset skipped",
				applogger.String("input", sk.Source),
				applogger.String("reason", sk.Reason),
			)
		}
	}
	if s.metrics != nil {
		for _, sym := range next.symbols {
			s.metrics.RecordDatasetLoaded(s.src.Name(), sym, next.series[sym].Len())
		}
		s.metrics.RecordLatency("reload", rep.Duration.Seconds())
	}
	if s.l != nil {
		s.l.Info("series store reloaded",
			applogger.String("source", s.src.Name()),
			applogger.Int("loaded", len(rep.Loaded)),
			applogger.Int("skipped", len(rep.Skipped)),
			applogger.Bool("partial", len(rep.Skipped) > 0),
			applogger.Duration("duration_ms", rep.Duration),
		)
	}
	return rep, nil
}

// Load returns a copy of one series, or ErrNotFound.
func (s *SeriesStore) Load(symbol string) (models.AssetSeries, error) {
	sym := models.CanonicalSymbol(symbol)
	a, ok := s.snap.Load().series[sym]
	if !ok {
		return models.AssetSeries{}, fmt.Errorf("symbol %q: %w", symbol, models.ErrNotFound)
	}
	return a.Clone(), nil
}

// LoadAll returns copies of every well-formed series, keyed by symbol.
func (s *SeriesStore) LoadAll() map[string]models.AssetSeries {
	snap := s.snap.Load()
	out := make(map[string]models.AssetSeries, len(snap.series))
	for k, v := range snap.series {
		out[k] = v.Clone()
	}
	return out
}

// Symbols returns the loaded symbols in ascending order.
func (s *SeriesStore) Symbols() []string {
	return append([]string(nil), s.snap.Load().symbols...)
}

// LoadedAt returns when the current snapshot was built; zero before the first reload.
func (s *SeriesStore) LoadedAt() time.Time {
	return s.snap.Load().loadedAt
}
