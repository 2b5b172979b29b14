package repository

import (
	"context"

	"CoinScope/internal/domain/models"
)

// SeriesSource reads every per-asset dataset from one backing store.
// A bad input yields a Skipped result instead of failing the batch;
// the error return is reserved for failures of the source itself.
type SeriesSource interface {
	Name() string
	LoadAll(ctx context.Context) ([]models.ParseResult, error)
}

// SeriesStore provides read-only access to loaded series.
type SeriesStore interface {
	Load(symbol string) (models.AssetSeries, error)
	LoadAll() map[string]models.AssetSeries
	Symbols() []string
}

// Reloadable is a store whose snapshot can be rebuilt from its source.
type Reloadable interface {
	Reload(ctx context.Context) (models.ReloadReport, error)
}

type Metrics interface {
	RecordDatasetLoaded(source, symbol string, rows int)
	RecordDatasetSkipped(source string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
