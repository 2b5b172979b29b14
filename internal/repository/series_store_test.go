package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"CoinScope/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	results []models.ParseResult
	err     error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) LoadAll(ctx context.Context) ([]models.ParseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results, f.err
}

func (f *fakeSource) set(results []models.ParseResult, err error) {
	f.mu.Lock()
	f.results, f.err = results, err
	f.mu.Unlock()
}

type fakeMetrics struct {
	loaded, skipped, errors int
}

func (m *fakeMetrics) RecordDatasetLoaded(source, symbol string, rows int) { m.loaded++ }
func (m *fakeMetrics) RecordDatasetSkipped(source string) { m.skipped++ }
func (m *fakeMetrics) RecordError(kind string) { m.errors++ }
func (m *fakeMetrics) RecordLatency(op string, seconds float64) {}

func asset(symbol string, closes ...float64) models.AssetSeries {
	a := models.AssetSeries{Symbol: symbol, Source: symbol + ".csv"}
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		a.Candles = append(a.Candles, models.Candle{Date: start.AddDate(0, 0, i), Close: c, Volume: 1})
	}
	return a
}

func TestSeriesStoreReloadAndLoad(t *testing.T) {
	src := &fakeSource{results: []models.ParseResult{
		models.Ok("eth.csv", asset("ETH", 1, 2)),
		models.Skipped("bad.csv", "missing date column"),
		models.Ok("btc.csv", asset("BTC", 10, 11, 12)),
		models.Ok("btc2.csv", asset("BTC", 1)),
	}}
	m := &fakeMetrics{}
	store := NewSeriesStore(src, m)
	assert.True(t, store.LoadedAt().IsZero())

	rep, err := store.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH"}, rep.Loaded)
	require.Len(t, rep.Skipped, 2)
	assert.Equal(t, "bad.csv", rep.Skipped[0].Source)
	assert.Contains(t, rep.Skipped[1].Reason, "duplicate symbol BTC")
	assert.Equal(t, 2, m.loaded)
	assert.Equal(t, 2, m.skipped)

	btc, err := store.Load("btc")
	require.NoError(t, err)
	assert.Equal(t, 3, btc.Len())
	assert.Equal(t, []string{"BTC", "ETH"}, store.Symbols())
	assert.Len(t, store.LoadAll(), 2)
	assert.False(t, store.LoadedAt().IsZero())
}

func TestSeriesStoreNotFound(t *testing.T) {
	store := NewSeriesStore(&fakeSource{}, nil)
	_, err := store.Load("XRP")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSeriesStoreReturnsCopies(t *testing.T) {
	store := NewSeriesStore(&fakeSource{results: []models.ParseResult{models.Ok("btc.csv", asset("BTC", 10, 11))}}, nil)
	_, err := store.Reload(context.Background())
	require.NoError(t, err)

	a, _ := store.Load("BTC")
	a.Candles[0].Close = -1
	all := store.LoadAll()
	all["BTC"].Candles[1].Close = -1

	b, _ := store.Load("BTC")
	assert.Equal(t, 10.0, b.Candles[0].Close)
	assert.Equal(t, 11.0, b.Candles[1].Close)
}

func TestSeriesStoreFailedReloadKeepsSnapshot(t *testing.T) {
	src := &fakeSource{results: []models.ParseResult{models.Ok("btc.csv", asset("BTC", 10))}}
	m := &fakeMetrics{}
	store := NewSeriesStore(src, m)
	_, err := store.Reload(context.Background())
	require.NoError(t, err)

	src.set(nil, errors.New("disk gone"))
	_, err = store.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, m.errors)

	_, err = store.Load("BTC")
	assert.NoError(t, err)
}

func TestSeriesStoreConcurrentReadsDuringReload(t *testing.T) {
	src := &fakeSource{results: []models.ParseResult{models.Ok("btc.csv", asset("BTC", 1, 2, 3))}}
	store := NewSeriesStore(src, nil)
	_, err := store.Reload(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				a, err := store.Load("BTC")
				if err != nil {
					t.Error(err)
					return
				}
				if a.Len() != 3 && a.Len() != 4 {
					t.Errorf("torn snapshot: %d rows", a.Len())
					return
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		n := 3 + i%2
		closes := make([]float64, n)
		src.set([]models.ParseResult{models.Ok("btc.csv", asset("BTC", closes...))}, nil)
		_, err := store.Reload(context.Background())
		require.NoError(t, err)
	}
	wg.Wait()
}
