package repository

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"CoinScope/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSourceLoadAll(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "coins.db"), "candles")
	require.NoError(t, err)
	defer db.Close()

	rows := []struct {
		symbol, name, date string
		close, volume      any
	}{
		{"eth", "Ethereum", "2021-01-02", 730.0, 1000.0},
		{"eth", "Ethereum", "2021-01-01", 720.0, nil},
		{"btc", "Bitcoin", "2021-01-01", 29000.0, 5.0},
		{"btc", "Bitcoin", "garbage", 1.0, 1.0},
		{"dead", "Dead", "2021-01-01", nil, nil},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO candles (symbol, name, date, close, volume) VALUES (?, ?, ?, ?, ?)`,
			r.symbol, r.name, r.date, r.close, r.volume)
		require.NoError(t, err)
	}

	src, err := NewSQLSource(db, "sqlite", "candles")
	require.NoError(t, err)
	results, err := src.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	bySymbol := map[string]models.ParseResult{}
	for _, r := range results {
		if r.IsOk() {
			bySymbol[r.Series.Symbol] = r
		} else {
			bySymbol["skipped:"+r.Source] = r
		}
	}
	eth := bySymbol["ETH"].Series
	require.NotNil(t, eth)
	require.Equal(t, 2, eth.Len())
	assert.Equal(t, 720.0, eth.Candles[0].Close)
	assert.True(t, math.IsNaN(eth.Candles[0].Volume))
	assert.Equal(t, "Ethereum", eth.Name)

	btc := bySymbol["BTC"].Series
	require.NotNil(t, btc)
	assert.Equal(t, 1, btc.Len())

	dead, ok := bySymbol["skipped:sqlite:candles:DEAD"]
	require.True(t, ok)
	assert.Equal(t, "no valid rows", dead.Reason)
}

func TestNewSQLSourceRejectsTableInjection(t *testing.T) {
	_, err := NewSQLSource(nil, "sqlite", "candles; DROP TABLE x")
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = NewSQLSource(nil, "clickhouse", "coinscope.candles")
	assert.NoError(t, err)
}
