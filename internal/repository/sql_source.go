package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"CoinScope/internal/domain/models"
	domrepo "CoinScope/internal/domain/repository"
	pkgch "CoinScope/pkg/clickhouse"
	applogger "CoinScope/pkg/logger"
	"CoinScope/pkg/util"

	_ "modernc.org/sqlite"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CandlesSchemaSQLite creates the candles table in a SQLite database.
const CandlesSchemaSQLite = `CREATE TABLE IF NOT EXISTS %s (
	symbol    TEXT NOT NULL,
	name      TEXT,
	date      TEXT NOT NULL,
	open      REAL,
	high      REAL,
	low       REAL,
	close     REAL,
	volume    REAL,
	marketcap REAL
)`

// CandlesSchemaClickHouse creates the candles table in ClickHouse.
const CandlesSchemaClickHouse = `CREATE TABLE IF NOT EXISTS %s (
	symbol    String,
	name      String,
	date      Date,
	open      Nullable(Float64),
	high      Nullable(Float64),
	low       Nullable(Float64),
	close     Nullable(Float64),
	volume    Nullable(Float64),
	marketcap Nullable(Float64)
) ENGINE = ReplacingMergeTree ORDER BY (symbol, date)`

// SQLSource reads daily candles for every symbol from one SQL table.
// Each distinct symbol becomes one ParseResult.
type SQLSource struct {
	db    *sql.DB
	name  string
	table string
	l     *applogger.Logger
}

var _ domrepo.SeriesSource = (*SQLSource)(nil)

// NewSQLSource wraps an open database. name labels the source in logs and metrics.
func NewSQLSource(db *sql.DB, name, table string) (*SQLSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q: %w", table, models.ErrInvalidParameter)
	}
	return &SQLSource{db: db, name: name, table: table}, nil
}

// NewClickHouseSource reads candles from a ClickHouse table.
func NewClickHouseSource(ch *pkgch.Client, table string) (*SQLSource, error) {
	return NewSQLSource(ch.DB(), string(domrepo.SourceClickHouse), table)
}

// OpenSQLite opens (or creates) a SQLite database and ensures the candles table.
func OpenSQLite(path, table string) (*sql.DB, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q: %w", table, models.ErrInvalidParameter)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(CandlesSchemaSQLite, table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return db, nil
}

// SetLogger injects a structured logger.
func (s *SQLSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *SQLSource) Name() string { return s.name }

func (s *SQLSource) LoadAll(ctx context.Context) ([]models.ParseResult, error) {
	start := time.Now()
	const qtpl = `
        SELECT symbol, name, date, open, high, low, close, volume, marketcap
        FROM %s
        ORDER BY symbol ASC, date ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if s.l != nil {
			s.l.Error("sql load_all query error",
				applogger.String("source", s.name),
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	type group struct {
		symbol  string
		name    string
		candles []models.Candle
		bad     int
	}
	var order []string
	groups := make(map[string]*group)
	for rows.Next() {
		var symbol, name sql.NullString
		var rawDate any
		var open, high, low, cl, vol, mktcap sql.NullFloat64
		if err := rows.Scan(&symbol, &name, &rawDate, &open, &high, &low, &cl, &vol, &mktcap); err != nil {
			if s.l != nil {
				s.l.Error("sql load_all scan error",
					applogger.String("source", s.name),
					applogger.String("table", s.table),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		key := models.CanonicalSymbol(symbol.String)
		g, ok := groups[key]
		if !ok {
			g = &group{symbol: key, name: name.String}
			groups[key] = g
			order = append(order, key)
		}
		d, ok := scanDate(rawDate)
		if !ok {
			g.bad++
			continue
		}
		g.candles = append(g.candles, models.Candle{
			Date:      d,
			Open:      nullable(open),
			High:      nullable(high),
			Low:       nullable(low),
			Close:     nullable(cl),
			Volume:    nullable(vol),
			Marketcap: nullable(mktcap),
		})
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("sql load_all rows error",
				applogger.String("source", s.name),
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}

	out := make([]models.ParseResult, 0, len(order))
	for _, key := range order {
		g := groups[key]
		src := s.name + ":" + s.table + ":" + g.symbol
		res := buildSeries(src, g.symbol, g.name, g.candles)
		if !res.IsOk() && g.bad > 0 {
			res.Reason = fmt.Sprintf("%s (%d rows with unparseable dates)", res.Reason, g.bad)
		}
		out = append(out, res)
	}
	if s.l != nil {
		s.l.Info("sql load_all ok",
			applogger.String("source", s.name),
			applogger.String("table", s.table),
			applogger.Int("symbols", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func nullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return models.Missing()
	}
	return v.Float64
}

// scanDate accepts the date representations drivers return for a date column.
func scanDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return util.Day(t), !t.IsZero()
	case string:
		return util.ParseDate(t)
	case []byte:
		return util.ParseDate(string(t))
	case int64:
		if t <= 0 {
			return time.Time{}, false
		}
		return util.Day(time.Unix(t, 0)), true
	default:
		return time.Time{}, false
	}
}
