package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"CoinScope/internal/domain/models"
	domrepo "CoinScope/internal/domain/repository"
	applogger "CoinScope/pkg/logger"
	"CoinScope/pkg/util"
)

// DefaultPattern matches the per-coin dataset files, e.g. coin_Bitcoin.csv.
const DefaultPattern = "coin_*.csv"

// headerAliases maps canonical columns to the header names accepted for them.
var headerAliases = map[string][]string{
	"date":      {"date", "timestamp", "time", "day"},
	"symbol":    {"symbol", "ticker"},
	"name":      {"name", "coin"},
	"open":      {"open"},
	"high":      {"high"},
	"low":       {"low"},
	"close":     {"close", "adj close", "adj_close", "price"},
	"volume":    {"volume", "vol"},
	"marketcap": {"marketcap", "market cap", "market_cap"},
}

var missingTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "null": {}, "none": {}, "-": {},
}

// CSVSource reads one dataset per CSV file from a directory.
type CSVSource struct {
	dir     string
	pattern string
	l       *applogger.Logger
}

var _ domrepo.SeriesSource = (*CSVSource)(nil)

func NewCSVSource(dir, pattern string) *CSVSource {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &CSVSource{dir: dir, pattern: pattern}
}

// SetLogger injects a structured logger.
func (s *CSVSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CSVSource) Name() string { return string(domrepo.SourceCSV) }

// LoadAll parses every file matching the pattern, in file name order.
func (s *CSVSource) LoadAll(ctx context.Context) ([]models.ParseResult, error) {
	start := time.Now()
	files, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", s.pattern, err)
	}
	sort.Strings(files)
	if len(files) == 0 && s.l != nil {
		s.l.Warn("csv source matched no files",
			applogger.String("dir", s.dir),
			applogger.String("pattern", s.pattern),
		)
	}

	out := make([]models.ParseResult, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, s.parseFile(f))
	}
	if s.l != nil {
		s.l.Debug("csv source load ok",
			applogger.String("dir", s.dir),
			applogger.Int("files", len(files)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CSVSource) parseFile(path string) models.ParseResult {
	source := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return skippedf(source, "open: %v", err)
	}
	defer f.Close()
	return ParseCSV(source, SymbolFromFilename(source), f)
}

// SymbolFromFilename derives a fallback symbol from a dataset file name:
// coin_Bitcoin.csv becomes BITCOIN.
func SymbolFromFilename(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.TrimPrefix(stem, "coin_")
	return models.CanonicalSymbol(stem)
}

// ParseCSV reads one dataset. Columns are matched by header name, rows with
// an unparseable date are dropped and unparseable numbers become missing.
// The Symbol column wins over fallbackSymbol when present.
func ParseCSV(source, fallbackSymbol string, r io.Reader) models.ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return models.Skipped(source, "empty file")
	}
	if err != nil {
		return skippedf(source, "read header: %v", err)
	}
	cols := findColumns(header)
	if _, ok := cols["date"]; !ok {
		return models.Skipped(source, "missing date column")
	}
	_, hasClose := cols["close"]
	_, hasVolume := cols["volume"]
	if !hasClose && !hasVolume {
		return models.Skipped(source, "missing close and volume columns")
	}

	symbol, name := "", ""
	var candles []models.Candle
	badDates := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return skippedf(source, "read line %d: %v", line, err)
		}
		d, ok := util.ParseDate(field(rec, cols, "date"))
		if !ok {
			badDates++
			continue
		}
		if symbol == "" {
			symbol = field(rec, cols, "symbol")
		}
		if name == "" {
			name = field(rec, cols, "name")
		}
		candles = append(candles, models.Candle{
			Date:      d,
			Open:      number(field(rec, cols, "open")),
			High:      number(field(rec, cols, "high")),
			Low:       number(field(rec, cols, "low")),
			Close:     number(field(rec, cols, "close")),
			Volume:    number(field(rec, cols, "volume")),
			Marketcap: number(field(rec, cols, "marketcap")),
		})
	}
	if symbol == "" {
		symbol = fallbackSymbol
	}
	res := buildSeries(source, symbol, name, candles)
	if !res.IsOk() && badDates > 0 {
		res.Reason = fmt.Sprintf("%s (%d rows with unparseable dates)", res.Reason, badDates)
	}
	return res
}

func findColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for canon, aliases := range headerAliases {
			if _, taken := cols[canon]; taken {
				continue
			}
			for _, a := range aliases {
				if h == a {
					cols[canon] = i
				}
			}
		}
	}
	return cols
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// number parses a numeric cell; missing tokens, garbage and infinities
// become the missing marker rather than zero.
func number(s string) float64 {
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return models.Missing()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsInf(v, 0) {
		return models.Missing()
	}
	return v
}
