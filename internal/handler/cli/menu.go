package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"CoinScope/internal/domain/models"
	"CoinScope/internal/domain/service"
	"CoinScope/internal/services/features"
	"CoinScope/internal/usecase"
	applogger "CoinScope/pkg/logger"
	"CoinScope/pkg/util"
)

const menuText = `Select Option:
0) Quit
1) View Price Chart
2) View Volume Chart
3) Compare Price Chart (Log Scale)
4) Compare Performance
5) Compare Rolling Volatility
6) Correlation Heatmap
7) Weekday Volume Seasonality
`

// Menu is the interactive text front end. Each option prompts for its
// inputs, runs one analysis and writes the resulting chart as a PNG.
type Menu struct {
	analyzer *usecase.Analyzer
	plotter  service.Plotter
	outDir   string
	l        *applogger.Logger
	now      func() time.Time

	in  *bufio.Scanner
	out io.Writer
}

func NewMenu(analyzer *usecase.Analyzer, plotter service.Plotter, outDir string) *Menu {
	return &Menu{analyzer: analyzer, plotter: plotter, outDir: outDir, now: time.Now}
}

// SetLogger injects a structured logger.
func (m *Menu) SetLogger(l *applogger.Logger) { m.l = l }

// Run loops until the user quits, input ends or ctx is cancelled.
// A failed option is reported and the menu is shown again.
func (m *Menu) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	m.in, m.out = bufio.NewScanner(in), out
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(m.out, menuText)
		choice, ok := m.prompt("Type Selection: ")
		if !ok {
			return nil
		}
		var path string
		var err error
		switch choice {
		case "0", "q", "quit", "exit":
			return nil
		case "1":
			path, err = m.priceChart()
		case "2":
			path, err = m.volumeChart()
		case "3":
			path, err = m.logPriceComparison()
		case "4":
			path, err = m.performanceComparison()
		case "5":
			path, err = m.volatilityComparison()
		case "6":
			path, err = m.correlationHeatmap()
		case "7":
			path, err = m.weekdaySeasonality()
		case "":
			continue
		default:
			fmt.Fprintf(m.out, "Unknown option %q\n\n", choice)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(m.out, "Error: %v\n\n", err)
			if m.l != nil {
				m.l.Warn("menu option failed", applogger.String("option", choice), applogger.Error(err))
			}
			continue
		}
		fmt.Fprintf(m.out, "Chart written to %s\n\n", path)
	}
}

func (m *Menu) priceChart() (string, error) {
	sym, r, err := m.askSymbolAndRange()
	if err != nil {
		return "", err
	}
	c, err := m.analyzer.PriceHistory(usecase.SeriesParams{Symbol: sym, Range: r})
	if err != nil {
		return "", err
	}
	return m.writeLine("price_"+sym, c)
}

func (m *Menu) volumeChart() (string, error) {
	sym, r, err := m.askSymbolAndRange()
	if err != nil {
		return "", err
	}
	c, err := m.analyzer.VolumeHistory(usecase.SeriesParams{Symbol: sym, Range: r})
	if err != nil {
		return "", err
	}
	return m.writeLine("volume_"+sym, c)
}

func (m *Menu) logPriceComparison() (string, error) {
	syms, r, err := m.askPair()
	if err != nil {
		return "", err
	}
	c, err := m.analyzer.CompareLogPrice(usecase.CompareParams{Symbols: syms, Range: r})
	if err != nil {
		return "", err
	}
	return m.writeLine("logprice_"+strings.Join(syms, "_"), c)
}

func (m *Menu) performanceComparison() (string, error) {
	syms, r, err := m.askPair()
	if err != nil {
		return "", err
	}
	c, err := m.analyzer.ComparePerformance(usecase.CompareParams{Symbols: syms, Range: r})
	if err != nil {
		return "", err
	}
	return m.writeLine("performance_"+strings.Join(syms, "_"), c)
}

func (m *Menu) volatilityComparison() (string, error) {
	m.listSymbols()
	syms, err := m.askSymbols("Type symbols to compare (comma separated): ", false)
	if err != nil {
		return "", err
	}
	window, err := m.askWindow()
	if err != nil {
		return "", err
	}
	r, err := m.askRange()
	if err != nil {
		return "", err
	}
	c, err := m.analyzer.CompareVolatility(usecase.VolatilityParams{Symbols: syms, Window: window, Range: r})
	if err != nil {
		return "", err
	}
	return m.writeLine("volatility_"+strings.Join(c.Set.Names, "_"), c)
}

func (m *Menu) correlationHeatmap() (string, error) {
	m.listSymbols()
	syms, err := m.askSymbols("Type symbols (comma separated, blank for all): ", true)
	if err != nil {
		return "", err
	}
	r, err := m.askRange()
	if err != nil {
		return "", err
	}
	h, err := m.analyzer.Correlation(usecase.CorrelationParams{Symbols: syms, Range: r})
	if err != nil {
		return "", err
	}
	printMatrix(m.out, h)
	b, err := m.plotter.Heatmap(h)
	if err != nil {
		return "", err
	}
	return m.save("correlation", b)
}

func (m *Menu) weekdaySeasonality() (string, error) {
	m.listSymbols()
	syms, err := m.askSymbols("Type symbols (comma separated, blank for all): ", true)
	if err != nil {
		return "", err
	}
	window, err := m.askWindow()
	if err != nil {
		return "", err
	}
	s, err := m.analyzer.WeekdaySeasonality(usecase.SeasonalityParams{Symbols: syms, Window: window})
	if err != nil {
		return "", err
	}
	printSeasonality(m.out, s)
	b, err := m.plotter.Seasonality(s)
	if err != nil {
		return "", err
	}
	return m.save("seasonality", b)
}

func (m *Menu) askSymbolAndRange() (string, models.Range, error) {
	m.listSymbols()
	sym, ok := m.prompt("Type symbol of desired cryptocurrency: ")
	if !ok {
		return "", models.Range{}, io.EOF
	}
	sym = models.CanonicalSymbol(sym)
	if sym == "" {
		return "", models.Range{}, fmt.Errorf("symbol is required: %w", models.ErrInvalidParameter)
	}
	r, err := m.askRange()
	return sym, r, err
}

func (m *Menu) askPair() ([]string, models.Range, error) {
	m.listSymbols()
	first, ok := m.prompt("Type symbol of first choice: ")
	if !ok {
		return nil, models.Range{}, io.EOF
	}
	second, ok := m.prompt("Type symbol of second choice: ")
	if !ok {
		return nil, models.Range{}, io.EOF
	}
	syms := models.CanonicalSymbols([]string{first, second})
	if len(syms) != 2 {
		return nil, models.Range{}, fmt.Errorf("two distinct symbols are required: %w", models.ErrInvalidParameter)
	}
	r, err := m.askRange()
	return syms, r, err
}

func (m *Menu) askSymbols(label string, allowEmpty bool) ([]string, error) {
	line, ok := m.prompt(label)
	if !ok {
		return nil, io.EOF
	}
	syms := models.CanonicalSymbols(util.SplitList(line))
	if len(syms) == 0 && !allowEmpty {
		return nil, fmt.Errorf("at least one symbol is required: %w", models.ErrInvalidParameter)
	}
	return syms, nil
}

// askWindow accepts any input; unparseable or too small values select the default.
func (m *Menu) askWindow() (int, error) {
	line, ok := m.prompt(fmt.Sprintf("Rolling window in days (default %d): ", features.DefaultWindow))
	if !ok {
		return 0, io.EOF
	}
	return features.ParseWindow(line), nil
}

func (m *Menu) askRange() (models.Range, error) {
	from, ok := m.prompt("From date YYYY-MM-DD (blank for start): ")
	if !ok {
		return models.Range{}, io.EOF
	}
	to, ok := m.prompt("To date YYYY-MM-DD (blank for end): ")
	if !ok {
		return models.Range{}, io.EOF
	}
	f, t, err := util.ParseDateRange(from, to)
	if err != nil {
		return models.Range{}, fmt.Errorf("%v: %w", err, models.ErrInvalidParameter)
	}
	return models.Range{From: f, To: t}, nil
}

func (m *Menu) listSymbols() {
	fmt.Fprintln(m.out, "\nOptions:")
	fmt.Fprintln(m.out, strings.Join(m.analyzer.Symbols(), ", "))
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) writeLine(name string, c *models.LineChart) (string, error) {
	b, err := m.plotter.Line(c)
	if err != nil {
		return "", err
	}
	return m.save(name, b)
}

func (m *Menu) save(name string, png []byte) (string, error) {
	if err := os.MkdirAll(m.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := filepath.Join(m.outDir, fmt.Sprintf("%s_%s.png", strings.ToLower(name), m.now().Format("20060102_150405")))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	if m.l != nil {
		m.l.Info("chart written", applogger.String("path", path), applogger.Int("bytes", len(png)))
	}
	return path, nil
}

func printMatrix(w io.Writer, h *models.Heatmap) {
	fmt.Fprintf(w, "\n%s\n%8s", h.Title, "")
	for _, l := range h.Matrix.Labels {
		fmt.Fprintf(w, "%8s", l)
	}
	fmt.Fprintln(w)
	for i, l := range h.Matrix.Labels {
		fmt.Fprintf(w, "%8s", l)
		for _, v := range h.Matrix.Values[i] {
			fmt.Fprintf(w, "%8s", cell(v))
		}
		fmt.Fprintln(w)
	}
}

func printSeasonality(w io.Writer, s *models.Seasonality) {
	fmt.Fprintf(w, "\n%s\n%8s", s.Title, "")
	for _, d := range models.Weekdays {
		fmt.Fprintf(w, "%8s", d.String()[:3])
	}
	fmt.Fprintln(w)
	for _, p := range s.Report.Profiles {
		fmt.Fprintf(w, "%8s", p.Symbol)
		for _, v := range p.Means {
			fmt.Fprintf(w, "%8s", cell(v))
		}
		fmt.Fprintln(w)
	}
	for _, sk := range s.Report.Skipped {
		fmt.Fprintf(w, "excluded %s: %s\n", sk.Source, sk.Reason)
	}
}

func cell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
