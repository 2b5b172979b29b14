package charts

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	gocharts "github.com/vicanso/go-charts/v2"

	"CoinScope/internal/domain/models"
	"CoinScope/internal/domain/service"
)

const (
	dateLayout = "2006-01-02"
	maxLabels  = 8
)

var errNothingToDraw = errors.New("nothing to draw")

// Plotter renders artifacts to PNG with go-charts.
type Plotter struct {
	width  int
	height int
}

type Option func(*Plotter)

func WithSize(width, height int) Option {
	return func(p *Plotter) {
		if width > 0 {
			p.width = width
		}
		if height > 0 {
			p.height = height
		}
	}
}

var _ service.Plotter = (*Plotter)(nil)

func NewPlotter(opts ...Option) *Plotter {
	p := &Plotter{width: 900, height: 500}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Line draws every column of the aligned set against the shared date axis.
// Missing values leave gaps.
func (p *Plotter) Line(c *models.LineChart) ([]byte, error) {
	if c == nil || c.Set.Empty() || len(c.Set.Columns) == 0 {
		return nil, fmt.Errorf("line chart: %w", errNothingToDraw)
	}
	x := make([]string, c.Set.Len())
	for i, d := range c.Set.Dates {
		x[i] = d.Format(dateLayout)
	}
	values := make([][]float64, len(c.Set.Columns))
	for i, col := range c.Set.Columns {
		values[i] = nullify(col)
	}
	yMin, yMax, ok := bounds(c.Set.Columns)
	if !ok {
		return nil, fmt.Errorf("line chart %q: %w", c.Title, errNothingToDraw)
	}
	if c.Kind == models.ChartBar && yMin > 0 {
		yMin = 0
	}

	opts := []gocharts.OptionFunc{
		gocharts.TitleTextOptionFunc(c.Title, c.Subtitle),
		gocharts.XAxisOptionFunc(gocharts.XAxisOption{Data: x, BoundaryGap: gocharts.FalseFlag(), SplitNumber: splitNumber(len(x))}),
		gocharts.YAxisOptionFunc(gocharts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		gocharts.ThemeOptionFunc(gocharts.ThemeLight),
		gocharts.WidthOptionFunc(p.width),
		gocharts.HeightOptionFunc(p.height),
	}
	if len(c.Set.Names) > 1 {
		opts = append(opts, gocharts.LegendOptionFunc(gocharts.LegendOption{Data: c.Set.Names, Top: gocharts.PositionTop}))
	}

	var painter *gocharts.Painter
	var err error
	if c.Kind == models.ChartBar {
		painter, err = gocharts.BarRender(zeroMissing(values), opts...)
	} else {
		painter, err = gocharts.LineRender(values, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", c.Title, err)
	}
	return painter.Bytes()
}

// Heatmap draws the correlation matrix as an annotated grid.
func (p *Plotter) Heatmap(h *models.Heatmap) ([]byte, error) {
	if h == nil || h.Matrix.Size() == 0 {
		return nil, fmt.Errorf("heatmap: %w", errNothingToDraw)
	}
	header := append([]string{fmt.Sprintf("n=%d", h.Dates)}, h.Matrix.Labels...)
	rows := make([][]string, h.Matrix.Size())
	for i, label := range h.Matrix.Labels {
		row := make([]string, 0, len(header))
		row = append(row, label)
		for _, v := range h.Matrix.Values[i] {
			row = append(row, formatCell(v))
		}
		rows[i] = row
	}
	painter, err := gocharts.TableRender(header, rows)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", h.Title, err)
	}
	return painter.Bytes()
}

// Seasonality draws one bar series per asset over Monday..Sunday.
// Weekdays without samples are drawn at zero.
func (p *Plotter) Seasonality(s *models.Seasonality) ([]byte, error) {
	if s == nil || len(s.Report.Profiles) == 0 {
		return nil, fmt.Errorf("seasonality: %w", errNothingToDraw)
	}
	x := make([]string, len(models.Weekdays))
	for i, d := range models.Weekdays {
		x[i] = d.String()[:3]
	}
	names := make([]string, len(s.Report.Profiles))
	values := make([][]float64, len(s.Report.Profiles))
	for i, prof := range s.Report.Profiles {
		names[i] = prof.Symbol
		values[i] = prof.Means[:]
	}
	yMin, yMax, ok := bounds(values)
	if !ok {
		return nil, fmt.Errorf("seasonality: %w", errNothingToDraw)
	}
	yMin, yMax = math.Min(yMin, 0), math.Max(yMax, 0)

	subtitle := ""
	if n := len(s.Report.Skipped); n > 0 {
		subtitle = strconv.Itoa(n) + " asset(s) without valid volume excluded"
	}
	painter, err := gocharts.BarRender(zeroMissing(values),
		gocharts.TitleTextOptionFunc(s.Title, subtitle),
		gocharts.XAxisOptionFunc(gocharts.XAxisOption{Data: x}),
		gocharts.YAxisOptionFunc(gocharts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		gocharts.LegendOptionFunc(gocharts.LegendOption{Data: names, Top: gocharts.PositionTop}),
		gocharts.ThemeOptionFunc(gocharts.ThemeLight),
		gocharts.WidthOptionFunc(p.width),
		gocharts.HeightOptionFunc(p.height),
	)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", s.Title, err)
	}
	return painter.Bytes()
}

func nullify(col []float64) []float64 {
	out := make([]float64, len(col))
	for i, v := range col {
		if models.IsMissing(v) || math.IsInf(v, 0) {
			out[i] = gocharts.GetNullValue()
			continue
		}
		out[i] = v
	}
	return out
}

func zeroMissing(values [][]float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, col := range values {
		out[i] = make([]float64, len(col))
		for j, v := range col {
			if models.IsMissing(v) || math.IsInf(v, 0) || v == gocharts.GetNullValue() {
				continue
			}
			out[i][j] = v
		}
	}
	return out
}

// bounds returns the padded finite range of all columns.
func bounds(cols [][]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, col := range cols {
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return lo - pad, hi + pad, true
}

func splitNumber(n int) int {
	if n <= maxLabels {
		return n
	}
	return maxLabels
}

func formatCell(v float64) string {
	if models.IsMissing(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
