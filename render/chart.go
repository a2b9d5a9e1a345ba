// Package render turns aggregates into chart images and composes them into a
// PDF document.
package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"movie-pipeline/models"
)

// Kind selects the chart shape.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindPie     Kind = "pie"
	KindScatter Kind = "scatter"
)

// Series is one data set of a chart. Bar, line and pie charts use Values
// aligned with Chart.Labels; scatter charts use Points. Color is a hex
// triplet such as "#800080".
type Series struct {
	Name   string
	Color  string
	Values []float64
	Points []models.Point
}

// Chart describes one figure of the report.
type Chart struct {
	Kind   Kind
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Series []Series
}

const (
	width  = 1100
	height = 520

	// maxLabels bounds the category labels drawn under bar and line charts.
	maxLabels = 40
)

var palette = []string{
	"#6a3d9a", "#ff7f50", "#2ca02c", "#1f77b4", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf", "#ffbb78",
}

// Validate checks that c has data of the shape its kind needs.
func Validate(c Chart) error {
	switch c.Kind {
	case KindBar, KindPie:
		if len(c.Series) != 1 || len(c.Series[0].Values) != len(c.Labels) {
			return fmt.Errorf("render: %s chart %q needs one series aligned with labels", c.Kind, c.Title)
		}
		if len(c.Labels) == 0 {
			return fmt.Errorf("render: %s chart %q has no data", c.Kind, c.Title)
		}
		if c.Kind == KindPie && !anyPositive(c.Series[0].Values) {
			return fmt.Errorf("render: pie chart %q has no positive values", c.Title)
		}
	case KindLine:
		if len(c.Series) == 0 || len(c.Labels) == 0 {
			return fmt.Errorf("render: line chart %q has no data", c.Title)
		}
		for _, s := range c.Series {
			if len(s.Values) != len(c.Labels) {
				return fmt.Errorf("render: line series %q not aligned with labels", s.Name)
			}
		}
	case KindScatter:
		n := 0
		for _, s := range c.Series {
			n += len(s.Points)
		}
		if n == 0 {
			return fmt.Errorf("render: scatter chart %q has no points", c.Title)
		}
	default:
		return fmt.Errorf("render: unknown chart kind %q", c.Kind)
	}
	return nil
}

// PNG draws c with go-chart.
func PNG(c Chart) ([]byte, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	var err error
	switch c.Kind {
	case KindBar:
		err = barChart(c).Render(chart.PNG, &buf)
	case KindPie:
		err = pieChart(c).Render(chart.PNG, &buf)
	case KindLine:
		err = lineChart(c).Render(chart.PNG, &buf)
	case KindScatter:
		err = scatterChart(c).Render(chart.PNG, &buf)
	}
	if err != nil {
		return nil, fmt.Errorf("render: chart %q: %w", c.Title, err)
	}
	return buf.Bytes(), nil
}

func barChart(c Chart) chart.BarChart {
	vals := c.Series[0].Values
	fill := color(c.Series[0], 0)
	every := labelEvery(len(vals))

	bars := make([]chart.Value, len(vals))
	negative := false
	for i, v := range vals {
		label := ""
		if i%every == 0 {
			label = c.Labels[i]
		}
		bars[i] = chart.Value{Label: label, Value: v, Style: chart.Style{FillColor: fill, StrokeColor: fill}}
		negative = negative || v < 0
	}

	slot := (width - 120) / len(vals)
	barWidth := int(math.Max(1, float64(slot)*0.8))

	return chart.BarChart{
		Title:        c.Title,
		Width:        width,
		Height:       height,
		Background:   chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		BarWidth:     barWidth,
		BarSpacing:   int(math.Max(1, float64(slot-barWidth))),
		UseBaseValue: negative,
		BaseValue:    0,
		YAxis:        chart.YAxis{Name: c.YLabel, ValueFormatter: tick},
		Bars:         bars,
	}
}

func pieChart(c Chart) chart.PieChart {
	var total float64
	for _, v := range c.Series[0].Values {
		if v > 0 {
			total += v
		}
	}

	values := make([]chart.Value, 0, len(c.Labels))
	for i, v := range c.Series[0].Values {
		if v <= 0 {
			continue
		}
		hex := palette[i%len(palette)]
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", c.Labels[i], v/total*100),
			Value: v,
			Style: chart.Style{FillColor: hexColor(hex)},
		})
	}

	return chart.PieChart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
}

func lineChart(c Chart) chart.Chart {
	xs := make([]float64, len(c.Labels))
	for i := range xs {
		xs[i] = float64(i)
	}

	var all []float64
	series := make([]chart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		all = append(all, s.Values...)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   chart.Style{StrokeColor: color(s, i), StrokeWidth: 3},
			XValues: xs,
			YValues: s.Values,
		})
	}

	every := labelEvery(len(c.Labels))
	var ticks []chart.Tick
	for i, l := range c.Labels {
		if i%every == 0 {
			ticks = append(ticks, chart.Tick{Value: xs[i], Label: l})
		}
	}

	xlo, xhi := extent(xs, false)
	ylo, yhi := extent(all, true)
	graph := xyChart(c, series, xlo, xhi, ylo, yhi)
	graph.XAxis.Ticks = ticks
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func scatterChart(c Chart) chart.Chart {
	var allX, allY []float64
	series := make([]chart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j], ys[j] = p.X, p.Y
		}
		allX, allY = append(allX, xs...), append(allY, ys...)
		if len(xs) == 0 {
			continue
		}
		col := color(s, i)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: col.WithAlpha(160)},
			XValues: xs,
			YValues: ys,
		})
	}

	xlo, xhi := extent(allX, false)
	ylo, yhi := extent(allY, false)
	return xyChart(c, series, xlo, xhi, ylo, yhi)
}

func xyChart(c Chart, series []chart.Series, xlo, xhi, ylo, yhi float64) chart.Chart {
	return chart.Chart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			Range:          &chart.ContinuousRange{Min: xlo, Max: xhi},
			ValueFormatter: tick,
		},
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			Range:          &chart.ContinuousRange{Min: ylo, Max: yhi},
			ValueFormatter: tick,
		},
		Series: series,
	}
}

// extent returns a non-degenerate [lo, hi] covering vals, optionally forced to include zero.
func extent(vals []float64, withZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	if withZero {
		lo, hi = 0, 0
	}
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 1
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func anyPositive(vals []float64) bool {
	for _, v := range vals {
		if v > 0 {
			return true
		}
	}
	return false
}

func labelEvery(n int) int {
	return int(math.Max(1, math.Ceil(float64(n)/maxLabels)))
}

func tick(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	a := math.Abs(f)
	switch {
	case a >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.1fK", f/1e3)
	case a >= 10 || f == 0:
		return fmt.Sprintf("%.0f", f)
	default:
		return fmt.Sprintf("%.1f", f)
	}
}

func color(s Series, i int) drawing.Color {
	if s.Color != "" {
		return hexColor(s.Color)
	}
	return hexColor(palette[i%len(palette)])
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
