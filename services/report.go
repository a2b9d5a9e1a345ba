package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"movie-pipeline/models"
	"movie-pipeline/render"
	"movie-pipeline/utils"
)

// ReportTitle heads the composed PDF.
const ReportTitle = "Movie Data Analysis Report"

// Figure pairs a chart with the image file it is saved as.
type Figure struct {
	File  string
	Chart render.Chart
}

// ReportBuilder renders the report figures and assembles the PDF.
type ReportBuilder struct {
	renderer render.Renderer
	outDir   string
	logger   *utils.Logger
}

// NewReportBuilder creates a ReportBuilder writing images next to the PDF in outDir.
func NewReportBuilder(renderer render.Renderer, outDir string, logger *utils.Logger) *ReportBuilder {
	return &ReportBuilder{renderer: renderer, outDir: outDir, logger: logger}
}

// Figures lays out the report's charts in document order.
func Figures(r *models.Report) []Figure {
	years := make([]string, len(r.Yearly))
	counts := make([]float64, len(r.Yearly))
	budget := make([]float64, len(r.Yearly))
	revenue := make([]float64, len(r.Yearly))
	profit := make([]float64, len(r.Yearly))
	for i, y := range r.Yearly {
		years[i] = strconv.Itoa(y.Year)
		counts[i] = float64(y.Count)
		budget[i], revenue[i], profit[i] = y.Budget, y.Revenue, y.Profit
	}

	return []Figure{
		{File: "movies_per_year.png", Chart: render.Chart{
			Kind: render.KindBar, Title: "Movies Released Per Year", YLabel: "numbers",
			Labels: years, Series: []render.Series{{Values: counts, Color: "#800080"}},
		}},
		{File: "capital_of_movies.png", Chart: render.Chart{
			Kind: render.KindLine, Title: "Capital of Movies", XLabel: "Year", YLabel: "Capital ($)",
			Labels: years, Series: []render.Series{
				{Name: "budget", Values: budget, Color: "#ff7f50"},
				{Name: "revenue", Values: revenue, Color: "#2ca02c"},
				{Name: "profit", Values: profit, Color: "#1f77b4"},
			},
		}},
		{File: "genre_pie_chart.png", Chart: categoryChart(render.KindPie, "Proportion of Movie Genres", r.GenreCount)},
		{File: "genre_profit.png", Chart: categoryChart(render.KindBar, "Profit by Genre", r.GenreProfit)},
		{File: "runtime_vs_vote.png", Chart: render.Chart{
			Kind: render.KindScatter, Title: "Runtime vs Vote", XLabel: "runtime", YLabel: "average vote",
			Series: []render.Series{{Points: r.RuntimeVote}},
		}},
		{File: "revenue_vs_vote.png", Chart: render.Chart{
			Kind: render.KindScatter, Title: "Revenue vs Vote", XLabel: "revenue", YLabel: "average vote",
			Series: []render.Series{{Points: r.RevenueVote}},
		}},
		{File: "country_pie_chart.png", Chart: categoryChart(render.KindPie, "Production Countries", r.CountryCount)},
	}
}

func categoryChart(kind render.Kind, title string, aggs []models.CategoryAggregate) render.Chart {
	labels := make([]string, len(aggs))
	values := make([]float64, len(aggs))
	for i, a := range aggs {
		labels[i], values[i] = a.Name, a.Value
	}
	return render.Chart{Kind: kind, Title: title, Labels: labels, Series: []render.Series{{Values: values}}}
}

// Build renders every figure, saves the images and writes the PDF to pdfPath.
// A figure that fails to render is logged and left out of the document.
func (b *ReportBuilder) Build(ctx context.Context, r *models.Report, pdfPath string) error {
	if err := os.MkdirAll(b.outDir, 0755); err != nil {
		return fmt.Errorf("report: create output dir: %w", err)
	}

	var pages []render.Page
	for _, fig := range Figures(r) {
		png, err := b.renderer.RenderChart(ctx, fig.Chart)
		if err != nil {
			b.logger.Error("[report] Chart %q failed: %v", fig.Chart.Title, err)
			continue
		}
		path := filepath.Join(b.outDir, fig.File)
		if err := os.WriteFile(path, png, 0644); err != nil {
			return fmt.Errorf("report: write %s: %w", path, err)
		}
		pages = append(pages, render.Page{Title: fig.Chart.Title, PNG: png})
		b.logger.Debug("[report] Saved %s", path)
	}

	pdf, err := b.renderer.Compose(ctx, ReportTitle, pages)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := os.WriteFile(pdfPath, pdf, 0644); err != nil {
		return fmt.Errorf("report: write %s: %w", pdfPath, err)
	}

	b.logger.Info("[report] PDF report generated: %s (%d charts)", pdfPath, len(pages))
	return nil
}
