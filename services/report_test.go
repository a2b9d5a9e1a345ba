package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movie-pipeline/render"
)

type fakeRenderer struct {
	failTitle string
	composed  []render.Page
}

func (f *fakeRenderer) RenderChart(_ context.Context, c render.Chart) ([]byte, error) {
	if c.Title == f.failTitle {
		return nil, errors.New("boom")
	}
	if err := render.Validate(c); err != nil {
		return nil, err
	}
	return []byte("png:" + c.Title), nil
}

func (f *fakeRenderer) Compose(_ context.Context, title string, pages []render.Page) ([]byte, error) {
	f.composed = pages
	return []byte("%PDF " + title), nil
}

func (f *fakeRenderer) Close() {}

func TestReportBuildWritesImagesAndPDF(t *testing.T) {
	dir := t.TempDir()
	fr := &fakeRenderer{failTitle: "Revenue vs Vote"}
	movies := scenarioMovies()
	for i := range movies {
		movies[i].ProductionCountries = `[{"iso_3166_1": "FR", "name": "France"}]`
	}
	report := NewAggregator(newTestLogger()).Aggregate("run", movies)

	pdfPath := filepath.Join(dir, "movie_analysis_report.pdf")
	if err := NewReportBuilder(fr, dir, newTestLogger()).Build(context.Background(), report, pdfPath); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(fr.composed) != len(Figures(report))-1 {
		t.Errorf("composed pages: got %d, want %d", len(fr.composed), len(Figures(report))-1)
	}
	if fr.composed[0].Title != "Movies Released Per Year" {
		t.Errorf("first page: got %q", fr.composed[0].Title)
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil || !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("pdf not written: %v %q", err, data)
	}
	if _, err := os.Stat(filepath.Join(dir, "movies_per_year.png")); err != nil {
		t.Errorf("chart image missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "revenue_vs_vote.png")); !os.IsNotExist(err) {
		t.Error("failed chart should not be written")
	}
}

func TestFiguresCapitalSeries(t *testing.T) {
	report := NewAggregator(newTestLogger()).Aggregate("run", scenarioMovies())
	var capital render.Chart
	for _, f := range Figures(report) {
		if f.File == "capital_of_movies.png" {
			capital = f.Chart
		}
	}
	if len(capital.Series) != 3 || strings.Join(capital.Labels, ",") != "2000,2001" {
		t.Fatalf("capital chart: %+v", capital)
	}
	if capital.Series[2].Name != "profit" || capital.Series[2].Values[0] != 190 {
		t.Errorf("profit series: %+v", capital.Series[2])
	}
}
