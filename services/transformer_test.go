package services

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"movie-pipeline/models"
)

const actionGenres = "[{'id': 28, 'name': 'Action'}]"
const usCountry = `[{"iso_3166_1": "US", "name": "United States of America"}]`

func cleanedTable() *models.Table {
	return &models.Table{
		Header: []string{"title", "release_date", "genres", "production_companies", "production_countries",
			"revenue", "budget", "runtime", "vote_average", "status", "popularity"},
		Rows: [][]string{
			{"A", "2000-05-01", actionGenres, "[]", usCountry, "300", "100", "120", "7.5", "Released", "9.1"},
			{"B", "2000-09-09", actionGenres, "[]", usCountry, "40", "50", "95", "5.0", "Released", "3.3"},
			{"C", "2001-01-01", "[]", "[]", "[]", "200", "200", "101", "6.1", "Released", "1.0"},
			{"D", "2002-01-01", actionGenres, "[]", usCountry, "10", "5", "90", "6.0", "Post Production", "1.0"},
			{"E", "2002-01-01", actionGenres, "[]", usCountry, "10", "5", "90", "6.0", "released", "1.0"},
			{"F", "2003-01-01", "", "[]", usCountry, "10", "5", "90", "6.0", "Released", "1.0"},
			{"G", "2003-01-01", "[]", "[]", usCountry, "lots", "5", "90", "6.0", "Released", "1.0"},
		},
	}
}

func TestTransformKeepsReleasedCompleteRows(t *testing.T) {
	table, movies, err := NewTransformer(newTestLogger()).Transform(cleanedTable())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	var titles []string
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	if strings.Join(titles, ",") != "A,B,C" {
		t.Errorf("titles: got %v, want A,B,C", titles)
	}
	if !reflect.DeepEqual(table.Header, ProcessedHeader) {
		t.Errorf("header: got %v", table.Header)
	}
	if got := strings.Join(table.Rows[1], "|"); got != "B|"+actionGenres+"|[]|"+usCountry+"|40|50|95|5|-10|2000" {
		t.Errorf("row B: got %q", got)
	}
}

func TestTransformProfitIsRevenueMinusBudget(t *testing.T) {
	_, movies, err := NewTransformer(newTestLogger()).Transform(cleanedTable())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for _, m := range movies {
		if m.Profit != m.Revenue-m.Budget {
			t.Errorf("%s: profit %v != %v - %v", m.Title, m.Profit, m.Revenue, m.Budget)
		}
	}
	if movies[0].ReleaseYear != 2000 || movies[2].ReleaseYear != 2001 {
		t.Errorf("release years: got %d, %d", movies[0].ReleaseYear, movies[2].ReleaseYear)
	}
}

func TestTransformIsIdempotent(t *testing.T) {
	raw := &models.Table{
		Header: append(append([]string(nil), cleanedTable().Header...), "tagline"),
	}
	for _, r := range cleanedTable().Rows {
		raw.Rows = append(raw.Rows, append(append([]string(nil), r...), ""))
	}

	run := func() *models.Table {
		cleaned, err := NewCleaner(newTestLogger()).Clean(raw)
		if err != nil {
			t.Fatalf("Clean: %v", err)
		}
		out, _, err := NewTransformer(newTestLogger()).Transform(cleaned)
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}
		return out
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Error("transform(clean(raw)) differs between runs")
	}
}

func TestTransformMissingStatusIsFatal(t *testing.T) {
	table := &models.Table{Header: []string{"title", "release_date"}}
	if _, _, err := NewTransformer(newTestLogger()).Transform(table); !errors.Is(err, ErrMissingRequiredColumn) {
		t.Errorf("expected ErrMissingRequiredColumn, got %v", err)
	}
}

func TestLoadMoviesRoundTrip(t *testing.T) {
	table, movies, err := NewTransformer(newTestLogger()).Transform(cleanedTable())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	loaded, err := LoadMovies(table)
	if err != nil {
		t.Fatalf("LoadMovies: %v", err)
	}
	if !reflect.DeepEqual(loaded, movies) {
		t.Errorf("loaded movies differ:\n got %+v\nwant %+v", loaded, movies)
	}
}

func TestLoadMoviesRejectsBadNumbers(t *testing.T) {
	table := MoviesTable([]models.Movie{{Title: "X", ReleaseYear: 2000}})
	table.Rows[0][len(ProcessedHeader)-1] = "twenty"
	if _, err := LoadMovies(table); err == nil {
		t.Error("expected error for non-numeric release_year")
	}
}
