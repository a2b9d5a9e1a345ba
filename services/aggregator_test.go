package services

import (
	"fmt"
	"testing"

	"movie-pipeline/models"
)

func countries(names ...string) string {
	s := "["
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("{'iso_3166_1': 'XX', 'name': '%s'}", n)
	}
	return s + "]"
}

func scenarioMovies() []models.Movie {
	return []models.Movie{
		{Title: "A", ReleaseYear: 2000, Budget: 100, Revenue: 300, Profit: 200, Genres: actionGenres},
		{Title: "B", ReleaseYear: 2000, Budget: 50, Revenue: 40, Profit: -10, Genres: "[{'id':35,'name':'Comedy'}]"},
		{Title: "C", ReleaseYear: 2001, Budget: 200, Revenue: 200, Profit: 0, Genres: "broken"},
	}
}

func TestYearlyAggregates(t *testing.T) {
	got := YearlyAggregates(scenarioMovies())
	if len(got) != 2 {
		t.Fatalf("years: got %d, want 2", len(got))
	}
	want := models.YearAggregate{Year: 2000, Count: 2, Budget: 150, Revenue: 340, Profit: 190}
	if got[0] != want {
		t.Errorf("2000: got %+v, want %+v", got[0], want)
	}
	if got[1].Year != 2001 || got[1].Count != 1 {
		t.Errorf("2001: got %+v", got[1])
	}
}

func TestGenreProfitSumsExplodedRows(t *testing.T) {
	movies := []models.Movie{
		{Title: "X", Profit: 50, Genres: "[{'id':1,'name':'Action'}]"},
		{Title: "Y", Profit: 30, Genres: "[{'id':1,'name':'Action'}, {'id':2,'name':'Drama'}]"},
		{Title: "Z", Profit: 99, Genres: "{{not a list"},
	}
	lists := ExtractCategories(movies, newTestLogger())
	got := ExplodeSum(movies, lists.Genres, profitOf)

	want := []models.CategoryAggregate{{Name: "Action", Value: 80}, {Name: "Drama", Value: 30}}
	if len(got) != len(want) {
		t.Fatalf("genres: got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("genre %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCountryBucketing(t *testing.T) {
	var movies []models.Movie
	for i := 0; i < 12; i++ {
		movies = append(movies, models.Movie{Title: fmt.Sprint(i), ProductionCountries: countries(fmt.Sprintf("Small%02d", i))})
	}
	for i := 0; i < 15; i++ {
		movies = append(movies, models.Movie{Title: "x", ProductionCountries: countries("CountryX")})
	}

	report := NewAggregator(newTestLogger()).Aggregate("run", movies)
	want := []models.CategoryAggregate{{Name: "CountryX", Value: 15}, {Name: OthersBucket, Value: 12}}
	if len(report.CountryCount) != len(want) {
		t.Fatalf("buckets: got %+v, want %+v", report.CountryCount, want)
	}
	for i := range want {
		if report.CountryCount[i] != want[i] {
			t.Errorf("bucket %d: got %+v, want %+v", i, report.CountryCount[i], want[i])
		}
	}
}

func TestCountryBucketingConservesCount(t *testing.T) {
	var movies []models.Movie
	sizes := map[string]int{"A": 30, "B": 11, "C": 10, "D": 3}
	for name, n := range sizes {
		for i := 0; i < n; i++ {
			movies = append(movies, models.Movie{ProductionCountries: countries(name, "A")})
		}
	}

	report := NewAggregator(newTestLogger()).Aggregate("run", movies)

	var total float64
	for i, b := range report.CountryCount {
		total += b.Value
		if b.Name != OthersBucket && b.Value <= CountryBucketThreshold {
			t.Errorf("bucket %s has count %v <= threshold", b.Name, b.Value)
		}
		if b.Name == OthersBucket && i != len(report.CountryCount)-1 {
			t.Error("Others must be the last bucket")
		}
	}
	// every movie lists two countries (A twice for A's own movies).
	if total != float64(2*len(movies)) {
		t.Errorf("bucket total %v != exploded rows %d", total, 2*len(movies))
	}
	if report.CountryCount[0].Name != "A" || report.CountryCount[1].Name != "B" {
		t.Errorf("buckets not ordered by count: %+v", report.CountryCount)
	}
}

func TestBucketSmallWithoutSmallCountries(t *testing.T) {
	got := BucketSmall([]models.CategoryAggregate{{Name: "US", Value: 40}}, CountryBucketThreshold)
	if len(got) != 1 || got[0].Name != "US" {
		t.Errorf("no Others bucket expected, got %+v", got)
	}
}

func TestAggregateScatterPassThrough(t *testing.T) {
	movies := scenarioMovies()
	movies[0].Runtime, movies[0].VoteAverage = 120, 7.5
	report := NewAggregator(newTestLogger()).Aggregate("run", movies)

	if len(report.RuntimeVote) != 3 || len(report.RevenueVote) != 3 {
		t.Fatalf("scatter lengths: %d, %d", len(report.RuntimeVote), len(report.RevenueVote))
	}
	if report.RuntimeVote[0] != (models.Point{X: 120, Y: 7.5}) {
		t.Errorf("runtime/vote: got %+v", report.RuntimeVote[0])
	}
	if report.RevenueVote[1] != (models.Point{X: 40, Y: 0}) {
		t.Errorf("revenue/vote: got %+v", report.RevenueVote[1])
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	report := NewAggregator(newTestLogger()).Aggregate("run", nil)
	if report.Movies != 0 || len(report.Yearly) != 0 || len(report.CountryCount) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Drama", 26, "Drama"},
		{"Côte d'Ivoire", 13, "Côte d'Ivoire"},
		{"Côte d'Ivoire", 7, "Côte..."},
		{"日本語のタイトルです", 6, "日本語..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q; want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
