package services

import (
	"fmt"
	"strconv"
	"strings"

	"movie-pipeline/models"
	"movie-pipeline/utils"
)

// StatusReleased is the only status kept by the Transformer.
const StatusReleased = "Released"

// AnalysisColumns are projected from the cleaned table, in output order.
var AnalysisColumns = []string{
	"title", "release_date", "genres", "production_companies", "production_countries",
	"revenue", "budget", "runtime", "vote_average",
}

// ProcessedHeader is the column layout of the processed table.
var ProcessedHeader = []string{
	"title", "genres", "production_companies", "production_countries",
	"revenue", "budget", "runtime", "vote_average", "profit", "release_year",
}

// Transformer derives the canonical analysis table from the cleaned one.
type Transformer struct {
	logger *utils.Logger
}

// NewTransformer creates a Transformer with the given logger.
func NewTransformer(logger *utils.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform keeps released movies, projects the analysis columns, drops rows
// with a null or unparsable value and derives profit and release_year. The
// output depends only on the input table.
func (t *Transformer) Transform(cleaned *models.Table) (*models.Table, []models.Movie, error) {
	statusIdx := cleaned.Index("status")
	if statusIdx < 0 {
		return nil, nil, fmt.Errorf("transformer: %q: %w", "status", ErrMissingRequiredColumn)
	}
	cols := make(map[string]int, len(AnalysisColumns))
	for _, name := range AnalysisColumns {
		idx := cleaned.Index(name)
		if idx < 0 {
			return nil, nil, fmt.Errorf("transformer: %q: %w", name, ErrMissingRequiredColumn)
		}
		cols[name] = idx
	}

	movies := make([]models.Movie, 0, len(cleaned.Rows))
	var unreleased, incomplete int
	for _, row := range cleaned.Rows {
		if row[statusIdx] != StatusReleased {
			unreleased++
			continue
		}
		m, ok := movieFromCleaned(row, cols)
		if !ok {
			incomplete++
			continue
		}
		movies = append(movies, m)
	}

	t.logger.Info("[transformer] Processed %d → %d movies (not released: %d, incomplete: %d)",
		len(cleaned.Rows), len(movies), unreleased, incomplete)
	return MoviesTable(movies), movies, nil
}

func movieFromCleaned(row []string, cols map[string]int) (models.Movie, bool) {
	get := func(name string) string { return strings.TrimSpace(row[cols[name]]) }
	for name := range cols {
		if get(name) == "" {
			return models.Movie{}, false
		}
	}

	date, ok := ParseDate(get("release_date"))
	if !ok {
		return models.Movie{}, false
	}

	var m models.Movie
	var err error
	nums := []struct {
		col string
		dst *float64
	}{
		{"revenue", &m.Revenue},
		{"budget", &m.Budget},
		{"runtime", &m.Runtime},
		{"vote_average", &m.VoteAverage},
	}
	for _, n := range nums {
		if *n.dst, err = strconv.ParseFloat(get(n.col), 64); err != nil {
			return models.Movie{}, false
		}
	}

	m.Title = row[cols["title"]]
	m.Genres = row[cols["genres"]]
	m.ProductionCompanies = row[cols["production_companies"]]
	m.ProductionCountries = row[cols["production_countries"]]
	m.Profit = m.Revenue - m.Budget
	m.ReleaseYear = date.Year()
	return m, true
}

// MoviesTable renders movies in the processed table layout.
func MoviesTable(movies []models.Movie) *models.Table {
	t := &models.Table{Header: append([]string(nil), ProcessedHeader...), Rows: make([][]string, 0, len(movies))}
	for _, m := range movies {
		t.Rows = append(t.Rows, []string{
			m.Title, m.Genres, m.ProductionCompanies, m.ProductionCountries,
			formatNumber(m.Revenue), formatNumber(m.Budget), formatNumber(m.Runtime),
			formatNumber(m.VoteAverage), formatNumber(m.Profit), strconv.Itoa(m.ReleaseYear),
		})
	}
	return t
}

// LoadMovies parses a processed table back into movies.
func LoadMovies(t *models.Table) ([]models.Movie, error) {
	idx := make(map[string]int, len(ProcessedHeader))
	for _, name := range ProcessedHeader {
		i := t.Index(name)
		if i < 0 {
			return nil, fmt.Errorf("processed table: %q: %w", name, ErrMissingRequiredColumn)
		}
		idx[name] = i
	}

	movies := make([]models.Movie, 0, len(t.Rows))
	for n, row := range t.Rows {
		m := models.Movie{
			Title:               row[idx["title"]],
			Genres:              row[idx["genres"]],
			ProductionCompanies: row[idx["production_companies"]],
			ProductionCountries: row[idx["production_countries"]],
		}
		nums := []struct {
			col string
			dst *float64
		}{
			{"revenue", &m.Revenue},
			{"budget", &m.Budget},
			{"runtime", &m.Runtime},
			{"vote_average", &m.VoteAverage},
			{"profit", &m.Profit},
		}
		for _, f := range nums {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx[f.col]]), 64)
			if err != nil {
				return nil, fmt.Errorf("processed table: row %d %s: %w", n+1, f.col, err)
			}
			*f.dst = v
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[idx["release_year"]]))
		if err != nil {
			return nil, fmt.Errorf("processed table: row %d release_year: %w", n+1, err)
		}
		m.ReleaseYear = year
		movies = append(movies, m)
	}
	return movies, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
