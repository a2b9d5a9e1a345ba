// Package dashboard serves interactive views over the processed movie table.
package dashboard

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"movie-pipeline/metrics"
	"movie-pipeline/models"
	"movie-pipeline/services"
	"movie-pipeline/storage"
	"movie-pipeline/utils"
)

// ErrNoProcessedTable means the dashboard was started before the pipeline produced its output.
var ErrNoProcessedTable = errors.New("processed table not found, run the pipeline first")

// TopN is the size of the most-profitable view.
const TopN = 10

// Context is the shared, read-only state every view is computed from. It is
// built once at startup and never mutated.
type Context struct {
	movies            []models.Movie
	lists             services.CategoryLists
	DistinctGenres    []string
	DistinctCountries []string
	YearMin           int
	YearMax           int
}

// NewContext indexes movies for filtering.
func NewContext(movies []models.Movie, logger *utils.Logger) *Context {
	ctx := &Context{
		movies: movies,
		lists:  services.ExtractCategories(movies, logger),
	}
	ctx.DistinctGenres = distinct(ctx.lists.Genres)
	ctx.DistinctCountries = distinct(ctx.lists.Countries)

	for i, m := range movies {
		if i == 0 || m.ReleaseYear < ctx.YearMin {
			ctx.YearMin = m.ReleaseYear
		}
		if i == 0 || m.ReleaseYear > ctx.YearMax {
			ctx.YearMax = m.ReleaseYear
		}
	}
	return ctx
}

// LoadContext reads the processed table at path.
func LoadContext(path string, logger *utils.Logger) (*Context, error) {
	table, err := storage.ReadTable(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("dashboard: %s: %w", path, ErrNoProcessedTable)
	}
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	movies, err := services.LoadMovies(table)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return NewContext(movies, logger), nil
}

// Len returns the number of movies in the table.
func (c *Context) Len() int { return len(c.movies) }

// DefaultFilter selects every movie.
func (c *Context) DefaultFilter() models.FilterState {
	return models.FilterState{
		YearMin: c.YearMin,
		YearMax: c.YearMax,
		Genre:   models.AllValues,
		Country: models.AllValues,
	}
}

// View computes the four dashboard views for f. It reads c only.
func View(c *Context, f models.FilterState) models.Views {
	var (
		filtered  []models.Movie
		genres    [][]string
		countries [][]string
	)
	for i, m := range c.movies {
		if m.ReleaseYear < f.YearMin || m.ReleaseYear > f.YearMax {
			continue
		}
		if !matches(f.Genre, c.lists.Genres[i]) || !matches(f.Country, c.lists.Countries[i]) {
			continue
		}
		filtered = append(filtered, m)
		genres = append(genres, c.lists.Genres[i])
		countries = append(countries, c.lists.Countries[i])
	}

	views := models.Views{
		Scatter:           make([]models.ScatterPoint, 0, len(filtered)),
		Top10Profit:       topByProfit(filtered, TopN),
		GenreSunburst:     services.ExplodeSum(filtered, genres, func(m models.Movie) float64 { return m.Profit }),
		CountryChoropleth: services.SortByValueDesc(services.ExplodeSum(filtered, countries, func(models.Movie) float64 { return 1 })),
	}
	for _, m := range filtered {
		views.Scatter = append(views.Scatter, models.ScatterPoint{
			Title:              m.Title,
			Revenue:            m.Revenue,
			VoteAverage:        m.VoteAverage,
			ProfitabilityRatio: ProfitabilityRatio(m),
			Verdict:            Verdict(m),
		})
	}
	return views
}

// Verdict labels a movie a Hit when it earned more than twice its budget.
func Verdict(m models.Movie) string {
	if m.Revenue > 2*m.Budget {
		return models.VerdictHit
	}
	return models.VerdictFlop
}

// ProfitabilityRatio is profit over budget, treating a zero budget as one.
func ProfitabilityRatio(m models.Movie) float64 {
	budget := m.Budget
	if budget == 0 {
		budget = 1
	}
	return m.Profit / budget
}

func matches(selected string, names []string) bool {
	if selected == "" || selected == models.AllValues {
		return true
	}
	for _, n := range names {
		if n == selected {
			return true
		}
	}
	return false
}

// topByProfit returns up to n movies by descending profit; ties keep table order.
func topByProfit(movies []models.Movie, n int) []models.Movie {
	sorted := append([]models.Movie(nil), movies...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Profit > sorted[j].Profit })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []models.Movie{}
	}
	return sorted
}

func distinct(lists [][]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, names := range lists {
		for _, n := range names {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Engine answers filter changes from the UI runtime.
type Engine struct {
	ctx    *Context
	logger *utils.Logger
}

// NewEngine wraps a Context.
func NewEngine(ctx *Context, logger *utils.Logger) *Engine {
	return &Engine{ctx: ctx, logger: logger}
}

// Context returns the shared read-only context.
func (e *Engine) Context() *Context { return e.ctx }

// OnFilterChange recomputes every view from scratch for f.
func (e *Engine) OnFilterChange(f models.FilterState) models.Views {
	start := time.Now()
	views := View(e.ctx, f)
	elapsed := time.Since(start)

	metrics.ViewRecomputes.Inc()
	metrics.ViewLatency.Observe(elapsed.Seconds())
	e.logger.Debug("[dashboard] Filter %+v → %d movies in %v", f, len(views.Scatter), elapsed)
	return views
}
