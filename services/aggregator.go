package services

import (
	"fmt"
	"sort"
	"strings"

	"movie-pipeline/models"
	"movie-pipeline/utils"
)

// CountryBucketThreshold is the largest count merged into the Others bucket.
const CountryBucketThreshold = 10

// OthersBucket names the merged bucket of small countries.
const OthersBucket = "Others"

// CategoryLists holds the parsed genre and country names of each movie,
// index-aligned with the movie slice they were built from.
type CategoryLists struct {
	Genres    [][]string
	Countries [][]string
}

// ExtractCategories parses the genres and production_countries text of every
// movie. Unparsable text contributes no categories; failures are only logged.
func ExtractCategories(movies []models.Movie, logger *utils.Logger) CategoryLists {
	lists := CategoryLists{
		Genres:    make([][]string, len(movies)),
		Countries: make([][]string, len(movies)),
	}
	var failed int
	for i, m := range movies {
		var ok bool
		if lists.Genres[i], ok = ParseCategoryList(m.Genres); !ok {
			failed++
			logger.Debug("[aggregator] Unparsable genres for %q, treating as empty", m.Title)
		}
		if lists.Countries[i], ok = ParseCategoryList(m.ProductionCountries); !ok {
			failed++
			logger.Debug("[aggregator] Unparsable production_countries for %q, treating as empty", m.Title)
		}
	}
	if failed > 0 {
		logger.Info("[aggregator] %d category fields could not be parsed and were treated as empty", failed)
	}
	return lists
}

// Aggregator computes the grouped statistics of the static report.
type Aggregator struct {
	logger *utils.Logger
}

// NewAggregator creates an Aggregator with the given logger.
func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate builds the full report over the processed movies.
func (a *Aggregator) Aggregate(runID string, movies []models.Movie) *models.Report {
	lists := ExtractCategories(movies, a.logger)

	report := &models.Report{
		RunID:        runID,
		Movies:       len(movies),
		Yearly:       YearlyAggregates(movies),
		GenreProfit:  ExplodeSum(movies, lists.Genres, profitOf),
		GenreCount:   SortByValueDesc(ExplodeSum(movies, lists.Genres, one)),
		CountryCount: BucketSmall(SortByValueDesc(ExplodeSum(movies, lists.Countries, one)), CountryBucketThreshold),
		RuntimeVote:  make([]models.Point, 0, len(movies)),
		RevenueVote:  make([]models.Point, 0, len(movies)),
	}
	for _, m := range movies {
		report.RuntimeVote = append(report.RuntimeVote, models.Point{X: m.Runtime, Y: m.VoteAverage})
		report.RevenueVote = append(report.RevenueVote, models.Point{X: m.Revenue, Y: m.VoteAverage})
	}

	a.logger.Info("[aggregator] %d movies across %d years, %d genres, %d country buckets",
		report.Movies, len(report.Yearly), len(report.GenreProfit), len(report.CountryCount))
	return report
}

// YearlyAggregates groups movies by release year, ordered by year.
func YearlyAggregates(movies []models.Movie) []models.YearAggregate {
	byYear := make(map[int]*models.YearAggregate)
	for _, m := range movies {
		agg, ok := byYear[m.ReleaseYear]
		if !ok {
			agg = &models.YearAggregate{Year: m.ReleaseYear}
			byYear[m.ReleaseYear] = agg
		}
		agg.Count++
		agg.Revenue += m.Revenue
		agg.Budget += m.Budget
		agg.Profit += m.Profit
	}

	out := make([]models.YearAggregate, 0, len(byYear))
	for _, agg := range byYear {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ExplodeSum adds value(movie) to every category name in the movie's list and
// returns the totals ordered by name. A movie therefore counts once per name.
func ExplodeSum(movies []models.Movie, lists [][]string, value func(models.Movie) float64) []models.CategoryAggregate {
	sums := make(map[string]float64)
	for i, m := range movies {
		for _, name := range lists[i] {
			sums[name] += value(m)
		}
	}

	out := make([]models.CategoryAggregate, 0, len(sums))
	for name, v := range sums {
		out = append(out, models.CategoryAggregate{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortByValueDesc orders aggregates by descending value, then by name.
func SortByValueDesc(aggs []models.CategoryAggregate) []models.CategoryAggregate {
	sort.SliceStable(aggs, func(i, j int) bool {
		if aggs[i].Value != aggs[j].Value {
			return aggs[i].Value > aggs[j].Value
		}
		return aggs[i].Name < aggs[j].Name
	})
	return aggs
}

// BucketSmall keeps buckets above threshold and merges the rest into a
// trailing Others bucket, which is omitted when nothing was merged.
func BucketSmall(aggs []models.CategoryAggregate, threshold float64) []models.CategoryAggregate {
	out := make([]models.CategoryAggregate, 0, len(aggs)+1)
	var others float64
	var merged bool
	for _, agg := range aggs {
		if agg.Value > threshold {
			out = append(out, agg)
			continue
		}
		others += agg.Value
		merged = true
	}
	if merged {
		out = append(out, models.CategoryAggregate{Name: OthersBucket, Value: others})
	}
	return out
}

func profitOf(m models.Movie) float64 { return m.Profit }

func one(models.Movie) float64 { return 1 }

// Print writes a console summary of the report.
func (a *Aggregator) Print(r *models.Report) {
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  MOVIE DATA ANALYSIS  (run %s)\033[0m\n", r.RunID)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Processed movies : \033[1m%d\033[0m\n", r.Movies)
	fmt.Printf("  Release years    : \033[1m%d\033[0m\n", len(r.Yearly))
	fmt.Println()

	fmt.Printf("\033[1;33m  Movies and Capital per Year\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.Yearly) == 0 {
		fmt.Printf("  No yearly data\n")
	}
	for _, y := range r.Yearly {
		fmt.Printf("  %d  %4d movies  budget $%s  revenue $%s  profit $%s\n",
			y.Year, y.Count, humanMoney(y.Budget), humanMoney(y.Revenue), humanMoney(y.Profit))
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Profit by Genre\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, g := range SortByValueDesc(append([]models.CategoryAggregate(nil), r.GenreProfit...)) {
		fmt.Printf("  %-28s \033[1;32m$%s\033[0m\n", truncate(g.Name, 26), humanMoney(g.Value))
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Movies by Production Country\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.CountryCount) == 0 {
		fmt.Printf("  No country data\n")
	}
	for _, c := range r.CountryCount {
		bar := strings.Repeat("█", barWidth(c.Value, r.CountryCount))
		fmt.Printf("  %-28s %s (%.0f)\n", truncate(c.Name, 26), bar, c.Value)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func barWidth(v float64, all []models.CategoryAggregate) int {
	var max float64
	for _, a := range all {
		if a.Value > max {
			max = a.Value
		}
	}
	if max <= 0 {
		return 0
	}
	return int(v / max * 24)
}

func humanMoney(f float64) string {
	neg := f < 0
	if neg {
		f = -f
	}
	var s string
	switch {
	case f >= 1e9:
		s = fmt.Sprintf("%.2fB", f/1e9)
	case f >= 1e6:
		s = fmt.Sprintf("%.2fM", f/1e6)
	case f >= 1e3:
		s = fmt.Sprintf("%.1fK", f/1e3)
	default:
		s = fmt.Sprintf("%.0f", f)
	}
	if neg {
		return "-" + s
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
