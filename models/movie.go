package models

// Movie is the processed, analysis-ready record.
type Movie struct {
	Title               string  `json:"title"`
	Genres              string  `json:"genres"`
	ProductionCompanies string  `json:"production_companies"`
	ProductionCountries string  `json:"production_countries"`
	Revenue             float64 `json:"revenue"`
	Budget              float64 `json:"budget"`
	Runtime             float64 `json:"runtime"`
	VoteAverage         float64 `json:"vote_average"`
	Profit              float64 `json:"profit"`
	ReleaseYear         int     `json:"release_year"`
}

// YearAggregate summarises all movies released in one year.
type YearAggregate struct {
	Year    int     `json:"year"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Budget  float64 `json:"budget"`
	Profit  float64 `json:"profit"`
}

// CategoryAggregate is a per-genre or per-country statistic. Value holds a
// profit sum or a movie count depending on the aggregate.
type CategoryAggregate struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Point is one unaggregated scatter pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Report holds the computed analytics over the processed dataset.
type Report struct {
	RunID        string
	Movies       int
	Yearly       []YearAggregate
	GenreProfit  []CategoryAggregate
	GenreCount   []CategoryAggregate
	CountryCount []CategoryAggregate
	RuntimeVote  []Point
	RevenueVote  []Point
}

// AllValues matches every genre or country in a FilterState.
const AllValues = "all"

// FilterState is the dashboard's current filter selection.
type FilterState struct {
	YearMin int    `json:"year_min"`
	YearMax int    `json:"year_max"`
	Genre   string `json:"genre"`
	Country string `json:"country"`
}

// Verdict labels.
const (
	VerdictHit  = "Hit"
	VerdictFlop = "Flop"
)

// ScatterPoint is one movie in the revenue vs vote view.
type ScatterPoint struct {
	Title              string  `json:"title"`
	Revenue            float64 `json:"revenue"`
	VoteAverage        float64 `json:"vote_average"`
	ProfitabilityRatio float64 `json:"profitability_ratio"`
	Verdict            string  `json:"verdict"`
}

// Views are the four dashboard outputs recomputed on every filter change.
type Views struct {
	Scatter           []ScatterPoint      `json:"scatter"`
	Top10Profit       []Movie             `json:"top10_profit"`
	GenreSunburst     []CategoryAggregate `json:"genre_sunburst"`
	CountryChoropleth []CategoryAggregate `json:"country_choropleth"`
}
