package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"movie-pipeline/models"
	"movie-pipeline/utils"
)

type dialect struct {
	driver      string
	placeholder func(n int) string
	schema      string
}

var postgresDialect = dialect{
	driver:      "postgres",
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	schema: `
		CREATE TABLE IF NOT EXISTS movies (
			id                   SERIAL PRIMARY KEY,
			run_id               VARCHAR(26)      NOT NULL,
			title                TEXT             NOT NULL,
			genres               TEXT             NOT NULL DEFAULT '',
			production_companies TEXT             NOT NULL DEFAULT '',
			production_countries TEXT             NOT NULL DEFAULT '',
			revenue              DOUBLE PRECISION NOT NULL DEFAULT 0,
			budget               DOUBLE PRECISION NOT NULL DEFAULT 0,
			runtime              DOUBLE PRECISION NOT NULL DEFAULT 0,
			vote_average         DOUBLE PRECISION NOT NULL DEFAULT 0,
			profit               DOUBLE PRECISION NOT NULL DEFAULT 0,
			release_year         INTEGER          NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_movies_release_year ON movies(release_year);
		CREATE INDEX IF NOT EXISTS idx_movies_profit       ON movies(profit);
	`,
}

var sqliteDialect = dialect{
	driver:      "sqlite",
	placeholder: func(int) string { return "?" },
	schema: `
		CREATE TABLE IF NOT EXISTS movies (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id               TEXT    NOT NULL,
			title                TEXT    NOT NULL,
			genres               TEXT    NOT NULL DEFAULT '',
			production_companies TEXT    NOT NULL DEFAULT '',
			production_countries TEXT    NOT NULL DEFAULT '',
			revenue              REAL    NOT NULL DEFAULT 0,
			budget               REAL    NOT NULL DEFAULT 0,
			runtime              REAL    NOT NULL DEFAULT 0,
			vote_average         REAL    NOT NULL DEFAULT 0,
			profit               REAL    NOT NULL DEFAULT 0,
			release_year         INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_movies_release_year ON movies(release_year);
		CREATE INDEX IF NOT EXISTS idx_movies_profit       ON movies(profit);
	`,
}

// MovieStore persists processed movies to a SQL database.
type MovieStore struct {
	db *sql.DB
	d  dialect
}

// NewPostgresStore connects to PostgreSQL, waiting for it to accept
// connections, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(dsn string, logger *utils.Logger) (*MovieStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{
		MaxAttempts: 10,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Logger:      logger,
	}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return newMovieStore(db, postgresDialect)
}

// NewSQLiteStore opens (or creates) a SQLite database file.
func NewSQLiteStore(path string) (*MovieStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newMovieStore(db, sqliteDialect)
}

func newMovieStore(db *sql.DB, d dialect) (*MovieStore, error) {
	s := &MovieStore{db: db, d: d}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.driver, err)
	}
	return s, nil
}

func (s *MovieStore) migrate() error {
	for _, stmt := range strings.Split(s.d.schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write replaces the stored snapshot with movies, batch-inserting them in one transaction.
func (s *MovieStore) Write(runID string, movies []models.Movie) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.d.driver, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM movies"); err != nil {
		return fmt.Errorf("%s: clear: %w", s.d.driver, err)
	}

	const batchSize = 50
	for i := 0; i < len(movies); i += batchSize {
		end := i + batchSize
		if end > len(movies) {
			end = len(movies)
		}
		if err := s.insertBatch(tx, runID, movies[i:end]); err != nil {
			return fmt.Errorf("%s: insert: %w", s.d.driver, err)
		}
	}
	return tx.Commit()
}

const movieColumns = 11

func (s *MovieStore) insertBatch(tx *sql.Tx, runID string, batch []models.Movie) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*movieColumns)

	for idx, m := range batch {
		base := idx * movieColumns
		ph := make([]string, movieColumns)
		for c := range ph {
			ph[c] = s.d.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			runID, m.Title, m.Genres, m.ProductionCompanies, m.ProductionCountries,
			m.Revenue, m.Budget, m.Runtime, m.VoteAverage, m.Profit, m.ReleaseYear)
	}

	query := fmt.Sprintf(`
		INSERT INTO movies (run_id, title, genres, production_companies, production_countries,
			revenue, budget, runtime, vote_average, profit, release_year)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

const selectMovies = `
	SELECT title, genres, production_companies, production_countries,
		revenue, budget, runtime, vote_average, profit, release_year
	FROM movies`

// FetchAll retrieves the stored snapshot in insertion order.
func (s *MovieStore) FetchAll() ([]models.Movie, error) {
	rows, err := s.db.Query(selectMovies + " ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", s.d.driver, err)
	}
	return s.scanMovies(rows)
}

// FetchRun retrieves the snapshot only if it was written by runID.
func (s *MovieStore) FetchRun(runID string) ([]models.Movie, error) {
	rows, err := s.db.Query(selectMovies+" WHERE run_id = "+s.d.placeholder(1)+" ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch run %s: %w", s.d.driver, runID, err)
	}
	return s.scanMovies(rows)
}

func (s *MovieStore) scanMovies(rows *sql.Rows) ([]models.Movie, error) {
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(
			&m.Title, &m.Genres, &m.ProductionCompanies, &m.ProductionCountries,
			&m.Revenue, &m.Budget, &m.Runtime, &m.VoteAverage, &m.Profit, &m.ReleaseYear,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.d.driver, err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

func (s *MovieStore) Close() error {
	return s.db.Close()
}
