package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/oklog/ulid/v2"

	"movie-pipeline/config"
	"movie-pipeline/dashboard"
	"movie-pipeline/models"
	"movie-pipeline/render"
	"movie-pipeline/scraper/tmdb"
	"movie-pipeline/services"
	"movie-pipeline/storage"
	"movie-pipeline/utils"
)

// stage carries what every pipeline step needs.
type stage struct {
	cfg    *config.Config
	runID  string
	logger *utils.Logger
}

func newStage() *stage {
	return newStageFor(loadConfig())
}

func newStageFor(cfg *config.Config) *stage {
	runID := ulid.Make().String()
	return &stage{
		cfg:    cfg,
		runID:  runID,
		logger: utils.NewLogger().With("run_id", runID),
	}
}

// fetch harvests the catalog into the raw CSV. A run that yields no records
// at all is an error.
func (s *stage) fetch(ctx context.Context) error {
	if s.cfg.TMDBAPIKey == "" {
		return errors.New("fetch: TMDB_API_KEY is not set")
	}

	sink, err := storage.NewRawCSVWriter(s.cfg.RawPath())
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer sink.Close()
	if len(s.cfg.RawColumns) > 0 {
		sink.WithSchema(models.NewSchema(s.cfg.RawColumns...))
	}

	client := tmdb.NewClient(s.cfg.TMDBBaseURL, s.cfg.TMDBListPath, s.cfg.TMDBAPIKey,
		time.Duration(s.cfg.HTTPTimeoutSec)*time.Second)
	fetcher := tmdb.NewFetcher(client, sink, utils.NewThrottle(s.cfg.RateLimitMs), s.logger)

	records, _, err := fetcher.Fetch(ctx, s.cfg.Pages)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("fetch: no movies were fetched")
	}
	s.logger.Info("[fetch] Raw data saved to %s (%d records)", s.cfg.RawPath(), sink.Rows())
	return nil
}

func (s *stage) clean() error {
	raw, err := storage.ReadTable(s.cfg.RawPath())
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}
	cleaned, err := services.NewCleaner(s.logger).Clean(raw)
	if err != nil {
		return err
	}
	if err := storage.WriteTable(s.cfg.CleanedPath(), cleaned); err != nil {
		return fmt.Errorf("clean: %w", err)
	}
	s.logger.Info("[clean] Cleaned data saved to %s", s.cfg.CleanedPath())
	return nil
}

// transform writes the processed CSV and, when a store is configured, the
// same snapshot to the database.
func (s *stage) transform() error {
	cleaned, err := storage.ReadTable(s.cfg.CleanedPath())
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	processed, movies, err := services.NewTransformer(s.logger).Transform(cleaned)
	if err != nil {
		return err
	}
	if err := storage.WriteTable(s.cfg.ProcessedPath(), processed); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	s.logger.Info("[transform] Processed data saved to %s", s.cfg.ProcessedPath())

	store, err := s.openStore()
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	defer store.Close()

	if err := store.Write(s.runID, movies); err != nil {
		s.logger.Error("[transform] %s write failed, the report will read %s: %v", s.cfg.StoreDriver, s.cfg.ProcessedPath(), err)
		return nil
	}
	s.logger.Info("[transform] %d movies stored in %s (table: movies)", len(movies), s.cfg.StoreDriver)
	return nil
}

// report aggregates the processed movies, prints the summary and renders the
// PDF. A missing browser skips the PDF but keeps the console summary.
func (s *stage) report(ctx context.Context) error {
	movies, err := s.loadMovies()
	if err != nil {
		return err
	}

	agg := services.NewAggregator(s.logger)
	report := agg.Aggregate(s.runID, movies)
	agg.Print(report)

	renderer, err := render.NewChromeRenderer(s.cfg.ChromeBin, s.logger)
	if err != nil {
		s.logger.Error("[report] Skipping PDF report: %v", err)
		return nil
	}
	defer renderer.Close()

	return services.NewReportBuilder(renderer, s.cfg.OutputDir, s.logger).Build(ctx, report, s.cfg.ReportPath())
}

// loadMovies reads this run's snapshot from the configured store and falls
// back to the processed CSV. Rows stored by an earlier run are used only when
// the CSV is missing.
func (s *stage) loadMovies() ([]models.Movie, error) {
	store, err := s.openStore()
	if err != nil {
		s.logger.Warn("[report] Store unavailable, reading %s: %v", s.cfg.ProcessedPath(), err)
	}
	if store != nil {
		defer store.Close()
		movies, err := store.FetchRun(s.runID)
		if err != nil {
			s.logger.Warn("[report] Failed to fetch movies from %s, reading %s: %v", s.cfg.StoreDriver, s.cfg.ProcessedPath(), err)
		}
		if len(movies) > 0 {
			return movies, nil
		}
	}

	table, err := storage.ReadTable(s.cfg.ProcessedPath())
	if errors.Is(err, fs.ErrNotExist) {
		if store != nil {
			if movies, err := store.FetchAll(); err == nil && len(movies) > 0 {
				s.logger.Warn("[report] %s not found, using %d movies stored by an earlier run", s.cfg.ProcessedPath(), len(movies))
				return movies, nil
			}
		}
		return nil, fmt.Errorf("report: %s: %w", s.cfg.ProcessedPath(), dashboard.ErrNoProcessedTable)
	}
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return services.LoadMovies(table)
}

// openStore returns nil when no store is configured.
func (s *stage) openStore() (storage.MovieRepository, error) {
	var (
		store *storage.MovieStore
		err   error
	)
	switch s.cfg.StoreDriver {
	case config.StorePostgres:
		store, err = storage.NewPostgresStore(s.cfg.DSN(), s.logger)
	case config.StoreSQLite:
		store, err = storage.NewSQLiteStore(s.cfg.SQLitePath)
	case config.StoreNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", s.cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
