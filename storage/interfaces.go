package storage

import "movie-pipeline/models"

// MovieWriter is the interface any processed-movie backend must satisfy.
type MovieWriter interface {
	Write(runID string, movies []models.Movie) error
	Close() error
}

// MovieReader reads back the latest processed snapshot.
type MovieReader interface {
	FetchAll() ([]models.Movie, error)
	FetchRun(runID string) ([]models.Movie, error)
}

// RawRecordWriter persists unprocessed catalog records as they arrive.
type RawRecordWriter interface {
	WriteRecord(r *models.RawRecord) error
	Close() error
}

// MovieRepository is a backend that stores and serves processed snapshots.
type MovieRepository interface {
	MovieWriter
	MovieReader
}

var _ MovieRepository = (*MovieStore)(nil)
