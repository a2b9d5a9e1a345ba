package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"movie-pipeline/models"
)

// RawCSVWriter appends raw catalog records to a CSV file one at a time so a
// crash mid-run keeps every row fetched so far. The column header is fixed by
// the first record written.
type RawCSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	schema *models.Schema
	rows   int
}

// NewRawCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewRawCSVWriter(path string) (*RawCSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &RawCSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// WithSchema fixes the header up front instead of deriving it from the first record.
func (c *RawCSVWriter) WithSchema(s *models.Schema) *RawCSVWriter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schema == nil {
		c.schema = s
	}
	return c
}

// WriteRecord writes r using the locked schema and flushes immediately.
func (c *RawCSVWriter) WriteRecord(r *models.RawRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.schema == nil {
		c.schema = models.SchemaFromRecord(r)
	}
	if c.rows == 0 {
		if err := c.writer.Write(c.schema.Header()); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
	}

	if err := c.writer.Write(c.schema.Row(r)); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.rows++

	c.writer.Flush()
	return c.writer.Error()
}

// Schema returns the locked schema, or nil before the first record.
func (c *RawCSVWriter) Schema() *models.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema
}

// Rows returns the number of records written.
func (c *RawCSVWriter) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Close flushes and closes the underlying file. A failed flush is reported
// ahead of the close error.
func (c *RawCSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.file.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return c.file.Close()
}
