package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"movie-pipeline/models"
)

// ReadTable loads a delimited file with a header row. A missing file yields an
// error that wraps fs.ErrNotExist.
func ReadTable(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return &models.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header of %q: %w", path, err)
	}

	t := &models.Table{Header: header}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read %q: %w", path, err)
		}
		t.Rows = append(t.Rows, padRow(rec, len(header)))
	}
	return t, nil
}

// WriteTable creates (or truncates) path and writes t to it.
func WriteTable(path string, t *models.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// padRow makes short rows the width of the header; extra cells are cut.
func padRow(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	row := make([]string, width)
	copy(row, rec)
	return row
}
