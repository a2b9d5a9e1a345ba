package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"movie-pipeline/models"
	"movie-pipeline/utils"
)

// ErrMissingRequiredColumn means a column the analysis depends on is absent,
// either upstream or because it fell under the coverage threshold.
var ErrMissingRequiredColumn = errors.New("required column missing")

// MinColumnCoverage is the fraction of non-null values a column needs to survive cleaning.
const MinColumnCoverage = 0.5

// RequiredColumns must be populated for a row to survive cleaning.
var RequiredColumns = []string{"title", "release_date", "revenue", "runtime"}

// DateLayout is the canonical form release_date is rewritten to.
const DateLayout = "2006-01-02"

// dateLayouts cover spellings dateparse leaves to the caller.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"Jan 2 2006",
	"January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05-07:00",
	"2006",
}

// Cleaner turns the raw table into a consistently populated one.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean drops sparse columns, then rows missing a required field, then rows
// whose release_date cannot be parsed. Row order is preserved.
func (c *Cleaner) Clean(raw *models.Table) (*models.Table, error) {
	keep := c.coveredColumns(raw)

	out := &models.Table{Header: make([]string, 0, len(keep))}
	for _, i := range keep {
		out.Header = append(out.Header, raw.Header[i])
	}

	required := make([]int, 0, len(RequiredColumns))
	for _, name := range RequiredColumns {
		idx := out.Index(name)
		if idx < 0 {
			return nil, fmt.Errorf("cleaner: %q: %w", name, ErrMissingRequiredColumn)
		}
		required = append(required, idx)
	}
	dateIdx := out.Index("release_date")

	var missing, badDates int
	out.Rows = make([][]string, 0, len(raw.Rows))
	for _, r := range raw.Rows {
		row := make([]string, len(keep))
		for j, i := range keep {
			row[j] = r[i]
		}

		if hasNull(row, required) {
			missing++
			continue
		}

		d, ok := ParseDate(row[dateIdx])
		if !ok {
			badDates++
			c.logger.Debug("[cleaner] Unparsable release_date %q, dropping row", row[dateIdx])
			continue
		}
		row[dateIdx] = d.Format(DateLayout)
		out.Rows = append(out.Rows, row)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d rows, %d → %d columns (missing fields: %d, bad dates: %d)",
		len(raw.Rows), len(out.Rows), len(raw.Header), len(out.Header), missing, badDates)
	return out, nil
}

// coveredColumns returns the indices of columns whose non-null fraction over
// the original row count reaches MinColumnCoverage.
func (c *Cleaner) coveredColumns(t *models.Table) []int {
	total := len(t.Rows)
	keep := make([]int, 0, len(t.Header))
	for i, name := range t.Header {
		filled := 0
		for _, r := range t.Rows {
			if !isNull(r[i]) {
				filled++
			}
		}
		if float64(filled) >= MinColumnCoverage*float64(total) {
			keep = append(keep, i)
			continue
		}
		c.logger.Debug("[cleaner] Dropping column %q (%d/%d populated)", name, filled, total)
	}
	return keep
}

// ParseDate accepts the date spellings the catalog and hand-edited files use.
// Dates without a zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isNull(v string) bool {
	return strings.TrimSpace(v) == ""
}

func hasNull(row []string, cols []int) bool {
	for _, i := range cols {
		if isNull(row[i]) {
			return true
		}
	}
	return false
}
