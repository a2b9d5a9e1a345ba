package services

import (
	"errors"
	"strings"
	"testing"

	"movie-pipeline/models"
	"movie-pipeline/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func rawTable() *models.Table {
	return &models.Table{
		Header: []string{"id", "title", "release_date", "revenue", "runtime", "tagline", "status"},
		Rows: [][]string{
			{"1", "Heat", "1995-12-15", "187436818", "170", "", "Released"},
			{"2", "", "1999-03-31", "463517383", "136", "", "Released"},
			{"3", "Alien", "not a date", "104931801", "117", "In space", "Released"},
			{"4", "Ran", "1985-06-01", "4000000", "", "", "Released"},
			{"5", "Brazil", "02/20/1985", "9929135", "132", "", "Rumored"},
			{"6", "Akira", "1988-07-16", "49000000", "124", "", "Released"},
		},
	}
}

func TestCleanerDropsSparseColumns(t *testing.T) {
	out, err := NewCleaner(newTestLogger()).Clean(rawTable())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Index("tagline") >= 0 {
		t.Error("tagline is populated in 1/6 rows and should be dropped")
	}
	if got := strings.Join(out.Header, ","); got != "id,title,release_date,revenue,runtime,status" {
		t.Errorf("header: got %q", got)
	}
}

func TestCleanerCoverageUsesOriginalRowCount(t *testing.T) {
	// note is populated in exactly half of the rows; the row drop that follows
	// must not change that decision.
	raw := &models.Table{
		Header: []string{"title", "release_date", "revenue", "runtime", "note"},
		Rows: [][]string{
			{"A", "2000-01-01", "1", "90", "x"},
			{"B", "", "1", "90", "y"},
			{"C", "2000-01-01", "1", "90", ""},
			{"D", "2000-01-01", "1", "90", ""},
		},
	}
	out, err := NewCleaner(newTestLogger()).Clean(raw)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Index("note") < 0 {
		t.Error("column at exactly 50% coverage should survive")
	}
	if len(out.Rows) != 3 {
		t.Errorf("rows: got %d, want 3", len(out.Rows))
	}
}

func TestCleanerDropsRowsAndPreservesOrder(t *testing.T) {
	out, err := NewCleaner(newTestLogger()).Clean(rawTable())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	titleIdx, dateIdx := out.Index("title"), out.Index("release_date")
	var got []string
	for _, r := range out.Rows {
		got = append(got, r[titleIdx]+"@"+r[dateIdx])
	}
	want := "Heat@1995-12-15,Brazil@1985-02-20,Akira@1988-07-16"
	if strings.Join(got, ",") != want {
		t.Errorf("rows: got %v, want %s", got, want)
	}
}

func TestCleanerNeverGrowsTable(t *testing.T) {
	raw := rawTable()
	out, err := NewCleaner(newTestLogger()).Clean(raw)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if len(out.Rows) > len(raw.Rows) || len(out.Header) > len(raw.Header) {
		t.Errorf("cleaned table larger than raw: %dx%d vs %dx%d",
			len(out.Rows), len(out.Header), len(raw.Rows), len(raw.Header))
	}
}

func TestCleanerMissingRequiredColumnIsFatal(t *testing.T) {
	raw := &models.Table{
		Header: []string{"title", "release_date", "revenue", "runtime"},
		Rows: [][]string{
			{"A", "2000-01-01", "", "90"},
			{"B", "2000-01-01", "", "90"},
			{"C", "2000-01-01", "5", "90"},
		},
	}
	_, err := NewCleaner(newTestLogger()).Clean(raw)
	if !errors.Is(err, ErrMissingRequiredColumn) {
		t.Errorf("expected ErrMissingRequiredColumn, got %v", err)
	}
}

func TestCleanerEmptyTable(t *testing.T) {
	raw := &models.Table{Header: []string{"title", "release_date", "revenue", "runtime"}}
	out, err := NewCleaner(newTestLogger()).Clean(raw)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if len(out.Rows) != 0 || len(out.Header) != 4 {
		t.Errorf("unexpected output for empty table: %+v", out)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2010-07-16", "2010-07-16", true},
		{"2010/07/16", "2010-07-16", true},
		{"07/16/2010", "2010-07-16", true},
		{"2010-07-16T00:00:00Z", "2010-07-16", true},
		{"July 16, 2010", "2010-07-16", true},
		{" 2010-07-16 ", "2010-07-16", true},
		{"2010", "2010-01-01", true},
		{"1995-7-4", "1995-07-04", true},
		{"1995/7/4", "1995-07-04", true},
		{"Jul 4 1995", "1995-07-04", true},
		{"1995-07-04 00:00:00+00:00", "1995-07-04", true},
		{"4 July 1995", "1995-07-04", true},
		{"", "", false},
		{"soon", "", false},
		{"2010-13-45", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.raw)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v; want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && got.Format(DateLayout) != tt.want {
			t.Errorf("ParseDate(%q) = %s; want %s", tt.raw, got.Format(DateLayout), tt.want)
		}
	}
}
