package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PAGES", "")
	cfg := Load(viper.New())

	if cfg.Pages != 500 {
		t.Errorf("Pages: got %d, want 500", cfg.Pages)
	}
	if cfg.StoreDriver != StoreNone {
		t.Errorf("StoreDriver: got %q, want %q", cfg.StoreDriver, StoreNone)
	}
	if cfg.DashboardAddr != ":8050" {
		t.Errorf("DashboardAddr: got %q", cfg.DashboardAddr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PAGES", "3")
	t.Setenv("OUTPUT_DIR", "/tmp/movies")
	cfg := Load(viper.New())

	if cfg.Pages != 3 {
		t.Errorf("Pages: got %d, want 3", cfg.Pages)
	}
	want := filepath.Join("/tmp/movies", "processed_movies.csv")
	if cfg.ProcessedPath() != want {
		t.Errorf("ProcessedPath: got %q, want %q", cfg.ProcessedPath(), want)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "movies", PostgresSSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=movies sslmode=disable"
	if cfg.DSN() != want {
		t.Errorf("DSN: got %q, want %q", cfg.DSN(), want)
	}
}

func TestRawColumns(t *testing.T) {
	t.Setenv("RAW_COLUMNS", "id, title,release_date")
	cfg := Load(viper.New())

	want := []string{"id", "title", "release_date"}
	if len(cfg.RawColumns) != len(want) {
		t.Fatalf("RawColumns: got %v, want %v", cfg.RawColumns, want)
	}
	for i := range want {
		if cfg.RawColumns[i] != want[i] {
			t.Errorf("RawColumns[%d]: got %q, want %q", i, cfg.RawColumns[i], want[i])
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"id", "title, status", " ", ""})
	if len(got) != 3 || got[0] != "id" || got[1] != "title" || got[2] != "status" {
		t.Errorf("splitList: got %v", got)
	}
}
