package config

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreNone     = "none"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	TMDBAPIKey   string
	TMDBBaseURL  string
	TMDBListPath string

	Pages          int
	RateLimitMs    int
	HTTPTimeoutSec int
	RawColumns     []string

	OutputDir     string
	RawFile       string
	CleanedFile   string
	ProcessedFile string
	ReportFile    string

	StoreDriver      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	DashboardAddr string
	ChromeBin     string
	LogLevel      string
}

// SetDefaults registers the default value of every key with viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("tmdb_api_key", "")
	v.SetDefault("tmdb_base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb_list_path", "/movie/popular")

	v.SetDefault("pages", 500)
	v.SetDefault("rate_limit_ms", 250)
	v.SetDefault("http_timeout_sec", 15)
	v.SetDefault("raw_columns", []string{})

	v.SetDefault("output_dir", "./output")
	v.SetDefault("raw_file", "movie_dataset_raw.csv")
	v.SetDefault("cleaned_file", "movie_dataset_cleaned.csv")
	v.SetDefault("processed_file", "processed_movies.csv")
	v.SetDefault("report_file", "movie_analysis_report.pdf")

	v.SetDefault("store_driver", StoreNone)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "pipeline")
	v.SetDefault("postgres_password", "pipeline123")
	v.SetDefault("postgres_db", "movies_db")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("sqlite_path", "./output/movies.db")

	v.SetDefault("dashboard_addr", ":8050")
	v.SetDefault("chrome_bin", "")
	v.SetDefault("log_level", "info")
}

// ReadConfigFile points v at cfgFile, or at $HOME/.movie-pipeline.yaml when
// cfgFile is empty. A missing file is not an error.
func ReadConfigFile(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			log.Printf("[config] Cannot resolve home directory: %v", err)
			return
		}
		v.AddConfigPath(home)
		v.SetConfigName(".movie-pipeline")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("[config] Ignoring config file: %v", err)
		}
	}
}

// Load reads the .env file into the environment and resolves a Config from v
// (defaults, config file, env vars and any flags bound by the caller).
func Load(v *viper.Viper) *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	SetDefaults(v)
	v.AutomaticEnv()

	return &Config{
		TMDBAPIKey:   v.GetString("tmdb_api_key"),
		TMDBBaseURL:  v.GetString("tmdb_base_url"),
		TMDBListPath: v.GetString("tmdb_list_path"),

		Pages:          v.GetInt("pages"),
		RateLimitMs:    v.GetInt("rate_limit_ms"),
		HTTPTimeoutSec: v.GetInt("http_timeout_sec"),
		RawColumns:     splitList(v.GetStringSlice("raw_columns")),

		OutputDir:     v.GetString("output_dir"),
		RawFile:       v.GetString("raw_file"),
		CleanedFile:   v.GetString("cleaned_file"),
		ProcessedFile: v.GetString("processed_file"),
		ReportFile:    v.GetString("report_file"),

		StoreDriver:      v.GetString("store_driver"),
		PostgresHost:     v.GetString("postgres_host"),
		PostgresPort:     v.GetString("postgres_port"),
		PostgresUser:     v.GetString("postgres_user"),
		PostgresPassword: v.GetString("postgres_password"),
		PostgresDB:       v.GetString("postgres_db"),
		PostgresSSLMode:  v.GetString("postgres_sslmode"),
		SQLitePath:       v.GetString("sqlite_path"),

		DashboardAddr: v.GetString("dashboard_addr"),
		ChromeBin:     v.GetString("chrome_bin"),
		LogLevel:      v.GetString("log_level"),
	}
}

// splitList flattens comma separated entries, so RAW_COLUMNS="id,title" and a
// YAML list give the same result.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Path joins name onto the output directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.OutputDir, name)
}

func (c *Config) RawPath() string       { return c.Path(c.RawFile) }
func (c *Config) CleanedPath() string   { return c.Path(c.CleanedFile) }
func (c *Config) ProcessedPath() string { return c.Path(c.ProcessedFile) }
func (c *Config) ReportPath() string    { return c.Path(c.ReportFile) }
