// config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gewnthar/airquality/models"
)

const DefaultBaseURL = "https://fme.discomap.eea.europa.eu/fmedatastreaming/AirQualityDownload/AQData_Extract.fmw"

type SourceConfig struct {
	BaseURL     string `yaml:"base_url"`
	CountryCode string `yaml:"country_code"`
	CityName    string `yaml:"city_name"`
	Pollutants  []int  `yaml:"pollutant_ids"`
	// MergePollutant selects which downloaded pollutant directory is merged and cached.
	MergePollutant int `yaml:"merge_pollutant"`
}

type PathsConfig struct {
	DataDir string `yaml:"data_dir"`
}

// SrcDir holds the downloaded index files.
func (p PathsConfig) SrcDir() string { return filepath.Join(p.DataDir, "src") }

// ConcatFile is where the merged table is written as CSV.
func (p PathsConfig) ConcatFile() string { return filepath.Join(p.DataDir, "concat", "all.csv") }

// DBDir holds the SQLite cache files.
func (p PathsConfig) DBDir() string { return filepath.Join(p.DataDir, "dbs") }

type DownloadConfig struct {
	ChunkSizeKiB      int    `yaml:"chunk_size_kib"`
	Substitute        string `yaml:"filename_substitute"`
	MaxFilenameLength int    `yaml:"max_filename_length"`
	// TimeoutStr is empty by default: a hung remote blocks the run until the process is stopped.
	TimeoutStr string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "mysql"
	// Path is the SQLite file. Empty means <data_dir>/dbs/<table>.db.
	Path     string `yaml:"path"`
	Table    string `yaml:"table"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type CleaningConfig struct {
	Interpolation string `yaml:"interpolation"` // "time" or "index"
}

type Config struct {
	Source       SourceConfig   `yaml:"source"`
	Paths        PathsConfig    `yaml:"paths"`
	Download     DownloadConfig `yaml:"download"`
	Database     DatabaseConfig `yaml:"database"`
	Cleaning     CleaningConfig `yaml:"cleaning"`
	LogLevel     string         `yaml:"log_level"`
	ForceRebuild bool           `yaml:"force_rebuild"`
}

// Default returns the configuration the pipeline runs with when no file is present.
func Default() Config {
	return Config{
		Source: SourceConfig{
			BaseURL:        DefaultBaseURL,
			CountryCode:    "CH",
			CityName:       "Basel",
			Pollutants:     append([]int(nil), models.DefaultPollutants...),
			MergePollutant: 8,
		},
		Paths: PathsConfig{DataDir: "data"},
		Download: DownloadConfig{
			ChunkSizeKiB: 100,
			Substitute:   "+",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Table:  "NO2",
			Port:   "3306",
		},
		Cleaning: CleaningConfig{Interpolation: "time"},
		LogLevel: "info",
	}
}

// LoadConfig reads configuration from a YAML file (optional) and then applies
// .env and AQ_* environment overrides. An empty configPath skips the file.
func LoadConfig(configPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.Download.TimeoutStr != "" {
		d, err := time.ParseDuration(cfg.Download.TimeoutStr)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse download timeout: %w", err)
		}
		cfg.Download.Timeout = d
	}
	if cfg.Database.Path == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.Path = filepath.Join(cfg.Paths.DBDir(), cfg.Database.Table+".db")
	}

	return cfg, cfg.Validate()
}

// Validate reports settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Source.CountryCode == "" || c.Source.CityName == "" {
		return fmt.Errorf("country_code and city_name are required")
	}
	for key, v := range map[string]string{"country_code": c.Source.CountryCode, "city_name": c.Source.CityName} {
		if !isPathSegment(v) {
			return fmt.Errorf("%s %q cannot be used as a directory name", key, v)
		}
	}
	if len(c.Source.Pollutants) == 0 {
		return fmt.Errorf("at least one pollutant id is required")
	}
	if c.Download.ChunkSizeKiB <= 0 {
		return fmt.Errorf("chunk_size_kib must be positive, got %d", c.Download.ChunkSizeKiB)
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Cleaning.Interpolation {
	case "time", "index":
	default:
		return fmt.Errorf("unsupported interpolation method %q", c.Cleaning.Interpolation)
	}
	return nil
}

// isPathSegment reports whether v names a single directory below data_dir.
func isPathSegment(v string) bool {
	if v == "." || v == ".." {
		return false
	}
	return !strings.ContainsAny(v, `/\`)
}

// SlogLevel maps LogLevel onto slog levels, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("AQ_COUNTRY_CODE"); v != "" {
		cfg.Source.CountryCode = v
	}
	if v := os.Getenv("AQ_CITY_NAME"); v != "" {
		cfg.Source.CityName = v
	}
	if v := os.Getenv("AQ_POLLUTANTS"); v != "" {
		ids, err := parseIntList(v)
		if err != nil {
			return fmt.Errorf("invalid AQ_POLLUTANTS: %w", err)
		}
		cfg.Source.Pollutants = ids
	}
	if v := os.Getenv("AQ_DATA_DIR"); v != "" {
		cfg.Paths.DataDir = v
	}
	if v := os.Getenv("AQ_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("AQ_DB_TABLE"); v != "" {
		cfg.Database.Table = v
	}
	if v := os.Getenv("AQ_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AQ_DOWNLOAD_TIMEOUT"); v != "" {
		cfg.Download.TimeoutStr = v
	}
	return nil
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
