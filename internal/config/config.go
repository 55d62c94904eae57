package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// sqliteDisabled is the SQLITE_PATH value that turns the SQLite sink off.
const sqliteDisabled = "-"

// Config holds all run settings, populated from environment variables.
type Config struct {
	StationXML string
	AirXML     string
	OutputDir  string

	// SQLitePath is empty when the SQLite sink is disabled.
	SQLitePath string

	TopN            int
	RegionCacheSize int
	Charts          bool
	MetricsTextfile string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if
// present; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	topN, err := parseNonNegativeInt("TOP_N", "5")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseNonNegativeInt("REGION_CACHE_SIZE", "1024")
	if err != nil {
		return nil, err
	}

	charts, err := strconv.ParseBool(sharedcfg.EnvOrDefault("CHARTS", "true"))
	if err != nil {
		return nil, errors.New("invalid CHARTS")
	}

	outputDir := sharedcfg.EnvOrDefault("OUTPUT_DIR", "output")
	sqlitePath := sharedcfg.EnvOrDefault("SQLITE_PATH", filepath.Join(outputDir, "inspection_stations.db"))
	if sqlitePath == sqliteDisabled {
		sqlitePath = ""
	}

	cfg := &Config{
		StationXML:      sharedcfg.EnvOrDefault("STATION_XML", "機車排氣定檢站資料.xml"),
		AirXML:          sharedcfg.EnvOrDefault("AIR_XML", "空汙.xml"),
		OutputDir:       outputDir,
		SQLitePath:      sqlitePath,
		TopN:            topN,
		RegionCacheSize: cacheSize,
		Charts:          charts,
		MetricsTextfile: sharedcfg.EnvOrDefault("METRICS_TEXTFILE", ""),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	}

	if cfg.StationXML == "" {
		return nil, errors.New("STATION_XML is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}

	return cfg, nil
}

func parseNonNegativeInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
