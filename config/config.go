package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SiteOrigin     string
	SearchPath     string
	LookupURL      string
	JSONMarker     string
	SizeSuffix     string
	PageIndexParam string

	FetchMode      string
	ChromeBin      string
	UserAgent      string
	RequestTimeout time.Duration
	FetchRetries   int
	MaxConcurrency int

	FilterSize       bool
	FilterPercentile float64
	ReportRows       int

	CSVOutputPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	APIAddr  string
	LogLevel string

	LocationsFile string
	Locations     map[string]string
}

// defaultLocations are location identifiers known without a lookup call.
var defaultLocations = map[string]string{
	"Hackney":   "REGION^93953",
	"Islington": "REGION^93965",
}

// Load reads the .env file, the environment, and the optional locations file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		SiteOrigin:     getEnv("SITE_ORIGIN", "https://www.rightmove.co.uk"),
		SearchPath:     getEnv("SEARCH_PATH", "https://www.rightmove.co.uk/property-for-sale/find.html"),
		LookupURL:      getEnv("LOOKUP_URL", "https://los.rightmove.co.uk/typeahead"),
		JSONMarker:     getEnv("JSON_MARKER", "window.jsonModel"),
		SizeSuffix:     getEnv("SIZE_SUFFIX", " sq. ft."),
		PageIndexParam: getEnv("PAGE_INDEX_PARAM", "index"),

		FetchMode: strings.ToLower(getEnv("FETCH_MODE", "http")),
		ChromeBin: getEnv("CHROME_BIN", ""),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 20)) * time.Second,
		FetchRetries:   getEnvInt("FETCH_RETRIES", 0),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 0),

		FilterSize:       getEnvBool("FILTER_SIZE", false),
		FilterPercentile: getEnvFloat("FILTER_PERCENTILE", 0),
		ReportRows:       getEnvInt("REPORT_ROWS", 10),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "hackermove"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "hackermove"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTTL:      time.Duration(getEnvInt("REDIS_TTL_HOURS", 24*7)) * time.Hour,

		APIAddr:  getEnv("API_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LocationsFile: getEnv("LOCATIONS_FILE", ""),
		Locations:     make(map[string]string, len(defaultLocations)),
	}

	for name, id := range defaultLocations {
		cfg.Locations[name] = id
	}

	if cfg.LocationsFile != "" {
		extra, err := LoadLocations(cfg.LocationsFile)
		if err != nil {
			return nil, err
		}
		for name, id := range extra {
			cfg.Locations[name] = id
		}
	}

	return cfg, nil
}

// locationsFile is the YAML layout of LOCATIONS_FILE:
//
//	locations:
//	  Hackney: REGION^93953
type locationsFile struct {
	Locations map[string]string `yaml:"locations"`
}

// LoadLocations reads a YAML file mapping location names to site identifiers.
func LoadLocations(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open locations file: %w", err)
	}
	defer f.Close()

	var lf locationsFile
	if err := yaml.NewDecoder(f).Decode(&lf); err != nil {
		return nil, fmt.Errorf("config: decode locations file %q: %w", path, err)
	}
	return lf.Locations, nil
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

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
