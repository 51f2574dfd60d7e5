package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port        string
	Env         string // development, staging, production
	CORSOrigins []string

	Database DatabaseConfig
	Redis    RedisConfig

	// Upstream sources
	Screener ScreenerConfig
	Yahoo    YahooConfig
	NewsAPI  NewsAPIConfig
	Gemini   GeminiConfig

	Scoring   ScoringConfig
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration (company → symbol lookup table)
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ScreenerConfig holds screener.in scraping configuration
type ScreenerConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per second, shared through Redis when enabled
	CacheTTL  time.Duration
	UserAgent string
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	Suffix          string // exchange suffix appended to bare symbols
	KeyStatsURL     string // %s = suffixed symbol
	BrowserTimeout  time.Duration
	ChromePath      string
	Headless        bool
	QuotePushEvery  time.Duration
	HistoryCacheTTL time.Duration
}

// NewsAPIConfig holds newsapi.org configuration
type NewsAPIConfig struct {
	APIKey   string
	BaseURL  string
	PageSize int
	Lookback time.Duration
	Language string
}

// GeminiConfig holds the sentiment classifier configuration
type GeminiConfig struct {
	APIKey      string
	Model       string
	Concurrency int
	Timeout     time.Duration
}

// ScoringConfig holds composite score configuration
type ScoringConfig struct {
	RulesPath    string // optional YAML rule table, defaults apply when empty
	FetchTimeout time.Duration
}

// SchedulerConfig holds cache warm-up job configuration
type SchedulerConfig struct {
	Enabled   bool
	Schedule  string // cron expression with seconds
	Watchlist []string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Screener: ScreenerConfig{
			BaseURL:   getEnv("SCREENER_BASE_URL", "https://www.screener.in"),
			Timeout:   getEnvAsDuration("SCREENER_TIMEOUT", "15s"),
			RateLimit: getEnvAsInt("SCREENER_RATE_LIMIT", 2),
			CacheTTL:  getEnvAsDuration("SCREENER_CACHE_TTL", "6h"),
			UserAgent: getEnv("SCREENER_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
		},

		Yahoo: YahooConfig{
			Suffix:          getEnv("YAHOO_SUFFIX", ".NS"),
			KeyStatsURL:     getEnv("YAHOO_KEYSTATS_URL", "https://finance.yahoo.com/quote/%s/key-statistics"),
			BrowserTimeout:  getEnvAsDuration("YAHOO_BROWSER_TIMEOUT", "45s"),
			ChromePath:      getEnv("CHROME_PATH", ""),
			Headless:        getEnvAsBool("CHROME_HEADLESS", true),
			QuotePushEvery:  getEnvAsDuration("QUOTE_PUSH_INTERVAL", "5s"),
			HistoryCacheTTL: getEnvAsDuration("YAHOO_HISTORY_CACHE_TTL", "15m"),
		},

		NewsAPI: NewsAPIConfig{
			APIKey:   getEnv("NEWS_API_KEY", ""),
			BaseURL:  getEnv("NEWS_API_BASE_URL", "https://newsapi.org/v2"),
			PageSize: getEnvAsInt("NEWS_API_PAGE_SIZE", 5),
			Lookback: getEnvAsDuration("NEWS_API_LOOKBACK", "720h"),
			Language: getEnv("NEWS_API_LANGUAGE", "en"),
		},

		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Concurrency: getEnvAsInt("GEMINI_CONCURRENCY", 3),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", "20s"),
		},

		Scoring: ScoringConfig{
			RulesPath:    getEnv("SCORING_RULES_PATH", ""),
			FetchTimeout: getEnvAsDuration("SCORING_FETCH_TIMEOUT", "60s"),
		},

		Scheduler: SchedulerConfig{
			Enabled:   getEnvAsBool("SCHEDULER_ENABLED", false),
			Schedule:  getEnv("SCHEDULER_SCHEDULE", "0 30 6 * * 1-5"),
			Watchlist: getEnvAsList("SCHEDULER_WATCHLIST", nil),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}

	if c.Screener.RateLimit <= 0 {
		return fmt.Errorf("SCREENER_RATE_LIMIT must be positive")
	}

	if c.NewsAPI.PageSize <= 0 || c.NewsAPI.PageSize > 100 {
		return fmt.Errorf("NEWS_API_PAGE_SIZE must be between 1 and 100")
	}

	if c.Gemini.Concurrency <= 0 {
		return fmt.Errorf("GEMINI_CONCURRENCY must be positive")
	}

	if !strings.Contains(c.Yahoo.KeyStatsURL, "%s") {
		return fmt.Errorf("YAHOO_KEYSTATS_URL must contain a %%s placeholder")
	}

	if c.Scheduler.Enabled && len(c.Scheduler.Watchlist) == 0 {
		return fmt.Errorf("SCHEDULER_WATCHLIST is required when the scheduler is enabled")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
