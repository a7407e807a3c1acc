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
	Port string
	Env  string // development, staging, production

	Database DatabaseConfig
	Redis    RedisConfig

	// External data vendors
	AlphaVantage AlphaVantageConfig
	FamaFrench   FamaFrenchConfig

	// Analytics defaults
	Valuation ValuationConfig
	Backtest  BacktestConfig

	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey            string
	BaseURL           string
	RequestsPerMinute int
}

// FamaFrenchConfig points at the Kenneth French data library
type FamaFrenchConfig struct {
	FactorsURL string
}

// ValuationConfig holds DCF model defaults
type ValuationConfig struct {
	LookbackYears       int
	RecentFromYear      int // first fiscal year used by the FCF/NI conversion average
	ProjectionYears     int
	GrowthRate          float64
	TerminalGrowth      float64
	TaxRate             float64
	DefaultCostOfEquity float64
	DefaultCostOfDebt   float64
	CacheTTL            time.Duration
}

// BacktestConfig holds backtest defaults
type BacktestConfig struct {
	RiskFreeRate float64
	Benchmark    string
	Period       string
	CacheTTL     time.Duration
}

// SchedulerConfig holds the ratio refresh schedule
type SchedulerConfig struct {
	RefreshSchedule string
	RefreshSymbols  []string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
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

		AlphaVantage: AlphaVantageConfig{
			APIKey:            getEnv("ALPHA_VANTAGE_API_KEY", ""),
			BaseURL:           getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			RequestsPerMinute: getEnvAsInt("ALPHA_VANTAGE_RPM", 5),
		},

		FamaFrench: FamaFrenchConfig{
			FactorsURL: getEnv("FAMA_FRENCH_URL",
				"https://mba.tuck.dartmouth.edu/pages/faculty/ken.french/ftp/F-F_Research_Data_Factors_CSV.zip"),
		},

		Valuation: ValuationConfig{
			LookbackYears:       getEnvAsInt("VALUATION_LOOKBACK_YEARS", 5),
			RecentFromYear:      getEnvAsInt("VALUATION_RECENT_FROM_YEAR", 2021),
			ProjectionYears:     getEnvAsInt("VALUATION_PROJECTION_YEARS", 5),
			GrowthRate:          getEnvAsFloat("VALUATION_GROWTH_RATE", 0),
			TerminalGrowth:      getEnvAsFloat("VALUATION_TERMINAL_GROWTH", 0),
			TaxRate:             getEnvAsFloat("VALUATION_TAX_RATE", 0.21),
			DefaultCostOfEquity: getEnvAsFloat("VALUATION_DEFAULT_COE", 0.10),
			DefaultCostOfDebt:   getEnvAsFloat("VALUATION_DEFAULT_COD", 0.05),
			CacheTTL:            getEnvAsDuration("VALUATION_CACHE_TTL", "10m"),
		},

		Backtest: BacktestConfig{
			RiskFreeRate: getEnvAsFloat("BACKTEST_RISK_FREE", 0.04),
			Benchmark:    getEnv("BACKTEST_BENCHMARK", "SPY"),
			Period:       getEnv("BACKTEST_PERIOD", "5y"),
			CacheTTL:     getEnvAsDuration("BACKTEST_CACHE_TTL", "1h"),
		},

		Scheduler: SchedulerConfig{
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 6 * * *"),
			RefreshSymbols:  getEnvAsList("REFRESH_SYMBOLS"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Valuation.ProjectionYears < 1 {
		return fmt.Errorf("VALUATION_PROJECTION_YEARS must be >= 1")
	}

	if c.Valuation.LookbackYears < 1 {
		return fmt.Errorf("VALUATION_LOOKBACK_YEARS must be >= 1")
	}

	// Gordon growth is undefined once the discount rate can fall to the growth rate
	if c.Valuation.TerminalGrowth >= c.Valuation.DefaultCostOfEquity {
		return fmt.Errorf("VALUATION_TERMINAL_GROWTH must be below VALUATION_DEFAULT_COE")
	}

	if c.Valuation.TaxRate < 0 || c.Valuation.TaxRate >= 1 {
		return fmt.Errorf("VALUATION_TAX_RATE must be in [0, 1)")
	}

	return nil
}

// RequireDatabase reports an error when no database URL is configured.
// Commands that only run pure computations skip this check.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}
