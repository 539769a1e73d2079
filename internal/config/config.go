package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Analytics AnalyticsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// AnalyticsConfig tunes the scoring engine. Defaults match the shipped
// weighting; deployments tracking a legacy install can override any of them.
type AnalyticsConfig struct {
	RecurrenceLookbackDays   int
	SimilarityThreshold      float64
	HotspotWindowDays        int
	ProductivityWindowWeeks  int
	TrendIncreaseRatio       float64
	TrendDecreaseRatio       float64
	SeverityCriticalWeight   float64
	SeverityHighWeight       float64
	SeverityMediumWeight     float64
	SeverityLowWeight        float64
	StabilityCriticalWeight  float64
	StabilityHighWeight      float64
	StabilityMediumWeight    float64
	StabilityLowWeight       float64
	StabilityRecurringWeight float64
	RiskDensityWeight        float64
	RiskRecurringWeight      float64
	RiskCriticalWeight       float64
	RiskFloor                float64
	RiskReviewThreshold      float64
	RiskCriticalThreshold    float64
	ScanWorkers              int
	CacheTTLSeconds          int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "devtrack"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Analytics: AnalyticsConfig{
			RecurrenceLookbackDays:   getEnvAsInt("ANALYTICS_RECURRENCE_LOOKBACK_DAYS", 90),
			SimilarityThreshold:      getEnvAsFloat("ANALYTICS_SIMILARITY_THRESHOLD", 0.6),
			HotspotWindowDays:        getEnvAsInt("ANALYTICS_HOTSPOT_WINDOW_DAYS", 180),
			ProductivityWindowWeeks:  getEnvAsInt("ANALYTICS_PRODUCTIVITY_WINDOW_WEEKS", 12),
			TrendIncreaseRatio:       getEnvAsFloat("ANALYTICS_TREND_INCREASE_RATIO", 1.2),
			TrendDecreaseRatio:       getEnvAsFloat("ANALYTICS_TREND_DECREASE_RATIO", 0.8),
			SeverityCriticalWeight:   getEnvAsFloat("ANALYTICS_SEVERITY_CRITICAL_WEIGHT", 4),
			SeverityHighWeight:       getEnvAsFloat("ANALYTICS_SEVERITY_HIGH_WEIGHT", 3),
			SeverityMediumWeight:     getEnvAsFloat("ANALYTICS_SEVERITY_MEDIUM_WEIGHT", 2),
			SeverityLowWeight:        getEnvAsFloat("ANALYTICS_SEVERITY_LOW_WEIGHT", 1),
			StabilityCriticalWeight:  getEnvAsFloat("ANALYTICS_STABILITY_CRITICAL_WEIGHT", 15),
			StabilityHighWeight:      getEnvAsFloat("ANALYTICS_STABILITY_HIGH_WEIGHT", 8),
			StabilityMediumWeight:    getEnvAsFloat("ANALYTICS_STABILITY_MEDIUM_WEIGHT", 3),
			StabilityLowWeight:       getEnvAsFloat("ANALYTICS_STABILITY_LOW_WEIGHT", 1),
			StabilityRecurringWeight: getEnvAsFloat("ANALYTICS_STABILITY_RECURRING_WEIGHT", 10),
			RiskDensityWeight:        getEnvAsFloat("ANALYTICS_RISK_DENSITY_WEIGHT", 20),
			RiskRecurringWeight:      getEnvAsFloat("ANALYTICS_RISK_RECURRING_WEIGHT", 30),
			RiskCriticalWeight:       getEnvAsFloat("ANALYTICS_RISK_CRITICAL_WEIGHT", 10),
			RiskFloor:                getEnvAsFloat("ANALYTICS_RISK_FLOOR", 30),
			RiskReviewThreshold:      getEnvAsFloat("ANALYTICS_RISK_REVIEW_THRESHOLD", 50),
			RiskCriticalThreshold:    getEnvAsFloat("ANALYTICS_RISK_CRITICAL_THRESHOLD", 70),
			ScanWorkers:              getEnvAsInt("ANALYTICS_SCAN_WORKERS", 4),
			CacheTTLSeconds:          getEnvAsInt("ANALYTICS_CACHE_TTL_SECONDS", 60),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RecurrenceLookback returns the candidate window for recurrence linking.
func (a AnalyticsConfig) RecurrenceLookback() time.Duration {
	return time.Duration(a.RecurrenceLookbackDays) * 24 * time.Hour
}

// HotspotWindow returns the trailing analysis window for hotspot scans.
func (a AnalyticsConfig) HotspotWindow() time.Duration {
	return time.Duration(a.HotspotWindowDays) * 24 * time.Hour
}

// ProductivityWindow returns the default productivity timeframe length.
func (a AnalyticsConfig) ProductivityWindow() time.Duration {
	return time.Duration(a.ProductivityWindowWeeks) * 7 * 24 * time.Hour
}

// CacheTTL returns the analytics cache entry lifetime.
func (a AnalyticsConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
