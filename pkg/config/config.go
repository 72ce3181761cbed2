package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Booking  BookingConfig
	Report   ReportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BookingConfig tunes the capacity engine.
type BookingConfig struct {
	// HoldTTL is how long a cart hold keeps a slot before the sweeper
	// releases it.
	HoldTTL time.Duration
	// SweepInterval is how often expired holds are released.
	SweepInterval time.Duration
	// ReserveWait bounds how long a reservation waits on a contended slot
	// before failing with BUSY.
	ReserveWait time.Duration
	// CapacityCacheTTL bounds staleness of the remaining-capacity display
	// cache. Enforcement never reads the cache.
	CapacityCacheTTL time.Duration
}

// ReportConfig tunes day-sheet report generation.
type ReportConfig struct {
	// Dir is where rendered report files land.
	Dir string
	// Workers sizes the report queue's worker pool.
	Workers int
	// DownloadTTL is how long a signed download link stays valid.
	DownloadTTL time.Duration
	// SigningSecret signs download tokens. Left empty, an ephemeral
	// secret is generated at startup and links die with the process.
	SigningSecret string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Booking = BookingConfig{
		HoldTTL:          parseDuration(v.GetString("HOLD_TTL"), 15*time.Minute),
		SweepInterval:    parseDuration(v.GetString("HOLD_SWEEP_INTERVAL"), time.Minute),
		ReserveWait:      parseDuration(v.GetString("RESERVE_LOCK_WAIT"), 3*time.Second),
		CapacityCacheTTL: parseDuration(v.GetString("CAPACITY_CACHE_TTL"), 30*time.Second),
	}

	cfg.Report = ReportConfig{
		Dir:           v.GetString("REPORT_DIR"),
		Workers:       v.GetInt("REPORT_WORKERS"),
		DownloadTTL:   parseDuration(v.GetString("REPORT_DOWNLOAD_TTL"), 24*time.Hour),
		SigningSecret: v.GetString("REPORT_SIGNING_SECRET"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "booking_engine")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("HOLD_TTL", "15m")
	v.SetDefault("HOLD_SWEEP_INTERVAL", "1m")
	v.SetDefault("RESERVE_LOCK_WAIT", "3s")
	v.SetDefault("CAPACITY_CACHE_TTL", "30s")

	v.SetDefault("REPORT_DIR", "./reports")
	v.SetDefault("REPORT_WORKERS", 2)
	v.SetDefault("REPORT_DOWNLOAD_TTL", "24h")
	v.SetDefault("REPORT_SIGNING_SECRET", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
