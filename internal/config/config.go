package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration shared by the server and the dbtool.
type Config struct {
	Port        string
	DatabaseURL string

	ORSAPIKey        string
	ORSBaseURL       string
	ORSProfile       string
	ORSTimeout       time.Duration
	ORSRatePerMinute int

	CacheBackend string
	RedisAddr    string
	RedisTTL     time.Duration

	FallbackSpeedKmh float64
	MaxDetourMeters  float64
	CandidateLimit   int
	TopK             int
	MatchWorkers     int

	LogLevel  string
	LogFormat string
	SeedPath  string
}

// Cache backends understood by CACHE_BACKEND.
const (
	CacheNone     = "none"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ORS_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("ORS_PROFILE", "driving-car")
	v.SetDefault("ORS_TIMEOUT", 10*time.Second)
	v.SetDefault("ORS_RATE_PER_MINUTE", 40)
	v.SetDefault("CACHE_BACKEND", CachePostgres)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_TTL", 7*24*time.Hour)
	v.SetDefault("FALLBACK_SPEED_KMH", 25.0)
	v.SetDefault("MAX_DETOUR_METERS", 50000.0)
	v.SetDefault("CANDIDATE_LIMIT", 50)
	v.SetDefault("TOP_K", 30)
	v.SetDefault("MATCH_WORKERS", 4)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SEED_PATH", "data/seeds/warehouses.json")
}

// Load reads an optional .env file and then the environment.
// It reports whether a .env file was found so callers can log it.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, dotenv, fmt.Errorf("load config: %w", err)
	}
	return cfg, dotenv, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:             strings.TrimSpace(v.GetString("PORT")),
		DatabaseURL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
		ORSAPIKey:        strings.TrimSpace(v.GetString("ORS_API_KEY")),
		ORSBaseURL:       strings.TrimRight(strings.TrimSpace(v.GetString("ORS_BASE_URL")), "/"),
		ORSProfile:       strings.TrimSpace(v.GetString("ORS_PROFILE")),
		ORSTimeout:       v.GetDuration("ORS_TIMEOUT"),
		ORSRatePerMinute: v.GetInt("ORS_RATE_PER_MINUTE"),
		CacheBackend:     strings.ToLower(strings.TrimSpace(v.GetString("CACHE_BACKEND"))),
		RedisAddr:        strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisTTL:         v.GetDuration("REDIS_TTL"),
		FallbackSpeedKmh: v.GetFloat64("FALLBACK_SPEED_KMH"),
		MaxDetourMeters:  v.GetFloat64("MAX_DETOUR_METERS"),
		CandidateLimit:   v.GetInt("CANDIDATE_LIMIT"),
		TopK:             v.GetInt("TOP_K"),
		MatchWorkers:     v.GetInt("MATCH_WORKERS"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		SeedPath:         v.GetString("SEED_PATH"),
	}
}

// Validate checks value ranges. DATABASE_URL is checked by the commands that need it.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.FallbackSpeedKmh <= 0 {
		errs = append(errs, fmt.Errorf("FALLBACK_SPEED_KMH must be > 0, got %v", c.FallbackSpeedKmh))
	}
	if c.MaxDetourMeters <= 0 {
		errs = append(errs, fmt.Errorf("MAX_DETOUR_METERS must be > 0, got %v", c.MaxDetourMeters))
	}
	if c.CandidateLimit < 1 {
		errs = append(errs, fmt.Errorf("CANDIDATE_LIMIT must be >= 1, got %d", c.CandidateLimit))
	}
	if c.TopK < 1 {
		errs = append(errs, fmt.Errorf("TOP_K must be >= 1, got %d", c.TopK))
	}
	if c.MatchWorkers < 1 {
		errs = append(errs, fmt.Errorf("MATCH_WORKERS must be >= 1, got %d", c.MatchWorkers))
	}
	if c.ORSRatePerMinute < 1 {
		errs = append(errs, fmt.Errorf("ORS_RATE_PER_MINUTE must be >= 1, got %d", c.ORSRatePerMinute))
	}

	switch c.CacheBackend {
	case CacheNone, CachePostgres, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be one of none|postgres|redis, got %q", c.CacheBackend))
	}

	return errors.Join(errs...)
}

// PreciseRouting reports whether an ORS key is configured.
func (c *Config) PreciseRouting() bool { return c.ORSAPIKey != "" }
