package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	StoreDriver   string
	DB            DBConfig
	DBAutoMigrate bool
	TxTimeout     time.Duration

	CacheDriver string
	Redis       RedisConfig
	CacheTTL    time.Duration

	JWTSecret          string
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadEnv reads the process environment. A .env file in the working
// directory is loaded first when present; real variables win.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr: envString("APP_ADDR", ":8080"),
		GinMode: envString("GIN_MODE", ""),

		StoreDriver: strings.ToLower(envString("STORE_DRIVER", "mysql")),
		DB: DBConfig{
			Host:     envString("DB_HOST", "127.0.0.1"),
			Port:     envInt("DB_PORT", 3306),
			User:     envString("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     envString("DB_NAME", "daladala"),
		},
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", false),
		TxTimeout:     envDuration("TX_TIMEOUT", 5*time.Second),

		CacheDriver: strings.ToLower(envString("CACHE_DRIVER", "memory")),
		Redis: RedisConfig{
			Addr:     envString("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		CacheTTL: envDuration("CACHE_TTL", 30*time.Second),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		RateLimitRPS:       envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     envInt("RATE_LIMIT_BURST", 10),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "text"),
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return n
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return f
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return b
	}
	return fallback
}

// envDuration accepts Go durations ("5s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
