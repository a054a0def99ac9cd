package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	HTTPAddr string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	LogLevel  string
	LogFormat string

	// Remote Tixflow API
	APIBaseURL     string
	GatewayTimeout time.Duration

	// Redis & drafts
	RedisURL         string
	DraftTTL         time.Duration
	AutosaveInterval time.Duration
	EventsCacheTTL   time.Duration
	SessionIdleTTL   time.Duration

	// Payment frame
	PaymentAllowedOrigin string
	FeeHighThreshold     int64
	FeeHigh              int64
	FeeNormal            int64

	// Upload constraints
	UploadMaxBytes     int64
	UploadAllowedMIME  []string
	UploadObjectPrefix string

	// S3/MinIO
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3UsePathStyle    bool
	S3Bucket          string
	CDNBaseURL        string

	// RabbitMQ
	RabbitURL      string
	RabbitExchange string

	// Rate Limiting
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	CORSAllowedOrigins []string

	// Tracing
	OTELEnabled  bool
	OTELEndpoint string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 45*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", "https://api.tixflow.net/api"), "/")
	cfg.GatewayTimeout = getDuration("GATEWAY_TIMEOUT", 30*time.Second)

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.DraftTTL = getDuration("DRAFT_TTL", 7*24*time.Hour)
	cfg.AutosaveInterval = getDuration("AUTOSAVE_INTERVAL", time.Second)
	cfg.EventsCacheTTL = getDuration("EVENTS_CACHE_TTL", 5*time.Minute)
	cfg.SessionIdleTTL = getDuration("SESSION_IDLE_TTL", 30*time.Minute)

	cfg.PaymentAllowedOrigin = strings.TrimRight(getEnv("PAYMENT_ALLOWED_ORIGIN", ""), "/")
	cfg.FeeHighThreshold = getInt64Env("FEE_HIGH_PRICE_THRESHOLD", 1_000_000)
	cfg.FeeHigh = getInt64Env("FEE_HIGH", 50_000)
	cfg.FeeNormal = getInt64Env("FEE_NORMAL", 30_000)

	cfg.UploadMaxBytes = getInt64Env("UPLOAD_MAX_BYTES", 5*1024*1024)
	cfg.UploadAllowedMIME = getListEnv("UPLOAD_ALLOWED_MIME", []string{"image/jpeg", "image/png", "image/webp", "image/heic"})
	cfg.UploadObjectPrefix = getEnv("UPLOAD_OBJECT_PREFIX", "images")

	cfg.S3Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", "")
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", "")
	cfg.S3Region = getEnv("S3_REGION", "us-east-1")
	cfg.S3UsePathStyle = getBoolEnv("S3_USE_PATH_STYLE", true)
	cfg.S3Bucket = getEnv("S3_BUCKET", "")
	cfg.CDNBaseURL = strings.TrimRight(getEnv("CDN_BASE_URL", ""), "/")

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "tixflow.listing")

	cfg.RLEnabled = getEnv("RL_ENABLED", "true") == "true"
	cfg.RLLimit = getIntEnv("RL_IP_LIMIT", 120)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", time.Minute)

	cfg.CORSAllowedOrigins = getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	cfg.OTELEnabled = getBoolEnv("OTEL_ENABLED", false)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	if cfg.GatewayTimeout <= 0 {
		return nil, fmt.Errorf("GATEWAY_TIMEOUT must be positive")
	}
	if cfg.FeeHigh < 0 || cfg.FeeNormal < 0 {
		return nil, fmt.Errorf("fees must not be negative")
	}

	// dev may run on memory drafts and without storage; everything else must be wired
	if cfg.AppEnv != "dev" {
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("missing REDIS_URL (required when APP_ENV != dev)")
		}
		if cfg.PaymentAllowedOrigin == "" {
			return nil, fmt.Errorf("missing PAYMENT_ALLOWED_ORIGIN (required when APP_ENV != dev)")
		}
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("missing S3_BUCKET (required when APP_ENV != dev)")
		}
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getInt64Env(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(strings.ReplaceAll(v, "_", ""), 10, 64)
	if err != nil {
		return def
	}
	return i
}

func getBoolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getListEnv(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
