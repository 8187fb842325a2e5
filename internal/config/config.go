package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
)

// DefaultGatewayBaseURL is the production gateway endpoint.
const DefaultGatewayBaseURL = "https://api.blackcatpagamentos.com"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
// Gateway credentials have no default: a missing key is reported on first use.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Gateway
	GatewayBaseURL   string
	GatewayPublicKey string
	GatewaySecretKey string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxConcurrency     int
	BreakerMaxRequests int
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration

	// Inbound
	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitIdleTTL time.Duration
	AllowedOrigins   []string

	// Observability
	OTLPEndpoint string // empty disables trace export
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GatewayBaseURL:   getEnv("GATEWAY_BASE_URL", DefaultGatewayBaseURL),
		GatewayPublicKey: getEnv("GATEWAY_PUBLIC_KEY", ""),
		GatewaySecretKey: getEnv("GATEWAY_SECRET_KEY", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 15*time.Second),

		MaxConcurrency:     getEnvInt("GATEWAY_MAX_CONCURRENCY", 50),
		BreakerMaxRequests: getEnvInt("CB_MAX_REQUESTS", 3),
		BreakerInterval:    getEnvDuration("CB_INTERVAL", 30*time.Second),
		BreakerTimeout:     getEnvDuration("CB_TIMEOUT", 10*time.Second),

		RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 10),
		RateLimitIdleTTL: getEnvDuration("RATE_LIMIT_IDLE_TTL", 3*time.Minute),
		AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// Credentials returns the gateway key pair. It is the only place secrets
// leave the configuration.
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{
		PublicKey: c.GatewayPublicKey,
		SecretKey: c.GatewaySecretKey,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
