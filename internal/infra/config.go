package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	StaticDir          string
	CORSAllowedOrigins []string

	ReplicateToken   string
	ReplicateBaseURL string

	SeedreamVersion   string
	NanoBananaVersion string
	RefineVersion     string
	DefaultModel      string

	PollInterval time.Duration
	PollTimeout  time.Duration

	HTTPReadTimeout time.Duration
	// HTTPWriteTimeout must stay above PollTimeout: the response is held open
	// while the prediction is polled.
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// Model version identifiers are intentionally not required here: each one is only
// needed when a request actually selects that model.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		StaticDir:          getEnv("STATIC_DIR", "web"),
		CORSAllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		ReplicateToken:     os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:   getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
		SeedreamVersion:    os.Getenv("SEEDREAM_VERSION"),
		NanoBananaVersion:  os.Getenv("NANO_BANANA_VERSION"),
		RefineVersion:      os.Getenv("REFINE_VERSION"),
		DefaultModel:       getEnv("DEFAULT_MODEL", "seedream"),
		PollInterval:       time.Millisecond * time.Duration(getEnvInt("POLL_INTERVAL_MS", 2000)),
		PollTimeout:        time.Millisecond * time.Duration(getEnvInt("POLL_TIMEOUT_MS", 120000)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.ReplicateToken == "" {
		return nil, fmt.Errorf("REPLICATE_API_TOKEN is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_MS must be positive")
	}
	if cfg.PollTimeout <= 0 {
		return nil, fmt.Errorf("POLL_TIMEOUT_MS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
