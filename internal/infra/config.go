package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"legendemer/internal/domain"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	GeminiAPIKey     string
	ImageModel       string
	VideoModel       string
	TextModel        string
	VideoResolution  string
	VideoAspectRatio string
	PollInitial      time.Duration
	PollMaxInterval  time.Duration
	PollMultiplier   float64
	PollMaxAttempts  int
	PollTimeout      time.Duration
	EnrichCacheTTL   time.Duration
	ResultTTL        time.Duration
	OutputDir        string
	GeoIPDBPath      string
	DefaultLocale    string
	AllowedOrigins   []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	UpstreamPerMin   int
	// CredentialsAdminToken guards POST /v1/credentials. Empty leaves it open.
	CredentialsAdminToken string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		ImageModel:       getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		VideoModel:       getEnv("GEMINI_VIDEO_MODEL", "veo-3.1-fast-generate-preview"),
		TextModel:        getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		VideoResolution:  getEnv("VIDEO_RESOLUTION", "720p"),
		VideoAspectRatio: getEnv("VIDEO_ASPECT_RATIO", "9:16"),
		PollInitial:      getEnvDuration("VIDEO_POLL_INITIAL", 5*time.Second),
		PollMaxInterval:  getEnvDuration("VIDEO_POLL_MAX_INTERVAL", 30*time.Second),
		PollMultiplier:   getEnvFloat("VIDEO_POLL_MULTIPLIER", 1.5),
		PollMaxAttempts:  getEnvInt("VIDEO_POLL_MAX_ATTEMPTS", 60),
		PollTimeout:      getEnvDuration("VIDEO_POLL_TIMEOUT", 10*time.Minute),
		EnrichCacheTTL:   getEnvDuration("ENRICH_CACHE_TTL", 6*time.Hour),
		ResultTTL:        getEnvDuration("RESULT_TTL", 30*time.Minute),
		OutputDir:        strings.TrimSpace(os.Getenv("OUTPUT_DIR")),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "fr"),
		AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 720)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		UpstreamPerMin:   getEnvInt("UPSTREAM_REQUESTS_PER_MINUTE", 60),

		CredentialsAdminToken: strings.TrimSpace(os.Getenv("CREDENTIALS_ADMIN_TOKEN")),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required: %w", domain.ErrMissingCredential)
	}

	// A synchronous video request must be able to outlive the poll timeout.
	if minWrite := cfg.PollTimeout + time.Minute; cfg.HTTPWriteTimeout < minWrite {
		cfg.HTTPWriteTimeout = minWrite
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

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
