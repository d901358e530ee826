package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Pipeline  PipelineConfig
	Model     ModelConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	ScrapeLog ScrapeLogConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance behind the render engine.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 10

	// DefaultProxy is the default proxy URL for all requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// ScraperConfig controls per-request scraping behavior.
type ScraperConfig struct {
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s

	// NavigationTimeout is the max time for page.Navigate alone.
	NavigationTimeout time.Duration // default: 15s

	// FetchTimeout is the deadline for the plain HTTP fetch engine.
	FetchTimeout time.Duration // default: 10s

	// BlockedResourceTypes lists browser resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// PipelineConfig controls the contact extraction pipeline.
type PipelineConfig struct {
	// BatchSize is how many URLs a batch scrape processes concurrently.
	BatchSize int // default: 5

	// MaxExtraPages caps how many contact pages beyond the homepage
	// are scraped successfully before the pipeline stops following links.
	MaxExtraPages int // default: 4

	// MaxFoundLinks caps contact links taken from the homepage.
	MaxFoundLinks int // default: 3

	// MaxGeneratedCandidates caps guessed contact paths tried when the
	// homepage links yield too little.
	MaxGeneratedCandidates int // default: 3

	// MinContentLength is the markdown length below which a scraped page
	// does not count as a usable contact page.
	MinContentLength int // default: 100
}

// ModelConfig configures the language model used for contact extraction.
type ModelConfig struct {
	// Provider selects the adapter: openai, anthropic, deepseek, google, mistral.
	Provider string // default: "openai"

	// APIKey authenticates against the provider. Empty means model
	// extraction is unavailable and the regex fallback is used.
	APIKey string

	// Model is the provider-specific model identifier.
	Model string

	// BaseURL overrides the provider endpoint (for proxies or self-hosting).
	BaseURL string

	// Timeout bounds a single completion call.
	Timeout time.Duration // default: 60s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// ScrapeLogConfig controls signed delivery of scrape attempt records.
type ScrapeLogConfig struct {
	// URL is the endpoint attempt records are posted to. Empty disables delivery.
	URL string

	// Secret signs each delivery with HMAC-SHA256.
	Secret string

	// Timeout bounds a single delivery attempt.
	Timeout time.Duration // default: 10s

	// MaxRetries is how many times a failed delivery is retried.
	MaxRetries int // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PROSPECT_HOST", "0.0.0.0"),
			Port: envIntOr("PROSPECT_PORT", 8080),
			Mode: envOr("PROSPECT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("PROSPECT_HEADLESS", true),
			MaxPages:     envIntOr("PROSPECT_MAX_PAGES", 10),
			DefaultProxy: os.Getenv("PROSPECT_PROXY"),
			NoSandbox:    envBoolOr("PROSPECT_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("PROSPECT_BROWSER_BIN"),
		},
		Scraper: ScraperConfig{
			DefaultTimeout:    envDurationOr("PROSPECT_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:        envDurationOr("PROSPECT_MAX_TIMEOUT", 120*time.Second),
			NavigationTimeout: envDurationOr("PROSPECT_NAV_TIMEOUT", 15*time.Second),
			FetchTimeout:      envDurationOr("PROSPECT_FETCH_TIMEOUT", 10*time.Second),
			BlockedResourceTypes: envSliceOr("PROSPECT_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Pipeline: PipelineConfig{
			BatchSize:              envIntOr("PROSPECT_BATCH_SIZE", 5),
			MaxExtraPages:          envIntOr("PROSPECT_MAX_EXTRA_PAGES", 4),
			MaxFoundLinks:          envIntOr("PROSPECT_MAX_FOUND_LINKS", 3),
			MaxGeneratedCandidates: envIntOr("PROSPECT_MAX_GENERATED", 3),
			MinContentLength:       envIntOr("PROSPECT_MIN_CONTENT_LENGTH", 100),
		},
		Model: ModelConfig{
			Provider: envOr("PROSPECT_MODEL_PROVIDER", "openai"),
			APIKey:   os.Getenv("PROSPECT_MODEL_API_KEY"),
			Model:    os.Getenv("PROSPECT_MODEL_NAME"),
			BaseURL:  os.Getenv("PROSPECT_MODEL_BASE_URL"),
			Timeout:  envDurationOr("PROSPECT_MODEL_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PROSPECT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PROSPECT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PROSPECT_RATE_RPS", 5.0),
			Burst:             envIntOr("PROSPECT_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("PROSPECT_CACHE_MAX_ENTRIES", 1000),
		},
		ScrapeLog: ScrapeLogConfig{
			URL:        os.Getenv("PROSPECT_SCRAPELOG_URL"),
			Secret:     os.Getenv("PROSPECT_SCRAPELOG_SECRET"),
			Timeout:    envDurationOr("PROSPECT_SCRAPELOG_TIMEOUT", 10*time.Second),
			MaxRetries: envIntOr("PROSPECT_SCRAPELOG_RETRIES", 3),
		},
		Log: LogConfig{
			Level:  envOr("PROSPECT_LOG_LEVEL", "info"),
			Format: envOr("PROSPECT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
