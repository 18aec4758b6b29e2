// Package config loads runtime configuration from the environment.
//
// Values come from (highest priority first): real environment variables,
// a .env file in the working directory, and the defaults below.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Submit modes for publishing a post to reddit.
const (
	SubmitModeThread = "thread" // comment on the subreddit's stickied thread
	SubmitModeNew    = "new"    // create a new self post
)

// Config holds application configuration.
type Config struct {
	Port        int
	Env         string
	LogLevel    slog.Level
	DBPath      string
	SecretKey   string
	TemplateDir string // optional on-disk override of the embedded templates
	StaticDir   string // optional on-disk override of the embedded static files
	GAID        string
	DateFormat  string
	RateLimit   string // ulule/limiter formatted rate, e.g. "30-M"

	CookieMaxAge int // seconds; applies to the u and b cookies
	FeedSize     int
	FeedCacheTTL time.Duration

	Reddit RedditConfig
}

// RedditConfig holds the OAuth app credentials and publishing options.
type RedditConfig struct {
	ClientID               string
	ClientSecret           string
	RedirectURI            string
	UserAgent              string
	Subreddit              string
	SubmitMode             string
	PersistRefreshedTokens bool
	HTTPTimeout            time.Duration
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("DB_PATH", "data/daily3.db")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("TEMPLATE_DIR", "")
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("GA_ID", "")
	v.SetDefault("DATE_FORMAT", "Jan 2, 2006")
	v.SetDefault("RATE_LIMIT", "30-M")
	v.SetDefault("COOKIE_MAX_AGE", 2678400)
	v.SetDefault("FEED_SIZE", 50)
	v.SetDefault("FEED_CACHE_TTL", "10m")

	v.SetDefault("REDDIT_CLIENT_ID", "")
	v.SetDefault("REDDIT_CLIENT_SECRET", "")
	v.SetDefault("REDDIT_REDIRECT_URI", "http://localhost:8080/authorize")
	v.SetDefault("REDDIT_USER_AGENT", "Daily3.me by u/orionmelt ver 0.3.")
	v.SetDefault("REDDIT_SUBREDDIT", "")
	v.SetDefault("REDDIT_SUBMIT_MODE", SubmitModeThread)
	v.SetDefault("REDDIT_PERSIST_REFRESHED_TOKENS", false)
	v.SetDefault("REDDIT_HTTP_TIMEOUT", "10s")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:         v.GetInt("PORT"),
		Env:          strings.ToLower(v.GetString("ENV")),
		DBPath:       v.GetString("DB_PATH"),
		SecretKey:    v.GetString("SECRET_KEY"),
		TemplateDir:  v.GetString("TEMPLATE_DIR"),
		StaticDir:    v.GetString("STATIC_DIR"),
		GAID:         v.GetString("GA_ID"),
		DateFormat:   v.GetString("DATE_FORMAT"),
		RateLimit:    v.GetString("RATE_LIMIT"),
		CookieMaxAge: v.GetInt("COOKIE_MAX_AGE"),
		FeedSize:     v.GetInt("FEED_SIZE"),
		FeedCacheTTL: v.GetDuration("FEED_CACHE_TTL"),
		Reddit: RedditConfig{
			ClientID:               v.GetString("REDDIT_CLIENT_ID"),
			ClientSecret:           v.GetString("REDDIT_CLIENT_SECRET"),
			RedirectURI:            v.GetString("REDDIT_REDIRECT_URI"),
			UserAgent:              v.GetString("REDDIT_USER_AGENT"),
			Subreddit:              v.GetString("REDDIT_SUBREDDIT"),
			SubmitMode:             strings.ToLower(v.GetString("REDDIT_SUBMIT_MODE")),
			PersistRefreshedTokens: v.GetBool("REDDIT_PERSIST_REFRESHED_TOKENS"),
			HTTPTimeout:            v.GetDuration("REDDIT_HTTP_TIMEOUT"),
		},
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("config: invalid LOG_LEVEL %q: %w", v.GetString("LOG_LEVEL"), err)
	}
	cfg.LogLevel = level

	// Production posts to the real subreddit, everything else to the sandbox.
	if cfg.Reddit.Subreddit == "" {
		cfg.Reddit.Subreddit = "mydaily3_sandbox"
		if cfg.IsProduction() {
			cfg.Reddit.Subreddit = "mydaily3"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SecretKey) < 16 {
		errs = append(errs, errors.New("SECRET_KEY must be at least 16 characters"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	switch c.Reddit.SubmitMode {
	case SubmitModeThread, SubmitModeNew:
	default:
		errs = append(errs, fmt.Errorf("REDDIT_SUBMIT_MODE must be %q or %q, got %q",
			SubmitModeThread, SubmitModeNew, c.Reddit.SubmitMode))
	}
	if c.FeedSize <= 0 {
		errs = append(errs, errors.New("FEED_SIZE must be positive"))
	}
	if c.CookieMaxAge <= 0 {
		errs = append(errs, errors.New("COOKIE_MAX_AGE must be positive"))
	}
	if c.Reddit.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("REDDIT_HTTP_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
