// Package config manages application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sermonmail/internal/retry"
)

// Config holds all application configuration.
type Config struct {
	// YouTube settings
	YouTubeAPIKey       string
	ChannelIDs          []string
	MaxVideosPerChannel int

	// Email settings
	SendGridAPIKey string
	SenderEmail    string
	RecipientEmail string

	// Scheduling
	CheckInterval time.Duration

	// Delivery history
	HistoryPath  string
	HistoryLimit int

	// Logging
	LogLevel  string
	LogFile   string
	LogFormat string

	// Retry settings for transient API errors
	Retry retry.Config

	// Warnings collects non-fatal findings (odd channel ID formats) for
	// the caller to log once logging is set up.
	Warnings []string
}

// Default returns configuration with safe defaults for the optional fields.
func Default() *Config {
	return &Config{
		MaxVideosPerChannel: 50,
		CheckInterval:       24 * time.Hour,
		HistoryPath:         "sermonmail.json",
		HistoryLimit:        30,
		LogLevel:            "info",
		LogFormat:           "text",
		Retry:               retry.DefaultConfig(),
	}
}

// Load reads configuration from the environment, with a .env file applied
// first if present. Missing required keys fail loudly at startup.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := Default()

	var err error
	if cfg.YouTubeAPIKey, err = requiredEnv("YOUTUBE_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.SendGridAPIKey, err = requiredEnv("SENDGRID_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.SenderEmail, err = requiredEnv("SENDER_EMAIL"); err != nil {
		return nil, err
	}
	if cfg.RecipientEmail, err = requiredEnv("RECIPIENT_EMAIL"); err != nil {
		return nil, err
	}

	rawIDs, err := requiredEnv("YOUTUBE_CHANNEL_IDS")
	if err != nil {
		return nil, err
	}
	cfg.ChannelIDs = splitChannelIDs(rawIDs)
	if len(cfg.ChannelIDs) == 0 {
		return nil, fmt.Errorf("config: YOUTUBE_CHANNEL_IDS contains no channel IDs")
	}
	for _, id := range cfg.ChannelIDs {
		// Channel IDs start with UC and are 24 characters long.
		if !strings.HasPrefix(id, "UC") || len(id) != 24 {
			cfg.Warnings = append(cfg.Warnings,
				fmt.Sprintf("channel ID %q may not be in the correct format", id))
		}
	}

	cfg.loadOptional()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadOptional overrides defaults with optional environment variables.
// Malformed values keep the default and are reported through Warnings.
func (c *Config) loadOptional() {
	if v := os.Getenv("CHECK_INTERVAL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CheckInterval = time.Duration(n) * time.Hour
		} else {
			c.warnBadValue("CHECK_INTERVAL_HOURS", v)
		}
	}
	if v := os.Getenv("MAX_VIDEOS_PER_CHANNEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxVideosPerChannel = n
		} else {
			c.warnBadValue("MAX_VIDEOS_PER_CHANNEL", v)
		}
	}
	if v := os.Getenv("HISTORY_PATH"); v != "" {
		c.HistoryPath = v
	}
	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HistoryLimit = n
		} else {
			c.warnBadValue("HISTORY_LIMIT", v)
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxRetries = n
		} else {
			c.warnBadValue("MAX_RETRIES", v)
		}
	}
	if v := os.Getenv("INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Retry.InitialBackoff = d
		} else {
			c.warnBadValue("INITIAL_BACKOFF", v)
		}
	}
	if v := os.Getenv("MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Retry.MaxBackoff = d
		} else {
			c.warnBadValue("MAX_BACKOFF", v)
		}
	}
}

func (c *Config) warnBadValue(key, value string) {
	c.Warnings = append(c.Warnings,
		fmt.Sprintf("ignoring %s=%q: not a valid value, using default", key, value))
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !strings.Contains(c.SenderEmail, "@") {
		return fmt.Errorf("config: SENDER_EMAIL %q is not a valid address", c.SenderEmail)
	}
	if !strings.Contains(c.RecipientEmail, "@") {
		return fmt.Errorf("config: RECIPIENT_EMAIL %q is not a valid address", c.RecipientEmail)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("config: CHECK_INTERVAL_HOURS must be positive")
	}
	if c.MaxVideosPerChannel <= 0 {
		return fmt.Errorf("config: MAX_VIDEOS_PER_CHANNEL must be positive")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("config: HISTORY_LIMIT must be non-negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("config: MAX_RETRIES must be non-negative")
	}
	if c.Retry.InitialBackoff <= 0 {
		return fmt.Errorf("config: INITIAL_BACKOFF must be positive")
	}
	if c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		return fmt.Errorf("config: MAX_BACKOFF must be >= INITIAL_BACKOFF")
	}
	return nil
}

func requiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("config: required environment variable %s is not set", key)
	}
	return value, nil
}

func splitChannelIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
