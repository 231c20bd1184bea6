// ABOUTME: Application configuration from YAML file and environment
// ABOUTME: Environment variables override file values; .env loading happens in main
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort         = 3000
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultSessionDays  = 30
	defaultSweepCron    = "0 * * * *" // hourly
	defaultMaxResults   = 10
	defaultChatTimeout  = 30 // seconds
)

// Config is the top-level application configuration.
type Config struct {
	// Port is the HTTP listen port for the JSON API.
	Port int `yaml:"port"`

	// GoogleClientID and GoogleClientSecret are the OAuth app credentials
	// created in Google Cloud Console.
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`

	// OAuthRedirectURL is the registered callback for the sign-in flow.
	OAuthRedirectURL string `yaml:"oauth_redirect_url"`

	// OpenAIAPIKey authorizes chat completion calls.
	OpenAIAPIKey string `yaml:"openai_api_key"`

	// OpenAIModel selects the completion model.
	OpenAIModel string `yaml:"openai_model"`

	// DBPath is the SQLite session database location.
	DBPath string `yaml:"db_path"`

	// SessionDays is how long a sign-in session lives before it is purged.
	SessionDays int `yaml:"session_days"`

	// SweepCron schedules the expired-session sweep.
	SweepCron string `yaml:"sweep_cron"`

	// MaxResults caps calendar listings used for prompt context.
	MaxResults int `yaml:"max_results"`

	// ChatTimeoutSeconds bounds a whole chat turn including upstream calls.
	ChatTimeoutSeconds int `yaml:"chat_timeout_seconds"`
}

// DefaultDBPath returns the XDG-compliant session database path.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "mindcoach", "sessions.db")
}

func defaults() Config {
	return Config{
		Port:               defaultPort,
		OAuthRedirectURL:   fmt.Sprintf("http://localhost:%d/auth/callback", defaultPort),
		OpenAIModel:        defaultOpenAIModel,
		DBPath:             DefaultDBPath(),
		SessionDays:        defaultSessionDays,
		SweepCron:          defaultSweepCron,
		MaxResults:         defaultMaxResults,
		ChatTimeoutSeconds: defaultChatTimeout,
	}
}

// Load reads the optional YAML config at path, then applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = defaultOpenAIModel
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.SessionDays <= 0 {
		cfg.SessionDays = defaultSessionDays
	}
	if cfg.SweepCron == "" {
		cfg.SweepCron = defaultSweepCron
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.ChatTimeoutSeconds <= 0 {
		cfg.ChatTimeoutSeconds = defaultChatTimeout
	}
	if cfg.OAuthRedirectURL == "" {
		cfg.OAuthRedirectURL = fmt.Sprintf("http://localhost:%d/auth/callback", cfg.Port)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.GoogleClientSecret = v
	}
	if v := os.Getenv("OAUTH_REDIRECT_URL"); v != "" {
		cfg.OAuthRedirectURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
}

// HasGoogleCredentials reports whether the OAuth app is configured.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
