// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingToken is returned by Validate when no Telegram bot token is configured.
var ErrMissingToken = errors.New("telegram token not configured")

// Config holds the settings of both the mail bot and the form filler.
type Config struct {
	Telegram Telegram `yaml:"telegram"`
	Gmail    Gmail    `yaml:"gmail"`
	Store    Store    `yaml:"store"`
	Server   Server   `yaml:"server"`
	Form     Form     `yaml:"form"`
}

type Telegram struct {
	Token string `yaml:"token"`
}

type Gmail struct {
	Credentials string `yaml:"credentials"`
	Token       string `yaml:"token"`
	Label       string `yaml:"label"`
	ListSize    int    `yaml:"list_size"`
}

type Store struct {
	Path string `yaml:"path"`
}

// Server is the health check listener.
type Server struct {
	Port int `yaml:"port"`
}

type Form struct {
	URL           string        `yaml:"url"`
	Answers       string        `yaml:"answers"`
	Headless      bool          `yaml:"headless"`
	SubmitLabels  []string      `yaml:"submit_labels"`
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
	ChoiceSettle  time.Duration `yaml:"choice_settle"`
	SubmitSettle  time.Duration `yaml:"submit_settle"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Gmail: Gmail{
			Credentials: "credentials.json",
			Token:       "token.json",
			Label:       "INBOX",
			ListSize:    5,
		},
		Store:  Store{Path: "emails.db"},
		Server: Server{Port: 10000},
		Form: Form{
			Answers:       "answers.csv",
			SubmitLabels:  []string{"Надіслати", "Submit", "Отправить"},
			SubmitTimeout: 10 * time.Second,
			ChoiceSettle:  500 * time.Millisecond,
			SubmitSettle:  2 * time.Second,
		},
	}
}

// Load reads the YAML file at path (with ${VAR} expansion) on top of the
// defaults, then applies environment overrides. A missing file is not an
// error. Variables from a .env file in the working directory are loaded first.
func Load(path string) (*Config, error) {
	// .env is optional; existing environment variables win
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parse(data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

func parse(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config YAML: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Telegram.Token = envOrDefault("TELEGRAM_TOKEN", cfg.Telegram.Token)
	cfg.Gmail.Credentials = envOrDefault("GMAIL_CREDENTIALS", cfg.Gmail.Credentials)
	cfg.Gmail.Token = envOrDefault("GMAIL_TOKEN", cfg.Gmail.Token)
	cfg.Store.Path = envOrDefault("DB_PATH", cfg.Store.Path)
	cfg.Server.Port = envOrDefaultInt("PORT", cfg.Server.Port)
	cfg.Form.URL = envOrDefault("FORM_URL", cfg.Form.URL)
}

// normalize restores defaults wiped out by empty YAML values.
func (c *Config) normalize() {
	def := Default()
	if strings.TrimSpace(c.Gmail.Label) == "" {
		c.Gmail.Label = def.Gmail.Label
	}
	if c.Gmail.ListSize < 1 || c.Gmail.ListSize > def.Gmail.ListSize {
		c.Gmail.ListSize = def.Gmail.ListSize
	}
	if len(c.Form.SubmitLabels) == 0 {
		c.Form.SubmitLabels = def.Form.SubmitLabels
	}
	if c.Form.SubmitTimeout <= 0 {
		c.Form.SubmitTimeout = def.Form.SubmitTimeout
	}
}

// ValidateBot checks the settings the mail bot cannot start without.
func (c *Config) ValidateBot() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
