// Package config loads bot configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	Prefix       string `env:"COMMAND_PREFIX" envDefault:"!"`

	OwnerIDs         []string `env:"BOT_OWNER_IDS" envSeparator:","`
	LeadershipRoles  []string `env:"LEADERSHIP_ROLES" envDefault:"leader,officer,commander,admin" envSeparator:","`
	DisabledCommands []string `env:"DISABLED_COMMANDS" envSeparator:","`

	ChatCooldown           time.Duration `env:"CHAT_COOLDOWN" envDefault:"5s"`
	CooldownSweepThreshold int           `env:"COOLDOWN_SWEEP_THRESHOLD" envDefault:"500"`
	CooldownHorizon        time.Duration `env:"COOLDOWN_HORIZON" envDefault:"60s"`

	// AIProviders is the ordered fallback chain, e.g. "pollinations,g4f:gpt-oss-120b".
	AIProviders []string `env:"AI_PROVIDERS" envDefault:"pollinations,g4f:gpt-oss-120b" envSeparator:","`

	WargamingAppID string `env:"WARGAMING_APP_ID"`
	WargamingRealm string `env:"WARGAMING_REALM" envDefault:"eu"`

	MarketAPIURL       string        `env:"MARKET_API_URL"`
	MarketAPIKey       string        `env:"MARKET_API_KEY"`
	MarketProbeTimeout time.Duration `env:"MARKET_PROBE_TIMEOUT" envDefault:"5s"`

	StatusAddr string `env:"STATUS_ADDR" envDefault:":8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile   string `env:"LOG_FILE"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses the current environment without touching .env files.
func Parse() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	c.OwnerIDs = clean(c.OwnerIDs, false)
	c.LeadershipRoles = clean(c.LeadershipRoles, true)
	c.DisabledCommands = clean(c.DisabledCommands, true)
	return &c, nil
}

// Validate checks what the bot binary needs to start.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	if strings.TrimSpace(c.Prefix) == "" {
		return errors.New("COMMAND_PREFIX must not be blank")
	}
	if c.CooldownSweepThreshold <= 0 {
		return errors.New("COOLDOWN_SWEEP_THRESHOLD must be positive")
	}
	if c.CooldownHorizon <= 0 {
		return errors.New("COOLDOWN_HORIZON must be positive")
	}
	return nil
}

// IsOwner reports whether userID is one of the configured bot owners.
func (c *Config) IsOwner(userID string) bool {
	return userID != "" && slices.Contains(c.OwnerIDs, userID)
}

func clean(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
