package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "CAREER_"
	envConfigPath = envPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CAREER_CONFIG is set
//  3. env (prefix CAREER_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CAREER_MAX_BOTS -> max_bots; underscores are kept to match koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Slices decode element-wise into existing values, so start them empty
	// and restore the defaults only when nothing overrides them.
	cfg := *base
	cfg.Events = nil
	cfg.StageEvents = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if cfg.Events == nil {
		cfg.Events = base.Events
	}
	if cfg.StageEvents == nil {
		cfg.StageEvents = base.StageEvents
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the service cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxBots <= 0:
		return fmt.Errorf("%w: max_bots must be positive", ErrInvalidConfig)
	case c.Quintiles <= 0 || c.Quintiles > c.MaxBots:
		return fmt.Errorf("%w: quintiles must be in [1, max_bots]", ErrInvalidConfig)
	case c.FieldSize <= 0:
		return fmt.Errorf("%w: field_size must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}

	seen := make(map[int]struct{}, len(c.Events))
	for _, e := range c.Events {
		if e.MaxPoints <= 0 {
			return fmt.Errorf("%w: event %d: max_points must be positive", ErrInvalidConfig, e.Number)
		}
		if _, dup := seen[e.Number]; dup {
			return fmt.Errorf("%w: event %d configured twice", ErrInvalidConfig, e.Number)
		}
		seen[e.Number] = struct{}{}
	}
	return nil
}
