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
	envPrefix  = "ROADREPORT_"
	envFileVar = "ROADREPORT_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ROADREPORT_CONFIG is set
//  3. env (prefix ROADREPORT_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ROADREPORT_MAX_PHOTOS -> max_photos; underscores are kept to match
	// the flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.APIBaseURL == "":
		return fmt.Errorf("%w: api_base_url must not be empty", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.MaxPhotos <= 0 || c.MaxPhotos > MaxPhotosLimit:
		return fmt.Errorf("%w: max_photos must be in [1, %d]", ErrInvalidConfig, MaxPhotosLimit)
	case c.RecentLimit <= 0 || c.HistoryLimit <= 0 || c.MaxListLimit <= 0:
		return fmt.Errorf("%w: list limits must be positive", ErrInvalidConfig)
	case c.RecentLimit > c.MaxListLimit || c.HistoryLimit > c.MaxListLimit:
		return fmt.Errorf("%w: list limits must not exceed max_list_limit", ErrInvalidConfig)
	case c.OutcomeQueueSize <= 0:
		return fmt.Errorf("%w: outcome_queue_size must be positive", ErrInvalidConfig)
	}
	switch c.CapacityPolicy {
	case PolicyRejectAll, PolicyAcceptPrefix:
	default:
		return fmt.Errorf("%w: unknown capacity_policy %q", ErrInvalidConfig, c.CapacityPolicy)
	}
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	return nil
}
