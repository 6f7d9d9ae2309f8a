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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if LEVELUP_CONFIG is set
//  3. env (prefix LEVELUP_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("LEVELUP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: LEVELUP_API_BASE_URL, LEVELUP_LOG_LEVEL, ...
	// Map env keys like LEVELUP_HTTP_TIMEOUT_MS -> http_timeout_ms (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("LEVELUP_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "levelup_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("%w: api_base_url must not be empty", ErrInvalidConfig)
	}
	if cfg.HTTPTimeoutMS <= 0 {
		return nil, fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
