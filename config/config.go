// Package config loads the service configuration from a YAML or JSON file
// with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/procsched/core/metrics"
	"github.com/kilianp07/procsched/core/optimizer"
	"github.com/kilianp07/procsched/core/runlog"
	"github.com/kilianp07/procsched/infra/mqtt"
	"github.com/kilianp07/procsched/infra/sqlstore"
)

// EnvPrefix marks environment overrides. PS_STORE__DSN sets store.dsn.
const EnvPrefix = "PS_"

type Config struct {
	Optimizer optimizer.Config `json:"optimizer"`
	Store     sqlstore.Config  `json:"store"`
	RunLog    runlog.Config    `json:"run_log"`
	Metrics   metrics.Config   `json:"metrics"`
	MQTT      mqtt.Config      `json:"mqtt"`
	API       APIConfig        `json:"api"`
	Logging   LoggingConfig    `json:"logging"`
	Sentry    SentryConfig     `json:"sentry"`
	Remote    RemoteConfig     `json:"remote"`
}

// Load reads path, applies PS_ environment overrides, fills defaults and
// validates every section. An empty path loads defaults and environment
// only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Optimizer.SetDefaults()
	c.Store.SetDefaults()
	c.RunLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.API.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []struct {
		section string
		err     error
	}{
		{"optimizer", c.Optimizer.Validate()},
		{"store", c.Store.Validate()},
		{"run_log", c.RunLog.Validate()},
		{"mqtt", c.MQTT.Validate()},
		{"api", c.API.Validate()},
		{"logging", c.Logging.Validate()},
		{"sentry", c.Sentry.Validate()},
		{"remote", c.Remote.Validate()},
	}
	for _, ch := range checks {
		if ch.err != nil {
			return fmt.Errorf("%s: %w", ch.section, ch.err)
		}
	}
	return nil
}
