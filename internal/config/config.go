// Package config loads runtime configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr         = ":8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultContentDir   = "content"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Services ServicesConfig `yaml:"services"`
	Content  ContentConfig  `yaml:"content"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// ServicesConfig holds the remote collaborator base URLs. Any empty URL puts
// the corresponding client into offline demo mode.
type ServicesConfig struct {
	CartURL     string `yaml:"cart_url"`
	CatalogURL  string `yaml:"catalog_url"`
	AuthURL     string `yaml:"auth_url"`
	CheckoutURL string `yaml:"checkout_url"`
}

// ContentConfig points at the markdown content directory.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads the YAML file at path (skipped when path is empty or missing),
// applies GEAR_WEB_* environment overrides, then fills defaults.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if port := envValue("PORT"); port != "" {
		cfg.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if v := envValue("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := envValue("CART_URL"); v != "" {
		cfg.Services.CartURL = v
	}
	if v := envValue("CATALOG_URL"); v != "" {
		cfg.Services.CatalogURL = v
	}
	if v := envValue("AUTH_URL"); v != "" {
		cfg.Services.AuthURL = v
	}
	if v := envValue("CHECKOUT_URL"); v != "" {
		cfg.Services.CheckoutURL = v
	}
	if v := envValue("CONTENT_DIR"); v != "" {
		cfg.Content.Dir = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		// Cloud-style PORT fallback before the hard default
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			cfg.Server.Addr = ":" + port
		} else {
			cfg.Server.Addr = defaultAddr
		}
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = defaultContentDir
	}
}

func envValue(suffix string) string {
	return strings.TrimSpace(os.Getenv("GEAR_WEB_" + suffix))
}
