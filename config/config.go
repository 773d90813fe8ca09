package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ADORN_"

// Load builds the configuration from three layers, later layers
// overriding earlier ones:
//  1. built-in defaults
//  2. the YAML file at path, when it exists (path may be "")
//  3. ADORN_-prefixed environment variables
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(envprovider.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	return unmarshal(k)
}

// LoadBytes builds the configuration from defaults plus an in-memory
// YAML document. Environment variables are not consulted.
func LoadBytes(doc []byte) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(doc), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parse config document: %w", err)
	}

	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps ADORN_SERVER_PORT to server.port.
func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "_", ".")
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":    "adorn-service",
		"app.version": "v0.1.0",
		"app.env":     "development",
		"app.debug":   false,

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.basepath":         "",
		"server.timeout.read":     "15s",
		"server.timeout.write":    "30s",
		"server.timeout.idle":     "60s",
		"server.timeout.shutdown": "10s",
		"server.rate.limit":       100,
		"server.rate.burst":       200,

		"docs.enabled":  true,
		"docs.path":     "/docs",
		"docs.specpath": "/openapi.json",
		"docs.title":    "API Documentation",

		"cache.enabled": true,
		"cache.dir":     ".adorn-cache",

		"log.level":  "info",
		"log.pretty": false,
	}
}
