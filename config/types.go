// Package config loads the layered application configuration:
// defaults, then an optional YAML file, then environment variables.
package config

import "time"

// Config is the root configuration tree.
type Config struct {
	App    AppConfig    `koanf:"app"`
	Server ServerConfig `koanf:"server"`
	Docs   DocsConfig   `koanf:"docs"`
	Cache  CacheConfig  `koanf:"cache"`
	Log    LogConfig    `koanf:"log"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name    string `koanf:"name" validate:"required"`
	Version string `koanf:"version"`
	Env     string `koanf:"env" validate:"oneof=development staging production"`
	Debug   bool   `koanf:"debug"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port" validate:"min=1,max=65535"`
	BasePath string        `koanf:"basepath"`
	Timeout  TimeoutConfig `koanf:"timeout"`
	Rate     RateConfig    `koanf:"rate"`
}

// TimeoutConfig groups the server timeouts.
type TimeoutConfig struct {
	Read     time.Duration `koanf:"read"`
	Write    time.Duration `koanf:"write"`
	Idle     time.Duration `koanf:"idle"`
	Shutdown time.Duration `koanf:"shutdown"`
}

// RateConfig configures request rate limiting.
type RateConfig struct {
	Limit float64 `koanf:"limit"`
	Burst int     `koanf:"burst"`
}

// DocsConfig controls the documentation surface.
type DocsConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Path     string `koanf:"path"`
	SpecPath string `koanf:"specpath"`
	Title    string `koanf:"title"`
}

// CacheConfig controls the manifest build cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}
