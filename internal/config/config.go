// Package config provides configuration management for Proxium.
//
// Configuration is loaded in the following order (later sources
// override earlier ones):
//  1. Default values
//  2. Configuration files (./config.yaml, ~/.proxium/config.yaml, /etc/proxium/config.yaml)
//  3. .env files
//  4. Environment variables (PX_ prefix, e.g. PX_SERVER_PORT=8099)
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	// Server configures the HTTP API server.
	Server ServerConfig `mapstructure:"server"`

	// Docker configures the container engine connection.
	Docker DockerConfig `mapstructure:"docker"`

	// Caddy configures the proxy daemon admin API.
	Caddy CaddyConfig `mapstructure:"caddy"`

	// Discovery configures compose file discovery.
	Discovery DiscoveryConfig `mapstructure:"discovery"`

	// Logging contains logging settings.
	Logging LoggingConfig `mapstructure:"logging"`

	// Security contains rate limiting and CORS settings for the API.
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 127.0.0.1; the tool is
	// local-machine only)
	Host string `mapstructure:"host"`

	// Port is the server listen port
	Port int `mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Debug enables debug logging
	Debug bool `mapstructure:"debug"`
}

// DockerConfig contains container engine settings.
type DockerConfig struct {
	// Socket is an explicit engine socket path; empty means autodetect
	// (DOCKER_HOST, then podman, then the default docker socket)
	Socket string `mapstructure:"socket"`

	// ApplyUp runs `compose up -d` after a proxy config is written
	ApplyUp bool `mapstructure:"apply_up"`
}

// CaddyConfig contains proxy daemon admin API settings.
type CaddyConfig struct {
	// AdminURL is the admin API base URL
	AdminURL string `mapstructure:"admin_url"`

	// AdminTimeout bounds every admin API call so an unreachable
	// daemon cannot stall a refresh cycle
	AdminTimeout time.Duration `mapstructure:"admin_timeout"`
}

// DiscoveryConfig contains compose discovery settings.
type DiscoveryConfig struct {
	// Root is the directory searched for compose files; empty means
	// the current working directory
	Root string `mapstructure:"root"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format"`
}

// SecurityConfig contains API hardening settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client
	RateLimit int `mapstructure:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from a file and environment variables. If
// cfgFile is empty, it searches the standard locations.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.proxium")
		v.AddConfigPath("/etc/proxium")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("PX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8099)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)

	v.SetDefault("docker.socket", "")
	v.SetDefault("docker.apply_up", true)

	v.SetDefault("caddy.admin_url", "http://localhost:2019")
	v.SetDefault("caddy.admin_timeout", "2s")

	v.SetDefault("discovery.root", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Caddy.AdminURL == "" {
		return fmt.Errorf("caddy admin url is required")
	}
	if cfg.Caddy.AdminTimeout <= 0 {
		return fmt.Errorf("caddy admin timeout must be positive")
	}
	return nil
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
