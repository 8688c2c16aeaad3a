package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	// Load configuration without a config file
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	// Test Server defaults
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected default server host '127.0.0.1', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 8099 {
		t.Errorf("Expected default server port 8099, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Expected default write timeout 30s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Debug != false {
		t.Errorf("Expected default debug false, got %v", cfg.Server.Debug)
	}

	// Test Docker defaults
	if cfg.Docker.Socket != "" {
		t.Errorf("Expected default docker socket '', got '%s'", cfg.Docker.Socket)
	}
	if cfg.Docker.ApplyUp != true {
		t.Errorf("Expected default apply_up true, got %v", cfg.Docker.ApplyUp)
	}

	// Test Caddy defaults
	if cfg.Caddy.AdminURL != "http://localhost:2019" {
		t.Errorf("Expected default admin url 'http://localhost:2019', got '%s'", cfg.Caddy.AdminURL)
	}
	if cfg.Caddy.AdminTimeout != 2*time.Second {
		t.Errorf("Expected default admin timeout 2s, got %v", cfg.Caddy.AdminTimeout)
	}

	// Test Discovery defaults
	if cfg.Discovery.Root != "" {
		t.Errorf("Expected default discovery root '', got '%s'", cfg.Discovery.Root)
	}

	// Test Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default logging format 'text', got '%s'", cfg.Logging.Format)
	}

	// Test Security defaults
	if cfg.Security.RateLimit != 100 {
		t.Errorf("Expected default rate limit 100, got %d", cfg.Security.RateLimit)
	}
	if len(cfg.Security.AllowedOrigins) != 1 || cfg.Security.AllowedOrigins[0] != "*" {
		t.Errorf("Expected default allowed origins ['*'], got %v", cfg.Security.AllowedOrigins)
	}
}

// TestValidation tests the configuration validation logic.
func TestValidation(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		expectErr bool
		errMsg    string
	}{
		{
			name: "valid configuration",
			cfg: &Config{
				Server: ServerConfig{Port: 8099},
				Caddy: CaddyConfig{
					AdminURL:     "http://localhost:2019",
					AdminTimeout: 2 * time.Second,
				},
			},
			expectErr: false,
		},
		{
			name: "invalid port - too low",
			cfg: &Config{
				Server: ServerConfig{Port: 0},
				Caddy: CaddyConfig{
					AdminURL:     "http://localhost:2019",
					AdminTimeout: 2 * time.Second,
				},
			},
			expectErr: true,
			errMsg:    "invalid server port",
		},
		{
			name: "invalid port - too high",
			cfg: &Config{
				Server: ServerConfig{Port: 70000},
				Caddy: CaddyConfig{
					AdminURL:     "http://localhost:2019",
					AdminTimeout: 2 * time.Second,
				},
			},
			expectErr: true,
			errMsg:    "invalid server port",
		},
		{
			name: "missing admin url",
			cfg: &Config{
				Server: ServerConfig{Port: 8099},
				Caddy: CaddyConfig{
					AdminURL:     "",
					AdminTimeout: 2 * time.Second,
				},
			},
			expectErr: true,
			errMsg:    "caddy admin url is required",
		},
		{
			name: "non-positive admin timeout",
			cfg: &Config{
				Server: ServerConfig{Port: 8099},
				Caddy: CaddyConfig{
					AdminURL:     "http://localhost:2019",
					AdminTimeout: 0,
				},
			},
			expectErr: true,
			errMsg:    "caddy admin timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.cfg)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
			}
		})
	}
}

// TestEnvironmentVariableOverride tests that environment variables override config values.
func TestEnvironmentVariableOverride(t *testing.T) {
	// Save original env vars
	originalPort := os.Getenv("PX_SERVER_PORT")
	originalRoot := os.Getenv("PX_DISCOVERY_ROOT")
	originalApplyUp := os.Getenv("PX_DOCKER_APPLY_UP")

	// Set test env vars
	os.Setenv("PX_SERVER_PORT", "9999")
	os.Setenv("PX_DISCOVERY_ROOT", "/srv/stacks")
	os.Setenv("PX_DOCKER_APPLY_UP", "false")

	// Cleanup after test
	defer func() {
		if originalPort != "" {
			os.Setenv("PX_SERVER_PORT", originalPort)
		} else {
			os.Unsetenv("PX_SERVER_PORT")
		}
		if originalRoot != "" {
			os.Setenv("PX_DISCOVERY_ROOT", originalRoot)
		} else {
			os.Unsetenv("PX_DISCOVERY_ROOT")
		}
		if originalApplyUp != "" {
			os.Setenv("PX_DOCKER_APPLY_UP", originalApplyUp)
		} else {
			os.Unsetenv("PX_DOCKER_APPLY_UP")
		}
	}()

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from environment, got %d", cfg.Server.Port)
	}
	if cfg.Discovery.Root != "/srv/stacks" {
		t.Errorf("Expected discovery root '/srv/stacks' from environment, got '%s'", cfg.Discovery.Root)
	}
	if cfg.Docker.ApplyUp != false {
		t.Errorf("Expected apply_up false from environment, got %v", cfg.Docker.ApplyUp)
	}
}
