package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.ServerName != "pdf-schema-builder" {
		t.Errorf("Expected default server name to be 'pdf-schema-builder', got '%s'", cfg.ServerName)
	}

	if cfg.MaxFileSize != 20*1024*1024 {
		t.Errorf("Expected default max file size to be 20MB, got %d", cfg.MaxFileSize)
	}

	if cfg.BeautifyIterations != 2 {
		t.Errorf("Expected default beautify iterations to be 2, got %d", cfg.BeautifyIterations)
	}

	if cfg.AITimeout != time.Minute {
		t.Errorf("Expected default AI timeout to be 1m, got %s", cfg.AITimeout)
	}

	if cfg.AIEnabled() {
		t.Error("Expected AI to be disabled without a URL")
	}

	currentDir, _ := os.Getwd()
	if cfg.PDFDirectory != currentDir {
		t.Errorf("Expected default PDF directory to be '%s', got '%s'", currentDir, cfg.PDFDirectory)
	}
	if cfg.DataDirectory != filepath.Join(currentDir, ".pdf-schema") {
		t.Errorf("Unexpected default data directory '%s'", cfg.DataDirectory)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Mode:               ModeStdio,
		Host:               DefaultHost,
		Port:               DefaultPort,
		PDFDirectory:       dir,
		DataDirectory:      filepath.Join(dir, "data"),
		ExportDirectory:    filepath.Join(dir, "exports"),
		AITimeout:          time.Second,
		BeautifyIterations: 2,
		LogLevel:           "info",
		MaxFileSize:        1024,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config - stdio mode", mutate: func(*Config) {}},
		{name: "valid config - server mode", mutate: func(c *Config) { c.Mode = ModeServer }},
		{name: "invalid mode", mutate: func(c *Config) { c.Mode = "invalid" }, wantErr: "mode must be"},
		{
			name:    "invalid port - too low (server mode)",
			mutate:  func(c *Config) { c.Mode = ModeServer; c.Port = 0 },
			wantErr: "port must be",
		},
		{
			name:    "invalid port - too high (server mode)",
			mutate:  func(c *Config) { c.Mode = ModeServer; c.Port = 70000 },
			wantErr: "port must be",
		},
		{name: "invalid port ignored in stdio mode", mutate: func(c *Config) { c.Port = 0 }},
		{name: "empty PDF directory", mutate: func(c *Config) { c.PDFDirectory = "" }, wantErr: "PDF directory"},
		{name: "empty data directory", mutate: func(c *Config) { c.DataDirectory = "" }, wantErr: "data directory"},
		{name: "no export directory", mutate: func(c *Config) { c.ExportDirectory = "" }},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "invalid" }, wantErr: "invalid log level"},
		{name: "invalid max file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "file size"},
		{name: "invalid AI timeout", mutate: func(c *Config) { c.AITimeout = 0 }, wantErr: "AI timeout"},
		{name: "zero beautify iterations", mutate: func(c *Config) { c.BeautifyIterations = 0 }, wantErr: "beautify"},
		{name: "negative local quota", mutate: func(c *Config) { c.LocalQuota = -1 }, wantErr: "quota"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Config.Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesDirectories(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() unexpected error = %v", err)
	}
	for _, dir := range []string{cfg.DataDirectory, cfg.ExportDirectory} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected %s to be created, got %v", dir, err)
		}
	}
}

func TestConfigValidateRejectsFileAsDirectory(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(cfg.PDFDirectory, "data")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("Config.Validate() error = %v, want not a directory", err)
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{logLevel: "debug", want: true},
		{logLevel: "info", want: false},
		{logLevel: "warn", want: false},
		{logLevel: "error", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigModes(t *testing.T) {
	cfg := &Config{Mode: ModeServer}
	if !cfg.IsServerMode() || cfg.IsStdioMode() {
		t.Error("expected server mode")
	}
	cfg.Mode = ModeStdio
	if cfg.IsServerMode() || !cfg.IsStdioMode() {
		t.Error("expected stdio mode")
	}
}

func TestConfigString(t *testing.T) {
	cfg := validConfig(t)
	cfg.AIURL = "http://ai.local"
	s := cfg.String()
	for _, want := range []string{"Mode: stdio", "AIURL: http://ai.local", "BeautifyIterations: 2"} {
		if !strings.Contains(s, want) {
			t.Errorf("Config.String() = %s, missing %q", s, want)
		}
	}
}
