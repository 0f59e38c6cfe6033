package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort               = 8080
	DefaultHost               = "127.0.0.1"
	DefaultLogLevel           = "info"
	DefaultMaxFileSize        = 20 * 1024 * 1024 // 20MB
	DefaultAITimeout          = 60 * time.Second
	DefaultBeautifyIterations = 2
	DefaultLocalQuota         = 5 * 1024 * 1024

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "PDF_SCHEMA"
)

// Config holds all configuration for the schema builder
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Storage configuration
	PDFDirectory    string // sandbox for uploads by path
	DataDirectory   string
	ExportDirectory string
	LocalQuota      int // bytes, fallback string store

	// AI service
	AIURL              string // empty disables AI features
	AITimeout          time.Duration
	BeautifyIterations int

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF upload size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:               ModeStdio,
		Host:               DefaultHost,
		Port:               DefaultPort,
		PDFDirectory:       currentDir,
		DataDirectory:      filepath.Join(currentDir, ".pdf-schema"),
		ExportDirectory:    filepath.Join(currentDir, "exports"),
		LocalQuota:         DefaultLocalQuota,
		AITimeout:          DefaultAITimeout,
		BeautifyIterations: DefaultBeautifyIterations,
		Version:            "1.0.0",
		ServerName:         "pdf-schema-builder",
		LogLevel:           DefaultLogLevel,
		MaxFileSize:        DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	for _, dir := range []*string{&cfg.PDFDirectory, &cfg.DataDirectory, &cfg.ExportDirectory} {
		if *dir == "" {
			continue
		}
		if expanded, err := filepath.Abs(*dir); err == nil {
			*dir = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	// ai-url is read from PDF_SCHEMA_AI_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("datadir", cfg.DataDirectory)
	viper.SetDefault("exportdir", cfg.ExportDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("ai-url", cfg.AIURL)
	viper.SetDefault("ai-timeout", cfg.AITimeout)
	viper.SetDefault("beautify-iterations", cfg.BeautifyIterations)
	viper.SetDefault("local-quota", cfg.LocalQuota)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP/SSE server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory PDFs may be uploaded from by path")
	pflag.String("datadir", cfg.DataDirectory, "Directory holding projects, PDFs and schemas")
	pflag.String("exportdir", cfg.ExportDirectory, "Directory export artifacts are written to")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF upload size in bytes")
	pflag.String("ai-url", cfg.AIURL, "Base URL of the AI service (empty disables AI features)")
	pflag.Duration("ai-timeout", cfg.AITimeout, "Timeout of one AI request")
	pflag.Int("beautify-iterations", cfg.BeautifyIterations, "Iteration limit of a beautify session")
	pflag.Int("local-quota", cfg.LocalQuota, "Byte quota of the fallback string store")
}

var flagNames = []string{
	"mode", "host", "port", "dir", "datadir", "exportdir", "loglevel", "maxfilesize",
	"ai-url", "ai-timeout", "beautify-iterations", "local-quota",
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range flagNames {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Schema Builder - turn PDF form fields into a typed form schema over MCP\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --datadir=/var/lib/schemas               # custom data directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081                # SSE server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --ai-url=http://localhost:3000           # enable AI features\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_MODE                 Server mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_HOST                 Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_PORT                 Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_DIR                  Upload directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_DATADIR              Data directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_EXPORTDIR            Export directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_LOGLEVEL             Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_MAXFILESIZE          Maximum upload size\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_AI_URL               AI service URL\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_AI_TIMEOUT           AI request timeout\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_BEAUTIFY_ITERATIONS  Beautify iteration limit\n")
		fmt.Fprintf(os.Stderr, "  PDF_SCHEMA_LOCAL_QUOTA          Fallback store quota\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// ErrVersionRequested is returned by LoadFromFlags for --version
var ErrVersionRequested = errors.New("version requested")

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.DataDirectory = viper.GetString("datadir")
	cfg.ExportDirectory = viper.GetString("exportdir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.AIURL = viper.GetString("ai-url")
	cfg.AITimeout = viper.GetDuration("ai-timeout")
	cfg.BeautifyIterations = viper.GetInt("beautify-iterations")
	cfg.LocalQuota = viper.GetInt("local-quota")
}

// Validate checks if the configuration is valid. The data and export
// directories are created when missing.
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}
	if c.DataDirectory == "" {
		return errors.New("data directory cannot be empty")
	}

	for _, dir := range []string{c.DataDirectory, c.ExportDirectory} {
		if dir == "" {
			continue
		}
		if err := ensureDir(dir); err != nil {
			return err
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.AITimeout <= 0 {
		return errors.New("AI timeout must be positive")
	}
	if c.BeautifyIterations < 1 {
		return errors.New("beautify iterations must be at least 1")
	}
	if c.LocalQuota < 0 {
		return errors.New("local quota cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// AIEnabled reports whether an AI service is configured
func (c *Config) AIEnabled() bool {
	return c.AIURL != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, DataDirectory: %s, "+
		"ExportDirectory: %s, LogLevel: %s, MaxFileSize: %d, AIURL: %s, AITimeout: %s, BeautifyIterations: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.DataDirectory, c.ExportDirectory, c.LogLevel,
		c.MaxFileSize, c.AIURL, c.AITimeout, c.BeautifyIterations)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
