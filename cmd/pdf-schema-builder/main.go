package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/afero"

	"github.com/a3tai/pdf-schema-builder/internal/ai"
	"github.com/a3tai/pdf-schema-builder/internal/config"
	"github.com/a3tai/pdf-schema-builder/internal/mcp"
	"github.com/a3tai/pdf-schema-builder/internal/pdf"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/security"
	"github.com/a3tai/pdf-schema-builder/internal/project"
	"github.com/a3tai/pdf-schema-builder/internal/storage"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// extractorCacheSize is the number of parsed documents kept per process
const extractorCacheSize = 16

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol in stdio mode
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// buildServer wires storage, extraction and the AI client into an MCP server
func buildServer(cfg *config.Config, fs afero.Fs) (*mcp.Server, error) {
	paths, err := security.NewPathValidator(cfg.PDFDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid upload directory: %w", err)
	}
	uploads := pdf.NewValidator(cfg.MaxFileSize, paths)

	projects, err := project.NewService(project.Deps{
		Store:              storage.OpenPersistence(fs, cfg.DataDirectory, cfg.LocalQuota),
		Validator:          uploads,
		Extractor:          extraction.NewExtractor(extractorCacheSize, cfg.IsDebug()),
		AI:                 ai.New(cfg.AIURL, cfg.AITimeout),
		BeautifyIterations: cfg.BeautifyIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open projects: %w", err)
	}

	return mcp.NewServer(cfg, projects, mcp.Options{Uploads: uploads, ExportFS: fs})
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, cfg *config.Config, server *mcp.Server) {
	// the parent process controls our lifecycle
	if err := server.Run(ctx); err != nil {
		if cfg.IsDebug() {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}
	if !cfg.AIEnabled() {
		log.Printf("No AI service configured; display names fall back to intents")
	}

	server, err := buildServer(cfg, afero.NewOsFs())
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, cfg, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Schema Builder\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
