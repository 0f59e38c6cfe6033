package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"

	"github.com/a3tai/pdf-schema-builder/internal/config"
	"github.com/a3tai/pdf-schema-builder/internal/editor"
	"github.com/a3tai/pdf-schema-builder/internal/pdf"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/security"
	"github.com/a3tai/pdf-schema-builder/internal/project"
)

// shutdownTimeout bounds the graceful stop of the SSE server
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	projects  *project.Service
	uploads   *pdf.Validator
	exportFS  afero.Fs
	exports   *security.PathValidator
	mcpServer *server.MCPServer

	mu sync.Mutex
	// beautify sessions by project id
	sessions map[string]*editor.Session
}

// Options are the optional collaborators of NewServer
type Options struct {
	// Uploads reads PDFs by path; defaults to a validator without a sandbox
	Uploads *pdf.Validator
	// ExportFS receives written exports; defaults to the OS filesystem
	ExportFS afero.Fs
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, projects *project.Service, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if projects == nil {
		return nil, fmt.Errorf("project service cannot be nil")
	}
	if opts.Uploads == nil {
		opts.Uploads = pdf.NewValidator(cfg.MaxFileSize, nil)
	}
	if opts.ExportFS == nil {
		opts.ExportFS = afero.NewOsFs()
	}

	var exports *security.PathValidator
	if cfg.ExportDirectory != "" {
		v, err := security.NewPathValidator(cfg.ExportDirectory)
		if err != nil {
			return nil, fmt.Errorf("invalid export directory: %w", err)
		}
		exports = v
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		projects:  projects,
		uploads:   opts.Uploads,
		exportFS:  opts.ExportFS,
		exports:   exports,
		mcpServer: mcpServer,
		sessions:  make(map[string]*editor.Session),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	defer s.closeSessions()
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF schema builder in stdio mode")
		log.Printf("Data directory: %s", s.config.DataDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting PDF schema builder SSE server on %s", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve sse: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sse.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down sse server: %w", err)
	}
	log.Printf("SSE server stopped")
	return nil
}

// closeSessions abandons every running beautify session
func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}
