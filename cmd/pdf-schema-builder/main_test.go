package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/a3tai/pdf-schema-builder/internal/config"
)

const testVersion = "1.2.3"

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = originalStdout }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
		w.Close()
	}()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	<-done
	return buf.String()
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	tests := []struct {
		name      string
		version   string
		buildTime string
		gitCommit string
	}{
		{"build flags", testVersion, "2023-12-01_10:30:00", "abc123"},
		{"defaults", "dev", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, buildTime, gitCommit = tt.version, tt.buildTime, tt.gitCommit
			output := captureStdout(t, printVersion)

			for _, expected := range []string{
				"PDF Schema Builder",
				"Version: " + tt.version,
				"Build Time: " + tt.buildTime,
				"Git Commit: " + tt.gitCommit,
				"Built with:",
			} {
				if !strings.Contains(output, expected) {
					t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
				}
			}
		})
	}
}

func TestSetupLogging(t *testing.T) {
	originalOutput := log.Writer()
	originalFlags := log.Flags()
	defer func() {
		log.SetOutput(originalOutput)
		log.SetFlags(originalFlags)
	}()

	t.Run("stdio debug logs to stderr", func(t *testing.T) {
		setupLogging(&config.Config{Mode: config.ModeStdio, LogLevel: "debug"})
		if log.Writer() != os.Stderr {
			t.Error("setupLogging() for stdio debug mode should set output to stderr")
		}
	})

	t.Run("stdio discards logs", func(t *testing.T) {
		setupLogging(&config.Config{Mode: config.ModeStdio, LogLevel: "info"})
		if log.Writer() != io.Discard {
			t.Error("setupLogging() for stdio non-debug mode should discard output")
		}
	})

	t.Run("server adds file info", func(t *testing.T) {
		log.SetOutput(originalOutput)
		setupLogging(&config.Config{Mode: config.ModeServer, LogLevel: "info"})
		if got, want := log.Flags(), log.LstdFlags|log.Lshortfile; got != want {
			t.Errorf("setupLogging() for server mode: flags = %v, want %v", got, want)
		}
	})

	t.Run("nil config panics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("setupLogging() with nil config should panic, but it didn't")
			}
		}()
		setupLogging(nil)
	})
}

func TestBuildServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = "/uploads"
	cfg.DataDirectory = "/data"
	cfg.ExportDirectory = "/exports"

	server, err := buildServer(cfg, afero.NewMemMapFs())
	if err != nil {
		t.Fatalf("buildServer() error = %v", err)
	}
	if server == nil {
		t.Fatal("buildServer() returned nil server")
	}

	cfg.PDFDirectory = ""
	if _, err := buildServer(cfg, afero.NewMemMapFs()); err == nil {
		t.Error("buildServer() should fail without an upload directory")
	}
}
