package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/a3tai/pdf-schema-builder/internal/grouping"
	"github.com/a3tai/pdf-schema-builder/internal/project"
	"github.com/a3tai/pdf-schema-builder/internal/storage"
	"github.com/a3tai/pdf-schema-builder/internal/testsupport"
)

func runCmd(fs afero.Fs, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr, fs)
	return code, stdout.String(), stderr.String()
}

// seed stores a project with one saved item and returns its id
func seed(t *testing.T, fs afero.Fs) string {
	t.Helper()
	ctx := context.Background()
	svc, err := project.NewService(project.Deps{Store: storage.OpenPersistence(fs, "/data", 0)})
	if err != nil {
		t.Fatal(err)
	}
	p, err := svc.Create("Appraisal", "appraisal")
	if err != nil {
		t.Fatal(err)
	}
	page, err := svc.Open(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := page.Upload(ctx, "application/pdf", testsupport.FormPDF()); err != nil {
		t.Fatal(err)
	}
	if err := page.SelectFields([]string{"owner_name"}); err != nil {
		t.Fatal(err)
	}
	if _, err := page.GroupSelection(ctx, grouping.TextContinuation, "Owner", ""); err != nil {
		t.Fatal(err)
	}
	if err := page.Editor().Save(false); err != nil {
		t.Fatal(err)
	}
	return p.ID
}

func TestRun_Usage(t *testing.T) {
	fs := afero.NewMemMapFs()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{"help", []string{"--help"}, 0, "USAGE:", ""},
		{"no command", nil, 2, "", "command required"},
		{"unknown command", []string{"render"}, 2, "", `unknown command "render"`},
		{"fields without path", []string{"fields"}, 2, "", "PDF file path required"},
		{"schema without id", []string{"schema"}, 2, "", "project id required"},
		{"bad flag", []string{"--nope"}, 2, "", "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCmd(fs, tt.args...)
			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stdout, tt.wantOut) {
				t.Errorf("stdout missing %q:\n%s", tt.wantOut, stdout)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantErr, stderr)
			}
		})
	}
}

func TestRun_Fields(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/forms/form.pdf", testsupport.FormPDF(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/forms/notes.txt", []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCmd(fs, "fields", "/forms/form.pdf")
	if code != 0 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr)
	}
	for _, want := range []string{"Extracted 8 form fields", "[1] owner_name", "Properties: [Required]", "Type: radio"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("text output missing %q:\n%s", want, stdout)
		}
	}

	code, stdout, _ = runCmd(fs, "--format", "json", "fields", "/forms/form.pdf")
	if code != 0 {
		t.Fatalf("run() = %d", code)
	}
	var result FieldsResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if result.FieldCount != 8 || result.NumPages != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	if code, _, stderr := runCmd(fs, "fields", "/forms/notes.txt"); code != 1 || !strings.Contains(stderr, "Please upload a PDF file") {
		t.Errorf("non-pdf input: code %d, stderr %s", code, stderr)
	}
	if code, _, _ := runCmd(fs, "fields", "/forms/missing.pdf"); code != 1 {
		t.Errorf("missing input should fail, got %d", code)
	}
	if code, _, _ := runCmd(fs, "--format", "xml", "fields", "/forms/form.pdf"); code != 1 {
		t.Errorf("unknown format should fail, got %d", code)
	}
}

func TestRun_SchemaExport(t *testing.T) {
	fs := afero.NewMemMapFs()
	id := seed(t, fs)

	code, stdout, stderr := runCmd(fs, "--datadir", "/data", "projects")
	if code != 0 || !strings.Contains(stdout, id+"\tappraisal\tAppraisal") {
		t.Errorf("projects: code %d, stdout %s, stderr %s", code, stdout, stderr)
	}

	code, stdout, stderr = runCmd(fs, "--datadir", "/data", "schema", id)
	if code != 0 {
		t.Fatalf("schema: code %d, stderr %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "export const appraisal_schema = [") {
		t.Errorf("unexpected ts export:\n%s", stdout)
	}

	code, stdout, _ = runCmd(fs, "--datadir", "/data", "--format", "yaml", "-o", "/out/schema.yaml", "schema", id)
	if code != 0 || !strings.Contains(stdout, "Wrote /out/schema.yaml") {
		t.Fatalf("schema -o: code %d, stdout %s", code, stdout)
	}
	written, err := afero.ReadFile(fs, "/out/schema.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(written), "unique_id: owner_name") {
		t.Errorf("unexpected yaml export:\n%s", written)
	}

	if code, _, stderr := runCmd(fs, "--datadir", "/data", "schema", "missing"); code != 1 || !strings.Contains(stderr, "not found") {
		t.Errorf("missing project: code %d, stderr %s", code, stderr)
	}
	if code, stdout, _ := runCmd(fs, "--datadir", "/empty", "projects"); code != 0 || !strings.Contains(stdout, "No projects found") {
		t.Errorf("empty data dir: code %d, stdout %s", code, stdout)
	}
}
