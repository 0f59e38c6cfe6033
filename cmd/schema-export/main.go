package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/a3tai/pdf-schema-builder/internal/config"
	"github.com/a3tai/pdf-schema-builder/internal/pdf"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
	"github.com/a3tai/pdf-schema-builder/internal/project"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
	"github.com/a3tai/pdf-schema-builder/internal/storage"
)

// options are the parsed command line flags
type options struct {
	format  string
	dataDir string
	out     string
	verbose bool
}

// FieldsResult is the json output of the fields command
type FieldsResult struct {
	FilePath   string             `json:"file_path"`
	NumPages   int                `json:"num_pages"`
	FieldCount int                `json:"field_count"`
	Fields     []extraction.Field `json:"fields"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, afero.NewOsFs()))
}

func run(args []string, stdout, stderr io.Writer, fs afero.Fs) int {
	flags := pflag.NewFlagSet("schema-export", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts options
	flags.StringVar(&opts.format, "format", "", "Output format: text or json for fields; ts, json or yaml for schemas")
	flags.StringVar(&opts.dataDir, "datadir", defaultDataDir(), "Data directory of the schema builder")
	flags.StringVarP(&opts.out, "out", "o", "", "Write the output to this file instead of stdout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	help := flags.BoolP("help", "h", false, "Show help message")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *help {
		printHelp(stdout, flags)
		return 0
	}

	log.SetOutput(stderr)
	if !opts.verbose {
		log.SetOutput(io.Discard)
	}

	rest := flags.Args()
	if len(rest) == 0 {
		fmt.Fprintf(stderr, "Error: command required\n\n")
		printUsage(stderr)
		return 2
	}

	var (
		output string
		err    error
	)
	switch cmd := rest[0]; cmd {
	case "fields":
		if len(rest) != 2 {
			fmt.Fprintf(stderr, "Error: PDF file path required\n\n")
			printUsage(stderr)
			return 2
		}
		output, err = fieldsCommand(fs, rest[1], opts)
	case "projects":
		output, err = projectsCommand(fs, opts)
	case "schema":
		if len(rest) != 2 {
			fmt.Fprintf(stderr, "Error: project id required\n\n")
			printUsage(stderr)
			return 2
		}
		output, err = schemaCommand(fs, rest[1], opts)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmd)
		printUsage(stderr)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.out == "" {
		fmt.Fprintln(stdout, output)
		return 0
	}
	if err := afero.WriteFile(fs, opts.out, []byte(output+"\n"), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write %s: %v\n", opts.out, err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", opts.out)
	return 0
}

func defaultDataDir() string {
	return config.DefaultConfig().DataDirectory
}

func fieldsCommand(fs afero.Fs, path string, opts options) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	if _, err := pdf.NewValidator(pdf.DefaultMaxFileSize, nil).Accept(filepath.Base(path), data); err != nil {
		return "", err
	}

	doc := extraction.NewExtractor(1, opts.verbose).Extract(data)
	result := FieldsResult{
		FilePath:   path,
		NumPages:   doc.NumPages,
		FieldCount: len(doc.Fields),
		Fields:     doc.Fields,
	}

	switch opts.format {
	case "", "text":
		return fieldsText(result), nil
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode fields: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", opts.format)
	}
}

func fieldsText(result FieldsResult) string {
	if result.FieldCount == 0 {
		return "⚠️  No form fields detected in the PDF"
	}

	text := fmt.Sprintf("✅ Extracted %d form fields from %d page(s)\n", result.FieldCount, result.NumPages)
	for i, field := range result.Fields {
		text += fmt.Sprintf("\n[%d] %s\n", i+1, field.Name)
		text += fmt.Sprintf("    Type: %s\n", field.Type)
		if field.Value != nil {
			text += fmt.Sprintf("    Value: %v\n", field.Value)
		}
		text += fmt.Sprintf("    Page: %d\n", field.Page)
		text += fmt.Sprintf("    Position: (%.1f, %.1f) to (%.1f, %.1f)\n",
			field.Rect[0], field.Rect[1], field.Rect[2], field.Rect[3])

		var properties []string
		if field.Required {
			properties = append(properties, "Required")
		}
		if field.ReadOnly {
			properties = append(properties, "ReadOnly")
		}
		if len(properties) > 0 {
			text += fmt.Sprintf("    Properties: %v\n", properties)
		}
		if len(field.Options) > 0 {
			text += fmt.Sprintf("    Options: %v\n", field.Options)
		}
	}
	return text
}

func openProjects(fs afero.Fs, opts options) (*project.Service, error) {
	return project.NewService(project.Deps{
		Store: storage.OpenPersistence(fs, opts.dataDir, config.DefaultLocalQuota),
	})
}

func projectsCommand(fs afero.Fs, opts options) (string, error) {
	projects, err := openProjects(fs, opts)
	if err != nil {
		return "", err
	}
	list := projects.List()
	if len(list) == 0 {
		return "No projects found in " + opts.dataDir, nil
	}
	var text string
	for _, p := range list {
		text += fmt.Sprintf("%s\t%s\t%s\n", p.ID, p.FormType, p.Name)
	}
	return text, nil
}

func schemaCommand(fs afero.Fs, id string, opts options) (string, error) {
	projects, err := openProjects(fs, opts)
	if err != nil {
		return "", err
	}
	page, err := projects.Open(context.Background(), id)
	if err != nil {
		return "", err
	}

	requested := opts.format
	if requested == "" {
		requested = string(schema.FormatTypeScript)
	}
	format, err := schema.ParseFormat(requested)
	if err != nil {
		return "", err
	}
	_, out, err := page.Export(format)
	return out, err
}

func printHelp(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "Schema Export - inspect PDF form fields and export stored schemas")
	fmt.Fprintln(w)
	printUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprint(w, flags.FlagUsages())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  schema-export [OPTIONS] fields <pdf_file>")
	fmt.Fprintln(w, "  schema-export [OPTIONS] projects")
	fmt.Fprintln(w, "  schema-export [OPTIONS] schema <project_id>")
}
