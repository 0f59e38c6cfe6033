// Package pdf gates PDF uploads before anything is stored or parsed.
package pdf

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	apperrors "github.com/a3tai/pdf-schema-builder/internal/errors"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/security"
)

const (
	// ContentType is the only accepted upload type
	ContentType = "application/pdf"
	// DefaultMaxFileSize is the largest accepted upload, 20 MiB
	DefaultMaxFileSize int64 = 20 * 1024 * 1024

	// MsgNotPDF is shown for uploads with the wrong content type
	MsgNotPDF = "Please upload a PDF file"
)

// Upload is a PDF accepted for storage
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Validator enforces the upload type and size constraints
type Validator struct {
	maxFileSize int64
	paths       *security.PathValidator
}

// NewValidator creates a validator. A non-positive maxFileSize selects
// DefaultMaxFileSize; paths may be nil when uploads only arrive as bytes.
func NewValidator(maxFileSize int64, paths *security.PathValidator) *Validator {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Validator{maxFileSize: maxFileSize, paths: paths}
}

// MaxFileSize returns the size limit in bytes
func (v *Validator) MaxFileSize() int64 {
	return v.maxFileSize
}

// ValidateUpload checks the declared content type and size
func (v *Validator) ValidateUpload(contentType string, size int64) error {
	if contentType != ContentType {
		return apperrors.Validation(MsgNotPDF)
	}
	if size > v.maxFileSize {
		return apperrors.Validation(tooLargeMessage(v.maxFileSize))
	}
	return nil
}

// ValidateUpload checks an upload against the default limits
func ValidateUpload(contentType string, size int64) error {
	return NewValidator(DefaultMaxFileSize, nil).ValidateUpload(contentType, size)
}

// Accept validates in-memory bytes. The content type is sniffed from the data.
func (v *Validator) Accept(name string, data []byte) (Upload, error) {
	contentType := DetectContentType(data)
	if err := v.ValidateUpload(contentType, int64(len(data))); err != nil {
		return Upload{}, err
	}
	return Upload{Name: name, ContentType: contentType, Data: data}, nil
}

// ReadFile loads and validates a PDF from the configured directory. The size
// is checked before the file is read.
func (v *Validator) ReadFile(path string) (Upload, error) {
	if v.paths == nil {
		return Upload{}, fmt.Errorf("file uploads are not configured")
	}
	abs, err := v.paths.Resolve(path)
	if err != nil {
		return Upload{}, err
	}

	f, err := os.Open(abs) // #nosec G304 -- path confined by PathValidator
	if err != nil {
		return Upload{}, fmt.Errorf("cannot open upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Upload{}, fmt.Errorf("cannot access upload: %w", err)
	}
	if info.IsDir() {
		return Upload{}, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > v.maxFileSize {
		return Upload{}, apperrors.Validation(tooLargeMessage(v.maxFileSize))
	}

	data, err := io.ReadAll(io.LimitReader(f, v.maxFileSize+1))
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	return v.Accept(filepath.Base(abs), data)
}

// DetectContentType sniffs the MIME type of data without parameters
func DetectContentType(data []byte) string {
	ct := http.DetectContentType(data)
	for i := 0; i < len(ct); i++ {
		if ct[i] == ';' {
			return ct[:i]
		}
	}
	return ct
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("File too large (max %dMB)", limit/(1024*1024))
}
