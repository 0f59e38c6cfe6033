// Package ai talks to the external attribute-generation service. Every call
// takes a context; callers decide how a failure degrades.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a3tai/pdf-schema-builder/internal/ai/sse"
	apperrors "github.com/a3tai/pdf-schema-builder/internal/errors"
)

// Endpoint paths relative to the service base URL
const (
	PathGenerateAttributes = "/api/generate-attributes"
	PathCheckboxLabel      = "/api/generate-checkbox-label"
	PathOrganizeSchema     = "/api/organize-schema"
	PathBeautifyBlock      = "/api/beautify-block"
)

// ErrDisabled is returned by every call when no service is configured
var ErrDisabled = errors.New("ai service is not configured")

// Service is the set of AI operations used by the generator and editor
type Service interface {
	GenerateAttributes(ctx context.Context, req AttributesRequest) (AttributesResponse, error)
	GenerateCheckboxLabel(ctx context.Context, req CheckboxLabelRequest) (CheckboxLabelResponse, error)
	OrganizeSchema(ctx context.Context, req OrganizeRequest) (OrganizeResponse, error)
	// BeautifyBlock streams events to handle until the stream ends, handle
	// returns an error, or ctx is done
	BeautifyBlock(ctx context.Context, req BeautifyRequest, handle func(sse.Event) error) error
}

// Client is the HTTP implementation of Service
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client for baseURL. timeout bounds request/response
// calls; the beautify stream is only bounded by its context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

// New returns a Client for baseURL, or Noop when baseURL is empty
func New(baseURL string, timeout time.Duration) Service {
	if baseURL == "" {
		return Noop{}
	}
	return NewClient(baseURL, timeout)
}

// GenerateAttributes requests display attributes for a field group
func (c *Client) GenerateAttributes(ctx context.Context, req AttributesRequest) (AttributesResponse, error) {
	var resp AttributesResponse
	if err := c.call(ctx, PathGenerateAttributes, req, &resp); err != nil {
		return AttributesResponse{}, apperrors.Wrap(apperrors.ErrorTypeAI, "generate attributes", err)
	}
	return resp, nil
}

// GenerateCheckboxLabel requests a label for one checkbox
func (c *Client) GenerateCheckboxLabel(ctx context.Context, req CheckboxLabelRequest) (CheckboxLabelResponse, error) {
	var resp CheckboxLabelResponse
	err := c.call(ctx, PathCheckboxLabel, req, &resp)
	if err == nil {
		err = resp.validate()
	}
	if err != nil {
		return CheckboxLabelResponse{}, apperrors.Wrap(apperrors.ErrorTypeAI, "generate checkbox label", err)
	}
	return resp, nil
}

// OrganizeSchema requests a block assignment for the whole schema. A
// response carrying an error message is returned as an error.
func (c *Client) OrganizeSchema(ctx context.Context, req OrganizeRequest) (OrganizeResponse, error) {
	var resp OrganizeResponse
	err := c.call(ctx, PathOrganizeSchema, req, &resp)
	switch {
	case err != nil:
	case resp.Error != "":
		err = errors.New(resp.Error)
	case resp.Schema == nil:
		err = fmt.Errorf("response is missing schema")
	}
	if err != nil {
		return OrganizeResponse{}, apperrors.Wrap(apperrors.ErrorTypeAI, "organize schema", err)
	}
	return resp, nil
}

// BeautifyBlock posts the request and feeds the response body through an
// SSE parser, handing each event to handle in order
func (c *Client) BeautifyBlock(ctx context.Context, req BeautifyRequest, handle func(sse.Event) error) error {
	resp, err := c.post(ctx, PathBeautifyBlock, req, "text/event-stream")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeAI, "beautify block", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var parser sse.Parser
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				if err := handle(ev); err != nil {
					return err
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return apperrors.Wrap(apperrors.ErrorTypeAI, "beautify stream", readErr)
		}
	}
	for _, ev := range parser.Flush() {
		if err := handle(ev); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.post(ctx, path, body, "application/json")
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, accept string) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		if text := strings.TrimSpace(string(msg)); text != "" {
			return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, text)
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp, nil
}

// Noop is the Service used when AI is disabled. Every call fails with
// ErrDisabled so callers take their fallback path.
type Noop struct{}

func (Noop) GenerateAttributes(context.Context, AttributesRequest) (AttributesResponse, error) {
	return AttributesResponse{}, ErrDisabled
}

func (Noop) GenerateCheckboxLabel(context.Context, CheckboxLabelRequest) (CheckboxLabelResponse, error) {
	return CheckboxLabelResponse{}, ErrDisabled
}

func (Noop) OrganizeSchema(context.Context, OrganizeRequest) (OrganizeResponse, error) {
	return OrganizeResponse{}, ErrDisabled
}

func (Noop) BeautifyBlock(context.Context, BeautifyRequest, func(sse.Event) error) error {
	return ErrDisabled
}
