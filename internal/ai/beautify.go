package ai

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"github.com/a3tai/pdf-schema-builder/internal/ai/sse"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// EventType is the "event:" name of a beautify stream event
type EventType string

const (
	EventStart             EventType = "start"
	EventIterationStart    EventType = "iteration-start"
	EventScreenshot        EventType = "screenshot"
	EventAnalysis          EventType = "analysis"
	EventChanges           EventType = "changes"
	EventIterationComplete EventType = "iteration-complete"
	EventComplete          EventType = "complete"
	EventError             EventType = "error"
)

// Change is one attribute edit proposed for an item
type Change struct {
	UniqueID  string `json:"unique_id"`
	Attribute string `json:"attribute"`
	OldValue  any    `json:"old_value,omitempty"`
	NewValue  any    `json:"new_value,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// BeautifyEvent is a decoded stream event. Only the fields relevant to Type
// are set.
type BeautifyEvent struct {
	Type       EventType     `json:"type"`
	Iteration  int           `json:"iteration,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
	Reasoning  string        `json:"reasoning,omitempty"`
	Changes    []Change      `json:"changes,omitempty"`
	Schema     schema.Schema `json:"schema,omitempty"`
	Message    string        `json:"message,omitempty"`
}

type eventPayload struct {
	Iteration  any             `json:"iteration"`
	Screenshot string          `json:"screenshot"`
	Analysis   string          `json:"analysis"`
	Reasoning  string          `json:"reasoning"`
	Changes    []Change        `json:"changes"`
	Schema     json.RawMessage `json:"schema"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
}

// DecodeEvent interprets an SSE event of the beautify protocol. Unknown
// event types decode with only Type set.
func DecodeEvent(ev sse.Event) (BeautifyEvent, error) {
	out := BeautifyEvent{Type: EventType(ev.Type)}
	if ev.Data == "" {
		return out, nil
	}

	var p eventPayload
	if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
		if out.Type == EventError {
			out.Message = ev.Data
			return out, nil
		}
		return out, fmt.Errorf("invalid %s event payload: %w", ev.Type, err)
	}

	out.Iteration = cast.ToInt(p.Iteration)
	out.Screenshot = p.Screenshot
	out.Reasoning = p.Analysis
	if out.Reasoning == "" {
		out.Reasoning = p.Reasoning
	}
	out.Changes = p.Changes
	out.Message = p.Error
	if out.Message == "" {
		out.Message = p.Message
	}

	if out.Type == EventComplete {
		if len(p.Schema) == 0 || string(p.Schema) == "null" {
			return out, fmt.Errorf("complete event is missing schema")
		}
		if err := json.Unmarshal(p.Schema, &out.Schema); err != nil {
			return out, fmt.Errorf("invalid schema in complete event: %w", err)
		}
	}
	return out, nil
}
