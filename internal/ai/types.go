package ai

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// AttributesRequest asks for display attributes of a field group
type AttributesRequest struct {
	Intent     string `json:"intent"`
	FieldType  string `json:"fieldType"`
	PDFContext string `json:"pdfContext"`
	GroupType  string `json:"groupType"`
}

// OptionLabel is a display name proposed for one raw checkbox field
type OptionLabel struct {
	FieldName   string `json:"databaseStored"`
	DisplayName string `json:"display_name"`
}

// AttributesResponse carries the attributes the service chose to fill.
// Optional values are nil when absent or not a usable scalar.
type AttributesResponse struct {
	DisplayName     string
	Description     *string
	Width           *string
	Placeholder     *string
	SpecialInput    map[string]any
	CheckboxOptions []OptionLabel
}

// UnmarshalJSON decodes the loosely typed service response. Scalars are
// coerced to strings; values of the wrong shape are dropped.
func (r *AttributesResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = AttributesResponse{}
	if s := optionalString(raw, "display_name"); s != nil {
		r.DisplayName = *s
	}
	r.Description = optionalString(raw, "description")
	r.Width = optionalString(raw, "width")
	r.Placeholder = optionalString(raw, "placeholder")
	if m, ok := raw["special_input"].(map[string]any); ok {
		r.SpecialInput = m
	}
	r.CheckboxOptions = optionLabels(raw["checkbox_options"])
	return nil
}

// Label returns the proposed display name for a raw checkbox field
func (r AttributesResponse) Label(fieldName string) (string, bool) {
	for _, o := range r.CheckboxOptions {
		if o.FieldName == fieldName && o.DisplayName != "" {
			return o.DisplayName, true
		}
	}
	return "", false
}

// CheckboxLabelRequest asks for a standalone label of one checkbox
type CheckboxLabelRequest struct {
	FieldName string `json:"fieldName"`
	Intent    string `json:"intent"`
	FormType  string `json:"formType"`
}

// CheckboxLabelResponse is the proposed label. DisplayName is required.
type CheckboxLabelResponse struct {
	DisplayName string `json:"displayName"`
	Reasoning   string `json:"reasoning,omitempty"`
}

// OrganizeRequest asks the service to assign blocks to every item
type OrganizeRequest struct {
	Schema   schema.Schema `json:"schema"`
	FormType string        `json:"formType"`
}

// OrganizeResponse is the reorganized schema
type OrganizeResponse struct {
	Schema schema.Schema         `json:"schema"`
	Blocks []schema.BlockSummary `json:"blocks,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// BeautifyRequest opens a streamed beautify session for one block
type BeautifyRequest struct {
	Schema         schema.Schema `json:"schema"`
	BlockName      string        `json:"blockName"`
	FormType       string        `json:"formType"`
	IterationLimit int           `json:"iterationLimit"`
}

func optionalString(raw map[string]any, key string) *string {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	switch v.(type) {
	case map[string]any, []any:
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil
	}
	return &s
}

// optionLabels accepts either {"options":[...]} or a bare array. Entries may
// name the raw field as databaseStored, fieldName or name.
func optionLabels(v any) []OptionLabel {
	if m, ok := v.(map[string]any); ok {
		v = m["options"]
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var out []OptionLabel
	for _, it := range items {
		m, err := cast.ToStringMapE(it)
		if err != nil {
			continue
		}
		label := OptionLabel{DisplayName: cast.ToString(m["display_name"])}
		for _, key := range []string{"databaseStored", "fieldName", "name"} {
			if s := cast.ToString(m[key]); s != "" {
				label.FieldName = s
				break
			}
		}
		if label.FieldName != "" && label.DisplayName != "" {
			out = append(out, label)
		}
	}
	return out
}

func (r CheckboxLabelResponse) validate() error {
	if r.DisplayName == "" {
		return fmt.Errorf("response is missing displayName")
	}
	return nil
}
