// Package grouping packages a selection of same-type PDF fields into a
// FieldGroup that the generator turns into one schema item.
package grouping

import (
	"strings"

	apperrors "github.com/a3tai/pdf-schema-builder/internal/errors"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
)

// GroupType describes how the fields of a group relate to each other
type GroupType string

const (
	// TextContinuation is one value spread across several text fields
	TextContinuation GroupType = "text-continuation"
	// TextSameValue is one value repeated in several text fields
	TextSameValue GroupType = "text-same-value"
	Checkbox      GroupType = "checkbox"
	Radio         GroupType = "radio"
)

// User-facing validation messages
const (
	MsgNoFields      = "Select at least one field"
	MsgMixedTypes    = "Selected fields must all be the same type"
	MsgNoGroupType   = "Please choose how these fields are related"
	MsgNoDescription = "Please enter a display name or describe the fields"
)

// FieldGroup is a user-curated cluster of fields destined to become one
// schema item. It is consumed once by the generator.
type FieldGroup struct {
	Fields      []extraction.Field `json:"fields"`
	GroupType   GroupType          `json:"groupType"`
	DisplayName string             `json:"displayName,omitempty"`
	Intent      string             `json:"intent,omitempty"`
}

// Names returns the field names in selection order
func (g FieldGroup) Names() []string {
	names := make([]string, len(g.Fields))
	for i, f := range g.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldType returns the shared type of the fields
func (g FieldGroup) FieldType() extraction.FieldType {
	if len(g.Fields) == 0 {
		return ""
	}
	return g.Fields[0].Type
}

// AllowedGroupTypes returns the group types offered for a selection. Mixed
// or empty selections and field types that cannot be grouped get none.
func AllowedGroupTypes(fields []extraction.Field) []GroupType {
	t, ok := commonType(fields)
	if !ok {
		return nil
	}
	switch t {
	case extraction.FieldTypeText:
		return []GroupType{TextContinuation, TextSameValue}
	case extraction.FieldTypeCheckbox:
		return []GroupType{Checkbox}
	case extraction.FieldTypeRadio:
		return []GroupType{Radio}
	default:
		return nil
	}
}

// Build validates the dialog input and returns the group. The error is a
// validation error carrying the message to show; there is no retry.
func Build(fields []extraction.Field, groupType GroupType, displayName, intent string) (FieldGroup, error) {
	if len(fields) == 0 {
		return FieldGroup{}, apperrors.Validation(MsgNoFields)
	}
	if _, ok := commonType(fields); !ok {
		return FieldGroup{}, apperrors.Validation(MsgMixedTypes)
	}
	if !allowed(fields, groupType) {
		return FieldGroup{}, apperrors.Validation(MsgNoGroupType)
	}

	displayName = strings.TrimSpace(displayName)
	intent = strings.TrimSpace(intent)
	if displayName == "" && intent == "" {
		return FieldGroup{}, apperrors.Validation(MsgNoDescription)
	}

	return FieldGroup{
		Fields:      append([]extraction.Field(nil), fields...),
		GroupType:   groupType,
		DisplayName: displayName,
		Intent:      intent,
	}, nil
}

func allowed(fields []extraction.Field, groupType GroupType) bool {
	for _, t := range AllowedGroupTypes(fields) {
		if t == groupType {
			return true
		}
	}
	return false
}

func commonType(fields []extraction.Field) (extraction.FieldType, bool) {
	if len(fields) == 0 {
		return "", false
	}
	t := fields[0].Type
	for _, f := range fields[1:] {
		if f.Type != t {
			return "", false
		}
	}
	return t, true
}
