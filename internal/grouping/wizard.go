package grouping

import (
	"strings"

	apperrors "github.com/a3tai/pdf-schema-builder/internal/errors"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
)

// CheckboxIntent is the description collected for a single checkbox
type CheckboxIntent struct {
	Field  extraction.Field `json:"field"`
	Intent string           `json:"intent"`
}

// CheckboxWizard collects one intent per checkbox, one field at a time
type CheckboxWizard struct {
	fields  []extraction.Field
	intents []string
	pos     int
}

// NewCheckboxWizard starts a wizard over a checkbox-only selection
func NewCheckboxWizard(fields []extraction.Field) (*CheckboxWizard, error) {
	if len(fields) == 0 {
		return nil, apperrors.Validation(MsgNoFields)
	}
	for _, f := range fields {
		if f.Type != extraction.FieldTypeCheckbox {
			return nil, apperrors.Validation(MsgMixedTypes)
		}
	}
	return &CheckboxWizard{
		fields:  append([]extraction.Field(nil), fields...),
		intents: make([]string, len(fields)),
	}, nil
}

// Current returns the checkbox being described and its intent so far
func (w *CheckboxWizard) Current() CheckboxIntent {
	return CheckboxIntent{Field: w.fields[w.pos], Intent: w.intents[w.pos]}
}

// Position returns the 0-based index of the current checkbox and the total
func (w *CheckboxWizard) Position() (int, int) {
	return w.pos, len(w.fields)
}

// Last reports whether the current checkbox is the final one
func (w *CheckboxWizard) Last() bool {
	return w.pos == len(w.fields)-1
}

// Next records intent for the current checkbox and advances. At the last
// checkbox it stays in place and returns false.
func (w *CheckboxWizard) Next(intent string) bool {
	w.intents[w.pos] = strings.TrimSpace(intent)
	return w.advance()
}

// Skip clears the current intent and advances
func (w *CheckboxWizard) Skip() bool {
	w.intents[w.pos] = ""
	return w.advance()
}

// Back returns to the previous checkbox, keeping what was entered
func (w *CheckboxWizard) Back() bool {
	if w.pos == 0 {
		return false
	}
	w.pos--
	return true
}

// Intents returns every checkbox with its intent in selection order.
// Skipped checkboxes have an empty intent.
func (w *CheckboxWizard) Intents() []CheckboxIntent {
	out := make([]CheckboxIntent, len(w.fields))
	for i, f := range w.fields {
		out[i] = CheckboxIntent{Field: f, Intent: w.intents[i]}
	}
	return out
}

// Finish records intent for the current checkbox and packages the group
// under displayName.
func (w *CheckboxWizard) Finish(displayName, intent string) (FieldGroup, []CheckboxIntent, error) {
	w.intents[w.pos] = strings.TrimSpace(intent)

	group, err := Build(w.fields, Checkbox, displayName, "")
	if err != nil {
		return FieldGroup{}, nil, err
	}
	return group, w.Intents(), nil
}

func (w *CheckboxWizard) advance() bool {
	if w.Last() {
		return false
	}
	w.pos++
	return true
}
