package editor

import "github.com/a3tai/pdf-schema-builder/internal/schema"

// Mode is the editing state of the editor
type Mode int

const (
	// Idle shows the item list
	Idle Mode = iota
	// EditingExisting edits a saved item
	EditingExisting
	// EditingNew edits a generated draft not yet in the schema
	EditingNew
	// LinkingField waits for a PDF field click to bind to the draft
	LinkingField
	// SelectingVisibilityField waits for a PDF field click naming the item a
	// visibility condition observes
	SelectingVisibilityField
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case EditingExisting:
		return "editing-existing"
	case EditingNew:
		return "editing-new"
	case LinkingField:
		return "linking-field"
	case SelectingVisibilityField:
		return "selecting-visibility-field"
	default:
		return "idle"
	}
}

// MarshalText encodes the mode by name
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// LinkKind selects what a linked field is attached to
type LinkKind string

const (
	// LinkText appends to linked_form_fields_text
	LinkText LinkKind = "text"
	// LinkCheckbox binds a field to the checkbox option named by the path
	LinkCheckbox LinkKind = "checkbox"
	// LinkRadio binds a radio widget to the display option named by the path
	LinkRadio LinkKind = "radio"
)

// Valid reports whether k is a known link kind
func (k LinkKind) Valid() bool {
	switch k {
	case LinkText, LinkCheckbox, LinkRadio:
		return true
	}
	return false
}

// State is a read-only projection of the editor
type State struct {
	Mode Mode `json:"mode"`
	// ItemID is the unique_id of the item being edited
	ItemID string `json:"item_id,omitempty"`
	// Path and Kind are set while linking
	Path string   `json:"path,omitempty"`
	Kind LinkKind `json:"kind,omitempty"`
	// ConditionIndex is set while selecting a visibility field
	ConditionIndex int `json:"condition_index,omitempty"`
	// Draft is a copy of the item being edited
	Draft *schema.Item `json:"draft,omitempty"`
}

// Editing reports whether an item is open, including linking and selection
func (s State) Editing() bool {
	return s.Mode != Idle
}
