package editor

import (
	"errors"
	"fmt"

	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// ErrNoItemForField is returned when a clicked field backs no schema item
var ErrNoItemForField = errors.New("no schema item is bound to this field")

// BeginLinking saves the draft without closing it and waits for a field
// click. For checkbox links path is the option's databaseStored value; for
// radio links it is the display option; text links ignore it.
func (e *Editor) BeginLinking(kind LinkKind, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNotEditing
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown link kind %q", kind)
	}
	if err := checkLinkTarget(*e.draft, kind, path); err != nil {
		return err
	}
	if err := e.saveLocked(true); err != nil {
		return err
	}

	e.mode = LinkingField
	e.linkKind = kind
	e.linkPath = path
	return nil
}

// AddCondition appends a visibility condition to the draft and returns its
// index
func (e *Editor) AddCondition(c schema.Condition) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return 0, ErrNotEditing
	}
	da := &e.draft.DisplayAttributes
	if da.Visibility == nil {
		da.Visibility = &schema.Visibility{Logic: schema.LogicAll}
	}
	da.Visibility.Conditions = append(da.Visibility.Conditions, c)
	return len(da.Visibility.Conditions) - 1, nil
}

// RemoveCondition drops a visibility condition from the draft
func (e *Editor) RemoveCondition(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNotEditing
	}
	v := e.draft.DisplayAttributes.Visibility
	if v == nil || index < 0 || index >= len(v.Conditions) {
		return fmt.Errorf("condition %d does not exist", index)
	}
	v.Conditions = append(v.Conditions[:index], v.Conditions[index+1:]...)
	if len(v.Conditions) == 0 {
		e.draft.DisplayAttributes.Visibility = nil
	}
	return nil
}

// BeginVisibilitySelection waits for a field click naming the item observed
// by the condition at index
func (e *Editor) BeginVisibilitySelection(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNotEditing
	}
	v := e.draft.DisplayAttributes.Visibility
	if v == nil || index < 0 || index >= len(v.Conditions) {
		return fmt.Errorf("condition %d does not exist", index)
	}
	e.mode = SelectingVisibilityField
	e.condIndex = index
	return nil
}

// FieldClicked routes a PDF field click. It reports false when the editor
// is not waiting for a click, leaving the click to the caller's selection.
func (e *Editor) FieldClicked(field extraction.Field) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode {
	case LinkingField:
		kind, path := e.linkKind, e.linkPath
		e.mode = e.editingMode()
		e.linkKind, e.linkPath = "", ""
		// the draft may have changed since BeginLinking
		if err := checkLinkTarget(*e.draft, kind, path); err != nil {
			return true, err
		}
		link(e.draft, kind, path, field)
		return true, e.saveLocked(true)

	case SelectingVisibilityField:
		v := e.draft.DisplayAttributes.Visibility
		if v == nil || e.condIndex >= len(v.Conditions) {
			index := e.condIndex
			e.mode = e.editingMode()
			e.condIndex = 0
			return true, fmt.Errorf("condition %d does not exist", index)
		}
		id, ok := e.itemForField(field.Name)
		if !ok {
			return true, fmt.Errorf("%w: %s", ErrNoItemForField, field.Name)
		}
		v.Conditions[e.condIndex].Field = id
		e.mode = e.editingMode()
		e.condIndex = 0
		return true, nil

	default:
		return false, nil
	}
}

// itemForField finds the saved item bound to a field, skipping the draft
func (e *Editor) itemForField(name string) (string, bool) {
	for _, it := range e.source() {
		if it.UniqueID == e.draft.UniqueID {
			continue
		}
		for _, n := range it.FieldNames() {
			if n == name {
				return it.UniqueID, true
			}
		}
	}
	return "", false
}

func checkLinkTarget(item schema.Item, kind LinkKind, path string) error {
	switch kind {
	case LinkCheckbox:
		if opts := item.DisplayAttributes.CheckboxOptions; opts != nil {
			for _, o := range opts.Options {
				if o.DatabaseStored == path {
					return nil
				}
			}
		}
		return fmt.Errorf("checkbox option %q does not exist", path)
	case LinkRadio:
		for _, o := range item.DisplayAttributes.DisplayRadioOptions {
			if o == path {
				return nil
			}
		}
		return fmt.Errorf("radio option %q does not exist", path)
	}
	return nil
}

// link binds field to the draft. Repeated links are ignored.
func link(item *schema.Item, kind LinkKind, path string, field extraction.Field) {
	if len(item.PDFAttributes) == 0 {
		item.PDFAttributes = []schema.PDFAttribute{{}}
	}
	attr := &item.PDFAttributes[0]

	switch kind {
	case LinkText:
		if attr.FormField.First() == field.Name || contains(attr.LinkedFormFieldsText, field.Name) {
			return
		}
		if len(attr.LinkedFormFieldsText) == 0 && attr.FormField.First() != "" {
			attr.LinkedFormFieldsText = []string{attr.FormField.First()}
		}
		attr.LinkedFormFieldsText = append(attr.LinkedFormFieldsText, field.Name)

	case LinkCheckbox:
		opts := item.DisplayAttributes.CheckboxOptions
		for i := range opts.Options {
			o := &opts.Options[i]
			if o.DatabaseStored != path {
				continue
			}
			if !contains(o.LinkedFields, field.Name) {
				o.LinkedFields = append(o.LinkedFields, field.Name)
			}
		}
		lc := schema.LinkedCheckbox{FromDatabase: path, PDFAttribute: field.Name}
		for _, existing := range attr.LinkedFormFieldsCheckbox {
			if existing == lc {
				return
			}
		}
		attr.LinkedFormFieldsCheckbox = append(attr.LinkedFormFieldsCheckbox, lc)

	case LinkRadio:
		value := field.Name
		if len(field.Options) > 0 && field.Options[0] != "" {
			value = field.Options[0]
		}
		lr := schema.LinkedRadio{RadioField: value, DisplayName: path}
		for _, existing := range attr.LinkedFormFieldsRadio {
			if existing == lr {
				return
			}
		}
		attr.LinkedFormFieldsRadio = append(attr.LinkedFormFieldsRadio, lr)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
