// Package editor is the schema editor state machine. It proposes every schema
// change through a callback and never writes storage itself.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/a3tai/pdf-schema-builder/internal/ai"
	apperrors "github.com/a3tai/pdf-schema-builder/internal/errors"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// DefaultBeautifyIterations is the iteration limit of a beautify session
const DefaultBeautifyIterations = 2

var (
	// ErrNotEditing is returned by intents that need an open item
	ErrNotEditing = errors.New("no item is being edited")
	// ErrAlreadyEditing is returned when another item is already open
	ErrAlreadyEditing = errors.New("another item is already being edited")
)

// Focuser brings the PDF fields backing an item into view
type Focuser interface {
	Focus(fieldNames []string)
}

// Config wires an editor to the schema owner
type Config struct {
	// Source returns the current schema
	Source func() schema.Schema
	// OnChange receives every proposed schema
	OnChange func(schema.Schema)
	// Focuser is optional
	Focuser Focuser
	// AI serves organize and beautify; nil disables both
	AI ai.Service
	// BeautifyIterations defaults to DefaultBeautifyIterations
	BeautifyIterations int
}

// Editor holds at most one open item at a time
type Editor struct {
	mu  sync.Mutex
	cfg Config

	mode       Mode
	draft      *schema.Item
	isNew      bool
	originalID string
	linkKind   LinkKind
	linkPath   string
	condIndex  int
}

// New creates an idle editor
func New(cfg Config) *Editor {
	if cfg.AI == nil {
		cfg.AI = ai.Noop{}
	}
	if cfg.BeautifyIterations <= 0 {
		cfg.BeautifyIterations = DefaultBeautifyIterations
	}
	if cfg.OnChange == nil {
		cfg.OnChange = func(schema.Schema) {}
	}
	return &Editor{cfg: cfg}
}

// State returns a projection of the current state
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{Mode: e.mode}
	if e.draft == nil {
		return st
	}
	d := e.draft.Clone()
	st.Draft = &d
	st.ItemID = d.UniqueID
	switch e.mode {
	case LinkingField:
		st.Kind = e.linkKind
		st.Path = e.linkPath
	case SelectingVisibilityField:
		st.ConditionIndex = e.condIndex
	}
	return st
}

// StartNew opens a generated draft. An unset order is taken from the end of
// the schema. The draft's fields are focused.
func (e *Editor) StartNew(item schema.Item) error {
	e.mu.Lock()
	if e.mode != Idle {
		e.mu.Unlock()
		return ErrAlreadyEditing
	}
	d := item.Clone()
	if d.DisplayAttributes.Order <= 0 {
		d.DisplayAttributes.Order = e.source().NextOrder()
	}
	e.draft = &d
	e.isNew = true
	e.originalID = ""
	e.mode = EditingNew
	names := d.FieldNames()
	e.mu.Unlock()

	e.focus(names)
	return nil
}

// Edit opens a saved item
func (e *Editor) Edit(id string) error {
	e.mu.Lock()
	if e.mode != Idle {
		e.mu.Unlock()
		return ErrAlreadyEditing
	}
	item, ok := e.source().Find(id)
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", schema.ErrItemNotFound, id)
	}
	d := item.Clone()
	e.draft = &d
	e.isNew = false
	e.originalID = id
	e.mode = EditingExisting
	names := d.FieldNames()
	e.mu.Unlock()

	e.focus(names)
	return nil
}

// Update applies fn to the open draft
func (e *Editor) Update(fn func(*schema.Item)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return ErrNotEditing
	}
	fn(e.draft)
	return nil
}

// Save validates the draft and proposes the schema with it appended (new) or
// replaced by unique_id (existing). The editor closes unless keepOpen is set.
func (e *Editor) Save(keepOpen bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return ErrNotEditing
	}
	return e.saveLocked(keepOpen)
}

// Cancel discards the draft. While linking or selecting a visibility field
// it only leaves that mode.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.mode {
	case LinkingField, SelectingVisibilityField:
		e.mode = e.editingMode()
	default:
		e.reset()
	}
}

// Delete removes an item and renumbers the rest. An open edit of that item
// is closed.
func (e *Editor) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.source().Clone().Remove(id)
	if err != nil {
		return err
	}
	e.cfg.OnChange(next)
	if e.draft != nil && !e.isNew && e.originalID == id {
		e.reset()
	}
	return nil
}

// Move relocates the item at from to index to and renumbers every order.
// Dropping an item where it already is proposes nothing.
func (e *Editor) Move(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.source()
	next, err := current.Move(from, to)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	e.cfg.OnChange(next)
	return nil
}

// Organize asks the AI service to assign blocks to the whole schema. On
// success the returned schema replaces the current one; on failure nothing
// changes.
func (e *Editor) Organize(ctx context.Context, formType string) ([]schema.BlockSummary, error) {
	current := e.source()
	resp, err := e.cfg.AI.OrganizeSchema(ctx, ai.OrganizeRequest{Schema: current, FormType: formType})
	if err != nil {
		log.Printf("organize failed: %v", err)
		return nil, err
	}
	if dups := resp.Schema.DuplicateIDs(); len(dups) > 0 {
		err := apperrors.Wrap(apperrors.ErrorTypeAI, "organize schema",
			fmt.Errorf("response repeats unique_id %v", dups))
		log.Printf("organize failed: %v", err)
		return nil, err
	}

	e.mu.Lock()
	e.cfg.OnChange(resp.Schema)
	e.mu.Unlock()

	blocks := resp.Blocks
	if len(blocks) == 0 {
		blocks = resp.Schema.Blocks()
	}
	return blocks, nil
}

func (e *Editor) saveLocked(keepOpen bool) error {
	item := e.draft.Clone()
	if err := schema.Validate(item); err != nil {
		return &apperrors.Error{Type: apperrors.ErrorTypeValidation, Message: err.Error(), Err: err}
	}

	current := e.source()
	var next schema.Schema
	if e.isNew {
		if current.IndexOf(item.UniqueID) >= 0 {
			return apperrors.Validationf("An item with id %q already exists", item.UniqueID)
		}
		next = append(current.Clone(), item)
	} else {
		idx := current.IndexOf(e.originalID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", schema.ErrItemNotFound, e.originalID)
		}
		if item.UniqueID != e.originalID && current.IndexOf(item.UniqueID) >= 0 {
			return apperrors.Validationf("An item with id %q already exists", item.UniqueID)
		}
		next = current.Clone()
		next[idx] = item
	}
	e.cfg.OnChange(next)

	if !keepOpen {
		e.reset()
		return nil
	}
	e.isNew = false
	e.originalID = item.UniqueID
	if e.mode == EditingNew {
		e.mode = EditingExisting
	}
	return nil
}

func (e *Editor) editingMode() Mode {
	if e.isNew {
		return EditingNew
	}
	return EditingExisting
}

func (e *Editor) reset() {
	e.mode = Idle
	e.draft = nil
	e.isNew = false
	e.originalID = ""
	e.linkKind = ""
	e.linkPath = ""
	e.condIndex = 0
}

func (e *Editor) source() schema.Schema {
	if e.cfg.Source == nil {
		return nil
	}
	return e.cfg.Source()
}

func (e *Editor) focus(names []string) {
	if e.cfg.Focuser != nil && len(names) > 0 {
		e.cfg.Focuser.Focus(names)
	}
}
