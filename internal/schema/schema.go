// Package schema defines the schema item model bound to PDF form fields and
// the list operations that keep item order consistent.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

var (
	// ErrMissingDisplayName is returned when an item has no display name
	ErrMissingDisplayName = errors.New("display name is required")
	// ErrMissingOrder is returned when an item has no order
	ErrMissingOrder = errors.New("order is required")
	// ErrItemNotFound is returned when no item has the requested unique_id
	ErrItemNotFound = errors.New("schema item not found")
)

// Validate checks the fields that must be present before an item is saved.
// All violations are reported together.
func Validate(item Item) error {
	var err error
	if strings.TrimSpace(item.DisplayAttributes.DisplayName) == "" {
		err = multierr.Append(err, ErrMissingDisplayName)
	}
	if item.DisplayAttributes.Order <= 0 {
		err = multierr.Append(err, ErrMissingOrder)
	}
	if t := item.DisplayAttributes.InputType; t != "" && !t.Valid() {
		err = multierr.Append(err, fmt.Errorf("unknown input type %q", t))
	}
	return err
}

// Clone returns a deep copy of the schema
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for i, it := range s {
		out[i] = it.Clone()
	}
	return out
}

// Clone returns a deep copy of the item
func (it Item) Clone() Item {
	out := it
	da := &out.DisplayAttributes
	if it.DisplayAttributes.CheckboxOptions != nil {
		opts := make([]CheckboxOption, len(it.DisplayAttributes.CheckboxOptions.Options))
		for i, o := range it.DisplayAttributes.CheckboxOptions.Options {
			o.LinkedFields = cloneStrings(o.LinkedFields)
			opts[i] = o
		}
		da.CheckboxOptions = &CheckboxOptions{Options: opts}
	}
	da.DisplayRadioOptions = cloneStrings(it.DisplayAttributes.DisplayRadioOptions)
	da.BlockStyle = cloneMap(it.DisplayAttributes.BlockStyle)
	da.SpecialInput = cloneMap(it.DisplayAttributes.SpecialInput)
	da.Value.Extra = cloneMap(it.DisplayAttributes.Value.Extra)
	if v := it.DisplayAttributes.Visibility; v != nil {
		conds := append([]Condition(nil), v.Conditions...)
		da.Visibility = &Visibility{Logic: v.Logic, Conditions: conds}
	}
	if it.PDFAttributes != nil {
		out.PDFAttributes = make([]PDFAttribute, len(it.PDFAttributes))
		for i, a := range it.PDFAttributes {
			a.FormField = FormField{names: cloneStrings(a.FormField.names), multi: a.FormField.multi}
			a.LinkedFormFieldsText = cloneStrings(a.LinkedFormFieldsText)
			if a.LinkedFormFieldsCheckbox != nil {
				a.LinkedFormFieldsCheckbox = append([]LinkedCheckbox{}, a.LinkedFormFieldsCheckbox...)
			}
			if a.LinkedFormFieldsRadio != nil {
				a.LinkedFormFieldsRadio = append([]LinkedRadio{}, a.LinkedFormFieldsRadio...)
			}
			out.PDFAttributes[i] = a
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// IndexOf returns the position of the item with the given unique_id or -1
func (s Schema) IndexOf(id string) int {
	for i, it := range s {
		if it.UniqueID == id {
			return i
		}
	}
	return -1
}

// Find returns the item with the given unique_id
func (s Schema) Find(id string) (Item, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return s[i], true
	}
	return Item{}, false
}

// Renumber returns a copy whose order values are 1..N by position
func (s Schema) Renumber() Schema {
	out := make(Schema, len(s))
	copy(out, s)
	for i := range out {
		out[i].DisplayAttributes.Order = i + 1
	}
	return out
}

// Move relocates the item at from to index to and renumbers. A move to the
// same index returns the receiver unchanged.
func (s Schema) Move(from, to int) (Schema, error) {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return s, fmt.Errorf("move %d -> %d out of range for %d items", from, to, len(s))
	}
	if from == to {
		return s, nil
	}
	out := make(Schema, 0, len(s))
	moved := s[from]
	for i, it := range s {
		if i != from {
			out = append(out, it)
		}
	}
	out = append(out[:to], append(Schema{moved}, out[to:]...)...)
	return out.Renumber(), nil
}

// Remove deletes the item with the given unique_id and renumbers the rest
func (s Schema) Remove(id string) (Schema, error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	out := make(Schema, 0, len(s)-1)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+1:]...)
	return out.Renumber(), nil
}

// Upsert replaces the item with the same unique_id or appends it
func (s Schema) Upsert(item Item) Schema {
	out := make(Schema, len(s))
	copy(out, s)
	if idx := out.IndexOf(item.UniqueID); idx >= 0 {
		out[idx] = item
		return out
	}
	return append(out, item)
}

// NextOrder is the order a newly appended item receives
func (s Schema) NextOrder() int {
	highest := 0
	for _, it := range s {
		if it.DisplayAttributes.Order > highest {
			highest = it.DisplayAttributes.Order
		}
	}
	if len(s) > highest {
		highest = len(s)
	}
	return highest + 1
}

// BlockSummary counts items per block
type BlockSummary struct {
	Title     string `json:"title"`
	ItemCount int    `json:"item_count"`
}

// Blocks summarizes block membership in first-seen order. Items without a
// block are not counted.
func (s Schema) Blocks() []BlockSummary {
	counts := make(map[string]int)
	var order []string
	for _, it := range s {
		b := it.DisplayAttributes.Block
		if b == "" {
			continue
		}
		if _, ok := counts[b]; !ok {
			order = append(order, b)
		}
		counts[b]++
	}
	out := make([]BlockSummary, 0, len(order))
	for _, b := range order {
		out = append(out, BlockSummary{Title: b, ItemCount: counts[b]})
	}
	return out
}

// BlockItems returns the items tagged with the given block in schema order
func (s Schema) BlockItems(block string) Schema {
	var out Schema
	for _, it := range s {
		if it.DisplayAttributes.Block == block {
			out = append(out, it)
		}
	}
	return out
}

// DuplicateIDs lists unique_ids that appear more than once, sorted
func (s Schema) DuplicateIDs() []string {
	seen := make(map[string]int)
	for _, it := range s {
		seen[it.UniqueID]++
	}
	var dups []string
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}
