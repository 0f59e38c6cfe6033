package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FormField is the PDF field binding of a PDFAttribute. On the wire it is
// either a single name or a list of names; Multi records which form was read
// so the value is written back the same way.
type FormField struct {
	names []string
	multi bool
}

// SingleField binds one PDF field
func SingleField(name string) FormField {
	return FormField{names: []string{name}}
}

// MultiField binds several PDF fields that share one value
func MultiField(names ...string) FormField {
	return FormField{names: append([]string(nil), names...), multi: true}
}

// Names returns the bound field names
func (f FormField) Names() []string {
	return append([]string(nil), f.names...)
}

// First returns the first bound field name or ""
func (f FormField) First() string {
	if len(f.names) == 0 {
		return ""
	}
	return f.names[0]
}

// IsMulti reports whether the binding is written as a list
func (f FormField) IsMulti() bool {
	return f.multi
}

// Add appends a field to the binding, switching it to list form
func (f FormField) Add(name string) FormField {
	for _, n := range f.names {
		if n == name {
			return f
		}
	}
	return FormField{names: append(f.Names(), name), multi: true}
}

// Equal compares two bindings by form and names
func (f FormField) Equal(other FormField) bool {
	if f.multi != other.multi || len(f.names) != len(other.names) {
		return false
	}
	for i := range f.names {
		if f.names[i] != other.names[i] {
			return false
		}
	}
	return true
}

func (f FormField) MarshalJSON() ([]byte, error) {
	if f.multi {
		if f.names == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(f.names)
	}
	return json.Marshal(f.First())
}

func (f *FormField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FormField{}
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return fmt.Errorf("formfield: %w", err)
		}
		if names == nil {
			names = []string{}
		}
		*f = FormField{names: names, multi: true}
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("formfield: %w", err)
	}
	*f = SingleField(name)
	return nil
}

func (f FormField) MarshalYAML() (interface{}, error) {
	if f.multi {
		return f.Names(), nil
	}
	return f.First(), nil
}

func (f *FormField) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var names []string
		if err := node.Decode(&names); err != nil {
			return fmt.Errorf("formfield: %w", err)
		}
		*f = MultiField(names...)
		return nil
	}
	var name string
	if err := node.Decode(&name); err != nil {
		return fmt.Errorf("formfield: %w", err)
	}
	*f = SingleField(name)
	return nil
}
