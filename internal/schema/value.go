package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// valueFields is Value without its codec methods
type valueFields Value

var valueKeys = []string{"type", "databaseField", "reservedKey", "default"}

func isValueKey(k string) bool {
	for _, known := range valueKeys {
		if k == known {
			return true
		}
	}
	return false
}

func (v Value) MarshalJSON() ([]byte, error) {
	known, err := marshalUnescaped(valueFields(v))
	if err != nil || len(v.Extra) == 0 {
		return known, err
	}
	all := make(map[string]any, len(v.Extra)+len(valueKeys))
	for k, e := range v.Extra {
		all[k] = e
	}
	if err := json.Unmarshal(known, &all); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return marshalUnescaped(all)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var known valueFields
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	*v = Value(known)
	v.Extra = extraKeys(all)
	return nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	if len(v.Extra) == 0 {
		return valueFields(v), nil
	}
	var node yaml.Node
	if err := node.Encode(valueFields(v)); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	keys := make([]string, 0, len(v.Extra))
	for k := range v.Extra {
		if !isValueKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		var val yaml.Node
		if err := val.Encode(v.Extra[k]); err != nil {
			return nil, fmt.Errorf("value %s: %w", k, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &val)
	}
	return &node, nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var known valueFields
	if err := node.Decode(&known); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	var all map[string]any
	if err := node.Decode(&all); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	*v = Value(known)
	v.Extra = extraKeys(all)
	return nil
}

func extraKeys(all map[string]any) map[string]any {
	for _, k := range valueKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

// marshalUnescaped keeps <, > and & literal like the export encoders
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
