package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an export artifact kind
type Format string

const (
	FormatTypeScript Format = "ts"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
)

// ParseFormat maps user input onto a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ts", "typescript":
		return FormatTypeScript, nil
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// legacyKeys hold function values in older schemas and are never exported
var legacyKeys = []string{"operation", "reverseOperation"}

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ConstName derives the exported TypeScript constant name from a form type
func ConstName(formType string) string {
	name := nonIdentifier.ReplaceAllString(formType, "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name + "_schema"
}

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// FileName is the download name of an export artifact. Path separators in
// the form type become underscores.
func FileName(formType string, format Format) string {
	return fmt.Sprintf("%s_schema.%s", pathSeparators.Replace(formType), format)
}

// Export renders the schema in the requested format
func Export(s Schema, formType string, format Format) (string, error) {
	switch format {
	case FormatTypeScript:
		return ToTypeScript(s, formType)
	case FormatJSON:
		return ToJSON(s)
	case FormatYAML:
		return ToYAML(s)
	}
	return "", fmt.Errorf("unsupported export format: %s", format)
}

// ToJSON serializes the schema as indented JSON
func ToJSON(s Schema) (string, error) {
	clean := sanitize(s)
	if clean == nil {
		clean = Schema{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(clean); err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ToTypeScript renders the schema as a module exporting one named constant
func ToTypeScript(s Schema, formType string) (string, error) {
	body, err := ToJSON(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("export const %s = %s;\n", ConstName(formType), body), nil
}

// ToYAML serializes the schema as YAML
func ToYAML(s Schema) (string, error) {
	clean := sanitize(s)
	if clean == nil {
		clean = Schema{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(clean); err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}
	return buf.String(), nil
}

// sanitize copies the schema without legacy keys in free-form values
func sanitize(s Schema) Schema {
	out := s.Clone()
	for i := range out {
		da := &out[i].DisplayAttributes
		da.SpecialInput = stripLegacy(da.SpecialInput)
		da.BlockStyle = stripLegacy(da.BlockStyle)
		da.Value.Extra = stripLegacy(da.Value.Extra)
	}
	return out
}

func stripLegacy(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	for _, k := range legacyKeys {
		delete(m, k)
	}
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			m[k] = stripLegacy(t)
		case []any:
			for i, e := range t {
				if em, ok := e.(map[string]any); ok {
					t[i] = stripLegacy(em)
				}
			}
		}
	}
	return m
}
