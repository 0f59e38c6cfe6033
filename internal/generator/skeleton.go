package generator

import (
	"github.com/a3tai/pdf-schema-builder/internal/ai"
	"github.com/a3tai/pdf-schema-builder/internal/grouping"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// Skeleton builds the deterministic part of an item from the group type.
// The unique_id is the first field name; order is left for the editor.
func Skeleton(group grouping.FieldGroup, formType string) schema.Item {
	names := uniqueNames(group)
	item := schema.Item{
		DisplayAttributes: schema.DisplayAttributes{
			DisplayName: group.DisplayName,
			Value:       schema.Value{Type: schema.ValueManual},
		},
	}
	if len(names) == 0 {
		return item
	}
	item.UniqueID = names[0]

	attr := schema.PDFAttribute{FormType: formType}
	da := &item.DisplayAttributes

	switch group.GroupType {
	case grouping.TextContinuation:
		da.InputType = schema.InputText
		attr.FormField = schema.SingleField(names[0])
		attr.LinkedFormFieldsText = names

	case grouping.TextSameValue:
		da.InputType = schema.InputText
		attr.FormField = schema.MultiField(names...)

	case grouping.Checkbox:
		da.InputType = schema.InputCheckbox
		da.CheckboxOptions = &schema.CheckboxOptions{}
		for _, n := range names {
			da.CheckboxOptions.Options = append(da.CheckboxOptions.Options, schema.CheckboxOption{
				DisplayName:    n,
				DatabaseStored: n,
				LinkedFields:   []string{n},
			})
			attr.LinkedFormFieldsCheckbox = append(attr.LinkedFormFieldsCheckbox, schema.LinkedCheckbox{
				FromDatabase: n,
				PDFAttribute: n,
			})
		}
		attr.FormField = schema.MultiField(names...)

	case grouping.Radio:
		da.InputType = schema.InputRadio
		for _, opt := range radioOptions(group) {
			da.DisplayRadioOptions = append(da.DisplayRadioOptions, opt)
			attr.LinkedFormFieldsRadio = append(attr.LinkedFormFieldsRadio, schema.LinkedRadio{
				RadioField:  opt,
				DisplayName: opt,
			})
		}
		if len(names) == 1 {
			attr.FormField = schema.SingleField(names[0])
		} else {
			attr.FormField = schema.MultiField(names...)
		}

	default:
		da.InputType = schema.InputText
		attr.FormField = schema.SingleField(names[0])
	}

	item.PDFAttributes = []schema.PDFAttribute{attr}
	return item
}

// Merge overlays the AI response onto a skeleton. A value replaces the
// skeleton's only when present; checkbox labels apply to the option whose
// databaseStored matches the raw field name.
func Merge(item schema.Item, resp ai.AttributesResponse) schema.Item {
	out := item.Clone()
	da := &out.DisplayAttributes

	if resp.DisplayName != "" {
		da.DisplayName = resp.DisplayName
	}
	if resp.Description != nil {
		da.Description = *resp.Description
	}
	if resp.Width != nil {
		da.Width = *resp.Width
	}
	if resp.Placeholder != nil {
		da.Placeholder = *resp.Placeholder
	}
	if resp.SpecialInput != nil {
		da.SpecialInput = resp.SpecialInput
	}
	if da.CheckboxOptions != nil {
		for i, o := range da.CheckboxOptions.Options {
			if label, ok := resp.Label(o.DatabaseStored); ok {
				da.CheckboxOptions.Options[i].DisplayName = label
			}
		}
	}
	return out
}

func uniqueNames(group grouping.FieldGroup) []string {
	var names []string
	seen := make(map[string]bool)
	for _, f := range group.Fields {
		if f.Name != "" && !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	return names
}

// radioOptions uses each widget's on-state, falling back to the field name
func radioOptions(group grouping.FieldGroup) []string {
	var opts []string
	seen := make(map[string]bool)
	for _, f := range group.Fields {
		opt := f.Name
		if len(f.Options) > 0 && f.Options[0] != "" {
			opt = f.Options[0]
		}
		if !seen[opt] {
			seen[opt] = true
			opts = append(opts, opt)
		}
	}
	return opts
}
