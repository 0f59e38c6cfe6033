package schema

// InputType is the widget used to collect or display a schema item.
type InputType string

const (
	InputText       InputType = "text"
	InputTextArea   InputType = "text-area"
	InputRadio      InputType = "radio"
	InputCheckbox   InputType = "checkbox"
	InputSignature  InputType = "signature"
	InputFileUpload InputType = "fileUpload"
	InputInfo       InputType = "info"
)

// Valid reports whether t is one of the known input types
func (t InputType) Valid() bool {
	switch t {
	case InputText, InputTextArea, InputRadio, InputCheckbox, InputSignature, InputFileUpload, InputInfo:
		return true
	}
	return false
}

// ValueType says where an item's value comes from
type ValueType string

const (
	ValueManual   ValueType = "manual"
	ValueResolved ValueType = "resolved"
	ValueReserved ValueType = "reserved"
)

// Value describes the source of an item's value. Keys other than the known
// ones are kept in Extra and written back unchanged.
type Value struct {
	Type          ValueType      `json:"type" yaml:"type"`
	DatabaseField string         `json:"databaseField,omitempty" yaml:"databaseField,omitempty"`
	ReservedKey   string         `json:"reservedKey,omitempty" yaml:"reservedKey,omitempty"`
	Default       string         `json:"default,omitempty" yaml:"default,omitempty"`
	Extra         map[string]any `json:"-" yaml:"-"`
}

// CheckboxOption is one selectable box of a checkbox item
type CheckboxOption struct {
	DisplayName    string   `json:"display_name" yaml:"display_name"`
	DatabaseStored string   `json:"databaseStored" yaml:"databaseStored"`
	LinkedFields   []string `json:"linkedFields" yaml:"linkedFields"`
}

// CheckboxOptions wraps the option list of a checkbox item
type CheckboxOptions struct {
	Options []CheckboxOption `json:"options" yaml:"options"`
}

// Operator compares a field value inside a visibility condition
type Operator string

const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpIsChecked  Operator = "is_checked"
	OpNotChecked Operator = "is_not_checked"
	OpIsEmpty    Operator = "is_empty"
	OpIsNotEmpty Operator = "is_not_empty"
)

// Condition combinators for Visibility.Logic
const (
	LogicAll = "and"
	LogicAny = "or"
)

// Condition makes an item visible depending on another item's value.
// Field holds the unique_id of the item the condition observes.
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Visibility is the set of conditions gating an item
type Visibility struct {
	Logic      string      `json:"logic,omitempty" yaml:"logic,omitempty"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// DisplayAttributes holds everything needed to render an item
type DisplayAttributes struct {
	DisplayName         string           `json:"display_name" yaml:"display_name"`
	InputType           InputType        `json:"input_type" yaml:"input_type"`
	Order               int              `json:"order" yaml:"order"`
	Value               Value            `json:"value" yaml:"value"`
	CheckboxOptions     *CheckboxOptions `json:"checkbox_options,omitempty" yaml:"checkbox_options,omitempty"`
	DisplayRadioOptions []string         `json:"display_radio_options,omitempty" yaml:"display_radio_options,omitempty"`
	Block               string           `json:"block,omitempty" yaml:"block,omitempty"`
	BlockStyle          map[string]any   `json:"block_style,omitempty" yaml:"block_style,omitempty"`
	IsRequired          bool             `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	IsHidden            bool             `json:"isHidden,omitempty" yaml:"isHidden,omitempty"`
	IsCached            bool             `json:"isCached,omitempty" yaml:"isCached,omitempty"`
	IsOnlyDisplayText   bool             `json:"isOnlyDisplayText,omitempty" yaml:"isOnlyDisplayText,omitempty"`
	Description         string           `json:"description,omitempty" yaml:"description,omitempty"`
	Width               string           `json:"width,omitempty" yaml:"width,omitempty"`
	Placeholder         string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	SpecialInput        map[string]any   `json:"special_input,omitempty" yaml:"special_input,omitempty"`
	Visibility          *Visibility      `json:"visibility,omitempty" yaml:"visibility,omitempty"`
}

// LinkedCheckbox maps a stored checkbox value onto a PDF field
type LinkedCheckbox struct {
	FromDatabase string `json:"fromDatabase" yaml:"fromDatabase"`
	PDFAttribute string `json:"pdfAttribute" yaml:"pdfAttribute"`
}

// LinkedRadio maps a radio display option onto a PDF radio widget
type LinkedRadio struct {
	RadioField  string `json:"radioField" yaml:"radioField"`
	DisplayName string `json:"displayName" yaml:"displayName"`
}

// PDFAttribute binds an item to fields of one PDF form type
type PDFAttribute struct {
	FormType                 string           `json:"formType" yaml:"formType"`
	FormField                FormField        `json:"formfield" yaml:"formfield"`
	LinkedFormFieldsText     []string         `json:"linked_form_fields_text,omitempty" yaml:"linked_form_fields_text,omitempty"`
	LinkedFormFieldsCheckbox []LinkedCheckbox `json:"linked_form_fields_checkbox,omitempty" yaml:"linked_form_fields_checkbox,omitempty"`
	LinkedFormFieldsRadio    []LinkedRadio    `json:"linked_form_fields_radio,omitempty" yaml:"linked_form_fields_radio,omitempty"`
}

// Item is one field definition of a schema
type Item struct {
	UniqueID          string            `json:"unique_id" yaml:"unique_id"`
	DisplayAttributes DisplayAttributes `json:"display_attributes" yaml:"display_attributes"`
	PDFAttributes     []PDFAttribute    `json:"pdf_attributes,omitempty" yaml:"pdf_attributes,omitempty"`
}

// Schema is the ordered list of items; slice order is display order
type Schema []Item

// FieldNames returns every PDF field the item is bound to, primary fields first
func (it Item) FieldNames() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, attr := range it.PDFAttributes {
		for _, n := range attr.FormField.Names() {
			add(n)
		}
		for _, n := range attr.LinkedFormFieldsText {
			add(n)
		}
		for _, c := range attr.LinkedFormFieldsCheckbox {
			add(c.PDFAttribute)
		}
		for _, r := range attr.LinkedFormFieldsRadio {
			add(r.RadioField)
		}
	}
	if it.DisplayAttributes.CheckboxOptions != nil {
		for _, opt := range it.DisplayAttributes.CheckboxOptions.Options {
			for _, n := range opt.LinkedFields {
				add(n)
			}
		}
	}
	return names
}
