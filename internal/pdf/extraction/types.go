package extraction

// FieldType is the kind of an interactive form field
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeSignature FieldType = "signature"
	FieldTypeButton    FieldType = "button"
)

// Rect is a PDF rectangle [x1, y1, x2, y2] in user space, lower-left origin
type Rect [4]float64

// Width of the rectangle
func (r Rect) Width() float64 { return r[2] - r[0] }

// Height of the rectangle
func (r Rect) Height() float64 { return r[3] - r[1] }

// Field is one widget annotation of an interactive form field. Radio groups
// produce one Field per widget, all sharing the group name.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Page     int       `json:"page"`
	Rect     Rect      `json:"rect"`
	Value    any       `json:"value,omitempty"`
	Options  []string  `json:"options,omitempty"`
	ReadOnly bool      `json:"read_only,omitempty"`
	Required bool      `json:"required,omitempty"`
}

// PageInfo describes one page of the document
type PageInfo struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Text   string  `json:"-"`
}

// Document is the result of parsing one PDF
type Document struct {
	Hash     string     `json:"hash"`
	NumPages int        `json:"num_pages"`
	Pages    []PageInfo `json:"pages"`
	Fields   []Field    `json:"fields"`
}

// Page returns the info of a 1-based page number
func (d *Document) Page(n int) (PageInfo, bool) {
	if d == nil || n < 1 || n > len(d.Pages) {
		return PageInfo{}, false
	}
	return d.Pages[n-1], true
}

// Field returns the first field with the given name
func (d *Document) Field(name string) (Field, bool) {
	if d == nil {
		return Field{}, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldsOnPage returns the fields placed on a 1-based page
func (d *Document) FieldsOnPage(n int) []Field {
	if d == nil {
		return nil
	}
	var out []Field
	for _, f := range d.Fields {
		if f.Page == n {
			out = append(out, f)
		}
	}
	return out
}
