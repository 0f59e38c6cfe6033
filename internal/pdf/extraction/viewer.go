package extraction

import "math"

const (
	zoomStep    = 0.1
	minZoom     = 0.1
	defaultZoom = 1.0
)

// Overlay is an absolutely positioned hit-target over a field, in pixels
// from the top-left corner of the rendered page
type Overlay struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Left     float64   `json:"left"`
	Top      float64   `json:"top"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Selected bool      `json:"selected"`
}

// Selection is an ordered set of field names
type Selection struct {
	names []string
}

// Toggle adds or removes name and reports whether it is now selected
func (s *Selection) Toggle(name string) bool {
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i:i], s.names[i+1:]...)
			return false
		}
	}
	s.names = append(s.names, name)
	return true
}

// Has reports whether name is selected
func (s *Selection) Has(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Set replaces the selection
func (s *Selection) Set(names ...string) {
	s.names = nil
	for _, n := range names {
		if !s.Has(n) {
			s.names = append(s.names, n)
		}
	}
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.names = nil
}

// Names returns the selected names in selection order
func (s *Selection) Names() []string {
	return append([]string(nil), s.names...)
}

// Len is the number of selected names
func (s *Selection) Len() int {
	return len(s.names)
}

// Viewer tracks the visible page and zoom of a document
type Viewer struct {
	doc   *Document
	page  int
	scale float64
}

// NewViewer opens the document on page 1 at 100%
func NewViewer(doc *Document) *Viewer {
	return &Viewer{doc: doc, page: 1, scale: defaultZoom}
}

// Document returns the viewed document
func (v *Viewer) Document() *Document {
	return v.doc
}

// Page is the current 1-based page
func (v *Viewer) Page() int { return v.page }

// Scale is the current zoom factor
func (v *Viewer) Scale() float64 { return v.scale }

// NumPages of the viewed document; never less than 1
func (v *Viewer) NumPages() int {
	if v.doc == nil || v.doc.NumPages < 1 {
		return 1
	}
	return v.doc.NumPages
}

// GoTo moves to page n clamped to [1, NumPages]
func (v *Viewer) GoTo(n int) int {
	if n < 1 {
		n = 1
	}
	if last := v.NumPages(); n > last {
		n = last
	}
	v.page = n
	return v.page
}

// Next moves one page forward
func (v *Viewer) Next() int { return v.GoTo(v.page + 1) }

// Prev moves one page back
func (v *Viewer) Prev() int { return v.GoTo(v.page - 1) }

// ZoomIn increases the zoom by one step
func (v *Viewer) ZoomIn() float64 { return v.SetScale(v.scale + zoomStep) }

// ZoomOut decreases the zoom by one step
func (v *Viewer) ZoomOut() float64 { return v.SetScale(v.scale - zoomStep) }

// SetScale sets the zoom, rounded to one decimal and at least minZoom
func (v *Viewer) SetScale(s float64) float64 {
	s = math.Round(s*10) / 10
	if s < minZoom {
		s = minZoom
	}
	v.scale = s
	return v.scale
}

// Focus moves to the page of the named field and reports whether it exists
func (v *Viewer) Focus(name string) bool {
	f, ok := v.doc.Field(name)
	if !ok {
		return false
	}
	v.GoTo(f.Page)
	return true
}

// Overlays returns the hit-targets of the current page
func (v *Viewer) Overlays(sel *Selection) []Overlay {
	page, ok := v.doc.Page(v.page)
	if !ok {
		return []Overlay{}
	}
	fields := v.doc.FieldsOnPage(v.page)
	out := make([]Overlay, 0, len(fields))
	for _, f := range fields {
		out = append(out, Overlay{
			Name:     f.Name,
			Type:     f.Type,
			Left:     f.Rect[0] * v.scale,
			Top:      (page.Height - f.Rect[3]) * v.scale,
			Width:    f.Rect.Width() * v.scale,
			Height:   f.Rect.Height() * v.scale,
			Selected: sel != nil && sel.Has(f.Name),
		})
	}
	return out
}
