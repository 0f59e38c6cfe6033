// Package project wires one project's PDF, schema, viewer and editor
// together. The Page is the only writer of the project's stored schema.
package project

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/a3tai/pdf-schema-builder/internal/ai"
	"github.com/a3tai/pdf-schema-builder/internal/editor"
	"github.com/a3tai/pdf-schema-builder/internal/generator"
	"github.com/a3tai/pdf-schema-builder/internal/grouping"
	"github.com/a3tai/pdf-schema-builder/internal/pdf"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
	"github.com/a3tai/pdf-schema-builder/internal/registry"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
	"github.com/a3tai/pdf-schema-builder/internal/storage"
)

// Tab is the visible panel of a page
type Tab string

const (
	TabEditor Tab = "editor"
	TabExport Tab = "export"
)

// Deps are the collaborators shared by every page
type Deps struct {
	Store              *storage.Persistence
	Validator          *pdf.Validator
	Extractor          *extraction.Extractor
	AI                 ai.Service
	BeautifyIterations int
}

// View is what the PDF panel shows
type View struct {
	Page     int                  `json:"page"`
	NumPages int                  `json:"num_pages"`
	Scale    float64              `json:"scale"`
	Overlays []extraction.Overlay `json:"overlays"`
	Selected []string             `json:"selected"`
}

// ClickResult says how a field click was routed
type ClickResult struct {
	// Editor is true when the open editor consumed the click
	Editor   bool     `json:"editor"`
	Selected bool     `json:"selected"`
	Fields   []string `json:"selection"`
}

// Page is the controller of one open project
type Page struct {
	mu        sync.Mutex
	project   registry.Project
	deps      Deps
	generator *generator.Generator
	editor    *editor.Editor

	schema    schema.Schema
	doc       *extraction.Document
	viewer    *extraction.Viewer
	selection extraction.Selection
	tab       Tab
}

// NewPage creates an empty page; call Load to read stored state
func NewPage(p registry.Project, deps Deps) *Page {
	if deps.AI == nil {
		deps.AI = ai.Noop{}
	}
	if deps.Validator == nil {
		deps.Validator = pdf.NewValidator(pdf.DefaultMaxFileSize, nil)
	}
	if deps.Extractor == nil {
		deps.Extractor = extraction.NewExtractor(0, false)
	}

	page := &Page{
		project:   p,
		deps:      deps,
		generator: generator.New(deps.AI),
		schema:    schema.Schema{},
		viewer:    extraction.NewViewer(nil),
		tab:       TabEditor,
	}
	page.editor = editor.New(editor.Config{
		Source:             page.Schema,
		OnChange:           page.SetSchema,
		Focuser:            page,
		AI:                 deps.AI,
		BeautifyIterations: deps.BeautifyIterations,
	})
	return page
}

// Project returns the project metadata
func (p *Page) Project() registry.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.project
}

func (p *Page) rename(name string) {
	p.mu.Lock()
	p.project.Name = name
	p.mu.Unlock()
}

// Editor returns the page's schema editor
func (p *Page) Editor() *editor.Editor {
	return p.editor
}

// Load reads the stored PDF and schema. A project without a PDF loads with
// no document; a missing schema loads empty.
func (p *Page) Load(ctx context.Context) error {
	if p.deps.Store == nil {
		return fmt.Errorf("page has no storage")
	}
	data := p.deps.Store.TryLoadPDF(ctx, p.project.ID)
	s, ok := p.deps.Store.LoadSchema(ctx, p.project.ID)
	if !ok {
		s = schema.Schema{}
	}

	var doc *extraction.Document
	if data != nil {
		doc = p.deps.Extractor.Extract(data)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.schema = s
	p.setDocument(doc)
	return nil
}

// Upload validates, persists and parses a new PDF. Validation failures touch
// neither storage nor the current document.
func (p *Page) Upload(ctx context.Context, contentType string, data []byte) (storage.Tier, error) {
	if err := p.deps.Validator.ValidateUpload(contentType, int64(len(data))); err != nil {
		return "", err
	}
	tier, err := p.deps.Store.PersistPDF(ctx, p.project.ID, data)
	if err != nil {
		return "", err
	}
	log.Printf("stored pdf for %s in %s (%d bytes)", p.project.ID, tier, len(data))

	doc := p.deps.Extractor.Extract(data)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.setDocument(doc)
	return tier, nil
}

func (p *Page) setDocument(doc *extraction.Document) {
	p.doc = doc
	p.viewer = extraction.NewViewer(doc)
	p.selection.Clear()
}

// Document returns the parsed PDF, nil before any upload
func (p *Page) Document() *extraction.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc
}

// Fields returns every extracted field
func (p *Page) Fields() []extraction.Field {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return []extraction.Field{}
	}
	return append([]extraction.Field(nil), p.doc.Fields...)
}

// Schema returns the in-memory schema
func (p *Page) Schema() schema.Schema {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.schema
}

// SetSchema replaces the schema and persists it. Storage errors are logged;
// the in-memory schema is kept either way.
func (p *Page) SetSchema(s schema.Schema) {
	if s == nil {
		s = schema.Schema{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.schema = s
	if p.deps.Store == nil {
		return
	}
	if err := p.deps.Store.SaveSchema(context.Background(), p.project.ID, s); err != nil {
		log.Printf("failed to persist schema for %s: %v", p.project.ID, err)
	}
}

// View returns the visible page with its hit-targets
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *Page) viewLocked() View {
	return View{
		Page:     p.viewer.Page(),
		NumPages: p.viewer.NumPages(),
		Scale:    p.viewer.Scale(),
		Overlays: p.viewer.Overlays(&p.selection),
		Selected: p.selection.Names(),
	}
}

// Navigate moves to page n, clamped to the document
func (p *Page) Navigate(n int) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewer.GoTo(n)
	return p.viewLocked()
}

// Zoom changes the scale by steps of 0.1; negative steps zoom out
func (p *Page) Zoom(steps int) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ; steps > 0; steps-- {
		p.viewer.ZoomIn()
	}
	for ; steps < 0; steps++ {
		p.viewer.ZoomOut()
	}
	return p.viewLocked()
}

// Focus selects the named fields and shows the page of the first one
func (p *Page) Focus(names []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection.Set(names...)
	for _, n := range names {
		if p.viewer.Focus(n) {
			return
		}
	}
}

// ClickField routes a field click to the editor when it is linking or
// selecting a visibility field; otherwise the field's selection is toggled.
func (p *Page) ClickField(name string) (ClickResult, error) {
	p.mu.Lock()
	f, ok := p.doc.Field(name)
	p.mu.Unlock()
	if !ok {
		return ClickResult{}, fmt.Errorf("field %q not found", name)
	}

	handled, err := p.editor.FieldClicked(f)
	if handled {
		return ClickResult{Editor: true, Fields: p.Selection()}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	selected := p.selection.Toggle(name)
	return ClickResult{Selected: selected, Fields: p.selection.Names()}, nil
}

// Selection returns the selected field names
func (p *Page) Selection() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.Names()
}

// SelectFields replaces the selection; unknown names are rejected
func (p *Page) SelectFields(names []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range names {
		if _, ok := p.doc.Field(n); !ok {
			return fmt.Errorf("field %q not found", n)
		}
	}
	p.selection.Set(names...)
	return nil
}

// ClearSelection empties the selection
func (p *Page) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection.Clear()
}

// SelectedFields returns every widget of the selected fields in selection
// order
func (p *Page) SelectedFields() []extraction.Field {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedLocked()
}

func (p *Page) selectedLocked() []extraction.Field {
	var out []extraction.Field
	if p.doc == nil {
		return out
	}
	for _, n := range p.selection.Names() {
		for _, f := range p.doc.Fields {
			if f.Name == n {
				out = append(out, f)
			}
		}
	}
	return out
}

// GroupOptions returns the group types allowed for the selection
func (p *Page) GroupOptions() []grouping.GroupType {
	return grouping.AllowedGroupTypes(p.SelectedFields())
}

// GroupSelection packages the selection, generates an item and opens it in
// the editor. The selection is cleared once the draft is open.
func (p *Page) GroupSelection(ctx context.Context, groupType grouping.GroupType, displayName, intent string) (schema.Item, error) {
	fields := p.SelectedFields()
	group, err := grouping.Build(fields, groupType, displayName, intent)
	if err != nil {
		return schema.Item{}, err
	}
	item := p.generator.Generate(ctx, group, p.Project().FormType, p.Document())
	return item, p.open(item)
}

// GroupCheckboxes collects one intent per selected checkbox, in selection
// order, and builds a checkbox item from per-field AI labels. Missing or
// empty intents skip the checkbox.
func (p *Page) GroupCheckboxes(ctx context.Context, displayName string, intents []string) (schema.Item, error) {
	fields := p.SelectedFields()
	wizard, err := grouping.NewCheckboxWizard(fields)
	if err != nil {
		return schema.Item{}, err
	}

	_, total := wizard.Position()
	for i := 0; i < total-1; i++ {
		if i < len(intents) {
			wizard.Next(intents[i])
		} else {
			wizard.Skip()
		}
	}
	last := ""
	if total-1 < len(intents) {
		last = intents[total-1]
	}

	group, collected, err := wizard.Finish(displayName, last)
	if err != nil {
		return schema.Item{}, err
	}
	item := p.generator.GenerateCheckbox(ctx, group, collected, p.Project().FormType)
	return item, p.open(item)
}

// open clears the selection and opens item; the editor then focuses the
// item's own fields. A refused draft restores the selection.
func (p *Page) open(item schema.Item) error {
	p.mu.Lock()
	prev := p.selection.Names()
	p.selection.Clear()
	p.mu.Unlock()

	if err := p.editor.StartNew(item); err != nil {
		p.mu.Lock()
		p.selection.Set(prev...)
		p.mu.Unlock()
		return err
	}
	return nil
}

// Tab returns the visible panel
func (p *Page) Tab() Tab {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tab
}

// SetTab switches between the editor and export panels
func (p *Page) SetTab(t Tab) error {
	if t != TabEditor && t != TabExport {
		return fmt.Errorf("unknown tab %q", t)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tab = t
	return nil
}

// Export renders the schema and returns the download file name with it
func (p *Page) Export(format schema.Format) (string, string, error) {
	formType := p.Project().FormType
	out, err := schema.Export(p.Schema(), formType, format)
	if err != nil {
		return "", "", err
	}
	return schema.FileName(formType, format), out, nil
}
