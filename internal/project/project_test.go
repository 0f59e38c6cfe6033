package project

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-schema-builder/internal/ai"
	"github.com/a3tai/pdf-schema-builder/internal/ai/sse"
	"github.com/a3tai/pdf-schema-builder/internal/editor"
	apperrors "github.com/a3tai/pdf-schema-builder/internal/errors"
	"github.com/a3tai/pdf-schema-builder/internal/grouping"
	"github.com/a3tai/pdf-schema-builder/internal/pdf"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
	"github.com/a3tai/pdf-schema-builder/internal/registry"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
	"github.com/a3tai/pdf-schema-builder/internal/storage"
	"github.com/a3tai/pdf-schema-builder/internal/testsupport"
)

type fakeAI struct {
	mu       sync.Mutex
	name     string
	labels   map[string]string
	attrReqs []ai.AttributesRequest
}

func (f *fakeAI) GenerateAttributes(_ context.Context, req ai.AttributesRequest) (ai.AttributesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attrReqs = append(f.attrReqs, req)
	if f.name == "" {
		return ai.AttributesResponse{}, errors.New("model unavailable")
	}
	return ai.AttributesResponse{DisplayName: f.name}, nil
}

func (f *fakeAI) GenerateCheckboxLabel(_ context.Context, req ai.CheckboxLabelRequest) (ai.CheckboxLabelResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.labels[req.FieldName]; ok {
		return ai.CheckboxLabelResponse{DisplayName: l}, nil
	}
	return ai.CheckboxLabelResponse{}, errors.New("no label")
}

func (f *fakeAI) OrganizeSchema(context.Context, ai.OrganizeRequest) (ai.OrganizeResponse, error) {
	return ai.OrganizeResponse{}, ai.ErrDisabled
}

func (f *fakeAI) BeautifyBlock(context.Context, ai.BeautifyRequest, func(sse.Event) error) error {
	return ai.ErrDisabled
}

func newDeps(service ai.Service) Deps {
	return Deps{
		Store:     storage.OpenPersistence(afero.NewMemMapFs(), "/data", 0),
		Validator: pdf.NewValidator(0, nil),
		Extractor: extraction.NewExtractor(4, false),
		AI:        service,
	}
}

var appraisal = registry.Project{ID: "p1", Name: "Appraisal", FormType: "appraisal"}

func newPage(t *testing.T, deps Deps) *Page {
	t.Helper()
	page := NewPage(appraisal, deps)
	require.NoError(t, page.Load(context.Background()))
	return page
}

func uploaded(t *testing.T, service ai.Service) *Page {
	t.Helper()
	page := newPage(t, newDeps(service))
	tier, err := page.Upload(context.Background(), pdf.ContentType, testsupport.FormPDF())
	require.NoError(t, err)
	assert.Equal(t, storage.TierIndexed, tier)
	return page
}

func TestUploadRejectsWithoutSideEffects(t *testing.T) {
	page := newPage(t, newDeps(nil))

	_, err := page.Upload(context.Background(), "image/png", testsupport.FormPDF())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, pdf.MsgNotPDF, err.Error())
	assert.Nil(t, page.Document())
	assert.Nil(t, page.deps.Store.TryLoadPDF(context.Background(), "p1"))
}

func TestUploadExtractsFields(t *testing.T) {
	page := uploaded(t, nil)

	fields := page.Fields()
	require.NotEmpty(t, fields)
	assert.Equal(t, "owner_name", fields[0].Name)

	view := page.View()
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 1, view.NumPages)
	assert.Len(t, view.Overlays, len(fields))
	assert.Empty(t, view.Selected)
}

func TestViewNavigationAndZoom(t *testing.T) {
	page := uploaded(t, nil)

	assert.Equal(t, 1, page.Navigate(9).Page)
	assert.InDelta(t, 1.2, page.Zoom(2).Scale, 1e-9)
	assert.InDelta(t, 1.0, page.Zoom(-2).Scale, 1e-9)
}

func TestClickFieldTogglesSelection(t *testing.T) {
	page := uploaded(t, nil)

	res, err := page.ClickField("owner_name")
	require.NoError(t, err)
	assert.False(t, res.Editor)
	assert.True(t, res.Selected)
	assert.Equal(t, []string{"owner_name"}, res.Fields)

	res, err = page.ClickField("owner_name")
	require.NoError(t, err)
	assert.False(t, res.Selected)
	assert.Empty(t, page.Selection())

	_, err = page.ClickField("missing")
	assert.Error(t, err)
}

func TestGroupOptionsFollowSelection(t *testing.T) {
	page := uploaded(t, nil)
	assert.Nil(t, page.GroupOptions())

	require.NoError(t, page.SelectFields([]string{"address.line1", "address.line2"}))
	assert.Equal(t, []grouping.GroupType{grouping.TextContinuation, grouping.TextSameValue}, page.GroupOptions())

	require.NoError(t, page.SelectFields([]string{"tenure"}))
	assert.Equal(t, []grouping.GroupType{grouping.Radio}, page.GroupOptions())
	assert.Len(t, page.SelectedFields(), 2)

	assert.Error(t, page.SelectFields([]string{"nope"}))
}

func TestGroupSelectionOpensDraft(t *testing.T) {
	fake := &fakeAI{name: "Property address"}
	page := uploaded(t, fake)

	require.NoError(t, page.SelectFields([]string{"address.line1", "address.line2"}))
	item, err := page.GroupSelection(context.Background(), grouping.TextContinuation, "", "Full address")
	require.NoError(t, err)

	assert.Equal(t, "address.line1", item.UniqueID)
	assert.Equal(t, "Property address", item.DisplayAttributes.DisplayName)
	assert.Equal(t, []string{"address.line1", "address.line2"}, item.PDFAttributes[0].LinkedFormFieldsText)

	require.Len(t, fake.attrReqs, 1)
	assert.Equal(t, "Full address", fake.attrReqs[0].Intent)
	assert.Equal(t, string(grouping.TextContinuation), fake.attrReqs[0].GroupType)

	st := page.Editor().State()
	assert.Equal(t, editor.EditingNew, st.Mode)
	// the editor focuses the draft's own fields
	assert.Equal(t, []string{"address.line1", "address.line2"}, page.Selection())

	// stays unsaved until the editor saves it
	assert.Empty(t, page.Schema())
	require.NoError(t, page.Editor().Save(false))
	require.Len(t, page.Schema(), 1)
	assert.Equal(t, 1, page.Schema()[0].DisplayAttributes.Order)
}

func TestGroupSelectionValidation(t *testing.T) {
	page := uploaded(t, nil)

	_, err := page.GroupSelection(context.Background(), grouping.TextContinuation, "Name", "")
	require.Error(t, err)
	assert.Equal(t, grouping.MsgNoFields, err.Error())

	require.NoError(t, page.SelectFields([]string{"owner_name", "has_pool"}))
	_, err = page.GroupSelection(context.Background(), grouping.TextContinuation, "Name", "")
	require.Error(t, err)
	assert.Equal(t, grouping.MsgMixedTypes, err.Error())
	assert.Equal(t, []string{"owner_name", "has_pool"}, page.Selection())
	assert.Equal(t, editor.Idle, page.Editor().State().Mode)
}

func TestGroupSelectionWhileEditingKeepsSelection(t *testing.T) {
	page := uploaded(t, nil)

	require.NoError(t, page.SelectFields([]string{"owner_name"}))
	_, err := page.GroupSelection(context.Background(), grouping.TextContinuation, "Owner", "")
	require.NoError(t, err)

	require.NoError(t, page.SelectFields([]string{"address.line1"}))
	_, err = page.GroupSelection(context.Background(), grouping.TextContinuation, "Address", "")
	assert.ErrorIs(t, err, editor.ErrAlreadyEditing)
	assert.Equal(t, []string{"address.line1"}, page.Selection())
}

func TestGroupCheckboxesLabelsEachField(t *testing.T) {
	fake := &fakeAI{labels: map[string]string{"has_pool": "Swimming pool", "has_garage": "Garage"}}
	page := uploaded(t, fake)

	require.NoError(t, page.SelectFields([]string{"has_pool", "has_garage"}))
	item, err := page.GroupCheckboxes(context.Background(), "Amenities", []string{"Has pool", "Has garage"})
	require.NoError(t, err)

	assert.Equal(t, "Amenities", item.DisplayAttributes.DisplayName)
	assert.Equal(t, schema.InputCheckbox, item.DisplayAttributes.InputType)
	opts := item.DisplayAttributes.CheckboxOptions.Options
	require.Len(t, opts, 2)
	assert.Equal(t, "Swimming pool", opts[0].DisplayName)
	assert.Equal(t, "has_pool", opts[0].DatabaseStored)
	assert.Equal(t, "Garage", opts[1].DisplayName)
	assert.Equal(t, "has_garage", opts[1].DatabaseStored)
}

func TestGroupCheckboxesSkipsMissingIntents(t *testing.T) {
	fake := &fakeAI{labels: map[string]string{"has_pool": "Swimming pool", "has_garage": "Garage"}}
	page := uploaded(t, fake)

	require.NoError(t, page.SelectFields([]string{"has_pool", "has_garage"}))
	item, err := page.GroupCheckboxes(context.Background(), "Amenities", []string{"Has pool"})
	require.NoError(t, err)

	opts := item.DisplayAttributes.CheckboxOptions.Options
	assert.Equal(t, "Swimming pool", opts[0].DisplayName)
	assert.Equal(t, "has_garage", opts[1].DisplayName)

	page.ClearSelection()
	_, err = page.GroupCheckboxes(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Equal(t, grouping.MsgNoFields, err.Error())
}

func TestClickFieldRoutesToLinking(t *testing.T) {
	page := uploaded(t, nil)

	require.NoError(t, page.SelectFields([]string{"owner_name"}))
	_, err := page.GroupSelection(context.Background(), grouping.TextContinuation, "Owner", "")
	require.NoError(t, err)
	require.NoError(t, page.Editor().BeginLinking(editor.LinkText, ""))

	res, err := page.ClickField("address.line1")
	require.NoError(t, err)
	assert.True(t, res.Editor)
	assert.Equal(t, editor.EditingExisting, page.Editor().State().Mode)

	s := page.Schema()
	require.Len(t, s, 1)
	assert.Equal(t, []string{"owner_name", "address.line1"}, s[0].PDFAttributes[0].LinkedFormFieldsText)
}

func TestSchemaSurvivesReload(t *testing.T) {
	deps := newDeps(nil)
	page := newPage(t, deps)
	_, err := page.Upload(context.Background(), pdf.ContentType, testsupport.FormPDF())
	require.NoError(t, err)

	require.NoError(t, page.SelectFields([]string{"owner_name"}))
	_, err = page.GroupSelection(context.Background(), grouping.TextContinuation, "Owner", "")
	require.NoError(t, err)
	require.NoError(t, page.Editor().Save(false))

	again := newPage(t, deps)
	require.NotNil(t, again.Document())
	require.Len(t, again.Schema(), 1)
	assert.Equal(t, "owner_name", again.Schema()[0].UniqueID)
}

func TestExportAndTabs(t *testing.T) {
	page := uploaded(t, nil)
	page.SetSchema(schema.Schema{{
		UniqueID: "owner_name",
		DisplayAttributes: schema.DisplayAttributes{
			DisplayName: "Owner",
			InputType:   schema.InputText,
			Order:       1,
			Value:       schema.Value{Type: schema.ValueManual},
		},
	}})

	assert.Equal(t, TabEditor, page.Tab())
	require.NoError(t, page.SetTab(TabExport))
	assert.Equal(t, TabExport, page.Tab())
	assert.Error(t, page.SetTab("preview"))

	name, out, err := page.Export(schema.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "appraisal_schema.json", name)
	assert.Contains(t, out, `"unique_id": "owner_name"`)

	name, out, err = page.Export(schema.FormatTypeScript)
	require.NoError(t, err)
	assert.Equal(t, "appraisal_schema.ts", name)
	assert.Contains(t, out, "appraisal_schema")
}

func TestServiceLifecycle(t *testing.T) {
	deps := newDeps(nil)
	svc, err := NewService(deps)
	require.NoError(t, err)
	ctx := context.Background()

	p, err := svc.Create("Appraisal 2024", "appraisal")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "appraisal", p.FormType)
	assert.Len(t, svc.List(), 1)

	page, err := svc.Open(ctx, p.ID)
	require.NoError(t, err)
	same, err := svc.Open(ctx, p.ID)
	require.NoError(t, err)
	assert.Same(t, page, same)

	_, err = page.Upload(ctx, pdf.ContentType, testsupport.FormPDF())
	require.NoError(t, err)
	page.SetSchema(schema.Schema{{UniqueID: "a"}})

	require.NoError(t, svc.Rename(p.ID, "Renamed"))
	assert.Equal(t, "Renamed", page.Project().Name)
	assert.Error(t, svc.Rename(p.ID, "  "))

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Empty(t, svc.List())
	assert.Nil(t, deps.Store.TryLoadPDF(ctx, p.ID))
	_, ok := deps.Store.LoadSchema(ctx, p.ID)
	assert.False(t, ok)

	_, err = svc.Open(ctx, p.ID)
	assert.ErrorIs(t, err, registry.ErrProjectNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), registry.ErrProjectNotFound)
}

func TestServiceRegistryPersists(t *testing.T) {
	deps := newDeps(nil)
	svc, err := NewService(deps)
	require.NoError(t, err)
	p, err := svc.Create("W-9", "")
	require.NoError(t, err)
	assert.Equal(t, "W-9", p.FormType)

	reopened, err := NewService(deps)
	require.NoError(t, err)
	got, err := reopened.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = NewService(Deps{})
	assert.Error(t, err)
}
