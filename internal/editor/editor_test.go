package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-schema-builder/internal/ai"
	apperrors "github.com/a3tai/pdf-schema-builder/internal/errors"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// owner plays the page controller: it holds the schema and counts proposals
type owner struct {
	mu      sync.Mutex
	current schema.Schema
	changes int
	focused [][]string
}

func (o *owner) Schema() schema.Schema {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

func (o *owner) SetSchema(s schema.Schema) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = s
	o.changes++
}

func (o *owner) Focus(names []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.focused = append(o.focused, names)
}

func (o *owner) Changes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.changes
}

func newEditor(t *testing.T, initial schema.Schema, service ai.Service) (*Editor, *owner) {
	t.Helper()
	o := &owner{current: initial}
	e := New(Config{Source: o.Schema, OnChange: o.SetSchema, Focuser: o, AI: service})
	return e, o
}

func textItem(id string, order int) schema.Item {
	return schema.Item{
		UniqueID: id,
		DisplayAttributes: schema.DisplayAttributes{
			DisplayName: "Item " + id,
			InputType:   schema.InputText,
			Order:       order,
			Value:       schema.Value{Type: schema.ValueManual},
		},
		PDFAttributes: []schema.PDFAttribute{{FormType: "w9", FormField: schema.SingleField(id)}},
	}
}

func sample() schema.Schema {
	return schema.Schema{textItem("a", 1), textItem("b", 2), textItem("c", 3)}
}

func ids(s schema.Schema) []string {
	out := make([]string, len(s))
	for i, it := range s {
		out[i] = it.UniqueID
	}
	return out
}

func orders(s schema.Schema) []int {
	out := make([]int, len(s))
	for i, it := range s {
		out[i] = it.DisplayAttributes.Order
	}
	return out
}

func TestStartNewAndSave(t *testing.T) {
	e, o := newEditor(t, sample(), nil)

	draft := textItem("d", 0)
	require.NoError(t, e.StartNew(draft))

	st := e.State()
	assert.Equal(t, EditingNew, st.Mode)
	assert.Equal(t, "d", st.ItemID)
	assert.Equal(t, 4, st.Draft.DisplayAttributes.Order)
	assert.Equal(t, [][]string{{"d"}}, o.focused)

	assert.ErrorIs(t, e.Edit("a"), ErrAlreadyEditing)
	assert.ErrorIs(t, e.StartNew(textItem("e", 0)), ErrAlreadyEditing)

	require.NoError(t, e.Save(false))
	assert.Equal(t, Idle, e.State().Mode)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(o.Schema()))
	assert.Equal(t, 1, o.Changes())
}

func TestSaveValidation(t *testing.T) {
	e, o := newEditor(t, sample(), nil)

	require.NoError(t, e.Edit("b"))
	require.NoError(t, e.Update(func(it *schema.Item) {
		it.DisplayAttributes.DisplayName = " "
		it.DisplayAttributes.Order = 0
	}))

	err := e.Save(false)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.ErrorIs(t, err, schema.ErrMissingDisplayName)
	assert.ErrorIs(t, err, schema.ErrMissingOrder)
	assert.Equal(t, EditingExisting, e.State().Mode)
	assert.Equal(t, 0, o.Changes())
}

func TestSaveUnchangedIsValueIdentical(t *testing.T) {
	before := sample()
	e, o := newEditor(t, before, nil)

	require.NoError(t, e.Edit("b"))
	require.NoError(t, e.Save(false))

	after := o.Schema()
	assert.Equal(t, before, after)
	after[1].DisplayAttributes.DisplayName = "mutated"
	assert.Equal(t, "Item b", before[1].DisplayAttributes.DisplayName)
}

func TestSaveReplacesByID(t *testing.T) {
	e, o := newEditor(t, sample(), nil)

	require.NoError(t, e.Edit("b"))
	require.NoError(t, e.Update(func(it *schema.Item) { it.DisplayAttributes.DisplayName = "Renamed" }))
	require.NoError(t, e.Save(true))

	st := e.State()
	assert.Equal(t, EditingExisting, st.Mode)
	assert.Equal(t, "Renamed", o.Schema()[1].DisplayAttributes.DisplayName)

	require.NoError(t, e.Update(func(it *schema.Item) { it.UniqueID = "c" }))
	err := e.Save(false)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSaveNewRejectsDuplicateID(t *testing.T) {
	e, _ := newEditor(t, sample(), nil)
	require.NoError(t, e.StartNew(textItem("a", 0)))
	assert.True(t, apperrors.IsValidation(e.Save(false)))
}

func TestCancel(t *testing.T) {
	e, o := newEditor(t, sample(), nil)
	require.NoError(t, e.Edit("a"))
	require.NoError(t, e.Update(func(it *schema.Item) { it.DisplayAttributes.DisplayName = "x" }))
	e.Cancel()

	assert.Equal(t, Idle, e.State().Mode)
	assert.Nil(t, e.State().Draft)
	assert.Equal(t, "Item a", o.Schema()[0].DisplayAttributes.DisplayName)
	assert.ErrorIs(t, e.Save(false), ErrNotEditing)
	assert.ErrorIs(t, e.Update(func(*schema.Item) {}), ErrNotEditing)
}

func TestDeleteRenumbers(t *testing.T) {
	e, o := newEditor(t, sample(), nil)
	require.NoError(t, e.Edit("b"))

	require.NoError(t, e.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, ids(o.Schema()))
	assert.Equal(t, []int{1, 2}, orders(o.Schema()))
	assert.Equal(t, Idle, e.State().Mode)

	assert.ErrorIs(t, e.Delete("zzz"), schema.ErrItemNotFound)
}

func TestMove(t *testing.T) {
	e, o := newEditor(t, sample(), nil)

	require.NoError(t, e.Move(0, 2))
	assert.Equal(t, []string{"b", "c", "a"}, ids(o.Schema()))
	assert.Equal(t, []int{1, 2, 3}, orders(o.Schema()))
	assert.Equal(t, 1, o.Changes())

	require.NoError(t, e.Move(1, 1))
	assert.Equal(t, 1, o.Changes())

	assert.Error(t, e.Move(0, 9))
}

func TestLinkingText(t *testing.T) {
	e, o := newEditor(t, sample(), nil)
	require.NoError(t, e.StartNew(textItem("addr_1", 0)))

	require.NoError(t, e.BeginLinking(LinkText, ""))
	st := e.State()
	assert.Equal(t, LinkingField, st.Mode)
	assert.Equal(t, LinkText, st.Kind)
	assert.Equal(t, 1, o.Changes(), "linking saves the draft first")

	handled, err := e.FieldClicked(extraction.Field{Name: "addr_2", Type: extraction.FieldTypeText})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, EditingExisting, e.State().Mode)

	saved, ok := o.Schema().Find("addr_1")
	require.True(t, ok)
	assert.Equal(t, []string{"addr_1", "addr_2"}, saved.PDFAttributes[0].LinkedFormFieldsText)

	handled, err = e.FieldClicked(extraction.Field{Name: "other"})
	assert.NoError(t, err)
	assert.False(t, handled)
}

func TestLinkingCheckboxAndRadio(t *testing.T) {
	cb := schema.Item{
		UniqueID: "has_pool",
		DisplayAttributes: schema.DisplayAttributes{
			DisplayName: "Amenities", InputType: schema.InputCheckbox, Order: 1,
			CheckboxOptions: &schema.CheckboxOptions{Options: []schema.CheckboxOption{
				{DisplayName: "Pool", DatabaseStored: "has_pool", LinkedFields: []string{"has_pool"}},
			}},
			DisplayRadioOptions: []string{"Own"},
		},
		PDFAttributes: []schema.PDFAttribute{{FormField: schema.MultiField("has_pool")}},
	}
	e, o := newEditor(t, schema.Schema{cb}, nil)
	require.NoError(t, e.Edit("has_pool"))

	assert.Error(t, e.BeginLinking(LinkCheckbox, "missing"))
	assert.Error(t, e.BeginLinking(LinkKind("bogus"), ""))

	require.NoError(t, e.BeginLinking(LinkCheckbox, "has_pool"))
	_, err := e.FieldClicked(extraction.Field{Name: "pool_page2", Type: extraction.FieldTypeCheckbox})
	require.NoError(t, err)

	require.NoError(t, e.BeginLinking(LinkRadio, "Own"))
	_, err = e.FieldClicked(extraction.Field{Name: "tenure", Type: extraction.FieldTypeRadio, Options: []string{"Own"}})
	require.NoError(t, err)

	saved := o.Schema()[0]
	assert.Equal(t, []string{"has_pool", "pool_page2"}, saved.DisplayAttributes.CheckboxOptions.Options[0].LinkedFields)
	assert.Equal(t, []schema.LinkedCheckbox{{FromDatabase: "has_pool", PDFAttribute: "pool_page2"}}, saved.PDFAttributes[0].LinkedFormFieldsCheckbox)
	assert.Equal(t, []schema.LinkedRadio{{RadioField: "Own", DisplayName: "Own"}}, saved.PDFAttributes[0].LinkedFormFieldsRadio)
}

func TestLinkingCancelReturnsToEditing(t *testing.T) {
	e, _ := newEditor(t, sample(), nil)
	require.NoError(t, e.Edit("a"))
	require.NoError(t, e.BeginLinking(LinkText, ""))
	e.Cancel()
	assert.Equal(t, EditingExisting, e.State().Mode)
	e.Cancel()
	assert.Equal(t, Idle, e.State().Mode)
}

func TestVisibilitySelection(t *testing.T) {
	e, o := newEditor(t, sample(), nil)
	require.NoError(t, e.Edit("c"))

	assert.Error(t, e.BeginVisibilitySelection(0))

	idx, err := e.AddCondition(schema.Condition{Operator: schema.OpIsNotEmpty})
	require.NoError(t, err)
	require.NoError(t, e.BeginVisibilitySelection(idx))

	st := e.State()
	assert.Equal(t, SelectingVisibilityField, st.Mode)
	assert.Equal(t, "c", st.ItemID)
	assert.Equal(t, 0, st.ConditionIndex)

	handled, err := e.FieldClicked(extraction.Field{Name: "unbound"})
	assert.True(t, handled)
	assert.ErrorIs(t, err, ErrNoItemForField)
	assert.Equal(t, SelectingVisibilityField, e.State().Mode)

	handled, err = e.FieldClicked(extraction.Field{Name: "a"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, EditingExisting, e.State().Mode)

	require.NoError(t, e.Save(false))
	v := o.Schema()[2].DisplayAttributes.Visibility
	require.NotNil(t, v)
	assert.Equal(t, schema.LogicAll, v.Logic)
	assert.Equal(t, []schema.Condition{{Field: "a", Operator: schema.OpIsNotEmpty}}, v.Conditions)
}

func TestRemoveCondition(t *testing.T) {
	e, _ := newEditor(t, sample(), nil)
	require.NoError(t, e.Edit("a"))
	_, err := e.AddCondition(schema.Condition{Field: "b", Operator: schema.OpIsChecked})
	require.NoError(t, err)

	assert.Error(t, e.RemoveCondition(3))
	require.NoError(t, e.RemoveCondition(0))
	assert.Nil(t, e.State().Draft.DisplayAttributes.Visibility)
}

func TestClickAfterDraftLostLinkTarget(t *testing.T) {
	cb := schema.Item{
		UniqueID: "has_pool",
		DisplayAttributes: schema.DisplayAttributes{
			DisplayName: "Amenities", InputType: schema.InputCheckbox, Order: 1,
			CheckboxOptions: &schema.CheckboxOptions{Options: []schema.CheckboxOption{
				{DisplayName: "Pool", DatabaseStored: "has_pool"},
			}},
		},
	}
	e, _ := newEditor(t, schema.Schema{cb}, nil)
	require.NoError(t, e.Edit("has_pool"))
	require.NoError(t, e.BeginLinking(LinkCheckbox, "has_pool"))
	require.NoError(t, e.Update(func(it *schema.Item) { it.DisplayAttributes.CheckboxOptions = nil }))

	var (
		handled bool
		err     error
	)
	assert.NotPanics(t, func() {
		handled, err = e.FieldClicked(extraction.Field{Name: "pool_page2", Type: extraction.FieldTypeCheckbox})
	})
	assert.True(t, handled)
	assert.Error(t, err)
	assert.Equal(t, EditingExisting, e.State().Mode)
	assert.Empty(t, e.State().Draft.PDFAttributes)
}

func TestClickAfterDraftLostCondition(t *testing.T) {
	e, _ := newEditor(t, sample(), nil)
	require.NoError(t, e.Edit("a"))
	idx, err := e.AddCondition(schema.Condition{Operator: schema.OpIsNotEmpty})
	require.NoError(t, err)
	require.NoError(t, e.BeginVisibilitySelection(idx))
	require.NoError(t, e.Update(func(it *schema.Item) { it.DisplayAttributes.Visibility = nil }))

	var handled bool
	assert.NotPanics(t, func() {
		handled, err = e.FieldClicked(extraction.Field{Name: "b"})
	})
	assert.True(t, handled)
	assert.EqualError(t, err, "condition 0 does not exist")
	assert.Equal(t, EditingExisting, e.State().Mode)
}

type organizeAI struct {
	ai.Noop
	resp ai.OrganizeResponse
	err  error
	req  ai.OrganizeRequest
}

func (f *organizeAI) OrganizeSchema(_ context.Context, req ai.OrganizeRequest) (ai.OrganizeResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestOrganize(t *testing.T) {
	organized := sample()
	organized[0].DisplayAttributes.Block = "Owner"
	organized[1].DisplayAttributes.Block = "Owner"
	organized[2].DisplayAttributes.Block = "Property"

	fake := &organizeAI{resp: ai.OrganizeResponse{Schema: organized}}
	e, o := newEditor(t, sample(), fake)

	blocks, err := e.Organize(context.Background(), "appraisal")
	require.NoError(t, err)
	assert.Equal(t, []schema.BlockSummary{{Title: "Owner", ItemCount: 2}, {Title: "Property", ItemCount: 1}}, blocks)
	assert.Equal(t, organized, o.Schema())
	assert.Equal(t, "appraisal", fake.req.FormType)
	assert.Len(t, fake.req.Schema, 3)
}

func TestOrganizeFailureLeavesSchema(t *testing.T) {
	dup := schema.Schema{textItem("a", 1), textItem("a", 2)}
	tests := []struct {
		name string
		fake *organizeAI
	}{
		{"service error", &organizeAI{err: errors.New("overloaded")}},
		{"duplicate ids", &organizeAI{resp: ai.OrganizeResponse{Schema: dup}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, o := newEditor(t, sample(), tt.fake)
			_, err := e.Organize(context.Background(), "w9")
			assert.Error(t, err)
			assert.Equal(t, 0, o.Changes())
			assert.Equal(t, sample(), o.Schema())
		})
	}

	e, _ := newEditor(t, sample(), nil)
	_, err := e.Organize(context.Background(), "w9")
	assert.ErrorIs(t, err, ai.ErrDisabled)
}
