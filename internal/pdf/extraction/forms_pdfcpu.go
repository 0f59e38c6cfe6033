package extraction

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	flagReadOnly   = 1 << 0
	flagRequired   = 1 << 1
	flagRadio      = 1 << 15
	flagPushButton = 1 << 16

	// parent chains deeper than this are treated as malformed
	maxFieldDepth = 32

	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// formReader walks the widget annotations of a document with pdfcpu
type formReader struct {
	ctx   *model.Context
	debug bool
}

func readContext(data []byte) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx, nil
}

// pages returns the size of every page, falling back to US Letter when the
// page dimensions cannot be read
func (fr *formReader) pages() []PageInfo {
	pages := make([]PageInfo, fr.ctx.PageCount)
	dims, err := fr.ctx.PageDims()
	if err != nil && fr.debug {
		log.Printf("failed to read page dimensions: %v", err)
	}
	for i := range pages {
		pages[i] = PageInfo{Number: i + 1, Width: defaultPageWidth, Height: defaultPageHeight}
		if i < len(dims) && dims[i].Width > 0 && dims[i].Height > 0 {
			pages[i].Width = dims[i].Width
			pages[i].Height = dims[i].Height
		}
	}
	return pages
}

// fields returns every widget of every page in page order
func (fr *formReader) fields() []Field {
	var fields []Field
	for pageNr := 1; pageNr <= fr.ctx.PageCount; pageNr++ {
		pageDict, _, _, err := fr.ctx.PageDict(pageNr, false)
		if err != nil || pageDict == nil {
			if fr.debug {
				log.Printf("failed to read page %d: %v", pageNr, err)
			}
			continue
		}

		annotsObj, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		annots, err := fr.ctx.DereferenceArray(annotsObj)
		if err != nil {
			continue
		}

		for i, annotObj := range annots {
			field, ok := fr.widget(annotObj, pageNr, i)
			if ok {
				fields = append(fields, field)
			}
		}
	}
	return fields
}

// widget converts one annotation into a Field. Annotations that are not
// form widgets, or have no field type, are skipped.
func (fr *formReader) widget(obj types.Object, pageNr, index int) (Field, bool) {
	annot, err := fr.ctx.DereferenceDict(obj)
	if err != nil || annot == nil {
		return Field{}, false
	}

	if subtypeObj, found := annot.Find("Subtype"); found {
		subtype, err := fr.ctx.DereferenceName(subtypeObj, model.V10, nil)
		if err != nil || subtype != "Widget" {
			return Field{}, false
		}
	}

	flags := fr.flags(annot)
	fieldType, ok := fr.fieldType(annot, flags)
	if !ok {
		return Field{}, false
	}

	field := Field{
		Name:     fr.qualifiedName(annot),
		Type:     fieldType,
		Page:     pageNr,
		ReadOnly: flags&flagReadOnly != 0,
		Required: flags&flagRequired != 0,
	}
	if field.Name == "" {
		field.Name = fmt.Sprintf("field_p%d_%d", pageNr, index)
	}

	if rectObj, found := annot.Find("Rect"); found {
		field.Rect = fr.rect(rectObj)
	}

	if valueObj, found := fr.inherited(annot, "V"); found {
		field.Value = fr.value(valueObj, fieldType)
	}

	switch fieldType {
	case FieldTypeCheckbox, FieldTypeRadio:
		field.Options = fr.onStates(annot)
	case FieldTypeText:
		field.Options = fr.choiceOptions(annot)
	}

	if fr.debug {
		log.Printf("extracted field %s (%s) on page %d", field.Name, field.Type, pageNr)
	}
	return field, true
}

// fieldType classifies the widget from its inherited FT and Ff entries.
// Choice fields are reported as text; their options are kept.
func (fr *formReader) fieldType(annot types.Dict, flags int) (FieldType, bool) {
	ftObj, found := fr.inherited(annot, "FT")
	if !found {
		return "", false
	}
	ft, err := fr.ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return "", false
	}

	switch ft {
	case "Tx", "Ch":
		return FieldTypeText, true
	case "Sig":
		return FieldTypeSignature, true
	case "Btn":
		switch {
		case flags&flagRadio != 0:
			return FieldTypeRadio, true
		case flags&flagPushButton != 0:
			return FieldTypeButton, true
		default:
			return FieldTypeCheckbox, true
		}
	}
	return "", false
}

func (fr *formReader) flags(annot types.Dict) int {
	obj, found := fr.inherited(annot, "Ff")
	if !found {
		return 0
	}
	flags, err := fr.ctx.DereferenceInteger(obj)
	if err != nil || flags == nil {
		return 0
	}
	return int(*flags)
}

// inherited looks up key on the widget and then up the Parent chain
func (fr *formReader) inherited(d types.Dict, key string) (types.Object, bool) {
	cur := d
	for depth := 0; cur != nil && depth < maxFieldDepth; depth++ {
		if obj, found := cur.Find(key); found {
			return obj, true
		}
		parentObj, found := cur.Find("Parent")
		if !found {
			return nil, false
		}
		parent, err := fr.ctx.DereferenceDict(parentObj)
		if err != nil {
			return nil, false
		}
		cur = parent
	}
	return nil, false
}

// qualifiedName joins the partial names of the widget and its ancestors
func (fr *formReader) qualifiedName(d types.Dict) string {
	var parts []string
	cur := d
	for depth := 0; cur != nil && depth < maxFieldDepth; depth++ {
		if tObj, found := cur.Find("T"); found {
			if name, err := fr.ctx.DereferenceStringOrHexLiteral(tObj, model.V10, nil); err == nil && name != "" {
				parts = append([]string{name}, parts...)
			}
		}
		parentObj, found := cur.Find("Parent")
		if !found {
			break
		}
		parent, err := fr.ctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		cur = parent
	}
	return strings.Join(parts, ".")
}

// rect reads a Rect array and normalizes it to lower-left/upper-right
func (fr *formReader) rect(obj types.Object) Rect {
	arr, err := fr.ctx.DereferenceArray(obj)
	if err != nil || len(arr) != 4 {
		return Rect{}
	}
	var r Rect
	for i, c := range arr {
		if f, err := fr.ctx.DereferenceNumber(c); err == nil {
			r[i] = f
		}
	}
	if r[0] > r[2] {
		r[0], r[2] = r[2], r[0]
	}
	if r[1] > r[3] {
		r[1], r[3] = r[3], r[1]
	}
	return r
}

func (fr *formReader) value(obj types.Object, fieldType FieldType) any {
	if fieldType == FieldTypeText || fieldType == FieldTypeSignature {
		if s, err := fr.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
			return s
		}
	}
	if name, err := fr.ctx.DereferenceName(obj, model.V10, nil); err == nil {
		if fieldType == FieldTypeCheckbox {
			return name != "Off" && name != ""
		}
		return string(name)
	}
	return nil
}

// onStates returns the export values of a button widget: the keys of its
// normal appearance dictionary other than Off
func (fr *formReader) onStates(annot types.Dict) []string {
	apObj, found := annot.Find("AP")
	if !found {
		return nil
	}
	ap, err := fr.ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return nil
	}
	nObj, found := ap.Find("N")
	if !found {
		return nil
	}
	n, err := fr.ctx.DereferenceDict(nObj)
	if err != nil || n == nil {
		return nil
	}
	var states []string
	for k := range n {
		if k != "Off" {
			states = append(states, k)
		}
	}
	sort.Strings(states)
	return states
}

// choiceOptions reads Opt entries, preferring the display value of
// [export, display] pairs
func (fr *formReader) choiceOptions(annot types.Dict) []string {
	optObj, found := fr.inherited(annot, "Opt")
	if !found {
		return nil
	}
	arr, err := fr.ctx.DereferenceArray(optObj)
	if err != nil {
		return nil
	}
	var options []string
	for _, opt := range arr {
		if s, err := fr.ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, s)
			continue
		}
		if pair, err := fr.ctx.DereferenceArray(opt); err == nil && len(pair) >= 2 {
			if s, err := fr.ctx.DereferenceStringOrHexLiteral(pair[1], model.V10, nil); err == nil {
				options = append(options, s)
			}
		}
	}
	return options
}
