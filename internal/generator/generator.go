// Package generator turns a field group into a draft schema item, asking the
// AI service to fill in display attributes when the user described the group.
package generator

import (
	"context"
	"log"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/a3tai/pdf-schema-builder/internal/ai"
	"github.com/a3tai/pdf-schema-builder/internal/grouping"
	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// DefaultConcurrency bounds parallel checkbox label requests
const DefaultConcurrency = 4

// Generator builds schema items from field groups
type Generator struct {
	ai          ai.Service
	concurrency int
}

// New creates a generator. A nil service disables AI enhancement.
func New(service ai.Service) *Generator {
	if service == nil {
		service = ai.Noop{}
	}
	return &Generator{ai: service, concurrency: DefaultConcurrency}
}

// WithConcurrency sets how many checkbox labels are requested at once
func (g *Generator) WithConcurrency(n int) *Generator {
	if n > 0 {
		g.concurrency = n
	}
	return g
}

// Generate returns the draft item for group. With an intent the AI service
// is consulted; on failure the intent becomes the display name. A display
// name typed by the user is never replaced. Generate never fails.
func (g *Generator) Generate(ctx context.Context, group grouping.FieldGroup, formType string, doc *extraction.Document) schema.Item {
	item := Skeleton(group, formType)
	if group.Intent == "" {
		return item
	}

	resp, err := g.ai.GenerateAttributes(ctx, ai.AttributesRequest{
		Intent:     group.Intent,
		FieldType:  string(group.FieldType()),
		PDFContext: doc.Context(group.Fields),
		GroupType:  string(group.GroupType),
	})
	if err != nil {
		log.Printf("attribute generation failed for %q: %v", item.UniqueID, err)
		if group.DisplayName == "" {
			item.DisplayAttributes.DisplayName = group.Intent
		}
		return item
	}

	item = Merge(item, resp)
	if group.DisplayName != "" {
		item.DisplayAttributes.DisplayName = group.DisplayName
	} else if item.DisplayAttributes.DisplayName == "" {
		item.DisplayAttributes.DisplayName = group.Intent
	}
	return item
}

// GenerateCheckbox builds a checkbox item from per-field intents, requesting
// one label per described checkbox. Failed or skipped checkboxes fall back to
// their intent, then to the raw field name. databaseStored always stays the
// raw field name.
func (g *Generator) GenerateCheckbox(ctx context.Context, group grouping.FieldGroup, intents []grouping.CheckboxIntent, formType string) schema.Item {
	item := Skeleton(group, formType)
	if item.DisplayAttributes.DisplayName == "" {
		item.DisplayAttributes.DisplayName = group.Intent
	}
	opts := item.DisplayAttributes.CheckboxOptions
	if opts == nil || len(intents) == 0 {
		return item
	}

	type label struct {
		field string
		name  string
	}

	p := pool.NewWithResults[label]().WithMaxGoroutines(g.concurrency)
	for _, ci := range intents {
		ci := ci
		if strings.TrimSpace(ci.Intent) == "" {
			continue
		}
		p.Go(func() label {
			resp, err := g.ai.GenerateCheckboxLabel(ctx, ai.CheckboxLabelRequest{
				FieldName: ci.Field.Name,
				Intent:    ci.Intent,
				FormType:  formType,
			})
			if err != nil {
				log.Printf("checkbox label failed for %q: %v", ci.Field.Name, err)
				return label{field: ci.Field.Name, name: ci.Intent}
			}
			return label{field: ci.Field.Name, name: resp.DisplayName}
		})
	}

	labels := make(map[string]string)
	for _, l := range p.Wait() {
		labels[l.field] = l.name
	}
	for i := range opts.Options {
		if name, ok := labels[opts.Options[i].DatabaseStored]; ok && name != "" {
			opts.Options[i].DisplayName = name
		}
	}
	return item
}
