package mcp

import (
	"fmt"

	"github.com/a3tai/pdf-schema-builder/internal/pdf/extraction"
	"github.com/a3tai/pdf-schema-builder/internal/registry"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

// Formatting methods

func formatProjects(projects []registry.Project) string {
	if len(projects) == 0 {
		return "No projects yet. Use project_create to start one."
	}
	text := fmt.Sprintf("Found %d project(s)\n\n", len(projects))
	for i, p := range projects {
		text += fmt.Sprintf("%d. %s\n", i+1, p.Name)
		text += fmt.Sprintf("   ID: %s\n", p.ID)
		text += fmt.Sprintf("   Form type: %s\n", p.FormType)
	}
	return text
}

func formatFields(fields []extraction.Field, selected []string) string {
	if len(fields) == 0 {
		return "No form fields found"
	}
	isSelected := make(map[string]bool, len(selected))
	for _, n := range selected {
		isSelected[n] = true
	}

	text := fmt.Sprintf("Form fields (%d)\n\n", len(fields))
	for i, f := range fields {
		mark := " "
		if isSelected[f.Name] {
			mark = "*"
		}
		text += fmt.Sprintf("%s %d. %s [%s] page %d at (%.0f, %.0f) %.0fx%.0f",
			mark, i+1, f.Name, f.Type, f.Page, f.Rect[0], f.Rect[1], f.Rect.Width(), f.Rect.Height())
		if f.Required {
			text += " required"
		}
		if f.ReadOnly {
			text += " read-only"
		}
		if f.Value != nil && f.Value != "" {
			text += fmt.Sprintf(" value=%v", f.Value)
		}
		if len(f.Options) > 0 {
			text += fmt.Sprintf(" options=%v", f.Options)
		}
		text += "\n"
	}
	if len(selected) > 0 {
		text += fmt.Sprintf("\nSelected: %v\n", selected)
	}
	return text
}

func formatSchema(s schema.Schema) string {
	if len(s) == 0 {
		return "Schema is empty"
	}
	text := fmt.Sprintf("Schema items (%d)\n", len(s))
	for _, it := range s {
		da := it.DisplayAttributes
		text += fmt.Sprintf("%d. %s (%s, %s)", da.Order, da.DisplayName, it.UniqueID, da.InputType)
		if da.Block != "" {
			text += fmt.Sprintf(" block=%s", da.Block)
		}
		text += "\n"
	}
	return text
}

func formatBlocks(blocks []schema.BlockSummary) string {
	if len(blocks) == 0 {
		return "Schema organized; no blocks assigned"
	}
	text := fmt.Sprintf("Schema organized into %d block(s)\n", len(blocks))
	for _, b := range blocks {
		text += fmt.Sprintf("• %s (%d items)\n", b.Title, b.ItemCount)
	}
	return text
}
