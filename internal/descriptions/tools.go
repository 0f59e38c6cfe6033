package descriptions

// Tool descriptions with practical examples and workflows

const (
	// Project Tools
	ProjectCreateDescription = `Create a schema-building project for one PDF form type.

**When to use:** Starting work on a new form (an appraisal, a W-9, a lease application).

**Examples:**
• "Create a project named 'Appraisal 2024' for form type 'appraisal'"
• "Start a project for the w9 form"

**Common workflows:**
1. New form: project_create → pdf_upload → pdf_fields → group_create → item_save → schema_export

**Best practices:** The form type names the exported constant and file, keep it short and identifier-like.`

	ProjectListDescription = `List every project with its id, name and form type.`

	ProjectRenameDescription = `Rename a project. The form type and stored data are unchanged.`

	ProjectDeleteDescription = `Delete a project together with its stored PDF and schema. This cannot be undone.`

	// PDF Tools
	PDFUploadDescription = `Upload the PDF form of a project and extract its fillable fields.

**When to use:** After creating a project, or to replace a project's PDF.

**Why it's useful:** Every schema item is bound to the PDF's AcroForm fields; the upload parses field names, types, positions and page sizes in one step.

**Examples:**
• Upload from disk: "Upload /forms/appraisal.pdf to project p-123"
• Upload inline: pass base64 'data' with content_type 'application/pdf'

**Best practices:** Only application/pdf is accepted and uploads are capped by the configured size limit. Paths must be inside the configured upload directory.`

	PDFFieldsDescription = `List the extracted form fields of a project's PDF with type, page, position and current value.`

	PDFViewDescription = `Show the visible page of a project's PDF with field hit-targets in pixels at the current zoom.

**When to use:** To see which fields sit on a page before selecting or linking them.

**Examples:**
• "Go to page 2" (page: 2)
• "Zoom in twice" (zoom: 2), "zoom out" (zoom: -1)

**Best practices:** Pages are clamped to the document; zoom moves in steps of 10% and never drops below 10%.`

	FieldClickDescription = `Click a PDF field by name.

**When to use:** Selecting fields to group, or answering the editor when it waits for a field (link_begin, visibility_begin).

**Why it's useful:** The same gesture toggles the selection when the editor is idle or editing, and binds the field when the editor is linking or choosing a visibility field.`

	// Grouping Tools
	GroupOptionsDescription = `List the group types allowed for the current selection.

Text fields allow 'text-continuation' (one value flowing across fields) and 'text-same-value' (the same value written to every field); checkboxes allow 'checkbox'; radio widgets allow 'radio'. Mixed selections allow nothing.`

	GroupCreateDescription = `Turn the selected fields into a schema item draft and open it in the editor.

**When to use:** After selecting the fields that belong to one question.

**Why it's useful:** The deterministic bindings (form fields, linked fields, options) are built from the group type; the AI service proposes display name, description, width and placeholder from your intent and the page text.

**Examples:**
• Address lines: fields ["address.line1","address.line2"], group_type "text-continuation", intent "Full property address"
• Amenities: group_type "checkbox", display_name "Amenities", intents ["Has a pool","Has a garage"] (one per checkbox)

**Best practices:** Give either a display name or an intent. A display name you type wins over the AI's proposal. Checkbox intents are matched to checkboxes in selection order; an empty intent keeps the raw field name.`

	// Editor Tools
	ItemEditDescription = `Open a saved schema item in the editor by unique_id.`

	ItemUpdateDescription = `Change the open draft.

Pass display_attributes as a JSON object; its keys replace the draft's (for example {"display_name":"Owner","width":"50","isRequired":true}). unique_id renames the item on save.`

	ItemSaveDescription = `Validate and save the open draft. Display name and order are required. Set keep_open to continue editing after the save.`

	ItemCancelDescription = `Discard the open draft, or leave linking and visibility selection without discarding it.`

	ItemDeleteDescription = `Delete a schema item by unique_id; the remaining items are renumbered.`

	ItemMoveDescription = `Move the item at index 'from' to index 'to' (0-based) and renumber every order.`

	LinkBeginDescription = `Save the draft and wait for a field_click to bind another PDF field to it.

**Examples:**
• Extra text field: kind "text"
• Second widget for a checkbox option: kind "checkbox", path = the option's databaseStored value
• Radio widget for an option: kind "radio", path = the display option

**Best practices:** The next field_click completes the link and returns the editor to editing.`

	VisibilityAddDescription = `Add a visibility condition to the draft and return its index. Operators: equals, not_equals, is_checked, is_not_checked, is_empty, is_not_empty.`

	VisibilityRemoveDescription = `Remove the visibility condition at index from the draft.`

	VisibilityBeginDescription = `Wait for a field_click naming the schema item a visibility condition observes. The clicked field must back a saved item.`

	EditorStateDescription = `Show the editor mode, the open draft, the selection and the schema item list of a project.`

	// AI Tools
	SchemaOrganizeDescription = `Ask the AI service to assign every item to a block. The schema is replaced only when the service succeeds.`

	SchemaBeautifyDescription = `Refine the layout of one block with iterative AI passes.

**When to use:** After organizing, to tune widths, ordering and labels of a block.

**How it works:** action "start" opens a streamed session; each iteration takes a screenshot, analyses it and proposes changes. The final schema is applied once, when the session completes. action "status" reports iterations so far; action "close" abandons the session without applying anything.

**Best practices:** Beautify one block at a time and check status until it reports complete.`

	// Export Tools
	SchemaExportDescription = `Export the project schema as TypeScript, JSON or YAML.

**Examples:**
• "Export appraisal as TypeScript" → export const appraisal_schema = [...];
• "Write the JSON export to disk" (write: true) → {formType}_schema.json in the export directory

**Best practices:** Legacy operation fields are stripped from every export.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"project_create":    ProjectCreateDescription,
	"project_list":      ProjectListDescription,
	"project_rename":    ProjectRenameDescription,
	"project_delete":    ProjectDeleteDescription,
	"pdf_upload":        PDFUploadDescription,
	"pdf_fields":        PDFFieldsDescription,
	"pdf_view":          PDFViewDescription,
	"field_click":       FieldClickDescription,
	"group_options":     GroupOptionsDescription,
	"group_create":      GroupCreateDescription,
	"item_edit":         ItemEditDescription,
	"item_update":       ItemUpdateDescription,
	"item_save":         ItemSaveDescription,
	"item_cancel":       ItemCancelDescription,
	"item_delete":       ItemDeleteDescription,
	"item_move":         ItemMoveDescription,
	"link_begin":        LinkBeginDescription,
	"visibility_add":    VisibilityAddDescription,
	"visibility_remove": VisibilityRemoveDescription,
	"visibility_begin":  VisibilityBeginDescription,
	"editor_state":      EditorStateDescription,
	"schema_organize":   SchemaOrganizeDescription,
	"schema_beautify":   SchemaBeautifyDescription,
	"schema_export":     SchemaExportDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
