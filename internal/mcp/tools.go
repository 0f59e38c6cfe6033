package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/afero"

	"github.com/a3tai/pdf-schema-builder/internal/descriptions"
	"github.com/a3tai/pdf-schema-builder/internal/editor"
	apperrors "github.com/a3tai/pdf-schema-builder/internal/errors"
	"github.com/a3tai/pdf-schema-builder/internal/grouping"
	"github.com/a3tai/pdf-schema-builder/internal/pdf"
	"github.com/a3tai/pdf-schema-builder/internal/project"
	"github.com/a3tai/pdf-schema-builder/internal/schema"
)

const exportFilePerm = 0o644

func projectIDParam() mcp.ToolOption {
	return mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project id from project_create or project_list"),
	)
}

func tool(name string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{
		mcp.WithDescription(descriptions.GetToolDescription(name)),
	}, opts...)...)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Projects
	s.mcpServer.AddTool(tool("project_create",
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name of the project")),
		mcp.WithString("form_type", mcp.Description("Form type, defaults to the name")),
	), s.handleProjectCreate)
	s.mcpServer.AddTool(tool("project_list"), s.handleProjectList)
	s.mcpServer.AddTool(tool("project_rename",
		projectIDParam(),
		mcp.WithString("name", mcp.Required(), mcp.Description("New display name")),
	), s.handleProjectRename)
	s.mcpServer.AddTool(tool("project_delete", projectIDParam()), s.handleProjectDelete)

	// PDF
	s.mcpServer.AddTool(tool("pdf_upload",
		projectIDParam(),
		mcp.WithString("path", mcp.Description("Path of the PDF inside the upload directory")),
		mcp.WithString("data", mcp.Description("Base64 encoded PDF, used when path is empty")),
		mcp.WithString("content_type", mcp.Description("Content type of data, sniffed when empty")),
	), s.handlePDFUpload)
	s.mcpServer.AddTool(tool("pdf_fields",
		projectIDParam(),
		mcp.WithNumber("page", mcp.Description("Only fields on this 1-based page")),
	), s.handlePDFFields)
	s.mcpServer.AddTool(tool("pdf_view",
		projectIDParam(),
		mcp.WithNumber("page", mcp.Description("Page to show")),
		mcp.WithNumber("zoom", mcp.Description("Zoom steps of 10%, negative zooms out")),
	), s.handlePDFView)
	s.mcpServer.AddTool(tool("field_click",
		projectIDParam(),
		mcp.WithString("field", mcp.Required(), mcp.Description("Fully qualified field name")),
	), s.handleFieldClick)

	// Grouping
	s.mcpServer.AddTool(tool("group_options",
		projectIDParam(),
		mcp.WithArray("fields", mcp.Description("Replace the selection first"), mcp.Items(map[string]any{"type": "string"})),
	), s.handleGroupOptions)
	s.mcpServer.AddTool(tool("group_create",
		projectIDParam(),
		mcp.WithString("group_type", mcp.Required(),
			mcp.Description("text-continuation, text-same-value, checkbox or radio"),
			mcp.Enum(string(grouping.TextContinuation), string(grouping.TextSameValue),
				string(grouping.Checkbox), string(grouping.Radio)),
		),
		mcp.WithArray("fields", mcp.Description("Replace the selection first"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("display_name", mcp.Description("Display name; wins over the AI proposal")),
		mcp.WithString("intent", mcp.Description("What the fields collect")),
		mcp.WithArray("intents", mcp.Description("Checkbox groups: one intent per checkbox in selection order"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.handleGroupCreate)

	// Editor
	s.mcpServer.AddTool(tool("item_edit",
		projectIDParam(),
		mcp.WithString("unique_id", mcp.Required(), mcp.Description("Item to open")),
	), s.handleItemEdit)
	s.mcpServer.AddTool(tool("item_update",
		projectIDParam(),
		mcp.WithString("unique_id", mcp.Description("New unique_id")),
		mcp.WithObject("display_attributes", mcp.Description("Display attributes to replace")),
	), s.handleItemUpdate)
	s.mcpServer.AddTool(tool("item_save",
		projectIDParam(),
		mcp.WithBoolean("keep_open", mcp.Description("Keep editing after the save")),
	), s.handleItemSave)
	s.mcpServer.AddTool(tool("item_cancel", projectIDParam()), s.handleItemCancel)
	s.mcpServer.AddTool(tool("item_delete",
		projectIDParam(),
		mcp.WithString("unique_id", mcp.Required(), mcp.Description("Item to delete")),
	), s.handleItemDelete)
	s.mcpServer.AddTool(tool("item_move",
		projectIDParam(),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Current 0-based index")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Target 0-based index")),
	), s.handleItemMove)
	s.mcpServer.AddTool(tool("link_begin",
		projectIDParam(),
		mcp.WithString("kind", mcp.Required(), mcp.Description("text, checkbox or radio"),
			mcp.Enum(string(editor.LinkText), string(editor.LinkCheckbox), string(editor.LinkRadio))),
		mcp.WithString("path", mcp.Description("Checkbox databaseStored value or radio display option")),
	), s.handleLinkBegin)
	s.mcpServer.AddTool(tool("visibility_add",
		projectIDParam(),
		mcp.WithString("operator", mcp.Required(), mcp.Description("Comparison operator")),
		mcp.WithString("field", mcp.Description("unique_id of the observed item; set later by visibility_begin")),
		mcp.WithString("value", mcp.Description("Compared value")),
	), s.handleVisibilityAdd)
	s.mcpServer.AddTool(tool("visibility_remove",
		projectIDParam(),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Condition index")),
	), s.handleVisibilityRemove)
	s.mcpServer.AddTool(tool("visibility_begin",
		projectIDParam(),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Condition index")),
	), s.handleVisibilityBegin)
	s.mcpServer.AddTool(tool("editor_state", projectIDParam()), s.handleEditorState)

	// AI
	s.mcpServer.AddTool(tool("schema_organize", projectIDParam()), s.handleSchemaOrganize)
	s.mcpServer.AddTool(tool("schema_beautify",
		projectIDParam(),
		mcp.WithString("action", mcp.Description("start (default), status or close"),
			mcp.Enum("start", "status", "close")),
		mcp.WithString("block", mcp.Description("Block to refine, required to start")),
	), s.handleSchemaBeautify)

	// Export
	s.mcpServer.AddTool(tool("schema_export",
		projectIDParam(),
		mcp.WithString("format", mcp.Description("ts (default), json or yaml")),
		mcp.WithBoolean("write", mcp.Description("Also write the file to the export directory")),
	), s.handleSchemaExport)
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) page(ctx context.Context, request mcp.CallToolRequest) (*project.Page, error) {
	id, err := request.RequireString("project_id")
	if err != nil {
		return nil, err
	}
	return s.projects.Open(ctx, id)
}

// Project handlers

func (s *Server) handleProjectCreate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult(err), nil
	}
	p, err := s.projects.Create(name, stringArg(request, "form_type"))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created project %s\nName: %s\nForm type: %s\n", p.ID, p.Name, p.FormType)), nil
}

func (s *Server) handleProjectList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatProjects(s.projects.List())), nil
}

func (s *Server) handleProjectRename(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("project_id")
	if err != nil {
		return errorResult(err), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult(err), nil
	}
	if err := s.projects.Rename(id, name); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Renamed project %s to %s", id, name)), nil
}

func (s *Server) handleProjectDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("project_id")
	if err != nil {
		return errorResult(err), nil
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return errorResult(err), nil
	}
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.Close()
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	return mcp.NewToolResultText(fmt.Sprintf("Deleted project %s", id)), nil
}

// PDF handlers

func (s *Server) handlePDFUpload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}

	var upload pdf.Upload
	if path := stringArg(request, "path"); path != "" {
		upload, err = s.uploads.ReadFile(path)
		if err != nil {
			return errorResult(err), nil
		}
	} else {
		encoded := stringArg(request, "data")
		if encoded == "" {
			return errorResult(errors.New("either path or data is required")), nil
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return errorResult(fmt.Errorf("data is not valid base64: %w", err)), nil
		}
		contentType := stringArg(request, "content_type")
		if contentType == "" {
			contentType = pdf.DetectContentType(data)
		}
		upload = pdf.Upload{Name: "upload.pdf", ContentType: contentType, Data: data}
	}

	tier, err := page.Upload(ctx, upload.ContentType, upload.Data)
	if err != nil {
		return errorResult(err), nil
	}
	doc := page.Document()
	text := fmt.Sprintf("Uploaded %s to project %s\n", upload.Name, page.Project().ID)
	text += fmt.Sprintf("Size: %d bytes (stored in %s)\n", len(upload.Data), tier)
	text += fmt.Sprintf("Pages: %d\n", doc.NumPages)
	text += fmt.Sprintf("Form fields: %d\n", len(doc.Fields))
	if len(doc.Fields) == 0 {
		text += "\n⚠️  WARNING: This PDF has no fillable form fields.\n"
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handlePDFFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	n, err := intArg(request, "page", 0)
	if err != nil {
		return errorResult(err), nil
	}
	doc := page.Document()
	if doc == nil {
		return errorResult(errors.New("no PDF uploaded for this project")), nil
	}
	fields := page.Fields()
	if n > 0 {
		fields = doc.FieldsOnPage(n)
	}
	return mcp.NewToolResultText(formatFields(fields, page.Selection())), nil
}

func (s *Server) handlePDFView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	n, err := intArg(request, "page", 0)
	if err != nil {
		return errorResult(err), nil
	}
	zoom, err := intArg(request, "zoom", 0)
	if err != nil {
		return errorResult(err), nil
	}
	if n > 0 {
		page.Navigate(n)
	}
	return jsonResult(page.Zoom(zoom))
}

func (s *Server) handleFieldClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	field, err := request.RequireString("field")
	if err != nil {
		return errorResult(err), nil
	}
	res, err := page.ClickField(field)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(res)
}

// Grouping handlers

func (s *Server) selectFromArgs(page *project.Page, request mcp.CallToolRequest) error {
	fields, err := stringsArg(request, "fields")
	if err != nil || fields == nil {
		return err
	}
	return page.SelectFields(fields)
}

func (s *Server) handleGroupOptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	if err := s.selectFromArgs(page, request); err != nil {
		return errorResult(err), nil
	}
	opts := page.GroupOptions()
	if opts == nil {
		opts = []grouping.GroupType{}
	}
	return jsonResult(map[string]any{"selection": page.Selection(), "group_types": opts})
}

func (s *Server) handleGroupCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	groupType, err := request.RequireString("group_type")
	if err != nil {
		return errorResult(err), nil
	}
	if err := s.selectFromArgs(page, request); err != nil {
		return errorResult(err), nil
	}
	intents, err := stringsArg(request, "intents")
	if err != nil {
		return errorResult(err), nil
	}

	var item schema.Item
	if grouping.GroupType(groupType) == grouping.Checkbox && intents != nil {
		item, err = page.GroupCheckboxes(ctx, stringArg(request, "display_name"), intents)
	} else {
		item, err = page.GroupSelection(ctx, grouping.GroupType(groupType),
			stringArg(request, "display_name"), stringArg(request, "intent"))
	}
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(item)
}

// Editor handlers

func (s *Server) handleItemEdit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	id, err := request.RequireString("unique_id")
	if err != nil {
		return errorResult(err), nil
	}
	if err := page.Editor().Edit(id); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(page.Editor().State())
}

func (s *Server) handleItemUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	patch, err := objectArg(request, "display_attributes")
	if err != nil {
		return errorResult(err), nil
	}

	st := page.Editor().State()
	if st.Draft == nil {
		return errorResult(editor.ErrNotEditing), nil
	}
	next := *st.Draft
	if err := patchItem(&next, stringArg(request, "unique_id"), patch); err != nil {
		return errorResult(err), nil
	}
	if err := page.Editor().Update(func(it *schema.Item) { *it = next }); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(next)
}

// patchItem replaces the display attributes named by patch, keeping the rest
func patchItem(item *schema.Item, uniqueID string, patch map[string]any) error {
	if uniqueID != "" {
		item.UniqueID = uniqueID
	}
	if len(patch) == 0 {
		return nil
	}
	raw, err := json.Marshal(item.DisplayAttributes)
	if err != nil {
		return err
	}
	merged := make(map[string]any)
	if err := json.Unmarshal(raw, &merged); err != nil {
		return err
	}
	for k, v := range patch {
		merged[k] = v
	}
	raw, err = json.Marshal(merged)
	if err != nil {
		return err
	}
	var da schema.DisplayAttributes
	if err := json.Unmarshal(raw, &da); err != nil {
		return apperrors.Validationf("invalid display_attributes: %v", err)
	}
	item.DisplayAttributes = da
	return nil
}

func (s *Server) handleItemSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	if err := page.Editor().Save(boolArg(request, "keep_open")); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(formatSchema(page.Schema())), nil
}

func (s *Server) handleItemCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	page.Editor().Cancel()
	return jsonResult(page.Editor().State())
}

func (s *Server) handleItemDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	id, err := request.RequireString("unique_id")
	if err != nil {
		return errorResult(err), nil
	}
	if err := page.Editor().Delete(id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(formatSchema(page.Schema())), nil
}

func (s *Server) handleItemMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	from, err := requireIntArg(request, "from")
	if err != nil {
		return errorResult(err), nil
	}
	to, err := requireIntArg(request, "to")
	if err != nil {
		return errorResult(err), nil
	}
	if err := page.Editor().Move(from, to); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(formatSchema(page.Schema())), nil
}

func (s *Server) handleLinkBegin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	kind, err := request.RequireString("kind")
	if err != nil {
		return errorResult(err), nil
	}
	if err := page.Editor().BeginLinking(editor.LinkKind(kind), stringArg(request, "path")); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("Waiting for a field_click to link"), nil
}

func (s *Server) handleVisibilityAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	op, err := request.RequireString("operator")
	if err != nil {
		return errorResult(err), nil
	}
	index, err := page.Editor().AddCondition(schema.Condition{
		Field:    stringArg(request, "field"),
		Operator: schema.Operator(op),
		Value:    stringArg(request, "value"),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]int{"index": index})
}

func (s *Server) handleVisibilityRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	index, err := requireIntArg(request, "index")
	if err != nil {
		return errorResult(err), nil
	}
	if err := page.Editor().RemoveCondition(index); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(page.Editor().State())
}

func (s *Server) handleVisibilityBegin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	index, err := requireIntArg(request, "index")
	if err != nil {
		return errorResult(err), nil
	}
	if err := page.Editor().BeginVisibilitySelection(index); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("Waiting for a field_click naming the observed item"), nil
}

// EditorSnapshot is the editor_state result
type EditorSnapshot struct {
	State     editor.State  `json:"state"`
	Tab       project.Tab   `json:"tab"`
	Selection []string      `json:"selection"`
	Schema    schema.Schema `json:"schema"`
}

func (s *Server) handleEditorState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(EditorSnapshot{
		State:     page.Editor().State(),
		Tab:       page.Tab(),
		Selection: page.Selection(),
		Schema:    page.Schema(),
	})
}

// AI handlers

func (s *Server) handleSchemaOrganize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	blocks, err := page.Editor().Organize(ctx, page.Project().FormType)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(formatBlocks(blocks)), nil
}

// BeautifyStatus is the schema_beautify result
type BeautifyStatus struct {
	Block      string               `json:"block"`
	Status     editor.SessionStatus `json:"status"`
	Applied    bool                 `json:"applied"`
	Iterations []editor.Iteration   `json:"iterations"`
	Error      string               `json:"error,omitempty"`
}

func beautifyStatus(sess *editor.Session) BeautifyStatus {
	st := BeautifyStatus{
		Block:      sess.Block(),
		Status:     sess.Status(),
		Applied:    sess.Applied(),
		Iterations: sess.Iterations(),
	}
	select {
	case <-sess.Done():
		if err := sess.Wait(); err != nil {
			st.Error = err.Error()
		}
	default:
	}
	return st
}

func (s *Server) handleSchemaBeautify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	id := page.Project().ID

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.sessions[id]

	switch action := stringArg(request, "action"); action {
	case "", "start":
		block := stringArg(request, "block")
		if block == "" {
			return errorResult(errors.New("required argument \"block\" not found")), nil
		}
		if current != nil && current.Status() == editor.SessionRunning {
			return errorResult(fmt.Errorf("a beautify session for block %q is still running", current.Block())), nil
		}
		// the session outlives this request
		sess := page.Editor().Beautify(context.Background(), block, page.Project().FormType, s.logProgress(id))
		s.sessions[id] = sess
		return jsonResult(beautifyStatus(sess))

	case "status":
		if current == nil {
			return errorResult(errors.New("no beautify session for this project")), nil
		}
		return jsonResult(beautifyStatus(current))

	case "close":
		if current == nil {
			return errorResult(errors.New("no beautify session for this project")), nil
		}
		current.Close()
		<-current.Done()
		delete(s.sessions, id)
		return jsonResult(beautifyStatus(current))

	default:
		return errorResult(fmt.Errorf("unknown action %q", action)), nil
	}
}

func (s *Server) logProgress(projectID string) func(editor.Progress) {
	if !s.config.IsDebug() {
		return nil
	}
	return func(p editor.Progress) {
		log.Printf("beautify %s: %s iteration %d/%d (%s)", projectID, p.Event, p.Iteration, p.Limit, p.Status)
	}
}

// Export handlers

func (s *Server) handleSchemaExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.page(ctx, request)
	if err != nil {
		return errorResult(err), nil
	}
	requested := stringArg(request, "format")
	if requested == "" {
		requested = string(schema.FormatTypeScript)
	}
	format, err := schema.ParseFormat(requested)
	if err != nil {
		return errorResult(err), nil
	}
	if err := page.SetTab(project.TabExport); err != nil {
		return errorResult(err), nil
	}

	name, out, err := page.Export(format)
	if err != nil {
		return errorResult(err), nil
	}
	if !boolArg(request, "write") {
		return mcp.NewToolResultText(out), nil
	}

	if s.exports == nil {
		return errorResult(errors.New("no export directory configured")), nil
	}
	path, err := s.exports.Join(name)
	if err != nil {
		return errorResult(err), nil
	}
	if err := s.exportFS.MkdirAll(s.config.ExportDirectory, 0o750); err != nil {
		return errorResult(fmt.Errorf("failed to create export directory: %w", err)), nil
	}
	if err := afero.WriteFile(s.exportFS, path, []byte(out), exportFilePerm); err != nil {
		return errorResult(fmt.Errorf("failed to write export: %w", err)), nil
	}
	log.Printf("exported %s schema to %s", page.Project().ID, path)
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %s (%d bytes)", path, len(out))), nil
}
