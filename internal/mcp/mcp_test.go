package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/forward/internal/config"
	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/ops"
)

// testSetup creates a temporary database, config, and dispatcher for testing.
// The dispatcher runs on the keyword heuristic only.
func testSetup(t *testing.T) (*Handlers, *ops.Dispatcher) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	d := ops.NewDispatcher(database, nil, nil, nil)
	t.Cleanup(d.Flush)

	return NewHandlers(database, cfg, d), d
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultPayload unmarshals a success result into a generic map.
func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("content is not TextContent")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	return payload
}

// captureOne captures one line and returns the new item's ID.
func captureOne(t *testing.T, h *Handlers, text string) string {
	t.Helper()

	result, err := h.HandleCapture(context.Background(), makeRequest(map[string]any{"text": text}))
	if err != nil {
		t.Fatalf("HandleCapture returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("HandleCapture failed: %v", extractErrorMessage(result))
	}
	payload := resultPayload(t, result)
	items := payload["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("captured %d items, want 1", len(items))
	}
	return items[0].(map[string]any)["id"].(string)
}

func TestHandleCapture(t *testing.T) {
	h, d := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
		wantItems int
	}{
		{
			name:      "single line",
			args:      map[string]any{"text": "buy paint for the hallway"},
			wantItems: 1,
		},
		{
			name:      "multi line split",
			args:      map[string]any{"text": "first thing\nsecond thing"},
			wantItems: 2,
		},
		{
			name:      "short text discarded",
			args:      map[string]any{"text": "a"},
			wantItems: 0,
		},
		{
			name:      "unknown project id",
			args:      map[string]any{"text": "tied to nothing", "project_id": "01XX00000000000000000000AA"},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCapture(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			if result.IsError {
				t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
			}

			payload := resultPayload(t, result)
			items, _ := payload["items"].([]any)
			if len(items) != tt.wantItems {
				t.Errorf("captured %d items, want %d", len(items), tt.wantItems)
			}
		})
	}

	d.Flush()
}

func TestHandleListAndGet(t *testing.T) {
	h, d := testSetup(t)
	ctx := context.Background()

	id := captureOne(t, h, "remind me to water the plants")
	d.Flush()

	listResult, err := h.HandleList(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleList returned error: %v", err)
	}
	if listResult.IsError {
		t.Fatalf("HandleList failed: %v", extractErrorMessage(listResult))
	}
	payload := resultPayload(t, listResult)
	if items := payload["items"].([]any); len(items) != 1 {
		t.Errorf("list returned %d items, want 1", len(items))
	}

	getResult, err := h.HandleGet(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("HandleGet returned error: %v", err)
	}
	if getResult.IsError {
		t.Fatalf("HandleGet failed: %v", extractErrorMessage(getResult))
	}
	got := resultPayload(t, getResult)
	if got["ai_category"] != "reminder" {
		t.Errorf("ai_category = %v, want reminder after background classification", got["ai_category"])
	}
	if got["category"] != "uncategorised" {
		t.Errorf("category = %v, want uncategorised until confirmed", got["category"])
	}

	missing, _ := h.HandleGet(ctx, makeRequest(map[string]any{"id": "01XX00000000000000000000AA"}))
	assertErrorCode(t, missing, "NOT_FOUND")

	badStatus, _ := h.HandleList(ctx, makeRequest(map[string]any{"statuses": []any{"bogus"}}))
	assertErrorCode(t, badStatus, "INVALID_REQUEST")
}

func TestHandleItemActions(t *testing.T) {
	h, d := testSetup(t)
	ctx := context.Background()

	id := captureOne(t, h, "sort out the filing cabinet")
	d.Flush()

	confirmResult, _ := h.HandleConfirm(ctx, makeRequest(map[string]any{"id": id}))
	if confirmResult.IsError {
		t.Fatalf("HandleConfirm failed: %v", extractErrorMessage(confirmResult))
	}
	payload := resultPayload(t, confirmResult)
	itemObj := payload["item"].(map[string]any)
	if itemObj["confirmed"] != true {
		t.Errorf("confirmed = %v, want true", itemObj["confirmed"])
	}

	badCat, _ := h.HandleSetCategory(ctx, makeRequest(map[string]any{"id": id, "category": "banana"}))
	assertErrorCode(t, badCat, "INVALID_REQUEST")

	setCat, _ := h.HandleSetCategory(ctx, makeRequest(map[string]any{"id": id, "category": "spark"}))
	if setCat.IsError {
		t.Fatalf("HandleSetCategory failed: %v", extractErrorMessage(setCat))
	}

	recur, _ := h.HandleRecur(ctx, makeRequest(map[string]any{"id": id}))
	if recur.IsError {
		t.Fatalf("HandleRecur failed: %v", extractErrorMessage(recur))
	}
	payload = resultPayload(t, recur)
	if payload["item"].(map[string]any)["recurring"] != "daily" {
		t.Errorf("recurring = %v, want daily", payload["item"].(map[string]any)["recurring"])
	}

	complete, _ := h.HandleComplete(ctx, makeRequest(map[string]any{"id": id}))
	if complete.IsError {
		t.Fatalf("HandleComplete failed: %v", extractErrorMessage(complete))
	}

	archive, _ := h.HandleArchive(ctx, makeRequest(map[string]any{"id": id}))
	if archive.IsError {
		t.Fatalf("HandleArchive failed: %v", extractErrorMessage(archive))
	}
	again, _ := h.HandleArchive(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, again, "CONFLICT")

	restore, _ := h.HandleRestore(ctx, makeRequest(map[string]any{"id": id}))
	if restore.IsError {
		t.Fatalf("HandleRestore failed: %v", extractErrorMessage(restore))
	}
}

func TestHandleProjectLifecycle(t *testing.T) {
	h, _ := testSetup(t)
	ctx := context.Background()

	createResult, _ := h.HandleProjectCreate(ctx, makeRequest(map[string]any{
		"name":     "Reading Habit",
		"vision":   "an evening hour that belongs to books",
		"category": "learning",
	}))
	if createResult.IsError {
		t.Fatalf("HandleProjectCreate failed: %v", extractErrorMessage(createResult))
	}
	created := resultPayload(t, createResult)["project"].(map[string]any)
	projectID := created["id"].(string)
	if created["phase"] != "curious" {
		t.Errorf("phase = %v, want the learning track's first phase", created["phase"])
	}

	badPhase, _ := h.HandleProjectCreate(ctx, makeRequest(map[string]any{
		"name":     "Bad Phase",
		"category": "life",
		"phase":    "procurement",
	}))
	assertErrorCode(t, badPhase, "INVALID_REQUEST")

	updateResult, _ := h.HandleProjectUpdate(ctx, makeRequest(map[string]any{
		"id":          projectID,
		"phase":       "exploring",
		"next_action": "pick the first three books",
	}))
	if updateResult.IsError {
		t.Fatalf("HandleProjectUpdate failed: %v", extractErrorMessage(updateResult))
	}

	getResult, _ := h.HandleProjectGet(ctx, makeRequest(map[string]any{"id": projectID}))
	if getResult.IsError {
		t.Fatalf("HandleProjectGet failed: %v", extractErrorMessage(getResult))
	}
	got := resultPayload(t, getResult)
	if got["vision_locked"] != false {
		t.Errorf("vision_locked = %v, want false right after creation", got["vision_locked"])
	}

	listResult, _ := h.HandleProjectList(ctx, makeRequest(map[string]any{}))
	if projects := resultPayload(t, listResult)["projects"].([]any); len(projects) != 1 {
		t.Errorf("project list = %d entries, want 1", len(projects))
	}

	archiveResult, _ := h.HandleProjectArchive(ctx, makeRequest(map[string]any{"id": projectID}))
	if archiveResult.IsError {
		t.Fatalf("HandleProjectArchive failed: %v", extractErrorMessage(archiveResult))
	}
	restoreResult, _ := h.HandleProjectRestore(ctx, makeRequest(map[string]any{"id": projectID}))
	if restoreResult.IsError {
		t.Fatalf("HandleProjectRestore failed: %v", extractErrorMessage(restoreResult))
	}

	noConfirm, _ := h.HandleProjectDelete(ctx, makeRequest(map[string]any{"id": projectID}))
	assertErrorCode(t, noConfirm, "CONFIRM_REQUIRED")

	deleted, _ := h.HandleProjectDelete(ctx, makeRequest(map[string]any{"id": projectID, "confirm": true}))
	if deleted.IsError {
		t.Fatalf("HandleProjectDelete failed: %v", extractErrorMessage(deleted))
	}
}

func TestHandlePromote(t *testing.T) {
	h, d := testSetup(t)
	ctx := context.Background()

	id := captureOne(t, h, "what if the spare room became a workshop")
	d.Flush()

	result, _ := h.HandlePromote(ctx, makeRequest(map[string]any{
		"item_id":  id,
		"name":     "Workshop",
		"category": "life",
	}))
	if result.IsError {
		t.Fatalf("HandlePromote failed: %v", extractErrorMessage(result))
	}
	payload := resultPayload(t, result)
	if payload["project"].(map[string]any)["name"] != "Workshop" {
		t.Errorf("project name = %v, want Workshop", payload["project"].(map[string]any)["name"])
	}
	if payload["item"].(map[string]any)["status"] != "archived" {
		t.Errorf("item status = %v, want archived", payload["item"].(map[string]any)["status"])
	}
}

func TestHandleHelpStart(t *testing.T) {
	h, d := testSetup(t)
	ctx := context.Background()

	id := captureOne(t, h, "ring the plumber about the boiler")
	d.Flush()

	result, _ := h.HandleHelpStart(ctx, makeRequest(map[string]any{"id": id}))
	if result.IsError {
		t.Fatalf("HandleHelpStart failed: %v", extractErrorMessage(result))
	}
	payload := resultPayload(t, result)
	steps := payload["steps"].([]any)
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want the 2-step call playbook: %v", len(steps), steps)
	}
	if payload["current_step"].(float64) != 0 {
		t.Errorf("current_step = %v, want 0", payload["current_step"])
	}

	for i := range steps {
		done, _ := h.HandleStepDone(ctx, makeRequest(map[string]any{"id": id}))
		if done.IsError {
			t.Fatalf("HandleStepDone step %d failed: %v", i, extractErrorMessage(done))
		}
		payload = resultPayload(t, done)
	}
	if payload["completed"] != true {
		t.Errorf("completed = %v after finishing every step, want true", payload["completed"])
	}

	capped, _ := h.HandleHelpStart(ctx, makeRequest(map[string]any{"id": id, "max_steps": 1, "refresh": true}))
	if capped.IsError {
		t.Fatalf("HandleHelpStart refresh failed: %v", extractErrorMessage(capped))
	}
	if steps := resultPayload(t, capped)["steps"].([]any); len(steps) != 1 {
		t.Errorf("refresh with max_steps=1 returned %d steps, want 1", len(steps))
	}

	missing, _ := h.HandleHelpStart(ctx, makeRequest(map[string]any{"id": "01XX00000000000000000000AA"}))
	assertErrorCode(t, missing, "NOT_FOUND")
}

func TestHandleExportImport(t *testing.T) {
	h, d := testSetup(t)
	ctx := context.Background()

	captureOne(t, h, "back this up before anything else")
	d.Flush()

	path := filepath.Join(t.TempDir(), "backup.jsonl")
	exportResult, _ := h.HandleExport(ctx, makeRequest(map[string]any{"path": path}))
	if exportResult.IsError {
		t.Fatalf("HandleExport failed: %v", extractErrorMessage(exportResult))
	}
	if items := resultPayload(t, exportResult)["items"].(float64); items != 1 {
		t.Errorf("exported %v items, want 1", items)
	}

	fresh, _ := testSetup(t)
	importResult, _ := fresh.HandleImport(ctx, makeRequest(map[string]any{"path": path}))
	if importResult.IsError {
		t.Fatalf("HandleImport failed: %v", extractErrorMessage(importResult))
	}
	if items := resultPayload(t, importResult)["items"].(float64); items != 1 {
		t.Errorf("imported %v items, want 1", items)
	}

	badMode, _ := fresh.HandleImport(ctx, makeRequest(map[string]any{"path": path, "mode": "sideways"}))
	assertErrorCode(t, badMode, "INVALID_REQUEST")
}

func TestHandleStats(t *testing.T) {
	h, d := testSetup(t)
	ctx := context.Background()

	captureOne(t, h, "count me in the stats")
	d.Flush()

	result, _ := h.HandleStats(ctx, makeRequest(map[string]any{}))
	if result.IsError {
		t.Fatalf("HandleStats failed: %v", extractErrorMessage(result))
	}
	payload := resultPayload(t, result)
	byStatus := payload["by_status"].(map[string]any)
	if byStatus["fresh"].(float64) != 1 {
		t.Errorf("by_status = %v, want fresh=1", byStatus)
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{
			name:    "all valid",
			input:   []string{"item_capture", "project_delete"},
			wantLen: 0,
		},
		{
			name:    "one unknown",
			input:   []string{"stats", "fake_tool"},
			wantLen: 1,
		},
		{
			name:    "all unknown",
			input:   []string{"foo", "bar", "baz"},
			wantLen: 3,
		},
		{
			name:    "empty list",
			input:   []string{},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("got %d unknown tools, want %d: %v", len(unknown), tt.wantLen, unknown)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	unknown := ValidateDisabledTypes([]string{"item", "project", "widget"})
	if len(unknown) != 1 || unknown[0] != "widget" {
		t.Errorf("ValidateDisabledTypes() = %v, want [widget]", unknown)
	}
}

func TestGetTypeForTool(t *testing.T) {
	tests := []struct {
		tool string
		want string
	}{
		{"item_capture", "item"},
		{"project_delete", "project"},
		{"stats", ""},
		{"export", ""},
	}
	for _, tt := range tests {
		if got := GetTypeForTool(tt.tool); got != tt.want {
			t.Errorf("GetTypeForTool(%q) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}

func TestExpandTypesToTools(t *testing.T) {
	tools := ExpandTypesToTools([]string{"project"})
	sort.Strings(tools)

	want := []string{
		"project_archive", "project_create", "project_delete",
		"project_get", "project_list", "project_restore", "project_update",
	}
	if len(tools) != len(want) {
		t.Fatalf("ExpandTypesToTools(project) = %v, want %v", tools, want)
	}
	for i := range want {
		if tools[i] != want[i] {
			t.Errorf("tools[%d] = %q, want %q", i, tools[i], want[i])
		}
	}

	if got := ExpandTypesToTools(nil); got != nil {
		t.Errorf("ExpandTypesToTools(nil) = %v, want nil", got)
	}
}

func TestNewServer_DisablesTools(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	defer database.Close()

	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"project_delete"}
	cfg.DisabledTypes = []string{"project"}

	d := ops.NewDispatcher(database, nil, nil, nil)
	defer d.Flush()

	s := NewServer(database, cfg, d, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestDecode(t *testing.T) {
	got, err := decode[HelpStartRequest](makeRequest(map[string]any{
		"id": "abc", "max_steps": 2, "bogus": true,
	}))
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if got.ID != "abc" || got.MaxSteps != 2 {
		t.Errorf("decode() = %+v, want id=abc max_steps=2", got)
	}

	// A mistyped argument surfaces as a decode error, not a panic.
	if _, err := decode[HelpStartRequest](makeRequest(map[string]any{"id": 42})); err == nil {
		t.Error("decode() with a numeric id should fail")
	}
}

// assertErrorCode verifies the error payload carries the expected code.
func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if result == nil || !result.IsError {
		t.Errorf("expected error result with code %s, got success", expectedCode)
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}
	if code != expectedCode {
		t.Errorf("error code = %s, want %s", code, expectedCode)
	}
}

// extractErrorMessage pulls the raw text out of an error result for logging.
func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
