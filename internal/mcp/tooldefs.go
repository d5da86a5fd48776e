package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var captureToolDef = mcp.NewTool("item_capture",
	mcp.WithDescription("Capture free text into the inbox. Multi-line text becomes one item per line; long text is kept whole as a brain dump and summarized. An @mention of an active project name, or an explicit project_id, links the capture to that project."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The text to capture"),
	),
	mcp.WithString("project_id",
		mcp.Description("Link all captured items to this project (overrides @mentions)"),
	),
)

var listToolDef = mcp.NewTool("item_list",
	mcp.WithDescription("List items newest first. Without statuses, shows the active inbox (fresh, alive, quiet)."),
	mcp.WithArray("statuses",
		mcp.Description("Statuses to include: fresh, alive, quiet, done, archived"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum items to return (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of items to skip"),
	),
)

var searchToolDef = mcp.NewTool("item_search",
	mcp.WithDescription("Search non-archived items by content substring, newest first."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Substring to search for"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum items to return (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of items to skip"),
	),
)

var getToolDef = mcp.NewTool("item_get",
	mcp.WithDescription("Get a single item by ID, including raw content and AI fields."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
)

var confirmToolDef = mcp.NewTool("item_confirm",
	mcp.WithDescription("Accept the suggested category for an item. Confirmed items are skipped by later classification."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
)

var setCategoryToolDef = mcp.NewTool("item_set_category",
	mcp.WithDescription("Set an item's category explicitly. This also confirms the item."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("New category"),
		mcp.Enum("task", "project", "spark", "reminder"),
	),
)

var completeToolDef = mcp.NewTool("item_complete",
	mcp.WithDescription("Mark an item done. Recurring items record the completion and stay active."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
)

var archiveToolDef = mcp.NewTool("item_archive",
	mcp.WithDescription("Archive an item. Archived items leave the inbox but stay searchable by ID and in backups."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
)

var restoreToolDef = mcp.NewTool("item_restore",
	mcp.WithDescription("Bring a done or archived item back to the inbox as fresh."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
)

var recurToolDef = mcp.NewTool("item_recur",
	mcp.WithDescription("Cycle an item's recurrence: none → daily → weekly → monthly → none."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
)

var promoteToolDef = mcp.NewTool("item_promote",
	mcp.WithDescription("Turn an item into a project. The item content seeds the vision and the item is archived with a link to the new project."),
	mcp.WithString("item_id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
	mcp.WithString("name",
		mcp.Description("Project name (default: derived from the item content)"),
	),
	mcp.WithString("category",
		mcp.Description("Project category track"),
		mcp.Enum("idwork", "life", "business", "learning", "open"),
	),
)

var helpStartToolDef = mcp.NewTool("item_help_start",
	mcp.WithDescription("Break an item into a few tiny starter steps to lower the cost of beginning. Steps are cached on the item until refreshed."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
	mcp.WithNumber("max_steps",
		mcp.Description("Cap on the number of steps, 1-5 (default 3). Use 1 on low-energy days."),
	),
	mcp.WithBoolean("refresh",
		mcp.Description("Discard the cached steps and generate a fresh breakdown"),
	),
)

var stepDoneToolDef = mcp.NewTool("item_step_done",
	mcp.WithDescription("Mark the current starter step done and advance the cursor. Finishing the last step touches the item."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Item ID"),
	),
)

var projectCreateToolDef = mcp.NewTool("project_create",
	mcp.WithDescription("Create a project. The vision stays editable for 48 hours after creation, then locks."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Project name"),
	),
	mcp.WithString("vision",
		mcp.Description("Founding statement; locked 48 hours after creation"),
	),
	mcp.WithString("category",
		mcp.Description("Category track (default: open)"),
		mcp.Enum("idwork", "life", "business", "learning", "open"),
	),
	mcp.WithString("phase",
		mcp.Description("Starting phase within the track (default: the first phase)"),
	),
	mcp.WithString("next_action",
		mcp.Description("The single next concrete action"),
	),
	mcp.WithString("notes",
		mcp.Description("Free-form notes (markdown)"),
	),
)

var projectGetToolDef = mcp.NewTool("project_get",
	mcp.WithDescription("Get a project by ID, including its linked items and vision lock state."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ID"),
	),
)

var projectListToolDef = mcp.NewTool("project_list",
	mcp.WithDescription("List projects newest first."),
	mcp.WithBoolean("include_archived",
		mcp.Description("Include archived projects"),
	),
)

var projectUpdateToolDef = mcp.NewTool("project_update",
	mcp.WithDescription("Edit project fields. Omitted fields are left unchanged. Vision edits fail once the 48-hour lock has passed."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ID"),
	),
	mcp.WithString("name",
		mcp.Description("New name"),
	),
	mcp.WithString("vision",
		mcp.Description("New vision (rejected after the lock)"),
	),
	mcp.WithString("category",
		mcp.Description("New category track; resets the phase if the current one does not fit"),
		mcp.Enum("idwork", "life", "business", "learning", "open"),
	),
	mcp.WithString("phase",
		mcp.Description("New phase within the current track"),
	),
	mcp.WithString("next_action",
		mcp.Description("New next action"),
	),
	mcp.WithString("notes",
		mcp.Description("New notes (markdown)"),
	),
)

var projectArchiveToolDef = mcp.NewTool("project_archive",
	mcp.WithDescription("Archive a project. Linked items keep their reference."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ID"),
	),
)

var projectRestoreToolDef = mcp.NewTool("project_restore",
	mcp.WithDescription("Bring an archived project back to active."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ID"),
	),
)

var projectDeleteToolDef = mcp.NewTool("project_delete",
	mcp.WithDescription("Permanently delete a project. Requires confirm=true. This is the only hard delete."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ID"),
	),
	mcp.WithBoolean("confirm",
		mcp.Description("Must be true to proceed"),
	),
)

var exportToolDef = mcp.NewTool("export",
	mcp.WithDescription("Export all items and projects (archived included) to a JSONL backup file."),
	mcp.WithString("path",
		mcp.Description("Destination path ending in .jsonl (default: ~/.forward/exports/forward-<timestamp>.jsonl)"),
	),
)

var importToolDef = mcp.NewTool("import",
	mcp.WithDescription("Import items and projects from a JSONL backup file."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Backup file path ending in .jsonl"),
	),
	mcp.WithString("mode",
		mcp.Description("merge (default): skip records whose ID already exists; replace: wipe all data first"),
		mcp.Enum("merge", "replace"),
	),
)

var statsToolDef = mcp.NewTool("stats",
	mcp.WithDescription("Item counts by status and category plus project counts, after a lifecycle sweep."),
)
