package web

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/hpungsan/forward/internal/config"
	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
	"github.com/hpungsan/forward/internal/ops"
)

// Handlers contains HTTP route handlers for the read-only web viewer.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleInbox handles GET /inbox — the item list. A status query
// parameter narrows the view to one status; the default is the active
// set (fresh, alive, quiet).
func (h *Handlers) HandleInbox(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	input := ops.ListInput{
		Limit:  parseIntParam(r, "limit", 20),
		Offset: parseIntParam(r, "offset", 0),
	}
	if status != "" {
		input.Statuses = []item.Status{item.Status(status)}
	}

	result, err := ops.List(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "inbox", InboxPageData{
		PageData: PageData{
			Title:   "Inbox",
			Version: h.renderer.version,
			Nav:     "inbox",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Status:     status,
	})
}

// HandleSearch handles GET /items/search — substring search.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	data := SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    query,
		HasQuery: query != "",
	}

	if query == "" {
		h.renderer.renderPage(w, r, "search", data)
		return
	}

	result, err := ops.Search(h.db, ops.SearchInput{
		Query:  query,
		Limit:  parseIntParam(r, "limit", 20),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data.Items = result.Items
	data.Pagination = result.Pagination
	h.renderer.renderPage(w, r, "search", data)
}

// HandleItemDetail handles GET /items/{id} — view a single item.
func (h *Handlers) HandleItemDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("item ID is required"))
		return
	}

	it, err := ops.Fetch(h.db, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// A dangling project reference renders without a name.
	projectName := ""
	if it.ProjectID != nil {
		if p, err := db.GetProject(h.db, *it.ProjectID); err == nil {
			projectName = p.Name
		}
	}

	h.renderer.renderPage(w, r, "item", ItemPageData{
		PageData: PageData{
			Title:   "Item",
			Version: h.renderer.version,
			Nav:     "inbox",
		},
		Item:        it,
		ProjectName: projectName,
	})
}

// HandleProjects handles GET /projects — the project list.
func (h *Handlers) HandleProjects(w http.ResponseWriter, r *http.Request) {
	includeArchived := parseBoolParam(r, "include_archived")

	result, err := ops.ListProjects(h.db, ops.ListProjectsInput{
		IncludeArchived: includeArchived,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "projects", ProjectsPageData{
		PageData: PageData{
			Title:   "Projects",
			Version: h.renderer.version,
			Nav:     "projects",
		},
		Projects:        result.Projects,
		IncludeArchived: includeArchived,
	})
}

// HandleProjectDetail handles GET /projects/{id} — a project with its
// linked items and rendered notes.
func (h *Handlers) HandleProjectDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("project ID is required"))
		return
	}

	result, err := ops.FetchProject(h.db, ops.FetchProjectInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	info := result.Project.ProjectCat.Info()
	phaseLabel := info.PhaseLabels[result.Project.Phase]
	if phaseLabel == "" {
		phaseLabel = result.Project.Phase
	}

	h.renderer.renderPage(w, r, "project", ProjectPageData{
		PageData: PageData{
			Title:   result.Project.Name,
			Version: h.renderer.version,
			Nav:     "projects",
		},
		Project:       result.Project,
		Items:         result.Items,
		VisionLocked:  result.VisionLocked,
		RenderedNotes: renderMarkdown(result.Project.Notes),
		PhaseLabel:    phaseLabel,
	})
}

// HandleStats handles GET /stats — counts by status and category.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Stats(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "stats", StatsPageData{
		PageData: PageData{
			Title:   "Stats",
			Version: h.renderer.version,
			Nav:     "stats",
		},
		Stats: result,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
