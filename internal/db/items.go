package db

import (
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
)

// itemColumns is the canonical column list for item queries.
const itemColumns = `id, content, raw_content, category, ai_category,
	confirmed, ai_pending, status, created_at, touched_at,
	completed_at, last_completed_at, project_id, recurring,
	mvna_steps_json, mvna_current_step, ai_title, ai_summary, ai_actions_json`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// InsertItems stores a capture batch in one transaction, preserving
// slice order (rowid order is the tiebreaker for same-second listings).
func InsertItems(db *sql.DB, items []*item.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, it := range items {
		stepsJSON, err := stringsToNullJSON(it.MvnaSteps)
		if err != nil {
			return errors.NewInternal(err)
		}
		actionsJSON, err := stringsToNullJSON(it.AIActions)
		if err != nil {
			return errors.NewInternal(err)
		}

		_, err = stmt.Exec(
			it.ID, it.Content, toNullString(it.RawContent),
			string(it.Category), categoryToNull(it.AICategory),
			boolToInt(it.Confirmed), boolToInt(it.AIPending), string(it.Status),
			it.CreatedAt, it.TouchedAt,
			toNullInt64(it.CompletedAt), toNullInt64(it.LastCompletedAt),
			toNullString(it.ProjectID), recurrenceToNull(it.Recurring),
			stepsJSON, it.MvnaCurrentStep,
			toNullString(it.AITitle), toNullString(it.AISummary), actionsJSON,
		)
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetItem retrieves an item by its ULID.
func GetItem(db *sql.DB, id string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	it, err := scanItem(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("item", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return it, nil
}

// UpdateItem rewrites every mutable field of an existing item.
// CreatedAt and ID are never changed.
func UpdateItem(db *sql.DB, it *item.Item) error {
	stepsJSON, err := stringsToNullJSON(it.MvnaSteps)
	if err != nil {
		return errors.NewInternal(err)
	}
	actionsJSON, err := stringsToNullJSON(it.AIActions)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		UPDATE items
		SET content = ?, raw_content = ?, category = ?, ai_category = ?,
			confirmed = ?, ai_pending = ?, status = ?, touched_at = ?,
			completed_at = ?, last_completed_at = ?, project_id = ?,
			recurring = ?, mvna_steps_json = ?, mvna_current_step = ?,
			ai_title = ?, ai_summary = ?, ai_actions_json = ?
		WHERE id = ?
	`

	result, err := db.Exec(query,
		it.Content, toNullString(it.RawContent),
		string(it.Category), categoryToNull(it.AICategory),
		boolToInt(it.Confirmed), boolToInt(it.AIPending), string(it.Status),
		it.TouchedAt,
		toNullInt64(it.CompletedAt), toNullInt64(it.LastCompletedAt),
		toNullString(it.ProjectID), recurrenceToNull(it.Recurring),
		stepsJSON, it.MvnaCurrentStep,
		toNullString(it.AITitle), toNullString(it.AISummary), actionsJSON,
		it.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("item", it.ID)
	}
	return nil
}

// AllItems returns every item, newest capture first with batch order
// preserved (created_at DESC, rowid ASC).
func AllItems(db *sql.DB) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC, rowid ASC`
	return queryItems(db, query)
}

// ItemsByStatus returns items whose status is in the given set,
// newest capture first.
func ItemsByStatus(db *sql.DB, statuses []item.Status, limit, offset int) ([]*item.Item, error) {
	if len(statuses) == 0 {
		return []*item.Item{}, nil
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE status IN (`
	args := make([]any, 0, len(statuses)+2)
	for i, s := range statuses {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, string(s))
	}
	query += `) ORDER BY created_at DESC, rowid ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return queryItems(db, query, args...)
}

// CountItemsByStatus returns the number of items in the given status set.
func CountItemsByStatus(db *sql.DB, statuses []item.Status) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	query := `SELECT COUNT(*) FROM items WHERE status IN (`
	args := make([]any, 0, len(statuses))
	for i, s := range statuses {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, string(s))
	}
	query += `)`

	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// PendingItems returns items still waiting for classification.
func PendingItems(db *sql.DB) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE ai_pending = 1 ORDER BY created_at DESC, rowid ASC`
	return queryItems(db, query)
}

// ItemsByProject returns items linked to a project, newest first.
func ItemsByProject(db *sql.DB, projectID string) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE project_id = ? ORDER BY created_at DESC, rowid ASC`
	return queryItems(db, query, projectID)
}

// ClearItems removes every item row. Only backup restore (import in
// replace mode) is allowed to do this.
func ClearItems(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM items`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SearchItems returns non-archived items whose content matches the
// query substring (case-insensitive via LIKE), newest first.
func SearchItems(db *sql.DB, q string, limit, offset int) ([]*item.Item, error) {
	query := `
		SELECT ` + itemColumns + ` FROM items
		WHERE content LIKE ? ESCAPE '\' AND status != 'archived'
		ORDER BY created_at DESC, rowid ASC
		LIMIT ? OFFSET ?
	`
	return queryItems(db, query, "%"+escapeLike(q)+"%", limit, offset)
}

// ApplyStatuses persists a batch of lifecycle status changes in one
// transaction. A nil or empty map is a no-op.
func ApplyStatuses(db *sql.DB, changes map[string]item.Status) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE items SET status = ? WHERE id = ?`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for id, status := range changes {
		if _, err := stmt.Exec(string(status), id); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// StatusCounts returns item counts grouped by status.
func StatusCounts(db *sql.DB) (map[item.Status]int, error) {
	rows, err := db.Query(`SELECT status, COUNT(*) FROM items GROUP BY status`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counts := make(map[item.Status]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts[item.Status(s)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return counts, nil
}

// CategoryCounts returns non-archived item counts grouped by category.
func CategoryCounts(db *sql.DB) (map[item.Category]int, error) {
	rows, err := db.Query(`SELECT category, COUNT(*) FROM items WHERE status != 'archived' GROUP BY category`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counts := make(map[item.Category]int)
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts[item.Category(c)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return counts, nil
}

// OldestItemCreatedAt returns the creation time of the oldest item,
// or ok=false when no items exist. Used for the backup nudge.
func OldestItemCreatedAt(db *sql.DB) (int64, bool, error) {
	var created sql.NullInt64
	err := db.QueryRow(`SELECT MIN(created_at) FROM items`).Scan(&created)
	if err != nil {
		return 0, false, errors.NewInternal(err)
	}
	if !created.Valid {
		return 0, false, nil
	}
	return created.Int64, true, nil
}

// queryItems runs an item query and scans all rows.
func queryItems(db *sql.DB, query string, args ...any) ([]*item.Item, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := make([]*item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// scanItem scans a single row into an Item struct.
func scanItem(row rowScanner) (*item.Item, error) {
	var (
		it              item.Item
		rawContent      sql.NullString
		aiCategory      sql.NullString
		confirmed       int
		aiPending       int
		completedAt     sql.NullInt64
		lastCompletedAt sql.NullInt64
		projectID       sql.NullString
		recurring       sql.NullString
		stepsJSON       sql.NullString
		aiTitle         sql.NullString
		aiSummary       sql.NullString
		actionsJSON     sql.NullString
	)

	err := row.Scan(
		&it.ID, &it.Content, &rawContent, &it.Category, &aiCategory,
		&confirmed, &aiPending, &it.Status, &it.CreatedAt, &it.TouchedAt,
		&completedAt, &lastCompletedAt, &projectID, &recurring,
		&stepsJSON, &it.MvnaCurrentStep, &aiTitle, &aiSummary, &actionsJSON,
	)
	if err != nil {
		return nil, err
	}

	it.RawContent = fromNullString(rawContent)
	it.Confirmed = confirmed != 0
	it.AIPending = aiPending != 0
	it.CompletedAt = fromNullInt64(completedAt)
	it.LastCompletedAt = fromNullInt64(lastCompletedAt)
	it.ProjectID = fromNullString(projectID)
	it.AITitle = fromNullString(aiTitle)
	it.AISummary = fromNullString(aiSummary)

	if aiCategory.Valid {
		cat := item.Category(aiCategory.String)
		it.AICategory = &cat
	}
	if recurring.Valid {
		it.Recurring = item.Recurrence(recurring.String)
	}
	if stepsJSON.Valid && stepsJSON.String != "" {
		if err := json.Unmarshal([]byte(stepsJSON.String), &it.MvnaSteps); err != nil {
			return nil, err
		}
	}
	if actionsJSON.Valid && actionsJSON.String != "" {
		if err := json.Unmarshal([]byte(actionsJSON.String), &it.AIActions); err != nil {
			return nil, err
		}
	}

	return &it, nil
}

// Nullable conversion helpers

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func toNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func fromNullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}

func categoryToNull(c *item.Category) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*c), Valid: true}
}

func recurrenceToNull(r item.Recurrence) sql.NullString {
	if r == item.RecurrenceNone {
		return sql.NullString{}
	}
	return sql.NullString{String: string(r), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func stringsToNullJSON(ss []string) (sql.NullString, error) {
	if len(ss) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(ss)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
