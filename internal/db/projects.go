package db

import (
	"database/sql"

	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/project"
)

// projectColumns is the canonical column list for project queries.
const projectColumns = `id, name, vision, project_cat, phase,
	next_action, notes, status, created_at, touched_at, vision_locked_at`

// InsertProject stores a new project.
func InsertProject(db *sql.DB, p *project.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		p.ID, p.Name, p.Vision, string(p.ProjectCat), p.Phase,
		p.NextAction, p.Notes, string(p.Status),
		p.CreatedAt, p.TouchedAt, p.VisionLockedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetProject retrieves a project by its ULID.
func GetProject(db *sql.DB, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	p, err := scanProject(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("project", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return p, nil
}

// UpdateProject rewrites every mutable field of an existing project.
// CreatedAt, VisionLockedAt and ID are never changed.
func UpdateProject(db *sql.DB, p *project.Project) error {
	query := `
		UPDATE projects
		SET name = ?, vision = ?, project_cat = ?, phase = ?,
			next_action = ?, notes = ?, status = ?, touched_at = ?
		WHERE id = ?
	`
	result, err := db.Exec(query,
		p.Name, p.Vision, string(p.ProjectCat), p.Phase,
		p.NextAction, p.Notes, string(p.Status), p.TouchedAt,
		p.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("project", p.ID)
	}
	return nil
}

// DeleteProject hard-deletes a project. This is the only hard-delete
// path in the system; callers gate it behind explicit confirmation.
func DeleteProject(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("project", id)
	}
	return nil
}

// ClearProjects removes every project row. Only backup restore
// (import in replace mode) is allowed to do this.
func ClearProjects(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM projects`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListProjects returns projects newest first. When includeArchived is
// false only active projects are returned.
func ListProjects(db *sql.DB, includeArchived bool) ([]*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeArchived {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY created_at DESC, rowid ASC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	projects := make([]*project.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return projects, nil
}

// scanProject scans a single row into a Project struct.
func scanProject(row rowScanner) (*project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.Vision, &p.ProjectCat, &p.Phase,
		&p.NextAction, &p.Notes, &p.Status,
		&p.CreatedAt, &p.TouchedAt, &p.VisionLockedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
