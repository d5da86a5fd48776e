package ops

import (
	"database/sql"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/item"
	"github.com/hpungsan/forward/internal/project"
)

// BackupNudgeAfter is how long captured data may exist before the
// one-time backup reminder fires.
const BackupNudgeAfter = 7 * 24 * time.Hour

// StatsOutput contains counts for the home surface.
type StatsOutput struct {
	ByStatus         map[item.Status]int   `json:"by_status"`
	ByCategory       map[item.Category]int `json:"by_category"`
	ActiveProjects   int                   `json:"active_projects"`
	ArchivedProjects int                   `json:"archived_projects"`
	BackupNudge      bool                  `json:"backup_nudge"`
}

// Stats returns item counts by status and category plus project
// counts, after a lifecycle sweep. The first call after data is a
// week old also raises the backup nudge, exactly once.
func Stats(database *sql.DB) (*StatsOutput, error) {
	now := time.Now()
	if _, err := RunLifecycle(database, now); err != nil {
		return nil, err
	}

	byStatus, err := db.StatusCounts(database)
	if err != nil {
		return nil, err
	}
	byCategory, err := db.CategoryCounts(database)
	if err != nil {
		return nil, err
	}

	projects, err := db.ListProjects(database, true)
	if err != nil {
		return nil, err
	}
	active, archived := 0, 0
	for _, p := range projects {
		if p.Status == project.StatusArchived {
			archived++
		} else {
			active++
		}
	}

	nudge, err := checkBackupNudge(database, now)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{
		ByStatus:         byStatus,
		ByCategory:       byCategory,
		ActiveProjects:   active,
		ArchivedProjects: archived,
		BackupNudge:      nudge,
	}, nil
}

// checkBackupNudge reports true once: when the oldest item is at
// least a week old and the nudge has never fired before.
func checkBackupNudge(database *sql.DB, now time.Time) (bool, error) {
	nudged, err := db.GetSetting(database, db.SettingBackupNudged)
	if err != nil {
		return false, err
	}
	if nudged != "" {
		return false, nil
	}

	oldest, ok, err := db.OldestItemCreatedAt(database)
	if err != nil {
		return false, err
	}
	if !ok || now.Sub(time.Unix(oldest, 0)) < BackupNudgeAfter {
		return false, nil
	}

	if err := db.SetSetting(database, db.SettingBackupNudged, "1"); err != nil {
		return false, err
	}
	return true, nil
}
