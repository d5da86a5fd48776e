package db

import (
	"database/sql"

	"github.com/hpungsan/forward/internal/errors"
)

// Setting keys.
const (
	SettingBackupNudged = "backup_nudged"
	SettingAPIKey       = "api_key"
)

// GetSetting returns the value for a settings key, or "" if unset.
// Absent values are not an error.
func GetSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return value, nil
}

// DeleteSetting removes a settings key. Deleting an absent key is not
// an error.
func DeleteSetting(db *sql.DB, key string) error {
	if _, err := db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SetSetting upserts a settings key.
func SetSetting(db *sql.DB, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := db.Exec(query, key, value); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
