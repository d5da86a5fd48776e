package db

import "testing"

func TestGetSetting_Unset(t *testing.T) {
	db := testDB(t)

	value, err := GetSetting(db, SettingBackupNudged)
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if value != "" {
		t.Errorf("value = %q, want empty string for unset key", value)
	}
}

func TestSetSetting_Upsert(t *testing.T) {
	db := testDB(t)

	if err := SetSetting(db, SettingAPIKey, "first"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	value, err := GetSetting(db, SettingAPIKey)
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if value != "first" {
		t.Errorf("value = %q, want first", value)
	}

	// Setting the same key again replaces the value.
	if err := SetSetting(db, SettingAPIKey, "second"); err != nil {
		t.Fatalf("SetSetting() upsert error = %v", err)
	}
	value, err = GetSetting(db, SettingAPIKey)
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if value != "second" {
		t.Errorf("value = %q, want second", value)
	}
}

func TestDeleteSetting(t *testing.T) {
	db := testDB(t)

	if err := SetSetting(db, SettingAPIKey, "sk-stored"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := DeleteSetting(db, SettingAPIKey); err != nil {
		t.Fatalf("DeleteSetting() error = %v", err)
	}
	value, err := GetSetting(db, SettingAPIKey)
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if value != "" {
		t.Errorf("value = %q, want empty after delete", value)
	}

	// Deleting again is a no-op.
	if err := DeleteSetting(db, SettingAPIKey); err != nil {
		t.Fatalf("DeleteSetting() second call error = %v", err)
	}
}
