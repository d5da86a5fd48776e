package item

import (
	"testing"
	"time"
)

// mkItem builds an item created ageHours ago and touched touchedDays ago.
func mkItem(cat Category, status Status, ageHours, touchedDays float64, now time.Time) Item {
	return Item{
		ID:        "01TEST",
		Content:   "test",
		Category:  cat,
		Status:    status,
		CreatedAt: now.Add(-time.Duration(ageHours * float64(time.Hour))).Unix(),
		TouchedAt: now.Add(-time.Duration(touchedDays * 24 * float64(time.Hour))).Unix(),
	}
}

func TestComputeStatus_Table(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		cat         Category
		status      Status
		ageHours    float64
		touchedDays float64
		want        Status
	}{
		{"task fresh within 48h", CategoryTask, StatusFresh, 10, 0, StatusFresh},
		{"task alive after 48h", CategoryTask, StatusFresh, 49, 1, StatusAlive},
		{"task quiet strictly after 7 days untouched", CategoryTask, StatusAlive, 200, 7.01, StatusQuiet},
		{"task not quiet at exactly 7 days", CategoryTask, StatusAlive, 200, 7, StatusAlive},
		{"task archived strictly after 30 days untouched", CategoryTask, StatusQuiet, 800, 30.01, StatusArchived},
		{"spark archives at 7 days with no quiet stage", CategorySpark, StatusAlive, 200, 7.01, StatusArchived},
		{"spark alive before 7 days", CategorySpark, StatusFresh, 100, 5, StatusAlive},
		{"reminder never quiets or archives by time", CategoryReminder, StatusAlive, 5000, 180, StatusAlive},
		{"reminder fresh within 48h", CategoryReminder, StatusFresh, 12, 0, StatusFresh},
		{"project item stays fresh by age", CategoryProject, StatusFresh, 5000, 1, StatusFresh},
		{"project item quiets after 9 days", CategoryProject, StatusFresh, 5000, 9.5, StatusQuiet},
		{"project item never auto-archives", CategoryProject, StatusQuiet, 9000, 300, StatusQuiet},
		{"uncategorised ages like task", CategoryUncategorised, StatusAlive, 900, 31, StatusArchived},
		{"unknown category falls back to uncategorised policy", Category("bogus"), StatusAlive, 900, 31, StatusArchived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := mkItem(tt.cat, tt.status, tt.ageHours, tt.touchedDays, now)
			got := ComputeStatus(it, now)
			if got != tt.want {
				t.Errorf("ComputeStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeStatus_ArchivedIsSticky(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Fresh by every time-based rule, but already archived.
	it := mkItem(CategoryTask, StatusArchived, 1, 0, now)
	if got := ComputeStatus(it, now); got != StatusArchived {
		t.Errorf("ComputeStatus() = %q, want archived (sticky)", got)
	}

	// And far in the future it still cannot become quiet.
	if got := ComputeStatus(it, now.Add(365*24*time.Hour)); got != StatusArchived {
		t.Errorf("ComputeStatus() after a year = %q, want archived", got)
	}
}

func TestComputeStatus_DoneIsSticky(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	it := mkItem(CategoryTask, StatusDone, 900, 60, now)
	if got := ComputeStatus(it, now); got != StatusDone {
		t.Errorf("ComputeStatus() = %q, want done (sticky)", got)
	}
}

func TestComputeStatus_Deterministic(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	it := mkItem(CategoryTask, StatusAlive, 100, 3, now)

	first := ComputeStatus(it, now)
	second := ComputeStatus(it, now)
	if first != second {
		t.Errorf("ComputeStatus() not deterministic: %q then %q", first, second)
	}
}

func TestComputeStatus_ZeroTouchedFallsBackToCreated(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	it := Item{
		Category:  CategoryTask,
		Status:    StatusFresh,
		CreatedAt: now.Add(-10 * time.Hour).Unix(),
		TouchedAt: 0,
	}
	if got := ComputeStatus(it, now); got != StatusFresh {
		t.Errorf("ComputeStatus() = %q, want fresh", got)
	}
}

func TestPolicyFor_UnknownCategory(t *testing.T) {
	p := PolicyFor(Category("nope"))
	if p.QuietDays == nil || *p.QuietDays != 7 {
		t.Errorf("PolicyFor(unknown).QuietDays = %v, want 7", p.QuietDays)
	}
	if p.ArchiveDays == nil || *p.ArchiveDays != 30 {
		t.Errorf("PolicyFor(unknown).ArchiveDays = %v, want 30", p.ArchiveDays)
	}
}
