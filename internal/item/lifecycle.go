package item

import (
	"math"
	"time"
)

// Policy is the per-category aging policy. FreshHours may be +Inf
// (never leaves fresh by age alone). A nil QuietDays or ArchiveDays
// means the category never enters that state through this engine.
type Policy struct {
	FreshHours  float64
	QuietDays   *float64
	ArchiveDays *float64
}

func days(d float64) *float64 { return &d }

// lifecyclePolicies is the differentiated aging table — the core
// graveyard-prevention logic. Reminder items are date-driven elsewhere
// and never quiet or auto-archive here.
var lifecyclePolicies = map[Category]Policy{
	CategoryTask:          {FreshHours: 48, QuietDays: days(7), ArchiveDays: days(30)},
	CategoryProject:       {FreshHours: math.Inf(1), QuietDays: days(9), ArchiveDays: nil},
	CategorySpark:         {FreshHours: 48, QuietDays: nil, ArchiveDays: days(7)},
	CategoryReminder:      {FreshHours: 48, QuietDays: nil, ArchiveDays: nil},
	CategoryUncategorised: {FreshHours: 48, QuietDays: days(7), ArchiveDays: days(30)},
}

// PolicyFor returns the aging policy for a category. Unknown
// categories age like uncategorised.
func PolicyFor(c Category) Policy {
	if p, ok := lifecyclePolicies[c]; ok {
		return p
	}
	return lifecyclePolicies[CategoryUncategorised]
}

// ComputeStatus derives an item's lifecycle state from its category
// policy and elapsed time. It is pure: the result depends only on the
// item's own fields and now. Terminal states (archived, done) are
// sticky and returned unchanged.
func ComputeStatus(it Item, now time.Time) Status {
	if it.Status.Terminal() {
		return it.Status
	}

	touched := it.TouchedAt
	if touched == 0 {
		touched = it.CreatedAt
	}
	ageHours := now.Sub(time.Unix(it.CreatedAt, 0)).Hours()
	touchedDays := now.Sub(time.Unix(touched, 0)).Hours() / 24

	p := PolicyFor(it.Category)

	if p.ArchiveDays != nil && touchedDays > *p.ArchiveDays {
		return StatusArchived
	}
	if p.QuietDays != nil && touchedDays > *p.QuietDays {
		return StatusQuiet
	}
	if ageHours <= p.FreshHours {
		return StatusFresh
	}
	return StatusAlive
}
