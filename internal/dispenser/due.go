// FilePath: internal/dispenser/due.go
package dispenser

import (
	"time"

	"github.com/itsatony/pillhub/internal/models"
)

// FindDueSchedules returns the schedules that fire at now in loc and have not
// already fired on the current target-zone date, in input order.
//
// With window == 0 the schedule time must equal the current HH:MM exactly. A
// positive window also accepts any now inside [scheduled, scheduled+window) on
// the same target-zone day.
func FindDueSchedules(schedules []models.Schedule, now time.Time, loc *time.Location, window time.Duration) []models.Schedule {
	local := now.In(loc)
	moment := Moment(now, loc)

	due := make([]models.Schedule, 0)
	for _, s := range schedules {
		if !matchesDay(s, local.Weekday()) {
			continue
		}
		if !matchesTime(s, local, moment.Time, window) {
			continue
		}
		if s.ExecutedOn(loc) == moment.Date {
			continue
		}
		due = append(due, s)
	}
	return due
}

func matchesDay(s models.Schedule, today time.Weekday) bool {
	wd, ok := models.ParseWeekday(s.Day)
	return ok && wd == today
}

func matchesTime(s models.Schedule, local time.Time, current string, window time.Duration) bool {
	if !models.ValidClock(s.Time) {
		return false
	}
	if window <= 0 {
		return s.Time == current
	}
	clock, err := time.Parse(models.ClockLayout, s.Time)
	if err != nil {
		return false
	}
	scheduled := time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, local.Location())
	if scheduled.Day() != local.Day() {
		return false
	}
	return !local.Before(scheduled) && local.Before(scheduled.Add(window))
}
