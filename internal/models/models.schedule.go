// FilePath: internal/models/models.schedule.go
package models

import (
	"regexp"
	"strings"
	"time"
)

const (
	// ClockLayout is the wall-clock form used by schedules (24h HH:MM)
	ClockLayout = "15:04"
	// DateLayout is the calendar-date form used for execution de-duplication
	DateLayout = "2006-01-02"
	// DefaultQuantity applies to records written before quantity existed
	DefaultQuantity = 1
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Schedule is one weekly dose: a supplement on a weekday at a wall-clock minute.
// Timestamp and LastExecutedAt are epoch milliseconds.
type Schedule struct {
	ID             string `json:"id"`
	Supplement     string `json:"supplement"`
	Day            string `json:"day"`
	Time           string `json:"time"`
	Quantity       int    `json:"quantity,omitempty"`
	Timestamp      int64  `json:"timestamp"`
	LastExecutedAt *int64 `json:"lastExecutedAt,omitempty"`
}

// EffectiveQuantity returns the configured quantity, or DefaultQuantity for legacy
// records without a positive value.
func (s Schedule) EffectiveQuantity() int {
	if s.Quantity > 0 {
		return s.Quantity
	}
	return DefaultQuantity
}

// ExecutedOn returns the target-zone date of the last dispatch, or "" if the
// schedule never fired.
func (s Schedule) ExecutedOn(loc *time.Location) string {
	if s.LastExecutedAt == nil {
		return ""
	}
	return time.UnixMilli(*s.LastExecutedAt).In(loc).Format(DateLayout)
}

// ScheduleInput is the create payload. One schedule is created per entry in Days
// (or for Day when Days is empty).
type ScheduleInput struct {
	ID         string   `json:"id,omitempty"`
	Supplement string   `json:"supplement"`
	Day        string   `json:"day,omitempty"`
	Days       []string `json:"days,omitempty"`
	Time       string   `json:"time"`
	Quantity   *int     `json:"quantity,omitempty"`
}

// SelectedDays returns the requested days, Days taking precedence over Day.
func (in ScheduleInput) SelectedDays() []string {
	if len(in.Days) > 0 {
		return in.Days
	}
	if in.Day == "" {
		return nil
	}
	return []string{in.Day}
}

// SchedulePatch is a partial update; nil fields are left untouched.
type SchedulePatch struct {
	Supplement *string `json:"supplement,omitempty"`
	Day        *string `json:"day,omitempty"`
	Time       *string `json:"time,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p SchedulePatch) IsEmpty() bool {
	return p.Supplement == nil && p.Day == nil && p.Time == nil && p.Quantity == nil
}

// ValidClock reports whether s is a 24h HH:MM wall-clock time
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// CanonicalDay maps a weekday name in any letter case to its English canonical form
func CanonicalDay(s string) (string, bool) {
	wd, ok := ParseWeekday(s)
	if !ok {
		return "", false
	}
	return wd.String(), true
}

// ParseWeekday parses an English weekday name case-insensitively
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, true
		}
	}
	return time.Sunday, false
}
