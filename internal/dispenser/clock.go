// FilePath: internal/dispenser/clock.go
package dispenser

import (
	"time"

	"github.com/itsatony/pillhub/internal/models"
)

// Clock supplies "now" to the poll path
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// TargetMoment is one instant expressed in the target zone
type TargetMoment struct {
	Day  string
	Time string
	Date string
}

// Moment renders now as weekday, HH:MM and YYYY-MM-DD in loc
func Moment(now time.Time, loc *time.Location) TargetMoment {
	local := now.In(loc)
	return TargetMoment{
		Day:  local.Weekday().String(),
		Time: local.Format(models.ClockLayout),
		Date: local.Format(models.DateLayout),
	}
}
