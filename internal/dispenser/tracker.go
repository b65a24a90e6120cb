// FilePath: internal/dispenser/tracker.go
package dispenser

import (
	"context"
	"time"

	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// MarkExecuted returns s with lastExecutedAt set to now
func MarkExecuted(s models.Schedule, now time.Time) models.Schedule {
	stamp := now.UnixMilli()
	s.LastExecutedAt = &stamp
	return s
}

// Tracker records dispatches so a schedule fires at most once per target-zone day
type Tracker struct {
	ledger    repository.ExecutionLedger
	schedules repository.ScheduleRepository
}

// NewTracker creates a tracker. ledger may be nil, in which case only the
// lastExecutedAt marker de-duplicates.
func NewTracker(ledger repository.ExecutionLedger, schedules repository.ScheduleRepository) *Tracker {
	return &Tracker{ledger: ledger, schedules: schedules}
}

// Claim reserves the (schedule, date) pair. A ledger failure is logged and the
// claim is granted, preferring a possible duplicate over a missed dose.
func (t *Tracker) Claim(ctx context.Context, s models.Schedule, date string, at time.Time) bool {
	if t.ledger == nil {
		return true
	}
	ok, err := t.ledger.Claim(ctx, s.ID, date, at)
	if err != nil {
		nuts.L.Warnf("[Tracker] Ledger claim for schedule %s on %s failed, dispatching anyway: %v", s.ID, date, err)
		return true
	}
	if !ok {
		nuts.L.Infof("[Tracker] Schedule %s already dispatched on %s", s.ID, date)
	}
	return ok
}

// Persist writes lastExecutedAt for every dispatched schedule in one write
func (t *Tracker) Persist(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return t.schedules.SetLastExecuted(ctx, ids, at)
}
