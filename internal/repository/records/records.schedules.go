// FilePath: internal/repository/records/records.schedules.go
package records

import (
	"context"
	"fmt"
	"time"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
)

type ScheduleRepo struct {
	doc *document
}

var _ repository.ScheduleRepository = (*ScheduleRepo)(nil)

func NewScheduleRepo(store repository.RecordStore) *ScheduleRepo {
	return &ScheduleRepo{doc: newDocument(store, repository.KindSchedules)}
}

func (r *ScheduleRepo) load(ctx context.Context) ([]models.Schedule, error) {
	schedules := []models.Schedule{}
	if err := r.doc.read(ctx, &schedules); err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	return schedules, nil
}

// List returns the schedules in storage order
func (r *ScheduleRepo) List(ctx context.Context) ([]models.Schedule, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.load(ctx)
}

func (r *ScheduleRepo) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedules, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		if schedules[i].ID == id {
			return &schedules[i], nil
		}
	}
	return nil, errors.NewNotFoundError("schedule not found", fmt.Errorf("schedule %s", id))
}

// Create appends schedules. Ids must be unique across stored and new records.
func (r *ScheduleRepo) Create(ctx context.Context, created ...models.Schedule) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	schedules, err := r.load(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(schedules)+len(created))
	for _, s := range schedules {
		seen[s.ID] = struct{}{}
	}
	for _, s := range created {
		if _, dup := seen[s.ID]; dup {
			return errors.NewConflictError("schedule id already exists", fmt.Errorf("schedule %s", s.ID))
		}
		seen[s.ID] = struct{}{}
	}
	return r.doc.write(ctx, append(schedules, created...))
}

// Update applies fn to the stored schedule and writes the result. An error from
// fn aborts the write.
func (r *ScheduleRepo) Update(ctx context.Context, id string, apply func(*models.Schedule) error) (*models.Schedule, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	schedules, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		if schedules[i].ID != id {
			continue
		}
		updated := schedules[i]
		if err := apply(&updated); err != nil {
			return nil, err
		}
		updated.ID = id
		schedules[i] = updated
		if err := r.doc.write(ctx, schedules); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, errors.NewNotFoundError("schedule not found", fmt.Errorf("schedule %s", id))
}

func (r *ScheduleRepo) Delete(ctx context.Context, id string) error {
	n, err := r.DeleteWhere(ctx, func(s models.Schedule) bool { return s.ID == id })
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NewNotFoundError("schedule not found", fmt.Errorf("schedule %s", id))
	}
	return nil
}

// DeleteWhere removes every schedule for which match returns true
func (r *ScheduleRepo) DeleteWhere(ctx context.Context, match func(models.Schedule) bool) (int, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	schedules, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]models.Schedule, 0, len(schedules))
	for _, s := range schedules {
		if !match(s) {
			kept = append(kept, s)
		}
	}
	removed := len(schedules) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := r.doc.write(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// SetLastExecuted stamps lastExecutedAt on the given schedules in a single write.
// Ids that no longer exist are ignored.
func (r *ScheduleRepo) SetLastExecuted(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	schedules, err := r.load(ctx)
	if err != nil {
		return err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	millis := at.UnixMilli()
	changed := false
	for i := range schedules {
		if _, ok := wanted[schedules[i].ID]; ok {
			stamp := millis
			schedules[i].LastExecutedAt = &stamp
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.doc.write(ctx, schedules)
}
