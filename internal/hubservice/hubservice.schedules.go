package hubservice

import (
	"context"
	"sort"
	"strings"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ListSchedules returns all schedules ordered by timestamp. With since set only
// schedules updated after it are returned.
func (s *HubService) ListSchedules(ctx context.Context, since *int64) ([]models.Schedule, error) {
	schedules, err := s.Schedules.List(ctx)
	if err != nil {
		return nil, err
	}
	if since != nil {
		filtered := make([]models.Schedule, 0, len(schedules))
		for _, sch := range schedules {
			if sch.Timestamp > *since {
				filtered = append(filtered, sch)
			}
		}
		schedules = filtered
	}
	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].Timestamp < schedules[j].Timestamp
	})
	return schedules, nil
}

func (s *HubService) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	return s.Schedules.Get(ctx, id)
}

// CreateSchedules creates one schedule per selected day. Nothing is written when
// any field is invalid.
func (s *HubService) CreateSchedules(ctx context.Context, in models.ScheduleInput) ([]models.Schedule, error) {
	supplement := strings.TrimSpace(in.Supplement)
	if supplement == "" {
		return nil, errors.NewValidationError("supplement is required", nil)
	}
	if !models.ValidClock(in.Time) {
		return nil, errors.NewValidationError("time must be HH:MM", nil)
	}
	quantity := models.DefaultQuantity
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, errors.NewValidationError("quantity must be a positive integer", nil)
		}
		quantity = *in.Quantity
	}

	days := in.SelectedDays()
	if len(days) == 0 {
		return nil, errors.NewValidationError("at least one day is required", nil)
	}
	if in.ID != "" && len(days) > 1 {
		return nil, errors.NewValidationError("id can only be supplied for a single day", nil)
	}

	timestamp := s.now().UnixMilli()
	created := make([]models.Schedule, 0, len(days))
	seen := make(map[string]struct{}, len(days))
	for _, raw := range days {
		day, ok := models.CanonicalDay(raw)
		if !ok {
			return nil, errors.NewValidationError("invalid day: "+raw, nil)
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}

		id := in.ID
		if id == "" {
			id = nuts.NID("sch", 12)
		}
		created = append(created, models.Schedule{
			ID:         id,
			Supplement: supplement,
			Day:        day,
			Time:       in.Time,
			Quantity:   quantity,
			Timestamp:  timestamp,
		})
	}

	if err := s.Schedules.Create(ctx, created...); err != nil {
		return nil, err
	}
	nuts.L.Infof("[ScheduleService] Created %d schedule(s) for %s at %s", len(created), supplement, in.Time)
	return created, nil
}

// UpdateSchedule applies a partial update and refreshes the timestamp. The
// execution marker is never touched here.
func (s *HubService) UpdateSchedule(ctx context.Context, id string, patch models.SchedulePatch) (*models.Schedule, error) {
	if patch.IsEmpty() {
		return nil, errors.NewValidationError("no fields to update", nil)
	}
	timestamp := s.now().UnixMilli()

	updated, err := s.Schedules.Update(ctx, id, func(sch *models.Schedule) error {
		if patch.Supplement != nil {
			supplement := strings.TrimSpace(*patch.Supplement)
			if supplement == "" {
				return errors.NewValidationError("supplement must not be empty", nil)
			}
			sch.Supplement = supplement
		}
		if patch.Day != nil {
			day, ok := models.CanonicalDay(*patch.Day)
			if !ok {
				return errors.NewValidationError("invalid day: "+*patch.Day, nil)
			}
			sch.Day = day
		}
		if patch.Time != nil {
			if !models.ValidClock(*patch.Time) {
				return errors.NewValidationError("time must be HH:MM", nil)
			}
			sch.Time = *patch.Time
		}
		if patch.Quantity != nil {
			if *patch.Quantity <= 0 {
				return errors.NewValidationError("quantity must be a positive integer", nil)
			}
			sch.Quantity = *patch.Quantity
		}
		sch.Timestamp = timestamp
		return nil
	})
	if err != nil {
		return nil, err
	}
	nuts.L.Infof("[ScheduleService] Updated schedule %s", id)
	return updated, nil
}

func (s *HubService) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.Schedules.Delete(ctx, id); err != nil {
		return err
	}
	nuts.L.Infof("[ScheduleService] Deleted schedule %s", id)
	return nil
}

// DeleteSchedulesForSupplement removes all schedules of one supplement
func (s *HubService) DeleteSchedulesForSupplement(ctx context.Context, supplement string) (int, error) {
	if strings.TrimSpace(supplement) == "" {
		return 0, errors.NewValidationError("supplement is required", nil)
	}
	return s.Cleanup.DeleteSchedulesForSupplement(ctx, supplement)
}
