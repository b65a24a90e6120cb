package cleanup

import (
	"context"
	"fmt"

	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Cleanup events
const (
	EventSchedulesDeleted = "schedules.deleted"
	EventMappingsReset    = "mappings.reset"
)

// CleanupService performs bulk removals and announces them as events
type CleanupService struct {
	schedules repository.ScheduleRepository
	mappings  repository.MappingRepository
	events    *nuts.EventEmitter
}

// New creates a new CleanupService
func New(schedules repository.ScheduleRepository, mappings repository.MappingRepository) *CleanupService {
	return &CleanupService{
		schedules: schedules,
		mappings:  mappings,
		events:    nuts.NewEventEmitter(),
	}
}

// DeleteSchedulesForSupplement removes every schedule of the named supplement
func (s *CleanupService) DeleteSchedulesForSupplement(ctx context.Context, supplement string) (int, error) {
	removed, err := s.schedules.DeleteWhere(ctx, func(sch models.Schedule) bool {
		return sch.Supplement == supplement
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete schedules: %w", err)
	}

	// Emit event after successful deletion
	if removed > 0 {
		s.emit(EventSchedulesDeleted, supplement)
	}
	return removed, nil
}

// ResetMappings clears the whole supplement to motor mapping
func (s *CleanupService) ResetMappings(ctx context.Context) error {
	if err := s.mappings.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset mappings: %w", err)
	}
	s.emit(EventMappingsReset, "all")
	return nil
}

// OnCleanup registers a callback for cleanup events. The emitter matches
// arguments against the listener's parameter types, so the listener takes the id directly.
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	if _, err := s.events.On(event, nuts.NID("hdl", 8), handler); err != nil {
		nuts.L.Warnf("[Cleanup] Failed to register handler for %s: %v", event, err)
	}
}

// emit announces an event; a failed delivery never undoes the removal
func (s *CleanupService) emit(event, id string) {
	if err := s.events.Emit(event, id); err != nil {
		nuts.L.Warnf("[Cleanup] Failed to emit %s for %s: %v", event, id, err)
	}
}
