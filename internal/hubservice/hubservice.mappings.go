package hubservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

func (s *HubService) GetMappings(ctx context.Context) (models.Mappings, error) {
	return s.Mappings.Get(ctx)
}

// MergeMappings upserts the given entries. Each motor may serve one supplement.
func (s *HubService) MergeMappings(ctx context.Context, update models.Mappings) (models.Mappings, error) {
	if len(update) == 0 {
		return nil, errors.NewValidationError("mapping must contain at least one entry", nil)
	}
	for name, assignment := range update {
		if strings.TrimSpace(name) == "" {
			return nil, errors.NewValidationError("supplement name must not be empty", nil)
		}
		if assignment.MotorID < 0 {
			return nil, errors.NewValidationError(fmt.Sprintf("motor id for %s must not be negative", name), nil)
		}
		if assignment.RotationsPerPill < 0 {
			return nil, errors.NewValidationError(fmt.Sprintf("rotationsPerPill for %s must not be negative", name), nil)
		}
	}

	_, err := s.Mappings.Merge(ctx, update, func(existing models.Mappings) error {
		motors := make(map[int]string, len(update))
		for name, assignment := range update {
			if other, taken := motors[assignment.MotorID]; taken {
				return errors.NewConflictError(fmt.Sprintf("motor %d requested for both %s and %s", assignment.MotorID, other, name), nil)
			}
			motors[assignment.MotorID] = name
		}
		for name, assignment := range update {
			owner, taken := existing.SupplementForMotor(assignment.MotorID, name)
			if !taken {
				continue
			}
			if _, remapped := update[owner]; remapped && update[owner].MotorID != assignment.MotorID {
				continue
			}
			return errors.NewConflictError(fmt.Sprintf("motor %d is already assigned to %s", assignment.MotorID, owner), nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	nuts.L.Infof("[MappingService] Merged %d mapping(s)", len(update))
	return update, nil
}

func (s *HubService) DeleteMapping(ctx context.Context, supplement string) error {
	if err := s.Mappings.Delete(ctx, supplement); err != nil {
		return err
	}
	nuts.L.Infof("[MappingService] Deleted mapping for %s", supplement)
	return nil
}

func (s *HubService) ResetMappings(ctx context.Context) error {
	return s.Cleanup.ResetMappings(ctx)
}
