package hubservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

func (s *HubService) ListSupplements(ctx context.Context) ([]models.Supplement, error) {
	return s.Supplements.List(ctx)
}

func (s *HubService) CreateSupplement(ctx context.Context, supplement models.Supplement) (*models.Supplement, error) {
	supplement.ID = strings.TrimSpace(supplement.ID)
	supplement.Name = strings.TrimSpace(supplement.Name)
	if supplement.ID == "" || supplement.Name == "" {
		return nil, errors.NewValidationError("id and name are required", nil)
	}
	if !models.ValidSupplementID(supplement.ID) {
		return nil, errors.NewValidationError("id may only contain letters, digits and hyphens", nil)
	}
	if supplement.Quantity != nil && *supplement.Quantity < 0 {
		return nil, errors.NewValidationError("quantity must not be negative", nil)
	}

	if err := s.Supplements.Create(ctx, supplement); err != nil {
		return nil, err
	}
	nuts.L.Infof("[SupplementService] Created supplement %s (%s)", supplement.Name, supplement.ID)
	return &supplement, nil
}

// DeleteSupplement removes a catalog entry unless a schedule or mapping still
// refers to it by id or name.
func (s *HubService) DeleteSupplement(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationError("supplement id is required", nil)
	}
	supplements, err := s.Supplements.List(ctx)
	if err != nil {
		return err
	}
	var target *models.Supplement
	for i := range supplements {
		if supplements[i].ID == id {
			target = &supplements[i]
			break
		}
	}
	if target == nil {
		return errors.NewNotFoundError("supplement not found", fmt.Errorf("supplement %s", id))
	}

	refersTo := func(key string) bool { return key == target.ID || key == target.Name }

	schedules, err := s.Schedules.List(ctx)
	if err != nil {
		return err
	}
	for _, sch := range schedules {
		if refersTo(sch.Supplement) {
			return errors.NewConflictError("supplement is used by a schedule", nil).WithDetails(map[string]string{"scheduleId": sch.ID})
		}
	}

	mappings, err := s.Mappings.Get(ctx)
	if err != nil {
		return err
	}
	for name := range mappings {
		if refersTo(name) {
			return errors.NewConflictError("supplement is mapped to a motor", nil).WithDetails(map[string]string{"mapping": name})
		}
	}

	if err := s.Supplements.Delete(ctx, id); err != nil {
		return err
	}
	nuts.L.Infof("[SupplementService] Deleted supplement %s (%s)", target.Name, id)
	return nil
}
