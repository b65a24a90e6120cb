// FilePath: internal/dispenser/command.go
package dispenser

import "github.com/itsatony/pillhub/internal/models"

// DefaultRotationsPerPill applies when neither the mapping nor configuration set one
const DefaultRotationsPerPill = 1

// BuildCommand resolves the motor for s and computes the rotation count. It
// returns false when the supplement has no mapping.
func BuildCommand(s models.Schedule, mappings models.Mappings, rotationsPerPill int) (*models.DoseCommand, bool) {
	assignment, ok := mappings.Lookup(s.Supplement)
	if !ok {
		return nil, false
	}

	perPill := rotationsPerPill
	if assignment.RotationsPerPill > 0 {
		perPill = assignment.RotationsPerPill
	}
	if perPill <= 0 {
		perPill = DefaultRotationsPerPill
	}

	quantity := s.EffectiveQuantity()
	return &models.DoseCommand{
		MotorID:          assignment.MotorID,
		Rotations:        quantity * perPill,
		Supplement:       s.Supplement,
		ScheduleID:       s.ID,
		Quantity:         quantity,
		RotationsPerPill: perPill,
	}, true
}
