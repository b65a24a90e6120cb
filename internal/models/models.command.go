// FilePath: internal/models/models.command.go
package models

// DoseCommand is the actuation instruction for one due schedule occurrence.
// It is derived on every poll and never stored.
type DoseCommand struct {
	MotorID          int    `json:"motorId"`
	Rotations        int    `json:"rotations"`
	Supplement       string `json:"supplement"`
	ScheduleID       string `json:"scheduleId"`
	Quantity         int    `json:"quantity"`
	RotationsPerPill int    `json:"rotationsPerPill"`
}

// Poll statuses returned to the actuator
const (
	StatusNoSchedules = "no_schedules_configured"
	StatusNoMappings  = "no_mappings_configured"
	StatusNothingDue  = "no_command_due_or_already_executed"
	StatusDispatched  = "dispatched"
)

// PollStatus is the non-command response body of the motor-command endpoint
type PollStatus struct {
	Status      string `json:"status"`
	CheckedTime string `json:"checkedTime,omitempty"`
	CheckedDay  string `json:"checkedDay,omitempty"`
}

// QuantityReport is the remaining-units telemetry sent by the dispenser
type QuantityReport struct {
	SupplementName    string `schema:"supplementName"`
	RemainingQuantity string `schema:"remainingQuantity"`
}
