// FilePath: internal/models/models.mapping.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// MotorAssignment binds a supplement to a dispenser motor. RotationsPerPill is
// optional; zero means "use the configured default".
type MotorAssignment struct {
	MotorID          int `json:"motorId"`
	RotationsPerPill int `json:"rotationsPerPill,omitempty"`
}

// UnmarshalJSON accepts both the canonical object form and the legacy bare motor id
// written by older mapping files ({"Vitamin C": 3}).
func (m *MotorAssignment) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var motorID int
		if err := json.Unmarshal(trimmed, &motorID); err != nil {
			return fmt.Errorf("motor assignment: %w", err)
		}
		*m = MotorAssignment{MotorID: motorID}
		return nil
	}
	type plain MotorAssignment
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return fmt.Errorf("motor assignment: %w", err)
	}
	*m = MotorAssignment(p)
	return nil
}

// Mappings is keyed by supplement name, matched by exact string equality.
type Mappings map[string]MotorAssignment

// Lookup returns the assignment for a supplement name
func (m Mappings) Lookup(supplement string) (MotorAssignment, bool) {
	a, ok := m[supplement]
	return a, ok
}

// SupplementForMotor returns the supplement currently bound to motorID, excluding
// the given name.
func (m Mappings) SupplementForMotor(motorID int, except string) (string, bool) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name != except && m[name].MotorID == motorID {
			return name, true
		}
	}
	return "", false
}
