// FilePath: internal/models/models.supplement.go
package models

import "regexp"

var supplementIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Supplement is a catalog entry. Name is the join key used by schedules and
// mappings. Quantity is the remaining unit count reported by the dispenser.
type Supplement struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity *int   `json:"quantity,omitempty"`
}

// ValidSupplementID reports whether id is alphanumeric with hyphens
func ValidSupplementID(id string) bool {
	return supplementIDPattern.MatchString(id)
}
