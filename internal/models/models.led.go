// FilePath: internal/models/models.led.go
package models

import "time"

type LedState string

const (
	LedOn  LedState = "on"
	LedOff LedState = "off"
)

// Valid reports whether the state is on or off
func (s LedState) Valid() bool {
	return s == LedOn || s == LedOff
}

// LedCommand is the last commanded (not confirmed) indicator state
type LedCommand struct {
	State       LedState  `json:"state"`
	LastUpdated time.Time `json:"lastUpdated"`
}
