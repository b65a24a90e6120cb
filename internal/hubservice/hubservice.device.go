package hubservice

import (
	"context"
	"strconv"
	"strings"

	"github.com/itsatony/pillhub/internal/dispenser"
	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// PollCommands runs one actuator poll
func (s *HubService) PollCommands(ctx context.Context) (*dispenser.PollResult, error) {
	return s.Dispenser.Poll(ctx)
}

// ReportQuantity records the remaining units the dispenser counted
func (s *HubService) ReportQuantity(ctx context.Context, report models.QuantityReport) (int, error) {
	name := strings.TrimSpace(report.SupplementName)
	if name == "" || report.RemainingQuantity == "" {
		return 0, errors.NewValidationError("supplementName and remainingQuantity are required", nil)
	}
	remaining, err := strconv.Atoi(strings.TrimSpace(report.RemainingQuantity))
	if err != nil {
		return 0, errors.NewValidationError("remainingQuantity must be an integer", err)
	}
	if err := s.Supplements.UpdateQuantity(ctx, name, remaining); err != nil {
		if errors.IsNotFound(err) {
			nuts.L.Warnf("[DeviceService] Quantity report for unknown supplement %s", name)
		}
		return 0, err
	}
	nuts.L.Infof("[DeviceService] %s remaining quantity is %d", name, remaining)
	return remaining, nil
}

// LedState returns the commanded LED state. Unreadable or invalid stored state
// reads as off.
func (s *HubService) LedState(ctx context.Context, reported string) models.LedState {
	if reported != "" {
		nuts.L.Infof("[DeviceService] Dispenser reports LED %s", reported)
	}
	cmd, err := s.Led.Get(ctx)
	if err != nil {
		nuts.L.Warnf("[DeviceService] Reading LED state failed, sending off: %v", err)
		return models.LedOff
	}
	if cmd == nil || !cmd.State.Valid() {
		return models.LedOff
	}
	return cmd.State
}

func (s *HubService) SetLedState(ctx context.Context, state models.LedState) (*models.LedCommand, error) {
	if !state.Valid() {
		return nil, errors.NewValidationError(`state must be "on" or "off"`, nil)
	}
	cmd := models.LedCommand{State: state, LastUpdated: s.now().UTC()}
	if err := s.Led.Set(ctx, cmd); err != nil {
		return nil, err
	}
	nuts.L.Infof("[DeviceService] LED command set to %s", state)
	return &cmd, nil
}
