// FilePath: api/resources/api.resource.device.go
package resources

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/hubservice"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers serves the endpoints polled by the dispenser firmware
type DeviceHandlers struct {
	hubservice *hubservice.HubService
}

type ledQuery struct {
	CurrentState string `schema:"currentState"`
}

type ledRequest struct {
	State models.LedState `json:"state"`
}

// @Summary Poll due dose commands
// @Description Returns the dose commands due now, or a status object when nothing is due
// @Tags esp32
// @Produce json
// @Success 200 {array} models.DoseCommand
// @Success 200 {object} models.PollStatus
// @Failure 500 {object} map[string]string
// @Router /esp32/motor-command [get]
func (h *DeviceHandlers) MotorCommand(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	result, err := h.hubservice.PollCommands(r.Context())
	if err != nil {
		respondWithDeviceError(w, errors.NewInternalError("failed to compute motor commands", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, result.Body())
}

// @Summary Get LED command
// @Description Returns the commanded LED state; the reported state is only logged
// @Tags esp32
// @Produce json
// @Param currentState query string false "State observed by the dispenser"
// @Success 200 {object} map[string]string
// @Router /esp32/led [get]
func (h *DeviceHandlers) GetLed(w http.ResponseWriter, r *http.Request) {
	var query ledQuery
	if err := decodeQuery(r, &query); err != nil {
		nuts.L.Warnf("[API] Ignoring malformed LED query: %v", err)
	}

	state := h.hubservice.LedState(r.Context(), query.CurrentState)
	respondWithJSON(w, http.StatusOK, map[string]models.LedState{"state": state})
}

// @Summary Set LED command
// @Tags esp32
// @Accept json
// @Produce json
// @Param body body ledRequest true "Desired state (on|off)"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /esp32/led [post]
func (h *DeviceHandlers) SetLed(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var body ledRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	cmd, err := h.hubservice.SetLedState(r.Context(), body.State)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to set LED state", requestID))
		return
	}

	respondWithMessage(w, http.StatusOK, fmt.Sprintf("LED state command set to %s", cmd.State))
}

// @Summary Report remaining quantity
// @Description Dispenser telemetry: remaining units for one supplement
// @Tags esp32
// @Produce json
// @Param supplementName query string true "Supplement name"
// @Param remainingQuantity query int true "Remaining units"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /esp32/quantity [get]
func (h *DeviceHandlers) ReportQuantity(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var report models.QuantityReport
	if err := decodeQuery(r, &report); err != nil {
		respondWithDeviceError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	remaining, err := h.hubservice.ReportQuantity(r.Context(), report)
	if err != nil {
		respondWithDeviceError(w, serviceError(err, "failed to update quantity", requestID))
		return
	}

	respondWithMessage(w, http.StatusOK, fmt.Sprintf("Successfully updated %s quantity to %d.", report.SupplementName, remaining))
}
