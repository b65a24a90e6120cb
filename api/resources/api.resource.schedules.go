// FilePath: api/resources/api.resource.schedules.go
package resources

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/hubservice"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ScheduleHandlers encapsulates the schedule-related HTTP handlers
type ScheduleHandlers struct {
	hubservice *hubservice.HubService
}

type scheduleListQuery struct {
	LastUpdated string `schema:"lastUpdated"`
}

type scheduleDeleteQuery struct {
	Supplement string `schema:"supplement"`
}

// @Summary List schedules
// @Description All schedules ordered by timestamp, optionally only those updated after lastUpdated
// @Tags schedules
// @Produce json
// @Param lastUpdated query int false "Epoch millis"
// @Success 200 {array} models.Schedule
// @Failure 400 {object} errors.APIError
// @Router /schedules [get]
func (h *ScheduleHandlers) ListSchedules(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var query scheduleListQuery
	if err := decodeQuery(r, &query); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	var since *int64
	if query.LastUpdated != "" {
		v, err := strconv.ParseInt(query.LastUpdated, 10, 64)
		if err != nil {
			respondWithError(w, errors.NewValidationError("invalid lastUpdated parameter, it must be a number", err).WithRequestID(requestID))
			return
		}
		since = &v
	}

	schedules, err := h.hubservice.ListSchedules(r.Context(), since)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to list schedules", requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, schedules)
}

// @Summary Get a schedule by ID
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} models.Schedule
// @Failure 404 {object} errors.APIError
// @Router /schedules/{id} [get]
func (h *ScheduleHandlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	schedule, err := h.hubservice.GetSchedule(r.Context(), id)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to get schedule", requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, schedule)
}

// @Summary Create schedules
// @Description Creates one schedule per selected day
// @Tags schedules
// @Accept json
// @Produce json
// @Param schedule body models.ScheduleInput true "Schedule details"
// @Success 201 {object} models.Schedule
// @Success 201 {array} models.Schedule
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /schedules [post]
// @Security BasicAuth
func (h *ScheduleHandlers) CreateSchedules(w http.ResponseWriter, r *http.Request) {
	var input models.ScheduleInput
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	created, err := h.hubservice.CreateSchedules(r.Context(), input)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to create schedule", requestID))
		return
	}

	if len(created) == 1 {
		respondWithJSON(w, http.StatusCreated, created[0])
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// @Summary Update a schedule
// @Description Partial update of supplement, day, time or quantity
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param patch body models.SchedulePatch true "Fields to change"
// @Success 200 {object} models.Schedule
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /schedules/{id} [put]
// @Security BasicAuth
func (h *ScheduleHandlers) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	var patch models.SchedulePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	updated, err := h.hubservice.UpdateSchedule(r.Context(), id, patch)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to update schedule", requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// @Summary Delete a schedule
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.APIError
// @Router /schedules/{id} [delete]
// @Security BasicAuth
func (h *ScheduleHandlers) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	if err := h.hubservice.DeleteSchedule(r.Context(), id); err != nil {
		respondWithError(w, serviceError(err, "failed to delete schedule", requestID))
		return
	}

	respondWithMessage(w, http.StatusOK, "schedule deleted")
}

// @Summary Delete all schedules of a supplement
// @Tags schedules
// @Produce json
// @Param supplement query string true "Supplement name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.APIError
// @Router /schedules [delete]
// @Security BasicAuth
func (h *ScheduleHandlers) DeleteSchedulesForSupplement(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var query scheduleDeleteQuery
	if err := decodeQuery(r, &query); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	removed, err := h.hubservice.DeleteSchedulesForSupplement(r.Context(), query.Supplement)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to delete schedules", requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("deleted %d schedule(s) for %s", removed, query.Supplement),
		"deleted": removed,
	})
}
