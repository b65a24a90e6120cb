// FilePath: api/resources/api.resource.mappings.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/hubservice"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// MappingHandlers encapsulates the supplement to motor mapping handlers
type MappingHandlers struct {
	hubservice *hubservice.HubService
}

type mappingDeleteQuery struct {
	SupplementName string `schema:"supplementName"`
}

// @Summary Get the dispenser mapping
// @Tags mappings
// @Produce json
// @Success 200 {object} models.Mappings
// @Router /dispenser-mapping [get]
func (h *MappingHandlers) GetMappings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	mappings, err := h.hubservice.GetMappings(r.Context())
	if err != nil {
		respondWithError(w, serviceError(err, "failed to read mappings", requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, mappings)
}

// @Summary Merge mapping entries
// @Description Values are a motor id or {motorId, rotationsPerPill}
// @Tags mappings
// @Accept json
// @Produce json
// @Param mapping body models.Mappings true "Entries to upsert"
// @Success 201 {object} models.Mappings
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /dispenser-mapping [post]
// @Security BasicAuth
func (h *MappingHandlers) MergeMappings(w http.ResponseWriter, r *http.Request) {
	var update models.Mappings
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	posted, err := h.hubservice.MergeMappings(r.Context(), update)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to save mapping", requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, posted)
}

// @Summary Delete one mapping or reset all
// @Tags mappings
// @Produce json
// @Param supplementName query string false "Supplement to unmap; omit to reset"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.APIError
// @Router /dispenser-mapping [delete]
// @Security BasicAuth
func (h *MappingHandlers) DeleteMappings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var query mappingDeleteQuery
	if err := decodeQuery(r, &query); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	if query.SupplementName == "" {
		if err := h.hubservice.ResetMappings(r.Context()); err != nil {
			respondWithError(w, serviceError(err, "failed to reset mappings", requestID))
			return
		}
		respondWithMessage(w, http.StatusOK, "all mappings reset")
		return
	}

	if err := h.hubservice.DeleteMapping(r.Context(), query.SupplementName); err != nil {
		respondWithError(w, serviceError(err, "failed to delete mapping", requestID))
		return
	}
	respondWithMessage(w, http.StatusOK, "mapping for "+query.SupplementName+" deleted")
}
