// FilePath: api/resources/api.resource.supplements.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/hubservice"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// SupplementHandlers encapsulates the catalog handlers
type SupplementHandlers struct {
	hubservice *hubservice.HubService
}

type supplementDeleteQuery struct {
	ID string `schema:"id"`
}

// @Summary List supplements
// @Tags supplements
// @Produce json
// @Success 200 {array} models.Supplement
// @Router /supplements [get]
func (h *SupplementHandlers) ListSupplements(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	supplements, err := h.hubservice.ListSupplements(r.Context())
	if err != nil {
		respondWithError(w, serviceError(err, "failed to list supplements", requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, supplements)
}

// @Summary Create a supplement
// @Tags supplements
// @Accept json
// @Produce json
// @Param supplement body models.Supplement true "Catalog entry"
// @Success 201 {object} models.Supplement
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /supplements [post]
// @Security BasicAuth
func (h *SupplementHandlers) CreateSupplement(w http.ResponseWriter, r *http.Request) {
	var supplement models.Supplement
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&supplement); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	created, err := h.hubservice.CreateSupplement(r.Context(), supplement)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to create supplement", requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// @Summary Delete a supplement
// @Description Blocked while a schedule or mapping refers to it
// @Tags supplements
// @Produce json
// @Param id query string true "Supplement ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /supplements [delete]
// @Security BasicAuth
func (h *SupplementHandlers) DeleteSupplement(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var query supplementDeleteQuery
	if err := decodeQuery(r, &query); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.DeleteSupplement(r.Context(), query.ID); err != nil {
		respondWithError(w, serviceError(err, "failed to delete supplement", requestID))
		return
	}

	respondWithMessage(w, http.StatusOK, "supplement deleted")
}
