// FilePath: api/resources/api.resource.auth.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/hubservice"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// AuthHandlers serves UI registration and login
type AuthHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Register a UI user
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.Credentials true "Username and password"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /auth/register [post]
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.Register(r.Context(), creds); err != nil {
		respondWithError(w, serviceError(err, "failed to register user", requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"username": creds.Username})
}

// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.Credentials true "Username and password"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.APIError
// @Router /auth/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	user, err := h.hubservice.Authenticate(r.Context(), creds)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to log in", requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}
