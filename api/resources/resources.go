// FilePath: api/resources/resources.go
package resources

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Resources holds all HTTP resource handlers
type Resources struct {
	Device      *DeviceHandlers
	Schedules   *ScheduleHandlers
	Mappings    *MappingHandlers
	Supplements *SupplementHandlers
	Auth        *AuthHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService) *Resources {
	return &Resources{
		Device:      &DeviceHandlers{hubservice: svc},
		Schedules:   &ScheduleHandlers{hubservice: svc},
		Mappings:    &MappingHandlers{hubservice: svc},
		Supplements: &SupplementHandlers{hubservice: svc},
		Auth:        &AuthHandlers{hubservice: svc},
		HealthCheck: HealthHandler(nil),
		Metrics:     http.NotFound,
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}

// @Summary Health check
// @Description Reports service status, version and store reachability
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func HealthHandler(store Pinger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok", "version": nuts.GetVersion()}
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				nuts.L.Warnf("[API] Health check: store unreachable: %v", err)
				body["status"] = "degraded"
				respondWithJSON(w, http.StatusServiceUnavailable, body)
				return
			}
		}
		respondWithJSON(w, http.StatusOK, body)
	}
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func decodeQuery(r *http.Request, dst interface{}) error {
	return queryDecoder.Decode(dst, r.URL.Query())
}

// serviceError keeps classified service errors and wraps everything else as
// an internal error with msg.
func serviceError(err error, msg, requestID string) *errors.APIError {
	return errors.Wrap(err, msg).WithRequestID(requestID)
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	if err.Code >= http.StatusInternalServerError {
		nuts.L.Errorf("[API] %s", err.Error())
		return
	}
	nuts.L.Warnf("[API] %s", err.Error())
}

// respondWithDeviceError renders the flat {error, details} body the dispenser firmware parses
func respondWithDeviceError(w http.ResponseWriter, err *errors.APIError) {
	nuts.L.Errorf("[API] %s", err.Error())
	respondWithJSON(w, err.Code, map[string]string{
		"error":   err.Message,
		"details": err.Cause(),
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"message": message})
}
