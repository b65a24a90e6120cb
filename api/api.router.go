package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/itsatony/pillhub/api/middleware"
	"github.com/itsatony/pillhub/api/resources"
	"github.com/itsatony/pillhub/internal/hubservice"
)

// RouterConfig selects the optional parts of the route table
type RouterConfig struct {
	AuthEnabled bool
	MetricsPath string
}

type Router struct {
	router    *mux.Router
	auth      *middleware.BasicAuthMiddleware
	resources *resources.Resources
	config    RouterConfig
}

func NewRouter(svc *hubservice.HubService, res *resources.Resources, cfg RouterConfig) *Router {
	if res == nil {
		res = resources.NewResources(svc)
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewBasicAuthMiddleware(svc, "pillhub"),
		resources: res,
		config:    cfg,
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.router.HandleFunc(r.config.MetricsPath, r.resources.Metrics).Methods(http.MethodGet)

	api := r.router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	// Dispenser firmware
	esp32 := api.PathPrefix("/esp32").Subrouter()
	esp32.HandleFunc("/motor-command", r.resources.Device.MotorCommand).Methods(http.MethodGet)
	esp32.HandleFunc("/led", r.resources.Device.GetLed).Methods(http.MethodGet)
	esp32.HandleFunc("/led", r.resources.Device.SetLed).Methods(http.MethodPost)
	esp32.HandleFunc("/quantity", r.resources.Device.ReportQuantity).Methods(http.MethodGet)

	// Auth
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.resources.Auth.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.resources.Auth.Login).Methods(http.MethodPost)

	// Management routes
	protected := api.PathPrefix("").Subrouter()
	if r.config.AuthEnabled {
		protected.Use(r.auth.Authenticate)
	}

	// Schedules
	schedules := protected.PathPrefix("/schedules").Subrouter()
	schedules.HandleFunc("", r.resources.Schedules.ListSchedules).Methods(http.MethodGet)
	schedules.HandleFunc("", r.resources.Schedules.CreateSchedules).Methods(http.MethodPost)
	schedules.HandleFunc("", r.resources.Schedules.DeleteSchedulesForSupplement).Methods(http.MethodDelete)
	schedules.HandleFunc("/{id}", r.resources.Schedules.GetSchedule).Methods(http.MethodGet)
	schedules.HandleFunc("/{id}", r.resources.Schedules.UpdateSchedule).Methods(http.MethodPut)
	schedules.HandleFunc("/{id}", r.resources.Schedules.DeleteSchedule).Methods(http.MethodDelete)

	// Mappings
	mappings := protected.PathPrefix("/dispenser-mapping").Subrouter()
	mappings.HandleFunc("", r.resources.Mappings.GetMappings).Methods(http.MethodGet)
	mappings.HandleFunc("", r.resources.Mappings.MergeMappings).Methods(http.MethodPost)
	mappings.HandleFunc("", r.resources.Mappings.DeleteMappings).Methods(http.MethodDelete)

	// Supplements
	supplements := protected.PathPrefix("/supplements").Subrouter()
	supplements.HandleFunc("", r.resources.Supplements.ListSupplements).Methods(http.MethodGet)
	supplements.HandleFunc("", r.resources.Supplements.CreateSupplement).Methods(http.MethodPost)
	supplements.HandleFunc("", r.resources.Supplements.DeleteSupplement).Methods(http.MethodDelete)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
