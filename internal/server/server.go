package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/itsatony/pillhub/api"
	"github.com/itsatony/pillhub/api/resources"
	"github.com/itsatony/pillhub/internal/cleanup"
	"github.com/itsatony/pillhub/internal/config"
	"github.com/itsatony/pillhub/internal/database"
	"github.com/itsatony/pillhub/internal/dispenser"
	"github.com/itsatony/pillhub/internal/hubservice"
	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/monitoring"
	"github.com/itsatony/pillhub/internal/repository"
	"github.com/itsatony/pillhub/internal/repository/files"
	"github.com/itsatony/pillhub/internal/repository/memory"
	"github.com/itsatony/pillhub/internal/repository/postgres"
	"github.com/itsatony/pillhub/internal/repository/records"
	"github.com/itsatony/pillhub/internal/repository/redis"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	store      repository.RecordStore
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config: cfg,
		srv:    srv,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	handler, err := s.initialize(ctx)
	cancel()
	if err != nil {
		return err
	}
	s.srv.Handler = handler

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// initialize wires storage, services and routes and returns the root handler
func (s *Server) initialize(ctx context.Context) (http.Handler, error) {
	loc, err := s.config.Dispenser.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid dispenser timezone: %w", err)
	}

	store, ledger, err := openStore(ctx, s.config)
	if err != nil {
		return nil, err
	}
	s.store = store

	s.monitoring = monitoring.NewService(monitoring.Config{
		MetricsPath: s.config.Monitoring.MetricsPath,
	})
	s.hubservice = initializeHubService(s.config, store, ledger, loc, s.monitoring)
	if err := s.hubservice.Validate(); err != nil {
		return nil, err
	}

	// Set up cleanup event handlers
	s.setupCleanupHandlers()

	res := resources.NewResources(s.hubservice)
	res.SetHealthCheck(resources.HealthHandler(store))
	res.SetMetrics(s.monitoring.Handler().ServeHTTP)

	router := api.NewRouter(s.hubservice, res, api.RouterConfig{
		AuthEnabled: s.config.Auth.Enabled,
		MetricsPath: s.config.Monitoring.MetricsPath,
	})

	nuts.L.Infof("[Server] Store driver %s, target zone %s, auth enabled: %t", s.config.Store.Driver, loc, s.config.Auth.Enabled)
	return s.wrapHandler(router), nil
}

func (s *Server) wrapHandler(h http.Handler) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.config.CORS.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		cors(handlers.LoggingHandler(os.Stdout, h)),
	)
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if err := s.store.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing store: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) setupCleanupHandlers() {
	// Handle bulk schedule deletion events
	s.hubservice.Cleanup.OnCleanup(cleanup.EventSchedulesDeleted, func(id string) {
		nuts.L.Infof("[Cleanup] All schedules for supplement %s deleted", id)
		s.monitoring.RecordEvent(cleanup.EventSchedulesDeleted, map[string]string{
			"supplement": id,
		})
	})

	// Handle mapping reset events
	s.hubservice.Cleanup.OnCleanup(cleanup.EventMappingsReset, func(id string) {
		nuts.L.Infof("[Cleanup] Dispenser mapping reset")
		s.monitoring.RecordEvent(cleanup.EventMappingsReset, map[string]string{
			"scope": id,
		})
	})
}

// initializeHubService creates and configures the hub service
func initializeHubService(cfg *config.Config, store repository.RecordStore, ledger repository.ExecutionLedger, loc *time.Location, recorder dispenser.Recorder) *hubservice.HubService {
	repos := records.New(store)

	engine := dispenser.New(repos.Schedules, repos.Mappings, ledger, dispenser.Config{
		Location:         loc,
		RotationsPerPill: cfg.Dispenser.RotationsPerPill,
		MatchWindow:      cfg.Dispenser.MatchWindow,
		StoreTimeout:     cfg.Store.Timeout,
	}, dispenser.WithRecorder(recorder))

	return hubservice.New(repos.Schedules, repos.Mappings, repos.Supplements, repos.Led, repos.Users,
		hubservice.WithBcryptCost(cfg.Auth.BcryptCost),
		hubservice.WithDispenser(engine),
	)
}

// openStore returns the record store and execution ledger for the configured driver
func openStore(ctx context.Context, cfg *config.Config) (repository.RecordStore, repository.ExecutionLedger, error) {
	switch cfg.Store.Driver {
	case config.DriverFile:
		store, err := files.NewFileStore(files.FileConfig{BasePath: cfg.Store.BasePath})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		return store, memory.NewLedger(cfg.Redis.MarkerTTL), nil

	case config.DriverMemory:
		nuts.L.Warnf("[Server] Using in-memory store, data is lost on restart")
		return memory.NewStore(), memory.NewLedger(cfg.Redis.MarkerTTL), nil

	case config.DriverRedis:
		store, err := redis.NewStore(ctx, redis.Config{
			Host:      cfg.Redis.Host,
			Port:      cfg.Redis.Port,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			MarkerTTL: cfg.Redis.MarkerTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	case config.DriverPostgres:
		db := initAppDB(cfg.Database.Postgres)
		store, err := postgres.NewRecordStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		pruneExecutions(ctx, store)
		return store, store, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// pruneExecutions drops ledger rows older than yesterday; only today's rows guard dispatch
func pruneExecutions(ctx context.Context, store *postgres.RecordStore) {
	before := time.Now().UTC().AddDate(0, 0, -1).Format(models.DateLayout)
	removed, err := store.PruneExecutions(ctx, before)
	if err != nil {
		nuts.L.Warnf("[Server] Failed to prune execution ledger: %v", err)
		return
	}
	if removed > 0 {
		nuts.L.Infof("[Server] Pruned %d execution ledger rows before %s", removed, before)
	}
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to Postgres: %v", err)
	}
	// Set up connection timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping database: %v", err)
	}
	return wrappedDB
}
