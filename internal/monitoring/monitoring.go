package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"
)

// Config holds monitoring configuration
type Config struct {
	MetricsPath string
}

// Service owns the metrics registry and the hub's counters
type Service struct {
	config   Config
	registry *prometheus.Registry

	polls          *prometheus.CounterVec
	dispatched     prometheus.Counter
	unmapped       prometheus.Counter
	persistFailure prometheus.Counter
	events         *prometheus.CounterVec
}

// NewService creates a new monitoring service with its own registry
func NewService(config Config) *Service {
	s := &Service{
		config:   config,
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pillhub_polls_total",
			Help: "Actuator polls by outcome status.",
		}, []string{"status"}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pillhub_doses_dispatched_total",
			Help: "Dose commands handed to the actuator.",
		}),
		unmapped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pillhub_unmapped_schedules_total",
			Help: "Due schedules skipped because their supplement has no motor mapping.",
		}),
		persistFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pillhub_marker_persist_failures_total",
			Help: "Polls whose execution markers could not be written.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pillhub_events_total",
			Help: "Cleanup and management events.",
		}, []string{"event"}),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.polls, s.dispatched, s.unmapped, s.persistFailure, s.events,
	)
	return s
}

// Registry exposes the registry for tests and extra collectors
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the registry in the Prometheus exposition format
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *Service) RecordPoll(status string) {
	s.polls.WithLabelValues(status).Inc()
}

func (s *Service) RecordDispatched(count int) {
	s.dispatched.Add(float64(count))
}

func (s *Service) RecordUnmapped(supplement string) {
	s.unmapped.Inc()
}

func (s *Service) RecordPersistFailure() {
	s.persistFailure.Inc()
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.events.WithLabelValues(eventName).Inc()
	nuts.L.Infof("[Monitoring] Event %s recorded with labels: %v", eventName, labels)
}
