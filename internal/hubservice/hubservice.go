package hubservice

import (
	"time"

	"github.com/itsatony/pillhub/internal/cleanup"
	"github.com/itsatony/pillhub/internal/dispenser"
	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Schedules   repository.ScheduleRepository
	Mappings    repository.MappingRepository
	Supplements repository.SupplementRepository
	Led         repository.LedRepository
	Users       repository.UserRepository
	Cleanup     *cleanup.CleanupService
	Dispenser   *dispenser.Dispenser

	clock      dispenser.Clock
	bcryptCost int
}

type Option func(*HubService)

// WithClock overrides the clock used for timestamps
func WithClock(c dispenser.Clock) Option {
	return func(s *HubService) { s.clock = c }
}

// WithBcryptCost sets the cost used when hashing passwords
func WithBcryptCost(cost int) Option {
	return func(s *HubService) { s.bcryptCost = cost }
}

// WithDispenser attaches the poll engine
func WithDispenser(d *dispenser.Dispenser) Option {
	return func(s *HubService) { s.Dispenser = d }
}

// New creates a new HubService instance
func New(
	schedules repository.ScheduleRepository,
	mappings repository.MappingRepository,
	supplements repository.SupplementRepository,
	led repository.LedRepository,
	users repository.UserRepository,
	opts ...Option,
) *HubService {
	svc := &HubService{
		Schedules:   schedules,
		Mappings:    mappings,
		Supplements: supplements,
		Led:         led,
		Users:       users,
		clock:       dispenser.SystemClock{},
		bcryptCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.Cleanup = cleanup.New(schedules, mappings)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Schedules == nil {
		return ErrMissingRepository("schedules")
	}
	if s.Mappings == nil {
		return ErrMissingRepository("mappings")
	}
	if s.Supplements == nil {
		return ErrMissingRepository("supplements")
	}
	if s.Led == nil {
		return ErrMissingRepository("led")
	}
	if s.Users == nil {
		return ErrMissingRepository("users")
	}
	if s.Dispenser == nil {
		return errors.NewInternalError("missing dispenser", nil)
	}
	return nil
}

func (s *HubService) now() time.Time {
	return s.clock.Now()
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
