// FilePath: internal/dispenser/dispenser.go
package dispenser

import (
	"context"
	"sync"
	"time"

	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Recorder receives poll outcomes; the monitoring service implements it
type Recorder interface {
	RecordPoll(status string)
	RecordDispatched(count int)
	RecordUnmapped(supplement string)
	RecordPersistFailure()
}

type noopRecorder struct{}

func (noopRecorder) RecordPoll(string)     {}
func (noopRecorder) RecordDispatched(int)  {}
func (noopRecorder) RecordUnmapped(string) {}
func (noopRecorder) RecordPersistFailure() {}

// Config holds the dispenser settings
type Config struct {
	Location         *time.Location
	RotationsPerPill int
	MatchWindow      time.Duration
	StoreTimeout     time.Duration
}

// PollResult is the outcome of one actuator poll
type PollResult struct {
	Status      string
	Commands    []models.DoseCommand
	CheckedTime string
	CheckedDay  string
}

// Body returns the JSON payload: the command list when something was dispatched,
// the status object otherwise.
func (r *PollResult) Body() any {
	if r.Status == models.StatusDispatched {
		return r.Commands
	}
	return models.PollStatus{Status: r.Status, CheckedTime: r.CheckedTime, CheckedDay: r.CheckedDay}
}

// Dispenser computes and dispatches due doses on each poll
type Dispenser struct {
	schedules repository.ScheduleRepository
	mappings  repository.MappingRepository
	tracker   *Tracker
	clock     Clock
	recorder  Recorder
	config    Config

	mu sync.Mutex
}

type Option func(*Dispenser)

func WithClock(c Clock) Option {
	return func(d *Dispenser) { d.clock = c }
}

func WithRecorder(r Recorder) Option {
	return func(d *Dispenser) {
		if r != nil {
			d.recorder = r
		}
	}
}

// New creates a dispenser. ledger may be nil.
func New(schedules repository.ScheduleRepository, mappings repository.MappingRepository, ledger repository.ExecutionLedger, cfg Config, opts ...Option) *Dispenser {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RotationsPerPill <= 0 {
		cfg.RotationsPerPill = DefaultRotationsPerPill
	}
	d := &Dispenser{
		schedules: schedules,
		mappings:  mappings,
		tracker:   NewTracker(ledger, schedules),
		clock:     SystemClock{},
		recorder:  noopRecorder{},
		config:    cfg,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Poll runs loading, evaluation, command building and marker persistence for one
// actuator request. Store failures degrade to empty data; the only error is a
// cancelled or expired ctx.
func (d *Dispenser) Poll(ctx context.Context) (*PollResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := d.clock.Now()
	moment := Moment(now, d.config.Location)

	schedules := d.loadSchedules(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return d.finish(&PollResult{Status: models.StatusNoSchedules}), nil
	}

	mappings := d.loadMappings(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(mappings) == 0 {
		return d.finish(&PollResult{Status: models.StatusNoMappings}), nil
	}

	due := FindDueSchedules(schedules, now, d.config.Location, d.config.MatchWindow)

	commands := make([]models.DoseCommand, 0, len(due))
	ids := make([]string, 0, len(due))
	for _, s := range due {
		cmd, ok := BuildCommand(s, mappings, d.config.RotationsPerPill)
		if !ok {
			nuts.L.Warnf("[Dispenser] No mapping configured for supplement %q (schedule %s)", s.Supplement, s.ID)
			d.recorder.RecordUnmapped(s.Supplement)
			continue
		}
		if !d.claim(ctx, s, moment.Date, now) {
			continue
		}
		commands = append(commands, *cmd)
		ids = append(ids, s.ID)
	}

	if len(commands) == 0 {
		return d.finish(&PollResult{
			Status:      models.StatusNothingDue,
			CheckedTime: moment.Time,
			CheckedDay:  moment.Day,
		}), nil
	}

	if err := d.persist(ctx, ids, now); err != nil {
		nuts.L.Errorf("[Dispenser] Failed to persist execution markers for %v: %v", ids, err)
		d.recorder.RecordPersistFailure()
	}

	nuts.L.Infof("[Dispenser] Dispatching %d command(s) at %s %s", len(commands), moment.Day, moment.Time)
	d.recorder.RecordDispatched(len(commands))
	return d.finish(&PollResult{
		Status:      models.StatusDispatched,
		Commands:    commands,
		CheckedTime: moment.Time,
		CheckedDay:  moment.Day,
	}), nil
}

func (d *Dispenser) finish(result *PollResult) *PollResult {
	d.recorder.RecordPoll(result.Status)
	return result
}

func (d *Dispenser) loadSchedules(ctx context.Context) []models.Schedule {
	ctx, cancel := d.storeContext(ctx)
	defer cancel()
	schedules, err := d.schedules.List(ctx)
	if err != nil {
		nuts.L.Warnf("[Dispenser] Reading schedules failed, treating as empty: %v", err)
		return nil
	}
	return schedules
}

func (d *Dispenser) loadMappings(ctx context.Context) models.Mappings {
	ctx, cancel := d.storeContext(ctx)
	defer cancel()
	mappings, err := d.mappings.Get(ctx)
	if err != nil {
		nuts.L.Warnf("[Dispenser] Reading mappings failed, treating as empty: %v", err)
		return nil
	}
	return mappings
}

func (d *Dispenser) claim(ctx context.Context, s models.Schedule, date string, now time.Time) bool {
	ctx, cancel := d.storeContext(ctx)
	defer cancel()
	return d.tracker.Claim(ctx, s, date, now)
}

func (d *Dispenser) persist(ctx context.Context, ids []string, now time.Time) error {
	ctx, cancel := d.storeContext(ctx)
	defer cancel()
	return d.tracker.Persist(ctx, ids, now)
}

func (d *Dispenser) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.config.StoreTimeout > 0 {
		return context.WithTimeout(ctx, d.config.StoreTimeout)
	}
	return context.WithCancel(ctx)
}
