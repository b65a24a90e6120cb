package dispenser

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
	"github.com/itsatony/pillhub/internal/repository/memory"
	"github.com/itsatony/pillhub/internal/repository/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu          sync.Mutex
	polls       map[string]int
	dispatched  int
	unmapped    []string
	persistFail int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{polls: map[string]int{}}
}

func (r *countingRecorder) RecordPoll(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls[status]++
}

func (r *countingRecorder) RecordDispatched(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched += count
}

func (r *countingRecorder) RecordUnmapped(supplement string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmapped = append(r.unmapped, supplement)
}

func (r *countingRecorder) RecordPersistFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persistFail++
}

// failingSchedules fails SetLastExecuted and optionally List
type failingSchedules struct {
	repository.ScheduleRepository
	failList bool
}

func (f *failingSchedules) List(ctx context.Context) ([]models.Schedule, error) {
	if f.failList {
		return nil, stderrors.New("disk gone")
	}
	return f.ScheduleRepository.List(ctx)
}

func (f *failingSchedules) SetLastExecuted(context.Context, []string, time.Time) error {
	return stderrors.New("disk full")
}

type brokenLedger struct{}

func (brokenLedger) Claim(context.Context, string, string, time.Time) (bool, error) {
	return false, stderrors.New("ledger down")
}

type fixture struct {
	repos    *records.Repositories
	store    *memory.Store
	recorder *countingRecorder
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{repos: records.New(store), store: store, recorder: newCountingRecorder(), now: monday9}
}

func (f *fixture) dispenser(ledger repository.ExecutionLedger, schedules repository.ScheduleRepository) *Dispenser {
	if schedules == nil {
		schedules = f.repos.Schedules
	}
	return New(schedules, f.repos.Mappings, ledger, Config{Location: seoul, RotationsPerPill: 1},
		WithClock(ClockFunc(func() time.Time { return f.now })),
		WithRecorder(f.recorder),
	)
}

func (f *fixture) seed(t *testing.T, mappings models.Mappings, schedules ...models.Schedule) {
	t.Helper()
	ctx := context.Background()
	if len(schedules) > 0 {
		require.NoError(t, f.repos.Schedules.Create(ctx, schedules...))
	}
	if mappings != nil {
		_, err := f.repos.Mappings.Merge(ctx, mappings, nil)
		require.NoError(t, err)
	}
}

func TestPollConcreteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, repository.KindMappings, []byte(`{"Vitamin C": 3}`)))
	f.seed(t, nil, models.Schedule{ID: "sch_1", Supplement: "Vitamin C", Day: "Monday", Time: "09:00", Quantity: 2})

	result, err := f.dispenser(memory.NewLedger(0), nil).Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDispatched, result.Status)
	assert.Equal(t, []models.DoseCommand{
		{MotorID: 3, Rotations: 2, Supplement: "Vitamin C", ScheduleID: "sch_1", Quantity: 2, RotationsPerPill: 1},
	}, result.Body())

	stored, err := f.repos.Schedules.Get(ctx, "sch_1")
	require.NoError(t, err)
	require.NotNil(t, stored.LastExecutedAt)
	assert.Equal(t, monday9.UnixMilli(), *stored.LastExecutedAt)
	assert.Equal(t, 1, f.recorder.dispatched)
}

func TestPollEmptyStates(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	result, err := f.dispenser(nil, nil).Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatus{Status: models.StatusNoSchedules}, result.Body())

	f.seed(t, nil, models.Schedule{ID: "a", Supplement: "Zinc", Day: "Tuesday", Time: "09:00"})
	result, err = f.dispenser(nil, nil).Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatus{Status: models.StatusNoMappings}, result.Body())

	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}})
	result, err = f.dispenser(nil, nil).Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatus{Status: models.StatusNothingDue, CheckedTime: "09:00", CheckedDay: "Monday"}, result.Body())

	assert.Equal(t, 1, f.recorder.polls[models.StatusNoSchedules])
	assert.Equal(t, 1, f.recorder.polls[models.StatusNoMappings])
	assert.Equal(t, 1, f.recorder.polls[models.StatusNothingDue])
}

func TestPollSecondPollSameMinute(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}}, models.Schedule{ID: "a", Supplement: "Zinc", Day: "Monday", Time: "09:00"})
	d := f.dispenser(nil, nil)

	first, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDispatched, first.Status)

	f.now = monday9.Add(20 * time.Second)
	second, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNothingDue, second.Status)

	f.now = monday9.AddDate(0, 0, 7)
	nextWeek, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDispatched, nextWeek.Status)
}

func TestPollUnmappedNeverBlocksOthers(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}},
		models.Schedule{ID: "a", Supplement: "Iron", Day: "Monday", Time: "09:00"},
		models.Schedule{ID: "b", Supplement: "Zinc", Day: "Monday", Time: "09:00"},
	)

	result, err := f.dispenser(nil, nil).Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Commands, 1)
	assert.Equal(t, "b", result.Commands[0].ScheduleID)
	assert.Equal(t, []string{"Iron"}, f.recorder.unmapped)

	unmapped, err := f.repos.Schedules.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Nil(t, unmapped.LastExecutedAt, "unmapped schedules are not marked")
}

func TestPollOnlyUnmappedDue(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}},
		models.Schedule{ID: "a", Supplement: "Iron", Day: "Monday", Time: "09:00"},
	)

	result, err := f.dispenser(nil, nil).Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNothingDue, result.Status)
}

func TestPollPersistFailureStillReturnsCommands(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}}, models.Schedule{ID: "a", Supplement: "Zinc", Day: "Monday", Time: "09:00"})

	d := f.dispenser(nil, &failingSchedules{ScheduleRepository: f.repos.Schedules})
	result, err := d.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Commands, 1)
	assert.Equal(t, 1, f.recorder.persistFail)
}

func TestPollLedgerPreventsDuplicateWhenMarkerLost(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}}, models.Schedule{ID: "a", Supplement: "Zinc", Day: "Monday", Time: "09:00"})

	d := f.dispenser(memory.NewLedger(0), &failingSchedules{ScheduleRepository: f.repos.Schedules})
	first, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDispatched, first.Status)

	second, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNothingDue, second.Status)
}

func TestPollLedgerErrorStillDispatches(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}}, models.Schedule{ID: "a", Supplement: "Zinc", Day: "Monday", Time: "09:00"})

	result, err := f.dispenser(brokenLedger{}, nil).Poll(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Commands, 1)
}

func TestPollReadFailureDegradesToEmpty(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}}, models.Schedule{ID: "a", Supplement: "Zinc", Day: "Monday", Time: "09:00"})

	d := f.dispenser(nil, &failingSchedules{ScheduleRepository: f.repos.Schedules, failList: true})
	result, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoSchedules, result.Status)

	require.NoError(t, f.store.Save(context.Background(), repository.KindMappings, []byte(`[broken`)))
	result, err = f.dispenser(nil, nil).Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoMappings, result.Status)
}

func TestPollCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.dispenser(nil, nil).Poll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollConcurrentDispatchesOnce(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}}, models.Schedule{ID: "a", Supplement: "Zinc", Day: "Monday", Time: "09:00"})
	d := f.dispenser(memory.NewLedger(0), nil)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		dispatched int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := d.Poll(context.Background())
			if err != nil {
				return
			}
			mu.Lock()
			dispatched += len(result.Commands)
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, dispatched)
}

func TestPollWindowCatchesLatePoll(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.Mappings{"Zinc": {MotorID: 1}}, models.Schedule{ID: "a", Supplement: "Zinc", Day: "Monday", Time: "09:00"})
	f.now = monday9.Add(2 * time.Minute)

	d := New(f.repos.Schedules, f.repos.Mappings, nil, Config{Location: seoul, MatchWindow: 5 * time.Minute},
		WithClock(ClockFunc(func() time.Time { return f.now })))
	result, err := d.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Commands, 1)

	f.now = monday9.Add(3 * time.Minute)
	result, err = d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNothingDue, result.Status)
}
