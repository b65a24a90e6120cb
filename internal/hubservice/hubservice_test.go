package hubservice

import (
	"context"
	"testing"
	"time"

	"github.com/itsatony/pillhub/internal/dispenser"
	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
	"github.com/itsatony/pillhub/internal/repository/memory"
	"github.com/itsatony/pillhub/internal/repository/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type harness struct {
	svc   *HubService
	store *memory.Store
	clock *testClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	repos := records.New(store)
	clock := &testClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc := New(repos.Schedules, repos.Mappings, repos.Supplements, repos.Led, repos.Users,
		WithClock(clock),
		WithBcryptCost(bcrypt.MinCost),
		WithDispenser(dispenser.New(repos.Schedules, repos.Mappings, nil, dispenser.Config{}, dispenser.WithClock(clock))),
	)
	require.NoError(t, svc.Validate())
	return &harness{svc: svc, store: store, clock: clock}
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func TestCreateSchedulesPerDay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.svc.CreateSchedules(ctx, models.ScheduleInput{
		Supplement: "Vitamin C",
		Days:       []string{"monday", "WEDNESDAY", "Monday"},
		Time:       "08:30",
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Monday", created[0].Day)
	assert.Equal(t, "Wednesday", created[1].Day)
	assert.NotEqual(t, created[0].ID, created[1].ID)
	for _, s := range created {
		assert.Equal(t, 1, s.Quantity)
		assert.Equal(t, h.clock.now.UnixMilli(), s.Timestamp)
		assert.Nil(t, s.LastExecutedAt)
	}
}

func TestCreateSchedulesValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   models.ScheduleInput
	}{
		{"missing supplement", models.ScheduleInput{Day: "Monday", Time: "09:00"}},
		{"missing day", models.ScheduleInput{Supplement: "Zinc", Time: "09:00"}},
		{"bad day", models.ScheduleInput{Supplement: "Zinc", Days: []string{"Monday", "Someday"}, Time: "09:00"}},
		{"bad time", models.ScheduleInput{Supplement: "Zinc", Day: "Monday", Time: "9am"}},
		{"zero quantity", models.ScheduleInput{Supplement: "Zinc", Day: "Monday", Time: "09:00", Quantity: intPtr(0)}},
		{"id with many days", models.ScheduleInput{ID: "x", Supplement: "Zinc", Days: []string{"Monday", "Friday"}, Time: "09:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.CreateSchedules(ctx, tt.in)
			assert.True(t, errors.IsValidation(err), "got %v", err)
		})
	}

	list, err := h.svc.ListSchedules(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list, "validation failures must not write")
}

func TestCreateScheduleClientID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := models.ScheduleInput{ID: "client-1", Supplement: "Zinc", Day: "Friday", Time: "21:00", Quantity: intPtr(2)}

	created, err := h.svc.CreateSchedules(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "client-1", created[0].ID)

	_, err = h.svc.CreateSchedules(ctx, in)
	assert.True(t, errors.IsConflict(err))
}

func TestListSchedulesSinceAndOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.svc.Schedules.Create(ctx,
		models.Schedule{ID: "late", Supplement: "a", Day: "Monday", Time: "09:00", Timestamp: 300},
		models.Schedule{ID: "early", Supplement: "b", Day: "Monday", Time: "09:00", Timestamp: 100},
		models.Schedule{ID: "mid", Supplement: "c", Day: "Monday", Time: "09:00", Timestamp: 200},
	))

	all, err := h.svc.ListSchedules(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "mid", "late"}, []string{all[0].ID, all[1].ID, all[2].ID})

	since := int64(100)
	newer, err := h.svc.ListSchedules(ctx, &since)
	require.NoError(t, err)
	require.Len(t, newer, 2)
	assert.Equal(t, "mid", newer[0].ID)
}

func TestUpdateSchedule(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	executed := int64(42)
	require.NoError(t, h.svc.Schedules.Create(ctx, models.Schedule{
		ID: "a", Supplement: "Zinc", Day: "Monday", Time: "09:00", Quantity: 1, Timestamp: 1, LastExecutedAt: &executed,
	}))
	h.clock.now = h.clock.now.Add(time.Hour)

	updated, err := h.svc.UpdateSchedule(ctx, "a", models.SchedulePatch{Day: strPtr("tuesday"), Quantity: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "Tuesday", updated.Day)
	assert.Equal(t, "09:00", updated.Time)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, h.clock.now.UnixMilli(), updated.Timestamp)
	require.NotNil(t, updated.LastExecutedAt)
	assert.Equal(t, int64(42), *updated.LastExecutedAt)

	_, err = h.svc.UpdateSchedule(ctx, "a", models.SchedulePatch{Time: strPtr("25:00")})
	assert.True(t, errors.IsValidation(err))
	_, err = h.svc.UpdateSchedule(ctx, "a", models.SchedulePatch{})
	assert.True(t, errors.IsValidation(err))
	_, err = h.svc.UpdateSchedule(ctx, "missing", models.SchedulePatch{Time: strPtr("10:00")})
	assert.True(t, errors.IsNotFound(err))
}

func TestMergeMappings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	posted, err := h.svc.MergeMappings(ctx, models.Mappings{"Vitamin C": {MotorID: 3}})
	require.NoError(t, err)
	assert.Equal(t, models.Mappings{"Vitamin C": {MotorID: 3}}, posted)

	_, err = h.svc.MergeMappings(ctx, models.Mappings{"Zinc": {MotorID: 1}})
	require.NoError(t, err)

	_, err = h.svc.MergeMappings(ctx, models.Mappings{"Iron": {MotorID: 3}})
	assert.True(t, errors.IsConflict(err), "motor 3 belongs to Vitamin C")

	_, err = h.svc.MergeMappings(ctx, models.Mappings{"Vitamin C": {MotorID: 3, RotationsPerPill: 2}})
	require.NoError(t, err, "re-posting the same motor for the same supplement is fine")

	_, err = h.svc.MergeMappings(ctx, models.Mappings{"Vitamin C": {MotorID: 1}, "Zinc": {MotorID: 3}})
	require.NoError(t, err, "swapping motors in one request is allowed")

	_, err = h.svc.MergeMappings(ctx, models.Mappings{})
	assert.True(t, errors.IsValidation(err))
	_, err = h.svc.MergeMappings(ctx, models.Mappings{"Iron": {MotorID: -1}})
	assert.True(t, errors.IsValidation(err))

	all, err := h.svc.GetMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Mappings{
		"Vitamin C": {MotorID: 1},
		"Zinc":      {MotorID: 3},
	}, all)
}

func TestDeleteAndResetMappings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.MergeMappings(ctx, models.Mappings{"Zinc": {MotorID: 1}, "Iron": {MotorID: 2}})
	require.NoError(t, err)

	require.NoError(t, h.svc.DeleteMapping(ctx, "Zinc"))
	assert.True(t, errors.IsNotFound(h.svc.DeleteMapping(ctx, "Zinc")))

	require.NoError(t, h.svc.ResetMappings(ctx))
	all, err := h.svc.GetMappings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSupplementCatalog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.CreateSupplement(ctx, models.Supplement{ID: "vit c", Name: "Vitamin C"})
	assert.True(t, errors.IsValidation(err))
	_, err = h.svc.CreateSupplement(ctx, models.Supplement{ID: "vit-c"})
	assert.True(t, errors.IsValidation(err))

	_, err = h.svc.CreateSupplement(ctx, models.Supplement{ID: "vit-c", Name: "Vitamin C"})
	require.NoError(t, err)
	_, err = h.svc.CreateSupplement(ctx, models.Supplement{ID: "vit-c", Name: "Other"})
	assert.True(t, errors.IsConflict(err))

	_, err = h.svc.CreateSchedules(ctx, models.ScheduleInput{Supplement: "Vitamin C", Day: "Monday", Time: "09:00"})
	require.NoError(t, err)
	assert.True(t, errors.IsConflict(h.svc.DeleteSupplement(ctx, "vit-c")), "blocked by schedule name")

	_, err = h.svc.DeleteSchedulesForSupplement(ctx, "Vitamin C")
	require.NoError(t, err)
	_, err = h.svc.MergeMappings(ctx, models.Mappings{"vit-c": {MotorID: 0}})
	require.NoError(t, err)
	assert.True(t, errors.IsConflict(h.svc.DeleteSupplement(ctx, "vit-c")), "blocked by mapping id")

	require.NoError(t, h.svc.ResetMappings(ctx))
	require.NoError(t, h.svc.DeleteSupplement(ctx, "vit-c"))
	assert.True(t, errors.IsNotFound(h.svc.DeleteSupplement(ctx, "vit-c")))
	assert.True(t, errors.IsValidation(h.svc.DeleteSupplement(ctx, "")))
}

func TestReportQuantity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.CreateSupplement(ctx, models.Supplement{ID: "zinc", Name: "Zinc"})
	require.NoError(t, err)

	remaining, err := h.svc.ReportQuantity(ctx, models.QuantityReport{SupplementName: "Zinc", RemainingQuantity: "17"})
	require.NoError(t, err)
	assert.Equal(t, 17, remaining)

	list, err := h.svc.ListSupplements(ctx)
	require.NoError(t, err)
	require.NotNil(t, list[0].Quantity)
	assert.Equal(t, 17, *list[0].Quantity)

	_, err = h.svc.ReportQuantity(ctx, models.QuantityReport{SupplementName: "Zinc", RemainingQuantity: "many"})
	assert.True(t, errors.IsValidation(err))
	_, err = h.svc.ReportQuantity(ctx, models.QuantityReport{SupplementName: "Zinc"})
	assert.True(t, errors.IsValidation(err))
	_, err = h.svc.ReportQuantity(ctx, models.QuantityReport{SupplementName: "Iron", RemainingQuantity: "3"})
	assert.True(t, errors.IsNotFound(err))
}

func TestLedState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, models.LedOff, h.svc.LedState(ctx, ""))

	cmd, err := h.svc.SetLedState(ctx, models.LedOn)
	require.NoError(t, err)
	assert.Equal(t, models.LedOn, cmd.State)
	assert.Equal(t, models.LedOn, h.svc.LedState(ctx, "off"), "reported state never changes the command")

	_, err = h.svc.SetLedState(ctx, "blink")
	assert.True(t, errors.IsValidation(err))

	require.NoError(t, h.store.Save(ctx, repository.KindLed, []byte(`{"state":"blink"}`)))
	assert.Equal(t, models.LedOff, h.svc.LedState(ctx, ""))
	require.NoError(t, h.store.Save(ctx, repository.KindLed, []byte(`garbage`)))
	assert.Equal(t, models.LedOff, h.svc.LedState(ctx, ""))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Register(ctx, models.Credentials{Username: "kim", Password: "secret"}))
	assert.True(t, errors.IsConflict(h.svc.Register(ctx, models.Credentials{Username: "kim", Password: "x"})))
	assert.True(t, errors.IsValidation(h.svc.Register(ctx, models.Credentials{Username: "lee"})))

	users, err := h.svc.Users.List(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", users[0].Password)

	user, err := h.svc.Authenticate(ctx, models.Credentials{Username: "kim", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "kim", user.Username)
	assert.Empty(t, user.Password)

	_, err = h.svc.Authenticate(ctx, models.Credentials{Username: "kim", Password: "wrong"})
	apiErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeAuth, apiErr.Type)

	_, err = h.svc.Authenticate(ctx, models.Credentials{Username: "nobody", Password: "secret"})
	assert.Error(t, err)
}

func TestAuthenticateRehashesLegacyPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Save(ctx, repository.KindUsers, []byte(`[{"username":"admin","password":"1234"}]`)))

	_, err := h.svc.Authenticate(ctx, models.Credentials{Username: "admin", Password: "1234"})
	require.NoError(t, err)

	users, err := h.svc.Users.List(ctx)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("1234")))

	_, err = h.svc.Authenticate(ctx, models.Credentials{Username: "admin", Password: "1234"})
	require.NoError(t, err, "hashed password still authenticates")
}

func TestPollCommandsDelegates(t *testing.T) {
	h := newHarness(t)
	result, err := h.svc.PollCommands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoSchedules, result.Status)
}
