package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository/memory"
	"github.com/itsatony/pillhub/internal/repository/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup event not delivered")
		return ""
	}
}

func TestDeleteSchedulesForSupplement(t *testing.T) {
	ctx := context.Background()
	repos := records.New(memory.NewStore())
	require.NoError(t, repos.Schedules.Create(ctx,
		models.Schedule{ID: "a", Supplement: "Zinc"},
		models.Schedule{ID: "b", Supplement: "Iron"},
		models.Schedule{ID: "c", Supplement: "Zinc"},
	))

	svc := New(repos.Schedules, repos.Mappings)
	events := make(chan string, 1)
	svc.OnCleanup(EventSchedulesDeleted, func(id string) { events <- id })

	removed, err := svc.DeleteSchedulesForSupplement(ctx, "Zinc")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, "Zinc", waitFor(t, events))

	remaining, err := repos.Schedules.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].ID)

	removed, err = svc.DeleteSchedulesForSupplement(ctx, "Zinc")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestResetMappings(t *testing.T) {
	ctx := context.Background()
	repos := records.New(memory.NewStore())
	_, err := repos.Mappings.Merge(ctx, models.Mappings{"Zinc": {MotorID: 1}}, nil)
	require.NoError(t, err)

	svc := New(repos.Schedules, repos.Mappings)
	events := make(chan string, 1)
	svc.OnCleanup(EventMappingsReset, func(id string) { events <- id })

	require.NoError(t, svc.ResetMappings(ctx))
	assert.Equal(t, "all", waitFor(t, events))

	mappings, err := repos.Mappings.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestHandlersRunBeforeReturn(t *testing.T) {
	ctx := context.Background()
	repos := records.New(memory.NewStore())
	require.NoError(t, repos.Schedules.Create(ctx, models.Schedule{ID: "a", Supplement: "Zinc"}))

	svc := New(repos.Schedules, repos.Mappings)
	var deleted, reset []string
	svc.OnCleanup(EventSchedulesDeleted, func(id string) { deleted = append(deleted, id) })
	svc.OnCleanup(EventSchedulesDeleted, func(id string) { deleted = append(deleted, "second:"+id) })
	svc.OnCleanup(EventMappingsReset, func(id string) { reset = append(reset, id) })
	assert.Equal(t, 2, svc.events.ListenerCount(EventSchedulesDeleted))

	_, err := svc.DeleteSchedulesForSupplement(ctx, "Zinc")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Zinc", "second:Zinc"}, deleted)

	require.NoError(t, svc.ResetMappings(ctx))
	assert.Equal(t, []string{"all"}, reset)
}
