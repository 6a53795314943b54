package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/internal/storage/prefs"
	"github.com/despertad/wakefolder/internal/usecase"
	"github.com/despertad/wakefolder/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	armed     []alarm.Alarm
	cancelled []int64
}

func (g *fakeGateway) Arm(a alarm.Alarm) { g.armed = append(g.armed, a) }
func (g *fakeGateway) Cancel(id int64)   { g.cancelled = append(g.cancelled, id) }

func setup(t *testing.T) (*usecase.Alarms, *prefs.Store, *fakeGateway) {
	t.Helper()

	store, err := prefs.New(t.TempDir())
	require.NoError(t, err)

	gw := &fakeGateway{}
	uc := usecase.New(store, gw, logger.New("error", "dev"))

	return uc, store, gw
}

func draft() alarm.Alarm {
	return alarm.Alarm{
		Hour:      7,
		Minute:    30,
		FolderURI: "/music/morning",
		Days:      []time.Weekday{time.Monday},
		Volume:    0.2,
	}
}

func TestCreate_PersistsArmsAndRemembersFolder(t *testing.T) {
	uc, store, gw := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, draft())
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)

	stored, err := store.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, created, stored[0])

	require.Len(t, gw.armed, 1)
	assert.Equal(t, created.ID, gw.armed[0].ID)

	folder, err := store.LoadLastFolder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/music/morning", folder)
}

func TestCreate_SameInstantGetsDistinctIDs(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	// Freeze the clock so both creates land on the same millisecond.
	now := time.Date(2024, time.January, 1, 6, 0, 0, 0, time.Local)
	uc.Now = func() time.Time { return now }

	first, err := uc.Create(ctx, draft())
	require.NoError(t, err)
	second, err := uc.Create(ctx, draft())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCreate_InvalidAlarmRejected(t *testing.T) {
	uc, store, gw := setup(t)
	ctx := context.Background()

	bad := draft()
	bad.Hour = 25

	_, err := uc.Create(ctx, bad)
	assert.Error(t, err)

	stored, err := store.LoadAlarms(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, gw.armed)
}

func TestGet(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, draft())
	require.NoError(t, err)

	got, err := uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = uc.Get(ctx, 999)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestUpdate_ReplacesAndRearms(t *testing.T) {
	uc, _, gw := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, draft())
	require.NoError(t, err)

	created.Hour = 9
	updated, err := uc.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Hour)

	assert.Equal(t, []int64{created.ID}, gw.cancelled)
	require.Len(t, gw.armed, 2)
	assert.Equal(t, 9, gw.armed[1].Hour)
}

func TestUpdate_InactiveStaysCancelled(t *testing.T) {
	uc, _, gw := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, draft())
	require.NoError(t, err)

	created.IsActive = false
	_, err = uc.Update(ctx, created)
	require.NoError(t, err)

	assert.Equal(t, []int64{created.ID}, gw.cancelled)
	assert.Len(t, gw.armed, 1, "only the create armed")
}

func TestToggle(t *testing.T) {
	uc, store, gw := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, draft())
	require.NoError(t, err)

	off, err := uc.Toggle(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	assert.Equal(t, []int64{created.ID}, gw.cancelled)

	stored, err := store.LoadAlarms(ctx)
	require.NoError(t, err)
	assert.False(t, stored[0].IsActive, "record is retained, not removed")

	on, err := uc.Toggle(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
	assert.Len(t, gw.armed, 2)

	_, err = uc.Toggle(ctx, 999, true)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestDelete_RemovesAndCancels(t *testing.T) {
	uc, store, gw := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, draft())
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ID))

	assert.Equal(t, []int64{created.ID}, gw.cancelled)

	stored, err := store.LoadAlarms(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	assert.ErrorIs(t, uc.Delete(ctx, created.ID), usecase.ErrNotFound)
}

func TestRearmAll_ArmsOnlyActive(t *testing.T) {
	uc, store, gw := setup(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAlarms(ctx, []alarm.Alarm{
		{ID: 1, Hour: 7, FolderURI: "/a", IsActive: true},
		{ID: 2, Hour: 8, FolderURI: "/b", IsActive: false},
		{ID: 3, Hour: 9, FolderURI: "/c", IsActive: true, Days: []time.Weekday{time.Sunday}},
	}))

	n, err := uc.RearmAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	require.Len(t, gw.armed, 2)
	assert.Equal(t, int64(1), gw.armed[0].ID)
	assert.Equal(t, int64(3), gw.armed[1].ID)
}

func TestLastFolderSlot(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	folder, err := uc.LastFolder(ctx)
	require.NoError(t, err)
	assert.Empty(t, folder)

	require.NoError(t, uc.SetLastFolder(ctx, "/music/next"))

	folder, err = uc.LastFolder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/music/next", folder)
}
