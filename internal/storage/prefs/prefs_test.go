package prefs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/internal/storage/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlarms() []alarm.Alarm {
	return []alarm.Alarm{
		{
			ID:        1718000000001,
			Hour:      7,
			Minute:    0,
			FolderURI: "/music/morning",
			Days:      []time.Weekday{time.Monday, time.Wednesday},
			IsActive:  true,
			Volume:    0.2,
		},
		{
			ID:        1718000000002,
			Hour:      22,
			Minute:    30,
			FolderURI: "/music/evening",
			Days:      []time.Weekday{},
			IsActive:  false,
			Volume:    1,
		},
	}
}

func TestStore_EmptyDirLoadsNothing(t *testing.T) {
	s, err := prefs.New(t.TempDir())
	require.NoError(t, err)

	alarms, err := s.LoadAlarms(context.Background())

	require.NoError(t, err)
	assert.Empty(t, alarms)

	folder, err := s.LoadLastFolder(context.Background())
	require.NoError(t, err)
	assert.Empty(t, folder)
}

func TestStore_RoundTripPreservesOrder(t *testing.T) {
	s, err := prefs.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	want := testAlarms()
	require.NoError(t, s.SaveAlarms(ctx, want))

	got, err := s.LoadAlarms(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// saveAll(loadAll()) must be idempotent.
	require.NoError(t, s.SaveAlarms(ctx, got))
	again, err := s.LoadAlarms(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestStore_SaveOverwritesWholeCollection(t *testing.T) {
	s, err := prefs.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.SaveAlarms(ctx, testAlarms()))
	require.NoError(t, s.SaveAlarms(ctx, testAlarms()[:1]))

	got, err := s.LoadAlarms(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_MalformedPayloadReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := prefs.New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "alarmList.json"), []byte("{not json"), 0o644))

	alarms, err := s.LoadAlarms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alarms)
}

func TestStore_LastFolderSlot(t *testing.T) {
	s, err := prefs.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.SaveLastFolder(ctx, "/music/morning"))

	folder, err := s.LoadLastFolder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/music/morning", folder)

	// Clearing the slot is a plain overwrite.
	require.NoError(t, s.SaveLastFolder(ctx, ""))
	folder, err = s.LoadLastFolder(ctx)
	require.NoError(t, err)
	assert.Empty(t, folder)
}
