package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fireRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *fireRecorder) fire(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *fireRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newTestGateway() (*Gateway, *fireRecorder) {
	rec := &fireRecorder{}
	g := New(logger.New("error", "dev"))
	g.OnFire(rec.fire)
	return g, rec
}

func TestArm_ComputesNextOccurrence(t *testing.T) {
	g, _ := newTestGateway()
	// 2024-01-01 06:00 is a Monday morning.
	now := time.Date(2024, time.January, 1, 6, 0, 0, 0, time.Local)
	g.Now = func() time.Time { return now }

	g.Arm(alarm.Alarm{ID: 1, Hour: 7, Minute: 0, FolderURI: "/m", Days: []time.Weekday{time.Monday}, IsActive: true})

	at, ok := g.NextFire(1)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 1, 7, 0, 0, 0, time.Local), at)

	g.Stop()
}

func TestArm_ReplacesPendingTimer(t *testing.T) {
	g, _ := newTestGateway()
	now := time.Date(2024, time.January, 1, 6, 0, 0, 0, time.Local)
	g.Now = func() time.Time { return now }

	g.Arm(alarm.Alarm{ID: 7, Hour: 7, Minute: 0, FolderURI: "/m", IsActive: true})
	g.Arm(alarm.Alarm{ID: 7, Hour: 9, Minute: 30, FolderURI: "/m", IsActive: true})

	at, ok := g.NextFire(7)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 1, 9, 30, 0, 0, time.Local), at)

	g.Stop()
}

func TestArmAt_FiresOnceWithPayload(t *testing.T) {
	g, rec := newTestGateway()

	ev := EventFromAlarm(alarm.Alarm{
		ID: 3, Hour: 7, Minute: 0, FolderURI: "/music", Volume: 0.4, IsActive: true,
	})
	g.armAt(ev, g.Now().Add(20*time.Millisecond))

	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	got := rec.events[0]
	rec.mu.Unlock()
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, "/music", got.FolderURI)
	assert.Equal(t, 0.4, got.Volume)

	// The fired timer is gone from the registry.
	_, ok := g.NextFire(3)
	assert.False(t, ok)
}

func TestArmAt_ReplaceLeavesSingleFire(t *testing.T) {
	g, rec := newTestGateway()

	ev := EventFromAlarm(alarm.Alarm{ID: 5, FolderURI: "/m", IsActive: true})
	g.armAt(ev, g.Now().Add(30*time.Millisecond))
	g.armAt(ev, g.Now().Add(40*time.Millisecond))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestCancel_PendingTimerNeverFires(t *testing.T) {
	g, rec := newTestGateway()

	ev := EventFromAlarm(alarm.Alarm{ID: 9, FolderURI: "/m", IsActive: true})
	g.armAt(ev, g.Now().Add(30*time.Millisecond))
	g.Cancel(9)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, rec.count())

	_, ok := g.NextFire(9)
	assert.False(t, ok)
}

func TestCancel_UnknownIDIsNoop(t *testing.T) {
	g, _ := newTestGateway()

	assert.NotPanics(t, func() { g.Cancel(424242) })
}

func TestEventRoundTrip(t *testing.T) {
	a := alarm.Alarm{
		ID: 11, Hour: 6, Minute: 15, FolderURI: "/music",
		Days: []time.Weekday{time.Tuesday}, IsActive: true, Volume: 0.8,
	}

	assert.Equal(t, a, EventFromAlarm(a).Alarm())

	// One-shot alarms still carry a non-nil day set in the payload, so the
	// fire handler can tell "present but empty" from "missing".
	oneShot := EventFromAlarm(alarm.Alarm{ID: 12, FolderURI: "/m"})
	assert.NotNil(t, oneShot.Days)
	assert.Empty(t, oneShot.Days)
}
