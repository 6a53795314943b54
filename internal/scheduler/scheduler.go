// Package scheduler is the gateway to the process timer facility: one
// pending timer per alarm ID, armed for the alarm's next occurrence.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/pkg/logger"
)

// Event is the payload a fired timer delivers. It carries every field the
// fire handler needs, so firing never requires a store read.
type Event struct {
	ID        int64          `json:"id"`
	Hour      int            `json:"hour"`
	Minute    int            `json:"minute"`
	FolderURI string         `json:"folderUri"`
	Days      []time.Weekday `json:"days"`
	IsActive  bool           `json:"isActive"`
	Volume    float64        `json:"volume"`
}

func EventFromAlarm(a alarm.Alarm) Event {
	days := make([]time.Weekday, len(a.Days))
	copy(days, a.Days)
	return Event{
		ID:        a.ID,
		Hour:      a.Hour,
		Minute:    a.Minute,
		FolderURI: a.FolderURI,
		Days:      days,
		IsActive:  a.IsActive,
		Volume:    a.Volume,
	}
}

// Alarm reconstructs the record the event was armed from.
func (e Event) Alarm() alarm.Alarm {
	return alarm.Alarm{
		ID:        e.ID,
		Hour:      e.Hour,
		Minute:    e.Minute,
		FolderURI: e.FolderURI,
		Days:      e.Days,
		IsActive:  e.IsActive,
		Volume:    e.Volume,
	}
}

type FireFunc func(Event)

type pending struct {
	timer *time.Timer
	at    time.Time
	ev    Event
}

// Gateway -.
type Gateway struct {
	log  *logger.Logger
	Now  func() time.Time
	fire FireFunc

	mu     sync.Mutex
	timers map[int64]*pending
}

func New(l *logger.Logger) *Gateway {
	return &Gateway{
		log:    l,
		Now:    time.Now,
		fire:   func(Event) {},
		timers: make(map[int64]*pending),
	}
}

// OnFire sets the callback invoked when a pending timer elapses. Set once
// during wiring, before any Arm call.
func (g *Gateway) OnFire(fn FireFunc) {
	g.fire = fn
}

// Arm registers a wake-up for the alarm's next occurrence. Re-arming an ID
// that already has a pending timer replaces it. An alarm with no computable
// occurrence is a logged no-op.
func (g *Gateway) Arm(a alarm.Alarm) {
	at, ok := a.NextOccurrence(g.Now())
	if !ok {
		g.log.Warn("scheduler - Arm - no occurrence computable", slog.Int64("alarm_id", a.ID))
		return
	}

	g.armAt(EventFromAlarm(a), at)

	g.log.Info("alarm armed",
		slog.Int64("alarm_id", a.ID),
		slog.Time("at", at),
	)
}

// Cancel deregisters any pending wake-up for the ID. Cancelling an ID that
// is not armed is a no-op.
func (g *Gateway) Cancel(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.timers[id]
	if !ok {
		return
	}
	p.timer.Stop()
	delete(g.timers, id)

	g.log.Info("alarm cancelled", slog.Int64("alarm_id", id))
}

// NextFire reports the pending instant for an armed ID.
func (g *Gateway) NextFire(id int64) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.timers[id]
	if !ok {
		return time.Time{}, false
	}
	return p.at, true
}

// Stop cancels every pending timer. Used at shutdown.
func (g *Gateway) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, p := range g.timers {
		p.timer.Stop()
		delete(g.timers, id)
	}
}

func (g *Gateway) armAt(ev Event, at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.timers[ev.ID]; ok {
		old.timer.Stop()
	}

	p := &pending{at: at, ev: ev}
	p.timer = time.AfterFunc(at.Sub(g.Now()), func() {
		g.elapsed(p)
	})
	g.timers[ev.ID] = p
}

func (g *Gateway) elapsed(p *pending) {
	// Timers may wake a touch early. Sleep out the drift.
	for {
		now := g.Now()
		if !now.Before(p.at) {
			break
		}
		time.Sleep(p.at.Sub(now))
	}

	g.mu.Lock()
	current, ok := g.timers[p.ev.ID]
	if !ok || current != p {
		// Cancelled or replaced while the timer was in flight.
		g.mu.Unlock()
		return
	}
	delete(g.timers, p.ev.ID)
	g.mu.Unlock()

	g.log.Info("alarm fired", slog.Int64("alarm_id", p.ev.ID), slog.Time("at", p.at))
	g.fire(p.ev)
}
