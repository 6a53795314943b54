// Package fire handles elapsed wake-up events: start playback, then either
// re-arm the alarm (repeating) or deactivate it in the store (one-shot).
package fire

import (
	"context"
	"log/slog"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/internal/scheduler"
	"github.com/despertad/wakefolder/internal/storage"
	"github.com/despertad/wakefolder/pkg/logger"
)

// Player starts a playback session. The handler hands off and returns; it
// never waits for playback to finish.
type Player interface {
	Start(ctx context.Context, folderURI string, volume float64) error
}

// Rearmer re-registers a wake-up for a repeating alarm.
type Rearmer interface {
	Arm(a alarm.Alarm)
}

// Handler keeps no state of its own; each event is a single pass over the
// store and the gateway.
type Handler struct {
	store   storage.Store
	rearmer Rearmer
	player  Player
	log     *logger.Logger
}

func New(store storage.Store, rearmer Rearmer, player Player, l *logger.Logger) *Handler {
	return &Handler{
		store:   store,
		rearmer: rearmer,
		player:  player,
		log:     l,
	}
}

// Handle processes one wake-up event.
func (h *Handler) Handle(ctx context.Context, ev scheduler.Event) {
	if ev.ID == 0 || ev.FolderURI == "" || ev.Days == nil {
		// The gateway always supplies a full payload; a partial one means
		// the event is not ours to act on.
		h.log.Error("fire - Handle - incomplete event payload", slog.Int64("alarm_id", ev.ID))
		return
	}

	// Playback failures belong to the player; rescheduling proceeds
	// regardless.
	if err := h.player.Start(ctx, ev.FolderURI, ev.Volume); err != nil {
		h.log.Error("fire - Handle - player.Start", logger.Err(err), slog.Int64("alarm_id", ev.ID))
	}

	if len(ev.Days) > 0 {
		h.rearmer.Arm(ev.Alarm())
		h.log.Info("repeating alarm rescheduled", slog.Int64("alarm_id", ev.ID))
		return
	}

	h.deactivate(ctx, ev.ID)
}

func (h *Handler) deactivate(ctx context.Context, id int64) {
	alarms, err := h.store.LoadAlarms(ctx)
	if err != nil {
		h.log.Error("fire - deactivate - store.LoadAlarms", logger.Err(err), slog.Int64("alarm_id", id))
		return
	}

	for i := range alarms {
		if alarms[i].ID != id {
			continue
		}
		alarms[i].IsActive = false
		if err := h.store.SaveAlarms(ctx, alarms); err != nil {
			h.log.Error("fire - deactivate - store.SaveAlarms", logger.Err(err), slog.Int64("alarm_id", id))
			return
		}
		h.log.Info("one-shot alarm deactivated", slog.Int64("alarm_id", id))
		return
	}

	// The record may have been deleted between arming and firing.
	h.log.Debug("fired alarm not in store", slog.Int64("alarm_id", id))
}
