// Package usecase orchestrates the alarm lifecycle over the store and the
// scheduler gateway.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/internal/storage"
	"github.com/despertad/wakefolder/pkg/logger"
)

var ErrNotFound = errors.New("alarm not found")

// Gateway is the slice of the scheduler the lifecycle needs.
type Gateway interface {
	Arm(a alarm.Alarm)
	Cancel(id int64)
}

// Alarms -.
type Alarms struct {
	store storage.Store
	gw    Gateway
	log   *logger.Logger
	Now   func() time.Time
}

func New(store storage.Store, gw Gateway, l *logger.Logger) *Alarms {
	return &Alarms{
		store: store,
		gw:    gw,
		log:   l,
		Now:   time.Now,
	}
}

// Create validates, persists and arms a new alarm. The ID derives from the
// creation instant; if a record with that ID already exists the candidate
// is bumped until free, which closes the same-millisecond window.
func (u *Alarms) Create(ctx context.Context, a alarm.Alarm) (alarm.Alarm, error) {
	if err := a.Validate(); err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Create - a.Validate: %w", err)
	}

	alarms, err := u.store.LoadAlarms(ctx)
	if err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Create - store.LoadAlarms: %w", err)
	}

	id := alarm.NewID(u.Now())
	for hasID(alarms, id) {
		id++
	}

	a.ID = id
	a.IsActive = true

	alarms = append(alarms, a)
	if err := u.store.SaveAlarms(ctx, alarms); err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Create - store.SaveAlarms: %w", err)
	}

	u.gw.Arm(a)

	// Remember the folder for the next create.
	if err := u.store.SaveLastFolder(ctx, a.FolderURI); err != nil {
		u.log.Warn("usecase - Create - store.SaveLastFolder", logger.Err(err))
	}

	u.log.Info("alarm created", slog.Int64("alarm_id", a.ID))

	return a, nil
}

func (u *Alarms) List(ctx context.Context) ([]alarm.Alarm, error) {
	alarms, err := u.store.LoadAlarms(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase - List - store.LoadAlarms: %w", err)
	}
	return alarms, nil
}

func (u *Alarms) Get(ctx context.Context, id int64) (alarm.Alarm, error) {
	alarms, err := u.store.LoadAlarms(ctx)
	if err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Get - store.LoadAlarms: %w", err)
	}
	for _, a := range alarms {
		if a.ID == id {
			return a, nil
		}
	}
	return alarm.Alarm{}, ErrNotFound
}

// Update replaces the stored record, keeping its position, and re-arms or
// cancels its timer to match.
func (u *Alarms) Update(ctx context.Context, a alarm.Alarm) (alarm.Alarm, error) {
	if err := a.Validate(); err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Update - a.Validate: %w", err)
	}

	alarms, err := u.store.LoadAlarms(ctx)
	if err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Update - store.LoadAlarms: %w", err)
	}

	idx := indexOf(alarms, a.ID)
	if idx < 0 {
		return alarm.Alarm{}, ErrNotFound
	}

	alarms[idx] = a
	if err := u.store.SaveAlarms(ctx, alarms); err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Update - store.SaveAlarms: %w", err)
	}

	u.gw.Cancel(a.ID)
	if a.IsActive {
		u.gw.Arm(a)
	}

	return a, nil
}

// Toggle flips IsActive, persists, and arms or cancels accordingly.
func (u *Alarms) Toggle(ctx context.Context, id int64, active bool) (alarm.Alarm, error) {
	alarms, err := u.store.LoadAlarms(ctx)
	if err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Toggle - store.LoadAlarms: %w", err)
	}

	idx := indexOf(alarms, id)
	if idx < 0 {
		return alarm.Alarm{}, ErrNotFound
	}

	alarms[idx].IsActive = active
	if err := u.store.SaveAlarms(ctx, alarms); err != nil {
		return alarm.Alarm{}, fmt.Errorf("usecase - Toggle - store.SaveAlarms: %w", err)
	}

	if active {
		u.gw.Arm(alarms[idx])
	} else {
		u.gw.Cancel(id)
	}

	return alarms[idx], nil
}

// Delete removes the record and cancels its pending wake-up, so a deleted
// alarm never fires even if its computed instant arrives.
func (u *Alarms) Delete(ctx context.Context, id int64) error {
	alarms, err := u.store.LoadAlarms(ctx)
	if err != nil {
		return fmt.Errorf("usecase - Delete - store.LoadAlarms: %w", err)
	}

	idx := indexOf(alarms, id)
	if idx < 0 {
		return ErrNotFound
	}

	alarms = append(alarms[:idx], alarms[idx+1:]...)
	if err := u.store.SaveAlarms(ctx, alarms); err != nil {
		return fmt.Errorf("usecase - Delete - store.SaveAlarms: %w", err)
	}

	u.gw.Cancel(id)

	u.log.Info("alarm deleted", slog.Int64("alarm_id", id))

	return nil
}

func (u *Alarms) LastFolder(ctx context.Context) (string, error) {
	folder, err := u.store.LoadLastFolder(ctx)
	if err != nil {
		return "", fmt.Errorf("usecase - LastFolder - store.LoadLastFolder: %w", err)
	}
	return folder, nil
}

func (u *Alarms) SetLastFolder(ctx context.Context, folderURI string) error {
	if err := u.store.SaveLastFolder(ctx, folderURI); err != nil {
		return fmt.Errorf("usecase - SetLastFolder - store.SaveLastFolder: %w", err)
	}
	return nil
}

// RearmAll arms every active record, used at daemon startup so persisted
// alarms survive a restart. Inactive records stay unarmed.
func (u *Alarms) RearmAll(ctx context.Context) (int, error) {
	alarms, err := u.store.LoadAlarms(ctx)
	if err != nil {
		return 0, fmt.Errorf("usecase - RearmAll - store.LoadAlarms: %w", err)
	}

	n := 0
	for _, a := range alarms {
		if !a.IsActive {
			continue
		}
		u.gw.Arm(a)
		n++
	}

	return n, nil
}

func hasID(alarms []alarm.Alarm, id int64) bool {
	return indexOf(alarms, id) >= 0
}

func indexOf(alarms []alarm.Alarm, id int64) int {
	for i := range alarms {
		if alarms[i].ID == id {
			return i
		}
	}
	return -1
}
