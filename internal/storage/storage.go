// Package storage defines the preference store holding the alarm list.
//
// Every backend keeps the whole collection as one serialized blob under a
// fixed key: mutations re-serialize the full list, there are no partial
// updates. A malformed or absent payload reads back as "no alarms".
package storage

import (
	"context"
	"encoding/json"

	"github.com/despertad/wakefolder/internal/alarm"
)

const (
	KeyAlarms     = "alarmList"
	KeyLastFolder = "lastFolderUri"
)

// Store is the canonical on-device copy of the alarm list plus the
// last-used folder slot.
type Store interface {
	LoadAlarms(ctx context.Context) ([]alarm.Alarm, error)
	SaveAlarms(ctx context.Context, alarms []alarm.Alarm) error
	LoadLastFolder(ctx context.Context) (string, error)
	SaveLastFolder(ctx context.Context, folderURI string) error
	Close() error
}

// EncodeAlarms serializes the full collection, preserving order.
func EncodeAlarms(alarms []alarm.Alarm) ([]byte, error) {
	if alarms == nil {
		alarms = []alarm.Alarm{}
	}
	return json.Marshal(alarms)
}

// DecodeAlarms deserializes a stored payload. Absent, empty or malformed
// payloads decode to an empty list rather than an error.
func DecodeAlarms(b []byte) []alarm.Alarm {
	if len(b) == 0 {
		return []alarm.Alarm{}
	}
	var alarms []alarm.Alarm
	if err := json.Unmarshal(b, &alarms); err != nil {
		return []alarm.Alarm{}
	}
	if alarms == nil {
		alarms = []alarm.Alarm{}
	}
	return alarms
}
