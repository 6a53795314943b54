// Package postgres is the Postgres-backed preference store. The schema is
// a single key/value table; each slot holds the full serialized payload and
// every save is a whole-value upsert, keeping the same one-key-write
// contract as the other backends.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/internal/storage"
	pgclient "github.com/despertad/wakefolder/pkg/postgres"
	"github.com/jackc/pgx/v5"
)

type Store struct {
	pg *pgclient.Postgres
}

var _ storage.Store = (*Store)(nil)

func New(ctx context.Context, pg *pgclient.Postgres) (*Store, error) {
	_, err := pg.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS preference (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres - New - pg.Pool.Exec: %w", pg.ToPgErr(err))
	}

	return &Store{pg: pg}, nil
}

func (s *Store) LoadAlarms(ctx context.Context) ([]alarm.Alarm, error) {
	b, err := s.get(ctx, storage.KeyAlarms)
	if err != nil {
		return nil, fmt.Errorf("postgres - LoadAlarms - get: %w", err)
	}
	return storage.DecodeAlarms(b), nil
}

func (s *Store) SaveAlarms(ctx context.Context, alarms []alarm.Alarm) error {
	b, err := storage.EncodeAlarms(alarms)
	if err != nil {
		return fmt.Errorf("postgres - SaveAlarms - storage.EncodeAlarms: %w", err)
	}
	if err := s.put(ctx, storage.KeyAlarms, string(b)); err != nil {
		return fmt.Errorf("postgres - SaveAlarms - put: %w", err)
	}
	return nil
}

func (s *Store) LoadLastFolder(ctx context.Context) (string, error) {
	b, err := s.get(ctx, storage.KeyLastFolder)
	if err != nil {
		return "", fmt.Errorf("postgres - LoadLastFolder - get: %w", err)
	}
	return string(b), nil
}

func (s *Store) SaveLastFolder(ctx context.Context, folderURI string) error {
	if err := s.put(ctx, storage.KeyLastFolder, folderURI); err != nil {
		return fmt.Errorf("postgres - SaveLastFolder - put: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pg.Close()
	return nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	sql, args, err := s.pg.Builder.
		Select("value").
		From("preference").
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return nil, err
	}

	var value string
	err = s.pg.Pool.QueryRow(ctx, sql, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.pg.ToPgErr(err)
	}
	return []byte(value), nil
}

func (s *Store) put(ctx context.Context, key, value string) error {
	sql, args, err := s.pg.Builder.
		Insert("preference").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.pg.Pool.Exec(ctx, sql, args...); err != nil {
		return s.pg.ToPgErr(err)
	}
	return nil
}
