// Package redis is the Redis-backed preference store.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/internal/storage"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "wakefolder:"

type Store struct {
	client *redis.Client
}

var _ storage.Store = (*Store)(nil)

func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis - New - client.Ping: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient wires an existing client, used by tests.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) LoadAlarms(ctx context.Context) ([]alarm.Alarm, error) {
	b, err := s.get(ctx, storage.KeyAlarms)
	if err != nil {
		return nil, fmt.Errorf("redis - LoadAlarms - get: %w", err)
	}
	return storage.DecodeAlarms(b), nil
}

func (s *Store) SaveAlarms(ctx context.Context, alarms []alarm.Alarm) error {
	b, err := storage.EncodeAlarms(alarms)
	if err != nil {
		return fmt.Errorf("redis - SaveAlarms - storage.EncodeAlarms: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+storage.KeyAlarms, b, 0).Err(); err != nil {
		return fmt.Errorf("redis - SaveAlarms - client.Set: %w", err)
	}
	return nil
}

func (s *Store) LoadLastFolder(ctx context.Context) (string, error) {
	b, err := s.get(ctx, storage.KeyLastFolder)
	if err != nil {
		return "", fmt.Errorf("redis - LoadLastFolder - get: %w", err)
	}
	return string(b), nil
}

func (s *Store) SaveLastFolder(ctx context.Context, folderURI string) error {
	if err := s.client.Set(ctx, keyPrefix+storage.KeyLastFolder, folderURI, 0).Err(); err != nil {
		return fmt.Errorf("redis - SaveLastFolder - client.Set: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
