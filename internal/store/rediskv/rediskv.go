package rediskv

import (
	"context"
	"errors"

	redis "github.com/redis/go-redis/v9"

	"caixa/backend/internal/store"
)

// Store is a KeyValueStore on a Redis database. Keys never expire.
type Store struct {
	client *redis.Client
}

func New(addr string, password string, db int) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Store{client: client}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, store.ErrInvalidKey
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return store.ErrInvalidKey
	}
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		return store.ErrInvalidKey
	}
	return s.client.Del(ctx, key).Err()
}
