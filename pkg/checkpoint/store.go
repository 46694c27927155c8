package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNoCheckpoint indicates no cursor has been stored for the endpoint.
var ErrNoCheckpoint = errors.New("no checkpoint")

// Store handles checkpoint operations with Redis backend.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new checkpoint store with Redis backend.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{
		redis: redisClient,
	}
}

// Get retrieves the stored cursor for an endpoint.
// Returns ErrNoCheckpoint if no cursor has been stored.
func (s *Store) Get(ctx context.Context, endpoint string) (string, error) {
	key := Key{Endpoint: endpoint}.String()

	cursor, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			CheckpointMisses.Inc()
			return "", ErrNoCheckpoint
		}
		CheckpointErrors.WithLabelValues("get").Inc()
		return "", fmt.Errorf("redis get: %w", err)
	}

	CheckpointHits.Inc()
	return cursor, nil
}

// Set stores the cursor for an endpoint, replacing any previous value.
// Checkpoints do not expire; they are overwritten by the next run.
func (s *Store) Set(ctx context.Context, endpoint, cursor string) error {
	if cursor == "" {
		return fmt.Errorf("cursor cannot be empty")
	}

	key := Key{Endpoint: endpoint}.String()

	if err := s.redis.Set(ctx, key, cursor, 0).Err(); err != nil {
		CheckpointErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes the stored cursor for an endpoint.
func (s *Store) Delete(ctx context.Context, endpoint string) error {
	key := Key{Endpoint: endpoint}.String()

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		CheckpointErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
