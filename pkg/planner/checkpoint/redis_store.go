package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lazy-tourist-be/pkg/planner/state"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "trip:checkpoint:"

// RedisStore shares checkpoints between server instances.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ Store = &RedisStore{}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Save(ctx context.Context, session *state.Session) error {
	data, err := encode(session)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", session.ID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*state.Session, error) {
	data, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", id, err)
	}
	return decode(data)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", id, err)
	}
	return nil
}
