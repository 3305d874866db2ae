package state

import (
	"context"
	"fmt"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/store"

	"github.com/go-redis/redis/v9"
	"github.com/moznion/go-optional"
	"golang.org/x/xerrors"
)

// RedisKeyedBackend keeps row maps as redis hashes named
// "<prefix>:<state>:<key>" and timer state as plain integer keys.
type RedisKeyedBackend struct {
	rdb        *redis.Client
	prefix     string
	entrySerde commtypes.SerdeG[commtypes.MultiplicityEntry]
	currentKey string
}

var _ = KeyedStateBackend(&RedisKeyedBackend{})

func NewRedisKeyedBackend(rdb *redis.Client, prefix string, format commtypes.SerdeFormat) (*RedisKeyedBackend, error) {
	entrySerde, err := commtypes.GetEntrySerdeG(format)
	if err != nil {
		return nil, err
	}
	return &RedisKeyedBackend{
		rdb:        rdb,
		prefix:     prefix,
		entrySerde: entrySerde,
	}, nil
}

func (b *RedisKeyedBackend) SetCurrentKey(key string) {
	b.currentKey = key
}

func (b *RedisKeyedBackend) CurrentKey() string {
	return b.currentKey
}

func (b *RedisKeyedBackend) scopedName(name string) string {
	return fmt.Sprintf("%s:%s:%x", b.prefix, name, b.currentKey)
}

func (b *RedisKeyedBackend) RowMapState(name string) (RowMapState, error) {
	return store.NewRedisKeyValueStoreG[commtypes.Row, commtypes.MultiplicityEntry](
		name, b.rdb, commtypes.RowMsgpSerdeG{}, b.entrySerde,
		func() string { return b.scopedName(name) }), nil
}

func (b *RedisKeyedBackend) TimerState(name string) (TimerState, error) {
	return &redisTimerState{backend: b, name: name}, nil
}

type redisTimerState struct {
	backend *RedisKeyedBackend
	name    string
}

func (s *redisTimerState) Get(ctx context.Context) (optional.Option[int64], error) {
	ts, err := s.backend.rdb.Get(ctx, s.backend.scopedName(s.name)).Int64()
	if err == redis.Nil {
		return optional.None[int64](), nil
	} else if err != nil {
		return optional.None[int64](), xerrors.Errorf("redis get timer %s: %w", s.name, err)
	}
	return optional.Some(ts), nil
}

func (s *redisTimerState) Set(ctx context.Context, ts int64) error {
	return s.backend.rdb.Set(ctx, s.backend.scopedName(s.name), ts, 0).Err()
}

func (s *redisTimerState) Clear(ctx context.Context) error {
	return s.backend.rdb.Del(ctx, s.backend.scopedName(s.name)).Err()
}
