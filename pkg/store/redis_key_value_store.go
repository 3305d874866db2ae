package store

import (
	"context"

	"changelog-join/pkg/commtypes"

	"github.com/go-redis/redis/v9"
	"golang.org/x/xerrors"
)

// RedisKeyValueStoreG keeps one redis hash per scope. The scope is resolved on
// every call, which lets a keyed backend bind the hash to the active join key.
type RedisKeyValueStoreG[K, V any] struct {
	rdb      *redis.Client
	keySerde commtypes.SerdeG[K]
	valSerde commtypes.SerdeG[V]
	hashKey  func() string
	name     string
}

var _ = KeyValueStoreG[int, int](&RedisKeyValueStoreG[int, int]{})

func NewRedisKeyValueStoreG[K, V any](name string, rdb *redis.Client,
	keySerde commtypes.SerdeG[K], valSerde commtypes.SerdeG[V], hashKey func() string,
) *RedisKeyValueStoreG[K, V] {
	if hashKey == nil {
		hashKey = func() string { return name }
	}
	return &RedisKeyValueStoreG[K, V]{
		name:     name,
		rdb:      rdb,
		keySerde: keySerde,
		valSerde: valSerde,
		hashKey:  hashKey,
	}
}

func (st *RedisKeyValueStoreG[K, V]) Name() string {
	return st.name
}

func (st *RedisKeyValueStoreG[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	kBytes, err := st.keySerde.Encode(key)
	if err != nil {
		return zero, false, err
	}
	vBytes, err := st.rdb.HGet(ctx, st.hashKey(), string(kBytes)).Bytes()
	if err == redis.Nil {
		return zero, false, nil
	} else if err != nil {
		return zero, false, xerrors.Errorf("redis hget %s: %w", st.name, err)
	}
	v, err := st.valSerde.Decode(vBytes)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (st *RedisKeyValueStoreG[K, V]) Put(ctx context.Context, key K, value V) error {
	kBytes, err := st.keySerde.Encode(key)
	if err != nil {
		return err
	}
	vBytes, err := st.valSerde.Encode(value)
	if err != nil {
		return err
	}
	if err := st.rdb.HSet(ctx, st.hashKey(), string(kBytes), vBytes).Err(); err != nil {
		return xerrors.Errorf("redis hset %s: %w", st.name, err)
	}
	return nil
}

func (st *RedisKeyValueStoreG[K, V]) Delete(ctx context.Context, key K) error {
	kBytes, err := st.keySerde.Encode(key)
	if err != nil {
		return err
	}
	if err := st.rdb.HDel(ctx, st.hashKey(), string(kBytes)).Err(); err != nil {
		return xerrors.Errorf("redis hdel %s: %w", st.name, err)
	}
	return nil
}

func (st *RedisKeyValueStoreG[K, V]) Clear(ctx context.Context) error {
	if err := st.rdb.Del(ctx, st.hashKey()).Err(); err != nil {
		return xerrors.Errorf("redis del %s: %w", st.name, err)
	}
	return nil
}

func (st *RedisKeyValueStoreG[K, V]) ApproximateNumEntries(ctx context.Context) (uint64, error) {
	n, err := st.rdb.HLen(ctx, st.hashKey()).Result()
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// Range visits entries in the order HGETALL returns them, which is unspecified.
func (st *RedisKeyValueStoreG[K, V]) Range(ctx context.Context, iterFunc func(K, V) error) error {
	all, err := st.rdb.HGetAll(ctx, st.hashKey()).Result()
	if err != nil {
		return xerrors.Errorf("redis hgetall %s: %w", st.name, err)
	}
	for kStr, vStr := range all {
		k, err := st.keySerde.Decode([]byte(kStr))
		if err != nil {
			return err
		}
		v, err := st.valSerde.Decode([]byte(vStr))
		if err != nil {
			return err
		}
		if err := iterFunc(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (st *RedisKeyValueStoreG[K, V]) TableType() TABLE_TYPE {
	return REDIS
}
