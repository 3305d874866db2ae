package store

import (
	"context"
	"os"
	"strconv"
	"testing"

	"changelog-join/pkg/redis_client"
)

type intSerde struct{}

func (intSerde) Encode(v int) ([]byte, error) { return []byte(strconv.Itoa(v)), nil }
func (intSerde) Decode(b []byte) (int, error) { return strconv.Atoi(string(b)) }

type stringSerde struct{}

func (stringSerde) Encode(v string) ([]byte, error) { return []byte(v), nil }
func (stringSerde) Decode(b []byte) (string, error) { return string(b), nil }

func TestRedisKeyValueStore(t *testing.T) {
	if os.Getenv("REDIS_ADDR") == "" {
		t.Skip("REDIS_ADDR is not set")
	}
	rdb := redis_client.GetRedisClients()[0]
	for name, tc := range kvStoreCases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			hash := "store_test:" + name
			st := NewRedisKeyValueStoreG[int, string]("redis", rdb, intSerde{}, stringSerde{},
				func() string { return hash })
			checkErr(st.Clear(ctx), t)
			defer func() { _ = st.Clear(ctx) }()
			tc(ctx, st, t)
		})
	}
}
