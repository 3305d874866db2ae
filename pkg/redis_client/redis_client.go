package redis_client

import (
	"os"
	"strings"

	"github.com/go-redis/redis/v9"
)

func getRedisAddr() []string {
	raw_addr := os.Getenv("REDIS_ADDR")
	return strings.Split(raw_addr, ",")
}

// GetRedisClients returns one client per address listed in REDIS_ADDR.
func GetRedisClients() []*redis.Client {
	return NewRedisClients(getRedisAddr())
}

func NewRedisClients(addrs []string) []*redis.Client {
	rdb_arr := make([]*redis.Client, 0, len(addrs))
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		rdb_arr = append(rdb_arr, redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: "", // no password set
			DB:       0,  // use default DB
		}))
	}
	return rdb_arr
}
