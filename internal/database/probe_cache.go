package database

import (
	"time"

	"github.com/go-redis/redis"
)

const probeKeyPrefix = "aurora:probe:"

// RedisProbeCache memoizes adapter availability probes in redis with a
// TTL, implementing router.ProbeCache. Cache errors degrade to a miss so
// a redis outage never blocks selection.
type RedisProbeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProbeCache(client *redis.Client, ttl time.Duration) *RedisProbeCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisProbeCache{client: client, ttl: ttl}
}

func (c *RedisProbeCache) Get(name string) (bool, bool) {
	val, err := c.client.Get(probeKeyPrefix + name).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

func (c *RedisProbeCache) Set(name string, available bool) {
	val := "0"
	if available {
		val = "1"
	}
	c.client.Set(probeKeyPrefix+name, val, c.ttl)
}
