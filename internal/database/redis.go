package database

import (
	"github.com/go-redis/redis"

	"github.com/auroradesk/aurora/internal/config"
)

func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Pass,
		DB:       cfg.DB,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	return client, nil
}
