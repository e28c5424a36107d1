package redis

import (
	"github.com/redis/go-redis/v9"

	"github.com/a2b-grocery/storefront/pkg/config"
)

func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Protocol: 2,
	})
}
