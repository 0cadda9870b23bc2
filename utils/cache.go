// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/luisperes28-droid/desperto-app-sub001/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the generic cache client, used for slot-selection
// sessions and reminder dedupe keys.
var CacheClient *redis.Client

// InitRedis initializes the Redis cache client.
func InitRedis() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitRedis()
	}
	return CacheClient
}
