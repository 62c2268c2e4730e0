package database

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"schoolhub_backend/internals/configs"
)

// Redis boleh nil: limiter jatuh ke memory storage kalau REDIS_ADDR kosong.
var Redis *redis.Client

func ConnectRedis() {
	addr := configs.GetEnv("REDIS_ADDR")
	if addr == "" {
		log.Println("⚠️ REDIS_ADDR kosong, rate limiter pakai memory")
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: configs.GetEnv("REDIS_PASSWORD"),
		DB:       configs.GetEnvInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("❌ Redis tidak bisa dihubungi (%s): %v", addr, err)
		_ = rdb.Close()
		return
	}

	Redis = rdb
	log.Printf("✅ Redis connected (%s)", addr)
}

func PingRedis(ctx context.Context) error {
	if Redis == nil {
		return nil
	}
	return Redis.Ping(ctx).Err()
}

func CloseRedis() {
	if Redis != nil {
		_ = Redis.Close()
	}
}
