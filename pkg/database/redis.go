package database

import (
	"context"
	"fmt"
	"log"

	"task-manager-api/configs"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis membuka koneksi Redis untuk cache entity.
func ConnectRedis(cfg configs.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: "",
		DB:       0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	return client
}
