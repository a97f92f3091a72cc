package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes and returns a Redis client
func NewRedisClient(redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Invalid Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	log.Println("Connected to Redis")
	return client
}

// RedisProcessedStore backs the processed-payment set with Redis so dedup
// survives restarts and holds across instances.
type RedisProcessedStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProcessedStore(client *redis.Client, ttl time.Duration) *RedisProcessedStore {
	return &RedisProcessedStore{client: client, ttl: ttl}
}

func (s *RedisProcessedStore) key(txnID string) string {
	return "processed:payment:" + txnID
}

// MarkProcessed relies on SET NX for the atomic check-and-insert.
func (s *RedisProcessedStore) MarkProcessed(ctx context.Context, txnID string) (bool, error) {
	return s.client.SetNX(ctx, s.key(txnID), "1", s.ttl).Result()
}
