// api/db/redis.go
package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/supplysight/sentinel/config"
	logger "github.com/supplysight/sentinel/logging"
)

// RedisClient backs the rate limiter and the cross-instance locks. It is
// not on the permission decision path; Redis being down degrades
// throttling and lock fairness, never correctness.
var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         config.GetString("redis.addr"),
		Password:     config.GetString("redis.password"),
		DB:           config.GetInt("redis.db"),
		DialTimeout:  config.GetDuration("redis.dialTimeout"),
		ReadTimeout:  config.GetDuration("redis.readTimeout"),
		WriteTimeout: config.GetDuration("redis.writeTimeout"),
		PoolSize:     config.GetInt("redis.poolSize"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", config.GetString("redis.addr")))
	return nil
}

func CloseRedis() {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Close(); err != nil {
		logger.Error("Error closing Redis connection", zap.Error(err))
	}
}

// RateLimit reports whether the caller identified by key is within limit
// requests over the trailing window. Sliding window over a sorted set:
// prune entries older than the window, add the current request, count.
func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - per.Nanoseconds()
	redisKey := "ratelimit:" + key

	pipe := RedisClient.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: now})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, per)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline failed: %w", err)
	}

	return countCmd.Val() <= int64(limit), nil
}

// LockResource takes a best-effort distributed lock, used to serialize
// persona permission rewrites across instances.
func LockResource(ctx context.Context, resourceName string, ttl time.Duration) (bool, error) {
	locked, err := RedisClient.SetNX(ctx, "lock:"+resourceName, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock on %s: %w", resourceName, err)
	}
	return locked, nil
}

// UnlockResource releases a lock taken with LockResource.
func UnlockResource(ctx context.Context, resourceName string) error {
	if err := RedisClient.Del(ctx, "lock:"+resourceName).Err(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", resourceName, err)
	}
	return nil
}
