package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	excerptQueueKey = "queue:excerpt"
	popTimeout      = time.Second
)

// ErrQueueEmpty is returned by Pop when nothing arrived within its wait window.
var ErrQueueEmpty = errors.New("queue empty")

// RedisQueue is a FIFO of article IDs backed by a Redis list.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func (q *RedisQueue) Push(ctx context.Context, id string) error {
	return q.rdb.LPush(ctx, excerptQueueKey, id).Err()
}

// Pop waits up to a second for the next ID so callers get a chance to notice
// cancellation between waits.
func (q *RedisQueue) Pop(ctx context.Context) (string, error) {
	result, err := q.rdb.BRPop(ctx, popTimeout, excerptQueueKey).Result()
	if err == redis.Nil {
		return "", ErrQueueEmpty
	} else if err != nil {
		return "", err
	}
	return result[1], nil
}
