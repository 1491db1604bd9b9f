package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const siteQueueKey = "consent:queue"

// QueueRepoImpl provides a concrete implementation for the QueueRepository
// interface using Redis Lists.
type QueueRepoImpl struct {
	client *redis.Client
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client}
}

// Push adds a website to the left side of the Redis list (acting as a queue).
func (r *QueueRepoImpl) Push(ctx context.Context, website string) error {
	return r.client.LPush(ctx, siteQueueKey, website).Err()
}

// Pop removes and returns a website from the right side of the Redis list.
// Returns redis.Nil as the error when the queue is empty.
func (r *QueueRepoImpl) Pop(ctx context.Context) (string, error) {
	return r.client.RPop(ctx, siteQueueKey).Result()
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, siteQueueKey).Result()
}
