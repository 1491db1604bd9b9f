package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/consent-crawler/pkg/utils"
)

const visitedSitePrefix = "consent:visited:"

// VisitedRepoImpl provides a concrete implementation for the
// VisitedRepository interface using Redis.
type VisitedRepoImpl struct {
	client *redis.Client
}

// NewVisitedRepo creates a new instance of VisitedRepoImpl.
func NewVisitedRepo(client *redis.Client) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a website by hashing it.
func (r *VisitedRepoImpl) generateKey(website string) string {
	return fmt.Sprintf("%s%s", visitedSitePrefix, utils.HashURL(website))
}

// MarkVisited marks a website as visited with an expiry.
func (r *VisitedRepoImpl) MarkVisited(ctx context.Context, website string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(website), "1", expiry).Err()
}

// IsVisited checks whether a website was classified recently.
func (r *VisitedRepoImpl) IsVisited(ctx context.Context, website string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(website)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// RemoveVisited clears the visited mark, used for forced re-runs.
func (r *VisitedRepoImpl) RemoveVisited(ctx context.Context, website string) error {
	return r.client.Del(ctx, r.generateKey(website)).Err()
}
