package repository

import (
	"context"
	"time"
)

// VisitedRepository tracks websites that were classified recently, to
// deduplicate submissions.
type VisitedRepository interface {
	// MarkVisited marks a website as visited for the given duration.
	MarkVisited(ctx context.Context, website string, expiry time.Duration) error
	// IsVisited checks whether a website was classified recently.
	IsVisited(ctx context.Context, website string) (bool, error)
	// RemoveVisited clears the visited mark, used for forced re-runs.
	RemoveVisited(ctx context.Context, website string) error
}
