package repository

import "context"

// QueueRepository defines the interface for a FIFO queue of websites to be
// classified.
type QueueRepository interface {
	// Push adds a website to the end of the queue.
	Push(ctx context.Context, website string) error
	// Pop removes and returns a website from the front of the queue.
	Pop(ctx context.Context) (string, error)
	// Size returns the current number of items in the queue.
	Size(ctx context.Context) (int64, error)
}
