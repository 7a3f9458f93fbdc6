package containers

import "context"

// Repository stores containers and allocates their record sequence numbers.
type Repository interface {
	// Create inserts an empty container and reports whether this call
	// created it. An existing container is left untouched.
	Create(ctx context.Context, collection, containerID string, now int64) (bool, error)
	// Lock returns the container's last sequence number and, inside a
	// transaction, holds its row until commit. ErrorNotFound when absent.
	Lock(ctx context.Context, collection, containerID string) (int64, error)
	// NextSeq increments and returns the container's sequence number.
	NextSeq(ctx context.Context, collection, containerID string) (int64, error)
	Exists(ctx context.Context, collection, containerID string) (bool, error)
}
