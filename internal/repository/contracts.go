package repository

import (
	"context"

	"github.com/maxviazov/user-directory-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from the upstream client details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UserRepository declares read access to the remote user directory.
// Implementations issue exactly one upstream call per ListUsers and surface *FetchError on failure.
type UserRepository interface {
	ListUsers(ctx context.Context, p PageRequest) (PageResult[model.User], error)
}

// UserSource is a UserRepository that can also be probed for readiness.
type UserSource interface {
	UserRepository
	Pinger
}
