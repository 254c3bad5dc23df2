package domain

import "context"

// Database defines lifecycle operations for the underlying user store.
// Each implementation (JSON file, SQLite) owns its own on-disk layout and
// initialization strategy, keeping the backend swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Users() UserRepository
	Close() error
}
