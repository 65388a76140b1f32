// Package store defines the datastore abstraction for pricelens.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables mock-based testing without a running
// database.
package store

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// Sentinel errors surfaced by Store implementations.
var (
	// ErrNotFound means no row matched the lookup.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict means a compare-and-swap update lost the race:
	// the row's version moved between read and write.
	ErrVersionConflict = errors.New("version conflict")
)

// Store defines all data access operations for pricelens.
type Store interface {
	// Tracked items
	CreateItem(ctx context.Context, item *domain.TrackedItem) error
	GetItem(ctx context.Context, id string) (*domain.TrackedItem, error)
	ListItems(ctx context.Context, ownerID string) ([]domain.TrackedItem, error)
	ListRefreshableItems(ctx context.Context) ([]domain.TrackedItem, error)
	// UpdateItem writes all mutable fields guarded by the item's Version.
	// On success the item's Version and UpdatedAt are advanced in place.
	UpdateItem(ctx context.Context, item *domain.TrackedItem) error

	// Search history
	RecordSearch(ctx context.Context, rec *domain.SearchRecord) error
	ListSearchHistory(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
