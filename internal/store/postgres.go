package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/pricelens/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
// Covered by the integration-tagged tests against a real Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// CreateItem inserts a new tracked item and fills in its generated fields.
func (s *PostgresStore) CreateItem(ctx context.Context, item *domain.TrackedItem) error {
	if item.State == "" {
		item.State = domain.StateActive
	}

	args := pgx.NamedArgs{
		"owner_id":       item.OwnerID,
		"title":          item.Title,
		"keywords":       item.Keywords,
		"store":          item.Store,
		"image_url":      item.ImageURL,
		"product_url":    item.ProductURL,
		"current_price":  item.CurrentPrice,
		"original_price": item.OriginalPrice,
		"lowest_price":   item.LowestPrice,
		"target_price":   item.TargetPrice,
		"state":          string(item.State),
	}

	err := s.pool.QueryRow(ctx, queryCreateItem, args).Scan(
		&item.ID, &item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating tracked item: %w", err)
	}
	return nil
}

// GetItem retrieves a tracked item by its ID.
func (s *PostgresStore) GetItem(ctx context.Context, id string) (*domain.TrackedItem, error) {
	item := &domain.TrackedItem{}
	err := scanItem(s.pool.QueryRow(ctx, queryGetItem, id), item)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting tracked item: %w", err)
	}
	return item, nil
}

// ListItems returns the owner's non-removed items, newest first.
func (s *PostgresStore) ListItems(ctx context.Context, ownerID string) ([]domain.TrackedItem, error) {
	return s.queryItems(ctx, queryListItems, ownerID)
}

// ListRefreshableItems returns every non-removed item across all owners,
// least recently checked first.
func (s *PostgresStore) ListRefreshableItems(ctx context.Context) ([]domain.TrackedItem, error) {
	return s.queryItems(ctx, queryListRefreshableItems)
}

// UpdateItem writes the item's mutable fields guarded by its Version.
// Returns ErrVersionConflict when another writer advanced the row first,
// ErrNotFound when the item does not exist.
func (s *PostgresStore) UpdateItem(ctx context.Context, item *domain.TrackedItem) error {
	args := pgx.NamedArgs{
		"id":              item.ID,
		"version":         item.Version,
		"current_price":   item.CurrentPrice,
		"lowest_price":    item.LowestPrice,
		"target_price":    item.TargetPrice,
		"state":           string(item.State),
		"last_checked_at": item.LastCheckedAt,
	}

	err := s.pool.QueryRow(ctx, queryUpdateItem, args).Scan(&item.Version, &item.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("updating tracked item: %w", err)
	}

	// No row matched: distinguish a stale version from a missing item.
	var exists bool
	if scanErr := s.pool.QueryRow(ctx, queryItemExists, item.ID).Scan(&exists); scanErr != nil {
		return fmt.Errorf("checking tracked item existence: %w", scanErr)
	}
	if exists {
		return ErrVersionConflict
	}
	return ErrNotFound
}

// RecordSearch appends one search history entry.
func (s *PostgresStore) RecordSearch(ctx context.Context, rec *domain.SearchRecord) error {
	args := pgx.NamedArgs{
		"owner_id":    rec.OwnerID,
		"query_type":  rec.QueryType,
		"keywords":    rec.Keywords,
		"offer_count": rec.OfferCount,
	}

	err := s.pool.QueryRow(ctx, queryRecordSearch, args).Scan(&rec.ID, &rec.SearchedAt)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// ListSearchHistory returns the owner's most recent searches.
func (s *PostgresStore) ListSearchHistory(
	ctx context.Context,
	ownerID string,
	limit int,
) ([]domain.SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, queryListSearchHistory, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	var records []domain.SearchRecord
	for rows.Next() {
		var r domain.SearchRecord
		if err := rows.Scan(
			&r.ID, &r.OwnerID, &r.QueryType, &r.Keywords, &r.OfferCount, &r.SearchedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning search record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search history: %w", err)
	}

	return records, nil
}

func (s *PostgresStore) queryItems(
	ctx context.Context,
	sql string,
	args ...any,
) ([]domain.TrackedItem, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tracked items: %w", err)
	}
	defer rows.Close()

	var items []domain.TrackedItem
	for rows.Next() {
		var item domain.TrackedItem
		if err := scanItemRow(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning tracked item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tracked items: %w", err)
	}

	return items, nil
}

func scanItem(row pgx.Row, item *domain.TrackedItem) error {
	var state string
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Keywords, &item.Store,
		&item.ImageURL, &item.ProductURL,
		&item.CurrentPrice, &item.OriginalPrice, &item.LowestPrice, &item.TargetPrice,
		&state, &item.LastCheckedAt, &item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return err
	}
	item.State = domain.ItemState(state)
	return nil
}

func scanItemRow(rows pgx.Rows, item *domain.TrackedItem) error {
	return scanItem(rows, item)
}
