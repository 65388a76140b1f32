package handlers_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/pricelens/internal/aggregate"
	"github.com/donaldgifford/pricelens/internal/store"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// pngBytes is a minimal payload that sniffs as image/png.
var pngBytes = append(
	[]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	make([]byte, 64)...,
)

// memStore is an in-memory store.Store for handler tests.
type memStore struct {
	mu      sync.Mutex
	items   map[string]*domain.TrackedItem
	history []domain.SearchRecord
	nextID  int

	pingErr   error
	recordErr error
	listErr   error
}

func newMemStore() *memStore {
	return &memStore{items: map[string]*domain.TrackedItem{}}
}

func (m *memStore) CreateItem(_ context.Context, item *domain.TrackedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item.ID = fmt.Sprintf("item-%d", m.nextID)
	item.Version = 1
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memStore) GetItem(_ context.Context, id string) (*domain.TrackedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *memStore) ListItems(_ context.Context, ownerID string) ([]domain.TrackedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.TrackedItem
	for _, item := range m.items {
		if item.OwnerID == ownerID && item.State != domain.StateRemoved {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memStore) ListRefreshableItems(_ context.Context) ([]domain.TrackedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TrackedItem
	for _, item := range m.items {
		if item.State != domain.StateRemoved {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memStore) UpdateItem(_ context.Context, item *domain.TrackedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.items[item.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != item.Version {
		return store.ErrVersionConflict
	}
	item.Version++
	item.UpdatedAt = time.Now()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memStore) RecordSearch(_ context.Context, rec *domain.SearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.nextID++
	rec.ID = fmt.Sprintf("search-%d", m.nextID)
	rec.SearchedAt = time.Now()
	m.history = append(m.history, *rec)
	return nil
}

func (m *memStore) ListSearchHistory(
	_ context.Context,
	ownerID string,
	limit int,
) ([]domain.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.SearchRecord
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		if m.history[i].OwnerID == ownerID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *memStore) Migrate(context.Context) error { return nil }

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) recorded() []domain.SearchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SearchRecord(nil), m.history...)
}

// stubSearcher returns a canned aggregation result.
type stubSearcher struct {
	result aggregate.Result
}

func (s *stubSearcher) Search(context.Context, *domain.KeywordSet) aggregate.Result {
	return s.result
}

// stubExtractor returns canned keywords or a canned error.
type stubExtractor struct {
	keywords *domain.KeywordSet
	err      error
}

func (s *stubExtractor) ExtractKeywords(context.Context, []byte) (*domain.KeywordSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.keywords, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOffers() []domain.Offer {
	return []domain.Offer{
		{
			Title:      "Sony WH-1000XM5 Wireless Headphones",
			Price:      26990,
			Store:      "Flipkart",
			ProductURL: "https://www.flipkart.com/p/1",
		},
		{
			Title:      "Sony WH-1000XM5",
			Price:      29990,
			Store:      "Amazon",
			ProductURL: "https://www.amazon.in/dp/1",
		},
	}
}
