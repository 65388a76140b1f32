// Package wishlist implements price tracking over saved items: adding
// offers to a wishlist, refreshing their prices against the retail
// sources, and firing price drop alerts.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/pricelens/internal/aggregate"
	"github.com/donaldgifford/pricelens/internal/metrics"
	"github.com/donaldgifford/pricelens/internal/notify"
	"github.com/donaldgifford/pricelens/internal/store"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// Searcher runs one aggregated offer search. *aggregate.Engine satisfies it.
type Searcher interface {
	Search(ctx context.Context, keywords *domain.KeywordSet) aggregate.Result
}

// Tracker owns the wishlist lifecycle: track, target, acknowledge, remove,
// and the periodic price refresh that drives alerts.
type Tracker struct {
	store    store.Store
	searcher Searcher
	notifier notify.Notifier
	logger   *slog.Logger

	// stagger spaces out source traffic between items during RefreshAll.
	stagger time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.logger = l
	}
}

// WithStagger sets the delay between consecutive item refreshes in a cycle.
func WithStagger(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.stagger = d
	}
}

// NewTracker creates a Tracker.
func NewTracker(s store.Store, searcher Searcher, n notify.Notifier, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:    s,
		searcher: searcher,
		notifier: n,
		logger:   slog.Default(),
		locks:    map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track saves an offer as a new wishlist item for the owner. The offer's
// price seeds current, original, and lowest price alike. A nil target means
// the item is tracked without alerting until one is set.
func (t *Tracker) Track(
	ctx context.Context,
	ownerID string,
	offer domain.Offer,
	keywords []string,
	target *float64,
) (*domain.TrackedItem, error) {
	if !offer.Usable() {
		return nil, fmt.Errorf("offer is missing a title or positive price")
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("at least one keyword is required to refresh the item later")
	}
	if target != nil && *target <= 0 {
		return nil, fmt.Errorf("target price must be positive")
	}

	item := &domain.TrackedItem{
		OwnerID:       ownerID,
		Title:         offer.Title,
		Keywords:      keywords,
		Store:         offer.Store,
		ImageURL:      offer.ImageURL,
		ProductURL:    offer.ProductURL,
		CurrentPrice:  offer.Price,
		OriginalPrice: offer.Price,
		LowestPrice:   offer.Price,
		TargetPrice:   target,
		State:         domain.StateActive,
	}

	if err := t.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	t.logger.Info("item tracked",
		"item_id", item.ID,
		"owner", ownerID,
		"store", item.Store,
		"price", item.CurrentPrice,
	)

	return item, nil
}

// Get returns one of the owner's items.
func (t *Tracker) Get(ctx context.Context, ownerID, id string) (*domain.TrackedItem, error) {
	return t.getOwned(ctx, ownerID, id)
}

// List returns the owner's non-removed items.
func (t *Tracker) List(ctx context.Context, ownerID string) ([]domain.TrackedItem, error) {
	return t.store.ListItems(ctx, ownerID)
}

// SetTarget sets or clears the item's target price. Changing the target in
// a way that removes the fired alert's condition (clearing it, raising it,
// or dropping it below the current price) returns an alert-fired item to
// active so the next qualifying drop can alert again.
func (t *Tracker) SetTarget(
	ctx context.Context,
	ownerID, id string,
	target *float64,
) (*domain.TrackedItem, error) {
	if target != nil && *target <= 0 {
		return nil, fmt.Errorf("target price must be positive")
	}
	return t.mutate(ctx, ownerID, id, func(item *domain.TrackedItem) error {
		prev := item.TargetPrice
		item.TargetPrice = target
		if item.State == domain.StateAlertFired {
			// The fired alert stands only while the condition it fired for
			// still holds under a target that was not raised. Clearing,
			// raising, or dropping the target below the current price
			// removes that condition and re-arms the item.
			stillFired := target != nil && prev != nil &&
				item.CurrentPrice <= *target && *target <= *prev
			if !stillFired {
				item.State = domain.StateActive
			}
		}
		return nil
	})
}

// Acknowledge re-arms an item whose alert already fired, returning it to
// active so a future drop can alert again. Acknowledging an item that has
// no fired alert is a no-op.
func (t *Tracker) Acknowledge(ctx context.Context, ownerID, id string) (*domain.TrackedItem, error) {
	return t.mutate(ctx, ownerID, id, func(item *domain.TrackedItem) error {
		if item.State == domain.StateAlertFired {
			item.State = domain.StateActive
		}
		return nil
	})
}

// Remove soft-deletes the item. Removed items are excluded from listings
// and refresh cycles but their history is retained.
func (t *Tracker) Remove(ctx context.Context, ownerID, id string) error {
	_, err := t.mutate(ctx, ownerID, id, func(item *domain.TrackedItem) error {
		item.State = domain.StateRemoved
		return nil
	})
	return err
}

// RefreshItem re-searches the item's keywords, records the observed price,
// and fires the alert when the price crosses the target. Safe to call
// concurrently: refreshes of the same item are serialized.
func (t *Tracker) RefreshItem(ctx context.Context, id string) (*domain.TrackedItem, error) {
	lock := t.itemLock(id)
	lock.Lock()
	defer lock.Unlock()

	item, err := t.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.State == domain.StateRemoved {
		return nil, store.ErrNotFound
	}

	result := t.searcher.Search(ctx, item.KeywordSet())
	now := time.Now()
	item.LastCheckedAt = &now

	offer, found := selectOffer(item, result.Offers)
	if found {
		item.ObservePrice(offer.Price, now)
		if t.shouldAlert(item) {
			if err := t.fireAlert(ctx, item); err != nil {
				// Stay active so the next refresh retries delivery.
				t.logger.Error("alert delivery failed", "item_id", item.ID, "error", err)
			} else {
				item.State = domain.StateAlertFired
				metrics.AlertsFiredTotal.Inc()
			}
		}
	} else {
		t.logger.Warn("no usable offer found during refresh",
			"item_id", item.ID,
			"sources", len(result.Diagnostics),
		)
	}

	if err := t.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// RefreshAll runs one refresh cycle over every refreshable item. Individual
// item failures are absorbed and counted; the cycle always runs to the end.
func (t *Tracker) RefreshAll(ctx context.Context) error {
	metrics.RefreshCyclesTotal.Inc()

	items, err := t.store.ListRefreshableItems(ctx)
	if err != nil {
		return fmt.Errorf("listing refreshable items: %w", err)
	}

	t.logger.Info("refresh cycle starting", "items", len(items))

	for i := range items {
		if i > 0 && t.stagger > 0 {
			select {
			case <-time.After(t.stagger):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if _, err := t.RefreshItem(ctx, items[i].ID); err != nil {
			metrics.RefreshFailuresTotal.Inc()
			t.logger.Error("item refresh failed", "item_id", items[i].ID, "error", err)
			continue
		}
		metrics.RefreshItemsTotal.Inc()
	}

	return nil
}

// shouldAlert reports whether the refresh must fire the price drop alert.
// An alert fires at most once per active period: alert_fired items stay
// silent until acknowledged.
func (t *Tracker) shouldAlert(item *domain.TrackedItem) bool {
	return item.State == domain.StateActive && item.BelowTarget()
}

func (t *Tracker) fireAlert(ctx context.Context, item *domain.TrackedItem) error {
	alert := &notify.PriceAlert{
		ItemID:        item.ID,
		ItemTitle:     item.Title,
		Store:         item.Store,
		ProductURL:    item.ProductURL,
		ImageURL:      item.ImageURL,
		CurrentPrice:  item.CurrentPrice,
		OriginalPrice: item.OriginalPrice,
		LowestPrice:   item.LowestPrice,
	}
	if item.TargetPrice != nil {
		alert.TargetPrice = *item.TargetPrice
	}
	return t.notifier.SendAlert(ctx, alert)
}

// selectOffer picks the offer to price the item against: the cheapest offer
// from the item's own store when one exists, otherwise the cheapest offer
// overall. Offers arrive price-ascending, so the first match wins.
func selectOffer(item *domain.TrackedItem, offers []domain.Offer) (domain.Offer, bool) {
	if len(offers) == 0 {
		return domain.Offer{}, false
	}
	for _, o := range offers {
		if o.Store == item.Store {
			return o, true
		}
	}
	return offers[0], true
}

// mutate applies fn to the owner's item and writes it back, retrying once
// when a concurrent refresh advanced the version first.
func (t *Tracker) mutate(
	ctx context.Context,
	ownerID, id string,
	fn func(*domain.TrackedItem) error,
) (*domain.TrackedItem, error) {
	for attempt := 0; attempt < 2; attempt++ {
		item, err := t.getOwned(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}

		if err := fn(item); err != nil {
			return nil, err
		}

		err = t.store.UpdateItem(ctx, item)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, store.ErrVersionConflict
}

// getOwned loads the item and hides other owners' items behind ErrNotFound.
func (t *Tracker) getOwned(ctx context.Context, ownerID, id string) (*domain.TrackedItem, error) {
	item, err := t.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID || item.State == domain.StateRemoved {
		return nil, store.ErrNotFound
	}
	return item, nil
}

func (t *Tracker) itemLock(id string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[id] = lock
	}
	return lock
}
