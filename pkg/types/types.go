// Package domain defines the core business types for pricelens.
package domain

import (
	"strings"
	"time"
)

// Offer represents a single purchasable listing found at one retail source.
// Offers are rebuilt on every search; they are never mutated after creation.
type Offer struct {
	Title       string  `json:"title"                  db:"title"`
	Price       float64 `json:"price"                  db:"price"`
	ImageURL    string  `json:"image_url,omitempty"    db:"image_url"`
	ProductURL  string  `json:"product_url"            db:"product_url"`
	Store       string  `json:"store"                  db:"store"`
	Rating      float64 `json:"rating,omitempty"       db:"rating"`
	ReviewCount int     `json:"review_count,omitempty" db:"review_count"`
}

// Usable reports whether the offer carries enough data to surface.
// Offers without a title or a positive price are dropped, never padded
// with sentinel values.
func (o *Offer) Usable() bool {
	return o.Title != "" && o.Price > 0
}

// KeywordSet is a deduplicated, lowercased collection of product keywords.
// Insertion order is preserved so the derived query string is deterministic.
type KeywordSet struct {
	words []string
	seen  map[string]struct{}
}

// NewKeywordSet creates a KeywordSet seeded with the given words.
func NewKeywordSet(words ...string) *KeywordSet {
	k := &KeywordSet{seen: make(map[string]struct{})}
	for _, w := range words {
		k.Add(w)
	}
	return k
}

// Add inserts a word after trimming and lowercasing.
// It reports whether the word was new.
func (k *KeywordSet) Add(word string) bool {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return false
	}
	if _, ok := k.seen[w]; ok {
		return false
	}
	k.seen[w] = struct{}{}
	k.words = append(k.words, w)
	return true
}

// Words returns the keywords in insertion order.
func (k *KeywordSet) Words() []string {
	out := make([]string, len(k.words))
	copy(out, k.words)
	return out
}

// Query returns the keywords joined with single spaces, the form retail
// sources accept as free-text search input.
func (k *KeywordSet) Query() string {
	return strings.Join(k.words, " ")
}

// Len returns the number of distinct keywords.
func (k *KeywordSet) Len() int {
	return len(k.words)
}

// ItemState represents a tracked item's position in its lifecycle.
type ItemState string

// Item state constants.
const (
	StateActive     ItemState = "active"
	StateAlertFired ItemState = "alert_fired"
	StateRemoved    ItemState = "removed"
)

// TrackedItem represents a wishlist entry: a user's standing interest in a
// product, with its observed price history and optional target-price alert.
//
// OriginalPrice is written once at creation and never changes. LowestPrice
// only ever decreases after it is first set. Version backs optimistic
// concurrency so a background refresh and a user mutation cannot silently
// overwrite each other.
type TrackedItem struct {
	ID            string     `json:"id"                        db:"id"`
	OwnerID       string     `json:"owner_id"                  db:"owner_id"`
	Title         string     `json:"title"                     db:"title"`
	Keywords      []string   `json:"keywords"                  db:"keywords"`
	Store         string     `json:"store"                     db:"store"`
	ImageURL      string     `json:"image_url,omitempty"       db:"image_url"`
	ProductURL    string     `json:"product_url"               db:"product_url"`
	CurrentPrice  float64    `json:"current_price"             db:"current_price"`
	OriginalPrice float64    `json:"original_price"            db:"original_price"`
	LowestPrice   float64    `json:"lowest_price"              db:"lowest_price"`
	TargetPrice   *float64   `json:"target_price,omitempty"    db:"target_price"`
	State         ItemState  `json:"state"                     db:"state"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty" db:"last_checked_at"`
	Version       int        `json:"version"                   db:"version"`
	CreatedAt     time.Time  `json:"created_at"                db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"                db:"updated_at"`
}

// ObservePrice records a freshly observed price, keeping LowestPrice
// monotonically non-increasing.
func (t *TrackedItem) ObservePrice(price float64, at time.Time) {
	t.CurrentPrice = price
	if price < t.LowestPrice {
		t.LowestPrice = price
	}
	t.LastCheckedAt = &at
}

// BelowTarget reports whether the current price has reached the user's
// target. Items without a target never alert.
func (t *TrackedItem) BelowTarget() bool {
	return t.TargetPrice != nil && t.CurrentPrice <= *t.TargetPrice
}

// PriceDropped reports whether the current price sits below the price at
// which the item was first tracked.
func (t *TrackedItem) PriceDropped() bool {
	return t.CurrentPrice < t.OriginalPrice
}

// KeywordSet rebuilds the identity keywords used to re-query sources.
func (t *TrackedItem) KeywordSet() *KeywordSet {
	return NewKeywordSet(t.Keywords...)
}

// SearchRecord is one entry in a user's search history.
type SearchRecord struct {
	ID         string    `json:"id"          db:"id"`
	OwnerID    string    `json:"owner_id"    db:"owner_id"`
	QueryType  string    `json:"query_type"  db:"query_type"`
	Keywords   []string  `json:"keywords"    db:"keywords"`
	OfferCount int       `json:"offer_count" db:"offer_count"`
	SearchedAt time.Time `json:"searched_at" db:"searched_at"`
}

// Search record query types.
const (
	QueryTypeImage = "image"
	QueryTypeText  = "text"
)
