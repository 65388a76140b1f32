package client

import (
	"context"
	"strconv"

	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// trackRequest mirrors the API's wishlist tracking body.
type trackRequest struct {
	Offer       domain.Offer `json:"offer"`
	Keywords    []string     `json:"keywords"`
	TargetPrice *float64     `json:"target_price,omitempty"`
}

type targetRequest struct {
	TargetPrice *float64 `json:"target_price"`
}

// Track saves an offer to the wishlist. A nil target tracks the item
// without alerting.
func (c *Client) Track(
	ctx context.Context,
	offer domain.Offer,
	keywords []string,
	target *float64,
) (*domain.TrackedItem, error) {
	var item domain.TrackedItem
	err := c.post(ctx, "/api/v1/wishlist", trackRequest{
		Offer:       offer,
		Keywords:    keywords,
		TargetPrice: target,
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns all tracked items.
func (c *Client) ListItems(ctx context.Context) ([]domain.TrackedItem, error) {
	var items []domain.TrackedItem
	if err := c.get(ctx, "/api/v1/wishlist", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem returns one tracked item.
func (c *Client) GetItem(ctx context.Context, id string) (*domain.TrackedItem, error) {
	var item domain.TrackedItem
	if err := c.get(ctx, "/api/v1/wishlist/"+id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// SetTarget sets or clears (nil) the item's target price.
func (c *Client) SetTarget(
	ctx context.Context,
	id string,
	target *float64,
) (*domain.TrackedItem, error) {
	var item domain.TrackedItem
	err := c.put(ctx, "/api/v1/wishlist/"+id+"/target", targetRequest{TargetPrice: target}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Acknowledge re-arms a fired alert.
func (c *Client) Acknowledge(ctx context.Context, id string) (*domain.TrackedItem, error) {
	var item domain.TrackedItem
	if err := c.post(ctx, "/api/v1/wishlist/"+id+"/ack", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Refresh re-checks the item's price immediately.
func (c *Client) Refresh(ctx context.Context, id string) (*domain.TrackedItem, error) {
	var item domain.TrackedItem
	if err := c.post(ctx, "/api/v1/wishlist/"+id+"/refresh", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem removes a tracked item.
func (c *Client) RemoveItem(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/wishlist/"+id, nil)
}

// ListHistory returns the caller's most recent searches.
func (c *Client) ListHistory(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	path := "/api/v1/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var records []domain.SearchRecord
	if err := c.get(ctx, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}
