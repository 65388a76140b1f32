// Package notify defines the notification interface and implementations
// for price drop alert delivery.
package notify

import "context"

// PriceAlert contains the data needed to send a price drop notification.
type PriceAlert struct {
	ItemID        string
	ItemTitle     string
	Store         string
	ProductURL    string
	ImageURL      string
	CurrentPrice  float64
	TargetPrice   float64
	OriginalPrice float64
	LowestPrice   float64
}

// Notifier defines the interface for sending price drop alerts.
type Notifier interface {
	SendAlert(ctx context.Context, alert *PriceAlert) error
}
