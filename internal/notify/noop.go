package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded alerts. It is used
// when Discord (or another notification backend) is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards alerts with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendAlert logs and discards a single alert.
func (n *NoOpNotifier) SendAlert(_ context.Context, alert *PriceAlert) error {
	n.log.Debug("notification discarded (no backend configured)",
		"item", alert.ItemTitle,
		"current_price", alert.CurrentPrice,
		"target_price", alert.TargetPrice,
	)
	return nil
}
