package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoOpNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := n.SendAlert(context.Background(), &PriceAlert{
		ItemTitle:    "Sony WH-1000XM5",
		CurrentPrice: 24990,
		TargetPrice:  25000,
	})
	require.NoError(t, err)
}

// compile-time interface check.
var _ Notifier = (*NoOpNotifier)(nil)
