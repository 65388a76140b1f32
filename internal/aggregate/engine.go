// Package aggregate fans one keyword set out to every registered retail
// source and merges the surviving offers into a single ranked result.
package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/donaldgifford/pricelens/internal/metrics"
	"github.com/donaldgifford/pricelens/internal/source"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// Diagnostic reports one source's outcome for an aggregation call.
// Durations are reported in whole milliseconds so API consumers never
// have to interpret Go's nanosecond encoding.
type Diagnostic struct {
	Source     string             `json:"source"`
	OfferCount int                `json:"offer_count"`
	Failure    source.FailureKind `json:"failure,omitempty"`
	DurationMS int64              `json:"duration_ms"`
}

// Result is a merged, price-sorted offer list plus per-source diagnostics.
// Diagnostics are ordered by source completion, offers by ascending price
// with arrival order breaking ties.
type Result struct {
	Offers      []domain.Offer `json:"offers"`
	Diagnostics []Diagnostic   `json:"diagnostics"`
}

// Engine runs concurrent source fan-out. It never returns an error: a
// search where every source fails yields empty offers and full diagnostics.
type Engine struct {
	adapters []source.Adapter
	logger   *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an Engine over the given source adapters.
func NewEngine(adapters []source.Adapter, opts ...EngineOption) *Engine {
	e := &Engine{
		adapters: adapters,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search fans the keyword set out to all adapters concurrently and waits
// for every one to finish. Canceling ctx propagates to in-flight adapters,
// which classify the cancellation into their own failure result; the call
// still returns a complete diagnostic set.
func (e *Engine) Search(ctx context.Context, keywords *domain.KeywordSet) Result {
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	results := make(chan source.Result, len(e.adapters))
	for _, adapter := range e.adapters {
		go func(a source.Adapter) {
			results <- a.Search(ctx, keywords)
		}(adapter)
	}

	out := Result{}
	// Collect in completion order so offer concatenation reflects arrival
	// and the stable sort's tie-break is deterministic per call.
	for range e.adapters {
		r := <-results

		diag := Diagnostic{
			Source:     r.Source,
			OfferCount: len(r.Offers),
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Failure != nil {
			diag.Failure = r.Failure.Kind
			e.logger.Warn("source failed",
				"source", r.Source,
				"kind", r.Failure.Kind,
				"error", r.Failure.Err,
			)
		} else {
			out.Offers = append(out.Offers, r.Offers...)
		}
		out.Diagnostics = append(out.Diagnostics, diag)
	}

	sort.SliceStable(out.Offers, func(i, j int) bool {
		return out.Offers[i].Price < out.Offers[j].Price
	})

	metrics.AggregationOffers.Observe(float64(len(out.Offers)))
	e.logger.Info("aggregation complete",
		"query", keywords.Query(),
		"offers", len(out.Offers),
		"sources", len(e.adapters),
		"duration", time.Since(start),
	)

	return out
}
