package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/donaldgifford/pricelens/internal/metrics"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// Extractor turns an image annotation into a deduplicated keyword set.
type Extractor struct {
	client       Client
	maxTextWords int
	logger       *slog.Logger
}

// ExtractorOption configures the Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithMaxTextWords caps how many words of the full-text annotation are
// admitted as keywords.
func WithMaxTextWords(n int) ExtractorOption {
	return func(e *Extractor) {
		e.maxTextWords = n
	}
}

// NewExtractor creates an Extractor backed by the given annotation client.
func NewExtractor(client Client, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		client:       client,
		maxTextWords: 10,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractKeywords annotates the image and merges labels, logos and localized
// object names into a keyword set, then admits at most the first
// maxTextWords whitespace-separated words of the full-text annotation.
// Everything is lowercased; duplicates collapse case-insensitively.
//
// An empty keyword set is a valid outcome, not an error.
func (e *Extractor) ExtractKeywords(ctx context.Context, image []byte) (*domain.KeywordSet, error) {
	ann, err := e.client.Annotate(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("annotating image: %w", err)
	}

	keywords := domain.NewKeywordSet()
	for _, label := range ann.Labels {
		keywords.Add(label)
	}
	for _, logo := range ann.Logos {
		keywords.Add(logo)
	}
	for _, obj := range ann.Objects {
		keywords.Add(obj)
	}

	if ann.FullText != "" {
		words := strings.Fields(ann.FullText)
		if len(words) > e.maxTextWords {
			words = words[:e.maxTextWords]
		}
		for _, w := range words {
			keywords.Add(w)
		}
	}

	metrics.KeywordsExtracted.Observe(float64(keywords.Len()))
	e.logger.Debug("extracted keywords",
		"count", keywords.Len(),
		"labels", len(ann.Labels),
		"logos", len(ann.Logos),
		"objects", len(ann.Objects),
	)

	return keywords, nil
}
