package source

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/donaldgifford/pricelens/internal/metrics"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

const amazonName = "amazon"

// AmazonAdapter scrapes Amazon search result grids.
type AmazonAdapter struct {
	baseURL   string
	timeout   time.Duration
	maxOffers int
	sessions  SessionFactory
	limiter   *RateLimiter
	logger    *slog.Logger
}

// AmazonOption configures the AmazonAdapter.
type AmazonOption func(*AmazonAdapter)

// WithAmazonBaseURL overrides the default store origin.
func WithAmazonBaseURL(u string) AmazonOption {
	return func(a *AmazonAdapter) {
		a.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAmazonTimeout bounds a single search end to end.
func WithAmazonTimeout(d time.Duration) AmazonOption {
	return func(a *AmazonAdapter) {
		a.timeout = d
	}
}

// WithAmazonMaxOffers caps how many grid entries are considered.
func WithAmazonMaxOffers(n int) AmazonOption {
	return func(a *AmazonAdapter) {
		a.maxOffers = n
	}
}

// WithAmazonRateLimiter injects the per-source rate limiter.
func WithAmazonRateLimiter(r *RateLimiter) AmazonOption {
	return func(a *AmazonAdapter) {
		a.limiter = r
	}
}

// WithAmazonLogger sets the logger.
func WithAmazonLogger(l *slog.Logger) AmazonOption {
	return func(a *AmazonAdapter) {
		a.logger = l
	}
}

// NewAmazonAdapter creates an Amazon adapter using the given session factory.
func NewAmazonAdapter(sessions SessionFactory, opts ...AmazonOption) *AmazonAdapter {
	a := &AmazonAdapter{
		baseURL:   "https://www.amazon.in",
		timeout:   8 * time.Second,
		maxOffers: 5,
		sessions:  sessions,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *AmazonAdapter) Name() string {
	return amazonName
}

// Search implements Adapter. All errors are absorbed into the Result's
// typed Failure.
func (a *AmazonAdapter) Search(ctx context.Context, keywords *domain.KeywordSet) Result {
	start := time.Now()
	result := Result{Source: amazonName}

	searchURL := a.baseURL + "/s?k=" + url.QueryEscape(keywords.Query())

	html, failure := fetchHTML(ctx, amazonName, a.sessions, a.limiter, a.timeout, searchURL)
	if failure == nil {
		result.Offers, failure = a.parseResults(html)
	}
	result.Failure = failure
	result.Duration = time.Since(start)

	metrics.SourceSearchDuration.WithLabelValues(amazonName).Observe(result.Duration.Seconds())
	if failure != nil {
		metrics.SourceFailuresTotal.WithLabelValues(amazonName, string(failure.Kind)).Inc()
		a.logger.Warn("amazon search failed", "kind", failure.Kind, "error", failure.Err)
	} else {
		metrics.SourceOffersTotal.WithLabelValues(amazonName).Add(float64(len(result.Offers)))
	}

	return result
}

func (a *AmazonAdapter) parseResults(html string) ([]domain.Offer, *Failure) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Failure{Kind: FailureParseMismatch, Err: err}
	}

	rows := doc.Find(`.s-result-item[data-component-type="s-search-result"]`)
	if rows.Length() == 0 {
		return nil, &Failure{
			Kind: FailureParseMismatch,
			Err:  errors.New("no search result rows matched"),
		}
	}

	offers := make([]domain.Offer, 0, a.maxOffers)
	rows.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= a.maxOffers {
			return false
		}

		whole := s.Find(".a-price-whole").First().Text()
		fraction := s.Find(".a-price-fraction").First().Text()

		offer := domain.Offer{
			Title:       strings.TrimSpace(s.Find("h2 span").First().Text()),
			Price:       parseAmazonPrice(whole, fraction),
			ImageURL:    s.Find("img.s-image").First().AttrOr("src", ""),
			ProductURL:  resolveURL(a.baseURL, s.Find("a.a-link-normal").First().AttrOr("href", "")),
			Store:       "Amazon",
			Rating:      parseRating(s.Find(".a-icon-star-small").First().Text()),
			ReviewCount: parseReviewCount(s.Find("span.a-size-base").First().Text()),
		}

		// Entries without a usable title and price are grid filler
		// (sponsored shelves, banners), not offers.
		if offer.Usable() {
			offers = append(offers, offer)
		}
		return true
	})

	return offers, nil
}
