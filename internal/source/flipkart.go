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

const flipkartName = "flipkart"

// FlipkartAdapter scrapes Flipkart search result grids.
type FlipkartAdapter struct {
	baseURL   string
	timeout   time.Duration
	maxOffers int
	sessions  SessionFactory
	limiter   *RateLimiter
	logger    *slog.Logger
}

// FlipkartOption configures the FlipkartAdapter.
type FlipkartOption func(*FlipkartAdapter)

// WithFlipkartBaseURL overrides the default store origin.
func WithFlipkartBaseURL(u string) FlipkartOption {
	return func(a *FlipkartAdapter) {
		a.baseURL = strings.TrimRight(u, "/")
	}
}

// WithFlipkartTimeout bounds a single search end to end.
func WithFlipkartTimeout(d time.Duration) FlipkartOption {
	return func(a *FlipkartAdapter) {
		a.timeout = d
	}
}

// WithFlipkartMaxOffers caps how many grid entries are considered.
func WithFlipkartMaxOffers(n int) FlipkartOption {
	return func(a *FlipkartAdapter) {
		a.maxOffers = n
	}
}

// WithFlipkartRateLimiter injects the per-source rate limiter.
func WithFlipkartRateLimiter(r *RateLimiter) FlipkartOption {
	return func(a *FlipkartAdapter) {
		a.limiter = r
	}
}

// WithFlipkartLogger sets the logger.
func WithFlipkartLogger(l *slog.Logger) FlipkartOption {
	return func(a *FlipkartAdapter) {
		a.logger = l
	}
}

// NewFlipkartAdapter creates a Flipkart adapter using the given session
// factory.
func NewFlipkartAdapter(sessions SessionFactory, opts ...FlipkartOption) *FlipkartAdapter {
	a := &FlipkartAdapter{
		baseURL:   "https://www.flipkart.com",
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
func (a *FlipkartAdapter) Name() string {
	return flipkartName
}

// Search implements Adapter.
func (a *FlipkartAdapter) Search(ctx context.Context, keywords *domain.KeywordSet) Result {
	start := time.Now()
	result := Result{Source: flipkartName}

	searchURL := a.baseURL + "/search?q=" + url.QueryEscape(keywords.Query())

	html, failure := fetchHTML(ctx, flipkartName, a.sessions, a.limiter, a.timeout, searchURL)
	if failure == nil {
		result.Offers, failure = a.parseResults(html)
	}
	result.Failure = failure
	result.Duration = time.Since(start)

	metrics.SourceSearchDuration.WithLabelValues(flipkartName).Observe(result.Duration.Seconds())
	if failure != nil {
		metrics.SourceFailuresTotal.WithLabelValues(flipkartName, string(failure.Kind)).Inc()
		a.logger.Warn("flipkart search failed", "kind", failure.Kind, "error", failure.Err)
	} else {
		metrics.SourceOffersTotal.WithLabelValues(flipkartName).Add(float64(len(result.Offers)))
	}

	return result
}

func (a *FlipkartAdapter) parseResults(html string) ([]domain.Offer, *Failure) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Failure{Kind: FailureParseMismatch, Err: err}
	}

	rows := doc.Find("._1AtVbE")
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

		offer := domain.Offer{
			Title:       strings.TrimSpace(s.Find("._4rR01T").First().Text()),
			Price:       parsePrice(s.Find("._30jeq3").First().Text()),
			ImageURL:    s.Find("img._396cs4").First().AttrOr("src", ""),
			ProductURL:  resolveURL(a.baseURL, s.Find("a._1fQZEK").First().AttrOr("href", "")),
			Store:       "Flipkart",
			Rating:      parseRating(s.Find("._3LWZlK").First().Text()),
			ReviewCount: parseReviewCount(s.Find("span._2_R_DZ").First().Text()),
		}

		// Flipkart wraps banners and filter chrome in the same row class;
		// only rows with real product data become offers.
		if offer.Usable() {
			offers = append(offers, offer)
		}
		return true
	})

	return offers, nil
}
