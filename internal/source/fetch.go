package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/donaldgifford/pricelens/internal/metrics"
)

// fetchHTML runs the shared per-search plumbing: rate limiting, session
// acquisition, navigation and teardown. The session is always released,
// even when the fetch fails or the caller's context is canceled.
func fetchHTML(
	ctx context.Context,
	name string,
	sessions SessionFactory,
	limiter *RateLimiter,
	timeout time.Duration,
	searchURL string,
) (string, *Failure) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.SourceDailyLimitHits.WithLabelValues(name).Inc()
				return "", &Failure{Kind: FailureBlocked, Err: err}
			}
			return "", classify(err)
		}
		metrics.SourceDailyUsage.WithLabelValues(name).Set(float64(limiter.DailyCount()))
	}

	sess, err := sessions.NewSession(ctx)
	if err != nil {
		return "", classify(err)
	}
	defer sess.Close() //nolint:errcheck // session teardown is best-effort

	html, err := sess.Fetch(ctx, searchURL)
	if err != nil {
		return "", classify(err)
	}

	if looksBlocked(html) {
		return "", &Failure{Kind: FailureBlocked, Err: errors.New("bot challenge page detected")}
	}

	return html, nil
}

// classify maps a transport-level error to a Failure kind.
func classify(err error) *Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: FailureTimeout, Err: err}
	}
	return &Failure{Kind: FailureNetworkError, Err: err}
}

// looksBlocked detects common bot-challenge interstitials so they surface
// as Blocked instead of ParseMismatch.
func looksBlocked(html string) bool {
	lower := strings.ToLower(html)
	return strings.Contains(lower, "captcha") ||
		strings.Contains(lower, "robot check") ||
		strings.Contains(lower, "are you a human")
}
