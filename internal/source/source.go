// Package source implements retail source adapters that turn a keyword set
// into normalized offers by scraping each source's search results page.
package source

import (
	"context"
	"fmt"
	"time"

	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// FailureKind classifies why a source search produced no offers.
type FailureKind string

// Failure kinds.
const (
	FailureTimeout       FailureKind = "timeout"
	FailureBlocked       FailureKind = "blocked"
	FailureParseMismatch FailureKind = "parse_mismatch"
	FailureNetworkError  FailureKind = "network_error"
)

// Failure is a typed source failure. It stays inside the Result; adapters
// never let an error escape their boundary.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of one source search. Exactly one of Offers or
// Failure is meaningful: a failed search has a nil offer slice, a successful
// one has a nil Failure (possibly with zero offers).
type Result struct {
	Source   string
	Offers   []domain.Offer
	Failure  *Failure
	Duration time.Duration
}

// OK reports whether the search completed without a failure.
func (r *Result) OK() bool {
	return r.Failure == nil
}

// Adapter searches one retail source. Implementations classify every error
// into a Failure kind instead of returning it.
type Adapter interface {
	Name() string
	Search(ctx context.Context, keywords *domain.KeywordSet) Result
}

// Session is one isolated browser page. Fetch navigates to the URL, waits
// for the document to load, and returns the rendered HTML.
type Session interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// SessionFactory hands out fresh sessions, one per search invocation.
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}
