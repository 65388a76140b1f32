package source_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/donaldgifford/pricelens/internal/source"
)

// fakeSession serves canned HTML in place of a real browser page.
type fakeSession struct {
	html  string
	err   error
	delay time.Duration

	mu         sync.Mutex
	fetchedURL string
	closed     bool
}

func (s *fakeSession) Fetch(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	s.fetchedURL = url
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.html, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) wasClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) url() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchedURL
}

// fakeFactory hands out one prepared session per call.
type fakeFactory struct {
	session *fakeSession
	err     error
}

func (f *fakeFactory) NewSession(context.Context) (source.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

var errSessionUnavailable = errors.New("browser unavailable")
