package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Browser is a rod-backed SessionFactory sharing one headless Chromium
// instance. Each session gets its own incognito context so sources never
// leak cookies into each other.
type Browser struct {
	browser    *rod.Browser
	userAgent  string
	navTimeout time.Duration
}

// BrowserOption configures the Browser.
type BrowserOption func(*Browser)

// WithUserAgent overrides the user agent sent by every session.
func WithUserAgent(ua string) BrowserOption {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// WithNavTimeout caps how long a single page navigation may take.
func WithNavTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) {
		b.navTimeout = d
	}
}

// NewBrowser launches a headless Chromium and connects to it.
func NewBrowser(headless bool, opts ...BrowserOption) (*Browser, error) {
	b := &Browser{
		navTimeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}

	controlURL, err := launcher.New().
		Headless(headless).
		NoSandbox(true).
		Leakless(false).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	b.browser = browser

	return b, nil
}

// NewSession implements SessionFactory.
func (b *Browser) NewSession(ctx context.Context) (Session, error) {
	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("creating incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	if b.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.userAgent}); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("setting user agent: %w", err)
		}
	}

	return &rodSession{page: page.Context(ctx), navTimeout: b.navTimeout}, nil
}

// Close shuts down the shared browser instance.
func (b *Browser) Close() error {
	if err := b.browser.Close(); err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

type rodSession struct {
	page       *rod.Page
	navTimeout time.Duration
}

func (s *rodSession) Fetch(ctx context.Context, url string) (string, error) {
	page := s.page.Context(ctx).Timeout(s.navTimeout)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for page load: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading page HTML: %w", err)
	}
	return html, nil
}

func (s *rodSession) Close() error {
	return s.page.Close()
}
