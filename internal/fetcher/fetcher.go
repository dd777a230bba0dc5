// Package fetcher turns a URL into the signal bundle the classifiers
// consume. The primary path renders the page in headless Chrome and runs
// the capture script; when no browser is available (or rendering fails)
// it degrades to a plain HTTP fetch, which yields markup and CSS but no
// geometry records or screenshot.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"brandscan/internal/browser"
	"brandscan/internal/page"
	"brandscan/internal/safeurl"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

	httpTimeout = 15 * time.Second
	cssTimeout  = 5 * time.Second

	// A render producing less than this much HTML is treated as failed
	// (interstitials, empty shells).
	minRenderedHTML = 500

	maxStylesheets    = 3
	maxStylesheetSize = 50_000
)

// Config configures a Fetcher.
type Config struct {
	// Browser enables the rendering path. Nil = HTTP only.
	Browser *browser.Manager

	// URLValidator rejects URLs before any request is made.
	// Default: safeurl.Validate.
	URLValidator func(string) error

	UserAgent string
	Logger    *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.URLValidator == nil {
		c.URLValidator = safeurl.Validate
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Fetcher fetches and digests pages. Safe for concurrent use.
type Fetcher struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.applyDefaults()
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: httpTimeout},
		log:    cfg.Logger,
	}
}

// Fetch builds the full signal bundle for one URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*page.Signals, error) {
	if err := f.cfg.URLValidator(rawURL); err != nil {
		return nil, err
	}

	sig := &page.Signals{
		URL:    rawURL,
		Origin: page.OriginOf(rawURL),
	}

	if f.cfg.Browser != nil {
		if err := f.render(ctx, sig); err != nil {
			f.log.Warn("render failed, falling back to plain fetch", "url", rawURL, "error", err)
		}
	}

	if sig.HTML == "" {
		if err := f.plain(ctx, sig); err != nil {
			return nil, err
		}
	}

	doc, err := html.Parse(strings.NewReader(sig.HTML))
	if err != nil {
		return nil, fmt.Errorf("fetcher: parse HTML: %w", err)
	}
	sig.Doc = doc

	f.collectCSS(ctx, sig)
	sig.Meta = metaInfo(doc)
	sig.HeroText = heroText(doc)

	f.log.Info("page fetched",
		"url", rawURL,
		"rendered", sig.Rendered,
		"html_bytes", len(sig.HTML),
		"css_blocks", len(sig.CSS),
		"brand_anchors", len(sig.BrandAnchors),
		"header_svgs", len(sig.HeaderVectors),
		"header_images", len(sig.HeaderRasters))

	return sig, nil
}

// plain performs the no-JavaScript fallback fetch.
func (f *Fetcher) plain(ctx context.Context, sig *page.Signals) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sig.URL, nil)
	if err != nil {
		return fmt.Errorf("fetcher: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetcher: GET %s: %w", sig.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetcher: GET %s: HTTP %d", sig.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, safeurl.MaxResponseBody))
	if err != nil {
		return fmt.Errorf("fetcher: read body: %w", err)
	}
	sig.HTML = string(body)
	return nil
}

// fetchStylesheet retrieves one linked stylesheet, capped in size. Failures
// are soft; a missing stylesheet just means fewer color signals.
func (f *Fetcher) fetchStylesheet(ctx context.Context, cssURL string) (string, bool) {
	if err := f.cfg.URLValidator(cssURL); err != nil {
		f.log.Debug("stylesheet rejected", "url", cssURL, "error", err)
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, cssTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cssURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("stylesheet fetch failed", "url", cssURL, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStylesheetSize))
	if err != nil {
		return "", false
	}
	return string(body), true
}
