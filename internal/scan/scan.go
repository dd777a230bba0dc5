// Package scan orchestrates one extraction: fetch the page, run the three
// programmatic classifiers, decide whether the external hint is worth the
// round trip, and merge everything into a single result with provenance.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"brandscan/internal/colors"
	"brandscan/internal/hint"
	"brandscan/internal/logo"
	"brandscan/internal/merge"
	"brandscan/internal/page"
	"brandscan/internal/typography"
)

// PageFetcher turns a URL into the signal bundle.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*page.Signals, error)
}

// HintProvider is the optional external oracle.
type HintProvider interface {
	Enabled() bool
	Guess(ctx context.Context, pc hint.PageContext) (*hint.Guess, error)
	Tone(ctx context.Context, title, description, heroText string) hint.Vibe
}

// Result is one complete scan.
type Result struct {
	ID           string             `json:"id,omitempty"`
	URL          string             `json:"url"`
	Colors       merge.ColorSet     `json:"colors"`
	Typography   merge.FontSet      `json:"typography"`
	Logo         logo.Result        `json:"logo"`
	Vibe         hint.Vibe          `json:"vibe"`
	Meta         page.Metadata      `json:"meta"`
	HeroText     string             `json:"hero_text,omitempty"`
	ExtractedAt  time.Time          `json:"extracted_at"`
	Verification merge.Verification `json:"verification"`
}

// Config configures a Scanner.
type Config struct {
	Fetcher PageFetcher
	Hints   HintProvider // nil disables the hint entirely
	Vision  logo.Vision  // nil disables the screenshot tier
	Logger  *slog.Logger
}

// Scanner runs extractions. Safe for concurrent use.
type Scanner struct {
	fetcher  PageFetcher
	hints    HintProvider
	detector *logo.Detector
	log      *slog.Logger
	now      func() time.Time
}

// New builds a Scanner.
func New(cfg Config) *Scanner {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{
		fetcher:  cfg.Fetcher,
		hints:    cfg.Hints,
		detector: logo.New(logo.Config{Vision: cfg.Vision, Logger: log}),
		log:      log,
		now:      time.Now,
	}
}

// NormalizeURL makes a bare domain fetchable by defaulting to https.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return raw
}

// Scan runs the full pipeline for one URL.
func (s *Scanner) Scan(ctx context.Context, rawURL string) (*Result, error) {
	target := NormalizeURL(rawURL)
	if target == "" {
		return nil, fmt.Errorf("scan: empty URL")
	}

	start := s.now()
	sig, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("scan: fetch %s: %w", target, err)
	}
	if sig.HTML == "" {
		return nil, fmt.Errorf("scan: %s returned no HTML", target)
	}

	// The classifiers share nothing but the signal bundle.
	var (
		progColors colors.Assignment
		progFonts  typography.Assignment
		progLogo   logo.Result
		wg         sync.WaitGroup
	)
	wg.Add(3)
	go func() { defer wg.Done(); progColors = colors.Extract(sig.CSS) }()
	go func() { defer wg.Done(); progFonts = typography.Extract(sig.CSS, headHTML(sig.Doc)) }()
	go func() { defer wg.Done(); progLogo = s.detector.Detect(ctx, sig) }()
	wg.Wait()

	var guess *hint.Guess
	need := merge.NeedHint(progLogo, progColors, progFonts)
	skipped := true
	if need && s.hints != nil && s.hints.Enabled() {
		skipped = false
		g, err := s.hints.Guess(ctx, hint.BuildContext(sig))
		if err != nil {
			s.log.Warn("hint unavailable", "url", target, "error", err)
		} else {
			guess = g
		}
	}

	finalColors := merge.Colors(progColors, guess)
	finalFonts := merge.Fonts(progFonts, guess)
	finalLogo := merge.Logo(progLogo, guess)

	vibe := s.tone(ctx, sig)

	stats := merge.SignalStats{
		VectorCount:   sig.VectorCount,
		BrandAnchors:  len(sig.BrandAnchors),
		HeaderVectors: len(sig.HeaderVectors),
		HeaderRasters: len(sig.HeaderRasters),
	}

	res := &Result{
		URL:        target,
		Colors:     finalColors,
		Typography: finalFonts,
		Logo:       finalLogo,
		Vibe:       vibe,
		Meta:       sig.Meta,
		HeroText:   sig.HeroText,
		ExtractedAt: start.UTC(),
		Verification: merge.BuildVerification(
			progColors, progFonts, progLogo,
			guess, skipped,
			finalColors, finalFonts, finalLogo,
			stats),
	}

	s.log.Info("scan complete",
		"url", target,
		"duration", s.now().Sub(start),
		"logo_source", finalLogo.Source,
		"logo_confidence", finalLogo.Confidence,
		"primary", finalColors.Primary,
		"heading_font", finalFonts.HeadingFont,
		"hint_skipped", skipped)

	return res, nil
}

func (s *Scanner) tone(ctx context.Context, sig *page.Signals) hint.Vibe {
	if s.hints == nil {
		return hint.Vibe{
			Tone: "Professional", Audience: "General", Vibe: "Modern",
			Analysis: "Tone analysis disabled",
		}
	}
	return s.hints.Tone(ctx, sig.Meta.Title, sig.Meta.Description, sig.HeroText)
}

// headHTML serializes the document head so the font classifier can see
// linked Google Fonts URLs.
func headHTML(doc *html.Node) string {
	if doc == nil {
		return ""
	}
	head := findAtom(doc, atom.Head)
	if head == nil {
		return ""
	}
	var b strings.Builder
	if err := html.Render(&b, head); err != nil {
		return ""
	}
	return b.String()
}

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}
