package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"brandscan/internal/hint"
	"brandscan/internal/page"
)

type fakeFetcher struct {
	sig     *page.Signals
	err     error
	lastURL string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*page.Signals, error) {
	f.lastURL = rawURL
	return f.sig, f.err
}

type fakeHints struct {
	enabled    bool
	guess      *hint.Guess
	guessErr   error
	guessCalls int
	toneCalls  int
}

func (f *fakeHints) Enabled() bool { return f.enabled }

func (f *fakeHints) Guess(context.Context, hint.PageContext) (*hint.Guess, error) {
	f.guessCalls++
	return f.guess, f.guessErr
}

func (f *fakeHints) Tone(context.Context, string, string, string) hint.Vibe {
	f.toneCalls++
	return hint.Vibe{Tone: "Playful", Audience: "Developers", Vibe: "Bold", Success: true}
}

// strongSignals returns a page whose programmatic signals are adequate on
// their own: a brand-anchor wordmark, a primary color, and a heading font.
func strongSignals(t *testing.T) *page.Signals {
	t.Helper()
	doc := `<html><head><title>Acme</title></head><body><header></header></body></html>`
	node, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return &page.Signals{
		URL:    "https://acme.test/",
		Origin: "https://acme.test",
		HTML:   doc,
		Doc:    node,
		CSS: []string{
			`.btn { background-color: #ff5733; } h1 { font-family: Inter, sans-serif; } body { font-family: Roboto, sans-serif; }`,
		},
		BrandAnchors: []page.BrandAnchor{{
			Href: "/",
			Vectors: []page.VectorRecord{{
				Markup: `<svg viewBox="0 0 120 40"><path d="M0 0h120v40H0z"/></svg>`,
				Geometry: page.Geometry{
					Width: 120, Height: 40, X: 24, Area: 4800,
					AspectRatio: 3.0, PathCount: 4, PathLength: 600,
					PathCommands: 120, IsComplex: true, IsWordmark: true,
					Fingerprint: "fp-acme",
				},
				Colors: page.StyleColors{Color: "rgb(26, 26, 238)"},
				InLink: true,
			}},
		}},
		VectorCount: 3,
		Meta:        page.Metadata{Title: "Acme"},
		HeroText:    "Fast rockets",
		Rendered:    true,
	}
}

// weakSignals returns a page with nothing the classifiers can use.
func weakSignals(t *testing.T) *page.Signals {
	t.Helper()
	doc := `<html><head></head><body><p>hello</p></body></html>`
	node, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return &page.Signals{
		URL:    "https://bare.test/",
		Origin: "https://bare.test",
		HTML:   doc,
		Doc:    node,
	}
}

func TestScan_StrongSignalsSkipHint(t *testing.T) {
	// WHAT: When the logo is confident and primary color and heading font
	// are present, the external hint is never consulted.
	// WHY: The round trip costs money and latency; adequate programmatic
	// output makes it pure waste.
	hints := &fakeHints{enabled: true, guess: &hint.Guess{Success: true, PrimaryColor: "#bad"}}
	s := New(Config{Fetcher: &fakeFetcher{sig: strongSignals(t)}, Hints: hints})

	res, err := s.Scan(context.Background(), "https://acme.test/")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if hints.guessCalls != 0 {
		t.Errorf("hint consulted %d times, want 0", hints.guessCalls)
	}
	if !res.Verification.Hint.Skipped {
		t.Error("verification should record the skip")
	}
	if res.Colors.Primary != "#ff5733" {
		t.Errorf("primary: got %q", res.Colors.Primary)
	}
	if res.Typography.HeadingFont != "Inter" {
		t.Errorf("heading font: got %q", res.Typography.HeadingFont)
	}
	if !res.Logo.Found || res.Logo.Source != "brand_anchor_svg" {
		t.Errorf("logo: %+v", res.Logo)
	}
	if res.Verification.Stats.BrandAnchors != 1 || res.Verification.Stats.VectorCount != 3 {
		t.Errorf("stats: %+v", res.Verification.Stats)
	}
}

func TestScan_WeakSignalsConsultHint(t *testing.T) {
	// WHAT: Missing programmatic fields trigger the hint, and its answers
	// fill the gaps without overriding anything programmatic.
	hints := &fakeHints{enabled: true, guess: &hint.Guess{
		Success:      true,
		PrimaryColor: "#112233",
		HeadingFont:  "Georgia",
		LogoURL:      "https://bare.test/logo.png",
	}}
	s := New(Config{Fetcher: &fakeFetcher{sig: weakSignals(t)}, Hints: hints})

	res, err := s.Scan(context.Background(), "https://bare.test/")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if hints.guessCalls != 1 {
		t.Fatalf("hint calls: got %d, want 1", hints.guessCalls)
	}
	if res.Verification.Hint.Skipped {
		t.Error("skip recorded despite consultation")
	}
	if res.Colors.Primary != "#112233" {
		t.Errorf("primary: got %q", res.Colors.Primary)
	}
	if res.Typography.HeadingFont != "Georgia" {
		t.Errorf("heading font: got %q", res.Typography.HeadingFont)
	}
	if !res.Logo.Found || res.Logo.URL != "https://bare.test/logo.png" {
		t.Errorf("logo: %+v", res.Logo)
	}
	if res.Colors.Background != "#ffffff" {
		t.Errorf("background default: got %q", res.Colors.Background)
	}
}

func TestScan_HintErrorDegrades(t *testing.T) {
	// WHAT: A failing hint never fails the scan; the result just carries
	// whatever the programmatic side produced.
	hints := &fakeHints{enabled: true, guessErr: errors.New("upstream 500")}
	s := New(Config{Fetcher: &fakeFetcher{sig: weakSignals(t)}, Hints: hints})

	res, err := s.Scan(context.Background(), "https://bare.test/")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Logo.Found {
		t.Errorf("logo: %+v", res.Logo)
	}
	if res.Colors.Background != "#ffffff" {
		t.Errorf("background: got %q", res.Colors.Background)
	}
}

func TestScan_DisabledHintNeverCalled(t *testing.T) {
	// WHAT: Without credentials the hint is skipped even when signals are
	// weak.
	hints := &fakeHints{enabled: false}
	s := New(Config{Fetcher: &fakeFetcher{sig: weakSignals(t)}, Hints: hints})

	res, err := s.Scan(context.Background(), "https://bare.test/")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if hints.guessCalls != 0 {
		t.Errorf("hint calls: got %d, want 0", hints.guessCalls)
	}
	if !res.Verification.Hint.Skipped {
		t.Error("skip not recorded")
	}
}

func TestScan_URLNormalization(t *testing.T) {
	// WHAT: A bare domain is fetched over https.
	f := &fakeFetcher{sig: strongSignals(t)}
	s := New(Config{Fetcher: f})

	res, err := s.Scan(context.Background(), "  acme.test  ")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if f.lastURL != "https://acme.test" {
		t.Errorf("fetched URL: got %q", f.lastURL)
	}
	if res.URL != "https://acme.test" {
		t.Errorf("result URL: got %q", res.URL)
	}
}

func TestScan_FetchErrorPropagates(t *testing.T) {
	// WHAT: A fetch failure is fatal; there is nothing to classify.
	wantErr := errors.New("connection refused")
	s := New(Config{Fetcher: &fakeFetcher{err: wantErr}})

	if _, err := s.Scan(context.Background(), "https://down.test/"); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestScan_ToneInResult(t *testing.T) {
	// WHAT: The vibe comes from the tone provider when one is configured,
	// and collapses to the generic default when none is.
	hints := &fakeHints{enabled: true}
	s := New(Config{Fetcher: &fakeFetcher{sig: strongSignals(t)}, Hints: hints})

	res, err := s.Scan(context.Background(), "https://acme.test/")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if hints.toneCalls != 1 || res.Vibe.Tone != "Playful" {
		t.Errorf("vibe: %+v (tone calls %d)", res.Vibe, hints.toneCalls)
	}

	s = New(Config{Fetcher: &fakeFetcher{sig: strongSignals(t)}})
	res, err = s.Scan(context.Background(), "https://acme.test/")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Vibe.Tone != "Professional" || res.Vibe.Success {
		t.Errorf("fallback vibe: %+v", res.Vibe)
	}
}
