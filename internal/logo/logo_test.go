package logo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"brandscan/internal/page"
)

func signals(t *testing.T, doc string) *page.Signals {
	t.Helper()
	sig := &page.Signals{
		URL:    "https://example.com/",
		Origin: "https://example.com",
		HTML:   doc,
	}
	if doc != "" {
		node, err := html.Parse(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		sig.Doc = node
	}
	return sig
}

func wordmarkVector(fp string) page.VectorRecord {
	return page.VectorRecord{
		Markup: `<svg viewBox="0 0 120 40"><path d="M0 0h120v40H0z"/></svg>`,
		Geometry: page.Geometry{
			Width: 120, Height: 40, X: 24, Area: 4800,
			AspectRatio: 3.0, PathCount: 4, PathLength: 600,
			PathCommands: 120, IsComplex: true, IsWordmark: true,
			Fingerprint: fp,
		},
		Colors: page.StyleColors{Color: "rgb(26, 26, 238)"},
		InLink: true,
	}
}

func TestDetect_BrandAnchorWordmark(t *testing.T) {
	// WHAT: A complex wide vector inside a brand anchor wins tier 1 with
	// confidence in [0.75, 0.95] and the wordmark flag set.
	// WHY: Brand anchors are the strongest structural logo signal.
	sig := signals(t, "")
	sig.BrandAnchors = []page.BrandAnchor{{
		Href:    "/",
		Vectors: []page.VectorRecord{wordmarkVector("fp-wordmark")},
	}}

	d := New(Config{})
	res := d.Detect(context.Background(), sig)

	if !res.Found || res.Source != "brand_anchor_svg" {
		t.Fatalf("got %+v", res)
	}
	if res.Confidence < 0.75 || res.Confidence > 0.95 {
		t.Errorf("confidence: got %v, want within [0.75, 0.95]", res.Confidence)
	}
	if !res.Wordmark {
		t.Error("wordmark flag not set")
	}
	if res.Tint != "#1a1aee" {
		t.Errorf("tint: got %q, want #1a1aee", res.Tint)
	}
	if res.Shape == nil || res.Shape.PathCount != 4 {
		t.Errorf("shape: got %+v", res.Shape)
	}
}

func TestDetect_RepeatedFingerprintExcluded(t *testing.T) {
	// WHAT: A fingerprint seen more than once on the page never becomes
	// the logo, in any tier.
	// WHY: Repeated shapes are UI icons (social badges, chevrons).
	icon := wordmarkVector("fp-repeated")
	sig := signals(t, "")
	sig.BrandAnchors = []page.BrandAnchor{{Href: "/", Vectors: []page.VectorRecord{icon}}}
	sig.HeaderVectors = []page.VectorRecord{icon, icon}

	d := New(Config{})
	res := d.Detect(context.Background(), sig)

	if res.Found {
		t.Fatalf("repeated shape accepted: %+v", res)
	}
	if res.Source != "none" {
		t.Errorf("source: got %q, want none", res.Source)
	}
}

func TestDetect_OverlappingViewsCountOnce(t *testing.T) {
	// WHAT: One physical SVG reported by the anchor record, the header
	// census, and the parsed document is still a unique shape and wins
	// tier 1 at full confidence.
	// WHY: The renderer's collections overlap; a logo must only be
	// excluded when it genuinely occurs more than once on the page.
	const pathD = "M0 0h120v40H0z"
	doc := `<html><body><header><a href="/">` +
		`<svg viewBox="0 0 120 40"><path d="` + pathD + `"/></svg>` +
		`</a></header></body></html>`
	sig := signals(t, doc)
	v := wordmarkVector(pathD)
	sig.BrandAnchors = []page.BrandAnchor{{Href: "/", Vectors: []page.VectorRecord{v}}}
	sig.HeaderVectors = []page.VectorRecord{v}

	d := New(Config{})
	res := d.Detect(context.Background(), sig)

	if !res.Found || res.Source != "brand_anchor_svg" {
		t.Fatalf("got %+v", res)
	}
	if res.Confidence < 0.75 {
		t.Errorf("confidence: got %v, want >= 0.75", res.Confidence)
	}
}

func TestDetect_DocRepeatedShapeExcluded(t *testing.T) {
	// WHAT: Two document occurrences of the same shape exclude it even
	// when the renderer records only mention it once.
	const pathD = "M0 0h120v40H0z"
	doc := `<html><body><header><a href="/">` +
		`<svg viewBox="0 0 120 40"><path d="` + pathD + `"/></svg>` +
		`</a></header><footer>` +
		`<svg viewBox="0 0 120 40"><path d="` + pathD + `"/></svg>` +
		`</footer></body></html>`
	sig := signals(t, doc)
	sig.BrandAnchors = []page.BrandAnchor{{Href: "/", Vectors: []page.VectorRecord{wordmarkVector(pathD)}}}

	d := New(Config{})
	res := d.Detect(context.Background(), sig)

	if res.Found {
		t.Fatalf("repeated shape accepted: %+v", res)
	}
}

func TestDetect_Tier1ShortCircuitsTier2(t *testing.T) {
	// WHAT: When tier 1 clears its gate, header vectors are never consulted.
	sig := signals(t, "")
	sig.BrandAnchors = []page.BrandAnchor{{
		Href:    "/",
		Vectors: []page.VectorRecord{wordmarkVector("fp-anchor")},
	}}
	header := wordmarkVector("fp-header")
	header.Colors = page.StyleColors{Color: "rgb(255, 0, 0)"}
	sig.HeaderVectors = []page.VectorRecord{header}

	d := New(Config{})
	res := d.Detect(context.Background(), sig)

	if res.Source != "brand_anchor_svg" {
		t.Errorf("source: got %q, want brand_anchor_svg", res.Source)
	}
}

func TestDetect_HeaderVectorUnlinkedDamping(t *testing.T) {
	// WHAT: A header vector outside a link is damped by 0.7 and can fall
	// below the tier-2 gate it would otherwise clear.
	linked := wordmarkVector("fp-a")
	linked.Geometry.PathLength = 100
	linked.Geometry.PathCommands = 20
	linked.Geometry.PathCount = 1
	linked.Geometry.IsComplex = false
	linked.Geometry.Area = 600
	// score: 2 + 3 + 4 + 20 + 5 + 5 = 39 -> damped 27.3 -> conf 0.273
	unlinked := linked
	unlinked.InLink = false
	unlinked.Geometry.Fingerprint = "fp-b"

	sig := signals(t, "")
	sig.HeaderVectors = []page.VectorRecord{unlinked}

	d := New(Config{})
	res := d.Detect(context.Background(), sig)
	if res.Source != "header_svg" {
		t.Fatalf("got %+v", res)
	}
	if res.Confidence > headerGate {
		t.Errorf("confidence: got %v, want <= %v after damping", res.Confidence, headerGate)
	}

	sig2 := signals(t, "")
	sig2.HeaderVectors = []page.VectorRecord{linked}
	res2 := d.Detect(context.Background(), sig2)
	if res2.Source != "header_svg" || res2.Confidence <= res.Confidence {
		t.Errorf("linked vector should outscore unlinked: %v vs %v", res2.Confidence, res.Confidence)
	}
}

func TestDetect_HeaderImageHomeLinkBonus(t *testing.T) {
	// WHAT: Among two equal header images, the one linking to the site
	// root wins via the home-link bonus.
	img := page.RasterRecord{
		Src: "/static/mark.png", Width: 180, Height: 60,
		AspectRatio: 3.0, InHeader: true, LogoKeyword: true,
	}
	other := img
	other.Src = "/static/banner.png"
	img.LinkHref = "/"

	sig := signals(t, "")
	sig.HeaderRasters = []page.RasterRecord{other, img}

	d := New(Config{})
	res := d.Detect(context.Background(), sig)

	if res.Source != "header_image" {
		t.Fatalf("got %+v", res)
	}
	if res.URL != "https://example.com/static/mark.png" {
		t.Errorf("url: got %q", res.URL)
	}
	if res.Confidence != 0.75 {
		t.Errorf("confidence: got %v, want 0.75 (capped)", res.Confidence)
	}
}

func TestDetect_TinyImagesRejected(t *testing.T) {
	// WHAT: Images under the minimum dimensions are rejected outright,
	// bonuses included.
	sig := signals(t, "")
	sig.HeaderRasters = []page.RasterRecord{{
		Src: "/pixel.png", Width: 16, Height: 16,
		LogoKeyword: true, InHeader: true, LinkHref: "/",
	}}

	d := New(Config{})
	if res := d.Detect(context.Background(), sig); res.Found {
		t.Fatalf("tiny image accepted: %+v", res)
	}
}

func TestDetect_DOMFallback(t *testing.T) {
	// WHAT: With no renderer geometry at all, a home-link img with a logo
	// class is recovered from the raw DOM at tier 4.
	doc := `<html><body><header><a href="/"><img src="/logo.png" class="site-logo" alt=""></a></header></body></html>`
	sig := signals(t, doc)

	d := New(Config{})
	res := d.Detect(context.Background(), sig)

	if res.Source != "dom_fallback_img" {
		t.Fatalf("got %+v", res)
	}
	if res.URL != "https://example.com/logo.png" {
		t.Errorf("url: got %q", res.URL)
	}
	if res.Confidence != 0.5 {
		t.Errorf("confidence: got %v, want 0.5 (capped)", res.Confidence)
	}
}

func TestDetect_DOMFallbackSkipsLongText(t *testing.T) {
	// WHAT: Anchors with more than 25 characters of text are not logo
	// candidates even under a header.
	doc := `<html><body><header><a href="/"><img src="/x.png" class="logo">` +
		`This is a long navigation label for sure</a></header></body></html>`
	sig := signals(t, doc)

	d := New(Config{})
	if res := d.Detect(context.Background(), sig); res.Found {
		t.Fatalf("long-text anchor accepted: %+v", res)
	}
}

func TestDetect_SVGMarkupSanitized(t *testing.T) {
	// WHAT: Script payloads inside candidate SVG markup never survive.
	v := wordmarkVector("fp-dirty")
	v.Markup = `<svg viewBox="0 0 120 40" onload="alert(1)"><script>alert(1)</script><path d="M0 0h120v40H0z"/></svg>`
	sig := signals(t, "")
	sig.BrandAnchors = []page.BrandAnchor{{Href: "/", Vectors: []page.VectorRecord{v}}}

	d := New(Config{})
	res := d.Detect(context.Background(), sig)

	if strings.Contains(res.Markup, "script") || strings.Contains(res.Markup, "onload") {
		t.Errorf("markup not sanitized: %q", res.Markup)
	}
	if !strings.Contains(res.Markup, "<path") {
		t.Errorf("path element lost: %q", res.Markup)
	}
}

type stubVision struct {
	match *Match
	err   error
	calls int
}

func (s *stubVision) Detect(context.Context, []byte) (*Match, error) {
	s.calls++
	return s.match, s.err
}

func TestDetect_VisionFallback(t *testing.T) {
	// WHAT: With every structural tier empty and a screenshot present,
	// the vision hit is adopted with its score halved.
	sig := signals(t, "")
	sig.Screenshot = []byte{0x89, 'P', 'N', 'G'}

	v := &stubVision{match: &Match{DataURL: "data:image/png;base64,AAAA", Score: 0.8}}
	d := New(Config{Vision: v})
	res := d.Detect(context.Background(), sig)

	if res.Source != "vision_fallback" || res.Kind != "vision_crop" {
		t.Fatalf("got %+v", res)
	}
	if res.Confidence != 0.4 {
		t.Errorf("confidence: got %v, want 0.4", res.Confidence)
	}
}

func TestDetect_VisionNotCalledWhenTierWins(t *testing.T) {
	// WHAT: The vision fallback runs only when every earlier tier misses.
	sig := signals(t, "")
	sig.Screenshot = []byte{1}
	sig.BrandAnchors = []page.BrandAnchor{{Href: "/", Vectors: []page.VectorRecord{wordmarkVector("fp")}}}

	v := &stubVision{match: &Match{Score: 0.9}}
	d := New(Config{Vision: v})
	d.Detect(context.Background(), sig)

	if v.calls != 0 {
		t.Errorf("vision called %d times, want 0", v.calls)
	}
}

func TestDetect_VisionErrorDegrades(t *testing.T) {
	// WHAT: A vision failure yields the not-found descriptor, not an error.
	sig := signals(t, "")
	sig.Screenshot = []byte{1}

	v := &stubVision{err: errors.New("decode failed")}
	d := New(Config{Vision: v})
	res := d.Detect(context.Background(), sig)

	if res.Found {
		t.Fatalf("got %+v", res)
	}
	if res.Source != "none" {
		t.Errorf("source: got %q, want none", res.Source)
	}
}

func TestDetect_NothingFound(t *testing.T) {
	// WHAT: Empty signals produce the canonical not-found descriptor.
	d := New(Config{})
	res := d.Detect(context.Background(), signals(t, ""))

	if res.Found || res.Confidence != 0 || res.Source != "none" {
		t.Errorf("got %+v", res)
	}
}

func TestVectorScore_SquarePenalty(t *testing.T) {
	// WHAT: Near-square shapes score lower than wide ones with identical
	// complexity.
	wide := page.Geometry{PathLength: 300, PathCount: 2, PathCommands: 40, AspectRatio: 2.5, Area: 1000, X: 50}
	square := wide
	square.AspectRatio = 1.0

	if vectorScore(square) >= vectorScore(wide) {
		t.Errorf("square %v >= wide %v", vectorScore(square), vectorScore(wide))
	}
}
