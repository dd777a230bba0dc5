// Package logo finds the single best logo candidate for a page through a
// strict five-tier waterfall: brand-anchor vectors, header vectors, header
// rasters, a raw DOM re-scan, and finally a visual search over a header
// screenshot. Tiers evaluate in order and short-circuit as soon as a tier's
// best candidate clears that tier's confidence gate.
package logo

import (
	"context"
	"log/slog"
	"math"

	"brandscan/internal/page"
)

// Result describes the chosen logo candidate.
type Result struct {
	Found      bool    `json:"found"`
	Kind       string  `json:"type,omitempty"` // inline_svg, svg, image, vision_crop
	Markup     string  `json:"svg,omitempty"`
	URL        string  `json:"url,omitempty"`
	Tint       string  `json:"color,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Wordmark   bool    `json:"is_wordmark,omitempty"`
	Shape      *Shape  `json:"complexity,omitempty"`
}

// Shape summarizes vector complexity for the winning candidate.
type Shape struct {
	PathCount   int     `json:"path_count"`
	PathLength  int     `json:"path_length"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// Match is a visual detection hit: a cropped region encoded as a PNG data
// URL and its composite score in (0.3, 1].
type Match struct {
	DataURL string
	Score   float64
}

// Vision locates a logo-like region in a header screenshot. Implementations
// return (nil, nil) when nothing qualifies.
type Vision interface {
	Detect(ctx context.Context, screenshot []byte) (*Match, error)
}

// Config configures a Detector.
type Config struct {
	// Vision enables the tier-5 screenshot fallback. Optional.
	Vision Vision
	Logger *slog.Logger
}

// Detector runs the waterfall. Safe for concurrent use; all per-request
// state lives in the run.
type Detector struct {
	vision Vision
	log    *slog.Logger
}

// New builds a Detector.
func New(cfg Config) *Detector {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Detector{vision: cfg.Vision, log: log}
}

// run carries one request's accumulators.
type run struct {
	sig   *page.Signals
	usage map[string]int
}

// Detect evaluates the waterfall over one page's signals. A tier's
// candidate that fails its gate does not block later tiers; the best
// failed candidate is still returned when every tier comes up short, so
// downstream reconciliation can weigh even a weak programmatic signal.
func (d *Detector) Detect(ctx context.Context, sig *page.Signals) Result {
	r := &run{sig: sig, usage: buildUsage(sig)}

	var fallback Result

	tiers := []struct {
		name string
		scan func(*run) (Result, bool)
		gate float64
	}{
		{"brand_anchor", scanBrandAnchors, anchorGate},
		{"header_svg", scanHeaderVectors, headerGate},
		{"header_image", scanHeaderRasters, 0},
		{"dom_fallback", scanDOM, 0},
	}

	for _, t := range tiers {
		res, ok := t.scan(r)
		if !ok {
			continue
		}
		if res.Confidence > t.gate {
			d.log.Debug("logo candidate accepted", "tier", t.name, "source", res.Source, "confidence", res.Confidence)
			return res
		}
		d.log.Debug("logo candidate below gate", "tier", t.name, "confidence", res.Confidence)
		if res.Confidence > fallback.Confidence {
			fallback = res
		}
	}

	if d.vision != nil && len(sig.Screenshot) > 0 {
		match, err := d.vision.Detect(ctx, sig.Screenshot)
		if err != nil {
			d.log.Warn("vision fallback failed", "error", err)
		} else if match != nil {
			return Result{
				Found:      true,
				Kind:       "vision_crop",
				URL:        match.DataURL,
				Confidence: math.Round(match.Score*0.5*100) / 100,
				Source:     "vision_fallback",
			}
		}
	}

	if fallback.Found {
		return fallback
	}
	return Result{Source: "none"}
}

// scanBrandAnchors is tier 1. Vectors are preferred; an anchor's rasters
// are consulted only while no vector has reached a decisive score.
func scanBrandAnchors(r *run) (Result, bool) {
	var best Result
	bestScore := 0.0

	for _, anchor := range r.sig.BrandAnchors {
		for _, v := range anchor.Vectors {
			if r.usage[v.Geometry.Fingerprint] > 1 {
				continue
			}
			score := vectorScore(v.Geometry)
			if score <= bestScore {
				continue
			}
			bestScore = score
			best = Result{
				Found:      true,
				Kind:       "inline_svg",
				Markup:     sanitizeSVG(v.Markup),
				Tint:       tintOf(v.Colors, true),
				Confidence: clamp(score/100, 0.75, 0.95),
				Source:     "brand_anchor_svg",
				Wordmark:   v.Geometry.IsWordmark,
				Shape: &Shape{
					PathCount:   v.Geometry.PathCount,
					PathLength:  v.Geometry.PathLength,
					AspectRatio: math.Round(v.Geometry.AspectRatio*100) / 100,
				},
			}
		}

		if bestScore >= anchorVectorDecisive {
			continue
		}
		for _, img := range anchor.Rasters {
			if img.Src == "" {
				continue
			}
			score := rasterScore(img)
			if score == 0 || score <= bestScore {
				continue
			}
			bestScore = score
			best = Result{
				Found:      true,
				Kind:       rasterKind(img.Src),
				URL:        page.ResolveRef(r.sig.URL, img.Src),
				Confidence: clamp(score/100, 0.65, 0.85),
				Source:     "brand_anchor_img",
			}
		}
	}

	return best, best.Found
}

// scanHeaderVectors is tier 2: every header vector, with a damping factor
// for shapes not wrapped in a hyperlink.
func scanHeaderVectors(r *run) (Result, bool) {
	var best Result
	bestScore := 0.0

	for _, v := range r.sig.HeaderVectors {
		if r.usage[v.Geometry.Fingerprint] > 1 {
			continue
		}
		score := vectorScore(v.Geometry)
		if !v.InLink {
			score *= unlinkedVectorDamping
		}
		if score <= bestScore {
			continue
		}
		bestScore = score
		best = Result{
			Found:      true,
			Kind:       "inline_svg",
			Markup:     sanitizeSVG(v.Markup),
			Tint:       tintOf(v.Colors, false),
			Confidence: capAt(score/100, 0.8),
			Source:     "header_svg",
			Wordmark:   v.Geometry.IsWordmark,
		}
	}

	return best, best.Found
}

// scanHeaderRasters is tier 3: header images, with a bonus for images whose
// enclosing link points at the site root.
func scanHeaderRasters(r *run) (Result, bool) {
	var best Result
	bestScore := 0.0

	for _, img := range r.sig.HeaderRasters {
		score := rasterScore(img)
		if score == 0 {
			continue
		}
		if isHomeHref(img.LinkHref, r.sig.Origin) {
			score += homeLinkBonus
		}
		if score <= bestScore {
			continue
		}
		bestScore = score
		best = Result{
			Found:      true,
			Kind:       rasterKind(img.Src),
			URL:        page.ResolveRef(r.sig.URL, img.Src),
			Confidence: capAt(score/100, 0.75),
			Source:     "header_image",
		}
	}

	return best, best.Found
}

func isHomeHref(href, origin string) bool {
	return href == "/" || (origin != "" && (href == origin || href == origin+"/"))
}
