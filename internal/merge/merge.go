// Package merge reconciles programmatic classifier output with the
// external hint. Programmatic data wins whenever present; the hint only
// fills gaps, and every merged field carries a provenance tag so consumers
// can see where each value came from.
package merge

import (
	"strings"

	"brandscan/internal/colors"
	"brandscan/internal/hint"
	"brandscan/internal/logo"
	"brandscan/internal/typography"
)

// Provenance tags where a merged field's value originated.
type Provenance string

const (
	SourceProgrammatic Provenance = "programmatic"
	SourceHint         Provenance = "external_hint"
	SourceDefault      Provenance = "default"
	SourceNone         Provenance = "none"
)

// Adequacy thresholds for skipping the hint round trip entirely.
const (
	adequateLogoConfidence = 0.6

	// A programmatic logo candidate above this confidence beats any hint.
	decisiveLogoConfidence = 0.3

	defaultHintLogoConfidence = 0.6
)

// NeedHint reports whether the programmatic bundle is inadequate enough to
// justify the external round trip: the hint is skipped only when the logo
// is confident and both the primary color and heading font are present.
func NeedHint(l logo.Result, c colors.Assignment, t typography.Assignment) bool {
	conf := 0.0
	if l.Found {
		conf = l.Confidence
	}
	return conf < adequateLogoConfidence || c.Primary == "" || t.HeadingFont == ""
}

// ColorSet is the merged color outcome with per-role provenance.
type ColorSet struct {
	Primary    string          `json:"primary,omitempty"`
	Secondary  string          `json:"secondary,omitempty"`
	Background string          `json:"background"`
	Accent     string          `json:"accent,omitempty"`
	Neutrals   []string        `json:"neutrals"`
	All        []colors.Count  `json:"all_colors"`
	Sources    ColorProvenance `json:"-"`
}

// ColorProvenance tags each merged color role.
type ColorProvenance struct {
	Primary    Provenance `json:"primary_source"`
	Secondary  Provenance `json:"secondary_source"`
	Background Provenance `json:"background_source"`
	Accent     Provenance `json:"accent_source"`
}

// Colors merges the programmatic assignment with the hint. The background
// falls back to white when neither side has one.
func Colors(prog colors.Assignment, h *hint.Guess) ColorSet {
	var hintPrimary, hintSecondary, hintBackground, hintAccent string
	if h != nil && h.Success {
		hintPrimary = h.PrimaryColor
		hintSecondary = h.SecondaryColor
		hintBackground = h.BackgroundColor
		hintAccent = h.AccentColor
	}

	cs := ColorSet{
		Neutrals: prog.Neutrals,
		All:      prog.All,
	}
	cs.Primary, cs.Sources.Primary = pick(prog.Primary, hintPrimary, "")
	cs.Secondary, cs.Sources.Secondary = pick(prog.Secondary, hintSecondary, "")
	cs.Background, cs.Sources.Background = pick(prog.Background, hintBackground, "#ffffff")
	cs.Accent, cs.Sources.Accent = pick(prog.Accent, hintAccent, "")
	return cs
}

// FontSet is the merged typography outcome with per-role provenance.
type FontSet struct {
	HeadingFont string             `json:"heading_font,omitempty"`
	BodyFont    string             `json:"body_font,omitempty"`
	LinkedFonts []string           `json:"google_fonts"`
	All         []typography.Count `json:"all_fonts"`
	Sources     FontProvenance     `json:"-"`
}

// FontProvenance tags each merged font role.
type FontProvenance struct {
	Heading Provenance `json:"heading_source"`
	Body    Provenance `json:"body_source"`
}

// Fonts merges the programmatic assignment with the hint. The linked-font
// list and combined tally always come from the programmatic side.
func Fonts(prog typography.Assignment, h *hint.Guess) FontSet {
	var hintHeading, hintBody string
	if h != nil && h.Success {
		hintHeading = h.HeadingFont
		hintBody = h.BodyFont
	}

	fs := FontSet{
		LinkedFonts: prog.LinkedFonts,
		All:         prog.All,
	}
	fs.HeadingFont, fs.Sources.Heading = pick(prog.HeadingFont, hintHeading, "")
	fs.BodyFont, fs.Sources.Body = pick(prog.BodyFont, hintBody, "")
	return fs
}

// pick implements the per-field rule: programmatic wins when present, then
// the hint, then the default (if any), else none.
func pick(prog, hinted, def string) (string, Provenance) {
	if prog != "" {
		return prog, SourceProgrammatic
	}
	if hinted != "" {
		return hinted, SourceHint
	}
	if def != "" {
		return def, SourceDefault
	}
	return "", SourceNone
}

// Logo merges the logo candidates. A programmatic candidate above the
// decisive confidence wins outright. Otherwise a non-favicon hint URL is
// adopted at the hint's confidence (defaulting when unspecified). Failing
// that, any programmatic candidate is better than nothing.
func Logo(prog logo.Result, h *hint.Guess) logo.Result {
	if prog.Found && prog.Confidence > decisiveLogoConfidence {
		return prog
	}

	if h != nil && h.Success && h.LogoURL != "" && !containsFold(h.LogoURL, "favicon") {
		conf := h.LogoConfidence
		if conf == 0 {
			conf = defaultHintLogoConfidence
		}
		return logo.Result{
			Found:      true,
			Kind:       rasterKind(h.LogoURL),
			URL:        h.LogoURL,
			Confidence: conf,
			Source:     string(SourceHint),
		}
	}

	if prog.Found {
		return prog
	}
	return logo.Result{Source: string(SourceNone)}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

func rasterKind(url string) string {
	if containsFold(url, ".svg") {
		return "svg"
	}
	return "image"
}
