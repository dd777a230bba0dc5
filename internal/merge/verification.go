package merge

import (
	"brandscan/internal/colors"
	"brandscan/internal/hint"
	"brandscan/internal/logo"
	"brandscan/internal/typography"
)

// Verification is the audit trail attached to every scan: what each side
// saw, which side won each field, and the raw signal counts. Both original
// inputs are retained so a disagreement can be inspected after the fact.
type Verification struct {
	Programmatic ProgrammaticSnapshot `json:"programmatic"`
	Hint         HintSnapshot         `json:"external_hint"`
	Final        FinalSources         `json:"final"`
	Stats        SignalStats          `json:"stats"`
}

// ProgrammaticSnapshot records the classifier outputs before merging.
type ProgrammaticSnapshot struct {
	Colors struct {
		Primary    string `json:"primary,omitempty"`
		Secondary  string `json:"secondary,omitempty"`
		Background string `json:"background,omitempty"`
	} `json:"colors"`
	Typography struct {
		HeadingFont string `json:"heading_font,omitempty"`
		BodyFont    string `json:"body_font,omitempty"`
	} `json:"typography"`
	Logo struct {
		Found      bool    `json:"found"`
		Kind       string  `json:"type,omitempty"`
		Source     string  `json:"source"`
		Confidence float64 `json:"confidence"`
		Wordmark   bool    `json:"is_wordmark,omitempty"`
		HasMarkup  bool    `json:"has_svg"`
		URL        string  `json:"url,omitempty"`
	} `json:"logo"`
}

// HintSnapshot records what the oracle answered, or that it was skipped.
type HintSnapshot struct {
	Skipped bool `json:"skipped"`
	Success bool `json:"success"`
	Colors  struct {
		Primary    string `json:"primary,omitempty"`
		Secondary  string `json:"secondary,omitempty"`
		Background string `json:"background,omitempty"`
	} `json:"colors"`
	Typography struct {
		HeadingFont string `json:"heading_font,omitempty"`
		BodyFont    string `json:"body_font,omitempty"`
	} `json:"typography"`
	Logo struct {
		URL        string  `json:"url,omitempty"`
		Kind       string  `json:"type,omitempty"`
		Confidence float64 `json:"confidence"`
	} `json:"logo"`
}

// FinalSources tags the winning side per merged field.
type FinalSources struct {
	Colors     ColorProvenance `json:"colors"`
	Typography FontProvenance  `json:"typography"`
	Logo       struct {
		Source string `json:"source"`
	} `json:"logo"`
}

// SignalStats counts the raw inputs the logo pipeline saw.
type SignalStats struct {
	VectorCount   int `json:"svg_count"`
	BrandAnchors  int `json:"brand_anchors"`
	HeaderVectors int `json:"header_svgs"`
	HeaderRasters int `json:"header_images"`
}

// BuildVerification assembles the audit trail for one scan.
func BuildVerification(
	progColors colors.Assignment,
	progFonts typography.Assignment,
	progLogo logo.Result,
	h *hint.Guess,
	hintSkipped bool,
	finalColors ColorSet,
	finalFonts FontSet,
	finalLogo logo.Result,
	stats SignalStats,
) Verification {
	var v Verification

	v.Programmatic.Colors.Primary = progColors.Primary
	v.Programmatic.Colors.Secondary = progColors.Secondary
	v.Programmatic.Colors.Background = progColors.Background
	v.Programmatic.Typography.HeadingFont = progFonts.HeadingFont
	v.Programmatic.Typography.BodyFont = progFonts.BodyFont
	v.Programmatic.Logo.Found = progLogo.Found
	v.Programmatic.Logo.Kind = progLogo.Kind
	v.Programmatic.Logo.Source = progLogo.Source
	v.Programmatic.Logo.Confidence = progLogo.Confidence
	v.Programmatic.Logo.Wordmark = progLogo.Wordmark
	v.Programmatic.Logo.HasMarkup = progLogo.Markup != ""
	v.Programmatic.Logo.URL = progLogo.URL

	v.Hint.Skipped = hintSkipped
	if h != nil {
		v.Hint.Success = h.Success
		v.Hint.Colors.Primary = h.PrimaryColor
		v.Hint.Colors.Secondary = h.SecondaryColor
		v.Hint.Colors.Background = h.BackgroundColor
		v.Hint.Typography.HeadingFont = h.HeadingFont
		v.Hint.Typography.BodyFont = h.BodyFont
		v.Hint.Logo.URL = h.LogoURL
		v.Hint.Logo.Kind = h.LogoKind
		v.Hint.Logo.Confidence = h.LogoConfidence
	}

	v.Final.Colors = finalColors.Sources
	v.Final.Typography = finalFonts.Sources
	v.Final.Logo.Source = finalLogo.Source

	v.Stats = stats
	return v
}
