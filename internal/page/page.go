// Package page defines the immutable signal bundle the classifiers consume:
// rendered HTML, collected CSS, geometry records captured in the browser,
// and an optional header screenshot. The classifiers never share state; each
// reads from one Signals value and owns its own accumulators.
package page

import (
	"net/url"

	"golang.org/x/net/html"
)

// Metadata holds document-head information.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OGImage     string `json:"og_image,omitempty"`
}

// StyleColors are the computed colors captured on a rendered element.
type StyleColors struct {
	Color      string `json:"color"`
	Fill       string `json:"fill"`
	Background string `json:"backgroundColor"`
}

// Geometry describes the rendered shape of one vector graphic.
type Geometry struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Area         float64 `json:"area"`
	AspectRatio  float64 `json:"aspectRatio"`
	PathCount    int     `json:"pathCount"`
	PathLength   int     `json:"totalPathLength"`
	PathCommands int     `json:"pathCommands"`
	// IsComplex is set upstream when the shape has long path data or many
	// paths; the logo scorer grants it a flat bonus.
	IsComplex bool `json:"isComplex"`
	// IsWordmark is set upstream for wide shapes with many path commands.
	IsWordmark bool `json:"isWordmark"`
	// Fingerprint is a truncated serialization of the shape's drawing
	// commands. A fingerprint seen more than once on a page marks a
	// repeated UI icon, never a logo.
	Fingerprint string `json:"fingerprint"`
}

// VectorRecord is one inline SVG captured during rendering.
type VectorRecord struct {
	Markup   string      `json:"html"`
	Geometry Geometry    `json:"geometry"`
	Colors   StyleColors `json:"colors"`
	InHeader bool        `json:"inHeader"`
	InLink   bool        `json:"isInLink"`
}

// RasterRecord is one <img> captured during rendering.
type RasterRecord struct {
	Src         string  `json:"src"`
	Alt         string  `json:"alt"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	AspectRatio float64 `json:"aspectRatio"`
	ClassName   string  `json:"className"`
	InHeader    bool    `json:"inHeader"`
	InLink      bool    `json:"isInLink"`
	LinkHref    string  `json:"linkHref"`
	LogoKeyword bool    `json:"isLogoKeyword"`
}

// BrandAnchor is a hyperlink pointing at the site root inside a navigation
// landmark, with the graphics it contains. Structurally the most likely
// home of the logo.
type BrandAnchor struct {
	Href    string         `json:"href"`
	Label   string         `json:"ariaLabel"`
	Text    string         `json:"text"`
	Vectors []VectorRecord `json:"svgs"`
	Rasters []RasterRecord `json:"imgs"`
}

// Signals is everything collected for one page. Immutable once built.
type Signals struct {
	URL    string
	Origin string

	HTML string
	Doc  *html.Node // parsed HTML; nil only when HTML is empty
	CSS  []string   // inline style blocks plus fetched linked stylesheets

	BrandAnchors  []BrandAnchor
	HeaderVectors []VectorRecord
	HeaderRasters []RasterRecord
	VectorCount   int // page-wide SVG census from the renderer

	Screenshot []byte // header screenshot (PNG); nil without a browser

	Meta     Metadata
	HeroText string

	// Rendered is true when a browser produced the signals. A plain HTTP
	// fetch yields no geometry records and no screenshot.
	Rendered bool
}

// OriginOf derives "scheme://host" from a raw URL. Empty on parse failure.
func OriginOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// ResolveRef resolves a possibly-relative reference against a base URL.
// Returns ref unchanged when either side fails to parse.
func ResolveRef(baseURL, ref string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}
