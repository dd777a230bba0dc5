// Package typography classifies the font families found in CSS into heading
// and body roles, filtering out system stacks and icon fonts. Externally
// linked font names (Google Fonts URLs in the document head) provide a last
// resort backfill when the CSS yields no usable families.
package typography

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Assignment is the outcome of typography classification for one page.
type Assignment struct {
	HeadingFont string   `json:"heading_font,omitempty"`
	BodyFont    string   `json:"body_font,omitempty"`
	LinkedFonts []string `json:"google_fonts"`
	All         []Count  `json:"all_fonts"`
}

// Count pairs a font family with its occurrence count.
type Count struct {
	Font  string `json:"font"`
	Count int    `json:"count"`
}

// systemFonts are generic stacks and CSS keywords, excluded by exact match.
var systemFonts = map[string]bool{
	"system-ui": true, "-apple-system": true, "blinkmacsystemfont": true,
	"segoe ui": true, "roboto": true, "helvetica": true, "arial": true,
	"sans-serif": true, "serif": true, "monospace": true,
	"helvetica neue": true, "times new roman": true, "times": true,
	"georgia": true, "courier": true, "courier new": true,
	"lucida console": true, "lucida sans": true, "verdana": true,
	"tahoma": true, "trebuchet ms": true, "impact": true,
	"comic sans ms": true, "ui-sans-serif": true, "ui-serif": true,
	"ui-monospace": true, "inherit": true, "initial": true,
	"unset": true, "revert": true,
}

// iconFonts are icon-face markers, excluded by substring match.
var iconFonts = []string{
	"fontawesome", "font awesome", "material icons", "material-icons",
	"ionicons", "glyphicons", "icomoon", "feather", "webflow-icons",
	"icon", "icons", "fa", "fas", "far", "fab",
}

var (
	linkedFontsPattern = regexp.MustCompile(`fonts\.googleapis\.com/css2?\?([^"'\)]+)`)
	familyNamePattern  = regexp.MustCompile(`([A-Za-z\s]+)(?::|;|$)`)
	fontSizePattern    = regexp.MustCompile(`(\d+(?:px|em|rem|pt|%))\s+(.+)`)
	fontFamilyPattern  = regexp.MustCompile(`(?i)font-family\s*:\s*([^;]+)`)
)

// Extract classifies fonts from CSS blocks; head markup supplies the
// externally linked font names.
func Extract(blocks []string, head string) Assignment {
	e := newExtractor()
	e.linkedFromHead(head)
	for _, b := range blocks {
		if strings.TrimSpace(b) == "" {
			continue
		}
		e.block(b)
	}
	return e.resolve()
}

type extractor struct {
	heading map[string]int
	body    map[string]int
	all     map[string]int

	linked     []string
	linkedSeen map[string]bool
}

func newExtractor() *extractor {
	return &extractor{
		heading:    map[string]int{},
		body:       map[string]int{},
		all:        map[string]int{},
		linkedSeen: map[string]bool{},
	}
}

// linkedFromHead decodes font names out of Google Fonts stylesheet URLs:
// "family=Playfair+Display:wght@700" becomes "Playfair Display".
func (e *extractor) linkedFromHead(head string) {
	if head == "" {
		return
	}
	for _, m := range linkedFontsPattern.FindAllStringSubmatch(head, -1) {
		// Serialized markup escapes & in attribute values; undo it so
		// every family= parameter splits cleanly.
		query := strings.ReplaceAll(m[1], "&amp;", "&")
		for _, param := range strings.Split(query, "&") {
			value, ok := strings.CutPrefix(param, "family=")
			if !ok {
				continue
			}
			decoded := strings.ReplaceAll(value, "+", " ")
			decoded = strings.ReplaceAll(decoded, "%20", " ")
			for _, nm := range familyNamePattern.FindAllStringSubmatch(decoded, -1) {
				name := strings.TrimSpace(nm[1])
				if name == "" || e.linkedSeen[name] {
					continue
				}
				e.linkedSeen[name] = true
				e.linked = append(e.linked, name)
			}
		}
	}
}

func (e *extractor) block(b string) {
	sheet, err := parser.Parse(b)
	if err != nil {
		e.sweep(b)
		return
	}
	for _, r := range sheet.Rules {
		e.rule(r)
	}
}

func (e *extractor) rule(r *css.Rule) {
	if r.Kind == css.QualifiedRule {
		sel := strings.ToLower(r.Prelude)
		for _, d := range r.Declarations {
			switch strings.ToLower(d.Property) {
			case "font-family":
				e.familyList(sel, d.Value)
			case "font":
				e.shorthand(sel, d.Value)
			}
		}
	}
	for _, nested := range r.Rules {
		e.rule(nested)
	}
}

func (e *extractor) familyList(selector, value string) {
	for _, font := range splitFamilies(value) {
		if excluded(font) {
			continue
		}
		e.all[font]++
		if classifySelector(selector) == "heading" {
			e.heading[font]++
		} else {
			e.body[font]++
		}
	}
}

// shorthand handles the `font` shorthand by stripping the leading size token
// from the first comma segment, then treating the remainder as a family list.
func (e *extractor) shorthand(selector, value string) {
	parts := strings.Split(value, ",")
	m := fontSizePattern.FindStringSubmatch(strings.TrimSpace(parts[0]))
	if m == nil {
		return
	}
	name := strings.Trim(strings.TrimSpace(m[2]), `"'`)
	rest := append([]string{name}, parts[1:]...)
	e.familyList(selector, strings.Join(rest, ","))
}

// sweep handles unparseable CSS: literal font-family declarations feed the
// combined tally only, since no selector context is recoverable.
func (e *extractor) sweep(b string) {
	for _, m := range fontFamilyPattern.FindAllStringSubmatch(b, -1) {
		for _, font := range splitFamilies(m[1]) {
			if excluded(font) {
				continue
			}
			e.all[font]++
		}
	}
}

func splitFamilies(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		font := strings.Trim(strings.TrimSpace(part), `"'`)
		if font != "" {
			out = append(out, font)
		}
	}
	return out
}

func excluded(font string) bool {
	if strings.HasPrefix(font, "var(") {
		return true
	}
	lower := strings.ToLower(font)
	if systemFonts[lower] {
		return true
	}
	for _, icon := range iconFonts {
		if strings.Contains(lower, icon) {
			return true
		}
	}
	return false
}

func classifySelector(selector string) string {
	if containsAny(selector, "h1", "h2", "h3", "h4", "h5", "h6", ".heading", ".title", ".headline") {
		return "heading"
	}
	return "body"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (e *extractor) resolve() Assignment {
	var a Assignment

	a.HeadingFont = topFont(e.heading)
	a.BodyFont = topFont(e.body)

	// Backfill from the combined tally: top entry for heading, second
	// distinct entry (or the same one) for body.
	if a.HeadingFont == "" || a.BodyFont == "" {
		ranked := rankFonts(e.all)
		if len(ranked) > 0 {
			if a.HeadingFont == "" {
				a.HeadingFont = ranked[0]
			}
			if a.BodyFont == "" {
				if len(ranked) > 1 {
					a.BodyFont = ranked[1]
				} else {
					a.BodyFont = ranked[0]
				}
			}
		}
	}

	// Last resort: externally linked fonts.
	if a.HeadingFont == "" && len(e.linked) > 0 {
		a.HeadingFont = e.linked[0]
	}
	if a.BodyFont == "" && len(e.linked) > 0 {
		if len(e.linked) > 1 {
			a.BodyFont = e.linked[1]
		} else {
			a.BodyFont = e.linked[0]
		}
	}

	a.LinkedFonts = e.linked
	if a.LinkedFonts == nil {
		a.LinkedFonts = []string{}
	}

	ranked := rankFonts(e.all)
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	a.All = make([]Count, 0, len(ranked))
	for _, f := range ranked {
		a.All = append(a.All, Count{Font: f, Count: e.all[f]})
	}
	return a
}

func topFont(tally map[string]int) string {
	ranked := rankFonts(tally)
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0]
}

// rankFonts orders by count descending, then name ascending so ties break
// identically on every run.
func rankFonts(tally map[string]int) []string {
	out := make([]string, 0, len(tally))
	for f := range tally {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if tally[out[i]] != tally[out[j]] {
			return tally[out[i]] > tally[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
