// Package colors classifies colors found in CSS into brand roles:
// primary, secondary, background, accent, plus a neutral pool that is
// barred from claiming a role.
//
// Two passes run over every stylesheet. The structured pass parses the CSS
// and classifies each declaration by selector and property context. The
// regex pass sweeps the raw text for color literals the parser view missed
// (custom properties, gradients, vendor blocks). Both passes feed the same
// frequency tables, so a color the structured pass saw counts again in the
// regex pass; the bias favors colors that appear in classifiable contexts,
// which is what we want for brand roles.
package colors

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Assignment is the outcome of color classification for one page.
type Assignment struct {
	Primary    string   `json:"primary,omitempty"`
	Secondary  string   `json:"secondary,omitempty"`
	Background string   `json:"background,omitempty"`
	Accent     string   `json:"accent,omitempty"`
	Neutrals   []string `json:"neutrals"`
	All        []Count  `json:"all_colors"`
}

// Count pairs a color with its occurrence count across both passes.
type Count struct {
	Color string `json:"color"`
	Count int    `json:"count"`
}

const (
	rolePrimary    = "primary"
	roleSecondary  = "secondary"
	roleBackground = "background"
	roleAccent     = "accent"
)

var (
	hexPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})\b`)
	rgbPattern = regexp.MustCompile(`rgba?\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)
	hslPattern = regexp.MustCompile(`hsla?\s*\(\s*([\d.]+)\s*,\s*([\d.]+)%\s*,\s*([\d.]+)%`)
)

// Extract runs both passes over every CSS block and resolves role winners.
func Extract(blocks []string) Assignment {
	e := newExtractor()
	for _, b := range blocks {
		if strings.TrimSpace(b) == "" {
			continue
		}
		e.sweep(b)
		e.structured(b)
	}
	return e.resolve()
}

type extractor struct {
	roles map[string]map[string]int // role -> color -> count
	all   map[string]int
}

func newExtractor() *extractor {
	return &extractor{
		roles: map[string]map[string]int{
			rolePrimary:    {},
			roleSecondary:  {},
			roleBackground: {},
			roleAccent:     {},
		},
		all: map[string]int{},
	}
}

// structured parses the block and classifies declarations by selector and
// property. A parse failure is silently ignored; the sweep pass has already
// covered the raw text.
func (e *extractor) structured(block string) {
	sheet, err := parser.Parse(block)
	if err != nil {
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
			e.declaration(sel, strings.ToLower(d.Property), d.Value)
		}
	}
	// At-rules (@media, @supports) nest their body rules.
	for _, nested := range r.Rules {
		e.rule(nested)
	}
}

func (e *extractor) declaration(selector, property, value string) {
	for _, c := range literalsIn(value) {
		e.all[c]++
		if IsNeutral(c) {
			continue
		}
		if role := classify(selector, property); role != "" {
			e.roles[role][c]++
		}
	}
}

// sweep buckets every raw literal with no selector context: neutrals feed
// the neutral pool, everything else boosts the primary tally.
func (e *extractor) sweep(block string) {
	for _, m := range hexPattern.FindAllString(block, -1) {
		e.sweepOne(Normalize(m))
	}
	for _, m := range rgbPattern.FindAllStringSubmatch(block, -1) {
		e.sweepOne(rgbMatchToHex(m))
	}
}

func (e *extractor) sweepOne(c string) {
	e.all[c]++
	if !IsNeutral(c) {
		e.roles[rolePrimary][c]++
	}
}

// literalsIn extracts every color literal from a declaration value,
// normalized to "#rrggbb".
func literalsIn(value string) []string {
	var out []string
	for _, m := range hexPattern.FindAllString(value, -1) {
		out = append(out, Normalize(m))
	}
	for _, m := range rgbPattern.FindAllStringSubmatch(value, -1) {
		out = append(out, rgbMatchToHex(m))
	}
	for _, m := range hslPattern.FindAllStringSubmatch(value, -1) {
		h, _ := strconv.ParseFloat(m[1], 64)
		s, _ := strconv.ParseFloat(m[2], 64)
		l, _ := strconv.ParseFloat(m[3], 64)
		out = append(out, HSLToHex(h, s, l))
	}
	return out
}

func rgbMatchToHex(m []string) string {
	r, _ := strconv.Atoi(m[1])
	g, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])
	return RGBToHex(r, g, b)
}

// classify maps a selector/property pair to a brand role. The checks are
// ordered; the first match wins. Returns "" when no context applies.
func classify(selector, property string) string {
	if containsAny(selector, "button", ".btn", "[type=submit]", ".cta", "submit") &&
		(property == "background" || property == "background-color" || property == "border-color") {
		return rolePrimary
	}
	// Interaction states outrank the link check so "a:hover" reads as an
	// accent, not a link color.
	if containsAny(selector, ":hover", ":focus", ":active") {
		return roleAccent
	}
	if containsAny(selector, ":link", ":visited", "a:", " a", ".link") && property == "color" {
		return roleSecondary
	}
	if property == "background" || property == "background-color" {
		if containsAny(selector, "body", "html", ".bg-", "main", ".wrapper", ".container", ":root") {
			return roleBackground
		}
		return rolePrimary
	}
	if property == "color" {
		if containsAny(selector, "h1", "h2", ".heading", ".title") {
			return roleSecondary
		}
		return rolePrimary
	}
	if strings.Contains(property, "border") {
		return roleAccent
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// resolve picks a winner per role, backfills primary from the global pool,
// and defaults the background to white.
func (e *extractor) resolve() Assignment {
	var a Assignment

	a.Primary = pickWinner(e.roles[rolePrimary], false)
	a.Secondary = pickWinner(e.roles[roleSecondary], false)
	a.Background = pickWinner(e.roles[roleBackground], true)
	a.Accent = pickWinner(e.roles[roleAccent], false)

	if a.Primary == "" {
		pool := map[string]int{}
		for c, n := range e.all {
			if !IsNeutral(c) {
				pool[c] = n
			}
		}
		a.Primary = pickWinner(pool, false)
	}
	if a.Background == "" {
		a.Background = "#ffffff"
	}

	a.Neutrals = topNeutrals(e.all, 5)
	a.All = topCounts(e.all, 20)
	return a
}

// pickWinner ranks candidates by count, then saturation, then the color
// string itself so ties resolve the same way on every run. The background
// role prefers a light candidate, then a dark one, before settling for the
// ranked winner.
func pickWinner(candidates map[string]int, preferExtremes bool) string {
	if len(candidates) == 0 {
		return ""
	}
	ranked := rankColors(candidates)
	if preferExtremes {
		for _, c := range ranked {
			if Lightness(c) > 0.5 {
				return c
			}
		}
		for _, c := range ranked {
			if Lightness(c) < 0.3 {
				return c
			}
		}
	}
	return ranked[0]
}

func rankColors(candidates map[string]int) []string {
	out := make([]string, 0, len(candidates))
	for c := range candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if candidates[out[i]] != candidates[out[j]] {
			return candidates[out[i]] > candidates[out[j]]
		}
		si, sj := Saturation(out[i]), Saturation(out[j])
		if si != sj {
			return si > sj
		}
		return out[i] < out[j]
	})
	return out
}

func topNeutrals(all map[string]int, n int) []string {
	pool := map[string]int{}
	for c, cnt := range all {
		if IsNeutral(c) {
			pool[c] = cnt
		}
	}
	ranked := rankColors(pool)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []string{}
	}
	return ranked
}

func topCounts(all map[string]int, n int) []Count {
	ranked := rankColors(all)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]Count, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, Count{Color: c, Count: all[c]})
	}
	return out
}
