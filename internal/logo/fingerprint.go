package logo

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"brandscan/internal/page"
)

// Fingerprint limits: a shape's fingerprint is the concatenation of the
// first 50 characters of each path's drawing commands, truncated to 200.
const (
	fpPerPath = 50
	fpTotal   = 200
)

// buildUsage counts how often each fingerprint occurs on the page. A
// fingerprint seen more than once marks a repeated UI icon, which is
// excluded from candidacy in every tier.
//
// The count must come from a single census: the renderer's collections
// overlap each other (header vectors include anchor vectors) and both
// describe elements the parsed document also contains, so summing them
// would count one physical element several times and misread every
// unique logo as a repeated icon.
func buildUsage(sig *page.Signals) map[string]int {
	usage := map[string]int{}

	// The parsed document lists every physical <svg> exactly once.
	if sig.Doc != nil {
		walkNodes(sig.Doc, func(n *html.Node) {
			if n.Type == html.ElementNode && n.DataAtom == atom.Svg {
				if fp := nodeFingerprint(n); fp != "" {
					usage[fp]++
				}
			}
		})
		return usage
	}

	// Without a document, the header census is the widest single view;
	// anchor vectors only add the shapes it was too small to capture.
	for _, v := range sig.HeaderVectors {
		if fp := v.Geometry.Fingerprint; fp != "" {
			usage[fp]++
		}
	}
	missed := map[string]int{}
	for _, a := range sig.BrandAnchors {
		for _, v := range a.Vectors {
			if fp := v.Geometry.Fingerprint; fp != "" && usage[fp] == 0 {
				missed[fp]++
			}
		}
	}
	for fp, n := range missed {
		usage[fp] += n
	}
	return usage
}

// nodeFingerprint derives the fingerprint of a DOM <svg> node from its
// <path> d attributes using the same truncation as the renderer.
func nodeFingerprint(svg *html.Node) string {
	var b strings.Builder
	walkNodes(svg, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "path" {
			d := attr(n, "d")
			if len(d) > fpPerPath {
				d = d[:fpPerPath]
			}
			b.WriteString(d)
		}
	})
	fp := b.String()
	if len(fp) > fpTotal {
		fp = fp[:fpTotal]
	}
	return fp
}

func walkNodes(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
