package fetcher

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"brandscan/internal/page"
)

// Hero text caps. The tone analysis only needs a taste of the page, not
// the whole body.
const (
	heroParagraphCap = 200
	heroSectionCap   = 300
	heroTotalCap     = 800
	heroMinParagraph = 30
	heroMaxH2        = 2
	heroMaxP         = 5
)

var heroClassPattern = regexp.MustCompile(`(?i)hero|banner|jumbotron|masthead`)

// metaInfo pulls title, description (name= then og:), and og:image from
// the document head.
func metaInfo(doc *html.Node) page.Metadata {
	var m page.Metadata
	var ogDescription string

	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.Title:
			if m.Title == "" {
				m.Title = strings.TrimSpace(textOf(n))
			}
		case atom.Meta:
			content := attrOf(n, "content")
			switch {
			case attrOf(n, "name") == "description" && m.Description == "":
				m.Description = content
			case attrOf(n, "property") == "og:description" && ogDescription == "":
				ogDescription = content
			case attrOf(n, "property") == "og:image" && m.OGImage == "":
				m.OGImage = content
			}
		}
	})

	if m.Description == "" {
		m.Description = ogDescription
	}
	return m
}

// heroText samples the page's headline content: the first h1, a couple of
// h2s, the first few substantial paragraphs, and the first hero-classed
// section, joined with " | ".
func heroText(doc *html.Node) string {
	var texts []string
	var h2Count, pCount int
	var heroSection string

	// Separate ordered passes keep the priority fixed: h1, then h2s, then
	// paragraphs, then the hero section.
	if h1 := firstAtom(doc, atom.H1); h1 != nil {
		texts = append(texts, collapse(textOf(h1)))
	}
	walk(doc, func(n *html.Node) {
		if h2Count >= heroMaxH2 || n.Type != html.ElementNode || n.DataAtom != atom.H2 {
			return
		}
		h2Count++
		texts = append(texts, collapse(textOf(n)))
	})
	walk(doc, func(n *html.Node) {
		if pCount >= heroMaxP || n.Type != html.ElementNode || n.DataAtom != atom.P {
			return
		}
		pCount++
		if t := collapse(textOf(n)); len(t) > heroMinParagraph {
			texts = append(texts, truncate(t, heroParagraphCap))
		}
	})
	walk(doc, func(n *html.Node) {
		if heroSection != "" || n.Type != html.ElementNode {
			return
		}
		if heroClassPattern.MatchString(attrOf(n, "class")) {
			heroSection = truncate(collapse(textOf(n)), heroSectionCap)
		}
	})
	if heroSection != "" {
		texts = append(texts, heroSection)
	}

	var kept []string
	for _, t := range texts {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return truncate(strings.Join(kept, " | "), heroTotalCap)
}

func firstAtom(doc *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.DataAtom == a {
			found = n
		}
	})
	return found
}

// collapse trims and squashes internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
