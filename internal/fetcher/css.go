package fetcher

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"brandscan/internal/page"
)

// collectCSS gathers inline <style> blocks plus the first few linked
// stylesheets. Linked sheets are fetched over plain HTTP with a short
// timeout and a size cap; a failed fetch just drops that sheet.
func (f *Fetcher) collectCSS(ctx context.Context, sig *page.Signals) {
	var links []string

	walk(sig.Doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.Style:
			if text := textOf(n); strings.TrimSpace(text) != "" {
				sig.CSS = append(sig.CSS, text)
			}
		case atom.Link:
			if len(links) >= maxStylesheets {
				return
			}
			if !strings.Contains(strings.ToLower(attrOf(n, "rel")), "stylesheet") {
				return
			}
			if href := attrOf(n, "href"); href != "" {
				links = append(links, page.ResolveRef(sig.URL, href))
			}
		}
	})

	for _, u := range links {
		if body, ok := f.fetchStylesheet(ctx, u); ok {
			sig.CSS = append(sig.CSS, body)
		}
	}
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attrOf(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}
