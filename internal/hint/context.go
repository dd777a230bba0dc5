package hint

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"brandscan/internal/page"
)

// Context size caps. The oracle sees a bounded digest of the page, never
// the whole document.
const (
	headerHTMLCap  = 6000
	headCap        = 3000
	imageListCap   = 20
	svgListCap     = 5
	svgPreviewCap  = 500
	imagesJSONCap  = 3000
	cssChunkSize   = 8000
	contentTextCap = 2000
)

// PageContext is the digest of one page handed to the oracle.
type PageContext struct {
	URL        string
	HTML       string
	HeaderHTML string
	Images     []ImageContext
	HeaderSVGs []SVGContext
	CSSChunks  []string
	Head       string
}

// ImageContext describes one <img> with enough surroundings to judge
// whether it is the logo.
type ImageContext struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Class  string `json:"class"`
	Parent string `json:"parent"`
}

// SVGContext summarizes one header vector without shipping its full markup.
type SVGContext struct {
	PathCount   int    `json:"path_count"`
	TotalLength int    `json:"total_d_length"`
	Preview     string `json:"html_preview"`
}

// BuildContext digests page signals into the bounded prompt inputs.
func BuildContext(sig *page.Signals) PageContext {
	pc := PageContext{
		URL:  sig.URL,
		HTML: sig.HTML,
	}

	css := strings.Join(sig.CSS, "\n")
	if css != "" {
		pc.CSSChunks = chunkText(css, cssChunkSize)
	}

	if sig.Doc == nil {
		return pc
	}

	if header := findLandmark(sig.Doc); header != nil {
		pc.HeaderHTML = truncate(render(header), headerHTMLCap)
		pc.HeaderSVGs = headerVectors(header)
	}
	pc.Images = pageImages(sig.Doc)
	if head := findAtom(sig.Doc, atom.Head); head != nil {
		pc.Head = truncate(render(head), headCap)
	}

	return pc
}

// findLandmark returns the first header, nav, or role="banner" element.
func findLandmark(doc *html.Node) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) {
		if found != nil || n.Type != html.ElementNode {
			return
		}
		if n.DataAtom == atom.Header || n.DataAtom == atom.Nav || attrVal(n, "role") == "banner" {
			found = n
		}
	})
	return found
}

func findAtom(doc *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.DataAtom == a {
			found = n
		}
	})
	return found
}

func pageImages(doc *html.Node) []ImageContext {
	var out []ImageContext
	walk(doc, func(n *html.Node) {
		if len(out) >= imageListCap || n.Type != html.ElementNode || n.DataAtom != atom.Img {
			return
		}
		src := attrVal(n, "src")
		if src == "" {
			return
		}
		out = append(out, ImageContext{
			Src:    src,
			Alt:    attrVal(n, "alt"),
			Class:  attrVal(n, "class"),
			Parent: parentSummary(n),
		})
	})
	return out
}

// parentSummary describes the nearest enclosing a, div, header, or nav.
func parentSummary(n *html.Node) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		switch p.DataAtom {
		case atom.A, atom.Div, atom.Header, atom.Nav:
			return fmt.Sprintf("Parent: <%s class='%s' href='%s'>", p.Data, attrVal(p, "class"), attrVal(p, "href"))
		}
	}
	return ""
}

func headerVectors(header *html.Node) []SVGContext {
	var out []SVGContext
	walk(header, func(n *html.Node) {
		if len(out) >= svgListCap || n.Type != html.ElementNode || n.DataAtom != atom.Svg {
			return
		}
		count, totalD := 0, 0
		walk(n, func(c *html.Node) {
			if c.Type == html.ElementNode && c.Data == "path" {
				count++
				totalD += len(attrVal(c, "d"))
			}
		})
		out = append(out, SVGContext{
			PathCount:   count,
			TotalLength: totalD,
			Preview:     truncate(render(n), svgPreviewCap),
		})
	})
	return out
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func render(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}
