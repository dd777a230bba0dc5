package logo

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"brandscan/internal/colors"
	"brandscan/internal/page"
)

// svgPolicy keeps inline SVG markup down to drawing elements and their
// presentation attributes before it leaves the pipeline. Scripts, event
// handlers and foreignObject content are stripped.
var svgPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"svg", "g", "path", "circle", "ellipse", "rect", "line", "polyline",
		"polygon", "text", "tspan", "defs", "use", "symbol", "title", "desc",
		"lineargradient", "radialgradient", "stop", "clippath", "mask",
	)
	p.AllowAttrs(
		"d", "viewbox", "width", "height", "x", "y", "x1", "y1", "x2", "y2",
		"cx", "cy", "r", "rx", "ry", "points", "transform", "fill", "stroke",
		"stroke-width", "stroke-linecap", "stroke-linejoin", "fill-rule",
		"clip-rule", "clip-path", "offset", "stop-color", "stop-opacity",
		"opacity", "xmlns", "id", "class", "aria-hidden", "role", "href",
	).Globally()
	return p
}()

func sanitizeSVG(markup string) string {
	if markup == "" {
		return ""
	}
	return svgPolicy.Sanitize(markup)
}

var rgbFuncPattern = regexp.MustCompile(`rgba?\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)

// tintOf resolves a display color for a vector candidate from its computed
// styles: the text color first, then (when allowed) a non-empty fill.
// rgb() functions convert to hex; anything else passes through untouched.
func tintOf(c page.StyleColors, useFill bool) string {
	if c.Color != "" {
		return rgbStringToHex(c.Color)
	}
	if useFill && c.Fill != "" && c.Fill != "none" {
		return rgbStringToHex(c.Fill)
	}
	return ""
}

func rgbStringToHex(s string) string {
	m := rgbFuncPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	r, _ := strconv.Atoi(m[1])
	g, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])
	return colors.RGBToHex(r, g, b)
}

func rasterKind(src string) string {
	if strings.Contains(strings.ToLower(src), ".svg") {
		return "svg"
	}
	return "image"
}

// scanDOM is tier 4: a raw re-scan of the parsed document for short home
// links under navigation landmarks, independent of the renderer's geometry
// records. It catches pages where the in-browser capture saw nothing.
func scanDOM(r *run) (Result, bool) {
	if r.sig.Doc == nil {
		return Result{}, false
	}

	type candidate struct {
		kind   string
		markup string
		src    string
		score  float64
		order  int
	}
	var cands []candidate

	walkNodes(r.sig.Doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.A {
			return
		}

		href := attr(n, "href")
		if !underLandmark(n) && href != "/" {
			return
		}
		if !isHomeHref(href, r.sig.Origin) && href != "#" && !strings.HasPrefix(href, "/") {
			return
		}
		if len([]rune(strings.TrimSpace(textContent(n)))) > 25 {
			return
		}

		if svg := findElement(n, atom.Svg); svg != nil {
			if r.usage[nodeFingerprint(svg)] <= 1 {
				paths, totalD := pathStats(svg)
				cands = append(cands, candidate{
					kind:   "svg",
					markup: renderNode(svg),
					score:  float64(paths)*5 + float64(totalD)/50,
					order:  len(cands),
				})
			}
		}

		if img := findElement(n, atom.Img); img != nil {
			src := attr(img, "src")
			if src != "" {
				score := 20.0
				alt := strings.ToLower(attr(img, "alt"))
				class := strings.ToLower(attr(img, "class"))
				if strings.Contains(alt, "logo") || strings.Contains(class, "logo") {
					score += 40
				}
				cands = append(cands, candidate{
					kind:  "img",
					src:   src,
					score: score,
					order: len(cands),
				})
			}
		}
	})

	if len(cands) == 0 {
		return Result{}, false
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].order < cands[j].order
	})

	best := cands[0]
	if best.kind == "svg" {
		return Result{
			Found:      true,
			Kind:       "inline_svg",
			Markup:     sanitizeSVG(best.markup),
			Confidence: capAt(best.score/100, 0.6),
			Source:     "dom_fallback_svg",
		}, true
	}
	return Result{
		Found:      true,
		Kind:       "image",
		URL:        page.ResolveRef(r.sig.URL, best.src),
		Confidence: capAt(best.score/100, 0.5),
		Source:     "dom_fallback_img",
	}, true
}

// underLandmark reports whether the node has a header, nav, or
// role="banner" ancestor.
func underLandmark(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if p.DataAtom == atom.Header || p.DataAtom == atom.Nav {
			return true
		}
		if attr(p, "role") == "banner" {
			return true
		}
	}
	return false
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walkNodes(n, func(c *html.Node) {
		if found == nil && c != n && c.Type == html.ElementNode && c.DataAtom == a {
			found = c
		}
	})
	return found
}

func pathStats(svg *html.Node) (count, totalD int) {
	walkNodes(svg, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "path" {
			count++
			totalD += len(attr(n, "d"))
		}
	})
	return count, totalD
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walkNodes(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

func renderNode(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}
