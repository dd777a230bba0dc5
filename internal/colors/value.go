package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel is returned by Normalize for malformed color literals.
const Sentinel = "#000000"

// neutralLiterals is a fixed deny-list of common near-black/near-white/gray
// values. Literals outside the list still count as neutral when all three
// channels sit pairwise within neutralChannelDelta.
var neutralLiterals = map[string]bool{
	"#000000": true, "#ffffff": true,
	"#111111": true, "#222222": true, "#333333": true, "#444444": true,
	"#555555": true, "#666666": true, "#777777": true, "#888888": true,
	"#999999": true, "#aaaaaa": true, "#bbbbbb": true, "#cccccc": true,
	"#dddddd": true, "#eeeeee": true, "#f0f0f0": true, "#f5f5f5": true,
	"#fafafa": true,
}

const neutralChannelDelta = 15

// Normalize lowercases a hex literal and expands it to the canonical
// "#rrggbb" form. Shorthand (#abc, #abcd) is expanded, an alpha channel
// (#rrggbbaa) is dropped. Anything unparseable yields Sentinel.
func Normalize(hex string) string {
	h := strings.TrimSpace(strings.ToLower(hex))
	h = strings.TrimLeft(h, "#")
	switch len(h) {
	case 3:
		h = expandShorthand(h)
	case 4:
		h = expandShorthand(h[:3])
	case 8:
		h = h[:6]
	case 6:
		// already canonical length
	default:
		return Sentinel
	}
	for _, r := range h {
		if !isHexDigit(r) {
			return Sentinel
		}
	}
	return "#" + h
}

func expandShorthand(h string) string {
	var b strings.Builder
	for _, r := range h {
		b.WriteRune(r)
		b.WriteRune(r)
	}
	return b.String()
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// IsNeutral reports whether a color is a gray-scale-ish value that should
// never claim a brand role.
func IsNeutral(hex string) bool {
	h := Normalize(hex)
	if neutralLiterals[h] {
		return true
	}
	r, g, b := hexToRGB(h)
	return abs(r-g) < neutralChannelDelta &&
		abs(g-b) < neutralChannelDelta &&
		abs(r-b) < neutralChannelDelta
}

// Saturation returns the HSL saturation of a hex color in [0,1].
func Saturation(hex string) float64 {
	r, g, b := hexToRGB(Normalize(hex))
	_, s, _ := rgbToHSL(r, g, b)
	return s
}

// Lightness returns the HSL lightness of a hex color in [0,1].
func Lightness(hex string) float64 {
	r, g, b := hexToRGB(Normalize(hex))
	_, _, l := rgbToHSL(r, g, b)
	return l
}

// RGBToHex clamps each channel to [0,255] and formats "#rrggbb".
func RGBToHex(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b))
}

// HSLToHex converts CSS-style hsl(h, s%, l%) components to a hex literal.
func HSLToHex(h, s, l float64) string {
	r, g, b := hslToRGB(h/360, s/100, l/100)
	return RGBToHex(int(r*255), int(g*255), int(b*255))
}

func hexToRGB(normalized string) (int, int, int) {
	h := strings.TrimPrefix(normalized, "#")
	if len(h) != 6 {
		return 0, 0, 0
	}
	r, err1 := strconv.ParseInt(h[0:2], 16, 32)
	g, err2 := strconv.ParseInt(h[2:4], 16, 32)
	b, err3 := strconv.ParseInt(h[4:6], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0
	}
	return int(r), int(g), int(b)
}

// rgbToHSL converts 0-255 channels to HSL with each component in [0,1]
// (hue normalized to [0,1] rather than degrees).
func rgbToHSL(ri, gi, bi int) (h, s, l float64) {
	r := float64(ri) / 255
	g := float64(gi) / 255
	b := float64(bi) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6
	return h, s, l
}

// hslToRGB converts HSL components in [0,1] to RGB channels in [0,1].
func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r = hueToChannel(p, q, h+1.0/3)
	g = hueToChannel(p, q, h)
	b = hueToChannel(p, q, h-1.0/3)
	return r, g, b
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
