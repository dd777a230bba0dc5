// Package vision implements the screenshot fallback for logo detection:
// a contour search over the header strip of a page screenshot. It is the
// lowest-trust tier; the search favors left-positioned, moderately sized,
// wide regions and rejects anything that looks like a banner or a stripe.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math/bits"

	"github.com/corona10/goimagehash"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg"

	"brandscan/internal/logo"
)

// Search parameters. The header strip is the top 20% of the screenshot;
// boxes outside the size/aspect envelope are discarded before scoring.
const (
	headerFraction = 0.20

	minBoxWidth  = 40
	minBoxHeight = 20
	maxWidthFrac = 0.4 // of screenshot width
	maxHeightFrc = 0.8 // of header strip height

	maxAspect = 8.0
	minAspect = 0.3

	positionWeight = 0.3
	sizeWeight     = 0.4
	aspectWeight   = 0.3

	sizeAreaDivisor = 5000.0

	acceptScore = 0.3

	cropPadding = 5

	gradientThreshold = 96

	// Minimum dHash population for a crop. A near-empty hash means the
	// region is one flat block of color, not a logo.
	minHashBits = 4
)

// Config configures a Detector.
type Config struct {
	Logger *slog.Logger
}

// Detector locates a logo-like region in a screenshot. Implements
// logo.Vision. Stateless and safe for concurrent use.
type Detector struct {
	log *slog.Logger
}

// New builds a Detector.
func New(cfg Config) *Detector {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Detector{log: log}
}

// Detect decodes the screenshot, searches the header strip, and returns the
// best region as a PNG data URL. Returns (nil, nil) when no region
// qualifies; decode failures are errors.
func (d *Detector) Detect(ctx context.Context, screenshot []byte) (*logo.Match, error) {
	if len(screenshot) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(screenshot))
	if err != nil {
		return nil, fmt.Errorf("vision: decode screenshot: %w", err)
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	headerH := int(float64(height) * headerFraction)
	if headerH < minBoxHeight || width < minBoxWidth {
		return nil, nil
	}

	gray := grayHeader(img, width, headerH)
	mask := edgeMask(gray)
	boxes := components(mask, width, headerH)

	var best *box
	bestScore := 0.0
	for i := range boxes {
		bx := &boxes[i]
		if !plausible(bx, width, headerH) {
			continue
		}
		score := scoreBox(bx, width)
		if score > bestScore {
			bestScore = score
			best = bx
		}
	}

	if best == nil || bestScore <= acceptScore {
		return nil, nil
	}

	crop := cropRegion(img, best, width, headerH)

	if uniform(crop) {
		d.log.Debug("vision candidate rejected as uniform region",
			"w", best.w(), "h", best.h(), "score", bestScore)
		return nil, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return nil, fmt.Errorf("vision: encode crop: %w", err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	return &logo.Match{DataURL: dataURL, Score: bestScore}, nil
}

type box struct {
	x0, y0, x1, y1 int // inclusive bounds
}

func (b *box) w() int { return b.x1 - b.x0 + 1 }
func (b *box) h() int { return b.y1 - b.y0 + 1 }

func plausible(b *box, width, headerH int) bool {
	w, h := b.w(), b.h()
	if w < minBoxWidth || h < minBoxHeight {
		return false
	}
	if float64(w) > float64(width)*maxWidthFrac {
		return false
	}
	if float64(h) > float64(headerH)*maxHeightFrc {
		return false
	}
	aspect := float64(w) / float64(h)
	return aspect <= maxAspect && aspect >= minAspect
}

// scoreBox blends position (left is better), size (up to a plateau), and
// aspect ratio (wide-but-not-banner preferred) into [0,1].
func scoreBox(b *box, width int) float64 {
	w, h := b.w(), b.h()
	centerX := float64(b.x0) + float64(w)/2
	posScore := 1.0 - centerX/float64(width)

	area := float64(w * h)
	sizeScore := area / sizeAreaDivisor
	if sizeScore > 1 {
		sizeScore = 1
	}

	aspect := float64(w) / float64(h)
	aspectScore := 0.5
	if aspect > 1.5 && aspect < 4 {
		aspectScore = 1.0
	}

	return posScore*positionWeight + sizeScore*sizeWeight + aspectScore*aspectWeight
}

// grayHeader converts the top strip of the screenshot to grayscale.
func grayHeader(img image.Image, width, headerH int) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, width, headerH))
	xdraw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return gray
}

// edgeMask marks pixels whose Sobel gradient magnitude exceeds the
// threshold.
func edgeMask(gray *image.Gray) []bool {
	w := gray.Rect.Dx()
	h := gray.Rect.Dy()
	mask := make([]bool, w*h)

	at := func(x, y int) int {
		return int(gray.GrayAt(x, y).Y)
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy > gradientThreshold {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}

// components groups edge pixels into 8-connected regions and returns their
// bounding boxes.
func components(mask []bool, w, h int) []box {
	visited := make([]bool, len(mask))
	var boxes []box
	var queue []int

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		visited[start] = true
		queue = append(queue[:0], start)
		b := box{x0: start % w, y0: start / w, x1: start % w, y1: start / w}

		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := idx%w, idx/w

			if x < b.x0 {
				b.x0 = x
			}
			if x > b.x1 {
				b.x1 = x
			}
			if y < b.y0 {
				b.y0 = y
			}
			if y > b.y1 {
				b.y1 = y
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if mask[nidx] && !visited[nidx] {
						visited[nidx] = true
						queue = append(queue, nidx)
					}
				}
			}
		}
		boxes = append(boxes, b)
	}
	return boxes
}

// cropRegion cuts the candidate box (with padding) out of the original
// screenshot, clamped to the header strip.
func cropRegion(img image.Image, b *box, width, headerH int) image.Image {
	x0 := maxInt(0, b.x0-cropPadding)
	y0 := maxInt(0, b.y0-cropPadding)
	x1 := minInt(width, b.x1+1+cropPadding)
	y1 := minInt(headerH, b.y1+1+cropPadding)

	dst := image.NewRGBA(image.Rect(0, 0, x1-x0, y1-y0))
	xdraw.Draw(dst, dst.Bounds(), img, img.Bounds().Min.Add(image.Pt(x0, y0)), xdraw.Src)
	return dst
}

// uniform reports whether a crop is a flat block of color. A difference
// hash with almost no set bits means no internal structure.
func uniform(crop image.Image) bool {
	hash, err := goimagehash.DifferenceHash(crop)
	if err != nil {
		return false
	}
	return bits.OnesCount64(hash.GetHash()) < minHashBits
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
