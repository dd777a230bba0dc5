package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"brandscan/internal/page"
)

const (
	navigateTimeout  = 30 * time.Second
	headerWaitLimit  = 8 * time.Second
	viewportWidth    = 1440
	viewportHeight   = 900
	screenshotHeight = 600
)

// capture mirrors the JSON object the in-page script returns.
type capture struct {
	BrandAnchors []page.BrandAnchor  `json:"brandAnchors"`
	HeaderSvgs   []page.VectorRecord `json:"headerSvgs"`
	HeaderImages []page.RasterRecord `json:"headerImages"`
	SvgCount     int                 `json:"svgCount"`
}

// render drives headless Chrome: navigate, wait for the header to settle,
// capture HTML, geometry records, and the header screenshot.
func (f *Fetcher) render(ctx context.Context, sig *page.Signals) error {
	tab, err := f.cfg.Browser.Page(ctx)
	if err != nil {
		return err
	}
	defer tab.Close()

	if err := tab.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("fetcher: set viewport: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	if err := tab.Context(navCtx).Navigate(sig.URL); err != nil {
		return fmt.Errorf("fetcher: navigate %s: %w", sig.URL, err)
	}
	if err := tab.Context(navCtx).WaitLoad(); err != nil {
		f.log.Debug("wait load timeout", "url", sig.URL, "error", err)
	}

	// Wait for header graphics; client-rendered headers arrive late.
	// Absence is not fatal, some pages genuinely have none.
	if _, err := tab.Timeout(headerWaitLimit).Element(
		"header svg, nav svg, header img, nav img, [role='banner'] svg"); err != nil {
		f.log.Debug("no header graphics before deadline", "url", sig.URL)
	}

	if _, err := tab.Evaluate(rod.Eval(stabilityScript).ByPromise()); err != nil {
		f.log.Debug("DOM stability wait failed", "url", sig.URL, "error", err)
	}

	htmlText, err := tab.HTML()
	if err != nil {
		return fmt.Errorf("fetcher: read HTML: %w", err)
	}
	if len(htmlText) < minRenderedHTML {
		return fmt.Errorf("fetcher: rendered HTML too small (%d bytes)", len(htmlText))
	}
	sig.HTML = htmlText
	sig.Rendered = true

	if err := f.capture(tab, sig); err != nil {
		f.log.Warn("capture script failed", "url", sig.URL, "error", err)
	}

	if shot, err := f.screenshot(tab); err != nil {
		f.log.Debug("screenshot failed", "url", sig.URL, "error", err)
	} else {
		sig.Screenshot = shot
	}

	return nil
}

// capture runs the geometry script and decodes its result into the bundle.
func (f *Fetcher) capture(tab *rod.Page, sig *page.Signals) error {
	res, err := tab.Eval(captureScript)
	if err != nil {
		return fmt.Errorf("eval capture script: %w", err)
	}

	raw, err := json.Marshal(res.Value.Val())
	if err != nil {
		return fmt.Errorf("marshal capture result: %w", err)
	}
	var out capture
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode capture result: %w", err)
	}

	sig.BrandAnchors = out.BrandAnchors
	sig.HeaderVectors = out.HeaderSvgs
	sig.HeaderRasters = out.HeaderImages
	sig.VectorCount = out.SvgCount
	return nil
}

// screenshot captures the top strip of the viewport for the vision tier.
func (f *Fetcher) screenshot(tab *rod.Page) ([]byte, error) {
	return tab.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  viewportWidth,
			Height: screenshotHeight,
			Scale:  1,
		},
	})
}
