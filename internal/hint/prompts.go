package hint

import (
	"encoding/json"
	"fmt"
)

func logoPrompt(pc PageContext) string {
	images, _ := json.MarshalIndent(pc.Images, "", "  ")
	svgs, _ := json.MarshalIndent(pc.HeaderSVGs, "", "  ")

	return fmt.Sprintf(`Analyze this website's header and images to find the MAIN LOGO.

URL: %s

HEADER HTML:
%s

ALL IMAGES ON PAGE:
%s

SVGs IN HEADER:
%s

RULES:
1. The logo is usually in header/nav
2. Logo links to homepage (href="/" or domain)
3. Ignore favicons (16x16, 32x32)
4. Ignore social icons, app store badges
5. Prefer SVG over PNG
6. Look for "logo" in alt, class, or src

Return ONLY valid JSON:
{
    "logo_url": "full absolute URL to main logo image, or null if inline SVG",
    "logo_type": "svg" | "png" | "image" | "inline_svg",
    "logo_in_header": true | false,
    "confidence": 0.0 to 1.0
}`, pc.URL, pc.HeaderHTML, truncate(string(images), imagesJSONCap), string(svgs))
}

func colorsPrompt(cssChunk string, index, total int) string {
	return fmt.Sprintf(`Extract the PRIMARY BRAND COLORS from this CSS (chunk %d/%d).

CSS:
%s

Focus on:
- Button backgrounds (primary action color)
- Link colors
- Heading colors
- Brand color variables
- Background colors

Ignore:
- Black, white, gray (neutrals)
- Transparent
- var() references

Return ONLY valid JSON:
{
    "primary_color": "#hex or null",
    "secondary_color": "#hex or null",
    "background_color": "#hex or null",
    "accent_color": "#hex or null"
}`, index, total, cssChunk)
}

func typographyPrompt(pc PageContext) string {
	firstChunk := ""
	if len(pc.CSSChunks) > 0 {
		firstChunk = truncate(pc.CSSChunks[0], 5000)
	}

	return fmt.Sprintf(`Extract the FONT FAMILIES used on this website.

CSS (first chunk):
%s

HTML HEAD (for Google Fonts):
%s

Look for:
- font-family declarations
- Google Fonts imports
- @font-face declarations

Ignore:
- Icon fonts (FontAwesome, Material Icons)
- System fonts (Arial, Helvetica, sans-serif)
- var() references

Return ONLY valid JSON:
{
    "heading_font": "font name or null",
    "body_font": "font name or null",
    "google_fonts": ["font1", "font2"]
}`, firstChunk, pc.Head)
}

func tonePrompt(content string) string {
	return fmt.Sprintf(`Analyze this website's tone and target audience based on the following content:

%s

Provide a brief analysis in JSON format:
{
    "tone": "the overall tone (e.g., Professional, Casual, Playful, Corporate, Friendly, Technical)",
    "audience": "target audience (e.g., Developers, Enterprise, Consumers, Startups, Small Business)",
    "vibe": "overall vibe in 1-2 words (e.g., Modern, Minimalist, Bold, Elegant, Innovative)",
    "analysis": "1-2 sentence summary of the brand personality"
}

Return ONLY valid JSON, no other text.`, truncate(content, contentTextCap))
}
