package typography

import "testing"

func TestExtract_HeadingFromH1(t *testing.T) {
	// WHAT: The first non-system family on an h1 rule becomes the heading font.
	// WHY: Fallback stacks (Arial, sans-serif) must never outrank the brand face.
	css := `h1 { font-family: "Inter", Arial, sans-serif; }`
	a := Extract([]string{css}, "")
	if a.HeadingFont != "Inter" {
		t.Errorf("heading: got %q, want Inter", a.HeadingFont)
	}
}

func TestExtract_BodyDefault(t *testing.T) {
	// WHAT: Selectors without heading keywords classify as body, including
	// unmatched ones.
	css := `
		body { font-family: "Source Serif Pro", serif; }
		.sidebar-widget { font-family: "Source Serif Pro", serif; }
	`
	a := Extract([]string{css}, "")
	if a.BodyFont != "Source Serif Pro" {
		t.Errorf("body: got %q, want Source Serif Pro", a.BodyFont)
	}
}

func TestExtract_FontShorthand(t *testing.T) {
	// WHAT: The `font` shorthand yields families after the size token.
	css := `h2 { font: 24px "Playfair Display", serif; }`
	a := Extract([]string{css}, "")
	if a.HeadingFont != "Playfair Display" {
		t.Errorf("heading: got %q, want Playfair Display", a.HeadingFont)
	}
}

func TestExtract_IconFontsFiltered(t *testing.T) {
	// WHAT: Icon faces are dropped by substring match.
	css := `
		.icon { font-family: "Font Awesome 6 Free"; }
		.mat { font-family: "Material Icons"; }
		h1 { font-family: "Lora"; }
	`
	a := Extract([]string{css}, "")
	if a.HeadingFont != "Lora" {
		t.Errorf("heading: got %q, want Lora", a.HeadingFont)
	}
	for _, f := range a.All {
		if f.Font != "Lora" {
			t.Errorf("all: unexpected font %q", f.Font)
		}
	}
}

func TestExtract_VarReferencesFiltered(t *testing.T) {
	// WHAT: var(--font) placeholders never count as families.
	css := `body { font-family: var(--font-body), sans-serif; }`
	a := Extract([]string{css}, "")
	if len(a.All) != 0 {
		t.Errorf("all: got %+v, want empty", a.All)
	}
}

func TestExtract_LinkedFontsFromHead(t *testing.T) {
	// WHAT: Google Fonts URLs in the head are decoded into family names,
	// whether the markup is raw or re-serialized (& escaped to &amp;).
	// WHY: The head string comes from html.Render, which escapes ampersands
	// in attribute values; every family= parameter must still be recovered.
	heads := []string{
		`<link href="https://fonts.googleapis.com/css2?family=Playfair+Display:wght@700&family=Open+Sans" rel="stylesheet">`,
		`<link href="https://fonts.googleapis.com/css2?family=Playfair+Display:wght@700&amp;family=Open+Sans" rel="stylesheet"/>`,
	}
	want := []string{"Playfair Display", "Open Sans"}
	for _, head := range heads {
		a := Extract(nil, head)
		if len(a.LinkedFonts) != len(want) {
			t.Fatalf("linked from %q: got %v, want %v", head, a.LinkedFonts, want)
		}
		for i := range want {
			if a.LinkedFonts[i] != want[i] {
				t.Errorf("linked[%d]: got %q, want %q", i, a.LinkedFonts[i], want[i])
			}
		}
	}
}

func TestExtract_LinkedFontsBackfill(t *testing.T) {
	// WHAT: With no usable CSS families, linked fonts fill heading then body.
	head := `<link href="https://fonts.googleapis.com/css?family=Lato&family=Merriweather">`
	a := Extract([]string{`body { font-family: sans-serif; }`}, head)
	if a.HeadingFont != "Lato" {
		t.Errorf("heading: got %q, want Lato", a.HeadingFont)
	}
	if a.BodyFont != "Merriweather" {
		t.Errorf("body: got %q, want Merriweather", a.BodyFont)
	}
}

func TestExtract_CombinedBackfill(t *testing.T) {
	// WHAT: Missing roles are backfilled from the two most frequent
	// combined names; one name serves both when it is alone.
	css := `
		.nav { font-family: "Inter"; }
		.footer { font-family: "Inter"; }
		.aside { font-family: "Karla"; }
	`
	a := Extract([]string{css}, "")
	if a.HeadingFont != "Inter" {
		t.Errorf("heading: got %q, want Inter", a.HeadingFont)
	}
	if a.BodyFont != "Inter" {
		t.Errorf("body: got %q, want Inter", a.BodyFont)
	}
}

func TestExtract_RegexFallback(t *testing.T) {
	// WHAT: Unparseable CSS still yields families via the literal scan,
	// combined tally only.
	css := `.broken { font-family: "Space Grotesk", sans-serif;`
	a := Extract([]string{css}, "")
	found := false
	for _, f := range a.All {
		if f.Font == "Space Grotesk" {
			found = true
		}
	}
	if !found {
		t.Errorf("all: Space Grotesk missing: %+v", a.All)
	}
}

func TestExtract_TopTenCap(t *testing.T) {
	// WHAT: The combined list is capped at 10 entries.
	names := []string{
		"Lora", "Karla", "Inter", "Sora", "Rubik", "Manrope", "Outfit",
		"Spectral", "Bitter", "Zilla Slab", "Crimson Text", "Work Sans",
	}
	var css string
	for _, n := range names {
		css += `.x { font-family: "` + n + `"; } `
	}
	a := Extract([]string{css}, "")
	if len(a.All) > 10 {
		t.Errorf("all: got %d entries, want <= 10", len(a.All))
	}
}
