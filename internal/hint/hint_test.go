package hint

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"brandscan/internal/page"
)

// completionServer answers chat-completion calls by routing on prompt
// content: the logo, colors, and typography phases each get a canned reply.
func completionServer(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth: got %q", got)
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		prompt := req.Messages[0].Content

		content := "{}"
		for marker, reply := range replies {
			if strings.Contains(prompt, marker) {
				content = reply
				break
			}
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testContext(t *testing.T) PageContext {
	t.Helper()
	doc := `<html><head><title>Acme</title></head><body><header><a href="/"><img src="/logo.svg" alt="Acme logo"></a></header></body></html>`
	node, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return BuildContext(&page.Signals{
		URL:  "https://acme.test/",
		HTML: strings.Repeat(doc, 3),
		Doc:  node,
		CSS:  []string{".btn { background: #ff5733; }"},
	})
}

func TestGuess_ThreePhases(t *testing.T) {
	// WHAT: The three phases land in one Guess: logo URL, first non-null
	// colors, fonts.
	// WHY: Downstream reconciliation consumes a single merged hint.
	srv := completionServer(t, map[string]string{
		"MAIN LOGO":     `{"logo_url": "https://acme.test/logo.svg", "logo_type": "svg", "confidence": 0.9}`,
		"BRAND COLORS":  `{"primary_color": "#ff5733", "secondary_color": null, "background_color": "#ffffff"}`,
		"FONT FAMILIES": `{"heading_font": "Inter", "body_font": "Lora", "google_fonts": ["Inter", "Lora"]}`,
	})
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, APIKey: "test-key"})
	g, err := c.Guess(context.Background(), testContext(t))
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if !g.Success {
		t.Error("success not set")
	}
	if g.LogoURL != "https://acme.test/logo.svg" || g.LogoConfidence != 0.9 {
		t.Errorf("logo: got %q conf %v", g.LogoURL, g.LogoConfidence)
	}
	if g.PrimaryColor != "#ff5733" || g.BackgroundColor != "#ffffff" {
		t.Errorf("colors: got %+v", g)
	}
	if g.HeadingFont != "Inter" || g.BodyFont != "Lora" {
		t.Errorf("fonts: got %+v", g)
	}
	if len(g.LinkedFonts) != 2 {
		t.Errorf("linked fonts: got %v", g.LinkedFonts)
	}
}

func TestGuess_NoAPIKey(t *testing.T) {
	// WHAT: Without credentials the client refuses up front.
	c := New(Config{Endpoint: "http://unused.invalid"})
	if _, err := c.Guess(context.Background(), testContext(t)); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("got %v, want ErrNoAPIKey", err)
	}
}

func TestGuess_InsufficientHTML(t *testing.T) {
	// WHAT: A near-empty page is not worth a network round trip.
	c := New(Config{Endpoint: "http://unused.invalid", APIKey: "test-key"})
	pc := PageContext{HTML: "<html></html>"}
	if _, err := c.Guess(context.Background(), pc); !errors.Is(err, ErrInsufficientHTML) {
		t.Errorf("got %v, want ErrInsufficientHTML", err)
	}
}

func TestGuess_PartialFailure(t *testing.T) {
	// WHAT: One phase failing leaves its fields empty without sinking the
	// other phases.
	// WHY: The oracle is unreliable; partial answers are the normal case.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if strings.Contains(req.Messages[0].Content, "MAIN LOGO") {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"primary_color": "#0044cc", "heading_font": "Sora"}`}},
			},
		})
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, APIKey: "test-key"})
	g, err := c.Guess(context.Background(), testContext(t))
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if g.LogoURL != "" || g.LogoConfidence != 0 {
		t.Errorf("logo should be empty: %+v", g)
	}
	if g.PrimaryColor != "#0044cc" {
		t.Errorf("primary: got %q", g.PrimaryColor)
	}
}

func TestGuess_FencedResponse(t *testing.T) {
	// WHAT: Markdown-fenced JSON replies still parse.
	srv := completionServer(t, map[string]string{
		"MAIN LOGO": "```json\n{\"logo_url\": \"https://acme.test/m.png\", \"confidence\": 0.7}\n```",
	})
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, APIKey: "test-key"})
	g, err := c.Guess(context.Background(), testContext(t))
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if g.LogoURL != "https://acme.test/m.png" {
		t.Errorf("logo: got %q", g.LogoURL)
	}
}

func TestTone_Success(t *testing.T) {
	// WHAT: A parseable tone reply is adopted wholesale with success set.
	srv := completionServer(t, map[string]string{
		"tone and target audience": `{"tone": "Playful", "audience": "Consumers", "vibe": "Bold", "analysis": "Energetic consumer brand."}`,
	})
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, APIKey: "test-key"})
	v := c.Tone(context.Background(), "Acme", "Rockets and anvils", "Fast delivery of rockets")
	if !v.Success || v.Tone != "Playful" || v.Vibe != "Bold" {
		t.Errorf("got %+v", v)
	}
}

func TestTone_InsufficientContent(t *testing.T) {
	// WHAT: Too little content returns the Unknown descriptor without any
	// network call.
	c := New(Config{Endpoint: "http://unused.invalid", APIKey: "test-key"})
	v := c.Tone(context.Background(), "", "", "")
	if v.Success || v.Tone != "Unknown" {
		t.Errorf("got %+v", v)
	}
}

func TestTone_NoKeyFallsBack(t *testing.T) {
	// WHAT: Missing credentials yield the generic profile, not an error.
	c := New(Config{Endpoint: "http://unused.invalid"})
	v := c.Tone(context.Background(), "Acme", "A long enough description", "hero")
	if v.Success || v.Tone != "Professional" || v.Vibe != "Modern" {
		t.Errorf("got %+v", v)
	}
}

func TestDecodeLoose(t *testing.T) {
	// WHAT: Fences, prose, and plain JSON all decode; garbage does not.
	var out struct {
		A string `json:"a"`
	}
	cases := []struct {
		in   string
		ok   bool
		want string
	}{
		{`{"a": "x"}`, true, "x"},
		{"```json\n{\"a\": \"y\"}\n```", true, "y"},
		{"Here you go: {\"a\": \"z\"} hope it helps", true, "z"},
		{"no json here", false, ""},
		{"", false, ""},
	}
	for _, c := range cases {
		out.A = ""
		got := decodeLoose(c.in, &out)
		if got != c.ok || out.A != c.want {
			t.Errorf("decodeLoose(%q): got %v %q", c.in, got, out.A)
		}
	}
}

func TestChunkText(t *testing.T) {
	// WHAT: Long text splits near the target size, breaking at newlines
	// past the halfway mark; short text stays whole.
	if got := chunkText("short", 100); len(got) != 1 || got[0] != "short" {
		t.Errorf("short: got %v", got)
	}

	line := strings.Repeat("x", 80) + "\n"
	text := strings.Repeat(line, 100)
	chunks := chunkText(text, 1000)
	if len(chunks) < 8 {
		t.Fatalf("chunks: got %d", len(chunks))
	}
	var total int
	for i, ch := range chunks {
		total += len(ch)
		if len(ch) > 1000 {
			t.Errorf("chunk %d over size: %d", i, len(ch))
		}
		if i < len(chunks)-1 && !strings.HasSuffix(ch, "\n") {
			t.Errorf("chunk %d does not end at newline", i)
		}
	}
	if total != len(text) {
		t.Errorf("reassembled length: got %d, want %d", total, len(text))
	}
}

func TestBuildContext(t *testing.T) {
	// WHAT: The digest carries the header markup, image inventory with
	// parent summaries, and chunked CSS.
	pc := testContext(t)
	if !strings.Contains(pc.HeaderHTML, "<header") {
		t.Errorf("header html: %q", pc.HeaderHTML)
	}
	if len(pc.Images) != 1 || pc.Images[0].Src != "/logo.svg" {
		t.Fatalf("images: %+v", pc.Images)
	}
	if !strings.Contains(pc.Images[0].Parent, "<a") {
		t.Errorf("parent: %q", pc.Images[0].Parent)
	}
	if len(pc.CSSChunks) != 1 {
		t.Errorf("css chunks: %v", pc.CSSChunks)
	}
	if !strings.Contains(pc.Head, "<title>") {
		t.Errorf("head: %q", pc.Head)
	}
}
