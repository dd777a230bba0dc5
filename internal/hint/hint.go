// Package hint asks an OpenAI-compatible chat-completion service for a
// best-guess reading of a page's design system. The service is treated as
// an unreliable oracle: every call has a timeout, every response is parsed
// defensively, and any failure degrades to "unavailable" rather than an
// error the caller must handle. Reconciliation always prefers programmatic
// signals over anything returned here.
package hint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Guess is the oracle's reading of one page.
type Guess struct {
	Success         bool     `json:"success"`
	LogoURL         string   `json:"logo_url,omitempty"`
	LogoKind        string   `json:"logo_type,omitempty"`
	LogoConfidence  float64  `json:"logo_confidence"`
	PrimaryColor    string   `json:"primary_color,omitempty"`
	SecondaryColor  string   `json:"secondary_color,omitempty"`
	BackgroundColor string   `json:"background_color,omitempty"`
	AccentColor     string   `json:"accent_color,omitempty"`
	HeadingFont     string   `json:"heading_font,omitempty"`
	BodyFont        string   `json:"body_font,omitempty"`
	LinkedFonts     []string `json:"google_fonts"`
}

// Vibe is the oracle's brand-personality reading.
type Vibe struct {
	Tone     string `json:"tone"`
	Audience string `json:"audience"`
	Vibe     string `json:"vibe"`
	Analysis string `json:"analysis"`
	Success  bool   `json:"success"`
}

// ErrNoAPIKey is returned when the client has no credentials; callers treat
// it as "hint unavailable", not a failure.
var ErrNoAPIKey = errors.New("hint: no API key configured")

// ErrInsufficientHTML is returned when the page is too small to be worth a
// round trip.
var ErrInsufficientHTML = errors.New("hint: insufficient HTML")

const minHTMLLength = 200

// Config configures a Client.
type Config struct {
	// Endpoint is the API base URL; "/v1/chat/completions" is appended.
	Endpoint string
	Model    string
	APIKey   string
	// Referer and Title are forwarded as attribution headers; OpenRouter
	// uses them for request accounting.
	Referer string
	Title   string
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "https://openrouter.ai/api"
	}
	if c.Model == "" {
		c.Model = "openai/gpt-4o-mini"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client talks to the completion service. Safe for concurrent use.
type Client struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

// New builds a Client.
func New(cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    cfg.Logger,
	}
}

// Enabled reports whether the client has credentials to make calls at all.
func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

// Guess runs the three-phase extraction over the prepared page context:
// logo from header structure, colors from up to two CSS chunks, typography
// from the first CSS chunk plus the document head. Each phase is
// best-effort; a failed phase leaves its fields empty.
func (c *Client) Guess(ctx context.Context, pc PageContext) (*Guess, error) {
	if !c.Enabled() {
		return nil, ErrNoAPIKey
	}
	if len(pc.HTML) < minHTMLLength {
		return nil, ErrInsufficientHTML
	}

	g := &Guess{Success: true, LinkedFonts: []string{}}

	if text, err := c.complete(ctx, logoPrompt(pc), 0.2, 400); err != nil {
		c.log.Warn("hint logo phase failed", "error", err)
	} else {
		var lr struct {
			LogoURL    string  `json:"logo_url"`
			LogoType   string  `json:"logo_type"`
			Confidence float64 `json:"confidence"`
		}
		if decodeLoose(text, &lr) {
			g.LogoURL = lr.LogoURL
			g.LogoKind = lr.LogoType
			g.LogoConfidence = lr.Confidence
		}
	}

	chunks := pc.CSSChunks
	if len(chunks) > 2 {
		chunks = chunks[:2]
	}
	for i, chunk := range chunks {
		text, err := c.complete(ctx, colorsPrompt(chunk, i+1, len(chunks)), 0.2, 200)
		if err != nil {
			c.log.Warn("hint colors phase failed", "chunk", i+1, "error", err)
			continue
		}
		var cr struct {
			Primary    string `json:"primary_color"`
			Secondary  string `json:"secondary_color"`
			Background string `json:"background_color"`
			Accent     string `json:"accent_color"`
		}
		if !decodeLoose(text, &cr) {
			continue
		}
		// First non-null wins across chunks.
		if g.PrimaryColor == "" {
			g.PrimaryColor = cr.Primary
		}
		if g.SecondaryColor == "" {
			g.SecondaryColor = cr.Secondary
		}
		if g.BackgroundColor == "" {
			g.BackgroundColor = cr.Background
		}
		if g.AccentColor == "" {
			g.AccentColor = cr.Accent
		}
	}

	if text, err := c.complete(ctx, typographyPrompt(pc), 0.2, 300); err != nil {
		c.log.Warn("hint typography phase failed", "error", err)
	} else {
		var tr struct {
			Heading string   `json:"heading_font"`
			Body    string   `json:"body_font"`
			Linked  []string `json:"google_fonts"`
		}
		if decodeLoose(text, &tr) {
			g.HeadingFont = tr.Heading
			g.BodyFont = tr.Body
			if tr.Linked != nil {
				g.LinkedFonts = tr.Linked
			}
		}
	}

	c.log.Info("hint extraction complete",
		"logo_url", g.LogoURL, "primary", g.PrimaryColor, "heading_font", g.HeadingFont)
	return g, nil
}

// Tone analyzes brand personality from head metadata and hero text. It
// never fails: missing credentials, timeouts, and unparseable responses
// all collapse to a generic default.
func (c *Client) Tone(ctx context.Context, title, description, heroText string) Vibe {
	content := fmt.Sprintf("Title: %s\nDescription: %s\nContent: %s", title, description, heroText)
	if len(strings.TrimSpace(content)) < 20 {
		return Vibe{
			Tone: "Unknown", Audience: "Unknown", Vibe: "Unknown",
			Analysis: "Insufficient content to analyze",
		}
	}
	if !c.Enabled() {
		return fallbackVibe("No API key available")
	}

	text, err := c.complete(ctx, tonePrompt(content), 0.3, 300)
	if err != nil {
		c.log.Warn("tone analysis failed", "error", err)
		return fallbackVibe(truncate(err.Error(), 100))
	}

	var v Vibe
	if !decodeLoose(text, &v) {
		return fallbackVibe("Could not parse response")
	}
	v.Success = true
	c.log.Info("vibe analysis", "tone", v.Tone, "vibe", v.Vibe)
	return v
}

func fallbackVibe(analysis string) Vibe {
	return Vibe{
		Tone: "Professional", Audience: "General", Vibe: "Modern",
		Analysis: analysis,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete makes one chat-completion round trip and returns the trimmed
// message text.
func (c *Client) complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from %s", url)
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
