package hint

import (
	"encoding/json"
	"regexp"
	"strings"
)

var bracePattern = regexp.MustCompile(`\{[^{}]*\}`)

// decodeLoose parses model output into dst, tolerating markdown code
// fences and surrounding prose. Returns false when no JSON object can be
// recovered.
func decodeLoose(text string, dst any) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	if strings.HasPrefix(text, "```") {
		parts := strings.Split(text, "```")
		if len(parts) >= 2 {
			text = parts[1]
			text = strings.TrimPrefix(text, "json")
		}
		text = strings.TrimSpace(text)
	}

	if json.Unmarshal([]byte(text), dst) == nil {
		return true
	}

	// Last resort: pull the first flat JSON object out of the prose.
	if m := bracePattern.FindString(text); m != "" {
		return json.Unmarshal([]byte(m), dst) == nil
	}
	return false
}

// chunkText splits text into pieces of roughly chunkSize characters,
// preferring to break at a newline past the halfway mark so CSS rules stay
// intact.
func chunkText(text string, chunkSize int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	pos := 0
	for pos < len(text) {
		end := pos + chunkSize
		if end > len(text) {
			end = len(text)
		} else {
			if nl := strings.LastIndex(text[pos:end], "\n"); nl >= 0 && pos+nl > pos+chunkSize/2 {
				end = pos + nl + 1
			}
		}
		chunks = append(chunks, text[pos:end])
		pos = end
	}
	return chunks
}
