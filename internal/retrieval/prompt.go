package retrieval

import (
	"fmt"
	"strings"
	"time"
)

const systemPrompt = "You are a meticulous, time-aware fact-checker. Search the live web. Use only what you find now. Return STRICT JSON only."

// verdictSchema constrains the provider's answer. Providers without schema
// support still get the same shape spelled out in the user prompt.
const verdictSchema = `{
  "type": "object",
  "properties": {
    "verdict": {"type": "string", "enum": ["supported", "disputed", "uncertain"]},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "rationale": {"type": "string"},
    "citations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "url": {"type": "string"},
          "title": {"type": "string"},
          "published_at": {"type": "string"},
          "quote": {"type": "string"}
        },
        "required": ["url", "title", "quote"]
      }
    }
  },
  "required": ["verdict", "confidence", "rationale", "citations"]
}`

// BuildPrompt renders the user message for one fact-check request.
func BuildPrompt(req Request, now time.Time) string {
	claim := strings.TrimSpace(req.Claim)
	if claim == "" {
		claim = req.Query
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CLAIM:\n%q\n\n", claim)
	if req.Context != "" {
		fmt.Fprintf(&b, "SURROUNDING CONTEXT:\n%s\n\n", req.Context)
	}
	if req.Query != "" && req.Query != claim {
		fmt.Fprintf(&b, "SEARCH QUERY: %s\n", req.Query)
	}
	if len(req.Tags) > 0 {
		fmt.Fprintf(&b, "SEARCH HINTS: %s\n", strings.Join(req.Tags, " | "))
	}
	b.WriteString("\nCONTEXT & RULES:\n")
	fmt.Fprintf(&b, "- Treat words like \"now\", \"today\", \"currently\" as referring to: %s.\n", now.UTC().Format(time.RFC3339))
	b.WriteString("- Prefer official sources (.gov, .edu, official orgs) and the most recent data.\n")
	b.WriteString("- If sources conflict or are insufficient, set verdict to \"uncertain\".\n")
	b.WriteString("- Each citation must include an exact quote copied from the page text.\n")
	b.WriteString("- Keep \"rationale\" under 50 words.\n")
	b.WriteString(`
RETURN JSON EXACTLY:
{
  "verdict": "supported | disputed | uncertain",
  "confidence": 0.0,
  "rationale": "string",
  "citations": [
    { "url": "string", "title": "string", "published_at": "YYYY-MM-DD|null", "quote": "string" }
  ]
}`)
	return b.String()
}
