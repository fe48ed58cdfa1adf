package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/claimify/internal/model"
)

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-123",
		Object: "chat.completion",
		Model:  "sonar-pro",
		Choices: []openai.ChatCompletionChoice{
			{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	cfg := model.DefaultConfig().Retrieval
	cfg.Provider = "perplexity"
	cfg.APIKey = "test-key"
	cfg.BaseURL = url
	cfg.Timeout = 5 * time.Second
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	c.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(model.RetrievalConfig{})
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Expected ErrNoAPIKey, got %v", err)
	}
}

func TestClient_Check_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Model != "sonar-pro" {
			t.Errorf("Expected model sonar-pro, got %s", req.Model)
		}
		if req.MaxTokens != 400 {
			t.Errorf("Expected max tokens 400, got %d", req.MaxTokens)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "2025-03-14T12:00:00Z") {
			t.Errorf("Expected user prompt anchored to now, got %+v", req.Messages)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != string(openai.ChatCompletionResponseFormatTypeJSONSchema) {
			t.Errorf("Expected JSON schema response format, got %+v", req.ResponseFormat)
		}

		_ = json.NewEncoder(w).Encode(completion(`{"verdict":"disputed","confidence":1.4,"rationale":"ABS reports 2.4%.","citations":[{"url":"https://abs.gov.au","title":"CPI","published_at":"2025-01-29","quote":"2.4%"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	res, err := c.Check(context.Background(), Request{Claim: "Australia's inflation is 8% right now.", Query: "australia be 8% right now 8%"})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Verdict != model.VerdictRefuted {
		t.Errorf("Expected REFUTED, got %s", res.Verdict)
	}
	if res.Confidence == nil || *res.Confidence != 1 {
		t.Errorf("Expected confidence clamped to 1, got %v", res.Confidence)
	}
	if len(res.Citations) != 1 || res.Citations[0].PublishedAt != "2025-01-29" {
		t.Errorf("Unexpected citations: %+v", res.Citations)
	}
	if res.CheckedAt.IsZero() {
		t.Error("Expected checkedAt set")
	}
}

func TestClient_Check_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Check(context.Background(), Request{Claim: "x", Query: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if got := errorType(err); got != "api_401" {
		t.Errorf("Expected api_401, got %s", got)
	}
}

func TestClient_Check_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	if _, err := c.Check(context.Background(), Request{Claim: "x"}); err == nil {
		t.Error("Expected error for empty choices")
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		verdict model.Verdict
		conf    float64
		cites   int
		wantErr bool
	}{
		{"supported", `{"verdict":"supported","confidence":0.9,"rationale":"ok","citations":[]}`, model.VerdictVerified, 0.9, 0, false},
		{"fenced", "```json\n{\"verdict\":\"uncertain\",\"confidence\":0.3,\"rationale\":\"\",\"citations\":[]}\n```", model.VerdictUncertain, 0.3, 0, false},
		{"negative confidence", `{"verdict":"disputed","confidence":-1,"rationale":"","citations":[]}`, model.VerdictRefuted, 0, 0, false},
		{"missing confidence", `{"verdict":"supported","rationale":"","citations":[]}`, model.VerdictVerified, 0, 0, false},
		{"unknown verdict", `{"verdict":"maybe","confidence":0.5}`, model.VerdictUncertain, 0.5, 0, false},
		{"null published and empty url", `{"verdict":"supported","confidence":0.5,"citations":[{"url":"","title":"x"},{"url":"https://a.gov","published_at":"null"}]}`, model.VerdictVerified, 0.5, 1, false},
		{"prose only", "I could not find anything.", "", 0, 0, true},
		{"broken json", `{"verdict":`, "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseVerdict(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if res.Verdict != tt.verdict {
				t.Errorf("Expected %s, got %s", tt.verdict, res.Verdict)
			}
			if *res.Confidence != tt.conf {
				t.Errorf("Expected confidence %v, got %v", tt.conf, *res.Confidence)
			}
			if len(res.Citations) != tt.cites {
				t.Errorf("Expected %d citations, got %d", tt.cites, len(res.Citations))
			}
			for _, c := range res.Citations {
				if c.PublishedAt == "null" {
					t.Error("Expected null published_at dropped")
				}
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	p := BuildPrompt(Request{
		Claim:   "Inflation is 8% right now.",
		Context: "Australia's economy is struggling.",
		Query:   "australia be 8% right now 8%",
		Tags:    []string{"subject:australia", "quantity"},
	}, now)

	for _, want := range []string{
		`"Inflation is 8% right now."`,
		"SURROUNDING CONTEXT:\nAustralia's economy is struggling.",
		"SEARCH QUERY: australia be 8% right now 8%",
		"SEARCH HINTS: subject:australia | quantity",
		"2025-03-14T12:00:00Z",
		"Prefer official sources",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}

	bare := BuildPrompt(Request{Query: "airport open 2024"}, now)
	if strings.Contains(bare, "SEARCH QUERY") {
		t.Error("Expected query not repeated when it is the claim")
	}
	if !strings.Contains(bare, `"airport open 2024"`) {
		t.Error("Expected query used as the claim text")
	}
}
