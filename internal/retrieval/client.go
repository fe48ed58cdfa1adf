// Package retrieval talks to the fact-check collaborator: an
// OpenAI-compatible chat-completions API (Perplexity by default) wrapped in
// an asynchronous, rate-limited, cached dispatcher.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/util"
)

// ErrNoAPIKey is returned when a live provider is configured without a key.
var ErrNoAPIKey = errors.New("retrieval API key is required")

// Request is one fact-check question.
type Request struct {
	ClaimID  string
	ClaimKey string
	Claim    string
	Context  string
	Query    string
	Tags     []string
	IsRetry  bool
}

// Checker answers fact-check requests.
type Checker interface {
	Name() string
	Check(ctx context.Context, req Request) (model.FactCheckResult, error)
}

// Client is a Checker backed by an OpenAI-compatible chat-completions API.
type Client struct {
	client *openai.Client
	cfg    model.RetrievalConfig
	now    func() time.Time
}

// NewClient creates a client for cfg.BaseURL using cfg.Model.
func NewClient(cfg model.RetrievalConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = "sonar-pro"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 400
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = util.NewHTTPClient(cfg.Timeout, cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

// Name returns the provider name used in metrics and cache keys.
func (c *Client) Name() string {
	if c.cfg.Provider != "" {
		return c.cfg.Provider
	}
	return "perplexity"
}

// Model returns the configured model.
func (c *Client) Model() string {
	return c.cfg.Model
}

// BaseURL returns the API endpoint, used for rate limiting.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Check asks the provider for a verdict. Transport and parse failures are
// returned as errors; callers decide how to settle them.
func (c *Client) Check(ctx context.Context, req Request) (model.FactCheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req, c.now())},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "fact_check_verdict",
				Schema: json.RawMessage(verdictSchema),
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return model.FactCheckResult{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.FactCheckResult{}, fmt.Errorf("no choices in response")
	}

	res, err := ParseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return model.FactCheckResult{}, err
	}
	res.CheckedAt = c.now()
	return res, nil
}

type rawVerdict struct {
	Verdict    string   `json:"verdict"`
	Confidence *float64 `json:"confidence"`
	Rationale  string   `json:"rationale"`
	Citations  []struct {
		URL         string  `json:"url"`
		Title       string  `json:"title"`
		PublishedAt *string `json:"published_at"`
		Quote       string  `json:"quote"`
	} `json:"citations"`
}

// ParseVerdict decodes the provider's JSON answer. Markdown code fences and
// leading prose are tolerated. Confidence is clamped to [0,1].
func ParseVerdict(content string) (model.FactCheckResult, error) {
	body := extractJSON(content)
	if body == "" {
		return model.FactCheckResult{}, fmt.Errorf("parse verdict: no JSON object in response")
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return model.FactCheckResult{}, fmt.Errorf("parse verdict: %w", err)
	}

	res := model.FactCheckResult{
		Verdict:   mapVerdict(raw.Verdict),
		Rationale: strings.TrimSpace(raw.Rationale),
	}
	conf := 0.0
	if raw.Confidence != nil {
		conf = math.Max(0, math.Min(1, *raw.Confidence))
	}
	res.Confidence = &conf

	for _, c := range raw.Citations {
		if c.URL == "" {
			continue
		}
		cite := model.Citation{URL: c.URL, Title: c.Title, Quote: c.Quote}
		if c.PublishedAt != nil && *c.PublishedAt != "null" {
			cite.PublishedAt = *c.PublishedAt
		}
		res.Citations = append(res.Citations, cite)
	}
	return res, nil
}

func mapVerdict(v string) model.Verdict {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "supported", "verified", "true":
		return model.VerdictVerified
	case "disputed", "refuted", "false":
		return model.VerdictRefuted
	default:
		return model.VerdictUncertain
	}
}

func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return ""
	}
	return content[start : end+1]
}

// errorType classifies a failure for metrics.
func errorType(err error) string {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("api_%d", apiErr.HTTPStatusCode)
	case errors.As(err, &reqErr):
		return fmt.Sprintf("http_%d", reqErr.HTTPStatusCode)
	case strings.Contains(err.Error(), "parse verdict"):
		return "parse"
	default:
		return "transport"
	}
}
