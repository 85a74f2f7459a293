package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	perplexityAPIURL       = "https://api.perplexity.ai/chat/completions"
	defaultPerplexityModel = "llama-3-sonar-large-32k-online"
)

// PerplexityConfig configures the research provider.
type PerplexityConfig struct {
	APIKey  string
	Model   string
	Enabled bool
	Timeout time.Duration
	// BaseURL overrides the chat completions endpoint (tests).
	BaseURL string
}

// Perplexity gathers background research for a keyword via the
// Perplexity chat completions API. Research is best-effort: any failure
// yields an empty string.
type Perplexity struct {
	apiKey  string
	model   string
	enabled bool
	url     string
	client  *http.Client
	logger  *slog.Logger
}

// NewPerplexity creates a research provider.
func NewPerplexity(cfg PerplexityConfig, logger *slog.Logger) *Perplexity {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Perplexity{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		enabled: cfg.Enabled,
		url:     cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With("component", "perplexity"),
	}
	if p.model == "" {
		p.model = defaultPerplexityModel
	}
	if p.url == "" {
		p.url = perplexityAPIURL
	}
	return p
}

// Enabled reports whether research calls will be made.
func (p *Perplexity) Enabled() bool {
	return p.enabled && p.apiKey != ""
}

// Research returns a concise summary about keyword, or "" when research is
// disabled or the call fails.
func (p *Perplexity) Research(ctx context.Context, keyword string) string {
	if !p.Enabled() {
		return ""
	}

	payload := perplexityRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: "Be precise and concise."},
			{Role: "user", Content: "Research information about " + keyword},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("research request failed", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("research request rejected", "status", resp.StatusCode)
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ""
	}

	var out perplexityResponse
	if err := json.Unmarshal(data, &out); err != nil || len(out.Choices) == 0 {
		p.logger.Warn("research response unreadable")
		return ""
	}
	return out.Choices[0].Message.Content
}

type perplexityRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type perplexityResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
