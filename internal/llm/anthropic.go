package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
	defaultModel        = "claude-sonnet-4-20250514"
	defaultMaxTokens    = 4000

	// maxResponseBytes bounds how much of a provider response is read.
	maxResponseBytes = 4 << 20
)

// AnthropicConfig configures the Anthropic messages API client.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// BaseURL overrides the messages endpoint (tests).
	BaseURL string
}

// Anthropic implements Provider using the Anthropic messages API.
type Anthropic struct {
	apiKey    string
	model     string
	maxTokens int
	url       string
	client    *http.Client
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	a := &Anthropic{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		url:       cfg.BaseURL,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
	if a.model == "" {
		a.model = defaultModel
	}
	if a.maxTokens <= 0 {
		a.maxTokens = defaultMaxTokens
	}
	if a.url == "" {
		a.url = anthropicAPIURL
	}
	return a
}

// Name returns the provider name.
func (a *Anthropic) Name() string {
	return "anthropic"
}

// Available checks if an API key is configured.
func (a *Anthropic) Available() bool {
	return a.apiKey != ""
}

// Complete sends a prompt to the Anthropic API.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	return a.complete(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with system message to the Anthropic API.
func (a *Anthropic) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	return a.complete(ctx, system, prompt)
}

func (a *Anthropic) complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    system,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%w: API error (%d): %s", ErrUpstream, resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("%w: API error (%d)", ErrUpstream, resp.StatusCode)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", ErrUpstream, err)
	}

	// Text blocks are concatenated in order
	var result string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			result += block.Text
		}
	}

	return result, nil
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
