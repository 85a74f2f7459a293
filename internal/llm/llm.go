// Package llm provides an abstraction layer for language model providers.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrNoProvider is returned when no LLM provider is configured or available.
	ErrNoProvider = errors.New("no LLM provider available")

	// ErrUpstream wraps transport and non-2xx failures from a provider.
	ErrUpstream = errors.New("upstream LLM request failed")

	// ErrInvalidResponse is returned when model output cannot be parsed
	// into the expected structure.
	ErrInvalidResponse = errors.New("Invalid response format")
)

// Provider defines the interface for language model backends.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Available checks if this provider is ready to use.
	Available() bool

	// Complete sends a prompt and returns the response.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a prompt with a system message.
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// Client selects the first available provider.
type Client struct {
	providers []Provider
}

// NewClient creates a new LLM client with the given providers.
// Providers are tried in order of preference.
func NewClient(providers ...Provider) *Client {
	return &Client{providers: providers}
}

// Provider returns the currently active provider, or nil if none available.
func (c *Client) Provider() Provider {
	for _, p := range c.providers {
		if p.Available() {
			return p
		}
	}
	return nil
}

// Available returns true if any provider is available.
func (c *Client) Available() bool {
	return c.Provider() != nil
}

// Complete sends a prompt to the best available provider.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	p := c.Provider()
	if p == nil {
		return "", ErrNoProvider
	}
	return p.Complete(ctx, prompt)
}

// CompleteWithSystem sends a prompt with system message to the best available provider.
func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	p := c.Provider()
	if p == nil {
		return "", ErrNoProvider
	}
	return p.CompleteWithSystem(ctx, system, prompt)
}

// ProviderInfo describes a configured provider.
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// ListProviders returns info about all configured providers.
func (c *Client) ListProviders() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(c.providers))
	for _, p := range c.providers {
		infos = append(infos, ProviderInfo{Name: p.Name(), Available: p.Available()})
	}
	return infos
}
