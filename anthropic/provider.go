// Package anthropic provides a pagedoc.Provider backed by the Anthropic
// API via github.com/aktagon/llmkit.
package anthropic

import (
	"context"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
	"github.com/fwojciec/pagedoc"
)

// DefaultMaxTokens bounds response length. Translation batches are already
// size-bounded on the request side, so this is generous headroom.
const DefaultMaxTokens = 8192

// Ensure Provider implements pagedoc.Provider at compile time.
var _ pagedoc.Provider = (*Provider)(nil)

// Provider executes language-model calls against the Anthropic API.
type Provider struct {
	apiKey      string
	maxTokens   int
	temperature float64
}

// Option configures a Provider.
type Option func(*Provider)

// WithMaxTokens sets the response token budget.
func WithMaxTokens(n int) Option {
	return func(p *Provider) {
		p.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(p *Provider) {
		p.temperature = t
	}
}

// NewProvider creates a new Provider.
func NewProvider(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:      apiKey,
		maxTokens:   DefaultMaxTokens,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate sends the request and returns the model's text payload.
// llmkit does not take a context; cancellation is checked before the call
// and a canceled context after it discards the result.
func (p *Provider) Generate(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
	if p.apiKey == "" {
		return "", &pagedoc.StatusError{Status: 401, Message: "missing Anthropic API key"}
	}
	if req.Model == "" {
		return "", pagedoc.Errorf(pagedoc.EINVALID, "model identifier required")
	}
	if err := ctx.Err(); err != nil {
		return "", pagedoc.Errorf(pagedoc.ECANCELED, "canceled before provider call")
	}

	settings := types.RequestSettings{
		Model:       req.Model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	resp, err := anthropic.PromptWithSettings(req.SystemInstruction, req.UserContent, "", p.apiKey, settings)
	if err != nil {
		return "", normalizeError(err)
	}
	if len(resp.Content) == 0 {
		return "", pagedoc.Errorf(pagedoc.EINTERNAL, "empty response from Anthropic")
	}
	if err := ctx.Err(); err != nil {
		return "", pagedoc.Errorf(pagedoc.ECANCELED, "canceled during provider call")
	}

	return resp.Content[0].Text, nil
}

// normalizeError maps llmkit failures onto StatusError. llmkit surfaces
// HTTP failures as formatted messages, so classification is by status
// fragment.
func normalizeError(err error) error {
	msg := err.Error()
	for _, m := range []struct {
		fragment string
		status   int
	}{
		{"401", 401},
		{"authentication", 401},
		{"invalid x-api-key", 401},
		{"403", 403},
		{"429", 429},
		{"rate limit", 429},
		{"overloaded", 503},
		{"529", 503},
		{"500", 500},
	} {
		if strings.Contains(strings.ToLower(msg), m.fragment) {
			return &pagedoc.StatusError{Status: m.status, Message: msg}
		}
	}
	return err
}
