// Package gemini provides a pagedoc.Provider backed by the Google Gemini
// API via google.golang.org/genai.
package gemini

import (
	"context"
	"errors"

	"github.com/fwojciec/pagedoc"
	"google.golang.org/genai"
)

// Ensure Provider implements pagedoc.Provider at compile time.
var _ pagedoc.Provider = (*Provider)(nil)

// Provider executes language-model calls against the Gemini API.
type Provider struct {
	client      *genai.Client
	temperature float32
}

// Option configures a Provider.
type Option func(*Provider)

// WithTemperature sets the sampling temperature. Defaults to 0.2: the
// pipeline wants faithful translation and extraction, not creativity.
func WithTemperature(t float32) Option {
	return func(p *Provider) {
		p.temperature = t
	}
}

// NewProvider creates a new Provider.
func NewProvider(client *genai.Client, opts ...Option) *Provider {
	p := &Provider{
		client:      client,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate sends the request and returns the model's text payload.
func (p *Provider) Generate(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
	if req.Model == "" {
		return "", pagedoc.Errorf(pagedoc.EINVALID, "model identifier required")
	}
	if req.UserContent == "" {
		return "", pagedoc.Errorf(pagedoc.EINVALID, "user content required")
	}

	temp := p.temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, req.Model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: req.UserContent}},
		}},
		config,
	)
	if err != nil {
		return "", normalizeError(err)
	}
	if result == nil {
		return "", pagedoc.Errorf(pagedoc.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// normalizeError maps genai API errors onto StatusError so the retry
// engine can classify them by HTTP status.
func normalizeError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &pagedoc.StatusError{
			Status:  apiErr.Code,
			Message: apiErr.Message,
		}
	}
	return err
}
