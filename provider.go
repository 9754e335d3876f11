package pagedoc

import (
	"context"
	"strings"
)

// GenerateRequest is a normalized request to a language-model provider.
// Provider-specific request/response shapes are adapted internally; callers
// only ever see a single text payload back.
type GenerateRequest struct {
	Model             string
	SystemInstruction string
	UserContent       string
}

// Provider executes a single language-model call.
type Provider interface {
	// Generate sends the request and returns the model's text payload.
	// Credential failures are reported as StatusError with a 401/403
	// status; transient failures keep their status for retry
	// classification.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ProviderRegistry maps model identifiers to providers. Dispatch is by
// identifier prefix (e.g. "gemini-" or "claude-") so call sites never
// branch on model strings themselves.
type ProviderRegistry struct {
	providers map[string]Provider
	fallback  Provider
}

// NewProviderRegistry creates an empty registry with an optional fallback
// provider used when no prefix matches.
func NewProviderRegistry(fallback Provider) *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
		fallback:  fallback,
	}
}

// Register adds a provider for a model identifier prefix.
func (r *ProviderRegistry) Register(prefix string, p Provider) {
	r.providers[prefix] = p
}

// For returns the provider responsible for a model identifier.
// Returns ENOTFOUND when no prefix matches and no fallback is configured.
func (r *ProviderRegistry) For(model string) (Provider, error) {
	for prefix, p := range r.providers {
		if strings.HasPrefix(model, prefix) {
			return p, nil
		}
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, Errorf(ENOTFOUND, "no provider registered for model %q", model)
}
