// Package slog provides logging decorators for pagedoc services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagedoc"
)

// Ensure LoggingProvider implements pagedoc.Provider.
var _ pagedoc.Provider = (*LoggingProvider)(nil)

// LoggingProvider wraps a Provider with timing and outcome logging for
// every model call.
type LoggingProvider struct {
	next   pagedoc.Provider
	logger *slog.Logger
}

// NewLoggingProvider creates a new LoggingProvider.
func NewLoggingProvider(next pagedoc.Provider, logger *slog.Logger) *LoggingProvider {
	return &LoggingProvider{next: next, logger: logger}
}

// Generate delegates to the wrapped provider and logs the call.
func (p *LoggingProvider) Generate(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
	begin := time.Now()
	out, err := p.next.Generate(ctx, req)
	if err != nil {
		p.logger.Error("model call failed",
			"model", req.Model,
			"code", pagedoc.ErrorCode(err),
			"duration", time.Since(begin),
			"error", err,
		)
		return "", err
	}
	p.logger.Debug("model call",
		"model", req.Model,
		"input_chars", len(req.UserContent),
		"output_chars", len(out),
		"duration", time.Since(begin),
	)
	return out, nil
}
