package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/spigell/resume-analyzer/internal/utils"
	"go.uber.org/zap"
)

// RetryConfig controls WithRetry. Attempts below 2 disable retries.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
	// Retryable reports whether a failed attempt may be repeated.
	Retryable func(error) bool
}

type retryingGateway struct {
	next   Gateway
	cfg    RetryConfig
	logger *zap.Logger
}

// WithRetry wraps the gateway with linear backoff. It is meant for the
// service layer; the analysis pipeline itself never retries.
func WithRetry(next Gateway, cfg RetryConfig, logger *zap.Logger) Gateway {
	if cfg.Attempts < 2 {
		return next
	}
	if cfg.Retryable == nil {
		cfg.Retryable = func(error) bool { return true }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &retryingGateway{next: next, cfg: cfg, logger: logger}
}

func (g *retryingGateway) Submit(ctx context.Context, req Request) (Response, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.Attempts; attempt++ {
		resp, err := g.next.Submit(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == g.cfg.Attempts || ctx.Err() != nil || !g.cfg.Retryable(err) {
			break
		}

		delay := g.cfg.Delay * time.Duration(attempt)
		g.logger.Warn("retrying inference request",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.cfg.Attempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := utils.WaitFor(ctx, delay); err != nil {
			return Response{}, fmt.Errorf("%w: waiting for retry: %w", ErrInference, err)
		}
	}

	return Response{}, lastErr
}
