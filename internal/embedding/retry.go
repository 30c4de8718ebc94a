package embedding

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/brucruz/legal-case-rag/internal/config"
	"github.com/brucruz/legal-case-rag/internal/models"
)

// RetryEmbedder decorates an Embedder with a token-bucket rate limit and
// bounded exponential backoff. Once the attempt cap is exhausted the
// terminal failure surfaces as a ProviderError.
type RetryEmbedder struct {
	inner           Embedder
	limiter         *rate.Limiter
	maxRetries      uint64
	initialInterval time.Duration
}

type RetryOption func(*RetryEmbedder)

// WithInitialInterval overrides the first backoff interval.
func WithInitialInterval(d time.Duration) RetryOption {
	return func(e *RetryEmbedder) { e.initialInterval = d }
}

// NewRetryEmbedder wraps inner with the configured retry and rate-limit
// policy.
func NewRetryEmbedder(inner Embedder, llmConfig *config.LLMConfig, opts ...RetryOption) *RetryEmbedder {
	e := &RetryEmbedder{
		inner:           inner,
		limiter:         rate.NewLimiter(rate.Limit(llmConfig.RequestsPerSecond), llmConfig.Burst),
		maxRetries:      llmConfig.MaxRetries,
		initialInterval: backoff.DefaultInitialInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmbedQuery generates an embedding for text, retrying transient provider
// failures. A zero vector is never substituted for a failed call.
func (e *RetryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	attempt := 0
	operation := func() error {
		if err := e.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		v, err := e.inner.EmbedQuery(ctx, text)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("embedding call failed")
			return err
		}
		vector = v
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.initialInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, e.maxRetries), ctx)); err != nil {
		// caller cancellation is not a provider failure
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &models.ProviderError{Err: err}
	}
	return vector, nil
}
