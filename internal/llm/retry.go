package llm

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// RetryPolicy bounds the backoff used by GenerateWithRetry.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy retries upstream failures twice, starting at one second.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 2,
	BaseDelay:  1 * time.Second,
	MaxDelay:   32 * time.Second,
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(2, float64(attempt-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// GenerateWithRetry calls g.Generate and retries with exponential backoff, but
// only for UpstreamError. RateLimited, QuotaExhausted and ConfigurationError are
// returned on the first occurrence so the caller can surface them.
func GenerateWithRetry(ctx context.Context, g Generator, req models.GenerationRequest, policy RetryPolicy, log logger.Logger) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.delay(attempt)
			log.Info("Retry attempt %d/%d after %v delay", attempt, policy.MaxRetries, delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", interrupted(ctx.Err())
			}
		}

		reply, err := g.Generate(ctx, req)
		if err == nil {
			if attempt > 0 {
				log.Info("Retry succeeded on attempt %d", attempt)
			}
			return reply, nil
		}

		lastErr = err

		var genErr *GenerationError
		if !errors.As(err, &genErr) || !genErr.Retryable() {
			return "", err
		}

		log.Warn("Upstream error on attempt %d/%d: %v", attempt+1, policy.MaxRetries+1, err)
	}

	return "", lastErr
}

// interrupted reports a context that ended during backoff as an UpstreamError,
// the same kind Generate uses for a timed out request.
func interrupted(err error) *GenerationError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(UpstreamError, 0, "request timed out", err)
	}
	return newError(UpstreamError, 0, "request cancelled", err)
}
