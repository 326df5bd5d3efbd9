package nlu

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedClassifier throttles an inner classifier. LLM providers enforce
// request-per-minute quotas; waiting here keeps quota errors out of the
// pipeline's error path.
type RateLimitedClassifier struct {
	inner   Classifier
	limiter *rate.Limiter
}

// NewRateLimited wraps a classifier with a token-bucket limiter allowing
// rps requests per second with the given burst.
func NewRateLimited(inner Classifier, rps float64, burst int) *RateLimitedClassifier {
	return &RateLimitedClassifier{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *RateLimitedClassifier) Classify(ctx context.Context, query, language string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("classifier rate limit wait: %w", err)
	}
	return c.inner.Classify(ctx, query, language)
}
