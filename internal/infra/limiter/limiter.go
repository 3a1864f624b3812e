package limiter

import (
	"context"
	"math"

	"golang.org/x/time/rate"
)

// Limiter bounds concurrent generation sessions against the upstream API and
// the rate at which new ones may start.
type Limiter struct {
	semaphore   chan struct{}
	rateLimiter *rate.Limiter
}

func New(maxConcurrent int, ratePerSecond float64) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	burst := int(math.Ceil(ratePerSecond))
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		semaphore:   make(chan struct{}, maxConcurrent),
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := l.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	select {
	case l.semaphore <- struct{}{}:
		return func() { <-l.semaphore }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
