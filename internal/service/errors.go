package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/promptlab-api/internal/ratelimit"
)

var (
	// ErrValidation indicates a request that passed struct validation but is still unusable.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited indicates the caller exhausted its quota for the scope.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrInvokerUnavailable indicates no model provider is configured.
	ErrInvokerUnavailable = errors.New("model invoker unavailable")
	// ErrBenchmarkNotFound indicates the benchmark reference does not exist.
	ErrBenchmarkNotFound = errors.New("benchmark not found")
)

// RateLimitError carries the quota decision that rejected a request.
type RateLimitError struct {
	Scope    string
	Decision ratelimit.Decision
}

func (e *RateLimitError) Error() string {
	retry := time.Until(e.Decision.ResetAt).Round(time.Second)
	if e.Scope == "" {
		return fmt.Sprintf("%s, retry in %s", ErrRateLimited, retry)
	}
	return fmt.Sprintf("%s for %s, retry in %s", ErrRateLimited, e.Scope, retry)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// checkQuota consults the limiter when one is configured. A nil limiter allows everything.
func checkQuota(ctx context.Context, limiter *ratelimit.Limiter, identifier string) (ratelimit.Decision, error) {
	if limiter == nil {
		return ratelimit.Decision{Allowed: true}, nil
	}

	decision, err := limiter.Check(ctx, identifier)
	if err != nil {
		return decision, err
	}
	if !decision.Allowed {
		return decision, &RateLimitError{Scope: limiter.Scope(), Decision: decision}
	}
	return decision, nil
}
