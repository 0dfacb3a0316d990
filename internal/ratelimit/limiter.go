// Package ratelimit enforces fixed-window request quotas per caller identity.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/promptlab-api/internal/observability"
)

const (
	defaultMax    = 10
	defaultWindow = time.Minute
)

// Decision describes the outcome of a quota check.
type Decision struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Config tunes a limiter scope.
type Config struct {
	Scope  string
	Max    int
	Window time.Duration
}

// Limiter checks quotas for one scope, e.g. "benchmark" or "analyze".
type Limiter struct {
	store  Store
	scope  string
	max    int
	window time.Duration
	logger zerolog.Logger
}

// NewLimiter constructs a limiter. A nil store falls back to process memory.
func NewLimiter(store Store, cfg Config, logger zerolog.Logger) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	if cfg.Max <= 0 {
		cfg.Max = defaultMax
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.Scope == "" {
		cfg.Scope = "default"
	}

	return &Limiter{
		store:  store,
		scope:  cfg.Scope,
		max:    cfg.Max,
		window: cfg.Window,
		logger: logger.With().Str("component", "rate_limiter").Str("scope", cfg.Scope).Logger(),
	}
}

// Scope returns the limiter scope label.
func (l *Limiter) Scope() string {
	return l.scope
}

// Check records a hit for identifier. Store failures fail open; only a
// cancelled context is reported as an error.
func (l *Limiter) Check(ctx context.Context, identifier string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	count, resetAt, err := l.store.Increment(ctx, l.scope+":"+identifier, l.window)
	if err != nil {
		l.logger.Warn().Err(err).Str("identifier", identifier).Msg("rate limit store unavailable, allowing request")
		return Decision{
			Allowed:   true,
			Remaining: l.max,
			Limit:     l.max,
			ResetAt:   time.Now().Add(l.window),
		}, nil
	}

	decision := Decision{
		Allowed:   count <= int64(l.max),
		Remaining: max(0, l.max-int(count)),
		Limit:     l.max,
		ResetAt:   resetAt,
	}
	if !decision.Allowed {
		observability.RateLimitRejections().WithLabelValues(l.scope).Inc()
		l.logger.Info().Str("identifier", identifier).Int64("count", count).Msg("rate limit exceeded")
	}

	return decision, nil
}
