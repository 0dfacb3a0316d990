// Package benchmark runs an original and an enhanced prompt side by side and
// judges whether the enhancement produced a measurable improvement.
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/promptlab-api/internal/adapter"
	"github.com/noah-isme/promptlab-api/pkg/ai"
)

// Path distinguishes the two benchmark executions.
type Path string

const (
	PathOriginal Path = "original"
	PathEnhanced Path = "enhanced"
)

// SentinelText replaces the output of a path whose invocation failed.
const SentinelText = "[invocation failed]"

// The original path simulates a naive call and ignores per-model tuning.
const (
	originalTemperature = 1.0
	originalTopP        = 1.0
	originalMaxTokens   = 600
)

// DefaultTimeout bounds each path when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// AppliedProfile records the sampling parameters a path was invoked with.
type AppliedProfile struct {
	SystemInstructions *string `json:"systemInstructions"`
	Temperature        float64 `json:"temperature"`
	TopP               float64 `json:"topP"`
	MaxOutputTokens    int     `json:"maxOutputTokens"`
}

// Outcome is the result of one path. It is never mutated after creation.
type Outcome struct {
	Text     string         `json:"text"`
	Path     Path           `json:"pathKind"`
	Profile  AppliedProfile `json:"appliedProfile"`
	Metrics  Metrics        `json:"metrics"`
	Failed   bool           `json:"failed"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"-"`
}

// Pair holds both outcomes of one run.
type Pair struct {
	Original Outcome
	Enhanced Outcome
}

// Observer receives per-path results, typically for metrics.
type Observer func(path Path, failed bool, duration time.Duration)

// Executor runs the original and enhanced paths concurrently.
type Executor struct {
	invoker  ai.Invoker
	registry *adapter.Registry
	timeout  time.Duration
	observe  Observer
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// Option customises an Executor.
type Option func(*Executor)

// WithTimeout bounds each path independently.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithObserver registers a callback invoked once per finished path.
func WithObserver(observer Observer) Option {
	return func(e *Executor) {
		e.observe = observer
	}
}

// NewExecutor builds an executor over the invoker and registry.
func NewExecutor(invoker ai.Invoker, registry *adapter.Registry, logger zerolog.Logger, opts ...Option) *Executor {
	if registry == nil {
		registry = adapter.DefaultRegistry()
	}
	executor := &Executor{
		invoker:  invoker,
		registry: registry,
		timeout:  DefaultTimeout,
		logger:   logger.With().Str("component", "benchmark_executor").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/promptlab-api/internal/benchmark"),
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Available reports whether a model invoker is configured.
func (e *Executor) Available() bool {
	return e != nil && e.invoker != nil
}

// Run executes both paths in parallel and always returns two outcomes. A failed,
// timed out or panicking path yields a sentinel outcome and never affects the other.
func (e *Executor) Run(ctx context.Context, originalText, enhancedText, modelID string) Pair {
	ctx, span := e.tracer.Start(ctx, "benchmark.run", trace.WithAttributes(
		attribute.String("model", modelID),
	))
	defer span.End()

	profile := e.registry.Resolve(modelID)
	originalReq := ai.InvocationRequest{
		Model:           modelID,
		UserText:        originalText,
		Temperature:     originalTemperature,
		TopP:            originalTopP,
		MaxOutputTokens: originalMaxTokens,
		Timeout:         e.timeout,
	}
	enhancedReq := ai.InvocationRequest{
		Model:              modelID,
		SystemInstructions: profile.SystemInstructions,
		UserText:           enhancedText,
		Temperature:        profile.Temperature,
		TopP:               profile.TopP,
		MaxOutputTokens:    profile.MaxOutputTokens,
		Timeout:            e.timeout,
	}

	var pair Pair
	var group errgroup.Group
	group.Go(func() error {
		pair.Original = e.execute(ctx, PathOriginal, originalReq)
		return nil
	})
	group.Go(func() error {
		pair.Enhanced = e.execute(ctx, PathEnhanced, enhancedReq)
		return nil
	})
	_ = group.Wait()

	span.SetAttributes(
		attribute.Bool("original.failed", pair.Original.Failed),
		attribute.Bool("enhanced.failed", pair.Enhanced.Failed),
	)
	return pair
}

func (e *Executor) execute(parent context.Context, path Path, req ai.InvocationRequest) (outcome Outcome) {
	ctx, span := e.tracer.Start(parent, "benchmark.path", trace.WithAttributes(
		attribute.String("path", string(path)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	applied := AppliedProfile{
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.SystemInstructions != "" {
		instructions := req.SystemInstructions
		applied.SystemInstructions = &instructions
	}

	start := time.Now()
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = e.failure(span, path, applied, fmt.Errorf("%w: panic: %v", ai.ErrInvocation, recovered), time.Since(start))
		}
		if e.observe != nil {
			e.observe(path, outcome.Failed, outcome.Duration)
		}
	}()

	if e.invoker == nil {
		return e.failure(span, path, applied, fmt.Errorf("%w: no model invoker configured", ai.ErrInvocation), time.Since(start))
	}

	text, err := e.invoke(ctx, req)
	if err != nil {
		return e.failure(span, path, applied, err, time.Since(start))
	}

	return Outcome{
		Text:     text,
		Path:     path,
		Profile:  applied,
		Metrics:  Measure(text),
		Duration: time.Since(start),
	}
}

// invoke honours the deadline even when the invoker ignores its context.
func (e *Executor) invoke(ctx context.Context, req ai.InvocationRequest) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", ai.ErrInvocation, recovered)}
			}
		}()
		text, err := e.invoker.Invoke(ctx, req)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ai.ErrInvocation, ctx.Err())
	}
}

func (e *Executor) failure(span trace.Span, path Path, applied AppliedProfile, err error, duration time.Duration) Outcome {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.logger.Warn().Err(err).Str("path", string(path)).Dur("duration", duration).Msg("benchmark path failed")

	return Outcome{
		Text:     SentinelText,
		Path:     path,
		Profile:  applied,
		Metrics:  Metrics{},
		Failed:   true,
		Error:    err.Error(),
		Duration: duration,
	}
}
