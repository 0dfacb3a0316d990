// Package rewrite produces an improved version of a prompt, preferring a model
// generated rewrite and falling back to deterministic clause assembly.
package rewrite

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/promptlab-api/internal/analyzer"
	"github.com/noah-isme/promptlab-api/internal/observability"
	"github.com/noah-isme/promptlab-api/pkg/ai"
)

// Source records which strategy produced the rewrite.
type Source string

const (
	SourceModel         Source = "model"
	SourceModelPartial  Source = "model_partial"
	SourceDeterministic Source = "deterministic"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultTimeout   = 30 * time.Second
	maxRewriteTokens = 800
)

// attemptTemperatures holds one entry per model attempt.
var attemptTemperatures = []float64{0.7, 0.4}

const rewriteInstructions = `You improve prompts written for large language models.
Rewrite the user's prompt so it states a clear task, assigns a fitting expert role, gives numbered steps where useful, fixes length, tone and audience, names the output format and lists what to avoid.
Keep the user's intent and language. Reply with the rewritten prompt only, without commentary, quotes or markup.`

// Outcome is the rewrite chosen for a prompt.
type Outcome struct {
	Text     string `json:"text"`
	Source   Source `json:"source"`
	Attempts int    `json:"attempts"`
	Score    int    `json:"score"`
}

// Config tunes a Rewriter.
type Config struct {
	Model   string
	Timeout time.Duration
}

// Rewriter generates prompt rewrites.
type Rewriter struct {
	invoker ai.Invoker
	model   string
	timeout time.Duration
	policy  *bluemonday.Policy
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewRewriter builds a rewriter. A nil invoker always yields deterministic rewrites.
func NewRewriter(invoker ai.Invoker, cfg Config, logger zerolog.Logger) *Rewriter {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Rewriter{
		invoker: invoker,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		policy:  bluemonday.StrictPolicy(),
		logger:  logger.With().Str("component", "prompt_rewriter").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/promptlab-api/internal/rewrite"),
	}
}

// WithModel returns a copy of the rewriter that targets model. Blank keeps the current model.
func (r *Rewriter) WithModel(model string) *Rewriter {
	model = strings.TrimSpace(model)
	if model == "" || model == r.model {
		return r
	}
	clone := *r
	clone.model = model
	return &clone
}

// Rewrite returns an improved prompt. It never fails: when the model is
// unavailable or its candidates are unusable the deterministic assembly is used.
func (r *Rewriter) Rewrite(ctx context.Context, prompt string, result analyzer.Result) Outcome {
	ctx, span := r.tracer.Start(ctx, "rewrite.generate")
	defer span.End()

	outcome := r.generate(ctx, prompt, result)
	span.SetAttributes(
		attribute.String("rewrite.source", string(outcome.Source)),
		attribute.Int("rewrite.attempts", outcome.Attempts),
	)
	observability.RewriteAttempts().WithLabelValues(string(outcome.Source)).Inc()

	return outcome
}

func (r *Rewriter) generate(ctx context.Context, prompt string, result analyzer.Result) Outcome {
	if r.invoker == nil || strings.TrimSpace(prompt) == "" {
		return deterministic(prompt, result, 0)
	}

	var partial *Outcome
	attempts := 0
	for _, temperature := range attemptTemperatures {
		if ctx.Err() != nil {
			break
		}
		attempts++

		candidate, err := r.attempt(ctx, prompt, result, temperature)
		if err != nil {
			r.logger.Warn().Err(err).Int("attempt", attempts).Msg("rewrite attempt failed")
			continue
		}

		scored := analyzer.Analyze(candidate)
		if scored.Score > result.Score && candidate != strings.TrimSpace(prompt) {
			return Outcome{Text: candidate, Source: SourceModel, Attempts: attempts, Score: scored.Score}
		}

		r.logger.Debug().
			Int("attempt", attempts).
			Int("candidate_score", scored.Score).
			Int("original_score", result.Score).
			Msg("rewrite candidate did not pass quality gate")
		partial = &Outcome{Text: candidate, Source: SourceModelPartial, Attempts: attempts, Score: scored.Score}
	}

	if partial != nil {
		partial.Attempts = attempts
		return *partial
	}
	return deterministic(prompt, result, attempts)
}

func (r *Rewriter) attempt(ctx context.Context, prompt string, result analyzer.Result, temperature float64) (string, error) {
	text, err := r.invoker.Invoke(ctx, ai.InvocationRequest{
		Model:              r.model,
		SystemInstructions: rewriteInstructions,
		UserText:           userMessage(prompt, result),
		Temperature:        temperature,
		TopP:               1.0,
		MaxOutputTokens:    maxRewriteTokens,
		Timeout:            r.timeout,
	})
	if err != nil {
		return "", err
	}

	candidate := r.sanitize(text)
	if candidate == "" {
		return "", fmt.Errorf("%w: empty rewrite candidate", ai.ErrInvocation)
	}
	return candidate, nil
}

// sanitize strips markup from model output and unwraps quoting.
func (r *Rewriter) sanitize(text string) string {
	cleaned := html.UnescapeString(r.policy.Sanitize(text))
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, "\"'`")
	return strings.TrimSpace(cleaned)
}

func userMessage(prompt string, result analyzer.Result) string {
	var builder strings.Builder
	builder.WriteString("Prompt to improve:\n")
	builder.WriteString(strings.TrimSpace(prompt))

	if len(result.Issues) > 0 {
		builder.WriteString("\n\nDetected problems:")
		for _, issue := range result.Issues {
			builder.WriteString("\n- ")
			builder.WriteString(issue.Message)
		}
	}
	return builder.String()
}

func deterministic(prompt string, result analyzer.Result, attempts int) Outcome {
	text := strings.TrimSpace(prompt)
	if result.Rewritten != nil {
		text = *result.Rewritten
	}
	return Outcome{
		Text:     text,
		Source:   SourceDeterministic,
		Attempts: attempts,
		Score:    analyzer.Analyze(text).Score,
	}
}
