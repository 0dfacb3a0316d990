package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "promptlab",
		Subsystem: "ai",
		Name:      "invocation_duration_seconds",
		Help:      "Duration of model provider requests",
	}, []string{"provider", "model"})

	invocationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptlab",
		Subsystem: "ai",
		Name:      "invocation_failures_total",
		Help:      "Number of failed model provider requests",
	}, []string{"provider", "model"})
)

// OpenAIConfig defines configuration options for the OpenAI invoker.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Logger       zerolog.Logger
}

// OpenAIInvoker implements Invoker against the OpenAI chat completion API.
type OpenAIInvoker struct {
	client   *openai.Client
	cfg      OpenAIConfig
	provider string
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewOpenAIInvoker builds a new invoker using the provided configuration.
func NewOpenAIInvoker(cfg OpenAIConfig) (*OpenAIInvoker, error) {
	return newChatInvoker("openai", cfg)
}

func newChatInvoker(provider string, cfg OpenAIConfig) (*OpenAIInvoker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s api key is required", provider)
	}

	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o-mini"
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIInvoker{
		client:   openai.NewClientWithConfig(config),
		cfg:      cfg,
		provider: provider,
		tracer:   otel.Tracer("github.com/noah-isme/promptlab-api/pkg/ai/" + provider),
		logger:   logger.With().Str("component", provider+"_invoker").Logger(),
	}, nil
}

// Invoke sends one chat completion request and returns the first choice's text.
func (i *OpenAIInvoker) Invoke(parent context.Context, req InvocationRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = i.cfg.DefaultModel
	}

	ctx, span := i.tracer.Start(parent, i.provider+".invoke", trace.WithAttributes(
		attribute.String("model", model),
		attribute.Bool("system_instructions", req.SystemInstructions != ""),
		attribute.Float64("temperature", req.Temperature),
		attribute.Int("max_tokens", req.MaxOutputTokens),
	))
	defer span.End()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemInstructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstructions,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserText,
	})

	start := time.Now()
	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   req.MaxOutputTokens,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
		Messages:    messages,
	})
	invocationDuration.WithLabelValues(i.provider, model).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", i.fail(span, model, fmt.Errorf("%w: %s chat completion: %w", ErrInvocation, i.provider, err))
	}

	if len(resp.Choices) == 0 {
		return "", i.fail(span, model, fmt.Errorf("%w: no choices returned from %s", ErrInvocation, i.provider))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	span.SetAttributes(attribute.Int("completion_tokens", resp.Usage.CompletionTokens))
	i.logger.Debug().
		Str("model", model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("model invocation completed")

	return content, nil
}

func (i *OpenAIInvoker) fail(span trace.Span, model string, err error) error {
	invocationFailures.WithLabelValues(i.provider, model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
