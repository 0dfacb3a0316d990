package ai

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// AnthropicBaseURL is Anthropic's OpenAI-compatible endpoint.
const AnthropicBaseURL = "https://api.anthropic.com/v1"

// AnthropicConfig holds anthropic integration configuration.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Logger       zerolog.Logger
}

// NewAnthropicInvoker returns a chat invoker that talks to Anthropic through its
// OpenAI-compatible API.
func NewAnthropicInvoker(cfg AnthropicConfig) (*OpenAIInvoker, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AnthropicBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-3-5-sonnet"
	}
	return newChatInvoker("anthropic", OpenAIConfig{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		DefaultModel: cfg.DefaultModel,
		Logger:       cfg.Logger,
	})
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider        string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	DefaultModel    string
	Logger          zerolog.Logger
}

// NewInvoker builds the invoker for cfg.Provider. It returns (nil, nil) when the
// selected provider has no credentials so callers can run without a model backend.
func NewInvoker(cfg ProviderConfig) (Invoker, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil
		}
		invoker, err := NewOpenAIInvoker(OpenAIConfig{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			DefaultModel: cfg.DefaultModel,
			Logger:       cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		return invoker, nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, nil
		}
		invoker, err := NewAnthropicInvoker(AnthropicConfig{
			APIKey:       cfg.AnthropicAPIKey,
			DefaultModel: cfg.DefaultModel,
			Logger:       cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		return invoker, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
