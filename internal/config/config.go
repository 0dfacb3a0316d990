package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                     string
	AppEnv                      string
	AppPort                     string
	LogLevel                    zerolog.Level
	DatabaseURL                 string
	RedisURL                    string
	NATSURL                     string
	EventsChannel               string
	JWTSecret                   string
	CORSAllowOrigins            []string
	AIProvider                  string
	OpenAIAPIKey                string
	OpenAIBaseURL               string
	AnthropicAPIKey             string
	RewriteModel                string
	InvocationTimeout           time.Duration
	RateLimitMax                int
	RateLimitWindow             time.Duration
	AnalyzeRateLimitMax         int
	AnalysisCacheTTL            time.Duration
	BenchmarkExposeInstructions bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PROMPTLAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "PromptLab API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("events.channel", "promptlab:events")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("rewrite.model", "gpt-4o-mini")
	v.SetDefault("invocation_timeout_ms", 60000)
	v.SetDefault("rate_limit.max", 10)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.analyze_max", 60)
	v.SetDefault("analysis.cache_ttl", "1h")
	v.SetDefault("benchmark.expose_instructions", false)

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v.GetString("log.level"))))
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	window, err := parseDuration(v, "rate_limit.window", time.Minute)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "analysis.cache_ttl", time.Hour)
	if err != nil {
		return Config{}, err
	}

	timeoutMs := v.GetInt("invocation_timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 60000
	}

	cfg := Config{
		AppName:                     v.GetString("app.name"),
		AppEnv:                      v.GetString("app.env"),
		AppPort:                     v.GetString("app.port"),
		LogLevel:                    level,
		DatabaseURL:                 strings.TrimSpace(v.GetString("database.url")),
		RedisURL:                    strings.TrimSpace(v.GetString("redis.url")),
		NATSURL:                     strings.TrimSpace(v.GetString("nats.url")),
		EventsChannel:               v.GetString("events.channel"),
		JWTSecret:                   v.GetString("jwt.secret"),
		CORSAllowOrigins:            splitList(v.GetString("cors.allow_origins")),
		AIProvider:                  strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		OpenAIAPIKey:                v.GetString("openai_api_key"),
		OpenAIBaseURL:               v.GetString("openai_base_url"),
		AnthropicAPIKey:             v.GetString("anthropic_api_key"),
		RewriteModel:                v.GetString("rewrite.model"),
		InvocationTimeout:           time.Duration(timeoutMs) * time.Millisecond,
		RateLimitMax:                v.GetInt("rate_limit.max"),
		RateLimitWindow:             window,
		AnalyzeRateLimitMax:         v.GetInt("rate_limit.analyze_max"),
		AnalysisCacheTTL:            cacheTTL,
		BenchmarkExposeInstructions: v.GetBool("benchmark.expose_instructions"),
	}

	switch cfg.AIProvider {
	case "openai", "anthropic":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 10
	}
	if cfg.AnalyzeRateLimitMax <= 0 {
		cfg.AnalyzeRateLimitMax = 60
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed <= 0 {
		return fallback, nil
	}
	return parsed, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
