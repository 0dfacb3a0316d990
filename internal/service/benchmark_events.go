package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/promptlab-api/internal/benchmark"
	"github.com/noah-isme/promptlab-api/internal/observability"
)

// BenchmarkCompletedEvent is broadcast after every benchmark run.
type BenchmarkCompletedEvent struct {
	Type            string            `json:"type"`
	ReferenceID     string            `json:"reference_id"`
	OwnerID         string            `json:"owner_id"`
	ModelID         string            `json:"model_id"`
	Accepted        bool              `json:"accepted"`
	Reasons         []string          `json:"reasons,omitempty"`
	OriginalMetrics benchmark.Metrics `json:"original_metrics"`
	EnhancedMetrics benchmark.Metrics `json:"enhanced_metrics"`
	OriginalFailed  bool              `json:"original_failed"`
	EnhancedFailed  bool              `json:"enhanced_failed"`
	CompletedAt     time.Time         `json:"completed_at"`
}

const benchmarkCompletedType = "benchmark.completed"

// BenchmarkEventPublisher fans benchmark events out to subscribers.
type BenchmarkEventPublisher interface {
	PublishCompleted(ctx context.Context, event BenchmarkCompletedEvent)
}

type benchmarkEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
}

// NewBenchmarkEventPublisher publishes to redis pub/sub and NATS when each is configured.
func NewBenchmarkEventPublisher(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) BenchmarkEventPublisher {
	channelBase = strings.TrimSpace(channelBase)
	if channelBase == "" {
		channelBase = "promptlab:events"
	}

	return &benchmarkEventPublisher{
		redis:        redisClient,
		redisChannel: channelBase + ":benchmarks",
		nats:         natsConn,
		natsSubject:  strings.ReplaceAll(channelBase, ":", ".") + ".benchmarks",
		logger:       logger.With().Str("component", "benchmark_events").Logger(),
	}
}

// PublishCompleted never fails the caller; transport errors are logged and counted.
func (p *benchmarkEventPublisher) PublishCompleted(ctx context.Context, event BenchmarkCompletedEvent) {
	event.Type = benchmarkCompletedType
	if event.CompletedAt.IsZero() {
		event.CompletedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode benchmark event")
		return
	}

	if p.redis != nil {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			observability.EventPublishFailures().WithLabelValues("redis").Inc()
			p.logger.Warn().Err(err).Str("channel", p.redisChannel).Msg("failed to publish benchmark event to redis")
		}
	}

	if p.nats != nil {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			observability.EventPublishFailures().WithLabelValues("nats").Inc()
			p.logger.Warn().Err(err).Str("subject", p.natsSubject).Msg("failed to publish benchmark event to nats")
		}
	}
}
