package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/promptlab-api/internal/adapter"
	"github.com/noah-isme/promptlab-api/internal/benchmark"
	"github.com/noah-isme/promptlab-api/internal/dto"
	"github.com/noah-isme/promptlab-api/internal/handler"
	"github.com/noah-isme/promptlab-api/internal/ratelimit"
	"github.com/noah-isme/promptlab-api/internal/service"
)

type stubBenchmarkService struct {
	response  dto.BenchmarkResponse
	decision  ratelimit.Decision
	err       error
	lastOwner string
	lastReq   dto.BenchmarkRequest
	lastRef   string
	lastQuery dto.HistoryQuery
	history   dto.BenchmarkHistoryResponse
}

func (s *stubBenchmarkService) Run(_ context.Context, ownerID string, req dto.BenchmarkRequest) (dto.BenchmarkResponse, ratelimit.Decision, error) {
	s.lastOwner = ownerID
	s.lastReq = req
	if s.err != nil {
		return dto.BenchmarkResponse{}, s.decision, s.err
	}
	return s.response, s.decision, nil
}

func (s *stubBenchmarkService) Get(_ context.Context, ownerID, referenceID string) (dto.BenchmarkResponse, error) {
	s.lastOwner = ownerID
	s.lastRef = referenceID
	if s.err != nil {
		return dto.BenchmarkResponse{}, s.err
	}
	return s.response, nil
}

func (s *stubBenchmarkService) History(_ context.Context, ownerID string, query dto.HistoryQuery) (dto.BenchmarkHistoryResponse, error) {
	s.lastOwner = ownerID
	s.lastQuery = query
	if s.err != nil {
		return dto.BenchmarkHistoryResponse{}, s.err
	}
	return s.history, nil
}

func newBenchmarkApp(svc service.BenchmarkService) *fiber.App {
	return newBenchmarkAppAs(svc, "")
}

func newBenchmarkAppAs(svc service.BenchmarkService, userID string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/benchmarks", func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	handler.NewBenchmarkHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestBenchmarkHandlerRun(t *testing.T) {
	svc := &stubBenchmarkService{
		response: dto.BenchmarkResponse{
			ReferenceID: "bench-1",
			ModelID:     "gpt-4o",
			OutputA:     dto.OutcomeResponse{Text: "short", PathKind: string(benchmark.PathOriginal)},
			OutputB:     dto.OutcomeResponse{Text: "## Long\nanswer", PathKind: string(benchmark.PathEnhanced), AppliedProfile: dto.AppliedProfileResponse{HasSystemInstructions: true}},
			Verdict:     benchmark.Verdict{Accepted: false, Reasons: []string{"only 1 of 3 parity criteria met"}},
		},
		decision: ratelimit.Decision{Allowed: true, Limit: 10, Remaining: 7, ResetAt: time.Now().Add(time.Minute)},
	}
	app := newBenchmarkApp(svc)

	resp := postJSON(t, app, "/api/v1/benchmarks", dto.BenchmarkRequest{OriginalText: "a", EnhancedText: "b", ModelID: "gpt-4o"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "7", resp.Header.Get("X-RateLimit-Remaining"))

	payload := decodeEnvelope(t, resp)
	require.True(t, payload.Success)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.Equal(t, "bench-1", data["referenceId"])
	outputB := data["outputB"].(map[string]interface{})
	profile := outputB["appliedProfile"].(map[string]interface{})
	require.Equal(t, true, profile["hasSystemInstructions"])
	require.NotContains(t, profile, "systemInstructions")
	verdict := data["verdict"].(map[string]interface{})
	require.Equal(t, false, verdict["accepted"])

	require.Equal(t, "gpt-4o", svc.lastReq.ModelID)
}

func TestBenchmarkHandlerRunErrors(t *testing.T) {
	decision := ratelimit.Decision{Allowed: false, Limit: 10, ResetAt: time.Now().Add(time.Minute)}
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invoker missing", err: service.ErrInvokerUnavailable, status: fiber.StatusServiceUnavailable},
		{name: "blank text", err: fmt.Errorf("%w: originalText must not be blank", service.ErrValidation), status: fiber.StatusBadRequest},
		{name: "rate limited", err: &service.RateLimitError{Decision: decision}, status: fiber.StatusTooManyRequests},
		{name: "unexpected", err: fmt.Errorf("database exploded"), status: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newBenchmarkApp(&stubBenchmarkService{err: tc.err})
			resp := postJSON(t, app, "/api/v1/benchmarks", dto.BenchmarkRequest{OriginalText: "a", EnhancedText: "b", ModelID: "m"})
			require.Equal(t, tc.status, resp.StatusCode)
			require.False(t, decodeEnvelope(t, resp).Success)
		})
	}
}

func TestBenchmarkHandlerGet(t *testing.T) {
	svc := &stubBenchmarkService{response: dto.BenchmarkResponse{ReferenceID: "bench-9"}}
	app := newBenchmarkApp(svc)

	resp := get(t, app, "/api/v1/benchmarks/bench-9")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "bench-9", svc.lastRef)
	require.True(t, strings.HasPrefix(svc.lastOwner, "ip:"), "anonymous lookups are scoped to the caller address")

	owned := &stubBenchmarkService{response: dto.BenchmarkResponse{ReferenceID: "bench-9"}}
	resp = get(t, newBenchmarkAppAs(owned, "12"), "/api/v1/benchmarks/bench-9")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "user:12", owned.lastOwner)

	missing := newBenchmarkApp(&stubBenchmarkService{err: service.ErrBenchmarkNotFound})
	resp = get(t, missing, "/api/v1/benchmarks/unknown")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestBenchmarkHandlerHistory(t *testing.T) {
	anonymous := &stubBenchmarkService{}
	resp := get(t, newBenchmarkApp(anonymous), "/api/v1/benchmarks")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, anonymous.lastOwner)

	svc := &stubBenchmarkService{history: dto.BenchmarkHistoryResponse{
		Items:    []dto.BenchmarkHistoryItem{{ReferenceID: "bench-2", ModelID: "gpt-4o", Accepted: true, Reasons: []string{}}},
		Total:    1,
		Page:     2,
		PageSize: 5,
	}}
	resp = get(t, newBenchmarkAppAs(svc, "7"), "/api/v1/benchmarks?page=2&page_size=5")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "user:7", svc.lastOwner)
	require.Equal(t, dto.HistoryQuery{Page: 2, PageSize: 5}, svc.lastQuery)

	body := decodeEnvelope(t, resp)
	require.True(t, body.Success)
	var history dto.BenchmarkHistoryResponse
	require.NoError(t, json.Unmarshal(body.Data, &history))
	require.Equal(t, int64(1), history.Total)
	require.Len(t, history.Items, 1)
	require.Equal(t, "bench-2", history.Items[0].ReferenceID)
}

func TestModelHandler(t *testing.T) {
	registry := adapter.NewRegistry(
		adapter.Profile{ModelID: "zeta", Family: "test", SystemInstructions: "be brief", Temperature: 0.2, TopP: 0.8, MaxOutputTokens: 100},
		adapter.Profile{ModelID: "alpha", Family: "test", Temperature: 0.5, TopP: 1, MaxOutputTokens: 200},
	)
	app := fiber.New()
	handler.NewModelHandler(registry).Register(app.Group("/api/v1/models"))

	resp := get(t, app, "/api/v1/models")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summaries []adapter.Summary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &summaries))
	require.Len(t, summaries, 2)
	require.Equal(t, "alpha", summaries[0].ModelID)
	require.True(t, summaries[1].HasInstructions)

	resp = get(t, app, "/api/v1/models/unknown-model")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summary adapter.Summary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &summary))
	require.Equal(t, "unknown-model", summary.ModelID)
	require.False(t, summary.Registered)
	require.Equal(t, adapter.DefaultProfile.Family, summary.Family)
}
