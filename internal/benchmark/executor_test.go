package benchmark

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/promptlab-api/internal/adapter"
	"github.com/noah-isme/promptlab-api/pkg/ai"
)

type recordingInvoker struct {
	mu       sync.Mutex
	requests map[string]ai.InvocationRequest
	respond  func(ctx context.Context, req ai.InvocationRequest) (string, error)
}

func (r *recordingInvoker) Invoke(ctx context.Context, req ai.InvocationRequest) (string, error) {
	r.mu.Lock()
	if r.requests == nil {
		r.requests = map[string]ai.InvocationRequest{}
	}
	r.requests[req.UserText] = req
	r.mu.Unlock()
	return r.respond(ctx, req)
}

func (r *recordingInvoker) request(userText string) ai.InvocationRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[userText]
}

func echo(_ context.Context, req ai.InvocationRequest) (string, error) {
	return "answer to " + req.UserText, nil
}

func TestRunAppliesPathProfiles(t *testing.T) {
	invoker := &recordingInvoker{respond: echo}
	executor := NewExecutor(invoker, adapter.DefaultRegistry(), zerolog.Nop())

	pair := executor.Run(context.Background(), "original prompt", "enhanced prompt", "gpt-4o")

	original := invoker.request("original prompt")
	require.Empty(t, original.SystemInstructions)
	require.InDelta(t, 1.0, original.Temperature, 1e-9)
	require.InDelta(t, 1.0, original.TopP, 1e-9)
	require.Equal(t, 600, original.MaxOutputTokens)

	profile := adapter.DefaultRegistry().Resolve("gpt-4o")
	enhanced := invoker.request("enhanced prompt")
	require.Equal(t, profile.SystemInstructions, enhanced.SystemInstructions)
	require.InDelta(t, profile.Temperature, enhanced.Temperature, 1e-9)
	require.InDelta(t, profile.TopP, enhanced.TopP, 1e-9)
	require.Equal(t, profile.MaxOutputTokens, enhanced.MaxOutputTokens)

	require.Equal(t, PathOriginal, pair.Original.Path)
	require.Equal(t, PathEnhanced, pair.Enhanced.Path)
	require.Nil(t, pair.Original.Profile.SystemInstructions)
	require.NotNil(t, pair.Enhanced.Profile.SystemInstructions)
	require.Equal(t, "answer to original prompt", pair.Original.Text)
	require.Equal(t, Measure(pair.Enhanced.Text), pair.Enhanced.Metrics)
	require.False(t, pair.Original.Failed)
	require.False(t, pair.Enhanced.Failed)
}

func TestRunUsesDefaultProfileForUnknownModel(t *testing.T) {
	invoker := &recordingInvoker{respond: echo}
	executor := NewExecutor(invoker, nil, zerolog.Nop())

	pair := executor.Run(context.Background(), "a", "b", "unknown-model-xyz")

	enhanced := invoker.request("b")
	require.InDelta(t, 0.7, enhanced.Temperature, 1e-9)
	require.Equal(t, 1024, enhanced.MaxOutputTokens)
	require.Equal(t, 1024, pair.Enhanced.Profile.MaxOutputTokens)
}

func TestRunExecutesPathsConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(2)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()

	invoker := ai.InvokerFunc(func(ctx context.Context, req ai.InvocationRequest) (string, error) {
		arrived.Done()
		select {
		case <-release:
			return "ok " + req.UserText, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	executor := NewExecutor(invoker, nil, zerolog.Nop(), WithTimeout(2*time.Second))

	pair := executor.Run(context.Background(), "one", "two", "gpt-4o")
	require.False(t, pair.Original.Failed, "paths must run in parallel")
	require.False(t, pair.Enhanced.Failed, "paths must run in parallel")
}

func TestRunIsolatesFailingPath(t *testing.T) {
	invoker := ai.InvokerFunc(func(_ context.Context, req ai.InvocationRequest) (string, error) {
		if req.SystemInstructions == "" {
			return "", errors.New("provider exploded")
		}
		return "## Result\n- detail", nil
	})
	executor := NewExecutor(invoker, nil, zerolog.Nop())

	pair := executor.Run(context.Background(), "same", "same", "gpt-4o")

	require.True(t, pair.Original.Failed)
	require.Equal(t, SentinelText, pair.Original.Text)
	require.Equal(t, Metrics{}, pair.Original.Metrics)
	require.Contains(t, pair.Original.Error, "provider exploded")

	require.False(t, pair.Enhanced.Failed)
	require.Equal(t, "## Result\n- detail", pair.Enhanced.Text)
}

func TestRunTimesOutSlowPathOnly(t *testing.T) {
	invoker := ai.InvokerFunc(func(_ context.Context, req ai.InvocationRequest) (string, error) {
		if req.UserText == "slow" {
			time.Sleep(2 * time.Second)
		}
		return "done", nil
	})
	executor := NewExecutor(invoker, nil, zerolog.Nop(), WithTimeout(50*time.Millisecond))

	start := time.Now()
	pair := executor.Run(context.Background(), "slow", "fast", "gpt-4o")

	require.Less(t, time.Since(start), time.Second)
	require.True(t, pair.Original.Failed)
	require.True(t, strings.Contains(pair.Original.Error, context.DeadlineExceeded.Error()))
	require.False(t, pair.Enhanced.Failed)
	require.Equal(t, "done", pair.Enhanced.Text)
}

func TestRunRecoversFromPanics(t *testing.T) {
	invoker := ai.InvokerFunc(func(_ context.Context, req ai.InvocationRequest) (string, error) {
		if req.UserText == "boom" {
			panic("invoker bug")
		}
		return "fine", nil
	})
	executor := NewExecutor(invoker, nil, zerolog.Nop())

	pair := executor.Run(context.Background(), "boom", "ok", "gpt-4o")
	require.True(t, pair.Original.Failed)
	require.Contains(t, pair.Original.Error, "invoker bug")
	require.False(t, pair.Enhanced.Failed)
}

func TestRunWithoutInvokerReturnsSentinels(t *testing.T) {
	var observed atomic.Int32
	executor := NewExecutor(nil, nil, zerolog.Nop(), WithObserver(func(path Path, failed bool, _ time.Duration) {
		if failed {
			observed.Add(1)
		}
	}))

	pair := executor.Run(context.Background(), "a", "b", "gpt-4o")
	require.True(t, pair.Original.Failed)
	require.True(t, pair.Enhanced.Failed)
	require.Equal(t, int32(2), observed.Load())
	require.Contains(t, pair.Original.Error, "no model invoker configured")
}
