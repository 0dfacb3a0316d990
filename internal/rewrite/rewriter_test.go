package rewrite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/promptlab-api/internal/analyzer"
	"github.com/noah-isme/promptlab-api/pkg/ai"
)

const weakPrompt = "write something about dogs"

const strongRewrite = `You are a senior veterinary writer.
Write an article about dog nutrition for new owners:
1. Explain the main nutrient groups.
2. Give a weekly feeding example, for example a puppy schedule.
Keep it to exactly 600 words in a friendly professional tone.
Format the answer as markdown with headings.
Do not include brand recommendations.`

type scriptedInvoker struct {
	mu           sync.Mutex
	replies      []string
	errs         []error
	temperatures []float64
}

func (s *scriptedInvoker) Invoke(_ context.Context, req ai.InvocationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := len(s.temperatures)
	s.temperatures = append(s.temperatures, req.Temperature)
	if call < len(s.errs) && s.errs[call] != nil {
		return "", s.errs[call]
	}
	if call < len(s.replies) {
		return s.replies[call], nil
	}
	return "", errors.New("no scripted reply")
}

func TestRewriteWithoutInvokerUsesDeterministicAssembly(t *testing.T) {
	result := analyzer.Analyze(weakPrompt)
	rewriter := NewRewriter(nil, Config{}, zerolog.Nop())

	outcome := rewriter.Rewrite(context.Background(), weakPrompt, result)

	require.Equal(t, SourceDeterministic, outcome.Source)
	require.Zero(t, outcome.Attempts)
	require.NotNil(t, result.Rewritten)
	require.Equal(t, *result.Rewritten, outcome.Text)
	require.Contains(t, outcome.Text, weakPrompt)
	require.Greater(t, outcome.Score, result.Score)
}

func TestRewriteAcceptsFirstPassingCandidate(t *testing.T) {
	invoker := &scriptedInvoker{replies: []string{strongRewrite}}
	result := analyzer.Analyze(weakPrompt)

	outcome := NewRewriter(invoker, Config{Model: "gpt-4o"}, zerolog.Nop()).Rewrite(context.Background(), weakPrompt, result)

	require.Equal(t, SourceModel, outcome.Source)
	require.Equal(t, 1, outcome.Attempts)
	require.Equal(t, strongRewrite, outcome.Text)
	require.Greater(t, outcome.Score, result.Score)
	require.Equal(t, []float64{0.7}, invoker.temperatures)
}

func TestRewriteRetriesWithLowerTemperature(t *testing.T) {
	invoker := &scriptedInvoker{
		replies: []string{"", strongRewrite},
		errs:    []error{errors.New("provider unavailable")},
	}
	result := analyzer.Analyze(weakPrompt)

	outcome := NewRewriter(invoker, Config{}, zerolog.Nop()).Rewrite(context.Background(), weakPrompt, result)

	require.Equal(t, SourceModel, outcome.Source)
	require.Equal(t, 2, outcome.Attempts)
	require.Equal(t, []float64{0.7, 0.4}, invoker.temperatures)
}

func TestRewriteKeepsLastCandidateWhenGateFails(t *testing.T) {
	invoker := &scriptedInvoker{replies: []string{weakPrompt, "write stuff about dogs"}}
	result := analyzer.Analyze(weakPrompt)

	outcome := NewRewriter(invoker, Config{}, zerolog.Nop()).Rewrite(context.Background(), weakPrompt, result)

	require.Equal(t, SourceModelPartial, outcome.Source)
	require.Equal(t, 2, outcome.Attempts)
	require.Equal(t, "write stuff about dogs", outcome.Text)
}

func TestRewriteFallsBackWhenEveryAttemptFails(t *testing.T) {
	invoker := &scriptedInvoker{errs: []error{errors.New("boom"), errors.New("boom")}}
	result := analyzer.Analyze(weakPrompt)

	outcome := NewRewriter(invoker, Config{}, zerolog.Nop()).Rewrite(context.Background(), weakPrompt, result)

	require.Equal(t, SourceDeterministic, outcome.Source)
	require.Equal(t, 2, outcome.Attempts)
	require.Equal(t, *result.Rewritten, outcome.Text)
}

func TestRewriteStripsMarkupFromCandidates(t *testing.T) {
	invoker := &scriptedInvoker{replies: []string{"<p>" + strongRewrite + "</p><script>alert(1)</script>"}}
	result := analyzer.Analyze(weakPrompt)

	outcome := NewRewriter(invoker, Config{}, zerolog.Nop()).Rewrite(context.Background(), weakPrompt, result)

	require.Equal(t, SourceModel, outcome.Source)
	require.NotContains(t, outcome.Text, "<p>")
	require.NotContains(t, outcome.Text, "script")
	require.Contains(t, outcome.Text, "You are a senior veterinary writer.")
}

func TestRewriteAdequatePromptWithoutInvokerKeepsOriginal(t *testing.T) {
	result := analyzer.Result{Score: 100, Grade: analyzer.GradeAPlus}

	outcome := NewRewriter(nil, Config{}, zerolog.Nop()).Rewrite(context.Background(), "  already fine  ", result)

	require.Equal(t, SourceDeterministic, outcome.Source)
	require.Equal(t, "already fine", outcome.Text)
}
