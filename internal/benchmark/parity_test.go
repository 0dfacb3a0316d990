package benchmark

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/promptlab-api/pkg/ai"
)

func outcome(text string, metrics Metrics) Outcome {
	return Outcome{Text: text, Metrics: metrics}
}

func TestMeasureStructure(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{name: "plain", text: "just words here", want: 0},
		{name: "headings", text: "# One\n## Two\n### Three", want: 30},
		{name: "bullets and numbers", text: "- a\n* b\n1. c\n2) d", want: 12},
		{name: "fences", text: "```go\nfmt.Println()\n```", want: 20},
		{name: "table", text: "| a | b |\n|---|---|\n| 1 | 2 |", want: 45},
		{name: "checkbox counts as bullet too", text: "- [ ] todo\n- [x] done", want: 16},
		{name: "clamped", text: strings.Repeat("## h\n", 20), want: 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Measure(tc.text).Structure)
		})
	}
}

func TestMeasureSpecificityAndLength(t *testing.T) {
	metrics := Measure(strings.Repeat("x", 120))
	require.Equal(t, 120, metrics.Length)
	require.Equal(t, 2, metrics.Specificity)

	technical := Measure("Tune the cache and the database query for latency.")
	require.Equal(t, 1+5*4, technical.Specificity)

	require.Equal(t, 3, Measure("åäö").Length)
	require.Equal(t, 100, Measure(strings.Repeat("api ", 100)).Specificity)
}

func TestValidateAcceptsTwoOfThree(t *testing.T) {
	cases := []struct {
		name     string
		original Metrics
		enhanced Metrics
		accepted bool
		met      int
	}{
		{name: "none", original: Metrics{Length: 100, Structure: 10, Specificity: 10}, enhanced: Metrics{Length: 100, Structure: 10, Specificity: 10}, accepted: false, met: 0},
		{name: "length only", original: Metrics{Length: 100}, enhanced: Metrics{Length: 120}, accepted: false, met: 1},
		{name: "structure only", original: Metrics{Length: 100}, enhanced: Metrics{Length: 100, Structure: 10}, accepted: false, met: 1},
		{name: "length and structure", original: Metrics{Length: 100}, enhanced: Metrics{Length: 120, Structure: 10}, accepted: true, met: 2},
		{name: "structure and specificity", original: Metrics{Length: 100}, enhanced: Metrics{Length: 50, Structure: 15, Specificity: 10}, accepted: true, met: 2},
		{name: "all three", original: Metrics{Length: 10}, enhanced: Metrics{Length: 500, Structure: 40, Specificity: 30}, accepted: true, met: 3},
		{name: "just below thresholds", original: Metrics{Length: 100}, enhanced: Metrics{Length: 119, Structure: 9, Specificity: 9}, accepted: false, met: 0},
		{name: "zero length original", original: Metrics{}, enhanced: Metrics{Length: 2, Structure: 10}, accepted: true, met: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := Validate(outcome("a", tc.original), outcome("b", tc.enhanced))
			require.Equal(t, tc.accepted, verdict.Accepted)
			require.Equal(t, tc.met, verdict.Criteria.Met)
			if tc.accepted {
				require.Empty(t, verdict.Reasons)
			} else {
				require.NotEmpty(t, verdict.Reasons)
			}
		})
	}
}

func TestValidateRejectsIdenticalOutputs(t *testing.T) {
	verdict := Validate(
		outcome("same text", Metrics{Length: 1}),
		outcome("same text", Metrics{Length: 500, Structure: 50, Specificity: 50}),
	)

	require.False(t, verdict.Accepted)
	require.Equal(t, 3, verdict.Criteria.Met)
	require.True(t, verdict.Criteria.Identical)
	require.Equal(t, []string{identicalOutputsNote}, verdict.Reasons)
}

func TestBenchmarkAcceptsStructuredEnhancement(t *testing.T) {
	original := strings.Repeat("a", 50)
	enhanced := "## Overview\nChins build pulling strength over time.\n" +
		"## Plan\nTrain three days a week with full range of motion.\n" +
		"## Example\n```\nMon: 5x3 negatives\nWed: 4x5 band assisted\n```\n" +
		strings.Repeat("Keep a log of every session and rest well. ", 6)
	require.GreaterOrEqual(t, len(enhanced), 400)

	invoker := ai.InvokerFunc(func(_ context.Context, req ai.InvocationRequest) (string, error) {
		if req.SystemInstructions == "" {
			return original, nil
		}
		return enhanced, nil
	})

	pair := NewExecutor(invoker, nil, zerolog.Nop()).Run(context.Background(), "short", "long", "gpt-4o")
	verdict := Validate(pair.Original, pair.Enhanced)

	require.GreaterOrEqual(t, verdict.Criteria.StructureDelta, 10)
	require.GreaterOrEqual(t, verdict.Criteria.LengthRatio, 1.2)
	require.True(t, verdict.Accepted)
}

func TestValidateBothPathsFailed(t *testing.T) {
	pair := NewExecutor(nil, nil, zerolog.Nop()).Run(context.Background(), "a", "b", "gpt-4o")
	verdict := Validate(pair.Original, pair.Enhanced)

	require.False(t, verdict.Accepted)
	require.True(t, verdict.Criteria.Identical)
}
