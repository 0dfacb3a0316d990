package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("alpha ", n))
}

func findingsWith(quality QualityTier, present ...Category) Findings {
	findings := absentFindings()
	for _, category := range present {
		span := string(category)
		findings[category] = Finding{Present: true, Quality: quality, MatchedSpan: &span}
	}
	return findings
}

func severities(issues []Issue) []Severity {
	out := make([]Severity, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Severity)
	}
	return out
}

func TestScoreEmptyPrompt(t *testing.T) {
	result := Analyze("")

	require.Equal(t, 0, result.Score)
	require.Equal(t, GradeF, result.Grade)
	require.Empty(t, result.Issues)
	require.Empty(t, result.Suggestions)
	require.Nil(t, result.Rewritten)
	require.Len(t, result.Findings, 6)
	for _, finding := range result.Findings {
		require.False(t, finding.Present)
	}
}

func TestScoreShortQuestion(t *testing.T) {
	result := Analyze("hur blir jag bra på chins?")

	require.LessOrEqual(t, result.Score, 50)
	require.Contains(t, []Grade{GradeF, GradeD, GradeC}, result.Grade)
	require.Equal(t, []Severity{
		SeverityWarning,    // role
		SeverityWarning,    // parameters
		SeveritySuggestion, // output format
		SeveritySuggestion, // constraints
		SeverityWarning,    // too short
	}, severities(result.Issues))
	require.NotNil(t, result.Rewritten)
}

func TestScoreWeights(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		findings Findings
		want     int
	}{
		{
			name:     "all categories excellent with length bonus clamps to 100",
			text:     words(50),
			findings: findingsWith(QualityExcellent, Categories...),
			want:     100,
		},
		{
			name:     "only task present",
			text:     words(20),
			findings: findingsWith(QualityExcellent, CategoryTask),
			want:     31,
		},
		{
			name:     "exactly half present gets no structural bonus",
			text:     words(20),
			findings: findingsWith(QualityExcellent, CategoryTask, CategoryRole, CategoryInstructions),
			want:     56,
		},
		{
			name:     "more than half present gets structural bonus",
			text:     words(20),
			findings: findingsWith(QualityExcellent, CategoryTask, CategoryRole, CategoryInstructions, CategoryParameters),
			want:     76,
		},
		{
			name:     "length sweet spot bonus",
			text:     words(40),
			findings: findingsWith(QualityExcellent, CategoryTask, CategoryRole, CategoryInstructions, CategoryParameters),
			want:     81,
		},
		{
			name:     "length bonus excludes 30 words",
			text:     words(30),
			findings: findingsWith(QualityExcellent, CategoryTask, CategoryRole, CategoryInstructions, CategoryParameters),
			want:     76,
		},
		{
			name:     "weak multiplier",
			text:     words(20),
			findings: findingsWith(QualityWeak, Categories...),
			want:     59,
		},
		{
			name:     "nothing present clamps at zero",
			text:     "stuff",
			findings: absentFindings(),
			want:     0,
		},
		{
			name:     "double penalty for absence",
			text:     "alpha beta",
			findings: absentFindings(),
			want:     1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Score(tc.text, tc.findings)
			require.Equal(t, tc.want, result.Score)
			require.Equal(t, GradeFor(tc.want), result.Grade)
		})
	}
}

func TestScoreIssueOrder(t *testing.T) {
	result := Score("stuff", absentFindings())

	categories := make([]Category, 0, len(result.Issues))
	for _, issue := range result.Issues {
		categories = append(categories, issue.Category)
	}

	require.Equal(t, []Severity{
		SeverityCritical,
		SeverityWarning,
		SeverityWarning,
		SeveritySuggestion,
		SeveritySuggestion,
		SeverityWarning,
		SeveritySuggestion,
	}, severities(result.Issues))
	require.Equal(t, []Category{
		CategoryTask,
		CategoryRole,
		CategoryParameters,
		CategoryOutputFormat,
		CategoryConstraints,
		CategoryTask,
		CategoryParameters,
	}, categories)
	require.Equal(t, "Prompt is too short", result.Issues[5].Message)
	require.Equal(t, "Vague language detected", result.Issues[6].Message)
}

func TestScoreSuggestions(t *testing.T) {
	short := Score("alpha beta", absentFindings())
	require.Equal(t, []Category{CategoryRole, CategoryParameters, CategoryOutputFormat, CategoryConstraints}, suggestionCategories(short.Suggestions))

	long := Score(words(10), absentFindings())
	require.Equal(t, []Category{CategoryRole, CategoryParameters, CategoryOutputFormat, CategoryConstraints, CategoryInstructions}, suggestionCategories(long.Suggestions))
	for _, suggestion := range long.Suggestions {
		require.NotEmpty(t, suggestion.Text)
		require.NotEmpty(t, suggestion.Rationale)
	}

	// 30 runes but 32 bytes: not longer than 30 characters.
	nonASCII := Score("förklara åtta saker om chins x", absentFindings())
	require.Equal(t, []Category{CategoryRole, CategoryParameters, CategoryOutputFormat, CategoryConstraints}, suggestionCategories(nonASCII.Suggestions))
	longer := Score("förklara åtta saker om chins xy", absentFindings())
	require.Contains(t, suggestionCategories(longer.Suggestions), CategoryInstructions)

	complete := Score(words(20), findingsWith(QualityGood, Categories...))
	require.Empty(t, complete.Suggestions)
	require.Nil(t, complete.Rewritten)
}

func suggestionCategories(suggestions []Suggestion) []Category {
	out := make([]Category, 0, len(suggestions))
	for _, suggestion := range suggestions {
		out = append(out, suggestion.Category)
	}
	return out
}

func TestGradeBoundaries(t *testing.T) {
	cases := map[int]Grade{
		100: GradeAPlus,
		95:  GradeAPlus,
		94:  GradeA,
		85:  GradeA,
		84:  GradeB,
		70:  GradeB,
		69:  GradeC,
		55:  GradeC,
		54:  GradeD,
		40:  GradeD,
		39:  GradeF,
		0:   GradeF,
	}

	for score, want := range cases {
		require.Equal(t, want, GradeFor(score), "score %d", score)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	inputs := []string{
		"",
		"x",
		"stuff things whatever",
		structuredPrompt,
		strings.Repeat("Explain something maybe. ", 200),
	}

	for _, input := range inputs {
		result := Analyze(input)
		require.GreaterOrEqual(t, result.Score, 0)
		require.LessOrEqual(t, result.Score, 100)
	}
}

func TestStructuredPromptNeedsNoRewrite(t *testing.T) {
	result := Analyze(structuredPrompt)

	require.Equal(t, 100, result.Score)
	require.Equal(t, GradeAPlus, result.Grade)
	require.Empty(t, result.Issues)
	require.Nil(t, result.Rewritten)
	require.Equal(t, 100, result.Metrics.Structure)
}

func TestAssemblePrompt(t *testing.T) {
	text := "hur  blir jag\nbra på chins?"
	rewritten := AssemblePrompt(text, New().Analyze(text))

	require.Equal(t,
		"You are an experienced expert in this subject. hur blir jag bra på chins? "+
			"Be specific and thorough, aimed at a practitioner audience, in a clear professional tone. "+
			"Format the answer in Markdown with headings and bullet points. "+
			"Do not include filler or unverified claims.",
		rewritten,
	)

	improved := Analyze(rewritten)
	require.Greater(t, improved.Score, Analyze(text).Score)
}
