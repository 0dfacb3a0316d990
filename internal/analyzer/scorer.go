package analyzer

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Grade is the letter grade derived from a score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Issue is an actionable problem found in the prompt.
type Issue struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Impact   string   `json:"impact"`
}

// Suggestion proposes text that fills a missing category.
type Suggestion struct {
	Category  Category `json:"category"`
	Text      string   `json:"text"`
	Rationale string   `json:"rationale"`
}

// SurfaceMetrics are cheap text statistics reported alongside the score.
type SurfaceMetrics struct {
	WordCount   int `json:"wordCount"`
	Specificity int `json:"specificityScore"`
	Clarity     int `json:"clarityScore"`
	Structure   int `json:"structureScore"`
}

// Result is the full analysis of one prompt.
type Result struct {
	Score       int            `json:"score"`
	Grade       Grade          `json:"grade"`
	Findings    Findings       `json:"findings"`
	Issues      []Issue        `json:"issues"`
	Suggestions []Suggestion   `json:"suggestions"`
	Metrics     SurfaceMetrics `json:"surfaceMetrics"`
	Rewritten   *string        `json:"rewrittenPrompt"`
}

const (
	baseScore        = 30.0
	structuralBonus  = 5.0
	lengthBonus      = 5.0
	lengthBonusMin   = 30
	lengthBonusMax   = 200
	tooShortWords    = 15
	instructionsMinC = 30
)

var categoryWeights = map[Category]float64{
	CategoryTask:         15,
	CategoryRole:         10,
	CategoryInstructions: 10,
	CategoryParameters:   10,
	CategoryOutputFormat: 8,
	CategoryConstraints:  7,
}

var qualityMultipliers = map[QualityTier]float64{
	QualityExcellent: 1.0,
	QualityGood:      0.7,
	QualityWeak:      0.4,
}

var severityPenalties = map[Severity]float64{
	SeverityCritical:   10,
	SeverityWarning:    5,
	SeveritySuggestion: 2,
}

var longSentenceSplit = regexp.MustCompile(`[.!?]+`)

// Analyze runs the default analyzer and scorer over text.
func Analyze(text string) Result {
	return Score(text, New().Analyze(text))
}

// Score turns a structural breakdown into a scored result. A missing category
// costs both its weight and an issue penalty.
func Score(text string, findings Findings) Result {
	findings = completeFindings(findings)
	words := wordCount(text)

	result := Result{
		Findings:    findings,
		Issues:      []Issue{},
		Suggestions: []Suggestion{},
		Metrics:     surfaceMetrics(text, findings),
	}

	if strings.TrimSpace(text) == "" {
		result.Score = 0
		result.Grade = GradeFor(0)
		return result
	}

	result.Issues = buildIssues(text, findings, words)
	result.Suggestions = buildSuggestions(text, findings)

	score := baseScore
	present := 0
	for _, category := range Categories {
		finding := findings[category]
		if !finding.Present {
			continue
		}
		present++
		score += categoryWeights[category] * qualityMultipliers[finding.Quality]
	}

	for _, issue := range result.Issues {
		score -= severityPenalties[issue.Severity]
	}

	if float64(present)/float64(len(Categories)) > 0.5 {
		score += structuralBonus
	}
	if words > lengthBonusMin && words < lengthBonusMax {
		score += lengthBonus
	}

	result.Score = clampScore(score)
	result.Grade = GradeFor(result.Score)

	if len(result.Suggestions) > 0 {
		rewritten := AssemblePrompt(text, findings)
		result.Rewritten = &rewritten
	}

	return result
}

// GradeFor maps a score to its letter grade. Boundary values take the higher grade.
func GradeFor(score int) Grade {
	switch {
	case score >= 95:
		return GradeAPlus
	case score >= 85:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 55:
		return GradeC
	case score >= 40:
		return GradeD
	default:
		return GradeF
	}
}

func clampScore(score float64) int {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

func completeFindings(findings Findings) Findings {
	complete := absentFindings()
	for category, finding := range findings {
		if _, known := complete[category]; !known {
			continue
		}
		if !finding.Present {
			finding.Quality = QualityNone
			finding.MatchedSpan = nil
		} else if finding.Quality == QualityNone || finding.Quality == "" {
			finding.Quality = QualityGood
		}
		complete[category] = finding
	}
	return complete
}

func buildIssues(text string, findings Findings, words int) []Issue {
	issues := make([]Issue, 0, 7)

	if !findings[CategoryTask].Present {
		issues = append(issues, Issue{
			Severity: SeverityCritical,
			Category: CategoryTask,
			Message:  "No clear task detected",
			Impact:   "The model has to guess what you want it to do.",
		})
	}
	if !findings[CategoryRole].Present {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: CategoryRole,
			Message:  "No role or persona defined",
			Impact:   "Answers default to a generic voice and depth.",
		})
	}
	if !findings[CategoryParameters].Present {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: CategoryParameters,
			Message:  "No parameters such as length, tone or audience",
			Impact:   "Response length and style will vary between runs.",
		})
	}
	if !findings[CategoryOutputFormat].Present {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Category: CategoryOutputFormat,
			Message:  "No output format specified",
			Impact:   "The response structure is left to the model.",
		})
	}
	if !findings[CategoryConstraints].Present {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Category: CategoryConstraints,
			Message:  "No constraints or exclusions stated",
			Impact:   "The model may include content you do not want.",
		})
	}
	if words < tooShortWords {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: CategoryTask,
			Message:  "Prompt is too short",
			Impact:   "Short prompts rarely carry enough context for a precise answer.",
		})
	}
	if vagueMarker.MatchString(text) {
		issues = append(issues, Issue{
			Severity: SeveritySuggestion,
			Category: CategoryParameters,
			Message:  "Vague language detected",
			Impact:   "Words like \"something\" or \"stuff\" make intent ambiguous.",
		})
	}

	return issues
}

func buildSuggestions(text string, findings Findings) []Suggestion {
	suggestions := make([]Suggestion, 0, 5)

	if !findings[CategoryRole].Present {
		suggestions = append(suggestions, Suggestion{
			Category:  CategoryRole,
			Text:      roleTemplate,
			Rationale: "A persona anchors vocabulary, depth and perspective.",
		})
	}
	if !findings[CategoryParameters].Present {
		suggestions = append(suggestions, Suggestion{
			Category:  CategoryParameters,
			Text:      parametersTemplate,
			Rationale: "Explicit length and tone make results consistent.",
		})
	}
	if !findings[CategoryOutputFormat].Present {
		suggestions = append(suggestions, Suggestion{
			Category:  CategoryOutputFormat,
			Text:      outputFormatTemplate,
			Rationale: "A target format makes the answer easier to scan and reuse.",
		})
	}
	if !findings[CategoryConstraints].Present {
		suggestions = append(suggestions, Suggestion{
			Category:  CategoryConstraints,
			Text:      constraintsTemplate,
			Rationale: "Exclusions keep the answer focused.",
		})
	}
	if !findings[CategoryInstructions].Present && utf8.RuneCountInString(text) > instructionsMinC {
		suggestions = append(suggestions, Suggestion{
			Category:  CategoryInstructions,
			Text:      instructionsTemplate,
			Rationale: "Ordered steps help the model cover everything you need.",
		})
	}

	return suggestions
}

func surfaceMetrics(text string, findings Findings) SurfaceMetrics {
	words := wordCount(text)
	if strings.TrimSpace(text) == "" {
		return SurfaceMetrics{}
	}

	signals := detectSignals(text)
	specificity := 50 + 15*signals.excellent() - 15*signals.weak()

	clarity := 100 - 10*len(vagueMarker.FindAllStringIndex(text, -1))
	if words < tooShortWords {
		clarity -= 20
	}
	for _, sentence := range longSentenceSplit.Split(text, -1) {
		if wordCount(sentence) > 40 {
			clarity -= 10
		}
	}

	present := 0
	for _, category := range Categories {
		if findings[category].Present {
			present++
		}
	}

	return SurfaceMetrics{
		WordCount:   words,
		Specificity: clampPercent(specificity),
		Clarity:     clampPercent(clarity),
		Structure:   int(math.Round(100 * float64(present) / float64(len(Categories)))),
	}
}

func clampPercent(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
