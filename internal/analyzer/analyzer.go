// Package analyzer decomposes a prompt into structural categories and scores it.
package analyzer

import (
	"strings"
)

// QualityTier describes how well a present category is expressed.
type QualityTier string

const (
	QualityNone      QualityTier = "none"
	QualityWeak      QualityTier = "weak"
	QualityGood      QualityTier = "good"
	QualityExcellent QualityTier = "excellent"
)

// Finding is the analysis outcome for one category.
type Finding struct {
	Present     bool        `json:"present"`
	Quality     QualityTier `json:"quality"`
	MatchedSpan *string     `json:"matchedSpan"`
}

// Findings holds one Finding per category. All six keys are always set.
type Findings map[Category]Finding

// Analyzer evaluates a rule table against prompt text.
type Analyzer struct {
	rules []Rule
}

// New builds an analyzer over the supplied rules, or DefaultRules when none are given.
func New(rules ...Rule) *Analyzer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Analyzer{rules: copied}
}

// Analyze returns the structural breakdown of text.
func (a *Analyzer) Analyze(text string) Findings {
	findings := absentFindings()
	if strings.TrimSpace(text) == "" {
		return findings
	}

	quality := assessQuality(text)
	for _, category := range Categories {
		span, ok := a.match(category, text)
		if !ok {
			continue
		}
		findings[category] = Finding{
			Present:     true,
			Quality:     quality,
			MatchedSpan: &span,
		}
	}

	return findings
}

func (a *Analyzer) match(category Category, text string) (string, bool) {
	for _, rule := range a.rules {
		if rule.Category != category || rule.Pattern == nil {
			continue
		}
		if loc := rule.Pattern.FindStringIndex(text); loc != nil {
			return strings.TrimSpace(text[loc[0]:loc[1]]), true
		}
	}
	return "", false
}

func absentFindings() Findings {
	findings := make(Findings, len(Categories))
	for _, category := range Categories {
		findings[category] = Finding{Present: false, Quality: QualityNone}
	}
	return findings
}

// assessQuality rates the whole prompt, not the matched span: specificity is a
// property of the prompt as a whole, so every present category shares the tier.
func assessQuality(text string) QualityTier {
	signals := detectSignals(text)

	switch {
	case signals.excellent() >= excellentSignalsMin:
		return QualityExcellent
	case signals.weak() >= weakSignalsMin:
		return QualityWeak
	default:
		return QualityGood
	}
}

type qualitySignals struct {
	specificity bool
	quantity    bool
	example     bool
	multiLine   bool
	vague       bool
	short       bool
}

func detectSignals(text string) qualitySignals {
	return qualitySignals{
		specificity: specificityMarker.MatchString(text),
		quantity:    quantityMarker.MatchString(text),
		example:     exampleMarker.MatchString(text),
		multiLine:   nonEmptyLines(text) >= multiLineThreshold,
		vague:       vagueMarker.MatchString(text),
		short:       wordCount(text) < minWordsForQuality,
	}
}

func (s qualitySignals) excellent() int {
	return countTrue(s.specificity, s.quantity, s.example, s.multiLine)
}

func (s qualitySignals) weak() int {
	return countTrue(s.vague, s.short)
}

func countTrue(values ...bool) int {
	count := 0
	for _, v := range values {
		if v {
			count++
		}
	}
	return count
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func nonEmptyLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
