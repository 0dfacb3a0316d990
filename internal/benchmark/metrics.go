package benchmark

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Metrics are crude, explainable proxies for output quality.
type Metrics struct {
	Length      int `json:"length"`
	Structure   int `json:"structureScore"`
	Specificity int `json:"specificityScore"`
}

type structureMarker struct {
	name    string
	pattern *regexp.Regexp
	weight  int
}

var structureMarkers = []structureMarker{
	{name: "heading", pattern: regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+\S`), weight: 10},
	{name: "bullet", pattern: regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+\S`), weight: 3},
	{name: "numbered", pattern: regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+\S`), weight: 3},
	{name: "fence", pattern: regexp.MustCompile("(?m)^[ \\t]*```"), weight: 10},
	{name: "table-row", pattern: regexp.MustCompile(`(?m)^[ \t]*\|.*\|[ \t]*$`), weight: 15},
	{name: "checkbox", pattern: regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+\[[ xX]\]`), weight: 5},
}

var technicalTerms = []string{
	"algorithm", "api", "architecture", "benchmark", "cache", "configuration",
	"concurrency", "database", "deployment", "endpoint", "framework", "function",
	"implementation", "index", "latency", "library", "metric", "optimization",
	"parameter", "performance", "protocol", "query", "schema", "security",
	"throughput", "validation", "variable", "protein", "calorie", "repetitions",
	"progression", "technique", "strategy", "analysis",
}

var technicalTermPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(technicalTerms, "|") + `)s?\b`)

const (
	maxMetricScore        = 100
	charactersPerSpecific = 50
	technicalTermWeight   = 5
)

// Measure derives metrics from generated text.
func Measure(text string) Metrics {
	length := utf8.RuneCountInString(text)

	structure := 0
	for _, marker := range structureMarkers {
		structure += marker.weight * len(marker.pattern.FindAllStringIndex(text, -1))
	}

	specificity := length/charactersPerSpecific + technicalTermWeight*len(technicalTermPattern.FindAllStringIndex(text, -1))

	return Metrics{
		Length:      length,
		Structure:   clamp(structure),
		Specificity: clamp(specificity),
	}
}

func clamp(value int) int {
	if value > maxMetricScore {
		return maxMetricScore
	}
	if value < 0 {
		return 0
	}
	return value
}
