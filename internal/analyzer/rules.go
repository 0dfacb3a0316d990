package analyzer

import "regexp"

// Category identifies one of the six structural roles a prompt is expected to fill.
type Category string

const (
	CategoryTask         Category = "task"
	CategoryRole         Category = "role"
	CategoryInstructions Category = "instructions"
	CategoryParameters   Category = "parameters"
	CategoryOutputFormat Category = "outputFormat"
	CategoryConstraints  Category = "constraints"
)

// Categories lists every structural category in evaluation order.
var Categories = []Category{
	CategoryTask,
	CategoryRole,
	CategoryInstructions,
	CategoryParameters,
	CategoryOutputFormat,
	CategoryConstraints,
}

// Rule is a single recognizer for a category. Rules of the same category are
// tried in table order and the first match wins.
type Rule struct {
	Category Category
	Name     string
	Pattern  *regexp.Regexp
}

const unitWords = `words?|sentences?|paragraphs?|bullets?|points?|items?|examples?|lines?|pages?|characters?|tokens?|minutes?|steps?|sections?|ideas?|options?|questions?`

// DefaultRules is the built-in recognizer table.
var DefaultRules = []Rule{
	{CategoryTask, "imperative-verb", regexp.MustCompile(`(?i)\b(write|create|generate|explain|describe|summari[sz]e|analy[sz]e|list|compare|translate|build|design|draft|review|fix|refactor|plan|outline|rewrite|help me|tell me|show me|give me|make)\b[^.\n?!]*`)},
	{CategoryTask, "direct-question", regexp.MustCompile(`(?i)\b(how|what|why|when|where|which|who|can you|could you|would you)\b[^?\n]*\?`)},
	{CategoryTask, "question-sentence", regexp.MustCompile(`[^.\n?!]+\?`)},

	{CategoryRole, "role-assertion", regexp.MustCompile(`(?i)\b(you are|you're|act as|acting as|pretend to be|pretend you are|imagine you are|your role is|take the role of|play the role of)\b[^.\n]*`)},
	{CategoryRole, "expert-persona", regexp.MustCompile(`(?i)\bas an? (expert|senior|professional|experienced|seasoned|certified)\b[^.,\n]*`)},

	{CategoryInstructions, "enumerated-steps", regexp.MustCompile(`(?m)^\s*(\d+[.)]|[-*•])\s+\S[^\n]*`)},
	{CategoryInstructions, "sequencing", regexp.MustCompile(`(?i)(\b(step[- ]by[- ]step|then|finally|make sure|ensure|be sure to|remember to|start by|focus on)\b|\b(first|next),)[^.\n]*`)},

	{CategoryParameters, "quantity", regexp.MustCompile(`(?i)\b\d+\s*(` + unitWords + `)\b`)},
	{CategoryParameters, "style-qualifier", regexp.MustCompile(`(?i)\b(tone|style|audience|level|formal|informal|casual|professional|friendly|concise|detailed|brief|technical|beginner|intermediate|advanced)\b[^.\n]*`)},

	{CategoryOutputFormat, "format-directive", regexp.MustCompile(`(?i)\b(formatted as|format as|format it as|in the form of|structured as|as an? (list|table|bullet(ed)? list|numbered list|json object|outline|essay|email|report|summary))\b[^.\n]*`)},
	{CategoryOutputFormat, "format-keyword", regexp.MustCompile(`(?i)\b(json|markdown|csv|yaml|xml|html|table|bullet points?|numbered list|code block)\b`)},
	{CategoryOutputFormat, "response-shape", regexp.MustCompile(`(?i)\b(respond|reply|answer|output|return)\s+(with|in|using|as)\b[^.\n]*`)},

	{CategoryConstraints, "exclusion", regexp.MustCompile(`(?i)\b(do not|don't|never|avoid|without|must not|mustn't|exclude|excluding)\b[^.\n]*`)},
	{CategoryConstraints, "bound", regexp.MustCompile(`(?i)\b(no more than|at most|at least|limit(ed)? to|under \d+|only use|only include|keep it under)\b[^.\n]*`)},
}

var (
	specificityMarker = regexp.MustCompile(`(?i)\b(specific(ally)?|exactly|precisely|in detail|must|required|requirements?)\b`)
	quantityMarker    = regexp.MustCompile(`(?i)\b\d+\s*(` + unitWords + `)\b`)
	exampleMarker     = regexp.MustCompile(`(?i)(\bfor example\b|\bfor instance\b|\be\.g\.|\bsuch as\b|\bexample:|\blike this\b)`)
	vagueMarker       = regexp.MustCompile(`(?i)\b(something|stuff|things?|somehow|some kind of|whatever|etc|maybe|kind of|sort of|good|nice|better|basically)\b`)
)

const (
	minWordsForQuality  = 10
	multiLineThreshold  = 3
	excellentSignalsMin = 2
	weakSignalsMin      = 2
)
