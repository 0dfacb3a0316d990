package analyzer

import "strings"

const (
	roleTemplate         = "You are an experienced [domain] expert."
	parametersTemplate   = "Keep the answer around [length] in a [tone] tone for [audience]."
	outputFormatTemplate = "Format the response as [format, e.g. a numbered list or a table]."
	constraintsTemplate  = "Do not include [what to exclude]."
	instructionsTemplate = "1. [first step] 2. [second step] 3. [third step]"
)

const (
	rolePrefix         = "You are an experienced expert in this subject."
	parametersClause   = "Be specific and thorough, aimed at a practitioner audience, in a clear professional tone."
	outputFormatClause = "Format the answer in Markdown with headings and bullet points."
	constraintsClause  = "Do not include filler or unverified claims."
)

// AssemblePrompt builds a deterministic rewrite of text by adding clauses for
// the missing categories around the original wording, which is kept verbatim.
func AssemblePrompt(text string, findings Findings) string {
	findings = completeFindings(findings)
	parts := make([]string, 0, 5)

	if !findings[CategoryRole].Present {
		parts = append(parts, rolePrefix)
	}
	parts = append(parts, text)
	if !findings[CategoryParameters].Present {
		parts = append(parts, parametersClause)
	}
	if !findings[CategoryOutputFormat].Present {
		parts = append(parts, outputFormatClause)
	}
	if !findings[CategoryConstraints].Present {
		parts = append(parts, constraintsClause)
	}

	return collapseWhitespace(strings.Join(parts, " "))
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
