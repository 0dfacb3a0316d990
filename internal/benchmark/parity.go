package benchmark

import "fmt"

const (
	minLengthRatio       = 1.2
	minStructureDelta    = 10
	minSpecificityDelta  = 10
	requiredCriteriaMet  = 2
	identicalOutputsNote = "enhanced output is identical to the original output"
)

// Criteria records how each parity criterion evaluated.
type Criteria struct {
	LengthRatio      float64 `json:"lengthRatio"`
	StructureDelta   int     `json:"structureDelta"`
	SpecificityDelta int     `json:"specificityDelta"`
	LengthMet        bool    `json:"lengthMet"`
	StructureMet     bool    `json:"structureMet"`
	SpecificityMet   bool    `json:"specificityMet"`
	Met              int     `json:"met"`
	Identical        bool    `json:"identical"`
}

// Verdict is an advisory judgement on whether the enhancement made a real difference.
type Verdict struct {
	Accepted bool     `json:"accepted"`
	Reasons  []string `json:"reasons,omitempty"`
	Criteria Criteria `json:"criteria"`
}

// Validate compares two outcomes. At least two of the three criteria must hold,
// and byte-identical outputs are always rejected.
func Validate(original, enhanced Outcome) Verdict {
	criteria := Criteria{
		LengthRatio:      float64(enhanced.Metrics.Length) / float64(max(1, original.Metrics.Length)),
		StructureDelta:   enhanced.Metrics.Structure - original.Metrics.Structure,
		SpecificityDelta: enhanced.Metrics.Specificity - original.Metrics.Specificity,
		Identical:        original.Text == enhanced.Text,
	}
	criteria.LengthMet = criteria.LengthRatio >= minLengthRatio
	criteria.StructureMet = criteria.StructureDelta >= minStructureDelta
	criteria.SpecificityMet = criteria.SpecificityDelta >= minSpecificityDelta
	criteria.Met = countMet(criteria.LengthMet, criteria.StructureMet, criteria.SpecificityMet)

	verdict := Verdict{Criteria: criteria}
	if criteria.Identical {
		verdict.Reasons = []string{identicalOutputsNote}
		return verdict
	}
	if criteria.Met >= requiredCriteriaMet {
		verdict.Accepted = true
		return verdict
	}

	reasons := make([]string, 0, 4)
	reasons = append(reasons, fmt.Sprintf("only %d of 3 improvement criteria met, %d required", criteria.Met, requiredCriteriaMet))
	if !criteria.LengthMet {
		reasons = append(reasons, fmt.Sprintf("length ratio %.2f is below %.1f", criteria.LengthRatio, minLengthRatio))
	}
	if !criteria.StructureMet {
		reasons = append(reasons, fmt.Sprintf("structure score delta %d is below %d", criteria.StructureDelta, minStructureDelta))
	}
	if !criteria.SpecificityMet {
		reasons = append(reasons, fmt.Sprintf("specificity score delta %d is below %d", criteria.SpecificityDelta, minSpecificityDelta))
	}
	verdict.Reasons = reasons
	return verdict
}

func countMet(values ...bool) int {
	met := 0
	for _, v := range values {
		if v {
			met++
		}
	}
	return met
}
