package docai

import (
	"regexp"
	"strings"
)

var (
	reUnit  = regexp.MustCompile(`(mg/dl|mmol/l|g/dl|u/l|iu/l|miu/l|ng/ml|pg/ml|meq/l|/hpf|/ul)`)
	reRange = regexp.MustCompile(`\b\d+(\.\d+)?\s*-\s*\d+(\.\d+)?\b|[<>]\s*\d`)
	reTest  = regexp.MustCompile(`\b(glucose|hemoglobin|cholesterol|creatinine|sodium|potassium|tsh|platelet|urine)\b`)
)

func hasUnitPattern(s string) bool  { return reUnit.MatchString(s) }
func hasRangePattern(s string) bool { return reRange.MatchString(s) }
func hasTestPattern(s string) bool  { return reTest.MatchString(s) }

// naive heuristic confidence based on structured text characteristics
func heuristicConfidence(txt string) float32 {
	// boost if the text shows common lab report artifacts
	// (test names, units, reference ranges). Each adds a bit.
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasTestPattern(txtL) {
		score += 0.2
	}
	if hasUnitPattern(txtL) {
		score += 0.15
	}
	if hasRangePattern(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
