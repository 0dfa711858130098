package extract

import (
	"strings"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/entity"
)

// Confidence heuristic for parsed lines. A line starts at the base and earns
// credit for carrying a unit, a reference range, and an explicit test type.
const (
	confidenceBase       = 0.6
	confidenceUnitBonus  = 0.15
	confidenceRangeBonus = 0.15
	confidenceTypeBonus  = 0.1
)

// parseResponse scans a completion for pipe-format result lines. Lines that
// do not parse are dropped without error; a malformed model response simply
// contributes fewer values.
func parseResponse(resp string) []entity.RawExtractedValue {
	var out []entity.RawExtractedValue
	for _, line := range strings.Split(resp, "\n") {
		if v, ok := parseLine(line); ok {
			out = append(out, v)
		}
	}
	return out
}

// parseLine parses a single TEST_NAME|TEST_TYPE|VALUE|UNIT|REFERENCE_RANGE|ABNORMAL_FLAG
// line. The older 5-field layout without TEST_TYPE is still accepted; its
// specimen type is inferred from the test name.
func parseLine(line string) (entity.RawExtractedValue, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.Contains(line, "|") {
		return entity.RawExtractedValue{}, false
	}
	// Models sometimes echo the format header back.
	if strings.HasPrefix(strings.ToUpper(line), "TEST_NAME|") {
		return entity.RawExtractedValue{}, false
	}

	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 5 {
		return entity.RawExtractedValue{}, false
	}

	var (
		name, value, unit, refRange, flag string
		testType                          constants.TestType
		explicitType                      bool
	)
	if tt, ok := constants.ParseTestType(fields[1]); ok {
		name, value, unit, refRange = fields[0], fields[2], fields[3], fields[4]
		if len(fields) >= 6 {
			flag = fields[5]
		}
		testType = tt
		explicitType = true
	} else {
		name, value, unit, refRange, flag = fields[0], fields[1], fields[2], fields[3], fields[4]
		testType = inferTestType(name)
	}

	if name == "" || value == "" {
		return entity.RawExtractedValue{}, false
	}

	confidence := float32(confidenceBase)
	if unit != "" {
		confidence += confidenceUnitBonus
	}
	if refRange != "" {
		confidence += confidenceRangeBonus
	}
	if explicitType {
		confidence += confidenceTypeBonus
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	return entity.RawExtractedValue{
		TestName:       name,
		TestType:       testType,
		Value:          value,
		Unit:           unit,
		ReferenceRange: refRange,
		AbnormalFlag:   flag,
		IsAbnormal:     parseAbnormalFlag(flag),
		Confidence:     confidence,
	}, true
}

// inferTestType guesses the specimen type for legacy lines without one.
func inferTestType(name string) constants.TestType {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "urine") || strings.Contains(lower, "urinary") {
		return constants.TestTypeUrine
	}
	return constants.TestTypeBlood
}

// parseAbnormalFlag treats any flag other than an explicit "normal" marker
// as abnormal. An empty flag means the report showed no marking.
func parseAbnormalFlag(flag string) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "", "normal", "n", "-", "wnl", "none", "no":
		return false
	default:
		return true
	}
}
