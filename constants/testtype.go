package constants

import "strings"

// TestType is the specimen type a lab value was measured on.
type TestType string

const (
	TestTypeBlood TestType = "BLOOD"
	TestTypeUrine TestType = "URINE"
)

var allTestTypes = []TestType{TestTypeBlood, TestTypeUrine}

// AllTestTypes returns the supported specimen types.
func AllTestTypes() []TestType {
	out := make([]TestType, len(allTestTypes))
	copy(out, allTestTypes)
	return out
}

// ParseTestType maps a token from extraction output to a TestType.
// Matching is case-insensitive and tolerates a few common aliases.
func ParseTestType(input string) (TestType, bool) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "BLOOD", "SERUM", "PLASMA":
		return TestTypeBlood, true
	case "URINE", "URINALYSIS":
		return TestTypeUrine, true
	default:
		return "", false
	}
}
