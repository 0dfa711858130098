package validate

import (
	"strconv"
	"strings"
)

// Range is a parsed reference interval. A nil bound means the interval
// is open on that side.
type Range struct {
	Low  *float64
	High *float64
}

// ParseReferenceRange parses the range grammar used on lab reports:
// "low-high", "<high", "<=high", ">low" and ">=low". Unicode dashes and
// comparison signs are tolerated. Returns false for anything else,
// including qualitative ranges like "Negative".
func ParseReferenceRange(raw string) (Range, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Range{}, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "≤", "<=")
	s = strings.ReplaceAll(s, "≥", ">=")

	for _, prefix := range []string{"<=", "<"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			high, err := parseBound(rest)
			if err != nil {
				return Range{}, false
			}
			return Range{High: &high}, true
		}
	}
	for _, prefix := range []string{">=", ">"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			low, err := parseBound(rest)
			if err != nil {
				return Range{}, false
			}
			return Range{Low: &low}, true
		}
	}

	lowStr, highStr, found := strings.Cut(s, "-")
	if !found {
		return Range{}, false
	}
	low, errLow := parseBound(lowStr)
	high, errHigh := parseBound(highStr)
	if errLow != nil || errHigh != nil || high < low {
		return Range{}, false
	}
	return Range{Low: &low, High: &high}, true
}

func parseBound(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ParseNumericValue parses a reported result value as a number. Thousands
// separators are stripped and a leading comparator ("<0.01") is ignored
// so censored assay results still compare against bounds.
func ParseNumericValue(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	for _, prefix := range []string{"<=", ">=", "<", ">"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			s = strings.TrimSpace(rest)
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
