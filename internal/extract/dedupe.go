package extract

import (
	"strings"

	"github.com/healthfolio/labingest/internal/entity"
)

// dedupeValues drops repeated results. Two values collide when both their
// normalized test name and normalized value match; the first occurrence wins
// so earlier chunks take precedence over later ones.
func dedupeValues(values []entity.RawExtractedValue) []entity.RawExtractedValue {
	seen := make(map[string]struct{}, len(values))
	out := make([]entity.RawExtractedValue, 0, len(values))
	for _, v := range values {
		key := normalizeTestName(v.TestName) + "|" + normalizeValue(v.Value)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// normalizeTestName canonicalizes a test name for duplicate detection only.
// Matching against the catalog uses its own normalization.
func normalizeTestName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "test:")
	for _, suffix := range []string{"(calculated)", "(measured)"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	return strings.Join(strings.Fields(s), " ")
}

func normalizeValue(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, " ", "")
}
