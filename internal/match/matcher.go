// Package match resolves free-form test names from lab reports to
// canonical catalog parameters.
package match

import (
	"strings"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/catalog"
	"github.com/healthfolio/labingest/internal/entity"
)

// Confidence tiers by match strategy.
const (
	ConfidenceDirect    float32 = 1.0
	ConfidenceSynonym   float32 = 0.9
	ConfidenceSubstring float32 = 0.7
)

// fallbackMinLen guards the substring fallback against one and two
// letter names, which collide with almost every key.
const fallbackMinLen = 3

// Matcher resolves test names within a specimen namespace. A blood name
// can never resolve to a urine parameter and vice versa.
type Matcher struct {
	catalog *catalog.Catalog
	blood   []synonymEntry
	urine   []synonymEntry
}

func NewMatcher(c *catalog.Catalog) *Matcher {
	return &Matcher{
		catalog: c,
		blood:   bloodSynonyms(),
		urine:   urineSynonyms(),
	}
}

// Normalize folds a reported test name into the canonical key shape:
// lowercase, with spaces, hyphens, slashes and parentheses collapsed
// to single underscores. Normalize is idempotent.
func Normalize(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '-', '/', '(', ')', '_':
			pendingSep = true
		default:
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Match resolves a test name to a catalog parameter within the given
// specimen namespace. The confidence reflects how the match was found:
// exact key, synonym table, or substring fallback.
func (m *Matcher) Match(rawName string, testType constants.TestType) (*entity.StandardParameter, float32, bool) {
	name := Normalize(rawName)
	if name == "" {
		return nil, 0, false
	}

	if p, ok := m.catalog.Lookup(name); ok && p.TestType() == testType {
		return p, ConfidenceDirect, true
	}

	// An exact synonym hit anywhere in the table wins over a
	// containment hit: conjugated_bilirubin is a substring of
	// unconjugated_bilirubin, so containment alone would route one
	// of the pair to the other's entry.
	table := m.tableFor(testType)
	for _, e := range table {
		for _, syn := range e.synonyms {
			if syn == name {
				if p, ok := m.resolve(e.key, testType); ok {
					return p, ConfidenceSynonym, true
				}
			}
		}
	}
	for _, e := range table {
		for _, syn := range e.synonyms {
			if strings.Contains(name, syn) || strings.Contains(syn, name) {
				if p, ok := m.resolve(e.key, testType); ok {
					return p, ConfidenceSynonym, true
				}
			}
		}
	}

	if len(name) >= fallbackMinLen {
		for _, p := range m.catalog.ForTestType(testType) {
			if strings.Contains(name, p.Key) || strings.Contains(p.Key, name) {
				if resolved, ok := m.resolve(p.Key, testType); ok {
					return resolved, ConfidenceSubstring, true
				}
			}
		}
	}

	return nil, 0, false
}

func (m *Matcher) tableFor(testType constants.TestType) []synonymEntry {
	if testType == constants.TestTypeUrine {
		return m.urine
	}
	return m.blood
}

// resolve checks that a table key actually exists in the catalog and
// lives in the requested namespace.
func (m *Matcher) resolve(key string, testType constants.TestType) (*entity.StandardParameter, bool) {
	p, ok := m.catalog.Lookup(key)
	if !ok || p.TestType() != testType {
		return nil, false
	}
	return p, true
}
