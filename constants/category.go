package constants

import "strings"

// ParameterCategory groups standardized lab parameters into panels.
type ParameterCategory string

const (
	CategoryGeneralChemistry  ParameterCategory = "GENERAL_CHEMISTRY"
	CategoryHematology        ParameterCategory = "HEMATOLOGY"
	CategoryLipidPanel        ParameterCategory = "LIPID_PANEL"
	CategoryLiverFunction     ParameterCategory = "LIVER_FUNCTION"
	CategoryKidneyFunction    ParameterCategory = "KIDNEY_FUNCTION"
	CategoryThyroid           ParameterCategory = "THYROID"
	CategoryCardiac           ParameterCategory = "CARDIAC"
	CategoryInflammation      ParameterCategory = "INFLAMMATION"
	CategoryCoagulation       ParameterCategory = "COAGULATION"
	CategoryVitamins          ParameterCategory = "VITAMINS"
	CategoryHormones          ParameterCategory = "HORMONES"
	CategoryTumorMarkers      ParameterCategory = "TUMOR_MARKERS"
	CategoryUrinalysis        ParameterCategory = "URINALYSIS"
	CategoryUrineChemistry    ParameterCategory = "URINE_CHEMISTRY"
	CategoryUrineMicrobiology ParameterCategory = "URINE_MICROBIOLOGY"
	CategoryOther             ParameterCategory = "OTHER"
)

var allCategories = []ParameterCategory{
	CategoryGeneralChemistry,
	CategoryHematology,
	CategoryLipidPanel,
	CategoryLiverFunction,
	CategoryKidneyFunction,
	CategoryThyroid,
	CategoryCardiac,
	CategoryInflammation,
	CategoryCoagulation,
	CategoryVitamins,
	CategoryHormones,
	CategoryTumorMarkers,
	CategoryUrinalysis,
	CategoryUrineChemistry,
	CategoryUrineMicrobiology,
	CategoryOther,
}

// urineCategories is the set of categories considered urine tests. Every
// other category belongs to the blood side of the catalog.
var urineCategories = map[ParameterCategory]struct{}{
	CategoryUrinalysis:        {},
	CategoryUrineChemistry:    {},
	CategoryUrineMicrobiology: {},
}

// AllCategories returns the full category list in display order.
func AllCategories() []ParameterCategory {
	out := make([]ParameterCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

// AsStringSlice returns all categories as plain strings.
func AsStringSlice() []string {
	out := make([]string, 0, len(allCategories))
	for _, c := range allCategories {
		out = append(out, string(c))
	}
	return out
}

// IsUrine reports whether the category belongs to the urine namespace.
func (c ParameterCategory) IsUrine() bool {
	_, ok := urineCategories[c]
	return ok
}

// TestType maps the category to the specimen type its tests are run on.
func (c ParameterCategory) TestType() TestType {
	if c.IsUrine() {
		return TestTypeUrine
	}
	return TestTypeBlood
}

// CanonicalizeCategory maps a free-form category label to a known
// ParameterCategory. Returns false when no mapping exists.
func CanonicalizeCategory(input string) (ParameterCategory, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	synonyms := map[string]ParameterCategory{
		"CHEMISTRY":     CategoryGeneralChemistry,
		"BIOCHEMISTRY":  CategoryGeneralChemistry,
		"CBC":           CategoryHematology,
		"BLOOD_COUNT":   CategoryHematology,
		"LIPIDS":        CategoryLipidPanel,
		"LIPID":         CategoryLipidPanel,
		"LFT":           CategoryLiverFunction,
		"LIVER":         CategoryLiverFunction,
		"KFT":           CategoryKidneyFunction,
		"RENAL":         CategoryKidneyFunction,
		"KIDNEY":        CategoryKidneyFunction,
		"THYROID_PANEL": CategoryThyroid,
		"VITAMIN":       CategoryVitamins,
		"HORMONE":       CategoryHormones,
		"URINE":         CategoryUrinalysis,
		"URINE_ROUTINE": CategoryUrinalysis,
	}
	if c, ok := synonyms[normalized]; ok {
		return c, true
	}
	for _, c := range allCategories {
		if string(c) == normalized {
			return c, true
		}
	}
	return "", false
}
