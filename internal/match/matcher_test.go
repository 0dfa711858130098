package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/catalog"
)

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"HbA1c", "hba1c"},
		{"Total Cholesterol", "total_cholesterol"},
		{"RBC (Urine)", "rbc_urine"},
		{"Albumin/Creatinine Ratio", "albumin_creatinine_ratio"},
		{"Lipoprotein (a)", "lipoprotein_a"},
		{" ALT - SGPT ", "alt_sgpt"},
		{"Vitamin D (25-OH)", "vitamin_d_25_oh"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"HbA1c", "Total Cholesterol", "RBC (Urine)", "already_normal"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func newMatcher(t *testing.T) *Matcher {
	t.Helper()
	return NewMatcher(catalog.New())
}

func TestMatchDirectKey(t *testing.T) {
	m := newMatcher(t)

	p, conf, ok := m.Match("Total Cholesterol", constants.TestTypeBlood)
	require.True(t, ok)
	assert.Equal(t, "total_cholesterol", p.Key)
	assert.Equal(t, ConfidenceDirect, conf)

	p, conf, ok = m.Match("hemoglobin_a1c", constants.TestTypeBlood)
	require.True(t, ok)
	assert.Equal(t, "hemoglobin_a1c", p.Key)
	assert.Equal(t, ConfidenceDirect, conf)
}

func TestMatchSynonyms(t *testing.T) {
	m := newMatcher(t)

	tests := []struct {
		name     string
		testType constants.TestType
		wantKey  string
	}{
		{"HbA1c", constants.TestTypeBlood, "hemoglobin_a1c"},
		{"A1C", constants.TestTypeBlood, "hemoglobin_a1c"},
		{"Cholesterol", constants.TestTypeBlood, "total_cholesterol"},
		{"HDL-C", constants.TestTypeBlood, "hdl_cholesterol"},
		{"LDL", constants.TestTypeBlood, "ldl_cholesterol"},
		{"SGPT", constants.TestTypeBlood, "alt"},
		{"SGOT", constants.TestTypeBlood, "ast"},
		{"Serum Creatinine", constants.TestTypeBlood, "creatinine"},
		{"Creatine Kinase", constants.TestTypeBlood, "ck"},
		{"CKMB", constants.TestTypeBlood, "ck_mb"},
		{"BUN", constants.TestTypeBlood, "blood_urea_nitrogen"},
		{"Urea", constants.TestTypeBlood, "blood_urea_nitrogen"},
		{"Sed Rate", constants.TestTypeBlood, "esr"},
		{"FT3", constants.TestTypeBlood, "free_t3"},
		{"Triiodothyronine", constants.TestTypeBlood, "total_t3"},
		{"Thyroxine", constants.TestTypeBlood, "total_t4"},
		{"Bilirubin", constants.TestTypeBlood, "total_bilirubin"},
		{"Conjugated Bilirubin", constants.TestTypeBlood, "direct_bilirubin"},
		{"WBC", constants.TestTypeBlood, "wbc_count"},
		{"Platelets", constants.TestTypeBlood, "platelet_count"},
		{"Hgb", constants.TestTypeBlood, "hemoglobin"},
		{"Packed Cell Volume", constants.TestTypeBlood, "hematocrit"},
		{"Mean Corpuscular Hemoglobin Concentration", constants.TestTypeBlood, "mchc"},
		{"Alkaline Phosphatase", constants.TestTypeBlood, "alp"},
		{"Alpha Fetoprotein", constants.TestTypeBlood, "afp"},
		{"Fasting Blood Sugar", constants.TestTypeBlood, "glucose_fasting"},
		{"B12", constants.TestTypeBlood, "vitamin_b12"},
		{"25-OH Vitamin D", constants.TestTypeBlood, "vitamin_d"},
		{"Lactate Dehydrogenase", constants.TestTypeBlood, "ldh"},
		{"Lactic Acid", constants.TestTypeBlood, "lactate"},
	}
	for _, tt := range tests {
		p, conf, ok := m.Match(tt.name, tt.testType)
		require.True(t, ok, "name %q", tt.name)
		assert.Equal(t, tt.wantKey, p.Key, "name %q", tt.name)
		assert.Equal(t, ConfidenceSynonym, conf, "name %q", tt.name)
	}
}

func TestMatchUrineNamespace(t *testing.T) {
	m := newMatcher(t)

	tests := []struct {
		name    string
		wantKey string
	}{
		{"Glucose", "urine_glucose"},
		{"Protein", "urine_protein"},
		{"pH", "urine_ph"},
		{"Specific Gravity", "urine_specific_gravity"},
		{"Ketones", "urine_ketones"},
		{"Blood", "urine_blood"},
		{"Red Blood Cells", "urine_rbc"},
		{"Pus Cells", "urine_wbc"},
		{"Creatinine", "urine_creatinine"},
		{"Microalbumin", "urine_microalbumin"},
		{"Albumin Creatinine Ratio", "urine_albumin_creatinine_ratio"},
		{"Leukocyte Esterase", "urine_leukocyte_esterase"},
		{"Nitrite", "urine_nitrite"},
		{"Epithelial Cells", "urine_epithelial_cells"},
	}
	for _, tt := range tests {
		p, _, ok := m.Match(tt.name, constants.TestTypeUrine)
		require.True(t, ok, "name %q", tt.name)
		assert.Equal(t, tt.wantKey, p.Key, "name %q", tt.name)
		assert.True(t, p.IsUrine(), "name %q resolved outside the urine namespace", tt.name)
	}
}

func TestMatchNamespaceIsolation(t *testing.T) {
	m := newMatcher(t)

	// The same name lands on different parameters per specimen type.
	p, _, ok := m.Match("Glucose", constants.TestTypeBlood)
	require.True(t, ok)
	assert.Equal(t, "glucose_fasting", p.Key)
	assert.False(t, p.IsUrine())

	p, _, ok = m.Match("Glucose", constants.TestTypeUrine)
	require.True(t, ok)
	assert.Equal(t, "urine_glucose", p.Key)

	// Names with no counterpart in the other namespace stay unmatched.
	_, _, ok = m.Match("Hemoglobin", constants.TestTypeUrine)
	assert.False(t, ok)
	_, _, ok = m.Match("Ketones", constants.TestTypeBlood)
	assert.False(t, ok)
}

func TestMatchSubstringFallback(t *testing.T) {
	m := newMatcher(t)

	p, conf, ok := m.Match("Anion Gap Measured", constants.TestTypeBlood)
	require.True(t, ok)
	assert.Equal(t, "anion_gap", p.Key)
	assert.Equal(t, ConfidenceSubstring, conf)
}

func TestMatchUnknownName(t *testing.T) {
	m := newMatcher(t)

	_, _, ok := m.Match("qqq", constants.TestTypeBlood)
	assert.False(t, ok)
	_, _, ok = m.Match("", constants.TestTypeBlood)
	assert.False(t, ok)
	_, _, ok = m.Match("   ", constants.TestTypeUrine)
	assert.False(t, ok)
}

func TestConfidenceTiersAreOrdered(t *testing.T) {
	assert.Greater(t, ConfidenceDirect, ConfidenceSynonym)
	assert.Greater(t, ConfidenceSynonym, ConfidenceSubstring)
}

func TestSynonymTableKeysExistInCatalog(t *testing.T) {
	c := catalog.New()
	for _, e := range bloodSynonyms() {
		p, ok := c.Lookup(e.key)
		require.True(t, ok, "blood table references unknown key %q", e.key)
		require.False(t, p.IsUrine(), "blood table key %q lives in the urine namespace", e.key)
		require.NotEmpty(t, e.synonyms, "entry %q has no synonyms", e.key)
	}
	for _, e := range urineSynonyms() {
		p, ok := c.Lookup(e.key)
		require.True(t, ok, "urine table references unknown key %q", e.key)
		require.True(t, p.IsUrine(), "urine table key %q lives in the blood namespace", e.key)
		require.NotEmpty(t, e.synonyms, "entry %q has no synonyms", e.key)
	}
}
