package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/entity"
)

func TestCatalogKeysAreUnique(t *testing.T) {
	c := New()
	seen := make(map[string]bool)
	for _, p := range c.All() {
		require.False(t, seen[p.Key], "duplicate catalog key %q", p.Key)
		seen[p.Key] = true
	}
}

func TestCatalogEntriesAreComplete(t *testing.T) {
	c := New()
	require.Greater(t, c.Len(), 80)
	for _, p := range c.All() {
		assert.NotEmpty(t, p.Key, "entry without key")
		assert.NotEmpty(t, p.DisplayName, "entry %q without display name", p.Key)
		assert.NotEmpty(t, string(p.Category), "entry %q without category", p.Key)
		assert.Contains(t, []entity.ValueKind{entity.ValueKindNumeric, entity.ValueKindQualitative}, p.Kind)
	}
}

func TestCatalogLookup(t *testing.T) {
	c := New()

	p, ok := c.Lookup("hemoglobin_a1c")
	require.True(t, ok)
	assert.Equal(t, "Hemoglobin A1c", p.DisplayName)
	assert.Equal(t, "%", p.Unit)
	assert.False(t, p.IsUrine())
	assert.Equal(t, constants.TestTypeBlood, p.TestType())

	_, ok = c.Lookup("not_a_parameter")
	assert.False(t, ok)
}

func TestUrineNamespaceCoversAllUrineCategories(t *testing.T) {
	c := New()

	urine := c.ForTestType(constants.TestTypeUrine)
	require.NotEmpty(t, urine)
	cats := make(map[constants.ParameterCategory]bool)
	for _, p := range urine {
		require.True(t, p.IsUrine(), "parameter %q in urine namespace with category %s", p.Key, p.Category)
		cats[p.Category] = true
	}
	assert.True(t, cats[constants.CategoryUrinalysis])
	assert.True(t, cats[constants.CategoryUrineChemistry])
	assert.True(t, cats[constants.CategoryUrineMicrobiology])

	blood := c.ForTestType(constants.TestTypeBlood)
	require.NotEmpty(t, blood)
	for _, p := range blood {
		require.False(t, p.IsUrine(), "parameter %q leaked into blood namespace", p.Key)
	}
	assert.Equal(t, c.Len(), len(urine)+len(blood))
}

func TestCatalogByCategory(t *testing.T) {
	c := New()
	lipids := c.ByCategory(constants.CategoryLipidPanel)
	require.NotEmpty(t, lipids)
	for _, p := range lipids {
		assert.Equal(t, constants.CategoryLipidPanel, p.Category)
	}
}
