package fixture

import (
	"testing"

	"bridge-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedServices(t *testing.T) {
	records, err := SeedServices()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	seen := make(map[string]bool)
	for _, r := range records {
		assert.NotEmpty(t, r.Name)
		assert.Truef(t, model.IsValidCategory(r.Category), "record %q has unknown category %q", r.Name, r.Category)
		assert.Falsef(t, seen[r.Name], "duplicate name %q", r.Name)
		seen[r.Name] = true
	}
}

func TestSeedServices_CoversEveryCategory(t *testing.T) {
	records, err := SeedServices()
	require.NoError(t, err)

	byCategory := make(map[string]int)
	for _, r := range records {
		byCategory[r.Category]++
	}
	for _, category := range model.Categories {
		assert.Positivef(t, byCategory[category], "no seed record for category %q", category)
	}
}

func TestMockServices(t *testing.T) {
	records := MockServices()
	require.NotEmpty(t, records)

	for _, r := range records {
		assert.NotEmpty(t, r.Name)
		assert.True(t, model.IsValidCategory(r.Category))
	}
}
