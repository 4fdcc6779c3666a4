package optimizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSectorTable(t *testing.T) {
	table := DefaultSectorTable()

	assert.True(t, table.Member("Layer 1", "bitcoin"))
	assert.True(t, table.Member("Stablecoins", "tether"))
	assert.False(t, table.Member("Stablecoins", "bitcoin"))
	assert.False(t, table.Member("Nonexistent", "bitcoin"))
	assert.Len(t, table.Names(), 8)
}

func TestFilterBySectorsDeduplicates(t *testing.T) {
	table := SectorTable{
		"A": {"bitcoin", "ethereum"},
		"B": {"bitcoin", "tether"},
	}

	candidates := []Candidate{
		{ID: "bitcoin"},
		{ID: "ethereum"},
		{ID: "tether"},
		{ID: "dogecoin"},
	}

	filtered := table.filterBySectors(candidates, []string{"A", "B"})
	require.Len(t, filtered, 3)
	assert.Equal(t, "bitcoin", filtered[0].ID)
	assert.Equal(t, "ethereum", filtered[1].ID)
	assert.Equal(t, "tether", filtered[2].ID)
}

func TestLoadSectorTableMissingFileFallsBack(t *testing.T) {
	table, err := LoadSectorTable(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.True(t, table.Member("Layer 1", "bitcoin"))
}

func TestLoadSectorTableFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors.yaml")
	content := "Custom:\n  - foocoin\n  - barcoin\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadSectorTable(path)
	require.NoError(t, err)
	assert.True(t, table.Member("Custom", "foocoin"))
	assert.False(t, table.Member("Layer 1", "bitcoin"), "file table replaces the default")
}

func TestLoadSectorTableBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::::not yaml"), 0o644))

	_, err := LoadSectorTable(path)
	assert.Error(t, err)
}
