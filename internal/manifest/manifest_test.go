package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panomask/internal/pano"
	"panomask/internal/segment"
)

func entry(key string, sky, water, veg float64) Entry {
	return Entry{
		Key:       key,
		Name:      key,
		Panorama:  "../panoramas/" + key + ".jpg",
		Masks:     pano.MaskPaths{Sky: key + "-sky.png", Water: key + "-water.png", Vegetation: key + "-veg.png"},
		Width:     8,
		Height:    4,
		Coverage:  segment.Coverage{Sky: sky, Water: water, Vegetation: veg},
		Generated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestUpsertReplacesAndSorts(t *testing.T) {
	m := New("test")
	m.Upsert(entry("punaluu-beach", 0.3, 0.2, 0.1))
	m.Upsert(entry("alii-drive", 0.4, 0.0, 0.3))
	m.Upsert(entry("punaluu-beach", 0.5, 0.1, 0.1))

	require.Len(t, m.Entries, 2)
	assert.Equal(t, "alii-drive", m.Entries[0].Key)
	e, ok := m.Get("punaluu-beach")
	require.True(t, ok)
	assert.Equal(t, 0.5, e.Coverage.Sky)

	_, ok = m.Get("keaau")
	assert.False(t, ok)
}

func TestComputeStats(t *testing.T) {
	m := New("test")
	m.ComputeStats()
	assert.Equal(t, Stats{}, m.Stats)

	m.Upsert(entry("a", 0.2, 0.0, 0.5))
	m.ComputeStats()
	assert.Equal(t, 1, m.Stats.Count)
	assert.Equal(t, Summary{Mean: 0.2, Min: 0.2, Max: 0.2}, m.Stats.Sky)

	m.Upsert(entry("b", 0.4, 0.0, 0.1))
	m.ComputeStats()
	assert.Equal(t, 2, m.Stats.Count)
	assert.InDelta(t, 0.3, m.Stats.Sky.Mean, 1e-12)
	assert.InDelta(t, 0.1414213562, m.Stats.Sky.StdDev, 1e-9) // sample std of {0.2, 0.4}
	assert.Equal(t, 0.2, m.Stats.Sky.Min)
	assert.Equal(t, 0.4, m.Stats.Sky.Max)
	assert.Equal(t, 0.0, m.Stats.Water.StdDev)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "masks.json")

	m := New("panomask 0.1.0")
	m.Upsert(entry("keaau", 0.1, 0.0, 0.7))
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, loaded.RunID)
	assert.Equal(t, m.Entries, loaded.Entries)
	assert.Equal(t, 1, loaded.Stats.Count)
}

func TestLoadOrNew(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "masks.json")

	m, err := LoadOrNew(path, "gen")
	require.NoError(t, err)
	assert.Empty(t, m.Entries)
	assert.NotEmpty(t, m.RunID)

	m.Upsert(entry("alii-drive", 0.1, 0.1, 0.1))
	require.NoError(t, m.Save(path))

	again, err := LoadOrNew(path, "gen")
	require.NoError(t, err)
	assert.Len(t, again.Entries, 1)
	assert.NotEqual(t, m.RunID, again.RunID, "each run gets its own ID")
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err := Load(bad)
	require.Error(t, err)

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"version": 99}`), 0644))
	_, err = Load(future)
	require.ErrorContains(t, err, "unsupported manifest version")

	_, err = LoadOrNew(bad, "gen")
	require.Error(t, err)
}

func TestRelativePaths(t *testing.T) {
	root := t.TempDir()
	manifestPath := filepath.Join(root, "public", "masks.json")
	paths := pano.MaskPathsFor(filepath.Join(root, "public", "masks"), "keaau", pano.DefaultSuffixes())

	rel := RelativePaths(manifestPath, paths)
	assert.Equal(t, "masks/keaau-sky.png", rel.Sky)
	assert.Equal(t, "masks/keaau-water.png", rel.Water)
	assert.Equal(t, "masks/keaau-veg.png", rel.Vegetation)

	assert.Equal(t, "../panoramas/keaau.jpg",
		RelativePath(manifestPath, filepath.Join(root, "panoramas", "keaau.jpg")))
}

func TestRelativePathMixesRelativeAndAbsolute(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	abs := filepath.Join(root, "panoramas", "keaau.jpg")
	assert.Equal(t, "../panoramas/keaau.jpg", RelativePath(filepath.Join("masks", "masks.json"), abs))
	assert.Equal(t, "../panoramas/keaau.jpg", RelativePath(filepath.Join(root, "masks", "masks.json"), filepath.Join("panoramas", "keaau.jpg")))
	assert.Equal(t, "keaau-sky.png", RelativePath(filepath.Join("masks", "masks.json"), filepath.Join("masks", "keaau-sky.png")))
}
