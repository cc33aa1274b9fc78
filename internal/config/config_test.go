package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panomask/internal/segment"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "panoramas", cfg.PanoramaDir)
	assert.Equal(t, "masks", cfg.MaskDir)
	assert.Len(t, cfg.Panoramas, 4)
	assert.Equal(t, "veg", cfg.Suffixes.Vegetation)
	assert.Equal(t, segment.DefaultParams(), cfg.Thresholds)
}

func TestLoad_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panomask.yaml")
	content := `
mask_dir: out/masks
workers: 2
suffixes:
  vegetation: vegetation
panoramas:
  - file: kona.png
    name: Kona
thresholds:
  sky_band_percent: 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "panoramas", cfg.PanoramaDir, "untouched default")
	assert.Equal(t, "out/masks", cfg.MaskDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "sky", cfg.Suffixes.Sky)
	assert.Equal(t, "vegetation", cfg.Suffixes.Vegetation)
	require.Len(t, cfg.Panoramas, 1, "list replaces the default panoramas")
	assert.Equal(t, "Kona", cfg.Panoramas[0].DisplayName())
	assert.Equal(t, 60, cfg.Thresholds.SkyBandPercent)
	assert.Equal(t, 35, cfg.Thresholds.WaterBandPercent, "other thresholds keep defaults")

	assert.Equal(t, filepath.Join(dir, "out/masks"), cfg.MaskDirPath())
	assert.Equal(t, filepath.Join(dir, "panoramas", "kona.png"), cfg.PanoramaPath("kona.png"))
	assert.Equal(t, filepath.Join(dir, "out/masks", "masks.json"), cfg.ManifestPath())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"negative workers", "workers: -1\n", "workers"},
		{"bad band", "thresholds:\n  sky_band_percent: 120\n", "sky_band_percent"},
		{"same suffix", "suffixes:\n  water: sky\n", "distinct"},
		{"empty suffix", "suffixes:\n  sky: \"\"\n", "suffixes"},
		{"duplicate", "panoramas:\n  - file: a.jpg\n  - file: a.png\n", "duplicate"},
		{"unsupported", "panoramas:\n  - file: a.gif\n", "unsupported"},
		{"missing file", "panoramas:\n  - name: x\n", "file is required"},
		{"bad yaml", "workers: [\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadOrDefault("", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Equal(t, filepath.Join(dir, "masks"), cfg.MaskDirPath())

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("workers: 7\n"), 0644))
	cfg, err = LoadOrDefault("", dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panomask.yaml")

	cfg := Default()
	cfg.CleanupIterations = 2
	cfg.Thresholds.LightSum = 320
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.CleanupIterations)
	assert.Equal(t, 320, loaded.Thresholds.LightSum)
	assert.Equal(t, cfg.Panoramas, loaded.Panoramas)
}

func TestResolveAbsolute(t *testing.T) {
	cfg := Default()
	cfg.SetBaseDir("/srv/viewer")
	abs := filepath.Join(string(filepath.Separator), "data", "masks")
	cfg.MaskDir = abs
	assert.Equal(t, abs, cfg.MaskDirPath())
	assert.Equal(t, filepath.Join("/srv/viewer", "panoramas"), cfg.PanoramaDirPath())

	cfg.Manifest = "public/masks.json"
	assert.Equal(t, filepath.Join("/srv/viewer", "public/masks.json"), cfg.ManifestPath())
}

func TestLookup(t *testing.T) {
	cfg := Default()
	p, ok := cfg.Lookup("hilo-bayfront")
	require.True(t, ok)
	assert.Equal(t, "Hilo Bayfront", p.DisplayName())

	_, ok = cfg.Lookup("mauna-kea")
	assert.False(t, ok)
}
