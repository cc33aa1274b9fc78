package pano

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"panomask/internal/segment"
)

// Suffixes name the per-category mask files: <basename>-<suffix>.png.
type Suffixes struct {
	Sky        string `yaml:"sky" json:"sky"`
	Water      string `yaml:"water" json:"water"`
	Vegetation string `yaml:"vegetation" json:"vegetation"`
}

// DefaultSuffixes matches the file names the viewer expects.
func DefaultSuffixes() Suffixes {
	return Suffixes{Sky: "sky", Water: "water", Vegetation: "veg"}
}

// IsMaskFile reports whether path is named like a mask written with these
// suffixes, <basename>-<suffix>.png.
func (s Suffixes) IsMaskFile(path string) bool {
	base := filepath.Base(path)
	if strings.ToLower(filepath.Ext(base)) != ".png" {
		return false
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	for _, suffix := range []string{s.Sky, s.Water, s.Vegetation} {
		if suffix != "" && len(name) > len(suffix)+1 && strings.HasSuffix(name, "-"+suffix) {
			return true
		}
	}
	return false
}

// MaskPaths holds the output file of each category mask.
type MaskPaths struct {
	Sky        string `json:"sky"`
	Water      string `json:"water"`
	Vegetation string `json:"vegetation"`
}

// MaskPathsFor returns the mask file paths for a panorama basename.
func MaskPathsFor(dir, basename string, s Suffixes) MaskPaths {
	name := func(suffix string) string {
		return filepath.Join(dir, fmt.Sprintf("%s-%s.png", basename, suffix))
	}
	return MaskPaths{
		Sky:        name(s.Sky),
		Water:      name(s.Water),
		Vegetation: name(s.Vegetation),
	}
}

// EncodeMask writes m as a single-channel PNG.
func EncodeMask(w io.Writer, m *segment.Mask) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, m.Gray()); err != nil {
		return fmt.Errorf("encode mask: %w", err)
	}
	return nil
}

// WriteMask encodes m to path. The file is written to a temporary name in the
// same directory and renamed, so readers never see a partial PNG.
func WriteMask(path string, m *segment.Mask) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mask-*.png")
	if err != nil {
		return fmt.Errorf("create temp mask: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp mask: %w", err)
	}
	if err := EncodeMask(tmp, m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp mask: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename mask: %w", err)
	}
	return nil
}

// WriteMasks writes the three masks of res to paths, creating the directory
// if needed.
func WriteMasks(res *segment.Result, paths MaskPaths) error {
	for _, p := range []string{paths.Sky, paths.Water, paths.Vegetation} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("create mask directory: %w", err)
		}
	}

	if err := WriteMask(paths.Sky, res.Sky); err != nil {
		return fmt.Errorf("sky mask: %w", err)
	}
	if err := WriteMask(paths.Water, res.Water); err != nil {
		return fmt.Errorf("water mask: %w", err)
	}
	if err := WriteMask(paths.Vegetation, res.Vegetation); err != nil {
		return fmt.Errorf("vegetation mask: %w", err)
	}
	return nil
}
