// Package config provides the panomask YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"panomask/internal/pano"
	"panomask/internal/segment"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "panomask.yaml"

// Config holds all panomask settings.
type Config struct {
	// Directories (relative to the config file)
	PanoramaDir string `yaml:"panorama_dir"`
	MaskDir     string `yaml:"mask_dir"`
	Manifest    string `yaml:"manifest"`

	// Concurrency
	Workers     int `yaml:"workers"`      // panoramas processed at once
	ScanWorkers int `yaml:"scan_workers"` // row bands per image, 0 = GOMAXPROCS

	// Morphological cleanup passes applied to each mask, 0 disables
	CleanupIterations int `yaml:"cleanup_iterations"`

	Suffixes   pano.Suffixes  `yaml:"suffixes"`
	Panoramas  []Panorama     `yaml:"panoramas"`
	Thresholds segment.Params `yaml:"thresholds"`

	baseDir string
}

// Panorama is one named source image.
type Panorama struct {
	File string `yaml:"file"`
	Name string `yaml:"name,omitempty"`
}

// Default returns the configuration for the Big Island viewer panoramas.
func Default() *Config {
	return &Config{
		PanoramaDir: "panoramas",
		MaskDir:     "masks",
		Manifest:    "masks.json",
		Workers:     4,
		ScanWorkers: 0,
		Suffixes:    pano.DefaultSuffixes(),
		Panoramas: []Panorama{
			{File: "alii-drive.jpg", Name: "Ali'i Drive"},
			{File: "hilo-bayfront.jpg", Name: "Hilo Bayfront"},
			{File: "punaluu-beach.jpg", Name: "Punalu'u Beach"},
			{File: "keaau.jpg", Name: "Keaʻau"},
		},
		Thresholds: segment.DefaultParams(),
		baseDir:    ".",
	}
}

// Load reads a config file. Fields absent from the file keep their defaults,
// and relative directories resolve against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.baseDir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if given, else DefaultFile from dir if it exists,
// else returns Default rooted at dir.
func LoadOrDefault(path, dir string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	candidate := filepath.Join(dir, DefaultFile)
	if _, err := os.Stat(candidate); err == nil {
		return Load(candidate)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	cfg := Default()
	cfg.baseDir = dir
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the batch runner cannot use.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative (got %d)", c.Workers)
	}
	if c.ScanWorkers < 0 {
		return fmt.Errorf("scan_workers must not be negative (got %d)", c.ScanWorkers)
	}
	if c.CleanupIterations < 0 {
		return fmt.Errorf("cleanup_iterations must not be negative (got %d)", c.CleanupIterations)
	}

	s := c.Suffixes
	if s.Sky == "" || s.Water == "" || s.Vegetation == "" {
		return fmt.Errorf("suffixes must all be set")
	}
	if s.Sky == s.Water || s.Sky == s.Vegetation || s.Water == s.Vegetation {
		return fmt.Errorf("suffixes must be distinct")
	}

	seen := make(map[string]bool, len(c.Panoramas))
	for i, p := range c.Panoramas {
		if p.File == "" {
			return fmt.Errorf("panoramas[%d]: file is required", i)
		}
		if !pano.IsSupportedFormat(p.File) {
			return fmt.Errorf("panoramas[%d]: unsupported format %q", i, p.File)
		}
		base := pano.Basename(p.File)
		if seen[base] {
			return fmt.Errorf("panoramas[%d]: duplicate basename %q", i, base)
		}
		seen[base] = true
	}

	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}

// BaseDir returns the directory relative paths resolve against.
func (c *Config) BaseDir() string {
	if c.baseDir == "" {
		return "."
	}
	return c.baseDir
}

// SetBaseDir changes the directory relative paths resolve against.
func (c *Config) SetBaseDir(dir string) {
	c.baseDir = dir
}

// Resolve returns path unchanged if absolute, else joined to the base directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir(), path)
}

// PanoramaDirPath returns the absolute or base-relative panorama directory.
func (c *Config) PanoramaDirPath() string { return c.Resolve(c.PanoramaDir) }

// MaskDirPath returns the absolute or base-relative mask directory.
func (c *Config) MaskDirPath() string { return c.Resolve(c.MaskDir) }

// ManifestPath returns the manifest location. A bare file name is placed in
// the mask directory.
func (c *Config) ManifestPath() string {
	if c.Manifest == "" {
		return ""
	}
	if filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	if filepath.Base(c.Manifest) == c.Manifest {
		return filepath.Join(c.MaskDirPath(), c.Manifest)
	}
	return c.Resolve(c.Manifest)
}

// PanoramaPath returns the full path of a configured panorama file.
func (c *Config) PanoramaPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.PanoramaDirPath(), file)
}

// DisplayName returns the configured name, or the file basename.
func (p Panorama) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return pano.Basename(p.File)
}

// Lookup finds the configured panorama whose file has the given basename.
func (c *Config) Lookup(basename string) (Panorama, bool) {
	for _, p := range c.Panoramas {
		if pano.Basename(p.File) == basename {
			return p, true
		}
	}
	return Panorama{}, false
}
