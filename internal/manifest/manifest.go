// Package manifest maintains the JSON index of generated masks that the
// panorama viewer loads alongside each panorama.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"panomask/internal/pano"
	"panomask/internal/segment"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Version is the manifest format version.
const Version = 1

// Manifest lists the masks available for each panorama.
type Manifest struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	Generator string    `json:"generator,omitempty"`
	Updated   time.Time `json:"updated"`
	Entries   []Entry   `json:"panoramas"`
	Stats     Stats     `json:"stats"`
}

// Entry describes the masks of one panorama. Paths are relative to the
// manifest file and use forward slashes.
type Entry struct {
	Key       string           `json:"key"` // panorama basename
	Name      string           `json:"name"`
	Panorama  string           `json:"panorama"`
	Masks     pano.MaskPaths   `json:"masks"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Coverage  segment.Coverage `json:"coverage"`
	Generated time.Time        `json:"generated"`
}

// Stats summarizes coverage across all entries.
type Stats struct {
	Count      int     `json:"count"`
	Sky        Summary `json:"sky"`
	Water      Summary `json:"water"`
	Vegetation Summary `json:"vegetation"`
}

// Summary holds distribution statistics for one category's coverage.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// New creates an empty manifest with a fresh run ID.
func New(generator string) *Manifest {
	return &Manifest{
		Version:   Version,
		RunID:     uuid.NewString(),
		Generator: generator,
		Updated:   time.Now().UTC(),
	}
}

// Load reads a manifest from a JSON file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	return &m, nil
}

// LoadOrNew loads path, or starts a new manifest if it does not exist.
func LoadOrNew(path, generator string) (*Manifest, error) {
	m, err := Load(path)
	if err == nil {
		m.RunID = uuid.NewString()
		m.Generator = generator
		return m, nil
	}
	if os.IsNotExist(err) {
		return New(generator), nil
	}
	return nil, err
}

// Save recomputes statistics and writes the manifest as indented JSON.
func (m *Manifest) Save(path string) error {
	m.Updated = time.Now().UTC()
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Upsert adds e or replaces the entry with the same key, keeping entries
// sorted by key.
func (m *Manifest) Upsert(e Entry) {
	for i := range m.Entries {
		if m.Entries[i].Key == e.Key {
			m.Entries[i] = e
			return
		}
	}
	m.Entries = append(m.Entries, e)
	sort.Slice(m.Entries, func(i, j int) bool {
		return m.Entries[i].Key < m.Entries[j].Key
	})
}

// Get returns the entry with the given key.
func (m *Manifest) Get(key string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// ComputeStats refreshes Stats from the current entries.
func (m *Manifest) ComputeStats() {
	n := len(m.Entries)
	sky := make([]float64, n)
	water := make([]float64, n)
	veg := make([]float64, n)
	for i, e := range m.Entries {
		sky[i] = e.Coverage.Sky
		water[i] = e.Coverage.Water
		veg[i] = e.Coverage.Vegetation
	}

	m.Stats = Stats{
		Count:      n,
		Sky:        summarize(sky),
		Water:      summarize(water),
		Vegetation: summarize(veg),
	}
}

func summarize(x []float64) Summary {
	if len(x) == 0 {
		return Summary{}
	}
	s := Summary{
		Min: floats.Min(x),
		Max: floats.Max(x),
	}
	if len(x) == 1 {
		// Sample standard deviation is undefined for one value.
		s.Mean = x[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	return s
}

// RelativePaths rewrites mask paths relative to the manifest directory so
// the viewer can resolve them against the manifest URL.
func RelativePaths(manifestPath string, paths pano.MaskPaths) pano.MaskPaths {
	return pano.MaskPaths{
		Sky:        RelativePath(manifestPath, paths.Sky),
		Water:      RelativePath(manifestPath, paths.Water),
		Vegetation: RelativePath(manifestPath, paths.Vegetation),
	}
}

// RelativePath rewrites a single path relative to the manifest directory.
// Either argument may be relative to the working directory.
func RelativePath(manifestPath, p string) string {
	base, err := filepath.Abs(filepath.Dir(manifestPath))
	if err != nil {
		return filepath.ToSlash(p)
	}
	target, err := filepath.Abs(p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	r, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}
