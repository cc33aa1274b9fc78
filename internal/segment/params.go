// Package segment classifies panorama pixels into sky, water and vegetation
// masks using fixed color and position heuristics.
package segment

import "fmt"

// Params holds the thresholds used by the sky, water and vegetation
// classifiers. Values are copied, never shared, so a Params is effectively
// immutable once loaded.
type Params struct {
	// Vertical bands, as a percentage of image height. Sky requires
	// y*100 < height*SkyBandPercent; water requires y*100 > height*WaterBandPercent.
	SkyBandPercent   int `yaml:"sky_band_percent" json:"sky_band_percent"`
	WaterBandPercent int `yaml:"water_band_percent" json:"water_band_percent"`

	// Sky
	LightSum          int     `yaml:"light_sum" json:"light_sum"`                       // r+g+b above this is washed-out sky
	SkyBlueGreenRatio float64 `yaml:"sky_blue_green_ratio" json:"sky_blue_green_ratio"` // isBlue: b > r && b > g*ratio
	SkyBlueMin        int     `yaml:"sky_blue_min" json:"sky_blue_min"`
	SkyBlueRedRatio   float64 `yaml:"sky_blue_red_ratio" json:"sky_blue_red_ratio"`

	// Water
	WaterBlueGreenMin   int     `yaml:"water_blue_green_min" json:"water_blue_green_min"`
	WaterBlueGreenRatio float64 `yaml:"water_blue_green_ratio" json:"water_blue_green_ratio"` // b+g > r*ratio
	WaterCyanMin        int     `yaml:"water_cyan_min" json:"water_cyan_min"`
	WaterCyanRedMax     int     `yaml:"water_cyan_red_max" json:"water_cyan_red_max"`
	WaterDeepBlueMin    int     `yaml:"water_deep_blue_min" json:"water_deep_blue_min"`
	WaterDeepRedRatio   float64 `yaml:"water_deep_red_ratio" json:"water_deep_red_ratio"`
	WaterDeepGreenRatio float64 `yaml:"water_deep_green_ratio" json:"water_deep_green_ratio"`

	// Vegetation
	VegGreenRedRatio    float64 `yaml:"veg_green_red_ratio" json:"veg_green_red_ratio"`
	VegGreenBlueRatio   float64 `yaml:"veg_green_blue_ratio" json:"veg_green_blue_ratio"`
	VegDarkMin          int     `yaml:"veg_dark_min" json:"veg_dark_min"`
	VegDarkSumMax       int     `yaml:"veg_dark_sum_max" json:"veg_dark_sum_max"`
	VegTropicalMin      int     `yaml:"veg_tropical_min" json:"veg_tropical_min"`
	VegTropicalRedRatio float64 `yaml:"veg_tropical_red_ratio" json:"veg_tropical_red_ratio"`
}

// DefaultParams returns the thresholds tuned for Big Island equirectangular
// panoramas: sky in the upper 55%, water below the top 35%.
func DefaultParams() Params {
	return Params{
		SkyBandPercent:   55,
		WaterBandPercent: 35,

		LightSum:          300,
		SkyBlueGreenRatio: 0.8,
		SkyBlueMin:        120,
		SkyBlueRedRatio:   1.1,

		WaterBlueGreenMin:   80,
		WaterBlueGreenRatio: 1.5,
		WaterCyanMin:        100,
		WaterCyanRedMax:     150,
		WaterDeepBlueMin:    120,
		WaterDeepRedRatio:   1.3,
		WaterDeepGreenRatio: 0.9,

		VegGreenRedRatio:    1.1,
		VegGreenBlueRatio:   0.9,
		VegDarkMin:          50,
		VegDarkSumMax:       400,
		VegTropicalMin:      80,
		VegTropicalRedRatio: 1.05,
	}
}

// Validate reports thresholds that would make a classifier meaningless.
func (p Params) Validate() error {
	if p.SkyBandPercent < 0 || p.SkyBandPercent > 100 {
		return fmt.Errorf("sky_band_percent %d outside 0..100", p.SkyBandPercent)
	}
	if p.WaterBandPercent < 0 || p.WaterBandPercent > 100 {
		return fmt.Errorf("water_band_percent %d outside 0..100", p.WaterBandPercent)
	}
	ratios := []struct {
		name string
		v    float64
	}{
		{"sky_blue_green_ratio", p.SkyBlueGreenRatio},
		{"sky_blue_red_ratio", p.SkyBlueRedRatio},
		{"water_blue_green_ratio", p.WaterBlueGreenRatio},
		{"water_deep_red_ratio", p.WaterDeepRedRatio},
		{"water_deep_green_ratio", p.WaterDeepGreenRatio},
		{"veg_green_red_ratio", p.VegGreenRedRatio},
		{"veg_green_blue_ratio", p.VegGreenBlueRatio},
		{"veg_tropical_red_ratio", p.VegTropicalRedRatio},
	}
	for _, r := range ratios {
		if r.v < 0 {
			return fmt.Errorf("%s must not be negative (got %g)", r.name, r.v)
		}
	}
	return nil
}

// String returns a one-line summary of the band and brightness thresholds.
func (p Params) String() string {
	return fmt.Sprintf("sky band <%d%% | water band >%d%% | light sum >%d | veg dark sum <%d",
		p.SkyBandPercent, p.WaterBandPercent, p.LightSum, p.VegDarkSumMax)
}
