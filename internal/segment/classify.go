package segment

import "panomask/pkg/colorutil"

var defaultParams = DefaultParams()

// ClassifySky reports whether a pixel looks like sky under DefaultParams.
func ClassifySky(r, g, b uint8, y, height int) bool {
	return defaultParams.Sky(r, g, b, y, height)
}

// ClassifyWater reports whether a pixel looks like water under DefaultParams.
func ClassifyWater(r, g, b uint8, y, height int) bool {
	return defaultParams.Water(r, g, b, y, height)
}

// ClassifyVegetation reports whether a pixel looks like vegetation under DefaultParams.
func ClassifyVegetation(r, g, b uint8) bool {
	return defaultParams.Vegetation(r, g, b)
}

// InSkyBand reports whether row y lies strictly above the sky cutoff.
// Integer percentages keep the boundary exact: y == height*0.55 is outside.
func (p Params) InSkyBand(y, height int) bool {
	return y*100 < height*p.SkyBandPercent
}

// InWaterBand reports whether row y lies strictly below the water cutoff.
func (p Params) InWaterBand(y, height int) bool {
	return y*100 > height*p.WaterBandPercent
}

// Sky is true for saturated blue, bright/washed-out, or strongly blue pixels
// in the upper band of the frame.
func (p Params) Sky(r, g, b uint8, y, height int) bool {
	if !p.InSkyBand(y, height) {
		return false
	}
	rf, gf, bf := float64(r), float64(g), float64(b)

	isBlue := b > r && bf > gf*p.SkyBlueGreenRatio
	isLight := colorutil.Sum(r, g, b) > p.LightSum
	isBlueSky := int(b) > p.SkyBlueMin && bf > rf*p.SkyBlueRedRatio

	return isBlue || isLight || isBlueSky
}

// Water is true for blue-green, cyan, or deep blue pixels below the top of
// the frame. The water band overlaps the sky band, so a horizon pixel can be
// both.
func (p Params) Water(r, g, b uint8, y, height int) bool {
	if !p.InWaterBand(y, height) {
		return false
	}
	rf, gf, bf := float64(r), float64(g), float64(b)

	isBlueGreen := int(b) > p.WaterBlueGreenMin && int(g) > p.WaterBlueGreenMin &&
		bf+gf > rf*p.WaterBlueGreenRatio
	isCyan := int(b) > p.WaterCyanMin && int(g) > p.WaterCyanMin && int(r) < p.WaterCyanRedMax
	isDeepBlue := int(b) > p.WaterDeepBlueMin && bf > rf*p.WaterDeepRedRatio &&
		bf > gf*p.WaterDeepGreenRatio

	return isBlueGreen || isCyan || isDeepBlue
}

// Vegetation is true for green-dominant pixels anywhere in the frame.
func (p Params) Vegetation(r, g, b uint8) bool {
	rf, gf, bf := float64(r), float64(g), float64(b)

	isGreen := gf > rf*p.VegGreenRedRatio && gf > bf*p.VegGreenBlueRatio
	isDarkGreen := int(g) > p.VegDarkMin && g > r && g > b && colorutil.Sum(r, g, b) < p.VegDarkSumMax
	isTropicalGreen := int(g) > p.VegTropicalMin && gf > rf*p.VegTropicalRedRatio

	return isGreen || isDarkGreen || isTropicalGreen
}
