// Package colorutil provides shared color helpers for mask generation.
package colorutil

import (
	"image/color"
	"math"
)

// Mask colors: active pixels are written white, inactive black.
var (
	Black = color.Gray{Y: 0}
	White = color.Gray{Y: 255}
)

// Sum returns r+g+b, the brightness measure used by the classifiers.
func Sum(r, g, b uint8) int {
	return int(r) + int(g) + int(b)
}

// RGBToHSV converts RGB (0-255) to HSV with H in degrees 0-360 and S, V in 0-1.
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	diff := maxC - minC

	v = maxC

	if maxC == 0 {
		s = 0
	} else {
		s = diff / maxC
	}

	if diff == 0 {
		h = 0
	} else if maxC == rf {
		h = 60 * math.Mod((gf-bf)/diff, 6)
	} else if maxC == gf {
		h = 60 * ((bf-rf)/diff + 2)
	} else {
		h = 60 * ((rf-gf)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}

// Hex formats an RGB triple as #rrggbb.
func Hex(r, g, b uint8) string {
	const digits = "0123456789abcdef"
	out := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, c := range []uint8{r, g, b} {
		out[1+2*i] = digits[c>>4]
		out[2+2*i] = digits[c&0x0f]
	}
	return string(out)
}
