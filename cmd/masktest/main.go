// Command masktest runs segmentation on one panorama and prints coverage.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"panomask/internal/morph"
	"panomask/internal/pano"
	"panomask/internal/segment"
)

func main() {
	imagePath := flag.String("image", "", "Path to panorama (JPEG, PNG, TIFF, WebP or BMP)")
	outDir := flag.String("out", "", "Write masks to this directory")
	workers := flag.Int("workers", 0, "Row bands, 0 = all CPUs")
	cleanup := flag.Int("cleanup", 0, "Morphological cleanup passes")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: masktest -image <path> [-out dir] [-workers n] [-cleanup n]")
		os.Exit(1)
	}

	p, err := pano.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load panorama: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s image: %dx%d pixels\n", p.Format, p.Width(), p.Height())

	params := segment.DefaultParams()
	fmt.Printf("\nThresholds:\n")
	fmt.Printf("  Bands: sky above %d%%, water below %d%%\n", params.SkyBandPercent, params.WaterBandPercent)
	fmt.Printf("  Sky: blue/green %.2f, blue min %d, blue/red %.2f, light sum %d\n",
		params.SkyBlueGreenRatio, params.SkyBlueMin, params.SkyBlueRedRatio, params.LightSum)
	fmt.Printf("  Water: blue+green min %d (x%.2f red), cyan min %d red max %d, deep blue min %d\n",
		params.WaterBlueGreenMin, params.WaterBlueGreenRatio, params.WaterCyanMin, params.WaterCyanRedMax, params.WaterDeepBlueMin)
	fmt.Printf("  Vegetation: green/red %.2f green/blue %.2f, dark min %d sum < %d, tropical min %d\n",
		params.VegGreenRedRatio, params.VegGreenBlueRatio, params.VegDarkMin, params.VegDarkSumMax, params.VegTropicalMin)

	fmt.Printf("\nSegmenting...\n")
	start := time.Now()
	res := params.ComputeMasksParallel(p.Image, *workers)
	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))

	if *cleanup > 0 {
		for name, m := range res.Masks() {
			cleaned, err := morph.Cleanup(m, *cleanup)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Cleanup of %s mask failed: %v\n", name, err)
				os.Exit(1)
			}
			*m = *cleaned
		}
		res.Coverage = segment.Coverage{
			Sky:        res.Sky.Coverage(),
			Water:      res.Water.Coverage(),
			Vegetation: res.Vegetation.Coverage(),
		}
	}

	fmt.Printf("\n%-12s %10s %10s\n", "Mask", "Pixels", "Coverage")
	fmt.Printf("%-12s %10d %9.1f%%\n", "sky", res.Sky.Count(), res.Coverage.Sky*100)
	fmt.Printf("%-12s %10d %9.1f%%\n", "water", res.Water.Count(), res.Coverage.Water*100)
	fmt.Printf("%-12s %10d %9.1f%%\n", "vegetation", res.Vegetation.Count(), res.Coverage.Vegetation*100)

	if *outDir == "" {
		return
	}
	paths := pano.MaskPathsFor(*outDir, pano.Basename(*imagePath), pano.DefaultSuffixes())
	if err := pano.WriteMasks(res, paths); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write masks: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nMasks written: %s, %s, %s\n", paths.Sky, paths.Water, paths.Vegetation)
}
