package main

import (
	"fmt"
	"strconv"

	"panomask/pkg/colorutil"

	"github.com/spf13/cobra"
)

var (
	classifyY      int
	classifyHeight int
)

// classifyCmd reports how a single color is classified
var classifyCmd = &cobra.Command{
	Use:   "classify R G B",
	Short: "Show how one pixel color is classified",
	Long: `Runs the sky, water and vegetation predicates on a single color at a
given row, using the thresholds from the config. Useful when tuning values.

Example:
  panomask classify 90 100 130 --y 45 --height 100`,
	Args: cobra.ExactArgs(3),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().IntVar(&classifyY, "y", 0, "Pixel row")
	classifyCmd.Flags().IntVar(&classifyHeight, "height", 100, "Image height")
}

func runClassify(cmd *cobra.Command, args []string) error {
	var rgb [3]uint8
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid channel %q: must be 0-255", arg)
		}
		rgb[i] = uint8(v)
	}
	if classifyHeight <= 0 {
		return fmt.Errorf("height must be positive, got %d", classifyHeight)
	}
	if classifyY < 0 || classifyY >= classifyHeight {
		return fmt.Errorf("y must be in [0, %d), got %d", classifyHeight, classifyY)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p := cfg.Thresholds
	r, g, b := rgb[0], rgb[1], rgb[2]
	h, s, v := colorutil.RGBToHSV(r, g, b)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Color:      %s  rgb(%d, %d, %d)  hsv(%.0f, %.2f, %.2f)\n", colorutil.Hex(r, g, b), r, g, b, h, s, v)
	fmt.Fprintf(out, "Row:        %d of %d (%.1f%%)\n", classifyY, classifyHeight, float64(classifyY)*100/float64(classifyHeight))
	fmt.Fprintf(out, "Sky:        %-5t (band %t)\n", p.Sky(r, g, b, classifyY, classifyHeight), p.InSkyBand(classifyY, classifyHeight))
	fmt.Fprintf(out, "Water:      %-5t (band %t)\n", p.Water(r, g, b, classifyY, classifyHeight), p.InWaterBand(classifyY, classifyHeight))
	fmt.Fprintf(out, "Vegetation: %t\n", p.Vegetation(r, g, b))
	return nil
}
