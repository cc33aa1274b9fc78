package segment

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
)

// Coverage holds the fraction of pixels activated per category.
type Coverage struct {
	Sky        float64 `json:"sky"`
	Water      float64 `json:"water"`
	Vegetation float64 `json:"vegetation"`
}

// String formats the coverage as percentages with one decimal.
func (c Coverage) String() string {
	return fmt.Sprintf("sky %.1f%% water %.1f%% vegetation %.1f%%",
		c.Sky*100, c.Water*100, c.Vegetation*100)
}

// Result holds the three masks computed for one image.
type Result struct {
	Width      int
	Height     int
	Sky        *Mask
	Water      *Mask
	Vegetation *Mask
	Coverage   Coverage
}

// Masks returns the masks keyed by category name.
func (r *Result) Masks() map[string]*Mask {
	return map[string]*Mask{
		"sky":        r.Sky,
		"water":      r.Water,
		"vegetation": r.Vegetation,
	}
}

// ComputeMasks classifies every pixel of img under DefaultParams.
func ComputeMasks(img image.Image) *Result {
	return defaultParams.ComputeMasks(img)
}

// ComputeMasks scans img once, running all three classifiers per pixel.
// The input image is not modified.
func (p Params) ComputeMasks(img image.Image) *Result {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	res := newResult(w, h)

	t := p.scanRows(newSampler(img), bounds.Min, res, 0, h)
	res.Coverage = t.coverage(w * h)
	return res
}

// ComputeMasksParallel splits the image into horizontal bands and classifies
// them concurrently. The output is identical to ComputeMasks. workers <= 0
// uses GOMAXPROCS.
func (p Params) ComputeMasksParallel(img image.Image, workers int) *Result {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	res := newResult(w, h)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		t := p.scanRows(newSampler(img), bounds.Min, res, 0, h)
		res.Coverage = t.coverage(w * h)
		return res
	}

	sample := newSampler(img)
	rowsPerWorker := (h + workers - 1) / workers
	tallies := make([]tally, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		y0 := i * rowsPerWorker
		y1 := min(y0+rowsPerWorker, h)

		go func(worker, y0, y1 int) {
			defer wg.Done()
			// Bands write disjoint rows of the shared masks.
			tallies[worker] = p.scanRows(sample, bounds.Min, res, y0, y1)
		}(i, y0, y1)
	}
	wg.Wait()

	var total tally
	for _, t := range tallies {
		total.sky += t.sky
		total.water += t.water
		total.veg += t.veg
	}
	res.Coverage = total.coverage(w * h)
	return res
}

func newResult(w, h int) *Result {
	return &Result{
		Width:      w,
		Height:     h,
		Sky:        NewMask(w, h),
		Water:      NewMask(w, h),
		Vegetation: NewMask(w, h),
	}
}

type tally struct {
	sky, water, veg int
}

func (t tally) coverage(total int) Coverage {
	return Coverage{
		Sky:        fraction(t.sky, total),
		Water:      fraction(t.water, total),
		Vegetation: fraction(t.veg, total),
	}
}

// scanRows classifies rows [y0, y1) and returns the activated counts.
// Rows are relative to the image origin.
func (p Params) scanRows(sample sampler, origin image.Point, res *Result, y0, y1 int) tally {
	var t tally
	w, h := res.Width, res.Height

	for y := y0; y < y1; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			r, g, b := sample(origin.X+x, origin.Y+y)
			i := row + x

			if p.Sky(r, g, b, y, h) {
				res.Sky.pix[i] = Active
				t.sky++
			}
			if p.Water(r, g, b, y, h) {
				res.Water.pix[i] = Active
				t.water++
			}
			if p.Vegetation(r, g, b) {
				res.Vegetation.pix[i] = Active
				t.veg++
			}
		}
	}
	return t
}

// sampler returns the straight (non-premultiplied) 8-bit RGB of a pixel.
type sampler func(x, y int) (r, g, b uint8)

// newSampler picks a direct pixel reader for the decoders' common output
// types, falling back to color conversion for anything else.
func newSampler(img image.Image) sampler {
	switch src := img.(type) {
	case *image.NRGBA:
		return func(x, y int) (uint8, uint8, uint8) {
			i := src.PixOffset(x, y)
			return src.Pix[i], src.Pix[i+1], src.Pix[i+2]
		}
	case *image.RGBA:
		return func(x, y int) (uint8, uint8, uint8) {
			i := src.PixOffset(x, y)
			if src.Pix[i+3] == 0xff {
				return src.Pix[i], src.Pix[i+1], src.Pix[i+2]
			}
			c := color.NRGBAModel.Convert(src.RGBAAt(x, y)).(color.NRGBA)
			return c.R, c.G, c.B
		}
	case *image.YCbCr:
		return func(x, y int) (uint8, uint8, uint8) {
			yi := src.YOffset(x, y)
			ci := src.COffset(x, y)
			return color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
		}
	default:
		return func(x, y int) (uint8, uint8, uint8) {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			return c.R, c.G, c.B
		}
	}
}
