package segment

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripedImage builds a 4x4 image: rows 0-1 pure blue, rows 2-3 pure green.
func stripedImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := color.NRGBA{B: 255, A: 255}
			if y >= 2 {
				c = color.NRGBA{G: 150, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradientImage fills an image with a deterministic spread of colors.
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 37) % 256),
				G: uint8((y * 53) % 256),
				B: uint8((x*11 + y*7) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestComputeMasks_Striped(t *testing.T) {
	res := ComputeMasks(stripedImage())

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			top := y < 2
			assert.Equal(t, top, res.Sky.Active(x, y), "sky (%d,%d)", x, y)
			assert.Equal(t, !top, res.Vegetation.Active(x, y), "vegetation (%d,%d)", x, y)
			assert.False(t, res.Water.Active(x, y), "water (%d,%d)", x, y)
		}
	}

	assert.InDelta(t, 0.5, res.Coverage.Sky, 1e-12)
	assert.InDelta(t, 0.0, res.Coverage.Water, 1e-12)
	assert.InDelta(t, 0.5, res.Coverage.Vegetation, 1e-12)
}

func TestComputeMasks_Idempotent(t *testing.T) {
	img := gradientImage(64, 48)
	a := ComputeMasks(img)
	b := ComputeMasks(img)

	if diff := cmp.Diff(a.Sky.Pix(), b.Sky.Pix()); diff != "" {
		t.Errorf("sky mask differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(a.Water.Pix(), b.Water.Pix()); diff != "" {
		t.Errorf("water mask differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(a.Vegetation.Pix(), b.Vegetation.Pix()); diff != "" {
		t.Errorf("vegetation mask differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, a.Coverage, b.Coverage)
}

func TestComputeMasks_DoesNotMutateInput(t *testing.T) {
	img := gradientImage(16, 16)
	before := append([]uint8(nil), img.Pix...)

	ComputeMasks(img)

	assert.Equal(t, before, img.Pix)
}

func TestComputeMasks_Dimensions(t *testing.T) {
	sizes := []image.Rectangle{
		image.Rect(0, 0, 1, 1),
		image.Rect(0, 0, 7, 3),
		image.Rect(0, 0, 3, 7),
		image.Rect(10, 20, 30, 25), // non-zero origin
	}

	for _, r := range sizes {
		img := image.NewNRGBA(r)
		res := ComputeMasks(img)
		for name, m := range res.Masks() {
			assert.Equal(t, r.Dx(), m.Width(), "%s width for %v", name, r)
			assert.Equal(t, r.Dy(), m.Height(), "%s height for %v", name, r)
		}
		assert.Equal(t, r.Dx(), res.Width)
		assert.Equal(t, r.Dy(), res.Height)
	}
}

func TestComputeMasks_OffsetOriginUsesRelativeRows(t *testing.T) {
	// A white image whose bounds start at y=100 still has sky in its top rows.
	img := image.NewNRGBA(image.Rect(0, 100, 2, 110))
	for y := 100; y < 110; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	res := ComputeMasks(img)

	assert.True(t, res.Sky.Active(0, 0))
	assert.True(t, res.Sky.Active(1, 5))
	assert.False(t, res.Sky.Active(0, 6))
}

func TestComputeMasks_CoverageMatchesCounts(t *testing.T) {
	img := gradientImage(40, 30)
	res := ComputeMasks(img)

	total := float64(40 * 30)
	assert.InDelta(t, float64(res.Sky.Count())/total, res.Coverage.Sky, 1e-12)
	assert.InDelta(t, float64(res.Water.Count())/total, res.Coverage.Water, 1e-12)
	assert.InDelta(t, float64(res.Vegetation.Count())/total, res.Coverage.Vegetation, 1e-12)
	assert.InDelta(t, res.Sky.Coverage(), res.Coverage.Sky, 1e-12)
}

func TestComputeMasks_EmptyImage(t *testing.T) {
	res := ComputeMasks(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.Equal(t, Coverage{}, res.Coverage)
	assert.Equal(t, 0, res.Sky.Count())
}

func TestComputeMasksParallel_MatchesSequential(t *testing.T) {
	img := gradientImage(97, 61)
	p := DefaultParams()
	want := p.ComputeMasks(img)

	for _, workers := range []int{-1, 0, 1, 2, 3, 8, 61, 200} {
		got := p.ComputeMasksParallel(img, workers)
		require.True(t, want.Sky.Equal(got.Sky), "sky workers=%d", workers)
		require.True(t, want.Water.Equal(got.Water), "water workers=%d", workers)
		require.True(t, want.Vegetation.Equal(got.Vegetation), "vegetation workers=%d", workers)
		require.Equal(t, want.Coverage, got.Coverage, "coverage workers=%d", workers)
	}
}

func TestComputeMasks_SourceTypesAgree(t *testing.T) {
	src := gradientImage(20, 20)
	want := ComputeMasks(src)

	rgba := image.NewRGBA(src.Bounds())
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			rgba.Set(x, y, src.At(x, y))
		}
	}
	assert.True(t, want.Sky.Equal(ComputeMasks(rgba).Sky), "*image.RGBA")

	// Generic path: wrap the image so no fast path applies.
	wrapped := struct{ image.Image }{src}
	assert.True(t, want.Vegetation.Equal(ComputeMasks(wrapped).Vegetation), "generic image.Image")
}

func TestComputeMasks_IgnoresAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 4))
	for y := 0; y < 4; y++ {
		img.SetNRGBA(0, y, color.NRGBA{G: 150, A: uint8(y * 60)})
	}

	res := ComputeMasks(img)

	assert.Equal(t, 4, res.Vegetation.Count())
}

func TestCoverageString(t *testing.T) {
	c := Coverage{Sky: 0.4567, Water: 0.1, Vegetation: 0}
	assert.Equal(t, "sky 45.7% water 10.0% vegetation 0.0%", c.String())
}
