package segment

import (
	"fmt"
	"image"
	"image/color"
)

// Mask values. A mask pixel is either fully on or fully off.
const (
	Inactive uint8 = 0
	Active   uint8 = 255
)

// Mask is a binary raster marking membership in one category.
// Pixels are stored row-major, indexed y*width+x.
type Mask struct {
	width  int
	height int
	pix    []uint8
}

// NewMask creates an all-inactive mask with the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height),
	}
}

// NewMaskFromPix builds a mask from a row-major byte slice. Any non-zero value
// becomes Active. The slice is copied.
func NewMaskFromPix(width, height int, pix []uint8) (*Mask, error) {
	if len(pix) != width*height {
		return nil, &DimensionError{
			Width:  width,
			Height: height,
			Len:    len(pix),
		}
	}
	m := NewMask(width, height)
	for i, v := range pix {
		if v != Inactive {
			m.pix[i] = Active
		}
	}
	return m, nil
}

// DimensionError is returned when pixel data does not match the declared size.
type DimensionError struct {
	Width, Height, Len int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("mask data length %d does not match %dx%d", e.Len, e.Width, e.Height)
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// Bounds implements image.Image.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// ColorModel implements image.Image.
func (m *Mask) ColorModel() color.Model { return color.GrayModel }

// At implements image.Image. Active pixels are white, inactive black.
func (m *Mask) At(x, y int) color.Color {
	return color.Gray{Y: m.Value(x, y)}
}

// Value returns the raw mask value at (x, y), or Inactive outside the bounds.
func (m *Mask) Value(x, y int) uint8 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return Inactive
	}
	return m.pix[y*m.width+x]
}

// Active reports whether the pixel at (x, y) is set.
func (m *Mask) Active(x, y int) bool {
	return m.Value(x, y) == Active
}

// Set marks the pixel at (x, y) active or inactive.
// Coordinates outside the mask are ignored.
func (m *Mask) Set(x, y int, active bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	if active {
		m.pix[y*m.width+x] = Active
	} else {
		m.pix[y*m.width+x] = Inactive
	}
}

// Pix returns a copy of the row-major mask bytes.
func (m *Mask) Pix() []uint8 {
	out := make([]uint8, len(m.pix))
	copy(out, m.pix)
	return out
}

// Count returns the number of active pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.pix {
		if v == Active {
			n++
		}
	}
	return n
}

// Coverage returns the fraction of active pixels, 0 for an empty mask.
func (m *Mask) Coverage() float64 {
	return fraction(m.Count(), len(m.pix))
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	return &Mask{
		width:  m.width,
		height: m.height,
		pix:    m.Pix(),
	}
}

// Equal reports whether two masks have the same size and pixels.
func (m *Mask) Equal(other *Mask) bool {
	if other == nil || m.width != other.width || m.height != other.height {
		return false
	}
	for i := range m.pix {
		if m.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// Gray returns the mask as an *image.Gray, the fast path for PNG encoding.
func (m *Mask) Gray() *image.Gray {
	return &image.Gray{
		Pix:    m.Pix(),
		Stride: m.width,
		Rect:   m.Bounds(),
	}
}

func fraction(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
