// Package morph applies morphological cleanup to segmentation masks.
package morph

import (
	"fmt"
	"image"
	"runtime"

	"panomask/internal/segment"

	"gocv.io/x/gocv"
)

// Cleanup fills pinholes in a mask and then drops isolated specks, running
// iterations closing passes followed by as many opening passes with a 3x3
// rectangular kernel. iterations <= 0 returns an unmodified copy.
func Cleanup(m *segment.Mask, iterations int) (*segment.Mask, error) {
	if iterations <= 0 || m.Width() == 0 || m.Height() == 0 {
		return m.Clone(), nil
	}

	// The Mat borrows pix; it must stay reachable until ToBytes.
	pix := m.Pix()
	mat, err := gocv.NewMatFromBytes(m.Height(), m.Width(), gocv.MatTypeCV8U, pix)
	if err != nil {
		return nil, fmt.Errorf("mask to mat: %w", err)
	}
	defer mat.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	passes := make([]gocv.MorphType, 0, 2*iterations)
	for i := 0; i < iterations; i++ {
		passes = append(passes, gocv.MorphClose)
	}
	for i := 0; i < iterations; i++ {
		passes = append(passes, gocv.MorphOpen)
	}
	for _, op := range passes {
		gocv.MorphologyEx(mat, &mat, op, kernel)
	}

	out, err := segment.NewMaskFromPix(m.Width(), m.Height(), mat.ToBytes())
	runtime.KeepAlive(pix)
	if err != nil {
		return nil, fmt.Errorf("mat to mask: %w", err)
	}
	return out, nil
}

// Cleaner returns a function that cleans every mask with the given strength,
// suitable for batch.Options.Cleanup.
func Cleaner(iterations int) func(*segment.Mask) (*segment.Mask, error) {
	return func(m *segment.Mask) (*segment.Mask, error) {
		return Cleanup(m, iterations)
	}
}
