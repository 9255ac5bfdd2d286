package imaging

import (
	"image"
	"image/color"
)

// createInMemoryImage creates a solid color test image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createCheckerImage creates a checkerboard of two gray levels with square cells.
func createCheckerImage(width, height, cell int, dark, light uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := dark
			if (x/cell+y/cell)%2 == 1 {
				v = light
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// createDimRampImage creates a dark, low-contrast image whose gray level cycles
// through base..base+15 along the diagonals, so every tile sees the same
// spread of values.
func createDimRampImage(width, height int, base uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := base + uint8((x+y)%16)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func pixelsEqual(a, b image.Image) bool {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return false
	}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return false
			}
		}
	}
	return true
}
