package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// BT.601 luma weights in Q14 fixed point (0.299, 0.587, 0.114).
const (
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
	lumaShift = 14
)

// lumaPlane is a single-channel 8-bit luminance projection of an image,
// stored row-major.
type lumaPlane struct {
	width  int
	height int
	pix    []uint8
}

// asNRGBA returns img as *image.NRGBA, copying only when the concrete type
// differs. The result must be treated as read-only.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	return imaging.Clone(img)
}

// luma converts 8-bit RGB to rounded BT.601 luminance.
func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*lumaR + uint32(g)*lumaG + uint32(b)*lumaB + 1<<(lumaShift-1)) >> lumaShift)
}

// newLumaPlane projects img onto its luminance channel. Alpha is ignored, the
// same way a three-channel decode drops it.
func newLumaPlane(img image.Image) *lumaPlane {
	src := asNRGBA(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := &lumaPlane{width: w, height: h, pix: make([]uint8, w*h)}

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			out := plane.pix[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				i := x * 4
				out[x] = luma(row[i], row[i+1], row[i+2])
			}
		}
	})
	return plane
}

func (p *lumaPlane) at(x, y int) float64 {
	return float64(p.pix[y*p.width+x])
}

// reflect101 maps an out-of-range index into [0, n) by mirroring around the
// edge pixel without repeating it (…2 1 | 0 1 2 … n-2 n-1 | n-2 n-3…).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
