package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Default enhancement thresholds and CLAHE parameters.
const (
	DefaultMinBrightness = 60.0
	DefaultMinContrast   = 30.0
	DefaultClipLimit     = 2.0
	DefaultTileGrid      = 8
)

// EnhancePolicy decides when an image is enhanced and how strongly.
type EnhancePolicy struct {
	// MinBrightness triggers enhancement when BrightnessMean is below it.
	MinBrightness float64 `json:"min_brightness"`

	// MinContrast triggers enhancement when ContrastStd is below it.
	MinContrast float64 `json:"min_contrast"`

	// ClipLimit bounds contrast amplification per tile. Values around 2-4
	// give a natural look; 0 disables clipping.
	ClipLimit float64 `json:"clip_limit"`

	// TileGrid is the number of tiles along each axis.
	TileGrid int `json:"tile_grid"`
}

// DefaultEnhancePolicy returns the policy used when nothing is configured:
// enhance when brightness < 60 or contrast < 30, CLAHE clip 2.0 on an 8×8 grid.
func DefaultEnhancePolicy() EnhancePolicy {
	return EnhancePolicy{
		MinBrightness: DefaultMinBrightness,
		MinContrast:   DefaultMinContrast,
		ClipLimit:     DefaultClipLimit,
		TileGrid:      DefaultTileGrid,
	}
}

// ShouldEnhance reports whether metrics describe an image that is too dark or
// too flat.
func (p EnhancePolicy) ShouldEnhance(m QualityMetrics) bool {
	return m.BrightnessMean < p.MinBrightness || m.ContrastStd < p.MinContrast
}

// DecideAndEnhance applies the policy to an image.
//
// Returns:
//   - image.Image: img itself when no enhancement is needed, otherwise a new
//     *image.NRGBA produced by Enhance.
//   - bool: whether enhancement was applied.
//
// img is never modified.
func DecideAndEnhance(img image.Image, m QualityMetrics, p EnhancePolicy) (image.Image, bool) {
	if !p.ShouldEnhance(m) {
		return img, false
	}
	return Enhance(img, p.ClipLimit, p.TileGrid), true
}

// Enhance boosts local contrast on the lightness channel only.
//
// # Algorithm
//
//  1. Copy the image to NRGBA (origin moves to 0,0; size is unchanged).
//  2. Convert every pixel to CIE L*a*b* (D65) and quantize L* to 0-255.
//  3. Run CLAHE over the L* plane with the given clip limit and tile grid.
//  4. Recombine the new L* with the original a* and b*, convert back to sRGB
//     and clamp into gamut. Alpha is copied unchanged.
func Enhance(img image.Image, clipLimit float64, tileGrid int) *image.NRGBA {
	dst := imaging.Clone(img)
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return dst
	}

	lPlane := make([]uint8, w*h)
	aPlane := make([]float64, w*h)
	bPlane := make([]float64, w*h)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				i := x * 4
				l, a, bb := toLab(row[i], row[i+1], row[i+2])
				lPlane[y*w+x] = saturate(l * 255)
				aPlane[y*w+x] = a
				bPlane[y*w+x] = bb
			}
		}
	})

	equalized := clahe(lPlane, w, h, clipLimit, tileGrid)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				k := y*w + x
				r, g, bl := fromLab(float64(equalized[k])/255, aPlane[k], bPlane[k])
				i := x * 4
				row[i], row[i+1], row[i+2] = r, g, bl
			}
		}
	})
	return dst
}

// toLab converts 8-bit sRGB to L*a*b* with L in [0,1].
func toLab(r, g, b uint8) (l, a, bb float64) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return c.Lab()
}

// fromLab converts L*a*b* back to 8-bit sRGB, clamping out-of-gamut colors.
func fromLab(l, a, bb float64) (r, g, b uint8) {
	return colorful.Lab(l, a, bb).Clamped().RGB255()
}
