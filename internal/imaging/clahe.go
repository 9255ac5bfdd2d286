package imaging

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

const histBins = 256

// clahe equalizes an 8-bit plane with contrast limited adaptive histogram
// equalization and returns a new plane.
//
// The plane is split into a tilesX × tilesY grid (at most grid tiles per axis,
// never more tiles than pixels). When the plane does not divide evenly the
// last tiles are completed with reflect-101 padding, so every tile histogram
// has the same number of samples. Each histogram is clipped at
// clipLimit*tileArea/256 (at least 1); the excess is spread over all bins and
// the remainder is dealt out at a regular stride. Output values are bilinear
// blends of the four surrounding tile mappings.
//
// A clipLimit <= 0 disables clipping, which degenerates to plain adaptive
// histogram equalization.
func clahe(src []uint8, width, height int, clipLimit float64, grid int) []uint8 {
	out := make([]uint8, len(src))
	if width == 0 || height == 0 {
		return out
	}
	if grid < 1 {
		grid = 1
	}
	tilesX := min(grid, width)
	tilesY := min(grid, height)
	tileW := (width + tilesX - 1) / tilesX
	tileH := (height + tilesY - 1) / tilesY
	tileArea := tileW * tileH

	clip := 0
	if clipLimit > 0 {
		clip = max(int(clipLimit*float64(tileArea)/histBins), 1)
	}

	luts := make([][histBins]uint8, tilesX*tilesY)
	parallel.Line(tilesY, func(start, end int) {
		for ty := start; ty < end; ty++ {
			for tx := 0; tx < tilesX; tx++ {
				var hist [histBins]int
				for y := ty * tileH; y < (ty+1)*tileH; y++ {
					row := reflect101(y, height) * width
					for x := tx * tileW; x < (tx+1)*tileW; x++ {
						hist[src[row+reflect101(x, width)]]++
					}
				}
				if clip > 0 {
					clipHistogram(&hist, clip)
				}
				luts[ty*tilesX+tx] = histogramLUT(&hist, tileArea)
			}
		}
	})

	invTW := 1.0 / float64(tileW)
	invTH := 1.0 / float64(tileH)

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			tyf := float64(y)*invTH - 0.5
			ty1 := int(math.Floor(tyf))
			ty2 := ty1 + 1
			ya := tyf - float64(ty1)
			ya1 := 1 - ya
			ty1 = max(ty1, 0)
			ty2 = min(ty2, tilesY-1)

			for x := 0; x < width; x++ {
				txf := float64(x)*invTW - 0.5
				tx1 := int(math.Floor(txf))
				tx2 := tx1 + 1
				xa := txf - float64(tx1)
				xa1 := 1 - xa
				tx1 = max(tx1, 0)
				tx2 = min(tx2, tilesX-1)

				v := src[y*width+x]
				top := float64(luts[ty1*tilesX+tx1][v])*xa1 + float64(luts[ty1*tilesX+tx2][v])*xa
				bottom := float64(luts[ty2*tilesX+tx1][v])*xa1 + float64(luts[ty2*tilesX+tx2][v])*xa
				out[y*width+x] = saturate(top*ya1 + bottom*ya)
			}
		}
	})
	return out
}

// clipHistogram caps every bin at limit and redistributes the excess.
func clipHistogram(hist *[histBins]int, limit int) {
	excess := 0
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}

	batch := excess / histBins
	residual := excess - batch*histBins
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(histBins/residual, 1)
		for i := 0; i < histBins && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}
}

// histogramLUT turns a histogram into a cumulative mapping onto 0-255.
func histogramLUT(hist *[histBins]int, total int) [histBins]uint8 {
	var lut [histBins]uint8
	scale := float64(histBins-1) / float64(total)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = saturate(float64(sum) * scale)
	}
	return lut
}

func saturate(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
