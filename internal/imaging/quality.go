package imaging

import (
	"image"
	"math"
)

// QualityMetrics describes how bright, how contrasted and how sharp an image is.
//
// All values are computed on the luminance channel and rounded to two decimals.
type QualityMetrics struct {
	// BrightnessMean is the mean luminance (0-255).
	BrightnessMean float64 `json:"brightness_mean"`

	// ContrastStd is the population standard deviation of luminance.
	ContrastStd float64 `json:"contrast_std"`

	// BlurVar is the variance of the Laplacian response. Higher values mean
	// more edges and a sharper image; values near zero indicate heavy blur or
	// a flat image.
	BlurVar float64 `json:"blur_var"`
}

// Analyze computes quality metrics for an image.
//
// # Algorithm
//
//  1. Luminance: each pixel becomes round(0.299*R + 0.587*G + 0.114*B) using
//     Q14 fixed-point weights, so results are bit-exact across platforms.
//
//  2. Brightness and contrast: mean and population standard deviation of the
//     luminance plane.
//
//  3. Blur: the plane is convolved with the Laplacian kernel
//
//     0  1  0
//     1 -4  1
//     0  1  0
//
//     using reflect-101 borders, and the population variance of the response
//     is reported.
//
// Rounding to two decimals happens once, after all accumulation. An image
// without pixels yields zero metrics.
func Analyze(img image.Image) QualityMetrics {
	plane := newLumaPlane(img)
	n := len(plane.pix)
	if n == 0 {
		return QualityMetrics{}
	}

	mean, std := meanStd(plane)
	return QualityMetrics{
		BrightnessMean: round2(mean),
		ContrastStd:    round2(std),
		BlurVar:        round2(laplacianVariance(plane)),
	}
}

func meanStd(p *lumaPlane) (mean, std float64) {
	var sum float64
	for _, v := range p.pix {
		sum += float64(v)
	}
	mean = sum / float64(len(p.pix))

	var sq float64
	for _, v := range p.pix {
		d := float64(v) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(p.pix)))
}

// laplacianVariance returns the variance of the 4-neighbour Laplacian.
func laplacianVariance(p *lumaPlane) float64 {
	w, h := p.width, p.height
	resp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		up := reflect101(y-1, h)
		down := reflect101(y+1, h)
		for x := 0; x < w; x++ {
			left := reflect101(x-1, w)
			right := reflect101(x+1, w)
			resp[y*w+x] = p.at(x, up) + p.at(x, down) + p.at(left, y) + p.at(right, y) - 4*p.at(x, y)
		}
	}

	var sum float64
	for _, v := range resp {
		sum += v
	}
	mean := sum / float64(len(resp))

	var sq float64
	for _, v := range resp {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(resp))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
