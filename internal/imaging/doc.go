// Package imaging provides the image-side stages of the detection pipeline.
//
// This package decodes uploaded images, measures their quality and, when the
// quality is poor, produces a contrast-enhanced copy for the detector. All
// operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Quality Metrics
//
// Analyze projects an image onto a single 8-bit luminance plane using the
// ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B, in Q14 fixed point) and
// reports:
//   - brightness_mean: mean luminance (0-255)
//   - contrast_std: population standard deviation of luminance
//   - blur_var: variance of the 4-neighbour Laplacian response (low = blurry)
//
// # Enhancement
//
// DecideAndEnhance applies CLAHE (contrast limited adaptive histogram
// equalization) to the CIE L*a*b* lightness channel when the image is too dark
// or too flat. The a* and b* channels are left untouched so hues are preserved.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Analyze, DecideAndEnhance and
// Decode are pure functions of their inputs and never modify the source image,
// so they can be called concurrently on the same or different images.
//
// # Error Handling
//
// Only decoding can fail. Errors are marked with ErrUnsupportedMediaType or
// ErrDecodeFailure so callers can report them as client input problems:
//
//	img, err := imaging.Decode(data, "image/png")
//	if errors.Is(err, imaging.ErrUnsupportedMediaType) {
//	    // reject the upload
//	}
package imaging
