package detection

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ErrMalformedDetection marks a detection that violates the RawDetection
// contract.
var ErrMalformedDetection = errors.New("malformed detection")

// Validate checks that a detection has a finite confidence in [0, 1] and a
// finite, non-empty box (x1 < x2, y1 < y2).
func Validate(d RawDetection) error {
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
		return errors.Mark(errors.Newf("confidence %v outside [0, 1]", d.Confidence), ErrMalformedDetection)
	}
	for _, v := range [4]float64{d.Box.X1, d.Box.Y1, d.Box.X2, d.Box.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Mark(errors.Newf("non-finite box %+v", d.Box), ErrMalformedDetection)
		}
	}
	if d.Box.X1 >= d.Box.X2 || d.Box.Y1 >= d.Box.Y2 {
		return errors.Mark(errors.Newf("empty box %+v", d.Box), ErrMalformedDetection)
	}
	return nil
}
