package detection

import "math"

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	X1 float64 `json:"x1"` // Left edge
	Y1 float64 `json:"y1"` // Top edge
	X2 float64 `json:"x2"` // Right edge
	Y2 float64 `json:"y2"` // Bottom edge
}

// Width returns X2 - X1.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the box area, or 0 for degenerate boxes.
func (b Box) Area() float64 {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return 0
	}
	return b.Width() * b.Height()
}

// RawDetection is one box emitted by a detector.
type RawDetection struct {
	// CategoryID is the detector's numeric class id.
	CategoryID int `json:"class_id"`

	// Confidence is the detector score in [0, 1].
	Confidence float64 `json:"confidence"`

	// Box is the detected region.
	Box Box `json:"box"`
}

// BoxRecord is the rounded, display-ready view of a detection.
type BoxRecord struct {
	// Confidence is rounded to 3 decimals.
	Confidence float64 `json:"confidence"`

	// BBox is [x1, y1, x2, y2] with each coordinate rounded to 1 decimal.
	BBox [4]float64 `json:"bbox"`
}

// NewBoxRecord rounds a raw detection for display.
func NewBoxRecord(d RawDetection) BoxRecord {
	return BoxRecord{
		Confidence: roundTo(d.Confidence, 3),
		BBox: [4]float64{
			roundTo(d.Box.X1, 1),
			roundTo(d.Box.Y1, 1),
			roundTo(d.Box.X2, 1),
			roundTo(d.Box.Y2, 1),
		},
	}
}

// AggregatedCategory merges every detection of one category.
//
// Count always equals len(Boxes). Best is the element of Boxes whose raw
// confidence is highest, earliest first on ties. Boxes keeps detector order.
type AggregatedCategory struct {
	Ingredient string      `json:"ingredient"`
	Count      int         `json:"count"`
	Best       BoxRecord   `json:"best"`
	Boxes      []BoxRecord `json:"boxes"`

	// bestConfidence is the unrounded confidence of Best.
	bestConfidence float64
}

// BestConfidence returns the full-precision confidence of the best instance.
func (c AggregatedCategory) BestConfidence() float64 {
	return c.bestConfidence
}

// Result is the aggregated output of one detector run.
type Result struct {
	// Categories are sorted by best confidence, highest first.
	Categories []AggregatedCategory `json:"detections"`

	// Skipped counts malformed detections that were dropped.
	Skipped int `json:"skipped,omitempty"`
}

// Names returns the category names in result order. Names are unique by
// construction.
func (r Result) Names() []string {
	names := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		names[i] = c.Ingredient
	}
	return names
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
