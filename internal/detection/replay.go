package detection

import (
	"context"
	"encoding/json"
	"image"
	"os"

	"github.com/cockroachdb/errors"
)

// Recording is the on-disk layout of a detector export:
//
//	{"detections": [
//	  {"class_id": 47, "ingredient": "apple", "confidence": 0.912, "bbox": [10.5, 20, 110, 140.2]}
//	]}
//
// ingredient is optional; when present it names class_id for this recording.
type Recording struct {
	Detections []RecordedDetection `json:"detections"`
}

// RecordedDetection is one entry of a Recording.
type RecordedDetection struct {
	ClassID    int        `json:"class_id"`
	Ingredient string     `json:"ingredient,omitempty"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

// ReplayDetector serves detections captured from an earlier detector run.
//
// It ignores the pixels it is given and returns the recorded boxes after
// applying the requested thresholds, which makes the whole pipeline runnable
// without a model. ReplayDetector is immutable after construction and safe
// for concurrent use.
type ReplayDetector struct {
	detections []RawDetection
	labels     Labels
}

// NewReplayDetector builds a detector from an in-memory recording. Names
// recorded alongside class ids take precedence over base.
func NewReplayDetector(rec Recording, base Labels) *ReplayDetector {
	names := make(LabelMap)
	dets := make([]RawDetection, 0, len(rec.Detections))
	for _, d := range rec.Detections {
		if d.Ingredient != "" {
			names[d.ClassID] = d.Ingredient
		}
		dets = append(dets, RawDetection{
			CategoryID: d.ClassID,
			Confidence: d.Confidence,
			Box:        Box{X1: d.BBox[0], Y1: d.BBox[1], X2: d.BBox[2], Y2: d.BBox[3]},
		})
	}

	var labels Labels = names
	if base != nil {
		labels = Overlay(names, base)
	}
	return &ReplayDetector{detections: dets, labels: labels}
}

// LoadReplayDetector reads a Recording from a JSON file.
func LoadReplayDetector(path string, base Labels) (*ReplayDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read recording")
	}

	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "invalid recording %s", path)
	}
	return NewReplayDetector(rec, base), nil
}

// Detect implements Detector.
func (r *ReplayDetector) Detect(ctx context.Context, _ image.Image, opts Options) ([]RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ApplyOptions(r.detections, opts), nil
}

// Labels implements Detector.
func (r *ReplayDetector) Labels() Labels {
	return r.labels
}
