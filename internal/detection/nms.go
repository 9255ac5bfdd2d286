package detection

import "sort"

// IoU returns the intersection over union of two boxes.
func IoU(a, b Box) float64 {
	x1 := max(a.X1, b.X1)
	y1 := max(a.Y1, b.Y1)
	x2 := min(a.X2, b.X2)
	y2 := min(a.Y2, b.Y2)

	if x2 <= x1 || y2 <= y1 {
		return 0.0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0.0
	}
	return intersection / union
}

// FilterConfidence keeps detections scoring at least minConfidence, in order.
func FilterConfidence(dets []RawDetection, minConfidence float64) []RawDetection {
	kept := make([]RawDetection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence >= minConfidence {
			kept = append(kept, d)
		}
	}
	return kept
}

// NonMaxSuppression performs greedy per-class NMS.
//
// Detections are visited by descending confidence (stable for ties). A
// detection is suppressed when it overlaps an already kept detection of the
// same class with IoU greater than iouThreshold. The survivors are returned
// highest confidence first, the order detectors conventionally emit.
func NonMaxSuppression(dets []RawDetection, iouThreshold float64) []RawDetection {
	if len(dets) <= 1 {
		return append([]RawDetection(nil), dets...)
	}

	idx := make([]int, len(dets))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return dets[idx[i]].Confidence > dets[idx[j]].Confidence
	})

	kept := make([]RawDetection, 0, len(dets))
	suppressed := make([]bool, len(dets))

	for i, a := range idx {
		if suppressed[a] {
			continue
		}
		kept = append(kept, dets[a])
		for _, b := range idx[i+1:] {
			if suppressed[b] || dets[b].CategoryID != dets[a].CategoryID {
				continue
			}
			if IoU(dets[a].Box, dets[b].Box) > iouThreshold {
				suppressed[b] = true
			}
		}
	}
	return kept
}

// ApplyOptions filters by confidence and then runs per-class NMS.
func ApplyOptions(dets []RawDetection, opts Options) []RawDetection {
	return NonMaxSuppression(FilterConfidence(dets, opts.Confidence), opts.IoU)
}
