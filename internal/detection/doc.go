// Package detection turns raw object-detector output into one ranked record
// per item category.
//
// The detector itself (a loaded neural network, an OCR engine, a recording) is
// an external collaborator behind the Detector interface. This package owns
// what happens to its output:
//
//  1. Aggregate groups RawDetection values by category name, keeping the
//     categories in first-seen order, counting instances and tracking the
//     highest-confidence instance of each.
//  2. The categories are stable-sorted by that best confidence, highest first.
//
// # Best Instance Selection
//
// The first detection of a category is its initial best. A later detection
// replaces it only when its confidence is strictly greater, so on exact ties
// the earliest detection wins. Comparisons use the full-precision confidence;
// the rounded values (3 decimals for confidence, 1 decimal for coordinates)
// exist only for display.
//
// # Category Names
//
// Names come from a Labels lookup supplied with the detector. An id the lookup
// does not know resolves to its decimal string ("17"), never to an error.
//
// # Coordinate System
//
// Boxes are axis-aligned (x1, y1, x2, y2) in pixel coordinates of the image
// given to the detector, with the origin at the top-left corner.
//
// # Malformed Input
//
// Detections with a non-finite or out-of-range confidence, non-finite
// coordinates, or an empty box are skipped and counted in Result.Skipped
// rather than failing the whole batch.
package detection
