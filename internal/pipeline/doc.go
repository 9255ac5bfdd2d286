// Package pipeline runs the recognition flow for one image:
// quality metrics, optional low-light enhancement, detection, and
// aggregation into a per-ingredient summary.
//
// A Pipeline holds only immutable configuration and an injected detector, so
// it is safe for concurrent use whenever the detector is. Wrap detectors that
// cannot run concurrently with detection.Serialized.
package pipeline
