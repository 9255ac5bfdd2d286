package detection

import (
	"context"
	"image"
)

// Default detector thresholds.
const (
	DefaultConfidence = 0.4
	DefaultIoU        = 0.5
)

// Options are the thresholds a detector applies before returning results.
type Options struct {
	// Confidence drops detections scoring below it.
	Confidence float64 `json:"confidence"`

	// IoU suppresses same-class boxes overlapping a stronger box by more
	// than this intersection-over-union.
	IoU float64 `json:"iou"`
}

// DefaultOptions returns confidence 0.4 and IoU 0.5.
func DefaultOptions() Options {
	return Options{Confidence: DefaultConfidence, IoU: DefaultIoU}
}

// Detector is a loaded detection backend.
//
// Implementations are typically expensive to construct and are created once,
// then shared. Detect may be called from several goroutines only if the
// implementation documents that it is safe; otherwise wrap it with Serialized.
type Detector interface {
	// Detect returns the detections for img in backend order.
	Detect(ctx context.Context, img image.Image, opts Options) ([]RawDetection, error)

	// Labels resolves the class ids this detector emits.
	Labels() Labels
}

// DetectFunc is the signature of a detection callback.
type DetectFunc func(ctx context.Context, img image.Image, opts Options) ([]RawDetection, error)

// FuncDetector adapts a DetectFunc and a label lookup into a Detector.
type FuncDetector struct {
	Fn    DetectFunc
	Names Labels
}

// Detect implements Detector.
func (f FuncDetector) Detect(ctx context.Context, img image.Image, opts Options) ([]RawDetection, error) {
	return f.Fn(ctx, img, opts)
}

// Labels implements Detector.
func (f FuncDetector) Labels() Labels {
	return f.Names
}

// Serialized wraps a detector that cannot run concurrently so that at most
// one Detect call is in flight. Waiting callers give up when their context
// is cancelled.
func Serialized(d Detector) Detector {
	return &serialized{inner: d, sem: make(chan struct{}, 1)}
}

type serialized struct {
	inner Detector
	sem   chan struct{}
}

func (s *serialized) Detect(ctx context.Context, img image.Image, opts Options) ([]RawDetection, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.sem }()
	return s.inner.Detect(ctx, img, opts)
}

func (s *serialized) Labels() Labels {
	return s.inner.Labels()
}
