package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/recipe-detect-mcp/internal/detection"
	"github.com/ironsheep/recipe-detect-mcp/internal/imaging"
	"github.com/ironsheep/recipe-detect-mcp/internal/logging"
)

// ErrDetector marks failures raised by the detection backend. They are
// reported to the caller and never retried.
var ErrDetector = errors.New("detector failure")

// ErrInvalidInput marks requests the caller must fix, such as a nil image.
var ErrInvalidInput = errors.New("invalid input")

// Response is the outcome of one pipeline run.
type Response struct {
	RequestID      string                         `json:"request_id"`
	IngredientList []string                       `json:"ingredient_list"`
	Enhanced       bool                           `json:"enhanced"`
	Metrics        imaging.QualityMetrics         `json:"metrics"`
	Detections     []detection.AggregatedCategory `json:"detections"`
	Skipped        int                            `json:"skipped,omitempty"`
}

// Timings records how long each stage of a run took.
type Timings struct {
	Analyze   time.Duration
	Enhance   time.Duration
	Detect    time.Duration
	Aggregate time.Duration
	Total     time.Duration
}

// Pipeline orchestrates one detector with an enhancement policy.
type Pipeline struct {
	detector detection.Detector
	policy   imaging.EnhancePolicy
	opts     detection.Options
	timeout  time.Duration
	log      *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPolicy sets the enhancement policy.
func WithPolicy(p imaging.EnhancePolicy) Option {
	return func(pl *Pipeline) { pl.policy = p }
}

// WithDetectorOptions sets the thresholds passed to the detector.
func WithDetectorOptions(o detection.Options) Option {
	return func(pl *Pipeline) { pl.opts = o }
}

// WithTimeout bounds every Run. Zero means no limit beyond the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(pl *Pipeline) { pl.timeout = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(pl *Pipeline) {
		if l != nil {
			pl.log = l
		}
	}
}

// New returns a pipeline around an already-loaded detector.
func New(d detection.Detector, opts ...Option) *Pipeline {
	p := &Pipeline{
		detector: d,
		policy:   imaging.DefaultEnhancePolicy(),
		opts:     detection.DefaultOptions(),
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Policy returns the enhancement policy in use.
func (p *Pipeline) Policy() imaging.EnhancePolicy {
	return p.policy
}

// Run processes one decoded image.
//
// # Stages
//
//  1. Analyze computes brightness, contrast and blur on the input.
//  2. DecideAndEnhance applies CLAHE on L* when the image is too dark or flat.
//  3. The detector runs on the (possibly enhanced) image.
//  4. Aggregate groups detections by category name.
//
// Metrics always describe the input, not the enhanced image.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (*Response, error) {
	resp, _, err := p.run(ctx, img)
	return resp, err
}

// RunWithTimings is Run that also reports per-stage durations.
func (p *Pipeline) RunWithTimings(ctx context.Context, img image.Image) (*Response, *Timings, error) {
	return p.run(ctx, img)
}

func (p *Pipeline) run(ctx context.Context, img image.Image) (*Response, *Timings, error) {
	if img == nil {
		return nil, nil, errors.Mark(errors.New("image is required"), ErrInvalidInput)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	log := p.log.With(zap.String(logging.FieldRequestID, requestID))
	timings := &Timings{}
	startTotal := time.Now()

	start := time.Now()
	metrics := imaging.Analyze(img)
	timings.Analyze = time.Since(start)

	start = time.Now()
	working, enhanced := imaging.DecideAndEnhance(img, metrics, p.policy)
	timings.Enhance = time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "request cancelled before detection")
	}

	start = time.Now()
	raw, err := p.detector.Detect(ctx, working, p.opts)
	timings.Detect = time.Since(start)
	if err != nil {
		log.Warn("detector failed", zap.Error(err), zap.Int64(logging.FieldDurationMS, timings.Detect.Milliseconds()))
		return nil, nil, errors.Mark(errors.Wrap(err, "detection failed"), ErrDetector)
	}

	start = time.Now()
	result := detection.Aggregate(raw, p.detector.Labels())
	timings.Aggregate = time.Since(start)
	timings.Total = time.Since(startTotal)

	if result.Skipped > 0 {
		log.Warn("skipped malformed detections", zap.Int(logging.FieldSkipped, result.Skipped))
	}
	log.Debug("pipeline finished",
		zap.Bool(logging.FieldEnhanced, enhanced),
		zap.Int(logging.FieldCount, len(result.Categories)),
		zap.Int64("analyze_ms", timings.Analyze.Milliseconds()),
		zap.Int64("enhance_ms", timings.Enhance.Milliseconds()),
		zap.Int64("detect_ms", timings.Detect.Milliseconds()),
		zap.Int64(logging.FieldDurationMS, timings.Total.Milliseconds()),
	)

	categories := result.Categories
	if categories == nil {
		categories = []detection.AggregatedCategory{}
	}
	return &Response{
		RequestID:      requestID,
		IngredientList: result.Names(),
		Enhanced:       enhanced,
		Metrics:        metrics,
		Detections:     categories,
		Skipped:        result.Skipped,
	}, timings, nil
}

// IsClientError reports whether err was caused by the request itself
// (unsupported media type, undecodable bytes, missing image) rather than by
// the server or its detector.
func IsClientError(err error) bool {
	return errors.IsAny(err, ErrInvalidInput, imaging.ErrUnsupportedMediaType, imaging.ErrDecodeFailure)
}
