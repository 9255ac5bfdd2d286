package main

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/recipe-detect-mcp/internal/config"
	"github.com/ironsheep/recipe-detect-mcp/internal/detection"
	"github.com/ironsheep/recipe-detect-mcp/internal/logging"
	"github.com/ironsheep/recipe-detect-mcp/internal/ocr"
	"github.com/ironsheep/recipe-detect-mcp/internal/pipeline"
)

// loadLabels returns the configured names file or the COCO-80 names.
func loadLabels(cfg config.DetectorConfig) (detection.LabelMap, error) {
	if cfg.Labels == "" {
		return detection.COCOLabels(), nil
	}
	return detection.LoadLabels(cfg.Labels)
}

// buildDetector constructs the configured backend once at startup.
func buildDetector(cfg *config.Config, log *zap.Logger) (detection.Detector, error) {
	labels, err := loadLabels(cfg.Detector)
	if err != nil {
		return nil, err
	}

	var d detection.Detector
	switch cfg.Detector.Backend {
	case config.BackendReplay:
		if cfg.Detector.ReplayFile == "" {
			return nil, errors.New("detector.replay_file is required for the replay backend")
		}
		d, err = detection.LoadReplayDetector(cfg.Detector.ReplayFile, labels)
	case config.BackendOCR:
		d, err = ocr.NewDetector(labels, ocr.Config{
			Language:       cfg.Detector.OCRLanguage,
			TessdataPrefix: cfg.Detector.Tessdata,
		})
	default:
		err = errors.Newf("unknown detector backend %q", cfg.Detector.Backend)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s detector", cfg.Detector.Backend)
	}

	if cfg.Detector.Serialize {
		d = detection.Serialized(d)
	}
	log.Info("detector ready",
		zap.String(logging.FieldBackend, cfg.Detector.Backend),
		zap.Int(logging.FieldCount, len(labels)),
		zap.Bool("serialized", cfg.Detector.Serialize),
	)
	return d, nil
}

// buildPipeline wires the configured detector into a pipeline.
func buildPipeline(cfg *config.Config, log *zap.Logger) (*pipeline.Pipeline, error) {
	d, err := buildDetector(cfg, log)
	if err != nil {
		return nil, err
	}
	return pipeline.New(d,
		pipeline.WithPolicy(cfg.EnhancePolicy()),
		pipeline.WithDetectorOptions(cfg.DetectorOptions()),
		pipeline.WithTimeout(cfg.Pipeline.Timeout),
		pipeline.WithLogger(log),
	), nil
}
