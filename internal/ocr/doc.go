// Package ocr provides a Tesseract-backed detector that reads printed item
// names (packaging, jar labels, shelf tags) and reports them as detections.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Every
// recognized word, and every run of up to three adjacent words on the same
// line, is matched against the category names of a label map. Matches become
// detection.RawDetection values whose box is the word box and whose confidence
// is the Tesseract word confidence scaled to 0-1.
//
// # Prerequisites
//
// Tesseract must be installed on the system, together with the language data
// for the configured language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A custom tessdata directory can be supplied with Config.TessdataPrefix.
//
// # Matching
//
// Words are lower-cased and stripped of surrounding punctuation before lookup.
// Simple English plurals ("apples", "tomatoes", "cherries") also match their
// singular category name.
//
// # Thread Safety
//
// Each Detect call creates and closes its own Tesseract client, so a Detector
// can be shared between goroutines.
package ocr
