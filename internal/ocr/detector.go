package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/recipe-detect-mcp/internal/detection"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// minOCRDimension is the size below which images are upscaled before OCR.
// Tesseract recognizes small print poorly.
const minOCRDimension = 1000

// Config configures a Detector.
type Config struct {
	// Language is a Tesseract language code such as "eng" or "deu+eng".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string
}

// Detector recognizes category names printed in an image.
type Detector struct {
	cfg    Config
	labels detection.LabelMap
	vocab  *Vocabulary
}

// NewDetector builds a detector that recognizes the names in labels.
func NewDetector(labels detection.LabelMap, cfg Config) (*Detector, error) {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	vocab := NewVocabulary(labels)
	if vocab.Len() == 0 {
		return nil, errors.New("ocr detector needs at least one category name")
	}
	return &Detector{cfg: cfg, labels: labels, vocab: vocab}, nil
}

// Labels implements detection.Detector.
func (d *Detector) Labels() detection.Labels {
	return d.labels
}

// Detect implements detection.Detector.
//
// # Implementation Details
//
//  1. Images whose longer side is under 1000 px are upscaled with Lanczos
//     resampling; boxes are scaled back to the original coordinates.
//  2. The image is PNG-encoded and handed to a fresh Tesseract client.
//  3. Word boxes are matched against the vocabulary.
//  4. opts are applied: confidence filter, then per-class NMS.
func (d *Detector) Detect(ctx context.Context, img image.Image, opts detection.Options) ([]detection.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, scale := prepare(img)
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, errors.Wrap(err, "failed to encode image for OCR")
	}

	words, err := d.recognize(buf.Bytes())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := img.Bounds().Min
	dets := d.vocab.Match(words)
	for i := range dets {
		b := &dets[i].Box
		b.X1 = b.X1/scale + float64(offset.X)
		b.Y1 = b.Y1/scale + float64(offset.Y)
		b.X2 = b.X2/scale + float64(offset.X)
		b.Y2 = b.Y2/scale + float64(offset.Y)
	}
	return detection.ApplyOptions(dets, opts), nil
}

func (d *Detector) recognize(data []byte) ([]Word, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if d.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(d.cfg.TessdataPrefix); err != nil {
			return nil, errors.Wrap(err, "failed to set tessdata path")
		}
	}
	if err := client.SetLanguage(d.cfg.Language); err != nil {
		return nil, errors.Wrap(err, "failed to set language")
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, errors.Wrap(err, "failed to set image")
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errors.Wrap(err, "OCR failed")
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Box:        box.Box,
			Confidence: float64(box.Confidence) / 100.0,
			Line:       lineKey(box.BlockNum, box.ParNum, box.LineNum),
		})
	}
	return words, nil
}

// prepare copies img to an origin-anchored NRGBA, upscaling small images.
// It returns the image and the factor applied.
func prepare(img image.Image) (image.Image, float64) {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if longest == 0 || longest >= minOCRDimension {
		return imaging.Clone(img), 1
	}
	scale := 2.0
	if longest*2 < minOCRDimension {
		scale = float64(minOCRDimension) / float64(longest)
	}
	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)
	return imaging.Resize(img, w, h, imaging.Lanczos), scale
}

func lineKey(block, par, line int) int {
	return (block*1000+par)*1000 + line
}

// Version returns the Tesseract library version, or an error when the
// library cannot be initialized.
func Version() (version string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("tesseract unavailable: %v", r)
		}
	}()
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version(), nil
}
