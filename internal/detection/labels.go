package detection

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Labels maps detector class ids to human-readable category names.
type Labels interface {
	// Name returns the name for id and whether the id is known.
	Name(id int) (string, bool)
}

// LabelMap is a Labels backed by a plain map.
type LabelMap map[int]string

// Name implements Labels.
func (m LabelMap) Name(id int) (string, bool) {
	name, ok := m[id]
	return name, ok
}

// ResolveName looks id up in names and falls back to the decimal id when the
// lookup is nil, does not know the id, or maps it to an empty name.
func ResolveName(names Labels, id int) string {
	if names != nil {
		if name, ok := names.Name(id); ok && name != "" {
			return name
		}
	}
	return strconv.Itoa(id)
}

// Overlay returns a lookup that consults top first and falls back to base.
func Overlay(top, base Labels) Labels {
	return overlay{top: top, base: base}
}

type overlay struct {
	top, base Labels
}

func (o overlay) Name(id int) (string, bool) {
	if o.top != nil {
		if name, ok := o.top.Name(id); ok {
			return name, true
		}
	}
	if o.base != nil {
		return o.base.Name(id)
	}
	return "", false
}

// LoadLabels reads a class names file.
//
// The file uses the dataset YAML layout produced by common training tools,
// with names given either as a list (index = id) or as an id → name mapping:
//
//	names:
//	  0: apple
//	  1: banana
//
//	names: [apple, banana]
//
// Other keys in the file are ignored. Names are trimmed; blank names are
// dropped so those ids fall back to their number.
func LoadLabels(path string) (LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read labels file")
	}
	labels, err := ParseLabels(data)
	if err != nil {
		return nil, errors.Wrapf(err, "labels file %s", path)
	}
	return labels, nil
}

// ParseLabels parses the YAML layout described in LoadLabels.
func ParseLabels(data []byte) (LabelMap, error) {
	var doc struct {
		Names yaml.Node `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid labels YAML")
	}

	labels := make(LabelMap)
	switch doc.Names.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := doc.Names.Decode(&list); err != nil {
			return nil, errors.Wrap(err, "names list")
		}
		for id, name := range list {
			labels.add(id, name)
		}
	case yaml.MappingNode:
		var m map[int]string
		if err := doc.Names.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "names mapping")
		}
		for id, name := range m {
			labels.add(id, name)
		}
	case 0:
		return nil, errors.New("missing names key")
	default:
		return nil, errors.New("names must be a list or a mapping")
	}

	if len(labels) == 0 {
		return nil, errors.New("no class names defined")
	}
	return labels, nil
}

func (m LabelMap) add(id int, name string) {
	if name = strings.TrimSpace(name); name != "" {
		m[id] = name
	}
}

// COCOLabels returns the 80 COCO class names used by stock YOLO weights.
func COCOLabels() LabelMap {
	labels := make(LabelMap, len(cocoNames))
	for id, name := range cocoNames {
		labels[id] = name
	}
	return labels
}

var cocoNames = [...]string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear", "hair drier",
	"toothbrush",
}
