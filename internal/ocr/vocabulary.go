package ocr

import (
	"image"
	"strings"
	"unicode"

	"github.com/ironsheep/recipe-detect-mcp/internal/detection"
)

// maxPhraseWords is the longest category name, in words, that is matched.
const maxPhraseWords = 3

// Word is one OCR word with its location and 0-1 confidence.
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
	// Line identifies the text line; only words on the same line form phrases.
	Line int
}

// Vocabulary maps normalized category names to class ids.
type Vocabulary struct {
	ids map[string]int
}

// NewVocabulary indexes every name in labels. When two ids share a name the
// lowest id wins so the mapping is deterministic.
func NewVocabulary(labels detection.LabelMap) *Vocabulary {
	v := &Vocabulary{ids: make(map[string]int, len(labels))}
	for id, name := range labels {
		key := normalizePhrase(name)
		if key == "" {
			continue
		}
		if prev, ok := v.ids[key]; ok && prev < id {
			continue
		}
		v.ids[key] = id
	}
	return v
}

// Len returns the number of distinct names.
func (v *Vocabulary) Len() int {
	return len(v.ids)
}

// Lookup returns the class id for a phrase, trying singular forms of the last
// word when the phrase itself is unknown.
func (v *Vocabulary) Lookup(phrase string) (int, bool) {
	key := normalizePhrase(phrase)
	if key == "" {
		return 0, false
	}
	if id, ok := v.ids[key]; ok {
		return id, true
	}
	for _, s := range singulars(key) {
		if id, ok := v.ids[s]; ok {
			return id, true
		}
	}
	return 0, false
}

// Match scans words for category names.
//
// Longer phrases are preferred: at each position the longest matching run of
// up to three words on the same line is taken and its words are consumed.
// The phrase box is the union of its word boxes and its confidence the lowest
// word confidence.
func (v *Vocabulary) Match(words []Word) []detection.RawDetection {
	var dets []detection.RawDetection
	for i := 0; i < len(words); {
		matched := 0
		for n := min(maxPhraseWords, len(words)-i); n >= 1; n-- {
			run := words[i : i+n]
			if !sameLine(run) {
				continue
			}
			id, ok := v.Lookup(joinWords(run))
			if !ok {
				continue
			}
			dets = append(dets, phraseDetection(id, run))
			matched = n
			break
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}
	return dets
}

func phraseDetection(id int, run []Word) detection.RawDetection {
	box := run[0].Box
	conf := run[0].Confidence
	for _, w := range run[1:] {
		box = box.Union(w.Box)
		conf = min(conf, w.Confidence)
	}
	return detection.RawDetection{
		CategoryID: id,
		Confidence: conf,
		Box: detection.Box{
			X1: float64(box.Min.X),
			Y1: float64(box.Min.Y),
			X2: float64(box.Max.X),
			Y2: float64(box.Max.Y),
		},
	}
}

func sameLine(run []Word) bool {
	for _, w := range run[1:] {
		if w.Line != run[0].Line {
			return false
		}
	}
	return true
}

func joinWords(run []Word) string {
	parts := make([]string, len(run))
	for i, w := range run {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// normalizePhrase lower-cases a phrase, trims punctuation from each word and
// collapses whitespace.
func normalizePhrase(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

// singulars returns candidate singular forms of the last word of a phrase.
func singulars(phrase string) []string {
	head, last := "", phrase
	if i := strings.LastIndexByte(phrase, ' '); i >= 0 {
		head, last = phrase[:i+1], phrase[i+1:]
	}

	var out []string
	switch {
	case strings.HasSuffix(last, "ies") && len(last) > 3:
		out = append(out, head+last[:len(last)-3]+"y")
	case strings.HasSuffix(last, "oes") || strings.HasSuffix(last, "ches") ||
		strings.HasSuffix(last, "shes") || strings.HasSuffix(last, "xes"):
		out = append(out, head+last[:len(last)-2])
	}
	if strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "ss") && len(last) > 1 {
		out = append(out, head+last[:len(last)-1])
	}
	return out
}
