package detection

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Aggregate merges raw detections into one record per category name.
//
// Parameters:
//   - raw: Detections in detector emission order.
//   - names: Category lookup. Unknown ids fall back to their decimal string.
//     A nil lookup resolves every id that way.
//
// # Algorithm
//
//  1. Walk raw in order, skipping (and counting) detections rejected by
//     Validate.
//  2. Resolve the category name and build the rounded BoxRecord.
//  3. Unseen name: insert a new category with Count 1 and Best = this box.
//     Seen name: increment Count, append to Boxes, and replace Best when the
//     raw confidence is strictly greater than the current best's.
//  4. Emit categories in first-seen order and stable-sort them by best raw
//     confidence, descending. Ties keep first-seen order.
//
// Aggregate never fails; an empty or fully malformed input yields an empty
// Categories slice.
func Aggregate(raw []RawDetection, names Labels) Result {
	merged := orderedmap.New[string, *AggregatedCategory]()
	skipped := 0

	for _, d := range raw {
		if err := Validate(d); err != nil {
			skipped++
			continue
		}

		name := ResolveName(names, d.CategoryID)
		rec := NewBoxRecord(d)

		cat, ok := merged.Get(name)
		if !ok {
			merged.Set(name, &AggregatedCategory{
				Ingredient:     name,
				Count:          1,
				Best:           rec,
				Boxes:          []BoxRecord{rec},
				bestConfidence: d.Confidence,
			})
			continue
		}

		cat.Count++
		cat.Boxes = append(cat.Boxes, rec)
		if d.Confidence > cat.bestConfidence {
			cat.Best = rec
			cat.bestConfidence = d.Confidence
		}
	}

	categories := make([]AggregatedCategory, 0, merged.Len())
	for pair := merged.Oldest(); pair != nil; pair = pair.Next() {
		categories = append(categories, *pair.Value)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].bestConfidence > categories[j].bestConfidence
	})

	return Result{Categories: categories, Skipped: skipped}
}
