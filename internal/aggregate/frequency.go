package aggregate

import (
	"slices"

	"github.com/nao1215/cta/internal/model"
)

// FrequencyTable counts class occurrences and remembers the order in which
// each class was first added.
type FrequencyTable struct {
	index  map[string]int
	counts []model.ClassCount
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{index: make(map[string]int)}
}

// Add increments the count of every class in classes by one.
func (f *FrequencyTable) Add(classes ...string) {
	for _, c := range classes {
		if i, ok := f.index[c]; ok {
			f.counts[i].Count++
			continue
		}
		f.index[c] = len(f.counts)
		f.counts = append(f.counts, model.ClassCount{Class: c, Count: 1})
	}
}

// Len returns the number of distinct classes.
func (f *FrequencyTable) Len() int {
	return len(f.counts)
}

// Count returns how often class was added.
func (f *FrequencyTable) Count(class string) int {
	if i, ok := f.index[class]; ok {
		return f.counts[i].Count
	}
	return 0
}

// Ranked returns at most topN classes ordered by descending count.
// Classes with equal counts stay in first-seen order.
// A non-positive topN returns every class.
func (f *FrequencyTable) Ranked(topN int) []model.ClassCount {
	ranked := slices.Clone(f.counts)
	slices.SortStableFunc(ranked, func(a, b model.ClassCount) int {
		return b.Count - a.Count
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	if ranked == nil {
		ranked = []model.ClassCount{}
	}
	return ranked
}
