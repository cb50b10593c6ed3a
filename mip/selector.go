package mip

import "sort"

// DefaultBudgetMultiplier converts a pixel width into a bin budget: at two
// bins per pixel a min/max band already saturates what the column of pixels
// can show, so finer levels only add work, not fidelity.
const DefaultBudgetMultiplier = 2.0

// SelectLevel picks the level to render for a viewport, using the default
// budget of DefaultBudgetMultiplier bins per pixel. See SelectLevelBudget.
func SelectLevel(m *Map, from, to int64, pixelWidth int) int {
	return SelectLevelBudget(m, from, to, int(float64(pixelWidth)*DefaultBudgetMultiplier))
}

// SelectLevelBudget returns the finest level whose count of bins
// intersecting [from, to] does not exceed budget.
//
// In-range bin count never increases from one level to the next coarser
// one: a parent bin intersects the range exactly when at least one of its
// children does. That monotonicity makes binary search over the level index
// valid, so selection costs O(log levels × log bins) per call and runs
// comfortably once per rendered frame.
//
// Fallbacks, none of which are errors:
//   - viewport outside the series extent, inverted, or degenerate series
//     (≤ 1 sample): level 0 (a range query there yields nothing anyway)
//   - even the coarsest level exceeds the budget: the coarsest level
func SelectLevelBudget(m *Map, from, to int64, budget int) int {
	if m.SampleCount() <= 1 {
		return 0
	}
	first, last, ok := m.TimeExtent()
	if !ok || from > to || to < first || from > last {
		return 0
	}

	levelCount := m.LevelCount()
	k := sort.Search(levelCount, func(i int) bool {
		return m.levels[i].CountInRange(from, to) <= budget
	})
	if k == levelCount {
		return levelCount - 1
	}

	return k
}
