package mip

import (
	"fmt"
	"iter"
	"math"
	"sort"

	"github.com/arloliu/plotmip/errs"
)

// Bin is one aggregated unit of a level: the time range it covers and the
// extrema of every raw sample inside that range.
//
// The range is [Start, End) except for the last bin of a level, which closes
// at End inclusively so the union of all bins covers the series extent
// exactly. MinTs and MaxTs are the timestamps of the raw samples that
// attained Min and Max; when several samples tie, the earliest wins.
type Bin struct {
	Start int64
	End   int64
	Min   float64
	Max   float64
	MinTs int64
	MaxTs int64
}

// Level is one tier of the hierarchy, stored as parallel columns.
//
// Bin i spans [starts[i], starts[i+1]) with the last bin closing at end, so
// contiguity and non-overlap hold by construction rather than by audit.
// Starts are non-decreasing; zero-width bins appear only where the raw
// series carries duplicate timestamps.
//
// Level values are cheap to copy (they share backing arrays) and immutable,
// so they are safe for concurrent readers.
type Level struct {
	starts []int64
	mins   []float64
	maxs   []float64
	minTs  []int64
	maxTs  []int64
	end    int64
}

// NewLevel assembles a Level from its columns, validating the structural
// invariants: equal column lengths, non-decreasing starts, end at or after
// the last start, Min ≤ Max per bin, and extremum timestamps inside their
// bin's range. Used when reassembling a hierarchy from external storage;
// Build produces levels directly.
func NewLevel(starts []int64, end int64, mins, maxs []float64, minTs, maxTs []int64) (Level, error) {
	n := len(starts)
	if len(mins) != n || len(maxs) != n || len(minTs) != n || len(maxTs) != n {
		return Level{}, fmt.Errorf("%w: column lengths %d/%d/%d/%d/%d differ",
			errs.ErrInvalidLevelData, n, len(mins), len(maxs), len(minTs), len(maxTs))
	}
	if n > 0 && end < starts[n-1] {
		return Level{}, fmt.Errorf("%w: end %d before last start %d", errs.ErrInvalidLevelData, end, starts[n-1])
	}

	l := Level{starts: starts, mins: mins, maxs: maxs, minTs: minTs, maxTs: maxTs, end: end}
	for i := range n {
		if i > 0 && starts[i] < starts[i-1] {
			return Level{}, fmt.Errorf("%w: bin %d start %d before previous %d",
				errs.ErrInvalidLevelData, i, starts[i], starts[i-1])
		}
		// A NaN extremum also fails here: all NaN comparisons are false.
		if !(mins[i] <= maxs[i]) {
			return Level{}, fmt.Errorf("%w: bin %d min %v above max %v",
				errs.ErrInvalidLevelData, i, mins[i], maxs[i])
		}
		binEnd := l.endOf(i)
		if minTs[i] < starts[i] || minTs[i] > binEnd || maxTs[i] < starts[i] || maxTs[i] > binEnd {
			return Level{}, fmt.Errorf("%w: bin %d extremum time outside [%d, %d]",
				errs.ErrInvalidLevelData, i, starts[i], binEnd)
		}
	}

	return l, nil
}

// RawLevel builds the degenerate level-0 view over raw sample columns: each
// sample becomes a bin with Min == Max and both extremum times equal to the
// sample time. The columns are aliased, not copied, so a 10M-sample series
// costs no extra memory at level 0.
//
// Timestamps must be non-decreasing and values must not contain NaN;
// violations return errs.ErrInvalidLevelData. Series constructed through the
// series package already satisfy both.
func RawLevel(timestamps []int64, values []float64) (Level, error) {
	if len(timestamps) != len(values) {
		return Level{}, fmt.Errorf("%w: %d timestamps but %d values",
			errs.ErrInvalidLevelData, len(timestamps), len(values))
	}
	for i, ts := range timestamps {
		if i > 0 && ts < timestamps[i-1] {
			return Level{}, fmt.Errorf("%w: timestamp %d at %d after %d",
				errs.ErrInvalidLevelData, i, ts, timestamps[i-1])
		}
		if math.IsNaN(values[i]) {
			return Level{}, fmt.Errorf("%w: NaN value at %d", errs.ErrInvalidLevelData, i)
		}
	}

	var end int64
	if len(timestamps) > 0 {
		end = timestamps[len(timestamps)-1]
	}

	return Level{
		starts: timestamps,
		mins:   values,
		maxs:   values,
		minTs:  timestamps,
		maxTs:  timestamps,
		end:    end,
	}, nil
}

// Len returns the number of bins in the level.
func (l Level) Len() int {
	return len(l.starts)
}

// endOf returns the exclusive end of bin i, which is the next bin's start,
// or the closing end for the last bin.
func (l Level) endOf(i int) int64 {
	if i+1 < len(l.starts) {
		return l.starts[i+1]
	}

	return l.end
}

// Bin returns bin i. Panics if i is out of range, like slice indexing.
func (l Level) Bin(i int) Bin {
	return Bin{
		Start: l.starts[i],
		End:   l.endOf(i),
		Min:   l.mins[i],
		Max:   l.maxs[i],
		MinTs: l.minTs[i],
		MaxTs: l.maxTs[i],
	}
}

// All returns an iterator over (index, Bin) in time order.
func (l Level) All() iter.Seq2[int, Bin] {
	return func(yield func(int, Bin) bool) {
		for i := range l.starts {
			if !yield(i, l.Bin(i)) {
				return
			}
		}
	}
}

// rangeBounds returns the half-open index window [lo, hi) of bins whose time
// range intersects the closed query range [from, to]. Both bounds are found
// by binary search on the sorted start and end columns, so the cost is
// O(log n) regardless of how many bins match.
//
// Intersection treats bin ranges as closed: a bin whose boundary merely
// touches the query is included. That over-includes at most one zero-area
// bin per edge and never drops a duplicate-timestamp bin sitting exactly on
// the viewport edge.
func (l Level) rangeBounds(from, to int64) (lo, hi int) {
	n := len(l.starts)
	if n == 0 || from > to || l.starts[0] > to || l.end < from {
		return 0, 0
	}
	lo = sort.Search(n, func(i int) bool { return l.endOf(i) >= from })
	hi = sort.Search(n, func(i int) bool { return l.starts[i] > to })
	if hi < lo {
		return 0, 0
	}

	return lo, hi
}

// IndexRange returns the half-open bin index window [lo, hi) intersecting
// the closed range [from, to]. Callers that need index arithmetic around
// the visible window (margin samples, hover lookup) use this; everything
// else streams InRange.
func (l Level) IndexRange(from, to int64) (lo, hi int) {
	return l.rangeBounds(from, to)
}

// CountInRange returns how many bins intersect the closed range [from, to].
func (l Level) CountInRange(from, to int64) int {
	lo, hi := l.rangeBounds(from, to)

	return hi - lo
}

// InRange returns an iterator over the bins intersecting the closed range
// [from, to], in time order. The sequence is restartable and finite; a range
// outside the level's extent yields nothing.
func (l Level) InRange(from, to int64) iter.Seq[Bin] {
	return func(yield func(Bin) bool) {
		lo, hi := l.rangeBounds(from, to)
		for i := lo; i < hi; i++ {
			if !yield(l.Bin(i)) {
				return
			}
		}
	}
}
