package mip

import (
	"fmt"
	"iter"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/series"
)

// Map owns the full level hierarchy for one series: the raw level 0 plus
// every reduced level above it. A Map is immutable once constructed and
// safe for any number of concurrent readers without locking.
type Map struct {
	name   string
	id     series.ID
	factor int
	levels []Level
}

// FromLevels reassembles a Map from externally stored levels, validating
// the cross-level invariants Build guarantees by construction: at least one
// level, factor ≥ 2, each level's bin count equal to ceil(previous / factor),
// aligned group boundaries, and a shared closing end. Per-level column
// invariants are NewLevel's job; run both when decoding untrusted input.
func FromLevels(name string, factor int, levels []Level) (*Map, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no levels", errs.ErrInvalidLevelData)
	}
	if factor < 2 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidDecimationFactor, factor)
	}

	for i := 1; i < len(levels); i++ {
		child, parent := levels[i-1], levels[i]
		wantBins := int((int64(child.Len()) + int64(factor) - 1) / int64(factor))
		if parent.Len() != wantBins {
			return nil, fmt.Errorf("%w: level %d has %d bins, want %d from %d children",
				errs.ErrInvalidLevelData, i, parent.Len(), wantBins, child.Len())
		}
		if parent.end != child.end {
			return nil, fmt.Errorf("%w: level %d end %d differs from level %d end %d",
				errs.ErrInvalidLevelData, i, parent.end, i-1, child.end)
		}
		for g := range parent.Len() {
			if parent.starts[g] != child.starts[g*factor] {
				return nil, fmt.Errorf("%w: level %d bin %d start %d misaligned with child start %d",
					errs.ErrInvalidLevelData, i, g, parent.starts[g], child.starts[g*factor])
			}
		}
	}

	return &Map{name: name, id: series.NameID(name), factor: factor, levels: levels}, nil
}

// Name returns the name of the series this hierarchy was built from.
func (m *Map) Name() string {
	return m.name
}

// SeriesID returns the stable handle of the underlying series.
func (m *Map) SeriesID() series.ID {
	return m.id
}

// DecimationFactor returns the per-step reduction factor the hierarchy was
// built with.
func (m *Map) DecimationFactor() int {
	return m.factor
}

// LevelCount returns the number of levels, including level 0.
func (m *Map) LevelCount() int {
	return len(m.levels)
}

// SampleCount returns the number of raw samples (level 0 bins).
func (m *Map) SampleCount() int {
	return m.levels[0].Len()
}

// Level returns level i.
//
// An index outside [0, LevelCount()) is a caller bug and fails with
// errs.ErrLevelOutOfRange; it is never silently clamped. Use
// LevelOrCoarsest for the clamping behavior of manual selection.
func (m *Map) Level(i int) (Level, error) {
	if i < 0 || i >= len(m.levels) {
		return Level{}, fmt.Errorf("%w: %d of %d levels", errs.ErrLevelOutOfRange, i, len(m.levels))
	}

	return m.levels[i], nil
}

// LevelOrCoarsest returns level ClampLevel(i). It backs manual level
// selection, where a user-chosen level persists while hierarchies of
// different depths come and go.
func (m *Map) LevelOrCoarsest(i int) Level {
	return m.levels[m.ClampLevel(i)]
}

// ClampLevel clamps a level index into the valid range [0, LevelCount()).
func (m *Map) ClampLevel(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(m.levels) {
		return len(m.levels) - 1
	}

	return i
}

// BinsInRange returns an iterator over the bins of the given level whose
// time range intersects the closed range [from, to], in time order.
//
// A range outside the series extent yields an empty sequence, not an error;
// only an invalid level index fails, with errs.ErrLevelOutOfRange. The
// lookup costs O(log n) plus the bins actually consumed.
//
// Example:
//
//	bins, err := m.BinsInRange(3, vpStart, vpEnd)
//	if err != nil {
//	    return err
//	}
//	for bin := range bins {
//	    draw(bin.Start, bin.Min, bin.Max)
//	}
func (m *Map) BinsInRange(level int, from, to int64) (iter.Seq[Bin], error) {
	l, err := m.Level(level)
	if err != nil {
		return nil, err
	}

	return l.InRange(from, to), nil
}

// TimeExtent returns the time range covered by the hierarchy, from the
// first sample to the last. ok is false for an empty hierarchy.
func (m *Map) TimeExtent() (first, last int64, ok bool) {
	if m.levels[0].Len() == 0 {
		return 0, 0, false
	}

	return m.levels[0].starts[0], m.levels[0].end, true
}

// Stats describes a built hierarchy: how many levels it has, how many bins
// each holds, and the extra memory the reduced levels cost. Level 0 shares
// the series columns and is excluded from OwnedBytes.
type Stats struct {
	SampleCount      int
	LevelCount       int
	DecimationFactor int
	BinCounts        []int
	OwnedBytes       int
}

// Stats returns size and shape statistics for the hierarchy.
func (m *Map) Stats() Stats {
	st := Stats{
		SampleCount:      m.SampleCount(),
		LevelCount:       len(m.levels),
		DecimationFactor: m.factor,
		BinCounts:        make([]int, len(m.levels)),
	}
	for i, l := range m.levels {
		st.BinCounts[i] = l.Len()
		if i > 0 {
			// Five column slices of 8 bytes per bin, plus the closing end.
			st.OwnedBytes += l.Len()*8*5 + 8
		}
	}

	return st
}
