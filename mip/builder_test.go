package mip

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/series"
)

// seriesWithValues builds a series from values at times 0..n-1.
func seriesWithValues(tb testing.TB, name string, values []float64) *series.Series {
	tb.Helper()
	timestamps := make([]int64, len(values))
	for i := range timestamps {
		timestamps[i] = int64(i)
	}
	s, err := series.New(name, timestamps, values)
	require.NoError(tb, err)

	return s
}

func minMaxPairs(tb testing.TB, l Level) [][2]float64 {
	tb.Helper()
	pairs := make([][2]float64, 0, l.Len())
	for _, bin := range l.All() {
		pairs = append(pairs, [2]float64{bin.Min, bin.Max})
	}

	return pairs
}

// === Options ===

func TestNewBuilder(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		b, err := NewBuilder()
		require.NoError(t, err)
		require.Equal(t, DefaultDecimationFactor, b.cfg.factor)
		require.Equal(t, DefaultMaxLevels, b.cfg.maxLevels)
	})

	t.Run("factor below 2 rejected", func(t *testing.T) {
		_, err := NewBuilder(WithDecimationFactor(1))
		require.ErrorIs(t, err, errs.ErrInvalidDecimationFactor)

		_, err = NewBuilder(WithDecimationFactor(0))
		require.ErrorIs(t, err, errs.ErrInvalidDecimationFactor)
	})

	t.Run("non-positive level bound rejected", func(t *testing.T) {
		_, err := NewBuilder(WithMaxLevels(0))
		require.ErrorIs(t, err, errs.ErrInvalidMaxLevels)
	})
}

// === Construction ===

func TestBuildNineSampleHierarchy(t *testing.T) {
	// Nine samples at times 0..8; factor 2 reduces 9 → 5 → 3 → 2 → 1.
	s := seriesWithValues(t, "nine", []float64{1, 5, 2, 8, 3, 0, 9, 4, 6})

	m, err := Build(s)
	require.NoError(t, err)
	require.Equal(t, 5, m.LevelCount())
	require.Equal(t, 9, m.SampleCount())

	l1, err := m.Level(1)
	require.NoError(t, err)
	require.Equal(t, 5, l1.Len(), "the final singleton group must be kept")
	require.Equal(t, [][2]float64{{1, 5}, {2, 8}, {0, 3}, {4, 9}, {6, 6}}, minMaxPairs(t, l1))

	l2, err := m.Level(2)
	require.NoError(t, err)
	require.Equal(t, 3, l2.Len(), "5 bins at factor 2 reduce to 3, keeping the singleton")
	require.Equal(t, [][2]float64{{1, 8}, {0, 9}, {6, 6}}, minMaxPairs(t, l2))

	coarsest, err := m.Level(4)
	require.NoError(t, err)
	require.Equal(t, 1, coarsest.Len())
	require.Equal(t, [][2]float64{{0, 9}}, minMaxPairs(t, coarsest))
}

func TestBuildDegenerate(t *testing.T) {
	t.Run("empty series gives one empty level", func(t *testing.T) {
		s, err := series.New("empty", nil, nil)
		require.NoError(t, err)

		m, err := Build(s)
		require.NoError(t, err)
		require.Equal(t, 1, m.LevelCount())
		require.Equal(t, 0, m.SampleCount())

		_, _, ok := m.TimeExtent()
		require.False(t, ok)
	})

	t.Run("single sample gives one level", func(t *testing.T) {
		s := seriesWithValues(t, "one", []float64{42})

		m, err := Build(s)
		require.NoError(t, err)
		require.Equal(t, 1, m.LevelCount())

		l0, err := m.Level(0)
		require.NoError(t, err)
		require.Equal(t, Bin{Start: 0, End: 0, Min: 42, Max: 42, MinTs: 0, MaxTs: 0}, l0.Bin(0))
	})
}

func TestBuildLevelBound(t *testing.T) {
	s := seriesWithValues(t, "bounded", make([]float64, 1000))

	m, err := Build(s, WithMaxLevels(3))
	require.NoError(t, err)
	require.Equal(t, 3, m.LevelCount())

	coarsest, err := m.Level(2)
	require.NoError(t, err)
	require.Equal(t, 250, coarsest.Len(), "reduction stops at the bound, not at one bin")
}

func TestBuildLargerFactor(t *testing.T) {
	s := seriesWithValues(t, "wide", []float64{5, 1, 9, 2, 7, 3, 8, 0, 4, 6})

	m, err := Build(s, WithDecimationFactor(4))
	require.NoError(t, err)
	// 10 → 3 → 1
	require.Equal(t, 3, m.LevelCount())

	l1, err := m.Level(1)
	require.NoError(t, err)
	require.Equal(t, [][2]float64{{1, 9}, {0, 8}, {4, 6}}, minMaxPairs(t, l1))
}

func TestBuildExtremumTimes(t *testing.T) {
	t.Run("carried from the achieving child", func(t *testing.T) {
		s := seriesWithValues(t, "times", []float64{3, 9, -1, 4})

		m, err := Build(s)
		require.NoError(t, err)

		l1, err := m.Level(1)
		require.NoError(t, err)
		require.Equal(t, Bin{Start: 0, End: 2, Min: 3, Max: 9, MinTs: 0, MaxTs: 1}, l1.Bin(0))
		require.Equal(t, Bin{Start: 2, End: 3, Min: -1, Max: 4, MinTs: 2, MaxTs: 3}, l1.Bin(1))

		l2, err := m.Level(2)
		require.NoError(t, err)
		require.Equal(t, Bin{Start: 0, End: 3, Min: -1, Max: 9, MinTs: 2, MaxTs: 1}, l2.Bin(0))
	})

	t.Run("ties resolve to the earliest time", func(t *testing.T) {
		s := seriesWithValues(t, "ties", []float64{7, 7, 7, 7, 7})

		m, err := Build(s)
		require.NoError(t, err)

		coarsest, err := m.Level(m.LevelCount() - 1)
		require.NoError(t, err)
		require.Equal(t, int64(0), coarsest.Bin(0).MinTs)
		require.Equal(t, int64(0), coarsest.Bin(0).MaxTs)
	})
}

func TestBuildOverflowGuard(t *testing.T) {
	require.NoError(t, checkIndexable(0))
	require.NoError(t, checkIndexable(10_000_000))
	require.NoError(t, checkIndexable(int(MaxSamples)))

	err := checkIndexable(int(MaxSamples) + 1)
	require.ErrorIs(t, err, errs.ErrSeriesTooLarge)
	require.Contains(t, err.Error(), "1099511627777", "the offending length must be reported")
}

// === Hierarchy properties ===

// randomSeries produces strictly increasing timestamps with irregular gaps,
// so index grouping and time grouping agree exactly.
func randomSeries(tb testing.TB, rng *rand.Rand, n int) *series.Series {
	tb.Helper()
	timestamps := make([]int64, n)
	values := make([]float64, n)
	ts := int64(0)
	for i := range n {
		ts += 1 + int64(rng.Intn(50))
		timestamps[i] = ts
		values[i] = rng.NormFloat64() * 100
	}
	s, err := series.New("random", timestamps, values)
	require.NoError(tb, err)

	return s
}

func TestExtremaPreservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := randomSeries(t, rng, 777)

	m, err := Build(s, WithDecimationFactor(3))
	require.NoError(t, err)

	rawTs := s.Timestamps()
	rawVals := s.Values()
	for li := range m.LevelCount() {
		l, err := m.Level(li)
		require.NoError(t, err)
		for bi, bin := range l.All() {
			last := bi == l.Len()-1
			wantMin, wantMax := 0.0, 0.0
			wantMinTs, wantMaxTs := int64(0), int64(0)
			found := false
			for i, ts := range rawTs {
				inside := ts >= bin.Start && (ts < bin.End || (last && ts <= bin.End))
				if !inside {
					continue
				}
				if !found || rawVals[i] < wantMin {
					wantMin, wantMinTs = rawVals[i], ts
				}
				if !found || rawVals[i] > wantMax {
					wantMax, wantMaxTs = rawVals[i], ts
				}
				found = true
			}
			require.True(t, found, "level %d bin %d covers no raw samples", li, bi)
			require.Equal(t, wantMin, bin.Min, "level %d bin %d min", li, bi)
			require.Equal(t, wantMax, bin.Max, "level %d bin %d max", li, bi)
			require.Equal(t, wantMinTs, bin.MinTs, "level %d bin %d min time", li, bi)
			require.Equal(t, wantMaxTs, bin.MaxTs, "level %d bin %d max time", li, bi)
		}
	}
}

func TestGlobalExtremaWithDuplicateTimestamps(t *testing.T) {
	// Duplicate timestamps collapse bin widths to zero but must never lose
	// the extrema themselves.
	timestamps := []int64{0, 5, 5, 5, 9, 9, 12}
	values := []float64{3, -50, 2, 80, 1, 4, 2}
	s, err := series.New("dups", timestamps, values)
	require.NoError(t, err)

	m, err := Build(s)
	require.NoError(t, err)

	coarsest, err := m.Level(m.LevelCount() - 1)
	require.NoError(t, err)
	require.Equal(t, 1, coarsest.Len())
	require.Equal(t, -50.0, coarsest.Bin(0).Min)
	require.Equal(t, 80.0, coarsest.Bin(0).Max)
	require.Equal(t, int64(5), coarsest.Bin(0).MinTs)
	require.Equal(t, int64(5), coarsest.Bin(0).MaxTs)
}

func TestCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s := randomSeries(t, rng, 500)

	m, err := Build(s)
	require.NoError(t, err)

	first, last, ok := m.TimeExtent()
	require.True(t, ok)

	for li := range m.LevelCount() {
		l, err := m.Level(li)
		require.NoError(t, err)
		require.Equal(t, first, l.Bin(0).Start, "level %d must start at the series start", li)
		require.Equal(t, last, l.Bin(l.Len()-1).End, "level %d must end at the series end", li)
		for i := 1; i < l.Len(); i++ {
			require.Equal(t, l.Bin(i-1).End, l.Bin(i).Start,
				"level %d bins %d and %d must be contiguous", li, i-1, i)
		}
	}
}

func TestMonotonicDensity(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	s := randomSeries(t, rng, 1234)

	for _, factor := range []int{2, 3, 7} {
		m, err := Build(s, WithDecimationFactor(factor))
		require.NoError(t, err)

		counts := m.Stats().BinCounts
		for i := 1; i < len(counts); i++ {
			require.LessOrEqual(t, counts[i], counts[i-1], "factor %d level %d", factor, i)
			want := (counts[i-1] + factor - 1) / factor
			require.Equal(t, want, counts[i], "factor %d level %d must be ceil(previous/factor)", factor, i)
		}
		require.Equal(t, 1, counts[len(counts)-1])
	}
}

func TestBuildDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	s := randomSeries(t, rng, 300)

	m1, err := Build(s)
	require.NoError(t, err)
	m2, err := Build(s)
	require.NoError(t, err)

	require.Equal(t, m1.LevelCount(), m2.LevelCount())
	for li := range m1.LevelCount() {
		l1, err := m1.Level(li)
		require.NoError(t, err)
		l2, err := m2.Level(li)
		require.NoError(t, err)
		require.Equal(t, l1.Len(), l2.Len())
		for i := range l1.Len() {
			require.Equal(t, l1.Bin(i), l2.Bin(i))
		}
	}
}

func TestBuildTenMillionSamples(t *testing.T) {
	if testing.Short() {
		t.Skip("10M-sample build skipped in short mode")
	}

	const n = 10_000_000
	const spikeAt = 7_654_321

	timestamps := make([]int64, n)
	values := make([]float64, n)
	rng := rand.New(rand.NewSource(19))
	for i := range n {
		timestamps[i] = int64(i) * 1000
		values[i] = rng.Float64()
	}
	values[spikeAt] = 1e12

	s, err := series.New("huge", timestamps, values)
	require.NoError(t, err)

	m, err := Build(s)
	require.NoError(t, err)

	// ceil(log2(10M)) = 24 reductions on top of level 0.
	require.Equal(t, 25, m.LevelCount())

	coarsest, err := m.Level(24)
	require.NoError(t, err)
	require.Equal(t, 1, coarsest.Len())
	require.Equal(t, 1e12, coarsest.Bin(0).Max, "a single-sample spike must survive to the coarsest level")
	require.Equal(t, int64(spikeAt)*1000, coarsest.Bin(0).MaxTs)

	counts := m.Stats().BinCounts
	require.Equal(t, n, counts[0])
	for i := 1; i < len(counts); i++ {
		require.Equal(t, (counts[i-1]+1)/2, counts[i])
	}
}
