package mip

import (
	"fmt"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/internal/options"
	"github.com/arloliu/plotmip/series"
)

const (
	// DefaultDecimationFactor is the number of child bins merged into one
	// parent bin per level step.
	DefaultDecimationFactor = 2

	// DefaultMaxLevels bounds the hierarchy depth, counting level 0.
	// With factor 2 it comfortably exceeds the depth any series up to
	// MaxSamples can need, so hitting the bound only happens with a
	// deliberately small override.
	DefaultMaxLevels = 48

	// MaxSamples is the largest series length Build accepts. Every piece of
	// bin-count and group-index arithmetic is proven safe in int64 for
	// lengths up to this bound; longer input fails construction with
	// errs.ErrSeriesTooLarge instead of risking silent wrap-around.
	MaxSamples = int64(1) << 40
)

// BuilderOption configures a Builder.
type BuilderOption = options.Option[*builderConfig]

type builderConfig struct {
	factor    int
	maxLevels int
}

// WithDecimationFactor sets how many consecutive bins merge into one parent
// bin per reduction step. The factor must be at least 2; the default is
// DefaultDecimationFactor.
func WithDecimationFactor(factor int) BuilderOption {
	return options.New(func(cfg *builderConfig) error {
		if factor < 2 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidDecimationFactor, factor)
		}
		cfg.factor = factor

		return nil
	})
}

// WithMaxLevels bounds the number of levels, counting level 0. Reduction
// stops at the bound even if the coarsest level still has more than one bin.
// The bound must be positive; the default is DefaultMaxLevels.
func WithMaxLevels(n int) BuilderOption {
	return options.New(func(cfg *builderConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidMaxLevels, n)
		}
		cfg.maxLevels = n

		return nil
	})
}

// Builder constructs Map hierarchies from series. A Builder is cheap,
// stateless between calls, and safe to reuse.
type Builder struct {
	cfg builderConfig
}

// NewBuilder creates a Builder with the given options.
//
// Returns errs.ErrInvalidDecimationFactor or errs.ErrInvalidMaxLevels when
// an option carries an invalid value.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	cfg := builderConfig{
		factor:    DefaultDecimationFactor,
		maxLevels: DefaultMaxLevels,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Builder{cfg: cfg}, nil
}

// Build constructs the full hierarchy for a series.
//
// Level 0 is a zero-copy view over the series columns; each further level
// merges runs of factor consecutive bins, comparing the children's Min and
// Max fields so true extrema survive any number of reduction steps. The
// final partial group of a level is always kept, even when it holds a
// single bin. Reduction stops when a level reaches one bin or the level
// bound is hit.
//
// An empty series produces a valid degenerate Map with one empty level.
// A series longer than MaxSamples fails with errs.ErrSeriesTooLarge.
//
// Build is pure: the same series and options always produce an identical
// hierarchy, and the series is not modified. The returned Map is immutable
// and safe for concurrent readers.
func (b *Builder) Build(s *series.Series) (*Map, error) {
	if err := checkIndexable(s.Len()); err != nil {
		return nil, err
	}

	level0, err := RawLevel(s.Timestamps(), s.Values())
	if err != nil {
		return nil, err
	}

	levels := make([]Level, 1, estimateLevels(s.Len(), b.cfg.factor, b.cfg.maxLevels))
	levels[0] = level0
	for levels[len(levels)-1].Len() > 1 && len(levels) < b.cfg.maxLevels {
		levels = append(levels, reduceLevel(levels[len(levels)-1], b.cfg.factor))
	}

	return &Map{
		name:   s.Name(),
		id:     s.ID(),
		factor: b.cfg.factor,
		levels: levels,
	}, nil
}

// Build is a convenience wrapper that creates a one-shot Builder and runs it.
func Build(s *series.Series, opts ...BuilderOption) (*Map, error) {
	b, err := NewBuilder(opts...)
	if err != nil {
		return nil, err
	}

	return b.Build(s)
}

// checkIndexable rejects series lengths beyond the proven-safe arithmetic
// range. Factored out of Build so the guard is testable without allocating
// a series of that size.
func checkIndexable(n int) error {
	if int64(n) > MaxSamples {
		return fmt.Errorf("%w: %d samples exceeds the %d maximum", errs.ErrSeriesTooLarge, n, MaxSamples)
	}

	return nil
}

// estimateLevels predicts the hierarchy depth for capacity pre-allocation:
// one level per division by factor until a single bin remains, plus level 0.
func estimateLevels(n, factor, maxLevels int) int {
	depth := 1
	for v := int64(n); v > 1; v = (v + int64(factor) - 1) / int64(factor) {
		depth++
	}

	return min(depth, maxLevels)
}

// reduceLevel builds the parent level by merging runs of factor bins.
//
// Group arithmetic is done in int64: the ceiling division below is the spot
// where narrower arithmetic historically wrapped on very long series.
func reduceLevel(l Level, factor int) Level {
	n := l.Len()
	groups := int((int64(n) + int64(factor) - 1) / int64(factor))

	starts := make([]int64, groups)
	mins := make([]float64, groups)
	maxs := make([]float64, groups)
	minTs := make([]int64, groups)
	maxTs := make([]int64, groups)

	for g := range groups {
		lo := g * factor
		hi := min(lo+factor, n)

		bestMin, bestMinTs := l.mins[lo], l.minTs[lo]
		bestMax, bestMaxTs := l.maxs[lo], l.maxTs[lo]
		for c := lo + 1; c < hi; c++ {
			// Strict comparisons keep the earliest achiever on ties:
			// children arrive in time order.
			if l.mins[c] < bestMin {
				bestMin, bestMinTs = l.mins[c], l.minTs[c]
			}
			if l.maxs[c] > bestMax {
				bestMax, bestMaxTs = l.maxs[c], l.maxTs[c]
			}
		}

		starts[g] = l.starts[lo]
		mins[g], minTs[g] = bestMin, bestMinTs
		maxs[g], maxTs[g] = bestMax, bestMaxTs
	}

	return Level{starts: starts, mins: mins, maxs: maxs, minTs: minTs, maxTs: maxTs, end: l.end}
}
