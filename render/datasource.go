package render

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/format"
	"github.com/arloliu/plotmip/internal/hash"
	"github.com/arloliu/plotmip/internal/options"
	"github.com/arloliu/plotmip/mip"
)

// Point is one renderable unit: the bin start time and the value band the
// bin covers. Raw samples render as degenerate points with Min == Max.
type Point struct {
	Ts  int64
	Min float64
	Max float64
}

// DefaultRawThreshold is the in-range sample count under which auto
// selection skips the hierarchy and renders raw points directly. Windows
// this small gain nothing from reduction.
const DefaultRawThreshold = 1024

// DataSourceOption configures a DataSource.
type DataSourceOption = options.Option[*dsConfig]

type dsConfig struct {
	multiplier   float64
	mode         format.SelectionMode
	manualLevel  int
	rawThreshold int
	extension    float64
}

// WithBudgetMultiplier sets the render budget in bins per pixel. The
// default is mip.DefaultBudgetMultiplier. Must be positive.
func WithBudgetMultiplier(multiplier float64) DataSourceOption {
	return options.New(func(cfg *dsConfig) error {
		if multiplier <= 0 {
			return fmt.Errorf("%w: got %v", errs.ErrInvalidBudgetMultiplier, multiplier)
		}
		cfg.multiplier = multiplier

		return nil
	})
}

// WithSelectionMode sets how the level is chosen per frame:
// format.SelectionAuto fits the viewport, format.SelectionManual pins the
// level set by WithManualLevel, format.SelectionDisabled always renders
// raw samples.
func WithSelectionMode(mode format.SelectionMode) DataSourceOption {
	return options.New(func(cfg *dsConfig) error {
		switch mode {
		case format.SelectionAuto, format.SelectionManual, format.SelectionDisabled:
			cfg.mode = mode

			return nil
		default:
			return fmt.Errorf("%w: got %d", errs.ErrInvalidSelectionMode, mode)
		}
	})
}

// WithManualLevel pins the rendered level and implies
// format.SelectionManual. The level is clamped to the coarsest available
// at render time, so a pinned level outlives hierarchies of differing
// depth. Must not be negative.
func WithManualLevel(level int) DataSourceOption {
	return options.New(func(cfg *dsConfig) error {
		if level < 0 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidManualLevel, level)
		}
		cfg.manualLevel = level
		cfg.mode = format.SelectionManual

		return nil
	})
}

// WithRawThreshold sets the in-range sample count under which auto
// selection bypasses the hierarchy. Zero disables the bypass. Must not be
// negative; the default is DefaultRawThreshold.
func WithRawThreshold(n int) DataSourceOption {
	return options.New(func(cfg *dsConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidRawThreshold, n)
		}
		cfg.rawThreshold = n

		return nil
	})
}

// WithExtension widens every viewport by the given fraction of its span on
// each side before querying. Zero (the default) disables extension; the
// fraction must not be negative.
func WithExtension(frac float64) DataSourceOption {
	return options.New(func(cfg *dsConfig) error {
		if frac < 0 {
			return fmt.Errorf("%w: got %v", errs.ErrInvalidExtension, frac)
		}
		cfg.extension = frac

		return nil
	})
}

// DataSource turns viewports into renderable point sequences. It composes
// level selection and range queries and never mutates the Map it reads, so
// one DataSource may serve concurrent frames over shared hierarchies.
type DataSource struct {
	cfg         dsConfig
	fingerprint uint64
}

// NewDataSource creates a DataSource with the given options.
func NewDataSource(opts ...DataSourceOption) (*DataSource, error) {
	cfg := dsConfig{
		multiplier:   mip.DefaultBudgetMultiplier,
		mode:         format.SelectionAuto,
		rawThreshold: DefaultRawThreshold,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &DataSource{cfg: cfg, fingerprint: cfg.digest()}, nil
}

// digest packs the configuration scalars and hashes them. Two DataSources
// with equal configuration share a fingerprint, which is what render caches
// key on.
func (cfg *dsConfig) digest() uint64 {
	var buf [34]byte
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(cfg.multiplier))
	buf[8] = byte(cfg.mode)
	binary.LittleEndian.PutUint64(buf[9:17], uint64(cfg.manualLevel))
	binary.LittleEndian.PutUint64(buf[17:25], uint64(cfg.rawThreshold))
	binary.LittleEndian.PutUint64(buf[25:33], math.Float64bits(cfg.extension))
	buf[33] = 0x1

	return hash.Checksum(buf[:])
}

// Fingerprint identifies this configuration for render-result caching.
func (d *DataSource) Fingerprint() uint64 {
	return d.fingerprint
}

// Budget returns the bin budget for a pixel width.
func (d *DataSource) Budget(pixelWidth int) int {
	return int(float64(pixelWidth) * d.cfg.multiplier)
}

// SelectLevel resolves the level the configured mode would render for the
// given viewport, after extension.
func (d *DataSource) SelectLevel(m *mip.Map, vp Viewport) int {
	return d.levelFor(m, vp.Extended(d.cfg.extension))
}

func (d *DataSource) levelFor(m *mip.Map, vp Viewport) int {
	switch d.cfg.mode {
	case format.SelectionDisabled:
		return 0
	case format.SelectionManual:
		return m.ClampLevel(d.cfg.manualLevel)
	default:
		budget := d.Budget(vp.PixelWidth)
		if d.cfg.rawThreshold > 0 {
			raw := m.LevelOrCoarsest(0)
			count := raw.CountInRange(vp.Start, vp.End)
			// The bypass serves small windows; it never overrides the budget.
			if count <= d.cfg.rawThreshold && count <= budget {
				return 0
			}
		}

		return mip.SelectLevelBudget(m, vp.Start, vp.End, budget)
	}
}

// RenderPoints returns the point sequence to draw for a viewport: one Point
// per bin of the selected level intersecting the (extended) visible range,
// in time order.
//
// Under format.SelectionAuto the sequence length never exceeds
// Budget(vp.PixelWidth) regardless of the underlying series size, provided
// the hierarchy was built deep enough to reach a single-bin coarsest level
// (the default bounds guarantee that). Manual and disabled modes render
// what they are told to.
//
// The sequence is restartable and pure: the same Map, viewport, and
// configuration always produce identical output.
func (d *DataSource) RenderPoints(m *mip.Map, vp Viewport) iter.Seq[Point] {
	vp = vp.Extended(d.cfg.extension)
	level := d.levelFor(m, vp)
	bins, err := m.BinsInRange(level, vp.Start, vp.End)
	if err != nil {
		return func(yield func(Point) bool) {}
	}

	return func(yield func(Point) bool) {
		for bin := range bins {
			if !yield(Point{Ts: bin.Start, Min: bin.Min, Max: bin.Max}) {
				return
			}
		}
	}
}

// RenderRaw returns raw (timestamp, value) pairs for the viewport,
// bypassing the hierarchy entirely. The first and last samples of the
// whole series are always included so the renderer's auto-scaled bounds
// stay anchored to the full extent while panning.
func (d *DataSource) RenderRaw(m *mip.Map, vp Viewport) iter.Seq2[int64, float64] {
	vp = vp.Extended(d.cfg.extension)

	return func(yield func(int64, float64) bool) {
		raw := m.LevelOrCoarsest(0)
		n := raw.Len()
		if n == 0 {
			return
		}
		lo, hi := raw.IndexRange(vp.Start, vp.End)
		// lo == hi means the window misses the extent entirely; both
		// anchors still render so the plot bounds do not collapse.
		if lo > 0 || lo == hi {
			first := raw.Bin(0)
			if !yield(first.Start, first.Min) {
				return
			}
		}
		for i := lo; i < hi; i++ {
			bin := raw.Bin(i)
			if !yield(bin.Start, bin.Min) {
				return
			}
		}
		if hi < n {
			last := raw.Bin(n - 1)
			if !yield(last.Start, last.Min) {
				return
			}
		}
	}
}

// MinMaxLines returns the two polylines through the selected level's
// extrema: the min line through (MinTs, Min) and the max line through
// (MaxTs, Max). Unlike RenderPoints, the x coordinates are the timestamps
// where the extrema actually occurred, so spikes land on their true time.
func (d *DataSource) MinMaxLines(m *mip.Map, vp Viewport) (minLine, maxLine iter.Seq2[int64, float64]) {
	vp = vp.Extended(d.cfg.extension)
	level := d.levelFor(m, vp)

	minLine = func(yield func(int64, float64) bool) {
		bins, err := m.BinsInRange(level, vp.Start, vp.End)
		if err != nil {
			return
		}
		for bin := range bins {
			if !yield(bin.MinTs, bin.Min) {
				return
			}
		}
	}
	maxLine = func(yield func(int64, float64) bool) {
		bins, err := m.BinsInRange(level, vp.Start, vp.End)
		if err != nil {
			return
		}
		for bin := range bins {
			if !yield(bin.MaxTs, bin.Max) {
				return
			}
		}
	}

	return minLine, maxLine
}

// Extremum is a hover/tooltip lookup result: the bin covering the queried
// time and its extremum closest to that time.
type Extremum struct {
	Bin   mip.Bin
	Ts    int64
	Val   float64
	IsMin bool
}

// NearestExtremum finds the bin of l covering ts and reports whichever of
// its extrema lies closest in time, min winning ties. ok is false when ts
// falls outside the level's extent.
func NearestExtremum(l mip.Level, ts int64) (Extremum, bool) {
	lo, hi := l.IndexRange(ts, ts)
	if lo >= hi {
		return Extremum{}, false
	}
	// The window may open with a bin merely touching ts on its right edge;
	// prefer the bin that starts at or before ts and ends after it.
	bin := l.Bin(lo)
	for i := lo + 1; i < hi; i++ {
		next := l.Bin(i)
		if next.Start > ts {
			break
		}
		bin = next
	}

	distMin := ts - bin.MinTs
	if distMin < 0 {
		distMin = -distMin
	}
	distMax := ts - bin.MaxTs
	if distMax < 0 {
		distMax = -distMax
	}
	if distMin <= distMax {
		return Extremum{Bin: bin, Ts: bin.MinTs, Val: bin.Min, IsMin: true}, true
	}

	return Extremum{Bin: bin, Ts: bin.MaxTs, Val: bin.Max, IsMin: false}, true
}
