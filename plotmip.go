// Package plotmip builds and queries multi-resolution min/max summaries of
// very large time-series logs, so interactive plots of tens of millions of
// samples stay fast at every zoom level.
//
// A hierarchy of levels is precomputed per series: level 0 is the raw
// samples, and each level above halves the bin count (by default) while
// keeping the exact minimum and maximum of the raw samples each bin
// covers. Rendering a viewport then selects the shallowest level whose bin
// count fits the pixel budget, which bounds per-frame work regardless of
// how long the underlying log is. Because parents aggregate their
// children's extrema, a one-sample spike survives to every zoom level
// instead of aliasing away.
//
// # Core Features
//
//   - Exact min/max preservation at every resolution (no averaged-out spikes)
//   - O(log n) level selection and range queries per frame
//   - Zero-copy level 0 (the hierarchy aliases the series columns)
//   - Hash-based series identification (64-bit xxHash64) for O(1) lookups
//   - Session registry with an LRU cache of rendered viewports
//   - Compact snapshot format with optional compression (Zstd, S2, LZ4)
//
// # Basic Usage
//
// Building a hierarchy and rendering a viewport:
//
//	import "github.com/arloliu/plotmip"
//
//	s, _ := plotmip.NewSeries("gen.rpm", timestamps, values)
//	m, _ := plotmip.Build(s)
//
//	ds, _ := plotmip.NewDefaultDataSource()
//	vp := render.Viewport{Start: from, End: to, PixelWidth: 1920}
//	for pt := range ds.RenderPoints(m, vp) {
//	    drawBand(pt.Ts, pt.Min, pt.Max)
//	}
//
// Persisting a built hierarchy:
//
//	f, _ := os.Create("gen.rpm.mpm")
//	_, _ = plotmip.SaveSnapshot(f, m)
//	f.Close()
//
//	f, _ = os.Open("gen.rpm.mpm")
//	m, _ = plotmip.LoadSnapshot(f)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the series,
// mip, render, session, and snapshot packages, simplifying the most common
// use cases. For fine-grained control, use those packages directly.
package plotmip

import (
	"io"

	"github.com/arloliu/plotmip/mip"
	"github.com/arloliu/plotmip/render"
	"github.com/arloliu/plotmip/series"
	"github.com/arloliu/plotmip/session"
	"github.com/arloliu/plotmip/snapshot"
)

var defaultSourceOptions = []render.DataSourceOption{
	render.WithBudgetMultiplier(mip.DefaultBudgetMultiplier),
	render.WithRawThreshold(render.DefaultRawThreshold),
}

// SeriesID converts a series name to its 64-bit hash handle.
//
// The same name always hashes to the same handle, so IDs may be
// precomputed and shared across processes. Collisions are detected at
// session load time rather than silently merging two series.
func SeriesID(name string) series.ID {
	return series.NameID(name)
}

// NewSeries creates an immutable series from parallel timestamp and value
// columns. Timestamps must be non-decreasing; NaN handling follows the
// series' NaN policy (exclusion by default).
//
// Example:
//
//	s, err := plotmip.NewSeries("gen.rpm", timestamps, values,
//	    series.WithNaNPolicy(format.NaNReject),
//	)
func NewSeries(name string, timestamps []int64, values []float64, opts ...series.SeriesOption) (*series.Series, error) {
	return series.New(name, timestamps, values, opts...)
}

// NewSeriesFromSamples creates a series from a sample slice. Prefer
// NewSeries when the data already lives in columns; this form copies
// through an intermediate layout.
func NewSeriesFromSamples(name string, samples []series.Sample, opts ...series.SeriesOption) (*series.Series, error) {
	return series.FromSamples(name, samples, opts...)
}

// Build precomputes the full level hierarchy for a series.
//
// Available options:
//   - mip.WithDecimationFactor(n): children per parent bin (default 2)
//   - mip.WithMaxLevels(n): bound on hierarchy depth (default 48)
//
// Example:
//
//	m, err := plotmip.Build(s, mip.WithDecimationFactor(4))
func Build(s *series.Series, opts ...mip.BuilderOption) (*mip.Map, error) {
	return mip.Build(s, opts...)
}

// NewDataSource creates a render source with custom options. See
// render.DataSourceOption for the full set.
func NewDataSource(opts ...render.DataSourceOption) (*render.DataSource, error) {
	return render.NewDataSource(opts...)
}

// NewDefaultDataSource creates a render source with recommended settings:
// automatic level selection against a budget of two bins per pixel, with
// small windows served raw.
func NewDefaultDataSource() (*render.DataSource, error) {
	return render.NewDataSource(defaultSourceOptions...)
}

// NewPinnedDataSource creates a render source locked to one level,
// bypassing automatic selection. Useful for inspecting what a specific
// level holds; the level is clamped to each hierarchy's depth at render
// time.
func NewPinnedDataSource(level int, opts ...render.DataSourceOption) (*render.DataSource, error) {
	allOpts := append(append([]render.DataSourceOption{}, opts...), render.WithManualLevel(level))

	return render.NewDataSource(allOpts...)
}

// NewSession creates an empty session registry for managing loaded
// hierarchies and caching rendered viewports.
func NewSession(opts ...session.SessionOption) (*session.Session, error) {
	return session.New(opts...)
}

// SaveSnapshot writes a hierarchy to w in the snapshot format, returning
// the number of bytes written.
//
// Example:
//
//	_, err := plotmip.SaveSnapshot(f, m, snapshot.WithCompression(format.CompressionZstd))
func SaveSnapshot(w io.Writer, m *mip.Map, opts ...snapshot.Option) (int, error) {
	return snapshot.Write(w, m, opts...)
}

// LoadSnapshot reads a snapshot from r and reconstructs the hierarchy it
// holds. The input is validated end to end; corrupted files fail with
// errs.ErrChecksumMismatch or errs.ErrCorruptedSnapshot.
func LoadSnapshot(r io.Reader) (*mip.Map, error) {
	return snapshot.Read(r)
}
