// Package mip implements the multi-resolution min/max hierarchy that keeps
// plots of very large time series responsive.
//
// A hierarchy ("MipMap") is built once per loaded series and queried on
// every viewport change. Level 0 is the raw data; each level above it merges
// a fixed number of consecutive bins into one parent bin whose Min and Max
// come from the children's Min and Max fields. Comparing bin fields instead
// of raw samples is what lets a single-sample spike survive any number of
// reduction steps: once captured in a level-1 bin, it propagates upward
// unchanged.
//
// # Core Types
//
//   - Builder: constructs a Map from a series.Series
//   - Map: the immutable level hierarchy for one series
//   - Level: one tier, stored as parallel columns
//   - Bin: one (time range, min, max) unit with extremum timestamps
//
// # Build Workflow
//
//	s, err := series.New("motor.current", timestamps, values)
//	if err != nil {
//	    return err
//	}
//	m, err := mip.Build(s, mip.WithDecimationFactor(4))
//	if err != nil {
//	    return err
//	}
//
// # Query Workflow
//
// Per rendered frame: select a level for the viewport, then stream the bins
// that intersect the visible range.
//
//	level := mip.SelectLevel(m, vpStart, vpEnd, pixelWidth)
//	bins, _ := m.BinsInRange(level, vpStart, vpEnd)
//	for bin := range bins {
//	    drawBand(bin.Start, bin.Min, bin.Max)
//	}
//
// SelectLevel returns the finest level that fits the render budget, so the
// number of bins a frame touches is bounded by the pixel width, not by the
// series length.
//
// # Geometry
//
// Bins within a level are contiguous and non-overlapping by construction:
// bin i spans from its own start to the next bin's start, and the last bin
// closes at the series end. The final partial group of every reduction is
// kept, so no trailing samples are ever dropped, and the union of any
// level's bins covers the series extent exactly.
//
// # Costs
//
//   - Build: O(n) work, one pass per level; level 0 aliases the series
//     columns, levels above cost about 40 bytes per bin, summing to roughly
//     n/(factor−1) bins total
//   - SelectLevel: O(log levels × log bins)
//   - BinsInRange: O(log bins + bins consumed)
//
// # Thread Safety
//
// A Builder is stateless and reusable. A Map and its Levels are immutable
// once Build returns; render, hover, and pan/zoom handlers may query one
// Map concurrently without locking.
package mip
