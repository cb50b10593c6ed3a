// Package render is the boundary the plot widget consumes: it turns a
// viewport (visible time range, pixel width) into a bounded sequence of
// renderable points over a mip.Map.
//
// A DataSource holds the per-plot configuration (render budget, selection
// mode, raw bypass threshold, viewport extension) and exposes three point
// producers:
//
//   - RenderPoints: one Point per bin of the selected level, for a filled
//     min/max band
//   - MinMaxLines: two polylines through the extremum timestamps, for
//     renderers that draw the envelope as curves
//   - RenderRaw: unreduced samples with the series endpoints anchored, for
//     small windows and reduction-disabled plots
//
// All producers are pure reads over immutable hierarchies; one DataSource
// can serve any number of concurrent frames.
//
//	ds, err := render.NewDataSource(render.WithBudgetMultiplier(2))
//	if err != nil {
//	    return err
//	}
//	for pt := range ds.RenderPoints(m, render.Viewport{Start: t0, End: t1, PixelWidth: 1920}) {
//	    band(pt.Ts, pt.Min, pt.Max)
//	}
package render
