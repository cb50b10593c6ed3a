package render

// Viewport is one render request: the visible time range and the pixel
// width available to draw it. The UI layer supplies a fresh Viewport per
// frame; nothing is cached inside it.
type Viewport struct {
	// Start and End bound the visible time range, inclusive, in the same
	// time unit as the plotted series.
	Start int64
	End   int64
	// PixelWidth is the horizontal resolution available for the plot area.
	PixelWidth int
}

// Span returns the visible time range width. Negative for an inverted
// viewport, which every query treats as empty.
func (v Viewport) Span() int64 {
	return v.End - v.Start
}

// Extended widens the viewport by frac of its span on each side, so a small
// pan reveals data that was already fetched instead of a blank margin.
// A non-positive frac or an inverted viewport returns v unchanged.
func (v Viewport) Extended(frac float64) Viewport {
	span := v.Span()
	if frac <= 0 || span < 0 {
		return v
	}
	pad := int64(float64(span) * frac)
	v.Start -= pad
	v.End += pad

	return v
}
