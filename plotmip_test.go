package plotmip

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/plotmip/format"
	"github.com/arloliu/plotmip/mip"
	"github.com/arloliu/plotmip/render"
	"github.com/arloliu/plotmip/series"
	"github.com/arloliu/plotmip/snapshot"
)

func testColumns(n int) ([]int64, []float64) {
	timestamps := make([]int64, n)
	values := make([]float64, n)
	for i := range n {
		timestamps[i] = int64(i) * 100
		values[i] = math.Sin(float64(i)/40.0) * 10
	}

	return timestamps, values
}

// TestSeriesID verifies name hashing is stable and distinct per name
func TestSeriesID(t *testing.T) {
	require.Equal(t, SeriesID("gen.rpm"), SeriesID("gen.rpm"))
	require.NotEqual(t, SeriesID("gen.rpm"), SeriesID("motor.temp"))
	require.Equal(t, series.NameID("gen.rpm"), SeriesID("gen.rpm"))
}

// TestNewSeries verifies column construction and option forwarding
func TestNewSeries(t *testing.T) {
	timestamps, values := testColumns(100)

	s, err := NewSeries("gen.rpm", timestamps, values)
	require.NoError(t, err)
	require.Equal(t, 100, s.Len())

	values[10] = math.NaN()
	_, err = NewSeries("gen.rpm", timestamps, values, series.WithNaNPolicy(format.NaNReject))
	require.Error(t, err)
}

// TestNewSeriesFromSamples verifies the sample-slice form
func TestNewSeriesFromSamples(t *testing.T) {
	s, err := NewSeriesFromSamples("gen.rpm", []series.Sample{
		{Ts: 0, Val: 1.5},
		{Ts: 100, Val: 2.5},
	})
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
}

// TestBuild verifies the top-level build wrapper
func TestBuild(t *testing.T) {
	timestamps, values := testColumns(1000)
	s, err := NewSeries("gen.rpm", timestamps, values)
	require.NoError(t, err)

	m, err := Build(s, mip.WithDecimationFactor(4))
	require.NoError(t, err)
	require.Equal(t, 4, m.DecimationFactor())
	require.Equal(t, 1000, m.SampleCount())
}

// TestNewDefaultDataSource verifies the recommended render source
func TestNewDefaultDataSource(t *testing.T) {
	ds, err := NewDefaultDataSource()
	require.NoError(t, err)
	require.NotNil(t, ds)
	require.Equal(t, 3840, ds.Budget(1920))
}

// TestNewPinnedDataSource verifies the pinned source renders its level
func TestNewPinnedDataSource(t *testing.T) {
	timestamps, values := testColumns(64)
	s, err := NewSeries("gen.rpm", timestamps, values)
	require.NoError(t, err)
	m, err := Build(s)
	require.NoError(t, err)

	ds, err := NewPinnedDataSource(2)
	require.NoError(t, err)

	vp := render.Viewport{Start: 0, End: 6300, PixelWidth: 10}
	require.Equal(t, 2, ds.SelectLevel(m, vp))
}

// TestEndToEnd exercises the full flow: build, load into a session,
// render, snapshot, and reload
func TestEndToEnd(t *testing.T) {
	timestamps, values := testColumns(10_000)
	s, err := NewSeries("gen.rpm", timestamps, values)
	require.NoError(t, err)
	m, err := Build(s)
	require.NoError(t, err)

	ss, err := NewSession()
	require.NoError(t, err)
	id, err := ss.LoadBuilt(m)
	require.NoError(t, err)
	require.Equal(t, SeriesID("gen.rpm"), id)

	ds, err := NewDefaultDataSource()
	require.NoError(t, err)
	vp := render.Viewport{Start: 0, End: 999_900, PixelWidth: 640}
	pts, err := ss.RenderCached(id, vp, ds)
	require.NoError(t, err)
	require.NotEmpty(t, pts)
	require.LessOrEqual(t, len(pts), ds.Budget(vp.PixelWidth))

	var buf bytes.Buffer
	n, err := SaveSnapshot(&buf, m, snapshot.WithCompression(format.CompressionS2))
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)

	reloaded, err := LoadSnapshot(&buf)
	require.NoError(t, err)
	require.Equal(t, m.SampleCount(), reloaded.SampleCount())
	require.Equal(t, m.LevelCount(), reloaded.LevelCount())

	// The reloaded hierarchy renders the same frame.
	ss2, err := NewSession()
	require.NoError(t, err)
	id2, err := ss2.LoadBuilt(reloaded)
	require.NoError(t, err)
	pts2, err := ss2.RenderCached(id2, vp, ds)
	require.NoError(t, err)
	require.Equal(t, pts, pts2)
}
