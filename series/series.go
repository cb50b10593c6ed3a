// Package series defines the immutable time-ordered input accepted by the
// downsampling engine.
//
// A Series is constructed once per loaded log channel, validated up front
// (time ordering, NaN policy), and never mutated afterwards. Log-format
// decoders stay outside this module; they hand samples over either as raw
// column slices (New) or through the Source adapter interface (FromSource).
package series

import (
	"fmt"
	"iter"
	"math"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/format"
	"github.com/arloliu/plotmip/internal/hash"
	"github.com/arloliu/plotmip/internal/options"
)

// ID is the stable handle of a Series, the xxHash64 of its name.
// Sessions key their registries by ID, and snapshots record it so a
// reloaded hierarchy resolves to the same handle.
type ID uint64

// NameID computes the ID a series with the given name would receive.
func NameID(name string) ID {
	return ID(hash.ID(name))
}

// Sample is a single (timestamp, value) measurement.
// Ts is epoch time in whatever unit the producing log uses; the engine only
// compares timestamps and never does duration math on them.
type Sample struct {
	Ts  int64
	Val float64
}

// Source is the capability set a log-format adapter must provide for
// ingestion: indexed access to time-ordered samples. Implementations do not
// need to be safe for concurrent use; FromSource reads them once.
type Source interface {
	// Len returns the number of samples.
	Len() int
	// TimeAt returns the timestamp of sample i.
	TimeAt(i int) int64
	// ValueAt returns the numeric value of sample i.
	ValueAt(i int) float64
}

// Series is an immutable, validated, time-ordered sequence of samples for
// one plotted quantity. Timestamps are non-decreasing (ties allowed).
// All methods are safe for concurrent use after construction.
type Series struct {
	name        string
	id          ID
	timestamps  []int64
	values      []float64
	nanPolicy   format.NaNPolicy
	droppedNaNs int
}

// SeriesOption configures Series construction.
type SeriesOption = options.Option[*seriesConfig]

type seriesConfig struct {
	nanPolicy format.NaNPolicy
}

// WithNaNPolicy sets how NaN values are handled during construction.
// The default is format.NaNExclude: NaN samples are dropped and counted.
// format.NaNReject fails construction on the first NaN instead.
func WithNaNPolicy(policy format.NaNPolicy) SeriesOption {
	return options.NoError(func(cfg *seriesConfig) {
		cfg.nanPolicy = policy
	})
}

// New constructs a Series from parallel timestamp and value slices.
//
// The input slices are copied; the caller keeps ownership of its buffers.
// Timestamps must be non-decreasing over the whole input, including samples
// later dropped by the NaN policy: time disorder indicates corrupt ingestion
// and fails with errs.ErrNonMonotonicTime regardless of values.
//
// Returns:
//   - errs.ErrNonMonotonicTime if any timestamp goes backwards
//   - errs.ErrNaNRejected under format.NaNReject on the first NaN value
//   - an error if the slice lengths differ
//
// An empty input is valid and produces an empty Series.
func New(name string, timestamps []int64, values []float64, opts ...SeriesOption) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("timestamp count %d does not match value count %d", len(timestamps), len(values))
	}

	cfg := seriesConfig{nanPolicy: format.NaNExclude}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	s := &Series{
		name:       name,
		id:         NameID(name),
		nanPolicy:  cfg.nanPolicy,
		timestamps: make([]int64, 0, len(timestamps)),
		values:     make([]float64, 0, len(values)),
	}

	for i, ts := range timestamps {
		if i > 0 && ts < timestamps[i-1] {
			return nil, fmt.Errorf("%w: sample %d at %d after %d", errs.ErrNonMonotonicTime, i, ts, timestamps[i-1])
		}
		val := values[i]
		if math.IsNaN(val) {
			if cfg.nanPolicy == format.NaNReject {
				return nil, fmt.Errorf("%w: sample %d at %d", errs.ErrNaNRejected, i, ts)
			}
			s.droppedNaNs++

			continue
		}
		s.timestamps = append(s.timestamps, ts)
		s.values = append(s.values, val)
	}

	return s, nil
}

// FromSource constructs a Series by draining a log-format adapter.
// Validation rules are the same as New.
func FromSource(name string, src Source, opts ...SeriesOption) (*Series, error) {
	n := src.Len()
	timestamps := make([]int64, n)
	values := make([]float64, n)
	for i := range n {
		timestamps[i] = src.TimeAt(i)
		values[i] = src.ValueAt(i)
	}

	return New(name, timestamps, values, opts...)
}

// FromSamples constructs a Series from a sample slice.
// Validation rules are the same as New.
func FromSamples(name string, samples []Sample, opts ...SeriesOption) (*Series, error) {
	timestamps := make([]int64, len(samples))
	values := make([]float64, len(samples))
	for i, sm := range samples {
		timestamps[i] = sm.Ts
		values[i] = sm.Val
	}

	return New(name, timestamps, values, opts...)
}

// Name returns the series name.
func (s *Series) Name() string {
	return s.name
}

// ID returns the stable handle of this series.
func (s *Series) ID() ID {
	return s.id
}

// Len returns the number of retained samples.
func (s *Series) Len() int {
	return len(s.timestamps)
}

// NaNPolicy returns the policy the series was constructed with.
func (s *Series) NaNPolicy() format.NaNPolicy {
	return s.nanPolicy
}

// DroppedNaNs returns how many NaN samples the exclude policy removed.
func (s *Series) DroppedNaNs() int {
	return s.droppedNaNs
}

// At returns sample i. Panics if i is out of range, like slice indexing.
func (s *Series) At(i int) Sample {
	return Sample{Ts: s.timestamps[i], Val: s.values[i]}
}

// TimeExtent returns the first and last timestamps.
// ok is false for an empty series.
func (s *Series) TimeExtent() (first, last int64, ok bool) {
	if len(s.timestamps) == 0 {
		return 0, 0, false
	}

	return s.timestamps[0], s.timestamps[len(s.timestamps)-1], true
}

// All returns an iterator over (index, Sample) in time order.
//
// Example:
//
//	for i, sm := range s.All() {
//	    fmt.Printf("[%d] ts=%d val=%f\n", i, sm.Ts, sm.Val)
//	}
func (s *Series) All() iter.Seq2[int, Sample] {
	return func(yield func(int, Sample) bool) {
		for i := range s.timestamps {
			if !yield(i, Sample{Ts: s.timestamps[i], Val: s.values[i]}) {
				return
			}
		}
	}
}

// Timestamps returns the backing timestamp column.
// The slice is shared, not copied; callers must treat it as read-only.
func (s *Series) Timestamps() []int64 {
	return s.timestamps
}

// Values returns the backing value column.
// The slice is shared, not copied; callers must treat it as read-only.
func (s *Series) Values() []float64 {
	return s.values
}
