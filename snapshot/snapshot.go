package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arloliu/plotmip/compress"
	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/format"
	"github.com/arloliu/plotmip/internal/hash"
	"github.com/arloliu/plotmip/internal/options"
	"github.com/arloliu/plotmip/mip"
)

// DefaultCompression is the codec snapshots are written with unless
// overridden. S2 keeps interactive save and load cycles fast while still
// shrinking delta columns well.
const DefaultCompression = format.CompressionS2

// Option configures snapshot encoding.
type Option = options.Option[*config]

type config struct {
	compression format.CompressionType
}

// WithCompression selects the payload compression codec.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(cfg *config) error {
		if !compression.Valid() {
			return fmt.Errorf("%w: kind %d", errs.ErrInvalidCompressionType, uint8(compression))
		}
		cfg.compression = compression

		return nil
	})
}

// Marshal serializes a hierarchy into the snapshot format: a fixed header
// followed by the compressed column payload.
func Marshal(m *mip.Map, opts ...Option) ([]byte, error) {
	cfg := config{compression: DefaultCompression}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(encodePayload(m))
	if err != nil {
		return nil, err
	}

	h := NewHeader(cfg.compression, m.DecimationFactor(), m.LevelCount(), m.SampleCount())
	h.Checksum = hash.Checksum(compressed)

	out := make([]byte, 0, HeaderSize+len(compressed))
	out = append(out, h.Bytes()...)

	return append(out, compressed...), nil
}

// Unmarshal reconstructs a hierarchy from snapshot bytes.
//
// The input is treated as untrusted: the checksum is verified before
// decompression, and every level is rebuilt through the same validating
// constructors a fresh Build uses, so a snapshot that unmarshals cleanly
// upholds the full set of hierarchy invariants. Level 0 aliases the
// decoded sample columns just like a freshly built hierarchy aliases its
// series.
func Unmarshal(data []byte) (*mip.Map, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	compressed := data[HeaderSize:]
	if got := hash.Checksum(compressed); got != h.Checksum {
		return nil, fmt.Errorf("%w: got %016x, want %016x", errs.ErrChecksumMismatch, got, h.Checksum)
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptedSnapshot, err)
	}

	return decodePayload(h, payload)
}

// Write marshals the hierarchy and writes it to w, returning the number of
// bytes written.
func Write(w io.Writer, m *mip.Map, opts ...Option) (int, error) {
	data, err := Marshal(m, opts...)
	if err != nil {
		return 0, err
	}

	return w.Write(data)
}

// Read consumes r to the end and unmarshals the snapshot it held.
func Read(r io.Reader) (*mip.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return Unmarshal(data)
}

// encodePayload lays out the uncompressed payload:
//
//	name length (uvarint), name bytes
//	level 0: sample times (delta column), sample values (value column)
//	per level above 0:
//	    bin starts (delta column)
//	    closing end (varint delta from the last start)
//	    mins, maxs (value columns)
//	    min times, max times (delta columns)
//
// Bin counts are not stored: level 0's count is in the header and every
// other level's count follows from the ceiling division chain.
func encodePayload(m *mip.Map) []byte {
	st := m.Stats()
	capHint := 16 + len(m.Name())
	for i, n := range st.BinCounts {
		if i == 0 {
			capHint += n * 11
		} else {
			capHint += n*22 + 12
		}
	}

	buf := make([]byte, 0, capHint)
	buf = appendUvarint(buf, uint64(len(m.Name())))
	buf = append(buf, m.Name()...)

	raw := m.LevelOrCoarsest(0)
	buf = appendTimeColumn(buf, raw, func(b mip.Bin) int64 { return b.Start })
	buf = appendValueColumn(buf, raw, func(b mip.Bin) float64 { return b.Min })

	for k := 1; k < m.LevelCount(); k++ {
		l := m.LevelOrCoarsest(k)
		buf = appendTimeColumn(buf, l, func(b mip.Bin) int64 { return b.Start })

		var base, end int64
		if n := l.Len(); n > 0 {
			last := l.Bin(n - 1)
			base, end = last.Start, last.End
		}
		buf = binary.AppendVarint(buf, end-base)

		buf = appendValueColumn(buf, l, func(b mip.Bin) float64 { return b.Min })
		buf = appendValueColumn(buf, l, func(b mip.Bin) float64 { return b.Max })
		buf = appendTimeColumn(buf, l, func(b mip.Bin) int64 { return b.MinTs })
		buf = appendTimeColumn(buf, l, func(b mip.Bin) int64 { return b.MaxTs })
	}

	return buf
}

func decodePayload(h Header, payload []byte) (*mip.Map, error) {
	nameLen, rest, err := readUvarint(payload)
	if err != nil {
		return nil, err
	}
	if nameLen > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: name length %d exceeds payload", errs.ErrCorruptedSnapshot, nameLen)
	}
	name := string(rest[:nameLen])
	rest = rest[nameLen:]

	if h.SampleCount > uint64(mip.MaxSamples) {
		return nil, fmt.Errorf("%w: sample count %d", errs.ErrCorruptedSnapshot, h.SampleCount)
	}
	sampleCount := int(h.SampleCount) //nolint:gosec

	times, rest, err := readTimeColumn(rest, sampleCount)
	if err != nil {
		return nil, err
	}
	values, rest, err := readValueColumn(rest, sampleCount)
	if err != nil {
		return nil, err
	}
	level0, err := mip.RawLevel(times, values)
	if err != nil {
		return nil, fmt.Errorf("%w: level 0: %w", errs.ErrCorruptedSnapshot, err)
	}

	levels := make([]mip.Level, 1, h.LevelCount)
	levels[0] = level0

	factor := int64(h.Factor)
	prev := int64(h.SampleCount) //nolint:gosec
	for k := 1; k < int(h.LevelCount); k++ {
		count := int((prev + factor - 1) / factor)

		starts, r, err := readTimeColumn(rest, count)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d starts: %w", errs.ErrCorruptedSnapshot, k, err)
		}
		endDelta, r, err := readVarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d end: %w", errs.ErrCorruptedSnapshot, k, err)
		}
		var base int64
		if count > 0 {
			base = starts[count-1]
		}
		mins, r, err := readValueColumn(r, count)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d mins: %w", errs.ErrCorruptedSnapshot, k, err)
		}
		maxs, r, err := readValueColumn(r, count)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d maxs: %w", errs.ErrCorruptedSnapshot, k, err)
		}
		minTs, r, err := readTimeColumn(r, count)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d min times: %w", errs.ErrCorruptedSnapshot, k, err)
		}
		maxTs, r, err := readTimeColumn(r, count)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d max times: %w", errs.ErrCorruptedSnapshot, k, err)
		}

		l, err := mip.NewLevel(starts, base+endDelta, mins, maxs, minTs, maxTs)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d: %w", errs.ErrCorruptedSnapshot, k, err)
		}
		levels = append(levels, l)
		rest = r
		prev = int64(count)
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrCorruptedSnapshot, len(rest))
	}

	m, err := mip.FromLevels(name, int(h.Factor), levels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptedSnapshot, err)
	}

	return m, nil
}
