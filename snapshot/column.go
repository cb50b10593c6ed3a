package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/mip"
)

// Columns are the unit of payload encoding. Timestamp-like int64 columns
// store the delta between consecutive entries as zigzag varints, with the
// first entry encoded as a delta from zero; steady sampling cadences
// collapse to one or two bytes per entry. Value columns store raw
// little-endian float64 bits, leaving pattern exploitation to the
// compression codec.

func appendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

func readUvarint(data []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, fmt.Errorf("%w: bad varint", errs.ErrCorruptedSnapshot)
	}

	return v, data[n:], nil
}

func readVarint(data []byte) (int64, []byte, error) {
	v, n := binary.Varint(data)
	if n <= 0 {
		return 0, nil, fmt.Errorf("%w: bad varint", errs.ErrCorruptedSnapshot)
	}

	return v, data[n:], nil
}

// appendTimeColumn delta-encodes one int64 field of every bin in the level.
func appendTimeColumn(dst []byte, l mip.Level, pick func(mip.Bin) int64) []byte {
	prev := int64(0)
	for i := range l.Len() {
		v := pick(l.Bin(i))
		dst = binary.AppendVarint(dst, v-prev)
		prev = v
	}

	return dst
}

func readTimeColumn(data []byte, count int) ([]int64, []byte, error) {
	// Each entry takes at least one byte, so a count beyond the remaining
	// payload is corrupt before anything is allocated for it.
	if count < 0 || count > len(data) {
		return nil, nil, fmt.Errorf("%w: %d column entries in %d bytes", errs.ErrCorruptedSnapshot, count, len(data))
	}

	vals := make([]int64, count)
	prev := int64(0)
	for i := range count {
		d, n := binary.Varint(data)
		if n <= 0 {
			return nil, nil, fmt.Errorf("%w: bad varint at column entry %d", errs.ErrCorruptedSnapshot, i)
		}
		prev += d
		vals[i] = prev
		data = data[n:]
	}

	return vals, data, nil
}

// appendValueColumn writes one float64 field of every bin as raw
// little-endian bits.
func appendValueColumn(dst []byte, l mip.Level, pick func(mip.Bin) float64) []byte {
	for i := range l.Len() {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(pick(l.Bin(i))))
	}

	return dst
}

func readValueColumn(data []byte, count int) ([]float64, []byte, error) {
	if count < 0 || count > len(data)/8 {
		return nil, nil, fmt.Errorf("%w: %d float entries in %d bytes", errs.ErrCorruptedSnapshot, count, len(data))
	}

	vals := make([]float64, count)
	for i := range count {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}

	return vals, data[count*8:], nil
}
