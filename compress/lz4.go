package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4.Compressor carries internal hash-table state that benefits from
// reuse across calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor has the fastest decompression of the codecs here. Prefer
// it for snapshots that are written once and loaded many times.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data as a single LZ4 block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses a single LZ4 block.
//
// The block format does not record the decompressed size, so the buffer
// starts at 4x the compressed size and doubles on each short-buffer
// failure. The 128MB ceiling stops corrupted input from exhausting memory;
// real snapshot columns stay far under it.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	const maxSize = 128 * 1024 * 1024

	bufSize := len(data) * 4
	if bufSize > maxSize {
		bufSize = maxSize
	}

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
