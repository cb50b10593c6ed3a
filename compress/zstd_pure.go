//go:build !cgo

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// The pure Go zstd library is designed for encoder and decoder reuse: both
// operate without allocations after a warmup, so pooling them removes the
// per-call setup cost entirely.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// Unreachable with valid static options.
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			// Unreachable with valid static options.
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// Compress compresses the input data using the pure Go zstd port.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless, safe with a pooled encoder.
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses zstd frames produced by either zstd backend.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	// DecodeAll is stateless; the decoder stays reusable even when the
	// call fails on corrupted input.
	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
