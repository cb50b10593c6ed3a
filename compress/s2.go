package compress

import "github.com/klauspost/compress/s2"

// S2Compressor compresses snapshot payloads with the S2 format, the default
// codec for snapshots. Compress runs in EncodeBetter mode (higher ratio,
// slower encode); Decompress accepts any valid S2 stream regardless of the
// mode that produced it.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.EncodeBetter(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
