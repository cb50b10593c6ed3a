package compress

// NoOpCompressor passes data through unchanged. It backs
// format.CompressionNone and doubles as the baseline when benchmarking the
// other codecs.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new pass-through compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input slice as-is, without copying. The result
// shares memory with the input, so callers must not modify the input
// afterwards.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is, without copying. The result
// shares memory with the input, so callers must not modify the input
// afterwards.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
