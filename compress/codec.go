package compress

import (
	"fmt"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/format"
)

// Compressor compresses snapshot payloads.
//
// A payload concatenates delta-varint timestamp columns, which compress
// very well, with raw float64 value columns, which compress modestly. Sizes
// range from a few dozen bytes for an empty series to hundreds of megabytes
// for multi-million-sample logs.
type Compressor interface {
	// Compress compresses data and returns the result. The input is not
	// modified, but the result may alias it; callers that need ownership
	// must copy. Empty input yields empty output.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores snapshot column payloads.
type Decompressor interface {
	// Decompress decompresses data previously produced by the matching
	// Compressor. It fails when the data is corrupted or was produced by a
	// different algorithm. Empty input yields empty output.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All implementations in this package are
// stateless values, safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// Stats reports the outcome of compressing one payload.
type Stats struct {
	Algorithm      format.CompressionType
	OriginalSize   int64
	CompressedSize int64
}

// Ratio returns compressed size over original size. Values below 1.0 mean
// the payload shrank; zero original size reports 0.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// Savings returns the space saved as a percentage. Negative values mean
// the algorithm added overhead, which happens on tiny or incompressible
// payloads.
func (s Stats) Savings() float64 {
	return (1.0 - s.Ratio()) * 100.0
}

// CreateCodec creates a fresh Codec for the given compression type. The
// target string names the payload being coded and only feeds error
// messages.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: kind %d for %s", errs.ErrInvalidCompressionType, uint8(compressionType), target)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared built-in Codec for the given compression
// type. All built-in codecs are stateless, so sharing costs nothing.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: kind %d", errs.ErrInvalidCompressionType, uint8(compressionType))
}
