package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/format"
)

const (
	// MagicV1 identifies a version 1 snapshot. Written little-endian it
	// spells "MPM1" in the first four bytes of the file.
	MagicV1 = uint32(0x314D504D)

	// Version1 is the only format version this package reads and writes.
	Version1 = uint8(1)

	// HeaderSize is the fixed header size in bytes.
	HeaderSize = 32

	// maxLevelCount bounds the level count a header may claim. A factor-2
	// hierarchy over the largest indexable series tops out at 41 levels,
	// so anything past this is a corrupted or hostile file, not data.
	maxLevelCount = 64
)

// Header is the fixed-size prefix of a snapshot file.
type Header struct {
	// Magic identifies the file as a snapshot. Always MagicV1.
	Magic uint32 // byte offset 0-3
	// Version is the format version. Always Version1.
	Version uint8 // byte offset 4
	// Flags is reserved for future format features. Zero in version 1.
	Flags uint8 // byte offset 5
	// Compression is the codec the payload is compressed with.
	Compression format.CompressionType // byte offset 6, offset 7 reserved
	// Factor is the per-step reduction factor of the stored hierarchy.
	Factor uint32 // byte offset 8-11
	// LevelCount is the number of stored levels, including level 0.
	LevelCount uint32 // byte offset 12-15
	// SampleCount is the number of raw samples in level 0.
	SampleCount uint64 // byte offset 16-23
	// Checksum is the xxHash64 digest of the compressed payload that
	// follows the header.
	Checksum uint64 // byte offset 24-31
}

// NewHeader creates a version 1 header for a hierarchy of the given shape.
// The checksum is set once the payload bytes exist.
func NewHeader(compression format.CompressionType, factor, levelCount int, sampleCount int) Header {
	return Header{
		Magic:       MagicV1,
		Version:     Version1,
		Compression: compression,
		Factor:      uint32(factor),      //nolint:gosec
		LevelCount:  uint32(levelCount),  //nolint:gosec
		SampleCount: uint64(sampleCount), //nolint:gosec
	}
}

// Parse fills the header from a byte slice. Field values are not checked
// here; call Validate after parsing.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: %d byte header, want %d", errs.ErrCorruptedSnapshot, len(data), HeaderSize)
	}

	h.Magic = binary.LittleEndian.Uint32(data[0:4])
	h.Version = data[4]
	h.Flags = data[5]
	h.Compression = format.CompressionType(data[6])
	h.Factor = binary.LittleEndian.Uint32(data[8:12])
	h.LevelCount = binary.LittleEndian.Uint32(data[12:16])
	h.SampleCount = binary.LittleEndian.Uint64(data[16:24])
	h.Checksum = binary.LittleEndian.Uint64(data[24:32])

	return nil
}

// Bytes serializes the header into a fresh HeaderSize byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	binary.LittleEndian.PutUint32(b[0:4], h.Magic)
	b[4] = h.Version
	b[5] = h.Flags
	b[6] = byte(h.Compression)
	binary.LittleEndian.PutUint32(b[8:12], h.Factor)
	binary.LittleEndian.PutUint32(b[12:16], h.LevelCount)
	binary.LittleEndian.PutUint64(b[16:24], h.SampleCount)
	binary.LittleEndian.PutUint64(b[24:32], h.Checksum)

	return b
}

// Validate checks the structural fields of a parsed header. Payload-sized
// fields are verified later against the payload itself.
func (h Header) Validate() error {
	if h.Magic != MagicV1 {
		return fmt.Errorf("%w: got %08x, want %08x", errs.ErrInvalidMagic, h.Magic, MagicV1)
	}
	if h.Version != Version1 {
		return fmt.Errorf("%w: version %d", errs.ErrUnsupportedVersion, h.Version)
	}
	if h.Flags != 0 {
		return fmt.Errorf("%w: flag bits %02x", errs.ErrUnsupportedVersion, h.Flags)
	}
	if !h.Compression.Valid() {
		return fmt.Errorf("%w: kind %d", errs.ErrInvalidCompressionType, uint8(h.Compression))
	}
	if h.Factor < 2 {
		return fmt.Errorf("%w: decimation factor %d", errs.ErrCorruptedSnapshot, h.Factor)
	}
	if h.LevelCount == 0 || h.LevelCount > maxLevelCount {
		return fmt.Errorf("%w: level count %d", errs.ErrCorruptedSnapshot, h.LevelCount)
	}

	return nil
}

// ParseHeader parses and validates a snapshot header.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if err := h.Parse(data); err != nil {
		return Header{}, err
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}

	return h, nil
}
