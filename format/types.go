// Package format defines the small enum types shared across plotmip packages:
// snapshot compression kinds, NaN handling policies, and render-time level
// selection modes.
package format

type (
	CompressionType uint8
	NaNPolicy       uint8
	SelectionMode   uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores the snapshot payload uncompressed.
	CompressionZstd CompressionType = 0x2 // CompressionZstd compresses the snapshot payload with Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 compresses the snapshot payload with S2.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 compresses the snapshot payload with LZ4.

	NaNExclude NaNPolicy = 0x1 // NaNExclude drops NaN samples at series construction.
	NaNReject  NaNPolicy = 0x2 // NaNReject fails series construction on the first NaN.

	SelectionAuto     SelectionMode = 0x1 // SelectionAuto picks the level from the viewport.
	SelectionManual   SelectionMode = 0x2 // SelectionManual uses a fixed level, clamped to the coarsest.
	SelectionDisabled SelectionMode = 0x3 // SelectionDisabled always renders raw samples.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is a known compression kind.
func (c CompressionType) Valid() bool {
	switch c {
	case CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4:
		return true
	default:
		return false
	}
}

func (p NaNPolicy) String() string {
	switch p {
	case NaNExclude:
		return "Exclude"
	case NaNReject:
		return "Reject"
	default:
		return "Unknown"
	}
}

func (m SelectionMode) String() string {
	switch m {
	case SelectionAuto:
		return "Auto"
	case SelectionManual:
		return "Manual"
	case SelectionDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}
