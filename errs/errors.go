// Package errs defines the sentinel errors shared across plotmip packages.
//
// Callers match them with errors.Is; producing sites wrap them with
// fmt.Errorf("%w: detail", ...) to attach context without breaking matching.
package errs

import "errors"

// Series construction errors.
var (
	// ErrNonMonotonicTime indicates the input samples are not sorted by time.
	// Ingestion must hand over time-ordered samples; construction fails fast
	// rather than producing an undefined hierarchy.
	ErrNonMonotonicTime = errors.New("sample time not monotonically non-decreasing")

	// ErrNaNRejected indicates a NaN value was encountered while the series
	// was configured with the reject policy.
	ErrNaNRejected = errors.New("NaN sample rejected")

	// ErrSeriesTooLarge indicates the series exceeds the maximum indexable
	// length. Surfaced to the user as "log too large to index".
	ErrSeriesTooLarge = errors.New("log too large to index")
)

// Hierarchy configuration and lookup errors.
var (
	// ErrInvalidDecimationFactor indicates a decimation factor below 2.
	ErrInvalidDecimationFactor = errors.New("decimation factor must be at least 2")

	// ErrInvalidMaxLevels indicates a non-positive level-count bound.
	ErrInvalidMaxLevels = errors.New("max level count must be positive")

	// ErrInvalidBudgetMultiplier indicates a non-positive render budget multiplier.
	ErrInvalidBudgetMultiplier = errors.New("budget multiplier must be positive")

	// ErrInvalidRawThreshold indicates a negative raw-mode threshold.
	ErrInvalidRawThreshold = errors.New("raw threshold must not be negative")

	// ErrInvalidManualLevel indicates a negative level in manual selection mode.
	ErrInvalidManualLevel = errors.New("manual level must not be negative")

	// ErrInvalidSelectionMode indicates an unknown level selection mode.
	ErrInvalidSelectionMode = errors.New("invalid selection mode")

	// ErrInvalidExtension indicates a negative viewport extension fraction.
	ErrInvalidExtension = errors.New("viewport extension must not be negative")

	// ErrLevelOutOfRange indicates a level index outside [0, LevelCount).
	// This is a caller bug and is propagated, never silently clamped.
	ErrLevelOutOfRange = errors.New("level index out of range")

	// ErrInvalidLevelData indicates level columns that violate the
	// structural invariants (length mismatch, unordered starts, min above
	// max, extremum time outside its bin).
	ErrInvalidLevelData = errors.New("invalid level data")
)

// Session registry errors.
var (
	// ErrSeriesNotFound indicates no series is registered under the given ID.
	ErrSeriesNotFound = errors.New("series not found")

	// ErrSeriesAlreadyLoaded indicates the series name is already registered.
	ErrSeriesAlreadyLoaded = errors.New("series already loaded")

	// ErrHandleCollision indicates two distinct series names hash to the
	// same ID. Exceedingly rare with 64-bit hashes, but detected rather
	// than silently overwriting.
	ErrHandleCollision = errors.New("series handle collision")

	// ErrInvalidCacheSize indicates a non-positive render cache capacity.
	ErrInvalidCacheSize = errors.New("render cache size must be positive")
)

// Snapshot encode/decode errors.
var (
	// ErrInvalidMagic indicates the input does not start with the snapshot
	// magic number.
	ErrInvalidMagic = errors.New("invalid snapshot magic")

	// ErrUnsupportedVersion indicates a snapshot version this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrChecksumMismatch indicates the payload checksum does not match the
	// header; the artifact is corrupt and the caller should rebuild.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrCorruptedSnapshot indicates a structurally invalid snapshot payload
	// (truncated column, impossible counts, trailing garbage).
	ErrCorruptedSnapshot = errors.New("corrupted snapshot")

	// ErrInvalidCompressionType indicates an unknown compression kind.
	ErrInvalidCompressionType = errors.New("invalid compression type")
)
