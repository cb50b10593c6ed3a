// Package snapshot persists built hierarchies so reopening a large log
// costs a file read instead of a rebuild.
//
// A snapshot stores every level of a hierarchy in a compact columnar
// format. Reading one back yields a Map equivalent to freshly building
// from the same series; building from 10M samples takes seconds of CPU,
// loading the snapshot takes the time to decompress ~100MB.
//
// # File Layout
//
// A snapshot is a fixed 32-byte header followed by one compressed payload:
//
//	Offset  Size  Field
//	0       4     Magic "MPM1"
//	4       1     Version (1)
//	5       1     Flags (0)
//	6       1     Compression codec
//	7       1     Reserved
//	8       4     Decimation factor
//	12      4     Level count
//	16      8     Sample count
//	24      8     xxHash64 of the compressed payload
//
// The payload holds the series name, the raw sample columns of level 0,
// and the five columns of every reduced level. Timestamp columns are
// delta-encoded zigzag varints; value columns are raw little-endian
// float64. Bin counts are never stored, they follow from the sample count
// and factor.
//
// # Integrity
//
// Snapshots cross machine and process boundaries, so Unmarshal treats
// input as untrusted. The checksum rejects bit rot and truncation before
// decompression; after decompression every level passes through the same
// validating constructors a fresh build uses, so no invariant-violating
// hierarchy can enter the process through this package. Corruption
// surfaces as errs.ErrChecksumMismatch or errs.ErrCorruptedSnapshot,
// never as a panic or a silently wrong plot.
//
// # Usage
//
//	var buf bytes.Buffer
//	if _, err := snapshot.Write(&buf, m, snapshot.WithCompression(format.CompressionZstd)); err != nil {
//	    return err
//	}
//
//	m, err := snapshot.Read(&buf)
//	if err != nil {
//	    return err
//	}
package snapshot
