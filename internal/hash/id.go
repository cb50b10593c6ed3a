package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a series name. IDs key the session registry and
// identify series across process restarts (the hash is stable, so a snapshot
// written by one run resolves to the same ID in the next).
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Checksum computes the xxHash64 of a byte payload. Snapshot headers carry it
// so corruption is detected before the payload is decoded.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
