// Package seed turns string keys into reproducible pseudo-random streams.
//
// Derive hashes a key to a 32-bit seed and NewStream expands a seed into an
// endless sequence of floats in [0,1). Both are pure: the same key always
// produces the same sequence, on every platform and across restarts.
//
// There is no package-level generator. Every Stream owns its state (a single
// uint32), so streams may be created freely from concurrent goroutines; a
// single Stream must not be shared between goroutines.
package seed
