package seed

// zeroState replaces an all-zero state, which is a fixed point of xorshift32.
const zeroState uint32 = 0x9E3779B9

// Stream is a deterministic xorshift32 generator.
//
// The zero value is not usable; construct with NewStream.
type Stream struct {
	state uint32
}

// NewStream creates a stream from seed s.
// The seed is avalanched first so that seeds differing in a few low bits
// do not start with correlated outputs.
func NewStream(s uint32) *Stream {
	st := mix32(s)
	if st == 0 {
		st = zeroState
	}
	return &Stream{state: st}
}

// Next advances the stream and returns a float in [0,1).
func (s *Stream) Next() float64 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return float64(x) / (1 << 32)
}

// Intn returns an int in [0,n). It returns 0 when n <= 0 without advancing.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// mix32 is the MurmurHash3 32-bit finalizer.
func mix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85EBCA6B
	h ^= h >> 13
	h *= 0xC2B2AE35
	h ^= h >> 16
	return h
}
