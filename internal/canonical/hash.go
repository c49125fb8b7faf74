package canonical

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns hex(SHA256(domain || 0x00 || data)).
// The null separator keeps domain and data boundaries unambiguous.
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MarshalHash canonically encodes v and hashes it under domain.
func MarshalHash(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(domain, data), nil
}
