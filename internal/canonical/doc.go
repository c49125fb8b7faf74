// Package canonical produces byte-stable JSON and content hashes.
//
// Marshal follows RFC 8785 (JSON Canonicalization Scheme) for the subset of
// values this module emits: object keys sorted by UTF-16 code units, no
// insignificant whitespace, no HTML escaping. Strings are not normalized, so
// the encoding is lossless; callers that need one spelling per text must
// normalize their input. Floats, null and invalid UTF-8 are rejected because
// they have no single canonical spelling in the records we hash.
//
// Hash applies SHA-256 with a domain prefix so that equal bytes hashed for
// different purposes never share an identity.
package canonical
