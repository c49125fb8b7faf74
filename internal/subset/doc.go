// Package subset draws bounded, reproducible samples from ordered collections.
//
// Select performs a partial Fisher-Yates shuffle driven by a seed.Stream, so
// the chosen elements depend only on the source, the target count and the
// seed key. Bounds turns a configured [Min, Max] range into a concrete count
// the same way.
package subset
