package subset

import (
	"fmt"

	"github.com/roach88/dataslice/internal/seed"
)

// Select returns min(target, len(source)) elements of source chosen by key.
//
// The result is always a new slice. A target of zero or less, or an empty
// source, yields an empty slice. A target covering the whole source returns
// a copy in original order since no choice is involved.
func Select[T any](source []T, target int, key string) []T {
	n := len(source)
	if target <= 0 || n == 0 {
		return []T{}
	}
	if target >= n {
		out := make([]T, n)
		copy(out, source)
		return out
	}

	st := seed.NewStream(seed.Derive(key))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < target; i++ {
		j := i + st.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	out := make([]T, target)
	for i := range out {
		out[i] = source[idx[i]]
	}
	return out
}

// Bounds is an inclusive target range for one table.
type Bounds struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Fixed returns Bounds that always resolve to n.
func Fixed(n int) Bounds {
	return Bounds{Min: n, Max: n}
}

// Validate reports negative values and inverted ranges.
func (b Bounds) Validate() error {
	if b.Min < 0 {
		return fmt.Errorf("min must be >= 0, got %d", b.Min)
	}
	if b.Max < b.Min {
		return fmt.Errorf("max (%d) must be >= min (%d)", b.Max, b.Min)
	}
	return nil
}

// Resolve picks a count in [Min, Max] determined by key.
// An empty or inverted range resolves to Min.
func (b Bounds) Resolve(key string) int {
	if b.Max <= b.Min {
		return b.Min
	}
	return b.Min + seed.NewStream(seed.Derive(key)).Intn(b.Max-b.Min+1)
}

// String renders the range as "min-max", or a single number when fixed.
func (b Bounds) String() string {
	if b.Min == b.Max {
		return fmt.Sprintf("%d", b.Min)
	}
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}
