// Package pick provides deterministic random selection from slices.
// All randomness flows through an explicit rng func so callers can pin
// the outcome in tests.
package pick

import "math"

// Item returns a uniformly selected element. The index is floor(rng()*len)
// clamped into range, so an rng that misbehaves and returns exactly 1 (or a
// negative value) still yields the last (or first) element instead of
// panicking. Returns the zero value and false for an empty slice.
func Item[T any](items []T, rng func() float64) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	raw := int(math.Floor(rng() * float64(len(items))))
	idx := clamp(raw, 0, len(items)-1)
	return items[idx], true
}

// Weighted selects an element with probability proportional to its weight.
// Non-positive weights are treated as zero. When weights are missing,
// mismatched, or sum to zero, selection falls back to uniform.
func Weighted[T any](items []T, weights []float64, rng func() float64) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	if len(weights) != len(items) {
		return Item(items, rng)
	}
	total := 0.0
	for _, w := range weights {
		if w > 0 && !math.IsInf(w, 1) && !math.IsNaN(w) {
			total += w
		}
	}
	if total <= 0 {
		return Item(items, rng)
	}
	target := rng() * total
	if target < 0 {
		target = 0
	}
	acc := 0.0
	for i, w := range weights {
		if w <= 0 || math.IsInf(w, 1) || math.IsNaN(w) {
			continue
		}
		acc += w
		if target < acc {
			return items[i], true
		}
	}
	return items[len(items)-1], true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
