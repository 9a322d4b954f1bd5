// Package sampler provides the engine's single deterministic, seedable
// pseudo-random source.
//
// Every stochastic decision made anywhere in the engine — proposal draws,
// merge-candidate enumeration, shuffles used to seed blocks — is routed
// through one *Sampler per Network. There are no package-level globals and
// no time-based sources hidden anywhere: two Samplers built from the same
// seed and driven through the same call sequence produce identical output.
//
// Concurrency:
//   - math/rand.Rand is not goroutine-safe. A Sampler must not be shared
//     across goroutines; the engine it belongs to is itself single-threaded
//     and synchronous (see the netmodel package doc).
package sampler

import (
	"errors"
	"math/rand"
)

// ErrEmptyContainer is returned when a sample is requested from an empty
// container; there is no meaningful uniform choice to make.
var ErrEmptyContainer = errors.New("sampler: cannot sample from an empty container")

// ErrNoWeights is returned by SampleWeighted when every supplied weight is
// zero (or the slice is empty), so no index could ever be selected.
var ErrNoWeights = errors.New("sampler: weights sum to zero")

// Sampler wraps a *rand.Rand seeded once at construction. All draws are
// deterministic functions of the seed and the call sequence.
type Sampler struct {
	rng  *rand.Rand
	seed int64
}

// New returns a Sampler seeded deterministically from seed.
// Complexity: O(1).
func New(seed int64) *Sampler {
	return &Sampler{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed reports the seed this Sampler was constructed with.
func (s *Sampler) Seed() int64 { return s.seed }

// DrawUnif returns a uniform draw in [0, 1).
// Complexity: O(1).
func (s *Sampler) DrawUnif() float64 {
	return s.rng.Float64()
}

// RandInt returns a uniform integer in the inclusive range [0, n].
// This mirrors the original engine's `get_rand_int(n)`, which is inclusive
// of its upper bound — callers indexing a container of size n+1 pass n.
// Complexity: O(1).
func (s *Sampler) RandInt(n int) int {
	if n < 0 {
		panic("sampler: RandInt requires n >= 0")
	}
	return s.rng.Intn(n + 1)
}

// SampleWeighted returns an index into weights chosen with probability
// proportional to weights[i]. Negative weights are treated as zero.
// Returns ErrNoWeights if every weight is non-positive.
// Complexity: O(n).
func (s *Sampler) SampleWeighted(weights []float64) (int, error) {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0, ErrNoWeights
	}

	draw := s.DrawUnif() * total
	var running float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		running += w
		if draw < running {
			return i, nil
		}
	}
	// Floating point rounding can leave draw == total; fall back to the
	// last positive-weight index rather than returning an invalid one.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i, nil
		}
	}
	return 0, ErrNoWeights
}

// Sample returns a uniformly chosen element of items.
// Complexity: O(1).
func Sample[T any](s *Sampler, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyContainer
	}
	return items[s.RandInt(len(items)-1)], nil
}

// SampleNested returns a uniformly chosen element across every sub-slice of
// items, weighting each element equally rather than each sub-slice equally
// (a bucket with 10 elements is 10x as likely to be drawn from as a bucket
// with 1). Mirrors the original engine's vector-of-vectors sampling
// overload.
// Complexity: O(total element count).
func SampleNested[T any](s *Sampler, items [][]T) (T, error) {
	var zero T
	total := 0
	for _, bucket := range items {
		total += len(bucket)
	}
	if total == 0 {
		return zero, ErrEmptyContainer
	}

	target := s.RandInt(total - 1)
	for _, bucket := range items {
		if target < len(bucket) {
			return bucket[target], nil
		}
		target -= len(bucket)
	}
	// Unreachable given the accounting above.
	return zero, ErrEmptyContainer
}

// Shuffle performs an in-place Fisher-Yates shuffle of items.
// Complexity: O(n).
func Shuffle[T any](s *Sampler, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := s.RandInt(i)
		items[i], items[j] = items[j], items[i]
	}
}
