package sampler_test

import (
	"testing"

	"github.com/hsbm-go/hsbm/sampler"
	"github.com/stretchr/testify/require"
)

// Same seed must reproduce the exact same draw sequence.
func TestSampler_SameSeedSameSequence(t *testing.T) {
	a := sampler.New(42)
	b := sampler.New(42)

	for i := 0; i < 50; i++ {
		require.Equal(t, a.DrawUnif(), b.DrawUnif())
	}
}

// Different seeds must diverge on the very first draw.
func TestSampler_DifferentSeedsDiverge(t *testing.T) {
	a := sampler.New(42)
	b := sampler.New(43)

	require.NotEqual(t, a.DrawUnif(), b.DrawUnif())
}

func TestSampler_RandIntBounds(t *testing.T) {
	s := sampler.New(7)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := s.RandInt(12)
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, 12)
		seen[v] = true
	}
	require.Len(t, seen, 13)
}

// Weighted sampling converges to the supplied weights within tolerance.
func TestSampler_SampleWeightedConverges(t *testing.T) {
	s := sampler.New(1)
	weights := []float64{0.1, 0.4, 0.3, 0.2}
	const n = 10000
	counts := make([]int, len(weights))

	for i := 0; i < n; i++ {
		idx, err := s.SampleWeighted(weights)
		require.NoError(t, err)
		counts[idx]++
	}

	for i, w := range weights {
		freq := float64(counts[i]) / float64(n)
		require.InDelta(t, w, freq, 0.03)
	}
}

func TestSampler_SampleWeighted_AllZero(t *testing.T) {
	s := sampler.New(1)
	_, err := s.SampleWeighted([]float64{0, 0, 0})
	require.ErrorIs(t, err, sampler.ErrNoWeights)
}

func TestSample_UniformAcrossFlatContainer(t *testing.T) {
	s := sampler.New(9)
	items := []string{"n1", "n2", "n3"}
	const n = 9000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		v, err := sampler.Sample(s, items)
		require.NoError(t, err)
		counts[v]++
	}
	for _, c := range counts {
		require.InDelta(t, 1.0/3.0, float64(c)/float64(n), 0.03)
	}
}

func TestSample_Empty(t *testing.T) {
	s := sampler.New(1)
	_, err := sampler.Sample(s, []int{})
	require.ErrorIs(t, err, sampler.ErrEmptyContainer)
}

// SampleNested weights every element equally, not every bucket equally.
func TestSampleNested_WeightsByElementNotBucket(t *testing.T) {
	s := sampler.New(3)
	buckets := [][]string{
		{"big-1", "big-2", "big-3", "big-4", "big-5", "big-6", "big-7", "big-8", "big-9"},
		{"small-1"},
	}
	const n = 10000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		v, err := sampler.SampleNested(s, buckets)
		require.NoError(t, err)
		counts[v]++
	}
	smallFreq := float64(counts["small-1"]) / float64(n)
	require.InDelta(t, 0.1, smallFreq, 0.03)
}

func TestShuffle_Permutes(t *testing.T) {
	s := sampler.New(5)
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	orig := append([]int(nil), items...)
	sampler.Shuffle(s, items)

	require.ElementsMatch(t, orig, items)
}
