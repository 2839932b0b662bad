// Package similarity ranks stored vectors against a query vector.
//
// Cosine similarity is the only metric. Both vector stores rank through
// this package so ordering and tie-breaking are identical across backends.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// Cosine computes the cosine similarity between two vectors.
// It fails with domain.ErrStoreQuery if the lengths differ or are zero.
// A zero-magnitude vector has similarity 0 to everything. Non-finite
// components fail with domain.ErrStoreQuery rather than scoring NaN.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch: %d vs %d", domain.ErrStoreQuery, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vectors", domain.ErrStoreQuery)
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if math.IsNaN(dot) || math.IsInf(na2, 0) || math.IsInf(nb2, 0) {
		return 0, fmt.Errorf("%w: vector has non-finite components", domain.ErrStoreQuery)
	}
	if na2 == 0 || nb2 == 0 {
		return 0, nil
	}
	// A single square root keeps identical vectors at exactly 1.
	sim := dot / math.Sqrt(na2*nb2)
	return math.Max(-1, math.Min(1, sim)), nil
}

// Rank scores every entry against query and returns the best k.
// Results are ordered by descending similarity, ties broken by ascending
// Seq. If fewer than k entries exist all of them are returned.
func Rank(entries []domain.IndexEntry, query []float32, k int) ([]domain.ScoredEntry, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	scored := make([]domain.ScoredEntry, 0, len(entries))
	for _, e := range entries {
		sim, err := Cosine(query, e.Vector)
		if err != nil {
			return nil, fmt.Errorf("score entry %s: %w", e.ID, err)
		}
		scored = append(scored, domain.ScoredEntry{Entry: e, Similarity: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Entry.Seq < scored[j].Entry.Seq
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Normalize scales v to unit length in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}
