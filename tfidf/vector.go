package tfidf

import (
	"maps"
	"math"
	"slices"
)

// Vector is a sparse term-weight vector. Absent terms weigh zero.
type Vector map[string]float64

// Norm returns the Euclidean length of v. Terms are summed in sorted order
// so the result does not depend on map iteration.
func (v Vector) Norm() float64 {
	var sum float64
	for _, term := range slices.Sorted(maps.Keys(v)) {
		w := v[term]
		sum += w * w
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between a and b.
// It is 0 when either vector is empty or has zero length. The dot product
// walks the smaller vector, in sorted term order, and probes the larger one.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	var dot float64
	for _, term := range slices.Sorted(maps.Keys(small)) {
		if other, ok := large[term]; ok {
			dot += small[term] * other
		}
	}

	normA, normB := a.Norm(), b.Norm()
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (normA * normB)
}
