package tfidf

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{"auth": 1, "token": 2}, Vector{"auth": 1, "token": 2}, 1},
		{"scaled copy", Vector{"auth": 1, "token": 2}, Vector{"auth": 3, "token": 6}, 1},
		{"orthogonal", Vector{"auth": 1}, Vector{"db": 1}, 0},
		{"partial overlap", Vector{"a": 1, "b": 1}, Vector{"a": 1, "c": 1}, 0.5},
		{"first empty", Vector{}, Vector{"a": 1}, 0},
		{"second nil", Vector{"a": 1}, nil, 0},
		{"zero norm", Vector{"a": 0}, Vector{"a": 0, "b": 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := Vector{"a": 0.3, "b": 0.7, "c": 0.1}
	b := Vector{"b": 0.2, "c": 0.9}

	ab := CosineSimilarity(a, b)
	ba := CosineSimilarity(b, a)
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("CosineSimilarity not symmetric: %f vs %f", ab, ba)
	}
	if ab < 0 || ab > 1 {
		t.Errorf("CosineSimilarity out of range: %f", ab)
	}
}

func TestVectorNorm(t *testing.T) {
	v := Vector{"a": 3, "b": 4}
	if math.Abs(v.Norm()-5) > 1e-10 {
		t.Errorf("Norm() = %f, want 5", v.Norm())
	}
	if (Vector{}).Norm() != 0 {
		t.Error("Norm() of empty vector should be 0")
	}
}
