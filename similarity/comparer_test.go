package similarity

import (
	"math"
	"testing"
)

func TestNewComparerMethodSelection(t *testing.T) {
	tests := []struct {
		method Method
		name   string
	}{
		{MethodTemplate, "template"},
		{MethodHistogram, "histogram"},
		{MethodPHash, "phash"},
		{MethodMixed, "mixed"},
		{"", "template"}, // zero value falls back to the default method
	}
	for _, tc := range tests {
		cmp, err := NewComparer(Config{Method: tc.method})
		if err != nil {
			t.Fatalf("NewComparer(%q) returned error: %v", tc.method, err)
		}
		if cmp.Name() != tc.name {
			t.Errorf("NewComparer(%q).Name() = %q, want %q", tc.method, cmp.Name(), tc.name)
		}
	}
}

func TestCacheIDReflectsParameters(t *testing.T) {
	if a, b := NewHistogramComparer(8).CacheID(), NewHistogramComparer(64).CacheID(); a == b {
		t.Errorf("histogram CacheID ignores bin count: %q", a)
	}
	if a, b := NewTemplateComparer(64).CacheID(), NewTemplateComparer(128).CacheID(); a == b {
		t.Errorf("template CacheID ignores target size: %q", a)
	}
	mixedA, err := NewComparer(Config{Method: MethodMixed, PHashWeight: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	mixedB, err := NewComparer(Config{Method: MethodMixed, PHashWeight: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if mixedA.CacheID() == mixedB.CacheID() {
		t.Errorf("mixed CacheID ignores weights: %q", mixedA.CacheID())
	}
}

func TestCosine32(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"parallel", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tc := range tests {
		if got := cosine32(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: cosine32 = %f, want %f", tc.name, got, tc.want)
		}
	}
}

func TestClamp01(t *testing.T) {
	if got := clamp01(-0.5); got != 0 {
		t.Errorf("clamp01(-0.5) = %f", got)
	}
	if got := clamp01(1.5); got != 1 {
		t.Errorf("clamp01(1.5) = %f", got)
	}
	if got := clamp01(0.42); got != 0.42 {
		t.Errorf("clamp01(0.42) = %f", got)
	}
}
