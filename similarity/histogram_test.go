package similarity

import (
	"image/color"
	"math"
	"testing"
)

func TestHistogramComparerIdenticalImages(t *testing.T) {
	cmp := NewHistogramComparer(32)
	vec, err := cmp.Featurize(gradientImage(60, 60))
	if err != nil {
		t.Fatalf("Featurize returned error: %v", err)
	}
	if len(vec) != 3*32 {
		t.Fatalf("unexpected feature length: got %d want %d", len(vec), 3*32)
	}
	if got := cmp.Similarity(vec, vec); math.Abs(got-1) > 1e-6 {
		t.Fatalf("identical histograms should score 1.0, got %f", got)
	}
}

func TestHistogramComparerDisjointColors(t *testing.T) {
	cmp := NewHistogramComparer(32)
	red, err := cmp.Featurize(solidImage(20, 20, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("Featurize returned error: %v", err)
	}
	blue, err := cmp.Featurize(solidImage(20, 20, color.RGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatalf("Featurize returned error: %v", err)
	}
	// Only the zero-valued green channels overlap: cosine is exactly 1/3.
	if got := cmp.Similarity(red, blue); math.Abs(got-1.0/3.0) > 0.01 {
		t.Fatalf("expected score near 1/3, got %f", got)
	}
}

func TestHistogramComparerSizeInvariant(t *testing.T) {
	cmp := NewHistogramComparer(16)
	small, err := cmp.Featurize(solidImage(10, 10, color.RGBA{R: 200, G: 100, B: 50, A: 255}))
	if err != nil {
		t.Fatalf("Featurize returned error: %v", err)
	}
	large, err := cmp.Featurize(solidImage(300, 200, color.RGBA{R: 200, G: 100, B: 50, A: 255}))
	if err != nil {
		t.Fatalf("Featurize returned error: %v", err)
	}
	if got := cmp.Similarity(small, large); math.Abs(got-1) > 1e-6 {
		t.Fatalf("same color at different sizes should score 1.0, got %f", got)
	}
}
