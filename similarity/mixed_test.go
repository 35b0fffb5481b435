package similarity

import (
	"math"
	"testing"
)

func TestMixedComparerBlendsPartScores(t *testing.T) {
	phash := PHashComparer{}
	hist := NewHistogramComparer(16)
	mixed := NewMixedComparer(
		WeightedPart{Comparer: phash, Len: pHashBits, Weight: 0.7},
		WeightedPart{Comparer: hist, Len: 3 * 16, Weight: 0.3},
	)

	img1 := gradientImage(80, 80)
	img2 := invertedImage(img1)

	a, err := mixed.Featurize(img1)
	if err != nil {
		t.Fatalf("Featurize returned error: %v", err)
	}
	b, err := mixed.Featurize(img2)
	if err != nil {
		t.Fatalf("Featurize returned error: %v", err)
	}
	if len(a) != pHashBits+3*16 {
		t.Fatalf("unexpected packed length: %d", len(a))
	}

	pa, _ := phash.Featurize(img1)
	pb, _ := phash.Featurize(img2)
	ha, _ := hist.Featurize(img1)
	hb, _ := hist.Featurize(img2)
	want := 0.7*phash.Similarity(pa, pb) + 0.3*hist.Similarity(ha, hb)

	if got := mixed.Similarity(a, b); math.Abs(got-want) > 1e-9 {
		t.Fatalf("blend mismatch: got %f want %f", got, want)
	}
}

func TestMixedComparerIdenticalImages(t *testing.T) {
	cmp, err := NewComparer(Config{Method: MethodMixed})
	if err != nil {
		t.Fatalf("NewComparer returned error: %v", err)
	}
	vec, err := cmp.Featurize(gradientImage(64, 64))
	if err != nil {
		t.Fatalf("Featurize returned error: %v", err)
	}
	if got := cmp.Similarity(vec, vec); math.Abs(got-1) > 1e-6 {
		t.Fatalf("identical images should score 1.0, got %f", got)
	}
}
